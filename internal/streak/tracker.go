package streak

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gdg-garage/task-streaks-api/internal/errs"
	"github.com/gdg-garage/task-streaks-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Outcome says how a completion changed a streak.
type Outcome string

const (
	OutcomeStarted   Outcome = "started"
	OutcomeExtended  Outcome = "extended"
	OutcomeReset     Outcome = "reset"
	OutcomeSameDay   Outcome = "same_day"
	OutcomeBackdated Outcome = "backdated"
)

type State struct {
	Streak  models.Streak
	Outcome Outcome
}

type Tracker struct {
	db    *gorm.DB
	locks *KeyedMutex
}

func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db, locks: NewKeyedMutex()}
}

// Lock serialises every streak update for one (user, task) pair inside this
// process. Row locks in RecordCompletion cover other processes on drivers
// that support them.
func (t *Tracker) Lock(userID string, taskID uint) func() {
	return t.locks.Lock(streakKey(userID, taskID))
}

// RecordCompletion folds a completion on day into the streak of (userID,
// taskID) using tx. The caller must hold Lock for the pair and own the
// transaction.
func (t *Tracker) RecordCompletion(ctx context.Context, tx *gorm.DB, userID string, taskID uint, day models.Date) (*State, error) {
	var s models.Streak
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		First(&s).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = models.Streak{
			UserID:            userID,
			TaskID:            taskID,
			CurrentStreak:     1,
			LongestStreak:     1,
			LastCompletedDate: day,
			StreakStartDate:   day,
		}
		if err := tx.WithContext(ctx).Create(&s).Error; err != nil {
			return nil, fmt.Errorf("creating streak: %w", err)
		}
		slog.Debug("Streak started",
			slog.String("user_id", userID),
			slog.Uint64("task_id", uint64(taskID)),
			slog.String("day", day.String()))
		return &State{Streak: s, Outcome: OutcomeStarted}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading streak: %w", err)
	}

	outcome := Advance(&s, day)
	if err := tx.WithContext(ctx).Save(&s).Error; err != nil {
		return nil, fmt.Errorf("saving streak: %w", err)
	}

	slog.Debug("Streak updated",
		slog.String("user_id", userID),
		slog.Uint64("task_id", uint64(taskID)),
		slog.String("outcome", string(outcome)),
		slog.Int("current", s.CurrentStreak),
		slog.Int("longest", s.LongestStreak))

	return &State{Streak: s, Outcome: outcome}, nil
}

// Advance applies a completion on day to s and reports what happened.
//
// Same-day and backdated completions leave the streak untouched; in
// particular a backdated day never replaces LastCompletedDate, so later gap
// checks keep measuring from the most recent day.
func Advance(s *models.Streak, day models.Date) Outcome {
	if s.LastCompletedDate.IsZero() {
		s.CurrentStreak = 1
		s.LongestStreak = max(s.LongestStreak, 1)
		s.StreakStartDate = day
		s.LastCompletedDate = day
		return OutcomeStarted
	}

	diff := day.DaysSince(s.LastCompletedDate)
	switch {
	case diff == 1:
		if s.CurrentStreak == 0 {
			s.StreakStartDate = day
		}
		s.CurrentStreak++
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
		s.LastCompletedDate = day
		return OutcomeExtended
	case diff > 1:
		s.CurrentStreak = 1
		s.LongestStreak = max(s.LongestStreak, 1)
		s.StreakStartDate = day
		s.LastCompletedDate = day
		return OutcomeReset
	case diff == 0:
		return OutcomeSameDay
	default:
		return OutcomeBackdated
	}
}

func (t *Tracker) Get(ctx context.Context, userID string, taskID uint) (*models.Streak, error) {
	var s models.Streak
	err := t.db.WithContext(ctx).Where("user_id = ? AND task_id = ?", userID, taskID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("streak for user %s task %d: %w", userID, taskID, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *Tracker) ListForUser(ctx context.Context, userID string) ([]models.Streak, error) {
	var streaks []models.Streak
	q := t.db.WithContext(ctx).Order("task_id asc")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Find(&streaks).Error; err != nil {
		return nil, err
	}
	return streaks, nil
}

// Create inserts a streak row directly. Unlike RecordCompletion it refuses to
// touch an existing pair.
func (t *Tracker) Create(ctx context.Context, s *models.Streak) error {
	if s.UserID == "" || s.TaskID == 0 {
		return fmt.Errorf("user_id and task_id are required: %w", errs.ErrValidation)
	}
	if s.CurrentStreak < 0 || s.LongestStreak < 0 {
		return fmt.Errorf("streak lengths must not be negative: %w", errs.ErrValidation)
	}
	if s.CurrentStreak > s.LongestStreak {
		return fmt.Errorf("current_streak exceeds longest_streak: %w", errs.ErrValidation)
	}

	defer t.Lock(s.UserID, s.TaskID)()

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, s.TaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("task %d: %w", s.TaskID, errs.ErrNotFound)
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.Streak{}).
			Where("user_id = ? AND task_id = ?", s.UserID, s.TaskID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("streak for user %s task %d already exists: %w", s.UserID, s.TaskID, errs.ErrConflict)
		}
		return tx.Create(s).Error
	})
}

// DecayStale zeroes the current streak of every pair whose last completed day
// is older than the day before today. Longest streaks are kept.
func (t *Tracker) DecayStale(ctx context.Context, today models.Date) (int64, error) {
	cutoff := today.AddDays(-1)
	res := t.db.WithContext(ctx).
		Model(&models.Streak{}).
		Where("current_streak > 0 AND last_completed_date < ?", cutoff).
		Update("current_streak", 0)
	return res.RowsAffected, res.Error
}

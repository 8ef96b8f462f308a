// Package progression runs the completion pipeline: record the completion,
// fold it into the streak, aggregate metrics, evaluate and grant achievements.
package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdg-garage/task-streaks-api/internal/achievements"
	"github.com/gdg-garage/task-streaks-api/internal/catalog"
	"github.com/gdg-garage/task-streaks-api/internal/errs"
	"github.com/gdg-garage/task-streaks-api/internal/models"
	"github.com/gdg-garage/task-streaks-api/internal/notifier"
	"github.com/gdg-garage/task-streaks-api/internal/streak"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

type CompletionInput struct {
	UserID      string
	TaskID      uint
	CompletedAt time.Time
	Note        string
	Source      models.CompletionSource
	// EventID makes the call idempotent. A new one is generated when empty.
	EventID string
}

type Result struct {
	Completion models.Completion
	Streak     models.Streak
	Outcome    streak.Outcome
	Duplicate  bool
	Awarded    []models.UserAchievement
}

type Orchestrator struct {
	db       *gorm.DB
	tracker  *streak.Tracker
	granter  *achievements.Granter
	metrics  *Aggregator
	clock    clockwork.Clock
	notifier notifier.Notifier
}

func NewOrchestrator(db *gorm.DB, tracker *streak.Tracker, granter *achievements.Granter, metrics *Aggregator, clock clockwork.Clock, n notifier.Notifier) *Orchestrator {
	return &Orchestrator{
		db:       db,
		tracker:  tracker,
		granter:  granter,
		metrics:  metrics,
		clock:    clock,
		notifier: n,
	}
}

// OnTaskCompleted records a completion and returns the updated streak along
// with the achievements it newly unlocked.
//
// The completion insert and the streak update commit together or not at all.
// Metric aggregation and grants run afterwards and never fail the call.
func (o *Orchestrator) OnTaskCompleted(ctx context.Context, in CompletionInput) (*Result, error) {
	if in.UserID == "" || in.TaskID == 0 {
		return nil, fmt.Errorf("user_id and task_id are required: %w", errs.ErrValidation)
	}
	if in.CompletedAt.IsZero() {
		in.CompletedAt = o.clock.Now()
	}
	if in.Source == "" {
		in.Source = models.SourceManual
	}
	if in.EventID == "" {
		in.EventID = uuid.NewString()
	} else if _, err := uuid.Parse(in.EventID); err != nil {
		return nil, fmt.Errorf("event_id must be a UUID: %w", errs.ErrValidation)
	}

	res, err := o.record(ctx, in)
	if err != nil {
		return nil, err
	}
	if res.Duplicate {
		slog.Info("Duplicate completion ignored",
			slog.String("event_id", in.EventID),
			slog.String("user_id", in.UserID))
		return res, nil
	}

	m, err := o.metrics.Collect(ctx, in.UserID, in.CompletedAt, res.Streak.CurrentStreak)
	if err != nil {
		slog.Error("Failed to aggregate metrics, skipping achievements",
			slog.String("user_id", in.UserID),
			slog.Any("error", err))
		return res, nil
	}

	res.Awarded = o.granter.GrantAll(ctx, in.UserID, achievements.Evaluate(m))
	o.announce(in.UserID, res.Awarded)
	return res, nil
}

func (o *Orchestrator) record(ctx context.Context, in CompletionInput) (*Result, error) {
	defer o.tracker.Lock(in.UserID, in.TaskID)()

	res := &Result{}
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Completion
		err := tx.Where("event_id = ?", in.EventID).First(&existing).Error
		if err == nil {
			if existing.UserID != in.UserID || existing.TaskID != in.TaskID {
				return fmt.Errorf("event %s belongs to another completion: %w", in.EventID, errs.ErrConflict)
			}
			res.Completion = existing
			res.Duplicate = true
			return tx.Where("user_id = ? AND task_id = ?", in.UserID, in.TaskID).First(&res.Streak).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var task models.Task
		if err := tx.First(&task, in.TaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("task %d: %w", in.TaskID, errs.ErrNotFound)
			}
			return err
		}

		c := models.Completion{
			EventID:     in.EventID,
			TaskID:      in.TaskID,
			UserID:      in.UserID,
			CompletedAt: in.CompletedAt,
			Day:         models.DateOf(in.CompletedAt),
			Source:      in.Source,
			Note:        in.Note,
		}
		if err := tx.Create(&c).Error; err != nil {
			return fmt.Errorf("recording completion: %w", err)
		}

		state, err := o.tracker.RecordCompletion(ctx, tx, in.UserID, in.TaskID, c.Day)
		if err != nil {
			return err
		}
		res.Completion = c
		res.Streak = state.Streak
		res.Outcome = state.Outcome
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CheckAndGrant grants every id in qualifying for userID and announces the
// new ones. It backs the manual check endpoints.
func (o *Orchestrator) CheckAndGrant(ctx context.Context, userID string, qualifying []string) []models.UserAchievement {
	awarded := o.granter.GrantAll(ctx, userID, qualifying)
	o.announce(userID, awarded)
	return awarded
}

// Award grants one achievement on request and announces it. It returns
// (nil, nil) when the user already has a row for it.
func (o *Orchestrator) Award(ctx context.Context, userID, achievementID string) (*models.UserAchievement, error) {
	ua, err := o.granter.Grant(ctx, userID, achievementID)
	if err != nil || ua == nil {
		return nil, err
	}
	o.announce(userID, []models.UserAchievement{*ua})
	return ua, nil
}

func (o *Orchestrator) announce(userID string, awarded []models.UserAchievement) {
	if o.notifier == nil || len(awarded) == 0 {
		return
	}
	cat := o.granter.Catalog()
	entries := make([]catalog.Entry, 0, len(awarded))
	for _, ua := range awarded {
		if e, ok := cat.ByID(ua.AchievementID); ok {
			entries = append(entries, e)
		}
	}
	if err := o.notifier.NotifyAchievements(userID, entries); err != nil {
		slog.Warn("Failed to announce achievements",
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
}

// Completions lists a user's completions, optionally for one task, newest
// first.
func (o *Orchestrator) Completions(ctx context.Context, userID string, taskID uint) ([]models.Completion, error) {
	q := o.db.WithContext(ctx).Where("user_id = ?", userID)
	if taskID != 0 {
		q = q.Where("task_id = ?", taskID)
	}
	var out []models.Completion
	if err := q.Order("completed_at desc, id desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

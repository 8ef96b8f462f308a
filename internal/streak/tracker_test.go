package streak

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gdg-garage/task-streaks-api/internal/database"
	"github.com/gdg-garage/task-streaks-api/internal/errs"
	"github.com/gdg-garage/task-streaks-api/internal/models"
	"gorm.io/gorm"
)

func day(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	return db
}

func TestAdvance_ConsecutiveDaysNeverLowerPeak(t *testing.T) {
	s := &models.Streak{}
	start := day(t, "2024-01-01")

	prevLongest := 0
	for i := 0; i < 40; i++ {
		// a gap every 9th day
		offset := i + i/9
		Advance(s, start.AddDays(offset))

		if s.LongestStreak < prevLongest {
			t.Fatalf("longest decreased from %d to %d", prevLongest, s.LongestStreak)
		}
		if s.CurrentStreak > s.LongestStreak {
			t.Fatalf("current %d exceeds longest %d", s.CurrentStreak, s.LongestStreak)
		}
		if s.CurrentStreak < 0 {
			t.Fatalf("negative current streak %d", s.CurrentStreak)
		}
		prevLongest = s.LongestStreak
	}
}

func TestAdvance_GapResetsPeakPersists(t *testing.T) {
	s := &models.Streak{}

	if got := Advance(s, day(t, "2024-01-01")); got != OutcomeStarted {
		t.Errorf("expected started, got %s", got)
	}
	if got := Advance(s, day(t, "2024-01-02")); got != OutcomeExtended {
		t.Errorf("expected extended, got %s", got)
	}
	Advance(s, day(t, "2024-01-03"))
	if s.CurrentStreak != 3 || s.LongestStreak != 3 {
		t.Fatalf("expected 3/3, got %d/%d", s.CurrentStreak, s.LongestStreak)
	}

	if got := Advance(s, day(t, "2024-01-10")); got != OutcomeReset {
		t.Errorf("expected reset, got %s", got)
	}
	if s.CurrentStreak != 1 {
		t.Errorf("expected current 1, got %d", s.CurrentStreak)
	}
	if s.LongestStreak != 3 {
		t.Errorf("expected longest 3, got %d", s.LongestStreak)
	}
	if s.StreakStartDate.String() != "2024-01-10" {
		t.Errorf("expected start 2024-01-10, got %s", s.StreakStartDate)
	}
}

func TestAdvance_SameDayAndBackdated(t *testing.T) {
	s := &models.Streak{}
	Advance(s, day(t, "2024-02-01"))
	Advance(s, day(t, "2024-02-02"))

	t.Run("SameDay", func(t *testing.T) {
		if got := Advance(s, day(t, "2024-02-02")); got != OutcomeSameDay {
			t.Errorf("expected same_day, got %s", got)
		}
		if s.CurrentStreak != 2 {
			t.Errorf("expected current 2, got %d", s.CurrentStreak)
		}
	})

	t.Run("Backdated", func(t *testing.T) {
		if got := Advance(s, day(t, "2024-01-20")); got != OutcomeBackdated {
			t.Errorf("expected backdated, got %s", got)
		}
		if s.CurrentStreak != 2 {
			t.Errorf("expected current 2, got %d", s.CurrentStreak)
		}
		if s.LastCompletedDate.String() != "2024-02-02" {
			t.Errorf("backdated completion moved last_completed_date to %s", s.LastCompletedDate)
		}
		if s.StreakStartDate.String() != "2024-02-01" {
			t.Errorf("backdated completion moved streak_start_date to %s", s.StreakStartDate)
		}
	})

	t.Run("NextDayStillExtends", func(t *testing.T) {
		if got := Advance(s, day(t, "2024-02-03")); got != OutcomeExtended {
			t.Errorf("expected extended, got %s", got)
		}
		if s.CurrentStreak != 3 {
			t.Errorf("expected current 3, got %d", s.CurrentStreak)
		}
	})
}

func TestAdvance_MissingLastCompletedDate(t *testing.T) {
	s := &models.Streak{CurrentStreak: 0, LongestStreak: 0}
	if got := Advance(s, day(t, "2024-06-01")); got != OutcomeStarted {
		t.Errorf("expected started, got %s", got)
	}
	if s.CurrentStreak != 1 || s.LongestStreak != 1 {
		t.Errorf("expected 1/1, got %d/%d", s.CurrentStreak, s.LongestStreak)
	}
}

func TestAdvance_AfterDecay(t *testing.T) {
	s := &models.Streak{CurrentStreak: 0, LongestStreak: 5, LastCompletedDate: day(t, "2024-01-01")}
	if got := Advance(s, day(t, "2024-01-09")); got != OutcomeReset {
		t.Errorf("expected reset, got %s", got)
	}
	if s.CurrentStreak != 1 || s.LongestStreak != 5 {
		t.Errorf("expected 1/5, got %d/%d", s.CurrentStreak, s.LongestStreak)
	}
}

func TestRecordCompletion_Persists(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTracker(db)
	ctx := context.Background()

	days := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-10"}
	for _, d := range days {
		unlock := tracker.Lock("u1", 7)
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := tracker.RecordCompletion(ctx, tx, "u1", 7, day(t, d))
			return err
		})
		unlock()
		if err != nil {
			t.Fatalf("RecordCompletion(%s) failed: %v", d, err)
		}
	}

	s, err := tracker.Get(ctx, "u1", 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.CurrentStreak != 1 || s.LongestStreak != 3 {
		t.Errorf("expected 1/3, got %d/%d", s.CurrentStreak, s.LongestStreak)
	}
	if s.StreakStartDate.String() != "2024-01-10" || s.LastCompletedDate.String() != "2024-01-10" {
		t.Errorf("unexpected dates start=%s last=%s", s.StreakStartDate, s.LastCompletedDate)
	}

	var count int64
	db.Model(&models.Streak{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one streak row, got %d", count)
	}
}

func TestRecordCompletion_ConcurrentSamePair(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTracker(db)
	ctx := context.Background()
	d := day(t, "2024-04-01")

	var wg sync.WaitGroup
	errCh := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := tracker.Lock("racer", 1)
			defer unlock()
			errCh <- db.Transaction(func(tx *gorm.DB) error {
				_, err := tracker.RecordCompletion(ctx, tx, "racer", 1, d)
				return err
			})
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Fatalf("concurrent RecordCompletion failed: %v", err)
		}
	}

	s, err := tracker.Get(ctx, "racer", 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.CurrentStreak != 1 || s.LongestStreak != 1 {
		t.Errorf("expected 1/1 after same-day race, got %d/%d", s.CurrentStreak, s.LongestStreak)
	}
}

func TestGet_NotFound(t *testing.T) {
	tracker := NewTracker(newTestDB(t))
	_, err := tracker.Get(context.Background(), "nobody", 1)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTracker(db)
	ctx := context.Background()

	task := models.Task{Title: "Read", Type: models.TaskHabit}
	db.Create(&task)

	t.Run("Created", func(t *testing.T) {
		s := &models.Streak{UserID: "u", TaskID: task.ID, CurrentStreak: 2, LongestStreak: 4}
		if err := tracker.Create(ctx, s); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	})

	t.Run("Conflict", func(t *testing.T) {
		s := &models.Streak{UserID: "u", TaskID: task.ID}
		if err := tracker.Create(ctx, s); !errors.Is(err, errs.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("UnknownTask", func(t *testing.T) {
		s := &models.Streak{UserID: "u", TaskID: 999}
		if err := tracker.Create(ctx, s); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		s := &models.Streak{UserID: "u", TaskID: task.ID, CurrentStreak: 5, LongestStreak: 1}
		if err := tracker.Create(ctx, s); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}

func TestDecayStale(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTracker(db)
	ctx := context.Background()

	db.Create(&models.Streak{UserID: "a", TaskID: 1, CurrentStreak: 4, LongestStreak: 6, LastCompletedDate: day(t, "2024-05-09")})
	db.Create(&models.Streak{UserID: "a", TaskID: 2, CurrentStreak: 2, LongestStreak: 2, LastCompletedDate: day(t, "2024-05-08")})
	db.Create(&models.Streak{UserID: "a", TaskID: 3, CurrentStreak: 3, LongestStreak: 3, LastCompletedDate: day(t, "2024-05-01")})

	n, err := tracker.DecayStale(ctx, day(t, "2024-05-10"))
	if err != nil {
		t.Fatalf("DecayStale failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 decayed streaks, got %d", n)
	}

	kept, _ := tracker.Get(ctx, "a", 1)
	if kept.CurrentStreak != 4 {
		t.Errorf("yesterday's streak should be kept, got %d", kept.CurrentStreak)
	}
	gone, _ := tracker.Get(ctx, "a", 3)
	if gone.CurrentStreak != 0 || gone.LongestStreak != 3 {
		t.Errorf("expected 0/3 after decay, got %d/%d", gone.CurrentStreak, gone.LongestStreak)
	}
}

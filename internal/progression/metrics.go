package progression

import (
	"context"
	"time"

	"github.com/gdg-garage/task-streaks-api/internal/achievements"
	"github.com/gdg-garage/task-streaks-api/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const perfectWeekDays = 7

// Aggregator reads the per-user aggregates the evaluator needs straight from
// the completion and streak tables.
type Aggregator struct {
	db     *gorm.DB
	window int
}

func NewAggregator(db *gorm.DB, windowDays int) *Aggregator {
	if windowDays < 1 {
		windowDays = 1
	}
	return &Aggregator{db: db, window: windowDays}
}

// Collect builds the metric snapshot for userID as of a completion at
// completedAt. currentStreak is the streak just produced by the tracker.
func (a *Aggregator) Collect(ctx context.Context, userID string, completedAt time.Time, currentStreak int) (achievements.Metrics, error) {
	day := models.DateOf(completedAt)
	m := achievements.Metrics{CurrentStreak: currentStreak, CompletedAt: completedAt}

	var (
		total, today, active, lastWeek, health, concurrent int64
		firstDays                                          []string
	)

	g, gctx := errgroup.WithContext(ctx)
	completions := func() *gorm.DB {
		return a.db.WithContext(gctx).Model(&models.Completion{}).Where("user_id = ?", userID)
	}

	g.Go(func() error {
		return completions().Count(&total).Error
	})
	g.Go(func() error {
		return completions().Where("day = ?", day.String()).Count(&today).Error
	})
	g.Go(func() error {
		from := day.AddDays(-(a.window - 1))
		return completions().
			Where("day BETWEEN ? AND ?", from.String(), day.String()).
			Distinct("day").Count(&active).Error
	})
	g.Go(func() error {
		from := day.AddDays(-(perfectWeekDays - 1))
		return completions().
			Where("day BETWEEN ? AND ?", from.String(), day.String()).
			Distinct("day").Count(&lastWeek).Error
	})
	g.Go(func() error {
		return completions().Order("day asc").Limit(1).Pluck("day", &firstDays).Error
	})
	g.Go(func() error {
		return completions().Where("source = ?", models.SourceHealthSync).Count(&health).Error
	})
	g.Go(func() error {
		return a.db.WithContext(gctx).Model(&models.Streak{}).
			Where("user_id = ? AND current_streak > 0 AND last_completed_date IN ?",
				userID, []string{day.String(), day.AddDays(-1).String()}).
			Count(&concurrent).Error
	})

	if err := g.Wait(); err != nil {
		return m, err
	}

	m.TotalTasks = int(total)
	m.TasksToday = int(today)
	m.ActiveDays = int(active)
	m.DaysActiveLastWeek = int(lastWeek)
	m.HealthTasks = int(health)
	m.HealthConnected = health > 0
	m.ConcurrentStreaks = int(concurrent)
	m.ConsistencyPct = a.consistency(m.ActiveDays, day, firstDays)
	return m, nil
}

// consistency is the share of days inside the window, capped at the user's
// history, on which something was completed.
func (a *Aggregator) consistency(activeDays int, day models.Date, firstDays []string) float64 {
	if activeDays == 0 || len(firstDays) == 0 {
		return 0
	}
	first, err := models.ParseDate(firstDays[0])
	if err != nil {
		return 0
	}
	span := min(a.window, day.DaysSince(first)+1)
	if span < 1 {
		span = 1
	}
	return float64(activeDays) / float64(span) * 100
}

package progression

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdg-garage/task-streaks-api/internal/models"
	"github.com/gdg-garage/task-streaks-api/internal/streak"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

const decayJobName = "streak-decay"

// lastZone is the furthest-behind UTC offset. Completion days follow the
// completion's own offset, so a streak is only stale once the day after its
// last completion has ended there too.
var lastZone = time.FixedZone("UTC-12", -12*60*60)

// Decayer zeroes stale current streaks once a day so the concurrent-streak
// count only sees streaks that can still be extended.
type Decayer struct {
	tracker   *streak.Tracker
	clock     clockwork.Clock
	loc       *time.Location
	scheduler gocron.Scheduler
}

func NewDecayer(tracker *streak.Tracker, clock clockwork.Clock, loc *time.Location) (*Decayer, error) {
	s, err := gocron.NewScheduler(gocron.WithClock(clock), gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}

	d := &Decayer{tracker: tracker, clock: clock, loc: loc, scheduler: s}
	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 5, 0))),
		gocron.NewTask(func() {
			if _, err := d.RunOnce(context.Background()); err != nil {
				slog.Error("Streak decay failed", slog.Any("error", err))
			}
		}),
		gocron.WithName(decayJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// RunOnce decays every streak that can no longer be extended in any zone.
// The configured zone only decides when the job fires.
func (d *Decayer) RunOnce(ctx context.Context) (int64, error) {
	today := models.DateOf(d.clock.Now().In(lastZone))
	n, err := d.tracker.DecayStale(ctx, today)
	if err != nil {
		return 0, err
	}
	slog.Info("Stale streaks decayed", slog.String("day", today.String()), slog.Int64("count", n))
	return n, nil
}

func (d *Decayer) Start() {
	d.scheduler.Start()
}

func (d *Decayer) Shutdown() error {
	return d.scheduler.Shutdown()
}

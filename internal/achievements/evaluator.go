package achievements

import (
	"time"
)

// Achievement ids referenced by the rule checks.
const (
	FirstTask = "first_task"

	TaskMaster10      = "task_master_10"
	ProductivityPro50 = "productivity_pro_50"
	TaskLegend100     = "task_legend_100"
	TaskGod500        = "task_god_500"

	WeekWarrior     = "week_warrior"
	MonthChampion   = "month_champion"
	StreakMaster100 = "streak_master_100"
	Unstoppable365  = "unstoppable_365"

	ConsistentPerformer = "consistent_performer"
	MonthlyRegular      = "monthly_regular"
	HabitChampion       = "habit_champion"

	FitnessFriend   = "fitness_friend"
	HealthHero      = "health_hero"
	WellnessWarrior = "wellness_warrior"

	MultiTasker = "multi_tasker"
	Juggler     = "juggler"

	EarlyBird      = "early_bird"
	NightOwl       = "night_owl"
	WeekendWarrior = "weekend_warrior"
	PerfectWeek    = "perfect_week"
)

type milestone struct {
	threshold int
	id        string
}

var taskMilestones = []milestone{
	{10, TaskMaster10},
	{50, ProductivityPro50},
	{100, TaskLegend100},
	{500, TaskGod500},
}

var streakMilestones = []milestone{
	{7, WeekWarrior},
	{30, MonthChampion},
	{100, StreakMaster100},
	{365, Unstoppable365},
}

func reached(value int, table []milestone) []string {
	var ids []string
	for _, m := range table {
		if value >= m.threshold {
			ids = append(ids, m.id)
		}
	}
	return ids
}

// Metrics is the aggregate snapshot the rule checks read. It is built by the
// progression aggregator or supplied directly by clients.
type Metrics struct {
	TotalTasks         int
	TasksToday         int
	CurrentStreak      int
	ActiveDays         int
	ConsistencyPct     float64
	HealthConnected    bool
	HealthTasks        int
	ConcurrentStreaks  int
	DaysActiveLastWeek int
	CompletedAt        time.Time
}

// CheckTaskCompletion covers first_task and the completed-task milestones.
// tasksToday does not feed any rule yet but is part of the reported snapshot.
func CheckTaskCompletion(totalTasks, tasksToday int) []string {
	var ids []string
	if totalTasks >= 1 {
		ids = append(ids, FirstTask)
	}
	return append(ids, reached(totalTasks, taskMilestones)...)
}

func CheckStreak(currentStreak int) []string {
	return reached(currentStreak, streakMilestones)
}

func CheckConsistency(activeDays int, consistencyPct float64) []string {
	var ids []string
	if activeDays >= 7 {
		ids = append(ids, ConsistentPerformer)
	}
	if activeDays >= 30 {
		ids = append(ids, MonthlyRegular)
	}
	if activeDays >= 100 && consistencyPct >= 80.0 {
		ids = append(ids, HabitChampion)
	}
	return ids
}

// CheckHealth: only the first tier needs the connected flag.
func CheckHealth(connected bool, healthTasks int) []string {
	var ids []string
	if connected && healthTasks >= 1 {
		ids = append(ids, FitnessFriend)
	}
	if healthTasks >= 10 {
		ids = append(ids, HealthHero)
	}
	if healthTasks >= 50 {
		ids = append(ids, WellnessWarrior)
	}
	return ids
}

func CheckMultitasking(concurrentTasks int) []string {
	var ids []string
	if concurrentTasks >= 3 {
		ids = append(ids, MultiTasker)
	}
	if concurrentTasks >= 5 {
		ids = append(ids, Juggler)
	}
	return ids
}

// CheckSpecial looks at the wall-clock time of a completion in its own
// location.
func CheckSpecial(completedAt time.Time) []string {
	var ids []string
	hour := completedAt.Hour()
	if hour < 6 {
		ids = append(ids, EarlyBird)
	}
	if hour >= 23 {
		ids = append(ids, NightOwl)
	}
	switch completedAt.Weekday() {
	case time.Saturday, time.Sunday:
		ids = append(ids, WeekendWarrior)
	}
	return ids
}

func CheckPerfectWeek(daysActiveLastWeek int) []string {
	if daysActiveLastWeek >= 7 {
		return []string{PerfectWeek}
	}
	return nil
}

// Evaluate runs every rule against m and returns the union of qualifying ids
// without duplicates, in rule order.
func Evaluate(m Metrics) []string {
	groups := [][]string{
		CheckTaskCompletion(m.TotalTasks, m.TasksToday),
		CheckStreak(m.CurrentStreak),
		CheckConsistency(m.ActiveDays, m.ConsistencyPct),
		CheckHealth(m.HealthConnected, m.HealthTasks),
		CheckMultitasking(m.ConcurrentStreaks),
		CheckPerfectWeek(m.DaysActiveLastWeek),
	}
	if !m.CompletedAt.IsZero() {
		groups = append(groups, CheckSpecial(m.CompletedAt))
	}

	seen := make(map[string]bool)
	var ids []string
	for _, g := range groups {
		for _, id := range g {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

package models

import (
	"fmt"

	"github.com/gdg-garage/task-streaks-api/internal/errs"
)

type AchievementType string

const (
	AchievementFirstTask         AchievementType = "firstTask"
	AchievementTaskMilestone     AchievementType = "taskMilestone"
	AchievementStreakMilestone   AchievementType = "streakMilestone"
	AchievementConsistency       AchievementType = "consistency"
	AchievementHealthIntegration AchievementType = "healthIntegration"
	AchievementMultiTasking      AchievementType = "multiTasking"
	AchievementSpecial           AchievementType = "special"
)

// AchievementTypes lists every type in display order.
var AchievementTypes = []AchievementType{
	AchievementFirstTask,
	AchievementTaskMilestone,
	AchievementStreakMilestone,
	AchievementConsistency,
	AchievementHealthIntegration,
	AchievementMultiTasking,
	AchievementSpecial,
}

func ParseAchievementType(s string) (AchievementType, error) {
	for _, t := range AchievementTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown achievement type %q: %w", s, errs.ErrValidation)
}

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

func ParseRarity(s string) (Rarity, error) {
	for _, r := range Rarities {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown rarity %q: %w", s, errs.ErrValidation)
}

type TaskType string

const (
	TaskHabit    TaskType = "habit"
	TaskOneTime  TaskType = "oneTime"
	TaskPersonal TaskType = "personal"
	TaskWork     TaskType = "work"
	TaskOther    TaskType = "other"
)

var TaskTypes = []TaskType{TaskHabit, TaskOneTime, TaskPersonal, TaskWork, TaskOther}

func ParseTaskType(s string) (TaskType, error) {
	if s == "" {
		return TaskOther, nil
	}
	for _, t := range TaskTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown task type %q: %w", s, errs.ErrValidation)
}

// CompletionSource tells manual check-offs apart from ones synced from a
// health provider.
type CompletionSource string

const (
	SourceManual     CompletionSource = "manual"
	SourceHealthSync CompletionSource = "health_sync"
)

func ParseCompletionSource(s string) (CompletionSource, error) {
	switch CompletionSource(s) {
	case "":
		return SourceManual, nil
	case SourceManual, SourceHealthSync:
		return CompletionSource(s), nil
	}
	return "", fmt.Errorf("unknown completion source %q: %w", s, errs.ErrValidation)
}

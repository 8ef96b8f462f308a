package handlers

import (
	"time"

	"github.com/gdg-garage/task-streaks-api/internal/catalog"
	"github.com/gdg-garage/task-streaks-api/internal/models"
)

// Response bodies. Dates are plain YYYY-MM-DD strings on the wire.

type TaskView struct {
	ID    uint            `json:"id"`
	Title string          `json:"title"`
	Type  models.TaskType `json:"type"`
}

func taskView(t models.Task) TaskView {
	return TaskView{ID: t.ID, Title: t.Title, Type: t.Type}
}

type CompletionView struct {
	ID             uint                    `json:"id"`
	EventID        string                  `json:"event_id"`
	TaskID         uint                    `json:"task_id"`
	UserID         string                  `json:"user_id"`
	CompletionDate time.Time               `json:"completion_date"`
	Day            string                  `json:"day"`
	Source         models.CompletionSource `json:"source"`
	Note           string                  `json:"note,omitempty"`
}

func completionView(c models.Completion) CompletionView {
	return CompletionView{
		ID:             c.ID,
		EventID:        c.EventID,
		TaskID:         c.TaskID,
		UserID:         c.UserID,
		CompletionDate: c.CompletedAt,
		Day:            c.Day.String(),
		Source:         c.Source,
		Note:           c.Note,
	}
}

type StreakView struct {
	ID                uint      `json:"id"`
	UserID            string    `json:"user_id"`
	TaskID            uint      `json:"task_id"`
	CurrentStreak     int       `json:"current_streak"`
	LongestStreak     int       `json:"longest_streak"`
	LastCompletedDate string    `json:"last_completed_date,omitempty"`
	StreakStartDate   string    `json:"streak_start_date,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func streakView(s models.Streak) StreakView {
	return StreakView{
		ID:                s.ID,
		UserID:            s.UserID,
		TaskID:            s.TaskID,
		CurrentStreak:     s.CurrentStreak,
		LongestStreak:     s.LongestStreak,
		LastCompletedDate: s.LastCompletedDate.String(),
		StreakStartDate:   s.StreakStartDate.String(),
		UpdatedAt:         s.UpdatedAt,
	}
}

type AchievementView struct {
	AchievementID string                 `json:"achievement_id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	IconCodePoint string                 `json:"icon_code_point"`
	Color         string                 `json:"color"`
	Type          models.AchievementType `json:"type"`
	Rarity        models.Rarity          `json:"rarity"`
	TargetValue   int                    `json:"target_value"`
	IsSecret      bool                   `json:"is_secret"`
}

func achievementView(e catalog.Entry) AchievementView {
	return AchievementView{
		AchievementID: e.ID,
		Title:         e.Title,
		Description:   e.Description,
		IconCodePoint: e.IconCodePoint,
		Color:         e.Color,
		Type:          e.Type,
		Rarity:        e.Rarity,
		TargetValue:   e.TargetValue,
		IsSecret:      e.Secret,
	}
}

type UserAchievementView struct {
	ID              uint             `json:"id"`
	UserID          string           `json:"user_id"`
	AchievementID   string           `json:"achievement_id"`
	EarnedAt        *time.Time       `json:"earned_at"`
	CurrentProgress int              `json:"current_progress"`
	IsNotified      bool             `json:"is_notified"`
	Achievement     *AchievementView `json:"achievement,omitempty"`
}

func userAchievementView(ua models.UserAchievement, cat *catalog.Catalog) UserAchievementView {
	v := UserAchievementView{
		ID:              ua.ID,
		UserID:          ua.UserID,
		AchievementID:   ua.AchievementID,
		EarnedAt:        ua.EarnedAt,
		CurrentProgress: ua.CurrentProgress,
		IsNotified:      ua.IsNotified,
	}
	if e, ok := cat.ByID(ua.AchievementID); ok {
		av := achievementView(e)
		v.Achievement = &av
	}
	return v
}

func userAchievementViews(list []models.UserAchievement, cat *catalog.Catalog) []UserAchievementView {
	out := make([]UserAchievementView, 0, len(list))
	for _, ua := range list {
		out = append(out, userAchievementView(ua, cat))
	}
	return out
}

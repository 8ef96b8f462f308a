package handlers

import (
	"context"
	"time"

	"github.com/gdg-garage/task-streaks-api/internal/achievements"
)

// The check endpoints serve clients that compute their own metrics. Each runs
// one rule and grants whatever qualifies.

type CheckResponse struct {
	Body struct {
		NewAchievements []UserAchievementView `json:"new_achievements"`
	}
}

func (h *AchievementHandler) grantChecked(ctx context.Context, userID string, qualifying []string) *CheckResponse {
	res := &CheckResponse{}
	res.Body.NewAchievements = userAchievementViews(h.orch.CheckAndGrant(ctx, userID, qualifying), h.catalog())
	return res
}

type CheckTaskCompletionRequest struct {
	UserID string `path:"user_id"`
	Body   struct {
		TotalTasks int `json:"total_tasks" minimum:"0"`
		TasksToday int `json:"tasks_today,omitempty" minimum:"0"`
	}
}

func (h *AchievementHandler) HandleCheckTaskCompletion(ctx context.Context, input *CheckTaskCompletionRequest) (*CheckResponse, error) {
	ids := achievements.CheckTaskCompletion(input.Body.TotalTasks, input.Body.TasksToday)
	return h.grantChecked(ctx, input.UserID, ids), nil
}

type CheckStreakRequest struct {
	UserID string `path:"user_id"`
	Body   struct {
		CurrentStreak int `json:"current_streak" minimum:"0"`
	}
}

func (h *AchievementHandler) HandleCheckStreak(ctx context.Context, input *CheckStreakRequest) (*CheckResponse, error) {
	return h.grantChecked(ctx, input.UserID, achievements.CheckStreak(input.Body.CurrentStreak)), nil
}

type CheckConsistencyRequest struct {
	UserID string `path:"user_id"`
	Body   struct {
		ActiveDays            int     `json:"active_days" minimum:"0"`
		ConsistencyPercentage float64 `json:"consistency_percentage" minimum:"0" maximum:"100"`
	}
}

func (h *AchievementHandler) HandleCheckConsistency(ctx context.Context, input *CheckConsistencyRequest) (*CheckResponse, error) {
	ids := achievements.CheckConsistency(input.Body.ActiveDays, input.Body.ConsistencyPercentage)
	return h.grantChecked(ctx, input.UserID, ids), nil
}

type CheckHealthRequest struct {
	UserID string `path:"user_id"`
	Body   struct {
		HealthConnected bool `json:"health_connected"`
		HealthTasks     int  `json:"health_tasks" minimum:"0"`
	}
}

func (h *AchievementHandler) HandleCheckHealth(ctx context.Context, input *CheckHealthRequest) (*CheckResponse, error) {
	ids := achievements.CheckHealth(input.Body.HealthConnected, input.Body.HealthTasks)
	return h.grantChecked(ctx, input.UserID, ids), nil
}

type CheckMultitaskingRequest struct {
	UserID string `path:"user_id"`
	Body   struct {
		ConcurrentTasks int `json:"concurrent_tasks" minimum:"0"`
	}
}

func (h *AchievementHandler) HandleCheckMultitasking(ctx context.Context, input *CheckMultitaskingRequest) (*CheckResponse, error) {
	return h.grantChecked(ctx, input.UserID, achievements.CheckMultitasking(input.Body.ConcurrentTasks)), nil
}

type CheckSpecialRequest struct {
	UserID string `path:"user_id"`
	Body   struct {
		CompletionTime time.Time `json:"completion_time" doc:"Local time of the completion, with offset"`
	}
}

func (h *AchievementHandler) HandleCheckSpecial(ctx context.Context, input *CheckSpecialRequest) (*CheckResponse, error) {
	return h.grantChecked(ctx, input.UserID, achievements.CheckSpecial(input.Body.CompletionTime)), nil
}

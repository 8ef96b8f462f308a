package handlers

import (
	"context"
	"time"

	"github.com/gdg-garage/task-streaks-api/internal/catalog"
	"github.com/gdg-garage/task-streaks-api/internal/models"
	"github.com/gdg-garage/task-streaks-api/internal/progression"
	"github.com/gdg-garage/task-streaks-api/internal/streak"
)

type CompletionHandler struct {
	orch    *progression.Orchestrator
	catalog *catalog.Catalog
}

func NewCompletionHandler(orch *progression.Orchestrator, cat *catalog.Catalog) *CompletionHandler {
	return &CompletionHandler{orch: orch, catalog: cat}
}

type CreateCompletionRequest struct {
	Body struct {
		TaskID         uint      `json:"task_id" doc:"Completed task" minimum:"1"`
		UserID         string    `json:"user_id" doc:"User who completed the task" minLength:"1" maxLength:"50"`
		CompletionDate time.Time `json:"completion_date,omitempty" doc:"When the task was completed, defaults to now. The offset decides the streak day."`
		Note           string    `json:"note,omitempty" doc:"Optional note"`
		Source         string    `json:"source,omitempty" doc:"Where the completion came from" enum:"manual,health_sync"`
		EventID        string    `json:"event_id,omitempty" doc:"Client generated UUID, replays with the same id are ignored"`
	}
}

type CreateCompletionResponse struct {
	Body struct {
		Completion      CompletionView        `json:"completion"`
		Streak          StreakView            `json:"streak"`
		Outcome         streak.Outcome        `json:"outcome,omitempty" doc:"started, extended, reset, same_day or backdated"`
		Duplicate       bool                  `json:"duplicate"`
		NewAchievements []UserAchievementView `json:"new_achievements"`
	}
}

func (h *CompletionHandler) HandleCreateCompletion(ctx context.Context, input *CreateCompletionRequest) (*CreateCompletionResponse, error) {
	source, err := models.ParseCompletionSource(input.Body.Source)
	if err != nil {
		return nil, toHTTPError(err, "record completion")
	}

	result, err := h.orch.OnTaskCompleted(ctx, progression.CompletionInput{
		UserID:      input.Body.UserID,
		TaskID:      input.Body.TaskID,
		CompletedAt: input.Body.CompletionDate,
		Note:        input.Body.Note,
		Source:      source,
		EventID:     input.Body.EventID,
	})
	if err != nil {
		return nil, toHTTPError(err, "record completion")
	}

	res := &CreateCompletionResponse{}
	res.Body.Completion = completionView(result.Completion)
	res.Body.Streak = streakView(result.Streak)
	res.Body.Outcome = result.Outcome
	res.Body.Duplicate = result.Duplicate
	res.Body.NewAchievements = userAchievementViews(result.Awarded, h.catalog)
	return res, nil
}

type ListCompletionsRequest struct {
	UserID string `query:"user_id" doc:"User to list completions for" required:"true"`
	TaskID uint   `query:"task_id" doc:"Only completions of this task"`
}

type ListCompletionsResponse struct {
	Body []CompletionView
}

func (h *CompletionHandler) HandleListCompletions(ctx context.Context, input *ListCompletionsRequest) (*ListCompletionsResponse, error) {
	list, err := h.orch.Completions(ctx, input.UserID, input.TaskID)
	if err != nil {
		return nil, toHTTPError(err, "list completions")
	}

	res := &ListCompletionsResponse{Body: make([]CompletionView, 0, len(list))}
	for _, c := range list {
		res.Body = append(res.Body, completionView(c))
	}
	return res, nil
}

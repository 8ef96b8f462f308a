package handlers

import (
	"context"
	"fmt"

	"github.com/gdg-garage/task-streaks-api/internal/errs"
	"github.com/gdg-garage/task-streaks-api/internal/models"
	"github.com/gdg-garage/task-streaks-api/internal/streak"
)

type StreakHandler struct {
	tracker *streak.Tracker
}

func NewStreakHandler(tracker *streak.Tracker) *StreakHandler {
	return &StreakHandler{tracker: tracker}
}

type ListStreaksRequest struct {
	UserID string `query:"user_id" doc:"Only streaks of this user"`
}

type ListStreaksResponse struct {
	Body []StreakView
}

func (h *StreakHandler) HandleListStreaks(ctx context.Context, input *ListStreaksRequest) (*ListStreaksResponse, error) {
	list, err := h.tracker.ListForUser(ctx, input.UserID)
	if err != nil {
		return nil, toHTTPError(err, "list streaks")
	}

	res := &ListStreaksResponse{Body: make([]StreakView, 0, len(list))}
	for _, s := range list {
		res.Body = append(res.Body, streakView(s))
	}
	return res, nil
}

type GetStreakRequest struct {
	UserID string `path:"user_id"`
	TaskID uint   `path:"task_id"`
}

type StreakResponse struct {
	Body StreakView
}

func (h *StreakHandler) HandleGetStreak(ctx context.Context, input *GetStreakRequest) (*StreakResponse, error) {
	s, err := h.tracker.Get(ctx, input.UserID, input.TaskID)
	if err != nil {
		return nil, toHTTPError(err, "load streak")
	}
	return &StreakResponse{Body: streakView(*s)}, nil
}

type CreateStreakRequest struct {
	Body struct {
		UserID            string `json:"user_id" minLength:"1" maxLength:"50"`
		TaskID            uint   `json:"task_id" minimum:"1"`
		CurrentStreak     int    `json:"current_streak,omitempty" minimum:"0"`
		LongestStreak     int    `json:"longest_streak,omitempty" minimum:"0"`
		LastCompletedDate string `json:"last_completed_date,omitempty" format:"date"`
		StreakStartDate   string `json:"streak_start_date,omitempty" format:"date"`
	}
}

func (h *StreakHandler) HandleCreateStreak(ctx context.Context, input *CreateStreakRequest) (*StreakResponse, error) {
	s := models.Streak{
		UserID:        input.Body.UserID,
		TaskID:        input.Body.TaskID,
		CurrentStreak: input.Body.CurrentStreak,
		LongestStreak: input.Body.LongestStreak,
	}

	var err error
	if s.LastCompletedDate, err = optionalDate(input.Body.LastCompletedDate); err != nil {
		return nil, toHTTPError(err, "create streak")
	}
	if s.StreakStartDate, err = optionalDate(input.Body.StreakStartDate); err != nil {
		return nil, toHTTPError(err, "create streak")
	}

	if err := h.tracker.Create(ctx, &s); err != nil {
		return nil, toHTTPError(err, "create streak")
	}
	return &StreakResponse{Body: streakView(s)}, nil
}

func optionalDate(s string) (models.Date, error) {
	if s == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return d, fmt.Errorf("%v: %w", err, errs.ErrValidation)
	}
	return d, nil
}

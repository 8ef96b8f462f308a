package handlers

import (
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/task-streaks-api/internal/errs"
)

// toHTTPError maps service errors onto huma responses. Errors that are
// already huma responses pass through.
func toHTTPError(err error, action string) error {
	var se huma.StatusError
	switch {
	case errors.As(err, &se):
		return err
	case errors.Is(err, errs.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, errs.ErrConflict):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, errs.ErrValidation):
		return huma.Error422UnprocessableEntity(err.Error())
	}
	slog.Error(action+" failed", slog.Any("error", err))
	return huma.Error500InternalServerError("Failed to " + action)
}

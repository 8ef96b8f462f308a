package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/task-streaks-api/internal/models"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db *gorm.DB
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{db: db}
}

type CreateTaskRequest struct {
	Body struct {
		Title string `json:"title" doc:"Task title" minLength:"1" maxLength:"200"`
		Type  string `json:"type,omitempty" doc:"Task type" enum:"habit,oneTime,personal,work,other"`
	}
}

type TaskResponse struct {
	Body TaskView
}

func (h *TaskHandler) HandleCreateTask(ctx context.Context, input *CreateTaskRequest) (*TaskResponse, error) {
	taskType, err := models.ParseTaskType(input.Body.Type)
	if err != nil {
		return nil, toHTTPError(err, "create task")
	}

	task := models.Task{Title: input.Body.Title, Type: taskType}
	if err := h.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, toHTTPError(err, "create task")
	}

	return &TaskResponse{Body: taskView(task)}, nil
}

type GetTaskRequest struct {
	ID uint `path:"id" doc:"Task ID"`
}

func (h *TaskHandler) HandleGetTask(ctx context.Context, input *GetTaskRequest) (*TaskResponse, error) {
	var task models.Task
	if err := h.db.WithContext(ctx).First(&task, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Task not found")
		}
		return nil, toHTTPError(err, "load task")
	}
	return &TaskResponse{Body: taskView(task)}, nil
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	gorm.Model
	Title string   `gorm:"size:200;not null" json:"title"`
	Type  TaskType `gorm:"size:20;not null;default:other" json:"type"`
}

// Completion is an append-only record of a user marking a task done.
type Completion struct {
	gorm.Model
	EventID     string           `gorm:"size:36;uniqueIndex;not null" json:"event_id"`
	TaskID      uint             `gorm:"not null;index:idx_completion_user_task_day" json:"task_id"`
	UserID      string           `gorm:"size:50;not null;index:idx_completion_user_task_day" json:"user_id"`
	CompletedAt time.Time        `gorm:"not null" json:"completion_date"`
	Day         Date             `gorm:"size:10;not null;index:idx_completion_user_task_day" json:"day"`
	Source      CompletionSource `gorm:"size:20;not null;default:manual" json:"source"`
	Note        string           `gorm:"type:text" json:"note,omitempty"`
}

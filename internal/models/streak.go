package models

import (
	"gorm.io/gorm"
)

// Streak is the consecutive-day state of one (user, task) pair.
type Streak struct {
	gorm.Model
	UserID            string `gorm:"size:50;not null;uniqueIndex:idx_streak_user_task" json:"user_id"`
	TaskID            uint   `gorm:"not null;uniqueIndex:idx_streak_user_task" json:"task_id"`
	CurrentStreak     int    `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak     int    `gorm:"not null;default:0" json:"longest_streak"`
	LastCompletedDate Date   `gorm:"size:10" json:"last_completed_date"`
	StreakStartDate   Date   `gorm:"size:10" json:"streak_start_date"`
}

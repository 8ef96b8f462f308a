package models

import (
	"time"

	"gorm.io/gorm"
)

// Achievement is one catalog row. AchievementID is the business key the
// evaluator and clients use.
type Achievement struct {
	gorm.Model
	AchievementID string          `gorm:"uniqueIndex;size:100;not null" json:"achievement_id"`
	Title         string          `gorm:"size:200;not null" json:"title"`
	Description   string          `gorm:"type:text" json:"description"`
	IconCodePoint string          `gorm:"size:20" json:"icon_code_point"`
	Color         string          `gorm:"size:10" json:"color"`
	Type          AchievementType `gorm:"size:50;not null;index" json:"type"`
	Rarity        Rarity          `gorm:"size:20;not null;default:common" json:"rarity"`
	TargetValue   int             `gorm:"not null;default:1" json:"target_value"`
	IsSecret      bool            `gorm:"not null;default:false" json:"is_secret"`
}

// UserAchievement tracks one user's progress on, and grant of, one
// achievement. EarnedAt is set once and never cleared.
type UserAchievement struct {
	gorm.Model
	UserID          string     `gorm:"size:50;not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID   string     `gorm:"size:100;not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	EarnedAt        *time.Time `json:"earned_at"`
	CurrentProgress int        `gorm:"not null;default:0" json:"current_progress"`
	IsNotified      bool       `gorm:"not null;default:false" json:"is_notified"`
}

func (ua *UserAchievement) Earned() bool {
	return ua.EarnedAt != nil
}

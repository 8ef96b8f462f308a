package achievements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gdg-garage/task-streaks-api/internal/catalog"
	"github.com/gdg-garage/task-streaks-api/internal/errs"
	"github.com/gdg-garage/task-streaks-api/internal/models"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var userAchievementKey = []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}}

// Granter owns every write to user_achievements.
type Granter struct {
	db      *gorm.DB
	catalog *catalog.Catalog
	clock   clockwork.Clock
}

func NewGranter(db *gorm.DB, cat *catalog.Catalog, clock clockwork.Clock) *Granter {
	return &Granter{db: db, catalog: cat, clock: clock}
}

func (g *Granter) Catalog() *catalog.Catalog {
	return g.catalog
}

// Grant awards achievementID to userID. It returns (nil, nil) when the user
// already has a row for that achievement, earned or not, so callers can race
// or retry freely. Unknown ids yield errs.ErrNotFound.
func (g *Granter) Grant(ctx context.Context, userID, achievementID string) (*models.UserAchievement, error) {
	entry, ok := g.catalog.ByID(achievementID)
	if !ok {
		return nil, fmt.Errorf("achievement %q: %w", achievementID, errs.ErrNotFound)
	}

	now := g.clock.Now()
	ua := models.UserAchievement{
		UserID:          userID,
		AchievementID:   achievementID,
		EarnedAt:        &now,
		CurrentProgress: entry.TargetValue,
		IsNotified:      false,
	}

	res := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: userAchievementKey, DoNothing: true}).
		Create(&ua)
	if res.Error != nil {
		return nil, fmt.Errorf("granting %s to %s: %w", achievementID, userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	slog.Info("Achievement granted",
		slog.String("user_id", userID),
		slog.String("achievement_id", achievementID),
		slog.String("rarity", string(entry.Rarity)))
	return &ua, nil
}

// GrantAll grants each id independently; a failure on one id is logged and
// does not stop the others.
func (g *Granter) GrantAll(ctx context.Context, userID string, ids []string) []models.UserAchievement {
	var awarded []models.UserAchievement
	for _, id := range ids {
		ua, err := g.Grant(ctx, userID, id)
		if err != nil {
			slog.Error("Failed to grant achievement",
				slog.String("user_id", userID),
				slog.String("achievement_id", id),
				slog.Any("error", err))
			continue
		}
		if ua != nil {
			awarded = append(awarded, *ua)
		}
	}
	return awarded
}

// UpdateProgress records progress towards achievementID, creating the row on
// first use. Progress never goes down, and reaching the target sets EarnedAt
// once.
func (g *Granter) UpdateProgress(ctx context.Context, userID, achievementID string, progress int) (*models.UserAchievement, error) {
	if progress < 0 {
		return nil, fmt.Errorf("progress must not be negative: %w", errs.ErrValidation)
	}
	entry, ok := g.catalog.ByID(achievementID)
	if !ok {
		return nil, fmt.Errorf("achievement %q: %w", achievementID, errs.ErrNotFound)
	}

	var ua models.UserAchievement
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := lockUserAchievement(tx, userID, achievementID, &ua)
		if err != nil {
			return err
		}

		if !found {
			ua = models.UserAchievement{UserID: userID, AchievementID: achievementID}
			res := tx.Clauses(clause.OnConflict{Columns: userAchievementKey, DoNothing: true}).Create(&ua)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// lost the insert race, continue on the winner's row
				if _, err := lockUserAchievement(tx, userID, achievementID, &ua); err != nil {
					return err
				}
			}
		}

		ua.CurrentProgress = max(ua.CurrentProgress, progress)
		if ua.CurrentProgress >= entry.TargetValue && ua.EarnedAt == nil {
			now := g.clock.Now()
			ua.EarnedAt = &now
			slog.Info("Achievement earned through progress",
				slog.String("user_id", userID),
				slog.String("achievement_id", achievementID))
		}
		return tx.Save(&ua).Error
	})
	if err != nil {
		return nil, err
	}
	return &ua, nil
}

func lockUserAchievement(tx *gorm.DB, userID, achievementID string, ua *models.UserAchievement) (bool, error) {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(ua).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (g *Granter) Get(ctx context.Context, userID, achievementID string) (*models.UserAchievement, error) {
	var ua models.UserAchievement
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&ua).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user achievement %s/%s: %w", userID, achievementID, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ua, nil
}

func (g *Granter) ListForUser(ctx context.Context, userID string, earnedOnly bool) ([]models.UserAchievement, error) {
	q := g.db.WithContext(ctx).Where("user_id = ?", userID)
	if earnedOnly {
		q = q.Where("earned_at IS NOT NULL")
	}
	var out []models.UserAchievement
	if err := q.Order("id asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Granter) ListForUserByType(ctx context.Context, userID string, typ models.AchievementType) ([]models.UserAchievement, error) {
	entries := g.catalog.ByType(typ)
	if len(entries) == 0 {
		return []models.UserAchievement{}, nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}

	var out []models.UserAchievement
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND achievement_id IN ?", userID, ids).
		Order("id asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListUnnotified is the notification queue: earned achievements the client
// has not acknowledged yet.
func (g *Granter) ListUnnotified(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	var out []models.UserAchievement
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND is_notified = ? AND earned_at IS NOT NULL", userID, false).
		Order("earned_at asc, id asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotified flags the given achievements as shown in a single update and
// returns how many rows changed.
func (g *Granter) MarkNotified(ctx context.Context, userID string, achievementIDs []string) (int64, error) {
	if len(achievementIDs) == 0 {
		return 0, nil
	}
	res := g.db.WithContext(ctx).
		Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id IN ?", userID, achievementIDs).
		Update("is_notified", true)
	return res.RowsAffected, res.Error
}

func (g *Granter) MarkOneNotified(ctx context.Context, userID, achievementID string) error {
	if _, err := g.Get(ctx, userID, achievementID); err != nil {
		return err
	}
	_, err := g.MarkNotified(ctx, userID, []string{achievementID})
	return err
}

type TypeStats struct {
	Total  int `json:"total"`
	Earned int `json:"earned"`
}

type RecentAchievement struct {
	AchievementID string `json:"achievement_id"`
	EarnedAt      string `json:"earned_at"`
}

type Stats struct {
	TotalEarned          int                                  `json:"total_earned"`
	TotalAvailable       int                                  `json:"total_available"`
	CompletionPercentage int                                  `json:"completion_percentage"`
	ByType               map[models.AchievementType]TypeStats `json:"by_type"`
	RecentAchievements   []RecentAchievement                  `json:"recent_achievements"`
}

const recentLimit = 5

func (g *Granter) Stats(ctx context.Context, userID string) (*Stats, error) {
	earned, err := g.ListForUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	earnedIDs := make(map[string]bool, len(earned))
	for _, ua := range earned {
		earnedIDs[ua.AchievementID] = true
	}

	stats := &Stats{
		TotalAvailable:     g.catalog.Len(),
		ByType:             make(map[models.AchievementType]TypeStats),
		RecentAchievements: []RecentAchievement{},
	}
	for _, e := range g.catalog.All() {
		ts := stats.ByType[e.Type]
		ts.Total++
		if earnedIDs[e.ID] {
			ts.Earned++
			stats.TotalEarned++
		}
		stats.ByType[e.Type] = ts
	}
	if stats.TotalAvailable > 0 {
		stats.CompletionPercentage = stats.TotalEarned * 100 / stats.TotalAvailable
	}

	sort.SliceStable(earned, func(i, j int) bool {
		return earned[i].EarnedAt.After(*earned[j].EarnedAt)
	})
	for i, ua := range earned {
		if i == recentLimit {
			break
		}
		stats.RecentAchievements = append(stats.RecentAchievements, RecentAchievement{
			AchievementID: ua.AchievementID,
			EarnedAt:      ua.EarnedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return stats, nil
}

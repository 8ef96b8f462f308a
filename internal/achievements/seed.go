package achievements

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gdg-garage/task-streaks-api/internal/catalog"
	"github.com/gdg-garage/task-streaks-api/internal/models"
	"gorm.io/gorm"
)

type SeedResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// InitializeDefaults upserts every catalog entry into the achievements table.
// Running it again with the same catalog changes nothing but the update
// timestamps.
func InitializeDefaults(ctx context.Context, db *gorm.DB, cat *catalog.Catalog) (*SeedResult, error) {
	res := &SeedResult{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range cat.All() {
			var row models.Achievement
			err := tx.Where("achievement_id = ?", e.ID).First(&row).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				row = e.Model()
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				res.Created++
			case err != nil:
				return err
			default:
				fresh := e.Model()
				fresh.Model = row.Model
				if err := tx.Save(&fresh).Error; err != nil {
					return err
				}
				res.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Total = res.Created + res.Updated

	slog.Info("Achievement catalog seeded",
		slog.Int("version", cat.Version()),
		slog.Int("created", res.Created),
		slog.Int("updated", res.Updated))
	return res, nil
}

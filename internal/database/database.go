package database

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdg-garage/task-streaks-api/internal/config"
	"github.com/gdg-garage/task-streaks-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}

// newLogger logs slow queries and real errors. Lookups that find nothing are
// how new streaks and unseen event ids are detected, so they stay quiet.
func newLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Open picks the dialector for cfg.DatabaseDriver.
func Open(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DatabaseDriver {
	case "", "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{Logger: newLogger(os.Stdout)})
		if err != nil {
			return nil, err
		}
		// SQLite serialises writers anyway; a single connection also keeps
		// ":memory:" databases from splitting across pool connections.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{Logger: newLogger(os.Stdout)})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Task{},
		&models.Completion{},
		&models.Streak{},
		&models.Achievement{},
		&models.UserAchievement{},
	)
}

// OpenInMemory returns a migrated private SQLite database.
func OpenInMemory() (*gorm.DB, error) {
	db, err := Open(&config.Config{DatabaseDriver: "sqlite", DatabasePath: ":memory:"})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string `mapstructure:"PORT"`
	DatabaseDriver                string `mapstructure:"DATABASE_DRIVER"`
	DatabasePath                  string `mapstructure:"DATABASE_PATH"`
	DatabaseURL                   string `mapstructure:"DATABASE_URL"`
	AdminJWTSecret                string `mapstructure:"ADMIN_JWT_SECRET"`
	DiscordBotToken               string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	CatalogPath                   string `mapstructure:"CATALOG_PATH"`
	ConsistencyWindowDays         int    `mapstructure:"CONSISTENCY_WINDOW_DAYS"`
	Timezone                      string `mapstructure:"TIMEZONE"`
	StreakDecayEnabled            bool   `mapstructure:"STREAK_DECAY_ENABLED"`
	SeedOnStart                   bool   `mapstructure:"SEED_ON_START"`
	LogLevel                      string `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() *Config {
	// A missing .env is fine, the environment is read directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_PATH", "streaks.db")
	viper.SetDefault("CONSISTENCY_WINDOW_DAYS", 100)
	viper.SetDefault("TIMEZONE", "UTC")
	viper.SetDefault("STREAK_DECAY_ENABLED", true)
	viper.SetDefault("SEED_ON_START", true)
	viper.SetDefault("LOG_LEVEL", "info")

	viper.BindEnv("DATABASE_URL")
	viper.BindEnv("ADMIN_JWT_SECRET")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("CATALOG_PATH")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	if config.ConsistencyWindowDays < 1 {
		log.Fatalf("CONSISTENCY_WINDOW_DAYS must be positive, got %d", config.ConsistencyWindowDays)
	}
	if _, err := time.LoadLocation(config.Timezone); err != nil {
		log.Fatalf("Invalid TIMEZONE %q: %v", config.Timezone, err)
	}

	return &config
}

// Location returns the configured time zone, UTC when unset.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

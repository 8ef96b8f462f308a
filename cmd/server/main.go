package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdg-garage/task-streaks-api/internal/achievements"
	"github.com/gdg-garage/task-streaks-api/internal/auth"
	"github.com/gdg-garage/task-streaks-api/internal/catalog"
	"github.com/gdg-garage/task-streaks-api/internal/config"
	"github.com/gdg-garage/task-streaks-api/internal/database"
	"github.com/gdg-garage/task-streaks-api/internal/handlers"
	"github.com/gdg-garage/task-streaks-api/internal/notifier"
	"github.com/gdg-garage/task-streaks-api/internal/progression"
	"github.com/gdg-garage/task-streaks-api/internal/streak"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()
	setupLogger(cfg.LogLevel)

	// Connect to Database
	db := database.Connect(cfg)

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load achievement catalog: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SeedOnStart {
		if _, err := achievements.InitializeDefaults(ctx, db, cat); err != nil {
			log.Fatalf("Failed to seed achievements: %v", err)
		}
	}

	clock := clockwork.NewRealClock()

	// Announcements are optional
	var announcer notifier.Notifier
	if cfg.DiscordBotToken != "" {
		discordNotifier, err := notifier.NewDiscordNotifier(cfg.DiscordBotToken, cfg.DiscordNotificationsChannelID)
		if err != nil {
			log.Printf("Discord notifier not initialized: %v", err)
		} else {
			defer discordNotifier.Close()
			announcer = discordNotifier
		}
	}

	tracker := streak.NewTracker(db)
	granter := achievements.NewGranter(db, cat, clock)
	orch := progression.NewOrchestrator(db, tracker, granter,
		progression.NewAggregator(db, cfg.ConsistencyWindowDays), clock, announcer)

	if cfg.StreakDecayEnabled {
		decayer, err := progression.NewDecayer(tracker, clock, cfg.Location())
		if err != nil {
			log.Fatalf("Failed to schedule streak decay: %v", err)
		}
		decayer.Start()
		defer func() {
			if err := decayer.Shutdown(); err != nil {
				slog.Warn("Streak decay scheduler did not stop cleanly", slog.Any("error", err))
			}
		}()
	}

	authHandler := auth.NewAuthHandler(cfg, clock)
	if !authHandler.Enabled() {
		slog.Warn("ADMIN_JWT_SECRET is not set, admin endpoints are open")
	}

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, handlers.Handlers{
		Tasks:        handlers.NewTaskHandler(db),
		Completions:  handlers.NewCompletionHandler(orch, cat),
		Streaks:      handlers.NewStreakHandler(tracker),
		Achievements: handlers.NewAchievementHandler(db, granter, orch, authHandler),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", slog.Any("error", err))
		}
	}()

	// Start Server
	slog.Info("Starting server", slog.String("port", cfg.Port), slog.Int("achievements", cat.Len()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

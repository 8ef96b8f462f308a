package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Tasks        *TaskHandler
	Completions  *CompletionHandler
	Streaks      *StreakHandler
	Achievements *AchievementHandler
}

func RegisterRoutes(r *chi.Mux, h Handlers) huma.API {
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	return NewAPI(r, h)
}

// NewAPI mounts every huma operation on r.
func NewAPI(r chi.Router, h Handlers) huma.API {
	config := huma.DefaultConfig("Task Streaks API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api := humachi.New(r, config)

	// Tasks and completions
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create a task",
		DefaultStatus: http.StatusCreated,
	}, h.Tasks.HandleCreateTask)
	huma.Get(api, "/tasks/{id}", h.Tasks.HandleGetTask)

	huma.Register(api, huma.Operation{
		OperationID:   "create-completion",
		Method:        http.MethodPost,
		Path:          "/completions",
		Summary:       "Record a task completion",
		Description:   "Updates the streak of the task and grants any achievements the completion unlocks.",
		DefaultStatus: http.StatusCreated,
	}, h.Completions.HandleCreateCompletion)
	huma.Get(api, "/completions", h.Completions.HandleListCompletions)

	// Streaks
	huma.Get(api, "/streaks", h.Streaks.HandleListStreaks)
	huma.Get(api, "/streaks/{user_id}/{task_id}", h.Streaks.HandleGetStreak)
	huma.Register(api, huma.Operation{
		OperationID:   "create-streak",
		Method:        http.MethodPost,
		Path:          "/streaks",
		Summary:       "Create a streak record directly",
		DefaultStatus: http.StatusCreated,
	}, h.Streaks.HandleCreateStreak)

	// Achievement catalog
	a := h.Achievements
	huma.Get(api, "/achievements", a.HandleListAchievements)
	huma.Get(api, "/achievements/types", a.HandleListTypes)
	huma.Get(api, "/achievements/rarities", a.HandleListRarities)
	huma.Get(api, "/achievements/{achievement_id}", a.HandleGetAchievement)
	huma.Post(api, "/achievements/initialize-defaults", a.HandleInitializeDefaults, func(o *huma.Operation) {
		o.Security = []map[string][]string{{"bearerAuth": {}}}
	})

	// Per-user achievements
	huma.Get(api, "/achievements/user/{user_id}", a.HandleListUserAchievements)
	huma.Get(api, "/achievements/user/{user_id}/by-type/{type}", a.HandleListUserAchievementsByType)
	huma.Get(api, "/achievements/user/{user_id}/stats", a.HandleUserStats)
	huma.Get(api, "/achievements/user/{user_id}/unnotified", a.HandleListUnnotified)
	huma.Put(api, "/achievements/user/{user_id}/mark-notified", a.HandleMarkNotified)
	huma.Put(api, "/achievements/user/{user_id}/{achievement_id}/mark-notified", a.HandleMarkOneNotified)
	huma.Post(api, "/achievements/user/{user_id}/award/{achievement_id}", a.HandleAward)
	huma.Post(api, "/achievements/user/{user_id}/update-progress/{achievement_id}", a.HandleUpdateProgress)

	// Manual checks
	huma.Post(api, "/achievements/user/{user_id}/check-task-completion", a.HandleCheckTaskCompletion)
	huma.Post(api, "/achievements/user/{user_id}/check-streak", a.HandleCheckStreak)
	huma.Post(api, "/achievements/user/{user_id}/check-consistency", a.HandleCheckConsistency)
	huma.Post(api, "/achievements/user/{user_id}/check-health", a.HandleCheckHealth)
	huma.Post(api, "/achievements/user/{user_id}/check-multitasking", a.HandleCheckMultitasking)
	huma.Post(api, "/achievements/user/{user_id}/check-special", a.HandleCheckSpecial)

	return api
}

package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gdg-garage/task-streaks-api/internal/achievements"
	"github.com/gdg-garage/task-streaks-api/internal/auth"
	"github.com/gdg-garage/task-streaks-api/internal/catalog"
	"github.com/gdg-garage/task-streaks-api/internal/config"
	"github.com/gdg-garage/task-streaks-api/internal/database"
	"github.com/gdg-garage/task-streaks-api/internal/models"
	"github.com/gdg-garage/task-streaks-api/internal/progression"
	"github.com/gdg-garage/task-streaks-api/internal/streak"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

type testEnv struct {
	api  humatest.TestAPI
	db   *gorm.DB
	auth *auth.AuthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	// Wednesday 2024-01-03 10:00 UTC.
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC))
	tracker := streak.NewTracker(db)
	granter := achievements.NewGranter(db, cat, clock)
	orch := progression.NewOrchestrator(db, tracker, granter, progression.NewAggregator(db, 100), clock, nil)
	authHandler := auth.NewAuthHandler(&config.Config{AdminJWTSecret: "test-secret"}, clock)

	api := NewAPI(chi.NewMux(), Handlers{
		Tasks:        NewTaskHandler(db),
		Completions:  NewCompletionHandler(orch, cat),
		Streaks:      NewStreakHandler(tracker),
		Achievements: NewAchievementHandler(db, granter, orch, authHandler),
	})
	return &testEnv{api: humatest.Wrap(t, api), db: db, auth: authHandler}
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("failed to decode %s: %v", body, err)
	}
}

func (e *testEnv) createTask(t *testing.T, title string) uint {
	t.Helper()
	resp := e.api.Post("/tasks", map[string]any{"title": title, "type": "habit"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var task TaskView
	decode(t, resp.Body.Bytes(), &task)
	return task.ID
}

func TestTasks(t *testing.T) {
	env := newTestEnv(t)
	id := env.createTask(t, "Meditate")

	resp := env.api.Get("/tasks/1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var task TaskView
	decode(t, resp.Body.Bytes(), &task)
	if task.ID != id || task.Title != "Meditate" || task.Type != models.TaskHabit {
		t.Errorf("unexpected task %+v", task)
	}

	if resp := env.api.Get("/tasks/99"); resp.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.Code)
	}
	if resp := env.api.Post("/tasks", map[string]any{"title": "x", "type": "chore"}); resp.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for unknown type, got %d", resp.Code)
	}
}

func TestCreateCompletion(t *testing.T) {
	env := newTestEnv(t)
	taskID := env.createTask(t, "Run")

	body := map[string]any{
		"task_id":         taskID,
		"user_id":         "alice",
		"completion_date": "2024-01-06T23:30:00+01:00",
		"event_id":        "5f0c6a2e-3c1b-4a4e-9d5b-0f6f1e2d3c4b",
	}
	resp := env.api.Post("/completions", body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var out CreateCompletionResponse
	decode(t, resp.Body.Bytes(), &out.Body)
	if out.Body.Streak.CurrentStreak != 1 || out.Body.Outcome != streak.OutcomeStarted {
		t.Errorf("unexpected streak %+v (%s)", out.Body.Streak, out.Body.Outcome)
	}
	if out.Body.Completion.Day != "2024-01-06" {
		t.Errorf("expected the day in the completion's own offset, got %s", out.Body.Completion.Day)
	}

	got := make(map[string]bool)
	for _, ua := range out.Body.NewAchievements {
		got[ua.AchievementID] = true
		if ua.Achievement == nil {
			t.Errorf("expected catalog details for %s", ua.AchievementID)
		}
	}
	for _, id := range []string{achievements.FirstTask, achievements.NightOwl, achievements.WeekendWarrior} {
		if !got[id] {
			t.Errorf("expected %s in %v", id, got)
		}
	}

	t.Run("Replay", func(t *testing.T) {
		resp := env.api.Post("/completions", body)
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.Code)
		}
		var replay CreateCompletionResponse
		decode(t, resp.Body.Bytes(), &replay.Body)
		if !replay.Body.Duplicate || len(replay.Body.NewAchievements) != 0 {
			t.Errorf("expected a silent duplicate, got %+v", replay.Body)
		}
	})

	t.Run("UnknownTask", func(t *testing.T) {
		resp := env.api.Post("/completions", map[string]any{"task_id": 77, "user_id": "alice"})
		if resp.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.Code)
		}
	})

	t.Run("List", func(t *testing.T) {
		resp := env.api.Get("/completions?user_id=alice")
		var list []CompletionView
		decode(t, resp.Body.Bytes(), &list)
		if len(list) != 1 {
			t.Errorf("expected 1 completion, got %d", len(list))
		}
	})
}

func TestStreakRoutes(t *testing.T) {
	env := newTestEnv(t)
	taskID := env.createTask(t, "Read")

	resp := env.api.Post("/streaks", map[string]any{
		"user_id":             "bob",
		"task_id":             taskID,
		"current_streak":      2,
		"longest_streak":      5,
		"last_completed_date": "2024-01-02",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	if resp := env.api.Post("/streaks", map[string]any{"user_id": "bob", "task_id": taskID}); resp.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate streak, got %d", resp.Code)
	}

	resp = env.api.Get("/streaks/bob/1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var s StreakView
	decode(t, resp.Body.Bytes(), &s)
	if s.LongestStreak != 5 || s.LastCompletedDate != "2024-01-02" {
		t.Errorf("unexpected streak %+v", s)
	}

	// The next completion extends the imported streak.
	env.api.Post("/completions", map[string]any{"task_id": taskID, "user_id": "bob"})
	resp = env.api.Get("/streaks?user_id=bob")
	var list []StreakView
	decode(t, resp.Body.Bytes(), &list)
	if len(list) != 1 || list[0].CurrentStreak != 3 {
		t.Errorf("expected streak 3, got %+v", list)
	}

	if resp := env.api.Get("/streaks/nobody/1"); resp.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.Code)
	}
}

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp := env.api.Get("/achievements?type=streakMilestone")
	var list []AchievementView
	decode(t, resp.Body.Bytes(), &list)
	if len(list) != 4 {
		t.Errorf("expected 4 streak achievements, got %d", len(list))
	}

	resp = env.api.Get("/achievements?rarity=legendary")
	decode(t, resp.Body.Bytes(), &list)
	if len(list) != 2 {
		t.Errorf("expected 2 legendary achievements, got %d", len(list))
	}

	resp = env.api.Get("/achievements?type=streakMilestone&rarity=legendary")
	decode(t, resp.Body.Bytes(), &list)
	if len(list) != 1 || list[0].AchievementID != "unstoppable_365" {
		t.Errorf("expected only unstoppable_365, got %+v", list)
	}

	if resp := env.api.Get("/achievements?type=bogus"); resp.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", resp.Code)
	}

	resp = env.api.Get("/achievements/types")
	var types []string
	decode(t, resp.Body.Bytes(), &types)
	if len(types) != 7 {
		t.Errorf("expected 7 types, got %v", types)
	}

	resp = env.api.Get("/achievements/early_bird")
	var a AchievementView
	decode(t, resp.Body.Bytes(), &a)
	if !a.IsSecret {
		t.Error("expected early_bird to be secret")
	}
	if resp := env.api.Get("/achievements/nope"); resp.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.Code)
	}
}

func TestInitializeDefaults(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Unauthenticated", func(t *testing.T) {
		resp := env.api.Post("/achievements/initialize-defaults")
		if resp.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.Code)
		}
	})

	t.Run("Admin", func(t *testing.T) {
		token, err := env.auth.GenerateToken("ops")
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}
		for i := 0; i < 2; i++ {
			resp := env.api.Post("/achievements/initialize-defaults", "Authorization: Bearer "+token)
			if resp.Code >= 300 {
				t.Fatalf("expected success, got %d: %s", resp.Code, resp.Body.String())
			}
		}
		var count int64
		env.db.Model(&models.Achievement{}).Count(&count)
		if count != 21 {
			t.Errorf("expected 21 achievements after two seeds, got %d", count)
		}
	})
}

func TestUserAchievementRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp := env.api.Post("/achievements/user/carol/check-streak", map[string]any{"current_streak": 30})
	var check CheckResponse
	decode(t, resp.Body.Bytes(), &check.Body)
	if len(check.Body.NewAchievements) != 2 {
		t.Fatalf("expected week_warrior and month_champion, got %+v", check.Body.NewAchievements)
	}

	if resp := env.api.Post("/achievements/user/carol/award/first_task"); resp.Code >= 300 {
		t.Fatalf("award failed: %d %s", resp.Code, resp.Body.String())
	}
	if resp := env.api.Post("/achievements/user/carol/award/first_task"); resp.Code != http.StatusConflict {
		t.Errorf("expected 409 on repeat award, got %d", resp.Code)
	}
	if resp := env.api.Post("/achievements/user/carol/award/nope"); resp.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown achievement, got %d", resp.Code)
	}

	resp = env.api.Post("/achievements/user/carol/update-progress/task_master_10", map[string]any{"progress": 3})
	var progress UserAchievementView
	decode(t, resp.Body.Bytes(), &progress)
	if progress.CurrentProgress != 3 || progress.EarnedAt != nil {
		t.Errorf("unexpected progress %+v", progress)
	}

	resp = env.api.Get("/achievements/user/carol/unnotified")
	var pending []UserAchievementView
	decode(t, resp.Body.Bytes(), &pending)
	if len(pending) != 3 {
		t.Fatalf("expected 3 unnotified, got %d", len(pending))
	}

	resp = env.api.Put("/achievements/user/carol/mark-notified", map[string]any{
		"achievement_ids": []string{achievements.WeekWarrior, achievements.MonthChampion},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("mark-notified failed: %d %s", resp.Code, resp.Body.String())
	}
	if resp := env.api.Put("/achievements/user/carol/first_task/mark-notified"); resp.Code != http.StatusOK {
		t.Fatalf("single mark-notified failed: %d", resp.Code)
	}
	if resp := env.api.Put("/achievements/user/carol/juggler/mark-notified"); resp.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.Code)
	}

	resp = env.api.Get("/achievements/user/carol/unnotified")
	decode(t, resp.Body.Bytes(), &pending)
	if len(pending) != 0 {
		t.Errorf("expected empty queue, got %d", len(pending))
	}

	resp = env.api.Get("/achievements/user/carol?earned_only=true")
	var earned []UserAchievementView
	decode(t, resp.Body.Bytes(), &earned)
	if len(earned) != 3 {
		t.Errorf("expected 3 earned, got %d", len(earned))
	}

	resp = env.api.Get("/achievements/user/carol/by-type/streakMilestone")
	var byType []UserAchievementView
	decode(t, resp.Body.Bytes(), &byType)
	if len(byType) != 2 {
		t.Errorf("expected 2 streak achievements, got %d", len(byType))
	}

	resp = env.api.Get("/achievements/user/carol/stats")
	var stats achievements.Stats
	decode(t, resp.Body.Bytes(), &stats)
	if stats.TotalEarned != 3 || stats.TotalAvailable != 21 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestCheckSpecialRoute(t *testing.T) {
	env := newTestEnv(t)

	resp := env.api.Post("/achievements/user/dan/check-special", map[string]any{
		"completion_time": "2024-01-03T05:59:00-05:00",
	})
	var check CheckResponse
	decode(t, resp.Body.Bytes(), &check.Body)
	if len(check.Body.NewAchievements) != 1 || check.Body.NewAchievements[0].AchievementID != achievements.EarlyBird {
		t.Errorf("expected early_bird, got %+v", check.Body.NewAchievements)
	}
}

func TestAward_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	if err := env.db.Migrator().DropTable(&models.UserAchievement{}); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	resp := env.api.Post("/achievements/user/carol/award/first_task")
	if resp.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when the grant cannot be stored, got %d: %s", resp.Code, resp.Body.String())
	}
}

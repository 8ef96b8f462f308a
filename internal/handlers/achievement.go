package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/task-streaks-api/internal/achievements"
	"github.com/gdg-garage/task-streaks-api/internal/auth"
	"github.com/gdg-garage/task-streaks-api/internal/catalog"
	"github.com/gdg-garage/task-streaks-api/internal/models"
	"github.com/gdg-garage/task-streaks-api/internal/progression"
	"gorm.io/gorm"
)

type AchievementHandler struct {
	db          *gorm.DB
	granter     *achievements.Granter
	orch        *progression.Orchestrator
	authHandler *auth.AuthHandler
}

func NewAchievementHandler(db *gorm.DB, granter *achievements.Granter, orch *progression.Orchestrator, authHandler *auth.AuthHandler) *AchievementHandler {
	return &AchievementHandler{db: db, granter: granter, orch: orch, authHandler: authHandler}
}

func (h *AchievementHandler) catalog() *catalog.Catalog {
	return h.granter.Catalog()
}

// Catalog

type ListAchievementsRequest struct {
	Type   string `query:"type" doc:"Filter by achievement type"`
	Rarity string `query:"rarity" doc:"Filter by rarity"`
}

type ListAchievementsResponse struct {
	Body []AchievementView
}

func (h *AchievementHandler) HandleListAchievements(ctx context.Context, input *ListAchievementsRequest) (*ListAchievementsResponse, error) {
	entries := h.catalog().All()

	if input.Type != "" {
		t, err := models.ParseAchievementType(input.Type)
		if err != nil {
			return nil, toHTTPError(err, "list achievements")
		}
		entries = h.catalog().ByType(t)
	}
	if input.Rarity != "" {
		r, err := models.ParseRarity(input.Rarity)
		if err != nil {
			return nil, toHTTPError(err, "list achievements")
		}
		if input.Type == "" {
			entries = h.catalog().ByRarity(r)
		} else {
			entries = slices.DeleteFunc(entries, func(e catalog.Entry) bool { return e.Rarity != r })
		}
	}

	res := &ListAchievementsResponse{Body: make([]AchievementView, 0, len(entries))}
	for _, e := range entries {
		res.Body = append(res.Body, achievementView(e))
	}
	return res, nil
}

type ListTypesResponse struct {
	Body []models.AchievementType
}

func (h *AchievementHandler) HandleListTypes(ctx context.Context, input *struct{}) (*ListTypesResponse, error) {
	return &ListTypesResponse{Body: models.AchievementTypes}, nil
}

type ListRaritiesResponse struct {
	Body []models.Rarity
}

func (h *AchievementHandler) HandleListRarities(ctx context.Context, input *struct{}) (*ListRaritiesResponse, error) {
	return &ListRaritiesResponse{Body: models.Rarities}, nil
}

type GetAchievementRequest struct {
	AchievementID string `path:"achievement_id"`
}

type AchievementResponse struct {
	Body AchievementView
}

func (h *AchievementHandler) HandleGetAchievement(ctx context.Context, input *GetAchievementRequest) (*AchievementResponse, error) {
	e, ok := h.catalog().ByID(input.AchievementID)
	if !ok {
		return nil, huma.Error404NotFound("Achievement not found")
	}
	return &AchievementResponse{Body: achievementView(e)}, nil
}

type InitializeDefaultsRequest struct {
	auth.AdminInput
}

type InitializeDefaultsResponse struct {
	Body struct {
		Message string `json:"message"`
		achievements.SeedResult
	}
}

func (h *AchievementHandler) HandleInitializeDefaults(ctx context.Context, input *InitializeDefaultsRequest) (*InitializeDefaultsResponse, error) {
	admin, err := h.authHandler.AuthorizeAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := achievements.InitializeDefaults(ctx, h.db, h.catalog())
	if err != nil {
		return nil, toHTTPError(err, "initialize achievements")
	}
	slog.Info("Default achievements initialized", slog.String("admin", admin))

	res := &InitializeDefaultsResponse{}
	res.Body.Message = fmt.Sprintf("Initialized %d achievements", result.Total)
	res.Body.SeedResult = *result
	return res, nil
}

// Per user

type UserRequest struct {
	UserID string `path:"user_id"`
}

type ListUserAchievementsRequest struct {
	UserID     string `path:"user_id"`
	EarnedOnly bool   `query:"earned_only" doc:"Only return earned achievements"`
}

type UserAchievementsResponse struct {
	Body []UserAchievementView
}

func (h *AchievementHandler) HandleListUserAchievements(ctx context.Context, input *ListUserAchievementsRequest) (*UserAchievementsResponse, error) {
	list, err := h.granter.ListForUser(ctx, input.UserID, input.EarnedOnly)
	if err != nil {
		return nil, toHTTPError(err, "list user achievements")
	}
	return &UserAchievementsResponse{Body: userAchievementViews(list, h.catalog())}, nil
}

type ListUserAchievementsByTypeRequest struct {
	UserID string `path:"user_id"`
	Type   string `path:"type"`
}

func (h *AchievementHandler) HandleListUserAchievementsByType(ctx context.Context, input *ListUserAchievementsByTypeRequest) (*UserAchievementsResponse, error) {
	t, err := models.ParseAchievementType(input.Type)
	if err != nil {
		return nil, toHTTPError(err, "list user achievements")
	}
	list, err := h.granter.ListForUserByType(ctx, input.UserID, t)
	if err != nil {
		return nil, toHTTPError(err, "list user achievements")
	}
	return &UserAchievementsResponse{Body: userAchievementViews(list, h.catalog())}, nil
}

type UserStatsResponse struct {
	Body *achievements.Stats
}

func (h *AchievementHandler) HandleUserStats(ctx context.Context, input *UserRequest) (*UserStatsResponse, error) {
	stats, err := h.granter.Stats(ctx, input.UserID)
	if err != nil {
		return nil, toHTTPError(err, "load achievement stats")
	}
	return &UserStatsResponse{Body: stats}, nil
}

func (h *AchievementHandler) HandleListUnnotified(ctx context.Context, input *UserRequest) (*UserAchievementsResponse, error) {
	list, err := h.granter.ListUnnotified(ctx, input.UserID)
	if err != nil {
		return nil, toHTTPError(err, "list unnotified achievements")
	}
	return &UserAchievementsResponse{Body: userAchievementViews(list, h.catalog())}, nil
}

type MarkNotifiedRequest struct {
	UserID string `path:"user_id"`
	Body   struct {
		AchievementIDs []string `json:"achievement_ids" doc:"Achievements the client has shown" minItems:"1"`
	}
}

type MessageResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *AchievementHandler) HandleMarkNotified(ctx context.Context, input *MarkNotifiedRequest) (*MessageResponse, error) {
	n, err := h.granter.MarkNotified(ctx, input.UserID, input.Body.AchievementIDs)
	if err != nil {
		return nil, toHTTPError(err, "mark achievements notified")
	}

	res := &MessageResponse{}
	res.Body.Message = fmt.Sprintf("Marked %d achievements as notified", n)
	return res, nil
}

type UserAchievementRequest struct {
	UserID        string `path:"user_id"`
	AchievementID string `path:"achievement_id"`
}

func (h *AchievementHandler) HandleMarkOneNotified(ctx context.Context, input *UserAchievementRequest) (*MessageResponse, error) {
	if err := h.granter.MarkOneNotified(ctx, input.UserID, input.AchievementID); err != nil {
		return nil, toHTTPError(err, "mark achievement notified")
	}

	res := &MessageResponse{}
	res.Body.Message = "Achievement marked as notified"
	return res, nil
}

type UserAchievementResponse struct {
	Body UserAchievementView
}

// HandleAward is the explicit grant. Unlike the automatic path, asking for an
// achievement the user already has is reported as a conflict.
func (h *AchievementHandler) HandleAward(ctx context.Context, input *UserAchievementRequest) (*UserAchievementResponse, error) {
	ua, err := h.orch.Award(ctx, input.UserID, input.AchievementID)
	if err != nil {
		return nil, toHTTPError(err, "award achievement")
	}
	if ua == nil {
		return nil, huma.Error409Conflict("Achievement already earned or tracked for this user")
	}
	return &UserAchievementResponse{Body: userAchievementView(*ua, h.catalog())}, nil
}

type UpdateProgressRequest struct {
	UserID        string `path:"user_id"`
	AchievementID string `path:"achievement_id"`
	Body          struct {
		Progress int `json:"progress" doc:"Current progress towards the target" minimum:"0"`
	}
}

func (h *AchievementHandler) HandleUpdateProgress(ctx context.Context, input *UpdateProgressRequest) (*UserAchievementResponse, error) {
	ua, err := h.granter.UpdateProgress(ctx, input.UserID, input.AchievementID, input.Body.Progress)
	if err != nil {
		return nil, toHTTPError(err, "update progress")
	}
	return &UserAchievementResponse{Body: userAchievementView(*ua, h.catalog())}, nil
}

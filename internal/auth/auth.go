package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/task-streaks-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

const (
	AdminRole     = "admin"
	TokenDuration = 24 * time.Hour
)

// AdminInput is embedded by operations that change shared state such as the
// achievement catalog.
type AdminInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token with the admin role"`
}

type AuthHandler struct {
	secret []byte
	clock  clockwork.Clock
}

func NewAuthHandler(cfg *config.Config, clock clockwork.Clock) *AuthHandler {
	return &AuthHandler{secret: []byte(cfg.AdminJWTSecret), clock: clock}
}

// Enabled reports whether admin tokens are checked at all. Without a secret
// the admin surface is open, which is how local development runs.
func (h *AuthHandler) Enabled() bool {
	return len(h.secret) > 0
}

func (h *AuthHandler) GenerateToken(subject string) (string, error) {
	if !h.Enabled() {
		return "", fmt.Errorf("admin JWT secret is not configured")
	}
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": AdminRole,
		"exp":  h.clock.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.secret)
}

// AuthorizeAdmin checks a "Bearer <jwt>" header and returns the token
// subject. Errors are ready-made huma responses.
func (h *AuthHandler) AuthorizeAdmin(ctx context.Context, header string) (string, error) {
	if !h.Enabled() {
		return "", nil
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return "", huma.Error401Unauthorized("Unauthorized: No bearer token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return h.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(h.clock.Now))
	if err != nil || !token.Valid {
		return "", huma.Error401Unauthorized("Unauthorized: Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", huma.Error401Unauthorized("Unauthorized: Invalid token claims")
	}
	if role, _ := claims["role"].(string); role != AdminRole {
		return "", huma.Error403Forbidden("Access denied: admin role required")
	}

	subject, _ := claims.GetSubject()
	return subject, nil
}

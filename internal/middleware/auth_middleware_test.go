package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

type fakeUsers struct {
	calls []models.Identity
	err   error
}

func (f *fakeUsers) EnsureUser(_ context.Context, identity models.Identity) (*models.User, error) {
	f.calls = append(f.calls, identity)
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: identity.ID}, nil
}

func newTestApp(jwtService *utils.JWTService, users UserEnsurer) *fiber.App {
	app := fiber.New()
	app.Use(AuthMiddleware(jwtService, users))
	app.Get("/me", func(c fiber.Ctx) error {
		identity, _ := CurrentIdentity(c)
		return c.JSON(fiber.Map{"user_id": UserID(c), "email": identity.Email})
	})
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestAuthMiddlewareRejectsBeforeTouchingStorage(t *testing.T) {
	jwtService := utils.NewJWTService("secret", time.Hour)
	users := &fakeUsers{}
	app := newTestApp(jwtService, users)

	for name, header := range map[string]string{
		"missing":   "",
		"no bearer": "Token abc",
		"garbage":   "Bearer abc",
		"extra":     "Bearer a b",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			body := decode(t, resp)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
	assert.Empty(t, users.calls)
}

func TestAuthMiddlewareEnsuresUserAndSetsLocals(t *testing.T) {
	jwtService := utils.NewJWTService("secret", time.Hour)
	users := &fakeUsers{}
	app := newTestApp(jwtService, users)

	token, err := jwtService.GenerateToken(models.Identity{ID: "kp_7", Email: "k@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "kp_7", body["user_id"])
	assert.Equal(t, "k@example.com", body["email"])
	require.Len(t, users.calls, 1)
	assert.Equal(t, "kp_7", users.calls[0].ID)
}

func TestAuthMiddlewareReportsStorageFailure(t *testing.T) {
	jwtService := utils.NewJWTService("secret", time.Hour)
	app := newTestApp(jwtService, &fakeUsers{err: errors.New("db down")})

	token, err := jwtService.GenerateToken(models.Identity{ID: "kp_7"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body["error"], "db down")
}

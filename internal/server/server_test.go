package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-swaps/internal/config"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:                "0",
		JWTSecret:           "test-secret",
		TokenTTL:            time.Hour,
		StorageDriver:       config.DriverSQLite,
		SQLitePath:          filepath.Join(t.TempDir(), "flippy.db"),
		ImpactPointsPerSwap: 10,
		RetryConfig: config.RetryConfig{
			MaxRetries:   1,
			InitialDelay: time.Millisecond,
			Multiplier:   1.5,
		},
	}
}

type client struct {
	t   *testing.T
	app *fiber.App
}

func (c client) do(method, path, token string, body any) (int, map[string]any) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.app.Test(req)
	require.NoError(c.t, err)

	var out map[string]any
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageDriver = "mongo"
	_, err := OpenStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSwapLifecycleOverHTTP(t *testing.T) {
	cfg := testConfig(t)
	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	app, err := New(cfg, store)
	require.NoError(t, err)
	api := client{t: t, app: app}

	jwtService := utils.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenFor := func(id string) string {
		token, err := jwtService.GenerateToken(models.Identity{ID: id, FirstName: id})
		require.NoError(t, err)
		return token
	}
	alice, bob := tokenFor("alice"), tokenFor("bob")

	status, body := api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, _ = api.do(http.MethodGet, "/api/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	newItem := func(token, title string) string {
		status, body := api.do(http.MethodPost, "/api/items", token, map[string]any{
			"title":       title,
			"description": title + " in good shape",
			"condition":   "Good",
			"category":    "Sports",
		})
		require.Equal(t, http.StatusCreated, status, body)
		return body["item"].(map[string]any)["id"].(string)
	}
	bike := newItem(bob, "Bike")
	skates := newItem(alice, "Skates")

	status, body = api.do(http.MethodPost, "/api/swaps", alice, map[string]any{
		"item_id":         bike,
		"receiver_id":     "bob",
		"offered_item_id": skates,
		"message":         "Swap for my skates?",
	})
	require.Equal(t, http.StatusCreated, status, body)
	swapID := body["swap_request"].(map[string]any)["id"].(string)

	status, _ = api.do(http.MethodPost, "/api/swaps/complete", bob, map[string]any{"id": swapID})
	assert.Equal(t, http.StatusBadRequest, status, "pending swap cannot be completed")

	status, _ = api.do(http.MethodPost, "/api/swaps/status", alice, map[string]any{"id": swapID, "status": "accepted"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = api.do(http.MethodPost, "/api/swaps/status", bob, map[string]any{"id": swapID, "status": "accepted"})
	require.Equal(t, http.StatusOK, status, body)

	status, body = api.do(http.MethodPost, "/api/messages", alice, map[string]any{
		"swap_request_id": swapID,
		"content":         "See you Saturday",
	})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = api.do(http.MethodPost, "/api/swaps/complete", bob, map[string]any{"id": swapID})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "completed", body["swap_request"].(map[string]any)["status"])

	status, body = api.do(http.MethodGet, "/api/swaps/"+swapID+"/messages", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["messages"], 2)

	status, body = api.do(http.MethodGet, "/api/items", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["items"], "swapped items leave the catalog")

	status, body = api.do(http.MethodGet, "/api/impact", alice, nil)
	require.Equal(t, http.StatusOK, status)
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["swaps_completed"])
	assert.Equal(t, float64(10), stats["impact_points"])

	status, body = api.do(http.MethodGet, "/api/profile", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(10), body["user"].(map[string]any)["impact_points"])

	status, body = api.do(http.MethodPost, "/api/upload", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["url"], "/placeholder.svg")
}

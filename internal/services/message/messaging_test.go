package message

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/db/sqlite"
	"github.com/rajivgeraev/flippy-swaps/internal/middleware"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/services/swap"
	"github.com/rajivgeraev/flippy-swaps/internal/testutil"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

var testRetry = utils.RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond, Multiplier: 1.5}

type fixture struct {
	store     *sqlite.Store
	engine    *swap.Engine
	messaging *Messaging
	swap      *models.SwapRequest
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := testutil.OpenStore(t)
	testutil.SeedUser(t, store, "requester")
	testutil.SeedUser(t, store, "receiver")
	testutil.SeedUser(t, store, "outsider")
	item := testutil.SeedItem(t, store, "receiver", "Camera")

	engine := swap.NewEngine(store, testRetry, swap.DefaultPointsPerSwap)
	created, err := engine.Create(context.Background(), swap.CreateInput{
		ItemID:      item.ID,
		ReceiverID:  "receiver",
		RequesterID: "requester",
		Message:     "hello",
	})
	require.NoError(t, err)

	return &fixture{
		store:     store,
		engine:    engine,
		messaging: NewMessaging(store, engine, testRetry),
		swap:      created,
	}
}

func TestPostAppendsForBothParticipants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reply, err := f.messaging.Post(ctx, f.swap.ID, "receiver", "  sure, when?  ")
	require.NoError(t, err)
	assert.Equal(t, "sure, when?", reply.Content)
	assert.Equal(t, "receiver", reply.SenderID)

	_, err = f.messaging.Post(ctx, f.swap.ID, "requester", "tomorrow")
	require.NoError(t, err)

	thread, err := f.messaging.List(ctx, f.swap.ID, "requester")
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, []string{"hello", "sure, when?", "tomorrow"},
		[]string{thread[0].Content, thread[1].Content, thread[2].Content})
}

func TestPostValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.messaging.Post(ctx, f.swap.ID, "", "hi")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = f.messaging.Post(ctx, "", "requester", "hi")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.messaging.Post(ctx, f.swap.ID, "requester", "   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.messaging.Post(ctx, "missing", "requester", "hi")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.messaging.Post(ctx, f.swap.ID, "outsider", "hi")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.messaging.List(ctx, f.swap.ID, "outsider")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	thread, err := f.store.ListMessages(ctx, f.swap.ID)
	require.NoError(t, err)
	assert.Len(t, thread, 1, "rejected posts leave no rows")
}

func TestPostAllowedInAnyStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Transition(ctx, f.swap.ID, "receiver", models.SwapRejected)
	require.NoError(t, err)

	_, err = f.messaging.Post(ctx, f.swap.ID, "requester", "no worries")
	require.NoError(t, err)
}

func TestPostTrimsSwapRequestID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.messaging.Post(ctx, "  "+f.swap.ID+" ", "receiver", "ok")
	require.NoError(t, err)
	assert.Equal(t, f.swap.ID, msg.SwapRequestID)

	thread, err := f.messaging.List(ctx, f.swap.ID, "receiver")
	require.NoError(t, err)
	assert.Len(t, thread, 2)
}

func TestMessageHTTPHandlers(t *testing.T) {
	f := newFixture(t)
	jwtService := utils.NewJWTService("test-secret", time.Hour)
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	api := app.Group("/api", middleware.AuthMiddleware(jwtService, f.store))
	NewMessageService(f.messaging).SetupRoutes(api)

	send := func(userID string, body map[string]any) (int, map[string]any) {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		if userID != "" {
			token, err := jwtService.GenerateToken(models.Identity{ID: userID})
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, json.Unmarshal(raw, &out))
		return resp.StatusCode, out
	}

	status, _ := send("", map[string]any{"swap_request_id": f.swap.ID, "content": "hi"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := send("receiver", map[string]any{"swap_request_id": f.swap.ID, "content": "hi"})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "hi", body["message"].(map[string]any)["content"])

	status, _ = send("receiver", map[string]any{"swap_request_id": f.swap.ID, "content": ""})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = send("outsider", map[string]any{"swap_request_id": f.swap.ID, "content": "hi"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = send("receiver", map[string]any{"swap_request_id": "missing", "content": "hi"})
	assert.Equal(t, http.StatusNotFound, status)

	token, err := jwtService.GenerateToken(models.Identity{ID: "requester"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/swaps/"+f.swap.ID+"/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out["messages"], 2)
}

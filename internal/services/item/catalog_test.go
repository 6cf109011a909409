package item

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
	"github.com/rajivgeraev/flippy-swaps/internal/middleware"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/testutil"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

var testRetry = utils.RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond, Multiplier: 1.5}

func validInput() CreateInput {
	return CreateInput{
		Title:       "  Wool Sweater ",
		Description: " Warm and cozy ",
		Condition:   models.ConditionGood,
		Category:    "Clothing",
		Tags:        []string{"Winter", "winter", " WOOL ", ""},
		Images:      []string{"https://img/1.jpg", " ", "https://img/2.jpg"},
	}
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"winter", "wool"}, NormalizeTags([]string{"Winter", "WINTER", " wool", ""}))
	assert.Equal(t, []string{"strasse"}, NormalizeTags([]string{"STRASSE", "straße"}))
	assert.Empty(t, NormalizeTags(nil))
}

func TestCreateItem(t *testing.T) {
	store := testutil.OpenStore(t)
	testutil.SeedUser(t, store, "owner")
	catalog := NewCatalog(store, testRetry)
	ctx := context.Background()

	item, err := catalog.Create(ctx, "owner", validInput())
	require.NoError(t, err)
	assert.Equal(t, "Wool Sweater", item.Title)
	assert.Equal(t, "Warm and cozy", item.Description)
	assert.Equal(t, []string{"winter", "wool"}, item.Tags)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, item.Images)
	assert.True(t, item.IsAvailable)

	got, err := catalog.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Tags, got.Tags)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "owner", got.Owner.ID)
}

func TestCreateItemValidation(t *testing.T) {
	store := testutil.OpenStore(t)
	testutil.SeedUser(t, store, "owner")
	catalog := NewCatalog(store, testRetry)
	ctx := context.Background()

	_, err := catalog.Create(ctx, "", validInput())
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	for name, mutate := range map[string]func(*CreateInput){
		"blank title":       func(in *CreateInput) { in.Title = "   " },
		"blank description": func(in *CreateInput) { in.Description = "" },
		"no condition":      func(in *CreateInput) { in.Condition = "" },
		"bad condition":     func(in *CreateInput) { in.Condition = "Broken" },
		"no category":       func(in *CreateInput) { in.Category = " " },
	} {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := catalog.Create(ctx, "owner", in)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}

	total, err := store.CountItems(ctx, "owner")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestListFiltersAndAvailability(t *testing.T) {
	store := testutil.OpenStore(t)
	testutil.SeedUser(t, store, "alice")
	testutil.SeedUser(t, store, "bob")
	catalog := NewCatalog(store, testRetry)
	ctx := context.Background()

	sweater, err := catalog.Create(ctx, "alice", validInput())
	require.NoError(t, err)
	book := validInput()
	book.Title = "Go Book"
	book.Description = "Programming"
	book.Category = "Books"
	book.Tags = []string{"Tech"}
	bookItem, err := catalog.Create(ctx, "bob", book)
	require.NoError(t, err)

	all, err := catalog.List(ctx, models.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	books, err := catalog.List(ctx, models.ItemFilter{Category: "Books"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, bookItem.ID, books[0].ID)

	byTag, err := catalog.List(ctx, models.ItemFilter{Query: "TECH"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, bookItem.ID, byTag[0].ID)

	byText, err := catalog.List(ctx, models.ItemFilter{Query: "cozy"})
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, sweater.ID, byText[0].ID)

	require.NoError(t, store.MarkItemUnavailable(ctx, sweater.ID))

	browse, err := catalog.List(ctx, models.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, browse, 1, "unavailable items are hidden from browsing")

	owned, err := catalog.List(ctx, models.ItemFilter{OwnerID: "alice"})
	require.NoError(t, err)
	assert.Len(t, owned, 1, "owner filter includes unavailable items")

	mine, err := catalog.ListMine(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = catalog.ListMine(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestListMatchesNonASCIITitleAsTyped(t *testing.T) {
	store := testutil.OpenStore(t)
	testutil.SeedUser(t, store, "owner")
	catalog := NewCatalog(store, testRetry)
	ctx := context.Background()

	in := validInput()
	in.Title = "Karte der Straße"
	in.Description = "Stadtplan"
	in.Tags = []string{"STRASSE"}
	mapItem, err := catalog.Create(ctx, "owner", in)
	require.NoError(t, err)
	require.Equal(t, []string{"strasse"}, mapItem.Tags)

	for _, query := range []string{"Straße", " der Straße ", "KARTE", "strasse"} {
		t.Run(query, func(t *testing.T) {
			found, err := catalog.List(ctx, models.ItemFilter{Query: query})
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, mapItem.ID, found[0].ID)
		})
	}

	none, err := catalog.List(ctx, models.ItemFilter{Query: "Brücke"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetMissingItem(t *testing.T) {
	catalog := NewCatalog(testutil.OpenStore(t), testRetry)

	_, err := catalog.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = catalog.Get(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestItemHTTPHandlers(t *testing.T) {
	store := testutil.OpenStore(t)
	jwtService := utils.NewJWTService("test-secret", time.Hour)
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	api := app.Group("/api", middleware.AuthMiddleware(jwtService, store))
	NewItemService(NewCatalog(store, testRetry)).SetupRoutes(api)

	token, err := jwtService.GenerateToken(models.Identity{ID: "kp_owner", Email: "o@example.com"})
	require.NoError(t, err)

	call := func(method, path string, body any, auth bool) (int, map[string]any) {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		if auth {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp.StatusCode, out
	}

	status, _ := call(http.MethodPost, "/api/items", map[string]any{"title": "x"}, false)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := call(http.MethodPost, "/api/items", map[string]any{"title": "x"}, true)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, body = call(http.MethodPost, "/api/items", map[string]any{
		"title":       "Lamp",
		"description": "Desk lamp",
		"condition":   "Like New",
		"category":    "Home",
		"tags":        []string{"Light"},
		"latitude":    55.7,
		"longitude":   37.6,
	}, true)
	require.Equal(t, http.StatusCreated, status, body)
	created := body["item"].(map[string]any)
	assert.Equal(t, "kp_owner", created["user_id"])
	id := created["id"].(string)

	status, body = call(http.MethodGet, "/api/items/"+id, nil, true)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Lamp", body["item"].(map[string]any)["title"])

	status, _ = call(http.MethodGet, "/api/items/missing", nil, true)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = call(http.MethodGet, "/api/items?q=light&category=Home", nil, true)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)

	status, _ = call(http.MethodGet, "/api/items?limit=abc", nil, true)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(http.MethodGet, "/api/user/items", nil, true)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)
}

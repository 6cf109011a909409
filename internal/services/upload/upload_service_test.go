package upload

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/config"
	"github.com/rajivgeraev/flippy-swaps/internal/middleware"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/testutil"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

var testCloudinary = config.CloudinaryConfig{
	CloudName:    "demo",
	APIKey:       "key",
	APISecret:    "secret",
	UploadPreset: "flippy_mvp",
	UploadFolder: "flippy/items",
}

type fakeUploader struct {
	name string
	data []byte
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, name string, file io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.name = name
	f.data = data
	return "https://res.cloudinary.com/demo/" + name, nil
}

func TestGenerateSignature(t *testing.T) {
	svc := NewUploadService(testCloudinary, nil)

	sum := sha1.Sum([]byte("folder=flippy/items&timestamp=1700000000secret"))
	want := hex.EncodeToString(sum[:])

	got := svc.GenerateSignature(map[string]string{
		"timestamp": "1700000000",
		"folder":    "flippy/items",
	})
	assert.Equal(t, want, got)
}

func TestUploadParams(t *testing.T) {
	svc := NewUploadService(testCloudinary, nil)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }

	params, err := svc.UploadParams("item-1")
	require.NoError(t, err)
	assert.Equal(t, "1700000000", params["timestamp"])
	assert.Equal(t, "item-1", params["item_id"])
	assert.Equal(t, "flippy/items", params["folder"])
	assert.Equal(t, svc.GenerateSignature(map[string]string{
		"timestamp":     "1700000000",
		"folder":        "flippy/items",
		"upload_preset": "flippy_mvp",
	}), params["signature"])

	generated, err := svc.UploadParams("")
	require.NoError(t, err)
	assert.NotEmpty(t, generated["item_id"])

	_, err = NewUploadService(config.CloudinaryConfig{}, nil).UploadParams("x")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestPlaceholderURL(t *testing.T) {
	svc := NewUploadService(config.CloudinaryConfig{}, nil)
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }
	assert.Equal(t, "/placeholder.svg?height=300&width=300&text=Image&timestamp=1700000000123", svc.PlaceholderURL())
}

func newUploadApp(t *testing.T, svc *UploadService) (*fiber.App, string) {
	t.Helper()

	store := testutil.OpenStore(t)
	jwtService := utils.NewJWTService("test-secret", time.Hour)
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	svc.SetupRoutes(app.Group("/api", middleware.AuthMiddleware(jwtService, store)))

	token, err := jwtService.GenerateToken(models.Identity{ID: "uploader"})
	require.NoError(t, err)
	return app, token
}

func multipartRequest(t *testing.T, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "sweater.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestUploadHandlerStub(t *testing.T) {
	app, token := newUploadApp(t, NewUploadService(config.CloudinaryConfig{}, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/upload", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["url"], "/placeholder.svg?")

	resp, err = app.Test(multipartRequest(t, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decode(t, resp)["url"], "/placeholder.svg?")
}

func TestUploadHandlerDelegates(t *testing.T) {
	fake := &fakeUploader{}
	app, token := newUploadApp(t, NewUploadService(testCloudinary, fake))

	resp, err := app.Test(multipartRequest(t, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://res.cloudinary.com/demo/sweater.jpg", decode(t, resp)["url"])
	assert.Equal(t, "sweater.jpg", fake.name)
	assert.Equal(t, []byte("jpeg-bytes"), fake.data)

	fake.err = errors.New("cloudinary down")
	resp, err = app.Test(multipartRequest(t, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, decode(t, resp)["success"])

	req := httptest.NewRequest(http.MethodGet, "/api/upload/params?item_id=abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc", decode(t, resp)["item_id"])
}

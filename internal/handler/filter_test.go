package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"

	"github.com/maegy2011/orchids-tube-sub000/internal/filter"
)

func newFilterApp() *fiber.App {
	app := fiber.New()
	h := NewFilterHandler(filter.NewService(filter.NewMemoryStore()))

	api := app.Group("/api/filter")
	api.Get("/", h.Get)
	api.Patch("/", h.Patch)
	api.Post("/pin", h.Pin)
	api.Patch("/categories/:categoryId", h.PatchCategory)
	api.Post("/whitelist", h.AddWhitelist)
	api.Delete("/whitelist", h.RemoveWhitelist)
	api.Post("/keywords", h.AddKeyword)
	api.Delete("/keywords", h.RemoveKeyword)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var parsed map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp, parsed
}

func errorCode(body map[string]any) string {
	env, _ := body["error"].(map[string]any)
	code, _ := env["code"].(string)
	return code
}

func TestFilterGetDefaults(t *testing.T) {
	app := newFilterApp()

	resp, body := doJSON(t, app, http.MethodGet, "/api/filter/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["enabled"])
	require.Equal(t, false, body["defaultDeny"])
	require.Equal(t, false, body["hasPin"])
	require.NotEmpty(t, body["categories"])
	require.NotContains(t, body, "pinHash", "PIN material must never leave the server")
}

func TestFilterPatchConfig(t *testing.T) {
	app := newFilterApp()

	resp, body := doJSON(t, app, http.MethodPatch, "/api/filter/", map[string]any{
		"defaultDeny": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["defaultDeny"])
	require.Equal(t, true, body["enabled"], "untouched fields keep their values")
}

func TestFilterPinLifecycle(t *testing.T) {
	app := newFilterApp()

	// Setup.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/filter/pin", map[string]any{
		"action": "setup", "pin": "4219",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Mutation without the PIN is refused.
	resp, body := doJSON(t, app, http.MethodPatch, "/api/filter/", map[string]any{
		"enabled": false,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "PIN_REQUIRED", errorCode(body))

	// Wrong PIN is refused with a distinct code.
	resp, body = doJSON(t, app, http.MethodPatch, "/api/filter/", map[string]any{
		"enabled": false, "pin": "0000",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "PIN_INCORRECT", errorCode(body))

	// Verify action reports validity without mutating.
	resp, body = doJSON(t, app, http.MethodPost, "/api/filter/pin", map[string]any{
		"action": "verify", "pin": "4219",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["valid"])

	// Correct PIN goes through.
	resp, body = doJSON(t, app, http.MethodPatch, "/api/filter/", map[string]any{
		"enabled": false, "pin": "4219",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, false, body["enabled"])

	// Remove, then mutations run open again.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/filter/pin", map[string]any{
		"action": "remove", "pin": "4219",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPatch, "/api/filter/", map[string]any{
		"enabled": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFilterWhitelistValidation(t *testing.T) {
	app := newFilterApp()

	resp, body := doJSON(t, app, http.MethodPost, "/api/filter/whitelist", map[string]any{
		"youtubeId": "abc123def45", "type": "movie",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "INVALID_FIELD", errorCode(body))

	resp, _ = doJSON(t, app, http.MethodPost, "/api/filter/whitelist", map[string]any{
		"youtubeId": "abc123def45", "type": "video", "title": "Lesson",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestFilterUnknownCategory(t *testing.T) {
	app := newFilterApp()

	resp, body := doJSON(t, app, http.MethodPatch, "/api/filter/categories/gaming", map[string]any{
		"enabled": false,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "UNKNOWN_CATEGORY", errorCode(body))
}

func TestFilterKeywordRoundtrip(t *testing.T) {
	app := newFilterApp()

	resp, _ := doJSON(t, app, http.MethodPost, "/api/filter/keywords", map[string]any{
		"keyword": "Scary",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body := doJSON(t, app, http.MethodGet, "/api/filter/", nil)
	require.Contains(t, body["blockedKeywords"], "scary")

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/filter/keywords", map[string]any{
		"keyword": "scary",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = doJSON(t, app, http.MethodGet, "/api/filter/", nil)
	require.NotContains(t, body["blockedKeywords"], "scary")
}

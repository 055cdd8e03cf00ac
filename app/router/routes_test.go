package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/novacoeur/lovepage-api/app/handlers"
	"github.com/novacoeur/lovepage-api/app/middleware"
	"github.com/novacoeur/lovepage-api/app/services"
	businessflow "github.com/novacoeur/lovepage-api/business_flow"
	"github.com/novacoeur/lovepage-api/config"
	"github.com/novacoeur/lovepage-api/repository"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "CorrectHorse9!"
)

func newTestRouter(t *testing.T) Router {
	t.Helper()

	dir := t.TempDir()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			BodyLimit:    4 * 1024 * 1024,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Security: config.SecurityConfig{
			AllowedOrigins:  []string{"http://localhost:3000"},
			GlobalRateLimit: 2000,
			AuthRateLimit:   50,
		},
		Admin: config.AdminConfig{
			Username:     testAdminUser,
			PasswordHash: string(hash),
		},
		Deployment: config.DeploymentConfig{
			Domain: "https://novacoeur.fr",
		},
	}

	repo, err := repository.NewFileLovePageRepository(
		filepath.Join(dir, "pages.json"),
		repository.NewPageIDAllocator(),
	)
	require.NoError(t, err)

	tokenService, err := services.NewTokenService(
		time.Hour, "test-issuer", "test-audience", false, "", "", "test-secret-key-at-least-32-chars!",
	)
	require.NoError(t, err)

	qrService := services.NewQRCodeService(filepath.Join(dir, "qrcodes"))

	lovePageFlow := businessflow.NewLovePageFlow(repo, qrService, cfg.Deployment.Domain)
	adminAuthFlow := businessflow.NewAdminAuthFlow(cfg.Admin, tokenService)

	r := NewFiberRouter(
		cfg,
		repo,
		handlers.NewLovePageHandler(lovePageFlow),
		handlers.NewQRCodeHandler(qrService),
		handlers.NewAdminAuthHandler(adminAuthFlow),
		middleware.NewAuthMiddleware(tokenService),
	)
	r.SetupRoutes()
	return r
}

func doJSON(t *testing.T, r Router, method, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Host = "example.com"
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.GetApp().Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func loginAdmin(t *testing.T, r Router) string {
	t.Helper()
	resp, body := doJSON(t, r, http.MethodPost, "/api/admin/auth/login", "", map[string]string{
		"username": testAdminUser,
		"password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	session := data["session"].(map[string]any)
	token := session["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	resp, body := doJSON(t, r, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "connected", data["database"])
	assert.NotEmpty(t, data["timestamp"])
}

func TestAdminLoginEndpoint(t *testing.T) {
	r := newTestRouter(t)

	t.Run("ValidCredentials", func(t *testing.T) {
		token := loginAdmin(t, r)
		assert.NotEmpty(t, token)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		resp, body := doJSON(t, r, http.MethodPost, "/api/admin/auth/login", "", map[string]string{
			"username": testAdminUser,
			"password": "WrongPassword1!",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, false, body["success"])
	})

	t.Run("ShortPasswordFailsValidation", func(t *testing.T) {
		resp, _ := doJSON(t, r, http.MethodPost, "/api/admin/auth/login", "", map[string]string{
			"username": testAdminUser,
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAuthGuard(t *testing.T) {
	r := newTestRouter(t)

	t.Run("MissingToken", func(t *testing.T) {
		resp, body := doJSON(t, r, http.MethodGet, "/api/pages", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		errDetail := body["error"].(map[string]any)
		assert.Equal(t, "MISSING_AUTHORIZATION_HEADER", errDetail["code"])
	})

	t.Run("GarbageToken", func(t *testing.T) {
		resp, body := doJSON(t, r, http.MethodGet, "/api/pages", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		errDetail := body["error"].(map[string]any)
		assert.Equal(t, "TOKEN_INVALID", errDetail["code"])
	})
}

func TestQuickCreateEndpoint(t *testing.T) {
	r := newTestRouter(t)
	token := loginAdmin(t, r)

	resp, body := doJSON(t, r, http.MethodPost, "/api/create-love-page", token, map[string]string{
		"clientName":  "Amelie",
		"clientEmail": "amelie@example.com",
		"phoneNumber": "+33612345678",
		"message":     "Je t'aime",
		"offer":       "2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	pageID := int64(data["pageId"].(float64))
	assert.Positive(t, pageID)
	assert.Equal(t, fmt.Sprintf("https://novacoeur.fr/love-page.html?id=%d", pageID), data["pageLink"])
	assert.Equal(t, fmt.Sprintf("/api/qrcode/%d", pageID), data["qrCodeUrl"])

	t.Run("QRArtifactDownloadable", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("/api/qrcode/%d", pageID), nil)
		require.NoError(t, err)
		req.Host = "example.com"

		resp, err := r.GetApp().Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		assert.Equal(t, fmt.Sprintf(`attachment; filename="qrcode_%d.png"`, pageID), resp.Header.Get("Content-Disposition"))

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Greater(t, len(raw), 8)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4])
	})

	t.Run("MissingOfferRejected", func(t *testing.T) {
		resp, _ := doJSON(t, r, http.MethodPost, "/api/create-love-page", token, map[string]string{
			"clientName": "Bruno",
			"message":    "Pour toi",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestPageCRUDEndpoints(t *testing.T) {
	r := newTestRouter(t)
	token := loginAdmin(t, r)

	// Create
	resp, body := doJSON(t, r, http.MethodPost, "/api/pages", token, map[string]string{
		"clientName": "Bruno",
		"message":    "Pour toi",
		"offer":      "1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	pageID := int64(data["id"].(float64))

	t.Run("Get", func(t *testing.T) {
		resp, body := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/pages/%d", pageID), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]any)
		assert.Equal(t, "Bruno", data["clientName"])
		assert.Equal(t, "active", data["status"])
	})

	t.Run("GetUnknown", func(t *testing.T) {
		resp, body := doJSON(t, r, http.MethodGet, "/api/pages/987654", token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		errDetail := body["error"].(map[string]any)
		assert.Equal(t, "PAGE_NOT_FOUND", errDetail["code"])
	})

	t.Run("InvalidID", func(t *testing.T) {
		resp, _ := doJSON(t, r, http.MethodGet, "/api/pages/not-a-number", token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Update", func(t *testing.T) {
		resp, body := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/pages/%d", pageID), token, map[string]string{
			"message": "Pour toujours",
			"status":  "archived",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]any)
		assert.Equal(t, "Pour toujours", data["message"])
		assert.Equal(t, "archived", data["status"])
	})

	t.Run("List", func(t *testing.T) {
		resp, body := doJSON(t, r, http.MethodGet, "/api/pages", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]any)
		assert.EqualValues(t, 1, data["total"])
	})

	t.Run("ExportClient", func(t *testing.T) {
		resp, body := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/export-client/%d", pageID), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]any)
		assert.Equal(t, "Bruno", data["clientName"])
		assert.Equal(t, fmt.Sprintf("https://novacoeur.fr/love-page.html?id=%d", pageID), data["pageLink"])
	})

	t.Run("DeleteThenGoneFromList", func(t *testing.T) {
		resp, body := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/pages/%d", pageID), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]any)
		assert.Equal(t, "deleted", data["status"])

		resp, body = doJSON(t, r, http.MethodGet, "/api/pages", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data = body["data"].(map[string]any)
		assert.EqualValues(t, 0, data["total"])
	})
}

func TestQRCodeNotFound(t *testing.T) {
	r := newTestRouter(t)

	resp, body := doJSON(t, r, http.MethodGet, "/api/qrcode/424242", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	errDetail := body["error"].(map[string]any)
	assert.Equal(t, "QRCODE_NOT_FOUND", errDetail["code"])
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t)

	resp, body := doJSON(t, r, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	errDetail := body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errDetail["code"])
}

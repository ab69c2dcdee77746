package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SlpAus/plantify-backend/internal/agent"
	"github.com/SlpAus/plantify-backend/internal/platform/config"
	"github.com/SlpAus/plantify-backend/internal/platform/health"
	"github.com/SlpAus/plantify-backend/internal/platform/media"
	"github.com/SlpAus/plantify-backend/internal/platform/startup"
	"github.com/SlpAus/plantify-backend/internal/testutil"
	"github.com/SlpAus/plantify-backend/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	require.NoError(t, startup.Migrate(db))

	cfg := &config.Config{
		Server: config.ServerConfig{
			Cors:        config.CorsConfig{AllowedOrigins: []string{"http://localhost:3000"}},
			MediaRoot:   t.TempDir(),
			MediaURL:    "/media",
			MaxUploadMB: 1,
		},
		Agent: config.AgentConfig{Country: "Indonesia"},
	}
	store, err := media.NewStore(cfg.Server.MediaRoot, cfg.Server.MediaURL)
	require.NoError(t, err)

	r := NewEngine(cfg.Server)
	SetupRoutes(r, cfg, Dependencies{
		DB:        db,
		Store:     store,
		Issuer:    token.NewIssuer("", time.Hour, 24*time.Hour),
		Analyzer:  agent.Disabled{},
		Generator: agent.Disabled{},
		Health:    health.NewChecker(db, nil),
	})
	return r
}

func request(r http.Handler, method, path, access, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body)).WithContext(context.Background())
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestServer(t)
	for _, path := range []string{
		"/api/auth/me", "/api/diagnosis/", "/api/community/posts", "/api/logs/",
		"/api/reminders/", "/api/dashboard/metrics", "/api/vision/scan/1",
	} {
		w := request(r, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestEndToEnd(t *testing.T) {
	r := newTestServer(t)

	w := request(r, http.MethodPost, "/api/auth/register", "", `{"name":"Budi","email":"budi@example.com","password":"kebunku123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var auth struct {
		AccessToken string `json:"accessToken"`
	}
	testutil.Decode(t, w, &auth)

	w = request(r, http.MethodPost, "/api/community/posts", auth.AccessToken, `{"title":"Halo","body":"Salam petani"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var post struct {
		ID uint `json:"id"`
	}
	testutil.Decode(t, w, &post)

	w = request(r, http.MethodPost, fmt.Sprintf("/api/community/posts/%d/like", post.ID), auth.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = request(r, http.MethodGet, "/api/dashboard/metrics", auth.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"label":"Positive Feedback","value":"100.0%"`)

	// 扫描不存在
	w = request(r, http.MethodPost, "/api/diagnosis/checklist", auth.AccessToken, `{"scanId":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = request(r, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)

	w = request(r, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "plantify_http_requests_total")
}

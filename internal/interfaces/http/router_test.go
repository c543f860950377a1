package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	placeUsecases "github.com/civicwatch/civicwatch/internal/application/place/usecases"
	"github.com/civicwatch/civicwatch/internal/infrastructure/config"
	"github.com/civicwatch/civicwatch/internal/infrastructure/database"
	"github.com/civicwatch/civicwatch/internal/infrastructure/migration"
	"github.com/civicwatch/civicwatch/internal/shared/biztime"
	sharedConfig "github.com/civicwatch/civicwatch/internal/shared/config"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Type    string            `json:"type"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server:   sharedConfig.ServerConfig{Mode: "test", Timezone: "Asia/Manila", AllowedOrigins: []string{"*"}},
		Database: sharedConfig.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		Auth:     sharedConfig.AuthConfig{JWTSecret: "test-secret", Issuer: "civicwatch", TokenTTLHours: 1},
		Report: sharedConfig.ReportConfig{
			TrackingPrefix:      "CW",
			TrackingMaxAttempts: 3,
			MaxImageSizeKB:      2048,
		},
		Priority:     sharedConfig.PriorityConfig{HighKeywords: []string{"fire", "accident"}},
		Triage:       sharedConfig.TriageConfig{Strategy: "filename", TimeoutSeconds: 5, FilenameKeywords: []string{"fire"}},
		Duplicate:    sharedConfig.DuplicateConfig{WindowHours: 24, Threshold: 0.7},
		Storage:      sharedConfig.StorageConfig{Driver: "local", LocalDir: t.TempDir(), PublicBaseURL: "/uploads"},
		Notification: sharedConfig.NotificationConfig{TimeoutSeconds: 1},
	}
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	gin.SetMode(gin.TestMode)
	biztime.MustInit("Asia/Manila")

	cfg := testConfig(t)
	log := logger.NewNop()

	db, err := database.Open(&cfg.Database, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, migration.NewManager("sqlite", log).Migrate(db))

	c, err := NewContainer(context.Background(), db, cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Shutdown() })

	seed := placeUsecases.NewSeedPlacesUseCase(c.repos.placeRepo, c.repos.issueTypeRepo, c.repos.txManager, log)
	_, err = seed.Execute(context.Background(), placeUsecases.SeedPlacesCommand{
		IssueTypes: []placeUsecases.SeedIssueType{{Name: "Potholes", Priority: "Medium"}},
		Barangays: []placeUsecases.SeedBarangay{
			{Name: "Poblacion", Available: true, Sitios: []placeUsecases.SeedSitio{{Name: "Proper"}}},
		},
	})
	require.NoError(t, err)

	c.SetupRoutes()
	return c
}

func do(t *testing.T, c *Container, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	c.Engine().ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func submitRequest(t *testing.T, title string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"title":          title,
		"issue_type":     "Potholes",
		"description":    "Deep hole in the middle of the road",
		"barangay_id":    "1",
		"sitio_id":       "1",
		"sender_name":    "Juan Dela Cruz",
		"contact_number": "09171234567",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func staffToken(t *testing.T, c *Container) string {
	t.Helper()
	token, _, err := c.JWTService().Generate("staff-1", "Maria Santos")
	require.NoError(t, err)
	return token
}

func TestRouter_SubmitTrackAndModerate(t *testing.T) {
	c := newTestContainer(t)

	w, env := do(t, c, submitRequest(t, "Pothole on the main road"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.True(t, env.Success)

	var submitted struct {
		TrackingCode string `json:"tracking_code"`
		Priority     string `json:"priority_level"`
		Status       string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &submitted))
	assert.True(t, strings.HasPrefix(submitted.TrackingCode, "CW-"))
	assert.Equal(t, "Medium", submitted.Priority)
	assert.Equal(t, "pending", submitted.Status)
	assert.Contains(t, env.Message, submitted.TrackingCode)

	w, env = do(t, c, httptest.NewRequest(http.MethodGet, "/api/reports/track/"+submitted.TrackingCode, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"sender_name":"J`)
	assert.NotContains(t, string(env.Data), "09171234567")

	token := staffToken(t, c)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w, env = do(t, c, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), submitted.TrackingCode)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/reports/1/approve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w, _ = do(t, c, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/admin/reports/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w, env = do(t, c, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"in_progress":1`)
}

func TestRouter_DuplicateCheckFindsEarlierReport(t *testing.T) {
	c := newTestContainer(t)

	w, _ := do(t, c, submitRequest(t, "Broken streetlight"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := `{"title":"Broken street light","description":"Deep hole in the middle of the road","issue_type":"Potholes","barangay_id":1,"sitio_id":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports/duplicates/check", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w, env := do(t, c, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		IsDuplicate bool `json:"is_duplicate"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.IsDuplicate)
	assert.NotContains(t, string(env.Data), "tracking_code")
	assert.NotContains(t, string(env.Data), "CW-")
}

func TestRouter_StaffRoutesRequireToken(t *testing.T) {
	c := newTestContainer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/admin/reports"},
		{http.MethodGet, "/api/admin/reports/stats"},
		{http.MethodPost, "/api/admin/reports/bulk/approve"},
		{http.MethodDelete, "/api/admin/reports/1"},
	} {
		w, env := do(t, c, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
		assert.False(t, env.Success, tc.path)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken(t, c)+"x")
	w, _ := do(t, c, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_PlacesAndHealth(t *testing.T) {
	c := newTestContainer(t)

	w, env := do(t, c, httptest.NewRequest(http.MethodGet, "/api/places", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Poblacion")
	assert.Contains(t, string(env.Data), "Potholes")

	w, env = do(t, c, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, env = do(t, c, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Type)
}

func TestRouter_SubmissionValidation(t *testing.T) {
	c := newTestContainer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("barangay_id", "abc"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/reports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w, env := do(t, c, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.NotEmpty(t, env.Error.Fields["barangay_id"])
}

func TestContainer_ShutdownWaitsForNotifications(t *testing.T) {
	c := newTestContainer(t)

	done := make(chan struct{})
	go func() {
		_ = c.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not return")
	}
}

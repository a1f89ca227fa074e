package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calorieking/backend/config"
	"github.com/calorieking/backend/internal/api"
	"github.com/calorieking/backend/internal/database"
	"github.com/calorieking/backend/internal/logging"
	"github.com/calorieking/backend/internal/middleware"
	"github.com/calorieking/backend/internal/router"
	"github.com/calorieking/backend/internal/service"
	"github.com/calorieking/backend/internal/testhelpers"
)

const reanalyzeReply = `{"portion":"1 large","calories":121}`

// setupStack runs the router against Postgres and Redis containers.
func setupStack(t *testing.T, analysisLimit int) *gin.Engine {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	gin.SetMode(gin.TestMode)
	log := logging.Discard()

	db := testhelpers.SetupPostgresDatabase(t)
	redisClient := testhelpers.SetupRedis(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": reanalyzeReply}},
		})
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		AnthropicAPIKey:    "test-key",
		AnthropicAPIURL:    upstream.URL,
		AnthropicModel:     config.DefaultAnthropicModel,
		AnthropicVersion:   "2023-06-01",
		AnthropicMaxTokens: 1024,
		UpstreamTimeout:    5 * time.Second,
		MaxUploadBytes:     1 << 20,
	}

	sessions := service.NewSessionService("integration-secret", time.Hour, service.NewRedisRevoker(redisClient))
	authService := service.NewAuthService(db, log)
	mealService := service.NewMealService(db, log)

	return router.SetupRouter(router.Dependencies{
		AuthHandler: api.NewAuthHandler(authService, sessions, api.NewCookieHelper(false), log),
		MealHandler: api.NewMealHandler(service.NewVisionService(cfg, log), mealService, service.NewInlineImageStore(), cfg.MaxUploadBytes, log),
		HealthHandler: api.NewHealthHandler(map[string]api.Pinger{
			"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}),
		Sessions:        sessions,
		AnalysisLimiter: middleware.NewAnalysisRateLimiter(redisClient, analysisLimit, time.Minute, log),
		Log:             log,
	})
}

func postJSON(t *testing.T, engine *gin.Engine, path string, payload any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestRevokedSessionIsRejected(t *testing.T) {
	engine := setupStack(t, 10)

	rr := postJSON(t, engine, "/api/register", map[string]string{"username": "alice", "password": "secret1"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)

	rr = postJSON(t, engine, "/api/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)

	// Replay the token the client was holding before logout.
	req := httptest.NewRequest(http.MethodGet, "/api/current-user", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	rr = httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	assert.JSONEq(t, `{"authenticated":false}`, rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/meals", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = postJSON(t, engine, "/api/login", map[string]string{"username": "alice", "password": "secret1"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/meals", nil)
	req.AddCookie(sessionCookie(rr))
	rr = httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAnalysisRateLimit(t *testing.T) {
	engine := setupStack(t, 2)
	payload := map[string]string{"food_name": "Banana", "portion": "1 large"}

	for i := 0; i < 2; i++ {
		rr := postJSON(t, engine, "/api/reanalyze-item", payload, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, reanalyzeReply, rr.Body.String())
	}

	rr := postJSON(t, engine, "/api/reanalyze-item", payload, nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
}

func TestHealthWithDependencies(t *testing.T) {
	engine := setupStack(t, 10)

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]any{"database": "healthy", "redis": "healthy"}, body["components"])
}

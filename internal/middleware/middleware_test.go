package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	constants "github.com/CodeAndHammer/mysterybox/internal/constants"
	models "github.com/CodeAndHammer/mysterybox/internal/models"
)

const trustedOrigin = "https://tour-arcade-mystery.vercel.app"

func testApp() *models.App {
	return &models.App{
		LimiterMap:     make(map[string]*models.RateLimiterEntry),
		AllowedOrigins: []string{trustedOrigin},
		RateLimitRPS:   1,
		RateLimitBurst: 2,
		RateLimiterTTL: time.Hour,
	}
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ok", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(constants.RequestIDKey).(string)
		c.JSON(http.StatusOK, gin.H{"request_id": id})
	})
	return r
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-Id", "given-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "given-id", w.Header().Get("X-Request-Id"))
	assert.Contains(t, w.Body.String(), "given-id")
}

func TestSecurityAndCacheHeaders(t *testing.T) {
	r := newEngine(SecurityHeaders(), NoStore())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}

func TestCORS(t *testing.T) {
	r := newEngine(CORS(testApp()))

	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set("Origin", trustedOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, trustedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	app := testApp()
	r := newEngine(RateLimit(app))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Len(t, app.LimiterMap, 1)
}

func TestGetLimiterReusesEntry(t *testing.T) {
	app := testApp()
	first := getLimiter(app, "10.0.0.1")
	second := getLimiter(app, "10.0.0.1")
	require.Same(t, first, second)
	assert.NotSame(t, first, getLimiter(app, "10.0.0.2"))
}

func TestCleanupStaleRateLimiters(t *testing.T) {
	app := testApp()
	app.LimiterMap["old"] = &models.RateLimiterEntry{Limiter: rate.NewLimiter(1, 1), LastAccess: time.Now().Add(-2 * time.Hour)}
	app.LimiterMap["new"] = &models.RateLimiterEntry{Limiter: rate.NewLimiter(1, 1), LastAccess: time.Now()}

	removed := CleanupStaleRateLimiters(app)
	assert.Equal(t, 1, removed)
	assert.Contains(t, app.LimiterMap, "new")
	assert.NotContains(t, app.LimiterMap, "old")
}

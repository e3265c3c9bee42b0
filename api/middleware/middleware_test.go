package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ddd-commerce/api/response"
	"ddd-commerce/config"
	"ddd-commerce/infrastructure/persistence"
	"ddd-commerce/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	var fromCtx string
	engine.GET("/", func(c *gin.Context) {
		fromCtx = persistence.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	if generated == "" || fromCtx != generated {
		t.Errorf("generated id %q, context id %q", generated, fromCtx)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "client-id" || fromCtx != "client-id" {
		t.Errorf("client id not reused: header %q, context %q", got, fromCtx)
	}
}

func TestAccessLogCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(nil) })

	engine := gin.New()
	engine.Use(RequestIDMiddleware(), LoggingMiddleware())
	engine.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/orders/o-1", nil)
	req.Header.Set(RequestIDHeader, "req-access")
	engine.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("HTTP Request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if entries[0].Level != zapcore.WarnLevel || fields[logger.RequestIDField] != "req-access" || fields["status"] != int64(http.StatusNotFound) {
		t.Errorf("unexpected entry: level=%v fields=%v", entries[0].Level, fields)
	}
}

func TestRecovery(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestIDMiddleware(), RecoveryMiddleware())
	engine.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(RateLimitMiddleware(&config.RateLimitConfig{Enabled: true, Rate: 0.001, Burst: 2}))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

func TestRateLimitEnvelope(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestIDMiddleware(), RateLimitMiddleware(&config.RateLimitConfig{Enabled: true, Rate: 0.001, Burst: 1}))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	if w.Code != http.StatusTooManyRequests || body.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d/%d, want 429", w.Code, body.Code)
	}
	if body.Error != "TOO_MANY_REQUESTS" || body.RequestID == "" || body.Success {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") || rl.Allow("10.0.0.1") {
		t.Fatal("expected one token for 10.0.0.1")
	}
	rl.Allow("10.0.0.2")
	if rl.Len() != 2 {
		t.Fatalf("tracked = %d, want 2", rl.Len())
	}

	now = now.Add(30 * time.Second)
	rl.Allow("10.0.0.2")

	// 10.0.0.1 空闲满一分钟，10.0.0.2 在 30 秒前刚活跃过
	now = now.Add(40 * time.Second)
	rl.Allow("10.0.0.3")
	if rl.Len() != 2 {
		t.Fatalf("tracked = %d, want 2 after sweep", rl.Len())
	}
	if !rl.Allow("10.0.0.1") {
		t.Error("evicted client should start with a fresh bucket")
	}
}

func TestCORS(t *testing.T) {
	engine := gin.New()
	engine.Use(CORSMiddleware(&config.CORSConfig{AllowOrigins: []string{"https://shop.example"}, AllowHeaders: []string{"Content-Type"}}))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://shop.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign origin status = %d", w.Code)
	}
}

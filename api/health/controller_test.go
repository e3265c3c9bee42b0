package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ddd-commerce/config"

	"github.com/gin-gonic/gin"
)

func newEngine(checks map[string]CheckFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	cfg := &config.Config{App: config.AppConfig{Version: "1.0.0", Env: "test"}}
	NewController(cfg, checks).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthy(t *testing.T) {
	engine := newEngine(map[string]CheckFunc{
		"database": func(context.Context) error { return nil },
	})

	if w := get(engine, "/api/v1/health/live"); w.Code != http.StatusOK {
		t.Errorf("live = %d", w.Code)
	}
	if w := get(engine, "/api/v1/health/ready"); w.Code != http.StatusOK {
		t.Errorf("ready = %d", w.Code)
	}

	w := get(engine, "/api/v1/health")
	var body HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusOK || body.Status != "healthy" || body.Checks["database"].Status != "healthy" || body.System != nil {
		t.Errorf("unexpected health: %d %+v", w.Code, body)
	}
}

func TestUnhealthyHidesCause(t *testing.T) {
	engine := newEngine(map[string]CheckFunc{
		"database": func(context.Context) error { return errors.New("dial tcp 10.0.0.5:3306: refused") },
	})

	if w := get(engine, "/api/v1/health/ready"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready = %d", w.Code)
	}

	w := get(engine, "/api/v1/health")
	var body HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusServiceUnavailable || body.Checks["database"].Message != "database not available" {
		t.Errorf("unexpected health: %d %+v", w.Code, body)
	}
}

package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ddd-commerce/config"
	"ddd-commerce/domain/user"

	"golang.org/x/crypto/bcrypt"
)

func init() {
	user.PasswordHashCost = bcrypt.MinCost
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Code      int             `json:"code"`
	RequestID string          `json:"request_id"`
}

type client struct {
	t       *testing.T
	handler http.Handler
}

func (c client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "e2e-"+method)
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			c.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func (c client) create(path string, body any) string {
	c.t.Helper()
	status, env := c.do(http.MethodPost, path, body)
	if status != http.StatusCreated {
		c.t.Fatalf("POST %s = %d (%s)", path, status, env.Error)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil || created.ID == "" {
		c.t.Fatalf("POST %s: no id in %s", path, env.Data)
	}
	return created.ID
}

func testConfig(dbType, database string) *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "ddd-commerce", Version: "test", Env: "test"},
		Server:   config.ServerConfig{Port: "0", ShutdownTimeout: time.Second},
		Database: config.DatabaseConfig{Type: dbType, Database: database, LogLevel: "silent"},
		CORS:     config.CORSConfig{AllowOrigins: []string{"*"}},
		Order:    config.OrderConfig{MaxTotalWeight: 100, MaxLineWeight: 100},
		Money:    config.MoneyConfig{Currencies: []string{"USD", "EUR"}},
	}
}

func TestCheckoutFlow(t *testing.T) {
	backends := []struct {
		name string
		cfg  *config.Config
	}{
		{"memory", testConfig("memory", "")},
		{"sqlite", testConfig("sqlite", "file:cmd_checkout?mode=memory&cache=shared")},
	}
	for _, bk := range backends {
		t.Run(bk.name, func(t *testing.T) {
			app, err := NewBuilder(bk.cfg).Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			t.Cleanup(app.Close)
			c := client{t: t, handler: app.Handler()}

			userID := c.create("/api/v1/users", map[string]any{
				"name": "Alice", "email": "alice@example.com", "password": "secret123", "age": 30,
			})
			anvil := c.create("/api/v1/products", map[string]any{
				"name": "Anvil", "price": "60", "currency": "USD", "weight": "60",
				"stocks": []map[string]any{{"longitude": 10, "latitude": 20, "quantity": 5}},
			})
			brick := c.create("/api/v1/products", map[string]any{
				"name": "Brick", "price": "5", "currency": "USD", "weight": "50",
				"stocks": []map[string]any{{"longitude": 0, "latitude": 0, "quantity": 1}},
			})

			orderID := c.create("/api/v1/orders", map[string]any{
				"customer_id": userID,
				"items":       []map[string]any{{"product_id": anvil, "quantity": 1}},
			})

			// 60 + 50 超过总重量上限
			status, env := c.do(http.MethodPost, "/api/v1/orders/"+orderID+"/items", map[string]any{"product_id": brick, "quantity": 1})
			if status != http.StatusBadRequest || env.Error != "ORDER_MAX_TOTAL_WEIGHT" || env.RequestID != "e2e-POST" {
				t.Errorf("overweight add = %d %+v", status, env)
			}

			status, env = c.do(http.MethodGet, "/api/v1/orders/"+orderID, nil)
			var got struct {
				Items   []json.RawMessage `json:"items"`
				Version int               `json:"version"`
			}
			if err := json.Unmarshal(env.Data, &got); err != nil || status != http.StatusOK || len(got.Items) != 1 || got.Version != 0 {
				t.Errorf("order after rejected add = %d %s", status, env.Data)
			}

			for _, next := range []string{"CONFIRMED", "SHIPPED", "DELIVERED"} {
				if status, env := c.do(http.MethodPut, "/api/v1/orders/"+orderID+"/status", map[string]any{"status": next}); status != http.StatusOK {
					t.Fatalf("status %s = %d %+v", next, status, env)
				}
			}

			status, env = c.do(http.MethodGet, "/api/v1/users/"+userID+"/total-spent", nil)
			var spent struct {
				DeliveredCount int `json:"delivered_count"`
				Totals         []struct {
					Amount   string `json:"amount"`
					Currency string `json:"currency"`
				} `json:"totals"`
			}
			if err := json.Unmarshal(env.Data, &spent); err != nil || status != http.StatusOK {
				t.Fatalf("total spent = %d %s", status, env.Data)
			}
			if spent.DeliveredCount != 1 || len(spent.Totals) != 1 || spent.Totals[0].Amount != "60" {
				t.Errorf("unexpected total spent: %+v", spent)
			}

			if status, env := c.do(http.MethodGet, "/api/v1/orders/missing", nil); status != http.StatusNotFound || env.Error != "ORDER_NOT_FOUND" {
				t.Errorf("missing order = %d %+v", status, env)
			}
			if status, _ := c.do(http.MethodPost, "/api/v1/users", map[string]any{"name": "Bob"}); status != http.StatusBadRequest {
				t.Errorf("bind error = %d", status)
			}
			if status, env := c.do(http.MethodPost, "/api/v1/users", map[string]any{
				"name": "Alice 2", "email": "ALICE@example.com", "password": "secret123", "age": 31,
			}); status != http.StatusBadRequest || env.Error != "USER_UNIQUE_EMAIL" {
				t.Errorf("duplicate email = %d %+v", status, env)
			}
			if status, env := c.do(http.MethodPatch, "/api/v1/products/"+anvil, map[string]any{"name": "Big Anvil"}); status != http.StatusOK || !bytes.Contains(env.Data, []byte(`"name":"Big Anvil"`)) {
				t.Errorf("rename product = %d %s", status, env.Data)
			}
			if status, env := c.do(http.MethodPatch, "/api/v1/users/"+userID, map[string]any{"name": "Alice Smith"}); status != http.StatusOK || !bytes.Contains(env.Data, []byte(`"name":"Alice Smith"`)) {
				t.Errorf("rename user = %d %s", status, env.Data)
			}
			if status, _ := c.do(http.MethodPatch, "/api/v1/users/"+userID, map[string]any{}); status != http.StatusBadRequest {
				t.Errorf("rename user without name = %d", status)
			}
			if status, _ := c.do(http.MethodGet, "/api/v1/health/ready", nil); status != http.StatusOK {
				t.Errorf("ready = %d", status)
			}
		})
	}
}

func TestBuildRejectsBadPolicy(t *testing.T) {
	cfg := testConfig("memory", "")
	cfg.Order.MaxTotalWeight = 0
	if _, err := NewBuilder(cfg).Build(); err == nil {
		t.Fatal("expected weight policy error")
	}
}

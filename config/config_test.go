package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("database.type = %q, want sqlite", cfg.Database.Type)
	}
	if cfg.Order.MaxTotalWeight != 100 || cfg.Order.MaxLineWeight != 100 {
		t.Errorf("order limits = %v/%v", cfg.Order.MaxTotalWeight, cfg.Order.MaxLineWeight)
	}
	if strings.Join(cfg.Money.Currencies, ",") != "USD,EUR,UAH,PLN" {
		t.Errorf("currencies = %v", cfg.Money.Currencies)
	}
	if cfg.Database.Retry.InitialDelay != 100*time.Millisecond {
		t.Errorf("retry.initial_delay = %v", cfg.Database.Retry.InitialDelay)
	}
	if cfg.Server.RateLimit.IdleTTL != 10*time.Minute {
		t.Errorf("rate_limit.idle_ttl = %v", cfg.Server.RateLimit.IdleTTL)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	yaml := `
database:
  type: sqlite
  database: shop.db
order:
  max_total_weight: 250
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHOP_ORDER_MAX_LINE_WEIGHT", "40")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Type != "sqlite" || cfg.Database.Database != "shop.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Order.MaxTotalWeight != 250 {
		t.Errorf("max_total_weight = %v, want 250 from file", cfg.Order.MaxTotalWeight)
	}
	if cfg.Order.MaxLineWeight != 40 {
		t.Errorf("max_line_weight = %v, want 40 from env", cfg.Order.MaxLineWeight)
	}
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown database", func(c *Config) { c.Database.Type = "oracle" }, "database.type"},
		{"zero weight", func(c *Config) { c.Order.MaxTotalWeight = 0 }, "max_total_weight"},
		{"negative line weight", func(c *Config) { c.Order.MaxLineWeight = -1 }, "max_line_weight"},
		{"no currencies", func(c *Config) { c.Money.Currencies = nil }, "currencies"},
		{"retry attempts", func(c *Config) { c.Database.Retry.MaxAttempts = 0 }, "max_attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}

	if err := base.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

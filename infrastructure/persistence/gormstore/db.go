/*
Package gormstore GORM-backed repositories and unit of work.

Aggregates are mapped to persistence objects (package po) by hand; GORM
associations are not used, so aggregate boundaries stay visible in the
repository code. Any driver failure leaves this package as an
apperrors.Unavailable error; record-not-found becomes a domain not-found
error and a stale version becomes a concurrent-modification error.
*/
package gormstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ddd-commerce/config"
	"ddd-commerce/infrastructure/persistence/gormstore/po"
	"ddd-commerce/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 10
	DefaultConnMaxLifetime = 10 * time.Minute
	DefaultConnMaxIdleTime = 5 * time.Minute
)

// Dialector picks the GORM driver for cfg.Type.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "mysql":
		return mysql.Open(MySQLDSN(cfg)), nil
	case "postgres":
		return postgres.Open(PostgresDSN(cfg)), nil
	case "sqlite":
		return sqlite.Open(SQLiteDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported database type for gorm: %q", cfg.Type)
	}
}

func MySQLDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&collation=utf8mb4_unicode_ci&readTimeout=10s&writeTimeout=10s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
}

func PostgresDSN(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, sslMode)
}

// SQLiteDSN file path, or a shared in-memory database when Database is empty.
// A bare name such as "ddd_commerce" becomes "ddd_commerce.db".
func SQLiteDSN(cfg config.DatabaseConfig) string {
	name := cfg.Database
	if name == "" || name == ":memory:" {
		return "file::memory:?cache=shared&_busy_timeout=5000"
	}
	if !strings.HasPrefix(name, "file:") && !strings.Contains(name, "?") && filepath.Ext(name) == "" {
		name += ".db"
	}
	sep := "?"
	if strings.Contains(name, "?") {
		sep = "&"
	}
	return name + sep + "_busy_timeout=5000"
}

// Open connects, configures the pool and migrates the schema.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.NewGormLogger(logger.ParseGormLevel(cfg.LogLevel), cfg.SlowThreshold)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	maxOpen := orInt(cfg.MaxOpenConns, DefaultMaxOpenConns)
	maxIdle := min(orInt(cfg.MaxIdleConns, DefaultMaxIdleConns), maxOpen)
	if cfg.Type == "sqlite" {
		// sqlite 只允许一个写连接
		maxOpen, maxIdle = 1, 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(orDuration(cfg.ConnMaxLifetime, DefaultConnMaxLifetime))
	sqlDB.SetConnMaxIdleTime(DefaultConnMaxIdleTime)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	logger.Info("Database connected",
		zap.String("type", cfg.Type),
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.Int("max_open_conns", maxOpen),
		zap.Int("max_idle_conns", maxIdle),
	)
	return db, nil
}

// AutoMigrate creates or updates every table this package writes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&po.ProductPO{}, &po.StockPO{},
		&po.OrderPO{}, &po.LineItemPO{},
		&po.UserPO{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping used by the readiness probe
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

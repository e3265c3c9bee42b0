// Package cmd 组装应用: 持久化后端、应用服务、控制器与 HTTP 服务器。
package cmd

import (
	"context"
	"fmt"
	"net/http"

	"ddd-commerce/api"
	"ddd-commerce/api/health"
	apiorder "ddd-commerce/api/order"
	apiproduct "ddd-commerce/api/product"
	apiuser "ddd-commerce/api/user"
	orderapp "ddd-commerce/application/order"
	productapp "ddd-commerce/application/product"
	userapp "ddd-commerce/application/user"
	"ddd-commerce/config"
	orderdomain "ddd-commerce/domain/order"
	productdomain "ddd-commerce/domain/product"
	"ddd-commerce/domain/shared"
	userdomain "ddd-commerce/domain/user"
	"ddd-commerce/infrastructure/persistence/gormstore"
	"ddd-commerce/infrastructure/persistence/memory"
	"ddd-commerce/infrastructure/persistence/retry"
	"ddd-commerce/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppBuilder builds an App from configuration
type AppBuilder struct {
	cfg *config.Config
	db  *gorm.DB
}

// repositories 一组仓储加上对应的工作单元
type repositories struct {
	products productdomain.Repository
	orders   orderdomain.Repository
	users    userdomain.Repository
	uow      shared.UnitOfWork
}

// NewBuilder creates a new AppBuilder
func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

// WithDB 使用已打开的连接，跳过 gormstore.Open；调用方负责迁移
func (b *AppBuilder) WithDB(db *gorm.DB) *AppBuilder {
	b.db = db
	return b
}

// Build creates the App instance
func (b *AppBuilder) Build() (*App, error) {
	if len(b.cfg.Money.Currencies) > 0 {
		shared.SetAllowedCurrencies(b.cfg.Money.Currencies)
	}

	policy, err := orderdomain.NewWeightPolicy(
		decimal.NewFromFloat(b.cfg.Order.MaxTotalWeight),
		decimal.NewFromFloat(b.cfg.Order.MaxLineWeight),
	)
	if err != nil {
		return nil, fmt.Errorf("order weight policy: %w", err)
	}

	repos, db, err := b.initPersistence()
	if err != nil {
		return nil, err
	}

	productService := productapp.NewApplicationService(repos.products, repos.uow)
	orderService := orderapp.NewApplicationService(repos.orders, repos.products, repos.users, policy, repos.uow)
	userService := userapp.NewApplicationService(repos.users, repos.orders, repos.uow)

	checks := map[string]health.CheckFunc{}
	if db != nil {
		checks["database"] = func(ctx context.Context) error { return gormstore.Ping(ctx, db) }
	}

	router := api.NewRouter(b.cfg,
		health.NewController(b.cfg, checks),
		apiproduct.NewController(productService),
		apiorder.NewController(orderService),
		apiuser.NewController(userService),
	)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}

	return &App{
		config: b.cfg,
		router: router,
		server: server,
		db:     db,
		ownsDB: b.db == nil,
	}, nil
}

func (b *AppBuilder) initPersistence() (repositories, *gorm.DB, error) {
	retryConfig := retry.FromAppConfig(b.cfg)

	if b.db == nil && b.cfg.Database.Type == "memory" {
		logger.Info("Using in-memory persistence layer")
		return repositories{
			products: memory.NewProductRepository(),
			orders:   memory.NewOrderRepository(),
			users:    memory.NewUserRepository(),
			uow:      memory.NewUnitOfWork(retryConfig),
		}, nil, nil
	}

	db := b.db
	if db == nil {
		var err error
		if db, err = gormstore.Open(b.cfg.Database); err != nil {
			return repositories{}, nil, fmt.Errorf("open database: %w", err)
		}
	}
	logger.Info("Using GORM persistence layer", zap.String("driver", db.Dialector.Name()))

	return repositories{
		products: gormstore.NewProductRepository(db),
		orders:   gormstore.NewOrderRepository(db),
		users:    gormstore.NewUserRepository(db),
		uow:      gormstore.NewUnitOfWork(db, retryConfig),
	}, db, nil
}

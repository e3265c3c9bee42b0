package cmd

import (
	"context"
	"errors"
	"net/http"

	"ddd-commerce/api"
	"ddd-commerce/config"
	"ddd-commerce/infrastructure/persistence/gormstore"
	"ddd-commerce/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用程序
type App struct {
	config *config.Config
	router *api.Router
	server *http.Server
	db     *gorm.DB
	ownsDB bool
}

// Run 启动 HTTP 服务，ctx 取消后优雅关闭
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		a.Close()
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", zap.Duration("timeout", a.config.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Server.ShutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.Close()
	if err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// Handler HTTP handler (用于测试)
func (a *App) Handler() http.Handler {
	return a.router.GetEngine()
}

// Close 释放自己打开的数据库连接
func (a *App) Close() {
	if a.db == nil || !a.ownsDB {
		return
	}
	if err := gormstore.Close(a.db); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}
}

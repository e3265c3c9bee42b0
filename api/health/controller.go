package health

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"ddd-commerce/config"

	"github.com/gin-gonic/gin"
)

// CheckFunc 依赖检查，返回 nil 表示健康
type CheckFunc func(ctx context.Context) error

// Controller Health check controller
type Controller struct {
	config    *config.Config
	checks    map[string]CheckFunc
	timeout   time.Duration
	startTime time.Time
}

// NewController Create health check controller; checks may be empty (memory backend).
func NewController(cfg *config.Config, checks map[string]CheckFunc) *Controller {
	return &Controller{
		config:    cfg,
		checks:    checks,
		timeout:   2 * time.Second,
		startTime: time.Now(),
	}
}

// RegisterRoutes Register health check routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", c.Health)
	router.GET("/health/live", c.Liveness)
	router.GET("/health/ready", c.Readiness)
}

// HealthResponse Health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Uptime    string           `json:"uptime"`
	Timestamp string           `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check Check item
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo System information
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
}

// Health Complete health check
func (c *Controller) Health(ctx *gin.Context) {
	checks, healthy := c.runChecks(ctx.Request.Context())

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	response := HealthResponse{
		Status:    status,
		Version:   c.config.App.Version,
		Uptime:    time.Since(c.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	// 只在开发环境暴露运行时信息
	if c.config.IsDevelopment() {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		response.System = &SystemInfo{
			GoVersion:    runtime.Version(),
			NumCPU:       runtime.NumCPU(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     memStats.Alloc,
		}
	}

	statusCode := http.StatusOK
	if !healthy {
		statusCode = http.StatusServiceUnavailable
	}
	ctx.JSON(statusCode, response)
}

// Liveness Liveness check (Kubernetes liveness probe)
func (c *Controller) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness Readiness check (Kubernetes readiness probe)
func (c *Controller) Readiness(ctx *gin.Context) {
	if _, healthy := c.runChecks(ctx.Request.Context()); !healthy {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"message": "dependency not available",
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// runChecks 依次执行检查；失败消息不包含驱动细节
func (c *Controller) runChecks(ctx context.Context) (map[string]Check, bool) {
	results := make(map[string]Check, len(c.checks))
	healthy := true

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		start := time.Now()
		err := c.checks[name](checkCtx)
		cancel()

		check := Check{Status: "healthy", Latency: time.Since(start).String()}
		if err != nil {
			healthy = false
			check.Status = "unhealthy"
			check.Message = name + " not available"
		}
		results[name] = check
	}
	return results, healthy
}

/*
Package logger 项目统一日志。

请求内的日志一律通过 FromContext(ctx) 取得，它会带上中间件写入 context 的
request_id，HTTP 访问日志、用例日志、事务重试和 SQL 日志因此可以按请求串起来。
包级 Info/Warn/Error 只用于启动、关闭这类不属于任何请求的事件。
*/
package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ddd-commerce/config"
	"ddd-commerce/infrastructure/persistence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RequestIDField 日志中请求 ID 的字段名
const RequestIDField = "request_id"

// 文件输出的轮转默认值，配置为 0 或负数时使用
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 7
)

var log = zap.NewNop()

// Init 按配置构建全局 logger。未调用前所有日志被丢弃。
func Init(cfg *config.LogConfig, env string) error {
	sink, err := newSink(cfg)
	if err != nil {
		return err
	}
	core := zapcore.NewCore(newEncoder(cfg.Format, env), sink, parseLevel(cfg.Level))
	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

// SetLogger 替换全局 logger；测试用它接入 zaptest/observer
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}

// With 全局 logger 附加字段
func With(fields ...zap.Field) *zap.Logger {
	return log.With(fields...)
}

// FromContext 带上 ctx 中请求 ID 的 logger
func FromContext(ctx context.Context) *zap.Logger {
	if requestID := persistence.RequestIDFromContext(ctx); requestID != "" {
		return log.With(zap.String(RequestIDField, requestID))
	}
	return log
}

func Info(msg string, fields ...zap.Field) { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field) { log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }

// Sync 刷新缓冲；stdout 不支持 fsync 的错误忽略
func Sync() error {
	err := log.Sync()
	if err == nil {
		return nil
	}
	for _, benign := range []string{"inappropriate ioctl for device", "invalid argument", "bad file descriptor"} {
		if strings.Contains(err.Error(), benign) {
			return nil
		}
	}
	return err
}

// newEncoder format 未指定时，开发环境用 console，其余用 json
func newEncoder(format, env string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.MillisDurationEncoder

	switch {
	case format == "console":
		return zapcore.NewConsoleEncoder(encoderConfig)
	case format == "json":
		return zapcore.NewJSONEncoder(encoderConfig)
	case env == "dev" || env == "development":
		return zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return zapcore.NewJSONEncoder(encoderConfig)
	}
}

func newSink(cfg *config.LogConfig) (zapcore.WriteSyncer, error) {
	if cfg.Output != "file" {
		return zapcore.Lock(os.Stdout), nil
	}
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("log.file_path is required for file output")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return zapcore.AddSync(rotation(cfg)), nil
}

// rotation 文件轮转设置
func rotation(cfg *config.LogConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    orDefault(cfg.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: orDefault(cfg.MaxBackups, DefaultMaxBackups),
		MaxAge:     orDefault(cfg.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   cfg.Compress,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func parseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

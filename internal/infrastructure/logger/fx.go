package logger

import (
	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides loggers for fx DI
var Module = fx.Module("logger",
	fx.Provide(NewLogger, NewTelegramLogger),
)

// NewLogger creates a new logger from config
func NewLogger(cfg *config.LoggingConfig) zerolog.Logger {
	return New(cfg.Level)
}

// NewTelegramLogger creates the gotd client logger from config
func NewTelegramLogger(cfg *config.TelegramConfig) *zap.Logger {
	return NewZap(cfg.LogLevel)
}

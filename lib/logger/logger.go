package logger

import (
	"fmt"
	"log"
	"log/slog"
	"os"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// SetupLogger builds the root logger for env. Non-local environments write to
// logPath; the returned close function releases the file.
func SetupLogger(env, logPath string) (*slog.Logger, func(), error) {
	var logFile *os.File
	var err error
	closeFn := func() {}

	switch env {
	case envLocal:
	case envDev, envProd:
		logFile, err = os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return nil, closeFn, fmt.Errorf("opening log file: %w", err)
		}
		closeFn = func() { _ = logFile.Close() }
		log.Printf("env: %s; log file: %s", env, logPath)
	default:
		return nil, closeFn, fmt.Errorf("invalid environment: %s", env)
	}

	var logger *slog.Logger
	switch env {
	case envLocal:
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		logger = slog.New(
			slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		logger = slog.New(
			slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return logger, closeFn, nil
}

// WithAlerts returns a logger whose records at or above minLevel are also sent to sender.
func WithAlerts(logger *slog.Logger, sender Sender, minLevel slog.Level) *slog.Logger {
	if sender == nil {
		return logger
	}
	return slog.New(NewTelegramHandler(logger.Handler(), sender, minLevel))
}

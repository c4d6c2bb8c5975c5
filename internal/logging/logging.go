package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"Go2NetWatch/internal/config"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger used across the application.
func Setup(cfg config.LogConfig) error {
	return configure(log.StandardLogger(), cfg, os.Stdout)
}

func configure(logger *log.Logger, cfg config.LogConfig, out io.Writer) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.SetOutput(out)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format '%s'", cfg.Format)
	}

	if cfg.FileDir != "" {
		if err := addFileLogger(logger, cfg.FileDir); err != nil {
			return fmt.Errorf("failed to set up file logging: %w", err)
		}
	}
	return nil
}

func parseLevel(level string) (log.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return log.InfoLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("unknown log level '%s'", level)
}

func addFileLogger(logger *log.Logger, logPath string) error {
	if err := os.MkdirAll(logPath, 0755); err != nil {
		return err
	}

	logger.AddHook(lfshook.NewHook(lfshook.PathMap{
		log.DebugLevel: filepath.Join(logPath, "debug.log"),
		log.InfoLevel:  filepath.Join(logPath, "info.log"),
		log.WarnLevel:  filepath.Join(logPath, "warn.log"),
		log.ErrorLevel: filepath.Join(logPath, "error.log"),
		log.FatalLevel: filepath.Join(logPath, "fatal.log"),
		log.PanicLevel: filepath.Join(logPath, "panic.log"),
	}, &log.TextFormatter{FullTimestamp: true, DisableColors: true}))
	return nil
}

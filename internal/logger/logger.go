// Package logger holds the process-wide arbor logger.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	arborcommon "github.com/ternarybob/arbor/common"
	"github.com/ternarybob/arbor/models"

	"github.com/ternarybob/calc/internal/config"
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// GetLogger returns the global logger, creating a console logger if
// SetupLogger has not run.
func GetLogger() arbor.ILogger {
	loggerMutex.RLock()
	l := globalLogger
	loggerMutex.RUnlock()
	if l != nil {
		return l
	}

	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if globalLogger == nil {
		globalLogger = arbor.NewLogger().WithConsoleWriter(writerConfig(nil, models.LogWriterTypeConsole, ""))
	}
	return globalLogger
}

// InitLogger replaces the global logger.
func InitLogger(logger arbor.ILogger) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	globalLogger = logger
}

// outputs resolves the configured output names.
func outputs(names []string) (console, file bool) {
	for _, name := range names {
		switch name {
		case "stdout", "console":
			console = true
		case "file":
			file = true
		case "both":
			console, file = true, true
		}
	}
	return console, file
}

// resolveOutputs decides which writers cfg gets. A log directory that
// cannot be created drops the file writer with a warning on stderr; it never
// turns the console writer on, since stdout may carry a protocol.
func resolveOutputs(cfg *config.Config) (console, file bool) {
	console, file = outputs(cfg.Logging.Output)
	requested := console || file

	if file {
		logFile := cfg.LogPath()
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[calc] Warning: file logging disabled, cannot create %s: %v\n", filepath.Dir(logFile), err)
			file = false
		}
	}

	if !requested {
		console = true
	}
	return console, file
}

// SetupLogger builds a logger from cfg.Logging and installs it globally.
func SetupLogger(cfg *config.Config) arbor.ILogger {
	logger := arbor.NewLogger()
	console, file := resolveOutputs(cfg)

	if file {
		logger = logger.WithFileWriter(writerConfig(cfg, models.LogWriterTypeFile, cfg.LogPath()))
	}
	if console {
		logger = logger.WithConsoleWriter(writerConfig(cfg, models.LogWriterTypeConsole, ""))
	}

	logger = logger.WithMemoryWriter(writerConfig(cfg, models.LogWriterTypeMemory, ""))
	logger = logger.WithLevelFromString(cfg.Logging.Level)

	InitLogger(logger)
	return logger
}

func writerConfig(cfg *config.Config, writerType models.LogWriterType, filename string) models.WriterConfiguration {
	wc := models.WriterConfiguration{
		Type:       writerType,
		FileName:   filename,
		TimeFormat: "15:04:05.000",
		OutputType: models.OutputFormatLogfmt,
		MaxSize:    10 * 1024 * 1024,
		MaxBackups: 3,
	}
	if cfg == nil {
		return wc
	}

	if cfg.Logging.TimeFormat != "" {
		wc.TimeFormat = cfg.Logging.TimeFormat
	}
	if cfg.Logging.Format == "json" {
		wc.OutputType = models.OutputFormatJSON
	}
	if cfg.Logging.MaxSizeMB > 0 {
		wc.MaxSize = int64(cfg.Logging.MaxSizeMB) * 1024 * 1024
	}
	if cfg.Logging.MaxBackups > 0 {
		wc.MaxBackups = cfg.Logging.MaxBackups
	}
	return wc
}

// Stop flushes buffered log output. Safe to call more than once.
func Stop() {
	arborcommon.Stop()
}

package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EnvLogLevel overrides the level passed to Setup.
const EnvLogLevel = "LAUNCHPAD_LOG_LEVEL"

var logFile *lumberjack.Logger

// Setup initializes the logging system
func Setup(logPath string, level string) error {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     7,     // days
		Compress:   false, // Don't compress to make debugging easier
	}

	var writers []io.Writer
	writers = append(writers, logFile)

	if fileInfo, _ := os.Stdout.Stat(); fileInfo != nil {
		writers = append(writers, os.Stdout)
	}

	multiWriter := io.MultiWriter(writers...)

	if env := os.Getenv(EnvLogLevel); env != "" {
		level = env
	}

	handler := slog.NewTextHandler(multiWriter, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	slog.SetDefault(slog.New(handler))

	// Also redirect standard log package to the file
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	slog.Info("logging initialized", "path", logPath, "level", level)

	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a logger with component attribute
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", component)
}

// Close closes the log file
func Close() {
	if logFile != nil {
		slog.Info("logging shutdown")
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}
}

// GetDefaultLogPath returns the log file path under the app data directory,
// falling back to a logs folder next to the executable.
func GetDefaultLogPath(logsDir string) string {
	if logsDir != "" {
		return filepath.Join(logsDir, "launchpad.log")
	}
	exePath, err := os.Executable()
	if err != nil {
		return filepath.Join(".", "logs", "launchpad.log")
	}
	return filepath.Join(filepath.Dir(exePath), "logs", "launchpad.log")
}

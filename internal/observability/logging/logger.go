// Package logging builds the shared slog logger for the api and worker
// binaries so grading events carry the same base attributes in both.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

const appName = "lab-grader"

// NewJSONLogger returns a JSON logger tagged with the application and
// service names. service distinguishes the api and worker processes.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("app", appName, "service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

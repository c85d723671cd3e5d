package config

import (
    "io"
    "log/slog"
    "strings"

    "github.com/pkg/errors"
)

// NewLogger builds the application logger: JSON lines by default, text
// when pretty is set.
func NewLogger(w io.Writer, level string, pretty bool) (*slog.Logger, error) {
    lvl, err := parseLogLevel(level)
    if err != nil {
        return nil, err
    }
    opts := &slog.HandlerOptions{Level: lvl}
    if pretty {
        return slog.New(slog.NewTextHandler(w, opts)), nil
    }
    return slog.New(slog.NewJSONHandler(w, opts)), nil
}

func parseLogLevel(level string) (slog.Level, error) {
    switch strings.ToLower(strings.TrimSpace(level)) {
    case "debug":
        return slog.LevelDebug, nil
    case "", "info":
        return slog.LevelInfo, nil
    case "warn":
        return slog.LevelWarn, nil
    case "error":
        return slog.LevelError, nil
    default:
        return slog.LevelInfo, errors.Errorf("unknown log level: %s", level)
    }
}

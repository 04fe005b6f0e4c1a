package slogobs

import (
	"fmt"
	"log/slog"
	"strings"
)

// Format selects the slog handler used by the Observer.
type Format string

const (
	// FormatText renders key=value lines (slog.TextHandler).
	FormatText Format = "text"

	// FormatJSON renders one JSON object per record (slog.JSONHandler).
	FormatJSON Format = "json"
)

// LevelTrace sits below DEBUG and is only emitted when explicitly enabled.
const LevelTrace = slog.LevelDebug - 4

// ParseFormat maps a case-insensitive name to a Format, defaulting to text.
func ParseFormat(value string) Format {
	if strings.EqualFold(strings.TrimSpace(value), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// ParseLogLevel parses TRACE, DEBUG, INFO, WARN/WARNING or ERROR
// (case-insensitive). An empty string yields INFO.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

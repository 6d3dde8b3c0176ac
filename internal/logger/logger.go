// Package logger provides the log sinks used during a search-and-copy run.
//
// Core packages (walker, copier, archive, exclusion) receive a Logger
// instead of writing to process-wide state. The console logger prints
// timestamped, optionally colorized lines; the file logger keeps a per-run
// log file with a latest.log symlink; MultiLogger fans out to both.
package logger

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrison/mrncopy/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is the sink injected into the walker and the copy engine.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)

	// LogProgress reports cumulative walk counters.
	LogProgress(p models.Progress)

	// LogWalkSummary reports the end of a walk.
	LogWalkSummary(s models.WalkSummary)

	// LogCopyProgress reports that identifier key finished copying.
	LogCopyProgress(key string, done, total int)

	// LogCopySummary reports the end of a copy run.
	LogCopySummary(r *models.DuplicateReport)
}

// ValidLevels lists the accepted log level names in increasing severity.
var ValidLevels = []string{"trace", "debug", "info", "warn", "error"}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	for _, valid := range ValidLevels {
		if normalized == valid {
			return normalized
		}
	}
	return "info"
}

// IsValidLevel reports whether level names a known log level.
func IsValidLevel(level string) bool {
	normalized := strings.ToLower(strings.TrimSpace(level))
	for _, valid := range ValidLevels {
		if normalized == valid {
			return true
		}
	}
	return false
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// progressLine renders walk counters the way every run log has always
// worded them.
func progressLine(p models.Progress) string {
	return fmt.Sprintf("%d directories explored, %d matching files found, and %d matching folders found. (Last directory explored: %s)",
		p.DirsVisited, p.FilesMatched, p.DirsMatched, p.LastDir)
}

// walkSummaryLine renders the completion line of a walk.
func walkSummaryLine(s models.WalkSummary) string {
	return fmt.Sprintf("Search complete. %d directories explored, %d matching files found, and %d matching folders found. %d folders excluded. Time it took to run: %.4f s.",
		s.DirsVisited, s.FilesMatched, s.DirsMatched, s.DirsExcluded, s.Duration.Seconds())
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(message string)                     {}
func (n *NoOpLogger) LogDebug(message string)                     {}
func (n *NoOpLogger) LogInfo(message string)                      {}
func (n *NoOpLogger) LogWarn(message string)                      {}
func (n *NoOpLogger) LogError(message string)                     {}
func (n *NoOpLogger) LogProgress(p models.Progress)               {}
func (n *NoOpLogger) LogWalkSummary(s models.WalkSummary)         {}
func (n *NoOpLogger) LogCopyProgress(key string, done, total int) {}
func (n *NoOpLogger) LogCopySummary(r *models.DuplicateReport)    {}

// MultiLogger forwards every call to each wrapped logger in order.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines loggers; nil entries are dropped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) LogTrace(message string) {
	for _, l := range m.loggers {
		l.LogTrace(message)
	}
}

func (m *MultiLogger) LogDebug(message string) {
	for _, l := range m.loggers {
		l.LogDebug(message)
	}
}

func (m *MultiLogger) LogInfo(message string) {
	for _, l := range m.loggers {
		l.LogInfo(message)
	}
}

func (m *MultiLogger) LogWarn(message string) {
	for _, l := range m.loggers {
		l.LogWarn(message)
	}
}

func (m *MultiLogger) LogError(message string) {
	for _, l := range m.loggers {
		l.LogError(message)
	}
}

func (m *MultiLogger) LogProgress(p models.Progress) {
	for _, l := range m.loggers {
		l.LogProgress(p)
	}
}

func (m *MultiLogger) LogWalkSummary(s models.WalkSummary) {
	for _, l := range m.loggers {
		l.LogWalkSummary(s)
	}
}

func (m *MultiLogger) LogCopyProgress(key string, done, total int) {
	for _, l := range m.loggers {
		l.LogCopyProgress(key, done, total)
	}
}

func (m *MultiLogger) LogCopySummary(r *models.DuplicateReport) {
	for _, l := range m.loggers {
		l.LogCopySummary(r)
	}
}

package logger

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/harrison/mrncopy/internal/models"
)

// colorScheme defines consistent colors for different metric types.
// Green: success/positive metrics
// Red: failure/error metrics
// Yellow: warning metrics
// Cyan: labels
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// colorLevel colors a level tag for console output.
func colorLevel(level string) string {
	switch strings.ToUpper(level) {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// formatColorizedMetric formats a single metric with colorized label and value.
// Format: "label: value"
func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), scheme.value.Sprintf("%v", value))
}

// formatColorizedCopyMetrics formats copy counters with color coding.
// Copied counts are green, duplicates yellow, errors red; zero-valued
// duplicate and error counts keep the neutral label color.
// Format: "copied: N, duplicates: N, archives skipped: N, errors: N, size: X"
func formatColorizedCopyMetrics(r *models.DuplicateReport) string {
	scheme := newColorScheme()
	parts := []string{
		fmt.Sprintf("%s: %s", scheme.success.Sprint("copied"), scheme.value.Sprintf("%d", r.Copied)),
	}

	if n := len(r.Entries); n > 0 {
		parts = append(parts, fmt.Sprintf("%s: %s", scheme.warn.Sprint("duplicates"), scheme.warn.Sprintf("%d", n)))
	} else {
		parts = append(parts, formatColorizedMetric("duplicates", 0, scheme))
	}

	parts = append(parts, formatColorizedMetric("archives skipped", r.SkippedArchives, scheme))

	if n := len(r.Errors); n > 0 {
		parts = append(parts, fmt.Sprintf("%s: %s", scheme.fail.Sprint("errors"), scheme.fail.Sprintf("%d", n)))
	} else {
		parts = append(parts, formatColorizedMetric("errors", 0, scheme))
	}

	parts = append(parts, formatColorizedMetric("size", humanize.Bytes(uint64(r.BytesCopied)), scheme))
	return strings.Join(parts, ", ")
}

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/harrison/mrncopy/internal/models"
)

// ConsoleLogger logs run progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// It supports log level filtering to control message verbosity.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// SetColor forces color output on or off, overriding TTY detection.
func (cl *ConsoleLogger) SetColor(enabled bool) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.colorOutput = enabled
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns true for os.Stdout and os.Stderr when they are TTYs.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// color.NoColor already accounts for NO_COLOR and non-TTY stdout
		return !color.NoColor
	}
	return false
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, colorLevel(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// LogProgress logs cumulative walk counters at INFO level.
// Format: "[HH:MM:SS] N directories explored, N matching files found, ..."
func (cl *ConsoleLogger) LogProgress(p models.Progress) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	line := progressLine(p)
	if cl.colorOutput {
		line = color.New(color.FgCyan).Sprint(line)
	}
	fmt.Fprintf(cl.writer, "[%s] %s\n", timestamp(), line)
}

// LogWalkSummary logs the completion of a walk at INFO level.
func (cl *ConsoleLogger) LogWalkSummary(s models.WalkSummary) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	line := walkSummaryLine(s)
	if cl.colorOutput {
		line = color.New(color.FgGreen).Sprint(line)
	}
	output := fmt.Sprintf("[%s] %s\n", ts, line)
	if s.ReadErrors > 0 {
		warn := fmt.Sprintf("%d directories could not be read", s.ReadErrors)
		if cl.colorOutput {
			warn = color.New(color.FgYellow).Sprint(warn)
		}
		output += fmt.Sprintf("[%s] %s\n", ts, warn)
	}
	cl.writer.Write([]byte(output))
}

// LogCopyProgress logs a progress bar after each identifier is copied.
// Format: "[HH:MM:SS] Copying: [=====     ] 5/10 (50%) 55081"
func (cl *ConsoleLogger) LogCopyProgress(key string, done, total int) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	pb := NewProgressBar(total, 10, cl.colorOutput)
	pb.SetPrefix("Copying: ")
	pb.Update(done)
	fmt.Fprintf(cl.writer, "[%s] %s %s\n", timestamp(), pb.Render(), key)
}

// LogCopySummary logs the copy outcome at INFO level, listing errors when any.
func (cl *ConsoleLogger) LogCopySummary(r *models.DuplicateReport) {
	if cl.writer == nil || r == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var b strings.Builder

	if cl.colorOutput {
		header := color.New(color.Bold).Sprint("=== Copy Summary ===")
		fmt.Fprintf(&b, "[%s] %s\n", ts, header)
		fmt.Fprintf(&b, "[%s] %s\n", ts, formatColorizedCopyMetrics(r))
	} else {
		fmt.Fprintf(&b, "[%s] === Copy Summary ===\n", ts)
		fmt.Fprintf(&b, "[%s] copied: %d, duplicates: %d, archives skipped: %d, errors: %d, size: %s\n",
			ts, r.Copied, len(r.Entries), r.SkippedArchives, len(r.Errors), humanize.Bytes(uint64(r.BytesCopied)))
	}
	fmt.Fprintf(&b, "[%s] Copy complete. Time it took to run: %.4f s.\n", ts, r.Duration.Seconds())

	if r.HasDuplicates() {
		msg := "Potential file duplicates detected. Colliding names were copied under a _dup suffix."
		if cl.colorOutput {
			msg = color.New(color.FgYellow).Sprint(msg)
		}
		fmt.Fprintf(&b, "[%s] %s\n", ts, msg)
	}
	for _, e := range r.Errors {
		line := e.Error()
		if cl.colorOutput {
			line = color.New(color.FgRed).Sprint(line)
		}
		fmt.Fprintf(&b, "[%s]   - %s\n", ts, line)
	}

	cl.writer.Write([]byte(b.String()))
}

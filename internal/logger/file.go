package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/harrison/mrncopy/internal/models"
)

// FileLogger writes a per-run log file named run-YYYYMMDD-HHMMSS.log and
// keeps a latest.log symlink pointing at it. It is safe for concurrent use.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir at the given level. runID is
// written into the log header so log files can be matched to audit records.
func NewFileLogger(logDir, logLevel, runID string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", stamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== mrncopy Run Log ===\n")
	if runID != "" {
		fl.writeRunLog(fmt.Sprintf("Run ID: %s\n", runID))
	}
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// Path returns the run log file path.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogProgress writes walk counters at INFO level.
func (fl *FileLogger) LogProgress(p models.Progress) {
	if !fl.shouldLog("info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] %s\n", timestamp(), progressLine(p)))
}

// LogWalkSummary writes the walk completion line at INFO level.
func (fl *FileLogger) LogWalkSummary(s models.WalkSummary) {
	if !fl.shouldLog("info") {
		return
	}
	ts := timestamp()
	msg := fmt.Sprintf("[%s] %s\n", ts, walkSummaryLine(s))
	if s.ArchiveHits > 0 {
		msg += fmt.Sprintf("[%s] %d files matched through archive contents\n", ts, s.ArchiveHits)
	}
	if s.ReadErrors > 0 {
		msg += fmt.Sprintf("[%s] %d directories could not be read\n", ts, s.ReadErrors)
	}
	fl.writeRunLog(msg)
}

// LogCopyProgress writes one line per copied identifier at DEBUG level.
// The console shows a bar instead.
func (fl *FileLogger) LogCopyProgress(key string, done, total int) {
	if !fl.shouldLog("debug") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [DEBUG] Copied identifier %s (%d/%d)\n", timestamp(), key, done, total))
}

// LogCopySummary writes the copy outcome and every duplicate and error.
func (fl *FileLogger) LogCopySummary(r *models.DuplicateReport) {
	if r == nil || !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	status := "SUCCESS"
	if len(r.Errors) > 0 {
		if r.Copied == 0 {
			status = "FAILED"
		} else {
			status = "PARTIAL"
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s] === COPY SUMMARY ===\n", ts)
	fmt.Fprintf(&b, "[%s] Copied:           %d\n", ts, r.Copied)
	fmt.Fprintf(&b, "[%s] Duplicates:       %d\n", ts, len(r.Entries))
	fmt.Fprintf(&b, "[%s] Archives skipped: %d\n", ts, r.SkippedArchives)
	fmt.Fprintf(&b, "[%s] Errors:           %d\n", ts, len(r.Errors))
	fmt.Fprintf(&b, "[%s] Size:             %s\n", ts, humanize.Bytes(uint64(r.BytesCopied)))
	fmt.Fprintf(&b, "[%s] Total time:       %s\n", ts, formatDuration(r.Duration))
	fmt.Fprintf(&b, "[%s] Status:           %s\n", ts, status)

	for _, d := range r.Entries {
		fmt.Fprintf(&b, "[%s] duplicate %s (identifier %s) -> %s\n", ts, d.Name(), d.Identifier, d.Destination)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "[%s] [ERROR] %s\n", ts, e.Error())
	}
	fmt.Fprintf(&b, "[%s] Completed at: %s\n", ts, time.Now().Format(time.RFC3339))

	fl.writeRunLog(b.String())
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}

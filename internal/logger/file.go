package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/codescout/internal/models"
)

// DefaultLogDir is where run logs are written, relative to the project root.
var DefaultLogDir = filepath.Join(".codescout", "logs")

// FileLogger logs run events to a timestamped file in the log directory.
// It keeps a latest.log symlink pointing at the most recent run and writes one
// detail file per researched directory under tasks/, holding the raw analyzer
// output or the failure diagnostic.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	tasksDir string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir at the given level, creating the
// directory when needed.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if logDir == "" {
		logDir = DefaultLogDir
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	tasksDir := filepath.Join(logDir, "tasks")
	if err := os.MkdirAll(tasksDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create tasks directory: %w", err)
	}

	// run-YYYYMMDD-HHMMSS.log; a second run within the same second appends.
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405")))
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
		tasksDir: tasksDir,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== codescout Run Log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// RunFile returns the path of this run's log file.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
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
	if !enabled(fl.logLevel, level) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogTaskStart records the analyzer launch for a directory.
func (fl *FileLogger) LogTaskStart(task models.ResearchTask) {
	if !enabled(fl.logLevel, "info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] Researching %s (%s)\n", timestamp(), task.Directory, task.AbsPath))
}

// LogTaskResult records the outcome in the run log and writes a detail file
// tasks/<artifact>.log. Detail files are always written, regardless of level.
func (fl *FileLogger) LogTaskResult(result models.ResearchResult) {
	if enabled(fl.logLevel, "info") {
		line := fmt.Sprintf("[%s] %s: %s (%.1fs)", timestamp(), result.Task.Directory, result.Status, result.Duration.Seconds())
		if result.Message != "" {
			line += " - " + result.Message
		}
		fl.writeRunLog(line + "\n")
	}

	if err := fl.writeTaskLog(result); err != nil {
		fl.writeRunLog(fmt.Sprintf("[%s] [WARN] %v\n", timestamp(), err))
	}
}

// TaskLogPath returns the detail file path for a task.
func (fl *FileLogger) TaskLogPath(task models.ResearchTask) string {
	base := strings.TrimSuffix(filepath.Base(task.OutputPath), filepath.Ext(task.OutputPath))
	if base == "" || base == "." {
		base = fmt.Sprintf("task-%d", task.Index)
	}
	return filepath.Join(fl.tasksDir, base+".log")
}

func (fl *FileLogger) writeTaskLog(result models.ResearchResult) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s ===\n", result.Task.Directory)
	fmt.Fprintf(&sb, "Path: %s\n", result.Task.AbsPath)
	fmt.Fprintf(&sb, "Artifact: %s\n", result.Task.OutputPath)
	fmt.Fprintf(&sb, "Status: %s\n", result.Status)
	fmt.Fprintf(&sb, "Duration: %.1fs\n\n", result.Duration.Seconds())
	if result.Message != "" {
		fmt.Fprintf(&sb, "Message:\n%s\n\n", result.Message)
	}
	if result.Err != nil {
		fmt.Fprintf(&sb, "Error:\n%v\n\n", result.Err)
	}
	if result.Output != "" {
		fmt.Fprintf(&sb, "Output:\n%s\n\n", result.Output)
	}
	fmt.Fprintf(&sb, "Completed at: %s\n", time.Now().Format(time.RFC3339))

	path := fl.TaskLogPath(result.Task)
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write task log %s: %w", path, err)
	}
	return nil
}

// LogProgress is a no-op: progress bars are console-only.
func (fl *FileLogger) LogProgress(done, total int) {}

// LogSummary writes the final counts and every non-succeeded directory.
// Like the console report it ignores the log level.
func (fl *FileLogger) LogSummary(summary models.RunSummary) {
	var sb strings.Builder
	sb.WriteString("\n=== Research Summary ===\n")
	fmt.Fprintf(&sb, "Run ID: %s\n", summary.RunID)
	fmt.Fprintf(&sb, "Directories: %d\n", summary.Total())
	for _, st := range models.AllStatuses {
		if n := summary.Counts[st]; n > 0 {
			fmt.Fprintf(&sb, "%s: %d\n", st, n)
		}
	}
	fmt.Fprintf(&sb, "Duration: %.1fs\n", summary.Duration().Seconds())

	if summary.Failures() > 0 {
		sb.WriteString("Failures:\n")
		for _, e := range summary.Entries {
			if e.Status == models.StatusSucceeded {
				continue
			}
			fmt.Fprintf(&sb, "  - %s: %s", e.Directory, e.Status)
			if e.Message != "" {
				fmt.Fprintf(&sb, " (%s)", e.Message)
			}
			sb.WriteString("\n")
		}
	}

	if summary.Failures() == 0 {
		sb.WriteString("Status: SUCCESS\n")
	} else {
		sb.WriteString("Status: FAILED\n")
	}

	fl.writeRunLog(sb.String())
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
		// Flush after each write for real-time logging
		fl.runLog.Sync()
	}
}

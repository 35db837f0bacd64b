// Package logger provides logging implementations for research runs.
//
// ConsoleLogger reports fanout progress and the end-of-run summary to a
// terminal, FileLogger keeps a per-run log on disk, and MultiLogger fans events
// out to several loggers. All implementations are safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/codescout/internal/models"
)

// Logger is the full set of events a research run emits.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogTaskStart(task models.ResearchTask)
	LogTaskResult(result models.ResearchResult)
	LogProgress(done, total int)
	LogSummary(summary models.RunSummary)
}

// ConsoleLogger logs research progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is enabled when the writer is a terminal and NO_COLOR is unset.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	progress    *ProgressBar
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive); anything
// else selects "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: IsTerminal(writer),
	}
}

// IsTerminal reports whether w is a TTY that should receive ANSI colors.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// paint returns a color that honors the logger's own TTY decision rather than
// the global one fatih/color derives from stdout.
func (cl *ConsoleLogger) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if cl.colorOutput {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
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
// Format: "[HH:MM:SS] [INFO] <message>"
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
	if cl.writer == nil || !enabled(cl.logLevel, level) {
		return
	}

	var attr color.Attribute
	switch level {
	case "TRACE":
		attr = color.FgHiBlack
	case "DEBUG":
		attr = color.FgCyan
	case "INFO":
		attr = color.FgBlue
	case "WARN":
		attr = color.FgYellow
	default:
		attr = color.FgRed
	}

	cl.write(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), cl.paint(attr).Sprint(level), message))
}

// LogTaskStart logs that an analyzer was launched for a directory, at DEBUG level.
func (cl *ConsoleLogger) LogTaskStart(task models.ResearchTask) {
	if cl.writer == nil || !enabled(cl.logLevel, "debug") {
		return
	}
	cl.write(fmt.Sprintf("[%s] Researching %s\n", timestamp(), cl.paint(color.Bold).Sprint(task.Directory)))
}

// LogTaskResult logs the outcome of one directory. Successes are INFO, anything
// else is WARN and carries the diagnostic message.
// Format: "[HH:MM:SS] <dir>: <status> (<duration>)[ - <message>]"
func (cl *ConsoleLogger) LogTaskResult(result models.ResearchResult) {
	level := "info"
	if !result.Succeeded() {
		level = "warn"
	}
	if cl.writer == nil || !enabled(cl.logLevel, level) {
		return
	}

	line := fmt.Sprintf("[%s] %s: %s (%s)", timestamp(), result.Task.Directory,
		cl.statusText(result.Status), formatDuration(result.Duration))
	if result.Message != "" {
		line += " - " + result.Message
	}
	cl.write(line + "\n")
}

// LogProgress logs a progress bar of finished tasks at INFO level.
// Format: "[HH:MM:SS] Progress: [=====     ] 3/6 (50%)"
func (cl *ConsoleLogger) LogProgress(done, total int) {
	if cl.writer == nil || !enabled(cl.logLevel, "info") {
		return
	}

	cl.mutex.Lock()
	if cl.progress == nil || cl.progress.Total() != total {
		cl.progress = NewProgressBar(total, 20, cl.colorOutput)
	}
	cl.progress.Update(done)
	bar := cl.progress.Render()
	cl.mutex.Unlock()

	cl.write(fmt.Sprintf("[%s] Progress: %s\n", timestamp(), bar))
}

// LogSummary prints the end-of-run report: counts per status, then the
// directories in each non-empty failure category, then where artifacts went.
// The report is printed at every log level.
func (cl *ConsoleLogger) LogSummary(summary models.RunSummary) {
	if cl.writer == nil {
		return
	}

	ts := timestamp()
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%s] %s\n", ts, cl.paint(color.Bold).Sprint("=== Research Summary ==="))
	fmt.Fprintf(&sb, "[%s] Directories: %d\n", ts, summary.Total())
	fmt.Fprintf(&sb, "[%s] %s\n", ts, cl.paint(color.FgGreen).Sprintf("Succeeded: %d", summary.Counts[models.StatusSucceeded]))

	failures := summary.Failures()
	failedLine := fmt.Sprintf("Failed: %d", failures)
	if failures > 0 {
		failedLine = cl.paint(color.FgRed).Sprint(failedLine)
	}
	fmt.Fprintf(&sb, "[%s] %s\n", ts, failedLine)
	if d := summary.Duration(); d > 0 {
		fmt.Fprintf(&sb, "[%s] Duration: %s\n", ts, formatDuration(d))
	}

	for _, st := range models.AllStatuses {
		if st == models.StatusSucceeded {
			continue
		}
		entries := summary.EntriesWithStatus(st)
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "[%s] %s:\n", ts, cl.statusText(st))
		for _, e := range entries {
			line := fmt.Sprintf("[%s]   - %s", ts, e.Directory)
			if e.Message != "" {
				line += ": " + e.Message
			}
			sb.WriteString(line + "\n")
		}
	}

	if summary.OutputRoot != "" {
		fmt.Fprintf(&sb, "[%s] Artifacts: %s\n", ts, summary.OutputRoot)
	}

	cl.write(sb.String())
}

func (cl *ConsoleLogger) statusText(st models.Status) string {
	switch st {
	case models.StatusSucceeded:
		return cl.paint(color.FgGreen).Sprint(string(st))
	case models.StatusTimedOut, models.StatusCancelled:
		return cl.paint(color.FgYellow).Sprint(string(st))
	default:
		return cl.paint(color.FgRed).Sprint(string(st))
	}
}

func (cl *ConsoleLogger) write(s string) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.writer.Write([]byte(s))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "850ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string)                     {}
func (n *NoOpLogger) LogDebug(string)                     {}
func (n *NoOpLogger) LogInfo(string)                      {}
func (n *NoOpLogger) LogWarn(string)                      {}
func (n *NoOpLogger) LogError(string)                     {}
func (n *NoOpLogger) LogTaskStart(models.ResearchTask)    {}
func (n *NoOpLogger) LogTaskResult(models.ResearchResult) {}
func (n *NoOpLogger) LogProgress(int, int)                {}
func (n *NoOpLogger) LogSummary(models.RunSummary)        {}

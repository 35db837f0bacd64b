package executor

// graceful.go provides nil-safe logging helpers for optional loggers.
// The pattern: report what happened, never fail execution because of logging.

// WarnLogger is the minimal logger used for non-fatal warnings.
type WarnLogger interface {
	LogWarn(message string)
}

// GracefulWarn logs a warning if logger is non-nil.
//
// Usage:
//
//	if len(scan.Duplicates) > 0 {
//	    GracefulWarn(log, "dropped duplicate --dirs entries: "+strings.Join(scan.Duplicates, ", "))
//	}
func GracefulWarn(logger WarnLogger, message string) {
	if logger != nil {
		logger.LogWarn(message)
	}
}

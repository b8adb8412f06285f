package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// OpenLogFile opens (or creates) today's log file under <dir>/.<appName>/logs.
// An empty dir means the user's home directory.
func OpenLogFile(dir, appName string, now time.Time) (*os.File, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = homeDir
	}

	logsDir := filepath.Join(dir, "."+appName, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	logFileName := fmt.Sprintf("%s-%s.log", appName, now.Format("2006-01-02"))
	logFile, err := os.OpenFile(filepath.Join(logsDir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return logFile, nil
}

// SetupFileLogger tees log output to w and to today's log file.
// The returned file must be closed by the caller.
func SetupFileLogger(w io.Writer, level LogLevel, appName string) (io.Closer, error) {
	logFile, err := OpenLogFile("", appName, time.Now())
	if err != nil {
		return nil, err
	}

	SetupLogger(io.MultiWriter(w, logFile), level)
	return logFile, nil
}

// Package logging provides file-based logging for habit.
// Entries go to a global log (<dataDir>/logs/habit.log) and, when they concern
// a task, to that task's log (<dataDir>/logs/task-N.log).
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/habit/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes leveled entries to log files under the data directory.
// Fields are ordered to minimize memory padding.
type Logger struct {
	clock      domain.Clock
	mirror     *slog.Logger
	globalFile *os.File
	taskFiles  map[int]*os.File
	dataDir    string
	mu         sync.Mutex
	level      slog.Level
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock sets the clock used for entry timestamps.
func WithClock(clock domain.Clock) Option {
	return func(l *Logger) { l.clock = clock }
}

// WithMirror forwards entries at warn level and above to an slog.Logger,
// typically the process logger writing to stderr.
func WithMirror(mirror *slog.Logger) Option {
	return func(l *Logger) { l.mirror = mirror }
}

// New creates a new Logger that writes to the data directory's logs folder.
// If dataDir is empty, logging is disabled.
func New(dataDir string, level slog.Level, opts ...Option) *Logger {
	l := &Logger{
		dataDir:   dataDir,
		level:     level,
		clock:     domain.RealClock{},
		taskFiles: make(map[int]*os.File),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ParseLevel parses a log level string into slog.Level.
// Unknown values fall back to info.
func ParseLevel(levelStr string) slog.Level {
	level, err := LookupLevel(levelStr)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// LookupLevel is like ParseLevel but reports unknown values.
func LookupLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", levelStr)
}

// NewProcessLogger returns the slog.Logger used for process-level messages
// such as the HTTP server and the rollover scheduler.
func NewProcessLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openAppend opens path for appending, creating the logs directory first.
func (l *Logger) openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// globalWriter returns the global log file. Caller must hold l.mu.
func (l *Logger) globalWriter() (*os.File, error) {
	if l.globalFile != nil {
		return l.globalFile, nil
	}
	f, err := l.openAppend(domain.GlobalLogPath(l.dataDir))
	if err != nil {
		return nil, err
	}
	l.globalFile = f
	return f, nil
}

// taskWriter returns the task's log file. Caller must hold l.mu.
func (l *Logger) taskWriter(taskID int) (*os.File, error) {
	if f, ok := l.taskFiles[taskID]; ok {
		return f, nil
	}
	f, err := l.openAppend(domain.TaskLogPath(l.dataDir, taskID))
	if err != nil {
		return nil, err
	}
	l.taskFiles[taskID] = f
	return f, nil
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			lastErr = err
		}
		l.globalFile = nil
	}
	for id, f := range l.taskFiles {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.taskFiles, id)
	}
	return lastErr
}

// formatLog formats a log entry.
// Format: [2024-01-04 09:32:51] [INFO] [task-1] [rollover] message
func formatLog(t time.Time, level slog.Level, taskID int, category, msg string) string {
	taskStr := "global"
	if taskID > 0 {
		taskStr = fmt.Sprintf("task-%d", taskID)
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelName(level),
		taskStr,
		category,
		msg,
	)
}

func levelName(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// log writes an entry to the global log and, for taskID > 0, to the task log.
func (l *Logger) log(level slog.Level, taskID int, category, msg string) {
	if level < l.level {
		return
	}

	if l.mirror != nil && level >= slog.LevelWarn {
		attrs := []slog.Attr{slog.String("category", category)}
		if taskID > 0 {
			attrs = append(attrs, slog.Int("task", taskID))
		}
		l.mirror.LogAttrs(context.Background(), level, msg, attrs...)
	}

	if l.dataDir == "" {
		return
	}

	entry := formatLog(l.clock.Now(), level, taskID, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gf, err := l.globalWriter(); err == nil {
		_, _ = io.WriteString(gf, entry)
	}
	if taskID > 0 {
		if tf, err := l.taskWriter(taskID); err == nil {
			_, _ = io.WriteString(tf, entry)
		}
	}
}

// Info logs an info message.
func (l *Logger) Info(taskID int, category, msg string) {
	l.log(slog.LevelInfo, taskID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(taskID int, category, msg string) {
	l.log(slog.LevelDebug, taskID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskID int, category, msg string) {
	l.log(slog.LevelWarn, taskID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskID int, category, msg string) {
	l.log(slog.LevelError, taskID, category, msg)
}

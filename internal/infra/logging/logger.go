// Package logging provides file-based logging for relay.
// It outputs logs to both a global log file (<data>/logs/relay.log)
// and conversation-specific log files (<data>/logs/chat-<id>.log).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ProjectAI00/relay/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger wraps slog levels with file-based output support.
// Fields are ordered to minimize memory padding.
type Logger struct {
	globalFile *os.File
	chatFiles  map[string]*os.File
	dataDir    string
	mu         sync.Mutex
	level      slog.Level
}

// New creates a new Logger that writes under the data directory.
// If dataDir is empty, logging is disabled (returns a no-op logger).
func New(dataDir string, level slog.Level) *Logger {
	return &Logger{
		dataDir:   dataDir,
		level:     level,
		chatFiles: make(map[string]*os.File),
	}
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) ensureLogsDir() error {
	logsDir := filepath.Join(l.dataDir, "logs")
	return os.MkdirAll(logsDir, 0o750)
}

func (l *Logger) ensureGlobalFile() (*os.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.globalFile != nil {
		return l.globalFile, nil
	}

	if err := l.ensureLogsDir(); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	path := domain.GlobalLogPath(l.dataDir)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open global log file: %w", err)
	}
	l.globalFile = f
	return f, nil
}

func (l *Logger) ensureChatFile(conversationID string) (*os.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.chatFiles[conversationID]; ok {
		return f, nil
	}

	if err := l.ensureLogsDir(); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	path := domain.ConversationLogPath(l.dataDir, conversationID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open conversation log file: %w", err)
	}
	l.chatFiles[conversationID] = f
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
	for id, f := range l.chatFiles {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.chatFiles, id)
	}
	return lastErr
}

// formatLog formats a log entry.
// Format: [2025-12-30 09:32:51] [INFO] [chat-abc] [category] message
func formatLog(t time.Time, level slog.Level, conversationID, category, msg string) string {
	scope := "global"
	if conversationID != "" {
		scope = "chat-" + conversationID
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		scope,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// log writes a log entry to the global file and, when a conversation id is
// given and safe to use in a file name, to the conversation's file as well.
func (l *Logger) log(level slog.Level, conversationID, category, msg string) {
	if l.dataDir == "" {
		return // Logging disabled
	}

	if level < l.level {
		return
	}

	now := time.Now()
	entry := formatLog(now, level, conversationID, category, msg)

	if gf, err := l.ensureGlobalFile(); err == nil {
		_, _ = io.WriteString(gf, entry)
	}

	if conversationID != "" && domain.ValidConversationID(conversationID) {
		if cf, err := l.ensureChatFile(conversationID); err == nil {
			_, _ = io.WriteString(cf, entry)
		}
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(conversationID, category, msg string) {
	l.log(slog.LevelDebug, conversationID, category, msg)
}

// Info logs an info message.
func (l *Logger) Info(conversationID, category, msg string) {
	l.log(slog.LevelInfo, conversationID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(conversationID, category, msg string) {
	l.log(slog.LevelWarn, conversationID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(conversationID, category, msg string) {
	l.log(slog.LevelError, conversationID, category, msg)
}

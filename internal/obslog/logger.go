// Package obslog is the mascara engine's own logger: a leveled Logger
// interface, a FileLogger that keeps a ring buffer of recent entries in
// memory alongside a size-rotated file sink, and a NullLogger for
// embedders that want silence.
package obslog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log entry.
type Level int

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelDebug:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// ParseLevel maps a config string ("error", "info", "debug") to a Level,
// defaulting to LevelInfo for anything else.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "error":
		return LevelError
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Entry is one record kept in a FileLogger's in-memory ring buffer.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
}

// Logger is what the dispatcher, Server, and Client log through: the
// engine's own recovery events (unhandled messages, frame decode errors,
// failed response or stream writes, a panic in a handler's completion),
// never the user's application data.
type Logger interface {
	Error(format string, args ...interface{})
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
	GetLogs(minLevel Level) string
}

// FileLogger writes entries at or below fileLevel to a size-rotated file
// and keeps every entry (regardless of level) in a bounded in-memory ring
// buffer for GetLogs.
type FileLogger struct {
	file      *os.File
	fileLevel Level
	mu        sync.Mutex
	filePath  string

	memoryLogs []Entry
	maxMemory  int
}

// NewFileLogger opens (creating and rotating as needed) a log file at
// logPath, writing entries at or below fileLevel.
func NewFileLogger(logPath string, fileLevel Level) (*FileLogger, error) {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("obslog: create log directory: %w", err)
	}

	const maxSize = 1024 * 1024 // 1MB
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxSize {
		os.Remove(logPath)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("obslog: open log file: %w", err)
	}

	return &FileLogger{
		file:       file,
		fileLevel:  fileLevel,
		filePath:   logPath,
		memoryLogs: make([]Entry, 0, 10000),
		maxMemory:  10000,
	}, nil
}

func (l *FileLogger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{Timestamp: time.Now(), Level: level, Message: fmt.Sprintf(format, args...)}

	if len(l.memoryLogs) >= l.maxMemory {
		l.memoryLogs = l.memoryLogs[1:]
	}
	l.memoryLogs = append(l.memoryLogs, entry)

	if level <= l.fileLevel {
		formatted := fmt.Sprintf("[%s] [%s] %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05.000"), level, entry.Message)
		l.file.WriteString(formatted)
	}
}

func (l *FileLogger) Error(format string, args ...interface{}) { l.log(LevelError, format, args...) }
func (l *FileLogger) Info(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *FileLogger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }

// Close closes the underlying log file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// GetLogs renders every buffered entry at or below minLevel, oldest first.
func (l *FileLogger) GetLogs(minLevel Level) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lines []string
	for _, entry := range l.memoryLogs {
		if entry.Level <= minLevel {
			lines = append(lines, fmt.Sprintf("[%s] [%s] %s",
				entry.Timestamp.Format("2006-01-02 15:04:05.000"), entry.Level, entry.Message))
		}
	}
	return strings.Join(lines, "\n")
}

// NullLogger discards everything; the zero value is ready to use.
type NullLogger struct{}

func (NullLogger) Error(format string, args ...interface{}) {}
func (NullLogger) Info(format string, args ...interface{})  {}
func (NullLogger) Debug(format string, args ...interface{}) {}
func (NullLogger) GetLogs(minLevel Level) string             { return "" }

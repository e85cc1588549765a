// Package logging provides structured logging with file output and rotation.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sevanw/episodic/internal/paths"
)

// Level represents a logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field (shorthand for structured logging)
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration
type Config struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	File       string `mapstructure:"file"`        // log file path (empty = ~/.config/episodic/logs/episodic.log)
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // max size before rotation (default: 10)
	MaxBackups int    `mapstructure:"max_backups"` // number of backups to keep (default: 5)
}

// DefaultConfig returns default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		File:       "",
		MaxSizeMB:  10,
		MaxBackups: 5,
	}
}

// Logger provides structured logging with file output
type Logger struct {
	level      Level
	mu         sync.Mutex
	file       *os.File
	filePath   string
	maxSize    int64 // in bytes
	maxBackups int
	writers    []io.Writer
	quiet      bool
}

// New creates a new Logger with the given configuration
func New(cfg Config) (*Logger, error) {
	l := &Logger{
		level:      ParseLevel(cfg.Level),
		maxSize:    int64(cfg.MaxSizeMB) * 1024 * 1024,
		maxBackups: cfg.MaxBackups,
		writers:    []io.Writer{os.Stderr},
	}

	if l.maxSize == 0 {
		l.maxSize = 10 * 1024 * 1024
	}
	if l.maxBackups == 0 {
		l.maxBackups = 5
	}

	if cfg.File == "" {
		logsDir, err := paths.LogsDir()
		if err != nil {
			return nil, fmt.Errorf("unable to resolve logs dir: %w", err)
		}
		cfg.File = filepath.Join(logsDir, "episodic.log")
	}

	// Expand ~ in file path
	if strings.HasPrefix(cfg.File, "~") {
		home, err := paths.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("unable to get home dir: %w", err)
		}
		cfg.File = filepath.Join(home, cfg.File[1:])
	}

	l.filePath = cfg.File

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}

	if err := l.openFile(); err != nil {
		return nil, err
	}

	return l, nil
}

// SetQuiet drops the terminal writer; log lines go to the file only. Used
// while an interactive view owns the terminal.
func (l *Logger) SetQuiet(quiet bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quiet = quiet
	l.resetWriters()
}

func (l *Logger) resetWriters() {
	l.writers = l.writers[:0]
	if !l.quiet {
		l.writers = append(l.writers, os.Stderr)
	}
	if l.file != nil {
		l.writers = append(l.writers, l.file)
	}
}

// openFile opens or creates the log file
func (l *Logger) openFile() error {
	if l.filePath == "" {
		return nil
	}

	f, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}

	l.file = f
	l.resetWriters()
	return nil
}

// checkRotation checks if the log file needs rotation and performs it
func (l *Logger) checkRotation() error {
	if l.file == nil {
		return nil
	}

	info, err := l.file.Stat()
	if err != nil {
		return err
	}

	if info.Size() < l.maxSize {
		return nil
	}

	return l.rotate()
}

// rotate performs log rotation
func (l *Logger) rotate() error {
	if l.file != nil {
		l.file.Close()
	}

	if err := rotateFiles(l.filePath, l.maxBackups); err != nil {
		return err
	}

	return l.openFile()
}

// log writes a log entry
func (l *Logger) log(level Level, component, msg string, err error, fields ...Field) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if rotErr := l.checkRotation(); rotErr != nil {
		fmt.Fprintf(os.Stderr, "log rotation error: %v\n", rotErr)
	}

	timestamp := time.Now().Format(time.RFC3339)
	var sb strings.Builder

	sb.WriteString(timestamp)
	sb.WriteString(" [")
	sb.WriteString(level.String())
	sb.WriteString("] [")
	sb.WriteString(component)
	sb.WriteString("] ")
	sb.WriteString(msg)

	if err != nil {
		sb.WriteString(" | error=")
		sb.WriteString(err.Error())
	}

	for _, f := range fields {
		sb.WriteString(" | ")
		sb.WriteString(f.Key)
		sb.WriteString("=")
		sb.WriteString(fmt.Sprintf("%v", f.Value))
	}

	sb.WriteString("\n")
	line := sb.String()

	for _, w := range l.writers {
		w.Write([]byte(line))
	}
}

// Debug logs a debug message
func (l *Logger) Debug(component, msg string, fields ...Field) {
	l.log(LevelDebug, component, msg, nil, fields...)
}

// Info logs an info message
func (l *Logger) Info(component, msg string, fields ...Field) {
	l.log(LevelInfo, component, msg, nil, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(component, msg string, fields ...Field) {
	l.log(LevelWarn, component, msg, nil, fields...)
}

// Error logs an error message with an error
func (l *Logger) Error(component, msg string, err error, fields ...Field) {
	l.log(LevelError, component, msg, err, fields...)
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	return l.level
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// FilePath returns the log file path
func (l *Logger) FilePath() string {
	return l.filePath
}

// Nop returns a no-operation logger that discards all output
func Nop() *Logger {
	return &Logger{
		level:   LevelError + 1,
		writers: []io.Writer{},
	}
}

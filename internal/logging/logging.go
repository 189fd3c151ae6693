// Package logging configures process-wide logging: leveled output on top of
// the standard log package, with optional hourly file rotation.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	filePrefix = "embedd-"
	fileSuffix = ".log"
	timeFormat = "2006-01-02-15" // hourly rotation
	maxAgeDays = 30
)

// Level is a log verbosity threshold.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var level atomic.Int32

func init() {
	level.Store(int32(LevelInfo))
}

// ParseLevel maps a LOG_LEVEL string to a Level. Unknown values fall back
// to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO", "":
		return LevelInfo
	case "WARNING", "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel sets the process-wide log threshold.
func SetLevel(l Level) {
	level.Store(int32(l))
}

// Debugf logs at DEBUG level.
func Debugf(format string, args ...any) { logf(LevelDebug, "DEBUG", format, args...) }

// Infof logs at INFO level.
func Infof(format string, args ...any) { logf(LevelInfo, "INFO", format, args...) }

// Warnf logs at WARNING level.
func Warnf(format string, args ...any) { logf(LevelWarn, "WARN", format, args...) }

// Errorf logs at ERROR level.
func Errorf(format string, args ...any) { logf(LevelError, "ERROR", format, args...) }

func logf(l Level, tag, format string, args ...any) {
	if int32(l) < level.Load() {
		return
	}
	log.Printf(tag+" "+format, args...)
}

// HourlyLogWriter implements io.Writer with hourly log file rotation.
type HourlyLogWriter struct {
	mu      sync.Mutex
	dir     string
	current *os.File
	hour    string // current hour key (YYYY-MM-DD-HH)
}

// NewHourlyLogWriter creates a new hourly-rotating log writer.
func NewHourlyLogWriter(dir string) (*HourlyLogWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
	}
	return &HourlyLogWriter{dir: dir}, nil
}

// Write implements io.Writer. It rotates the log file when the hour changes.
func (w *HourlyLogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := time.Now().Format(timeFormat)
	if hour != w.hour {
		if err := w.rotate(hour); err != nil {
			return 0, err
		}
	}

	return w.current.Write(p)
}

// Close closes the current log file.
func (w *HourlyLogWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current != nil {
		return w.current.Close()
	}
	return nil
}

func (w *HourlyLogWriter) rotate(hour string) error {
	if w.current != nil {
		w.current.Close()
	}

	filename := filepath.Join(w.dir, filePrefix+hour+fileSuffix)
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", filename, err)
	}

	w.current = f
	w.hour = hour

	// Clean up old logs on rotation.
	go w.cleanup()

	return nil
}

func (w *HourlyLogWriter) cleanup() {
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		hourStr := strings.TrimPrefix(name, filePrefix)
		hourStr = strings.TrimSuffix(hourStr, fileSuffix)
		t, err := time.Parse(timeFormat, hourStr)
		if err != nil {
			continue
		}
		if t.Before(cutoff) {
			os.Remove(filepath.Join(w.dir, name))
		}
	}
}

// Init sets up process logging. When logsDir is non-empty, output is written
// to hourly-rotated files in addition to stderr so early startup errors stay
// visible.
func Init(levelStr, logsDir string) error {
	SetLevel(ParseLevel(levelStr))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if logsDir == "" {
		log.SetOutput(os.Stderr)
		return nil
	}

	w, err := NewHourlyLogWriter(logsDir)
	if err != nil {
		return err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, w))
	return nil
}

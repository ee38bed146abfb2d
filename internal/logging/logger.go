// Package logging is the human-readable application log. Structured events
// go through internal/otel instead.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// Version is reported in the startup line.
const Version = "0.3.0"

// keepDays is how many dated log files survive Init.
const keepDays = 7

var (
	// Logger is nil until Init or InitWriter; the package helpers are no-ops
	// before then.
	Logger *log.Logger

	file *os.File
)

// Init writes the log to dir/logs/rickdex-<date>.log and removes all but the
// newest keepDays files. The TUI owns the terminal, so nothing goes to stderr.
func Init(dir string) error {
	logDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	name := filepath.Join(logDir, "rickdex-"+time.Now().Format("2006-01-02")+".log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	file = f

	InitWriter(f, log.DebugLevel)
	if removed := prune(logDir, keepDays); removed > 0 {
		Logger.Debug("pruned old logs", "count", removed)
	}
	Logger.Info("rickdex started", "version", Version)
	return nil
}

// InitWriter sends the log to w at level. The CLI uses stderr.
func InitWriter(w io.Writer, level log.Level) {
	Logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
}

// prune deletes dated log files in dir beyond the newest keep and returns how
// many it removed. The date in the name sorts lexically.
func prune(dir string, keep int) int {
	names, err := filepath.Glob(filepath.Join(dir, "rickdex-*.log"))
	if err != nil || len(names) <= keep {
		return 0
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	removed := 0
	for _, name := range names[keep:] {
		if err := os.Remove(name); err == nil {
			removed++
		}
	}
	return removed
}

// Close writes a shutdown line and closes the log file, if any.
func Close() {
	if Logger != nil {
		Logger.Info("rickdex shutting down")
	}
	if file != nil {
		file.Close()
		file = nil
	}
}

func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

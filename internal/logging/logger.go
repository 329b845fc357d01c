// Package logging provides leveled, optionally colored console logging with an
// optional rotating file sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"simlive/internal/config"
)

const (
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	blue    = "\033[34m"
	magenta = "\033[1;35m"
	cyan    = "\033[1;36m"
	reset   = "\033[0m"
)

const rule = "========================================"

// Logger writes leveled lines to stdout (errors to stderr) and, when
// configured, a plain copy to a rotating log file.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	file   io.WriteCloser
	color  bool
	now    func() time.Time
}

// New builds a Logger from the log section of the config.
func New(cfg config.Log) *Logger {
	l := &Logger{
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
	}
	switch cfg.Color {
	case config.ColorAlways:
		l.color = true
	case config.ColorAuto:
		l.color = isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "" && strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
	if cfg.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}
	return l
}

// NewWriter returns an uncolored Logger writing everything to w.
func NewWriter(w io.Writer) *Logger {
	return &Logger{out: w, errOut: w, now: time.Now}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) line(level, color, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.out
	if level == "ERROR" {
		out = l.errOut
	}
	if l.color {
		_, _ = fmt.Fprintf(out, "%s[%s]%s %s\n", color, level, reset, text)
	} else {
		_, _ = fmt.Fprintf(out, "[%s] %s\n", level, text)
	}
	if l.file != nil {
		_, _ = fmt.Fprintf(l.file, "%s [%s] %s\n", l.now().Format("2006-01-02 15:04:05"), level, text)
	}
}

// Section prints a banner that separates the phases of a run.
func (l *Logger) Section(format string, args ...any) {
	title := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.color {
		_, _ = fmt.Fprintf(l.out, "%s%s\n%s%s\n%s%s%s\n", magenta, rule, cyan, title, magenta, rule, reset)
	} else {
		_, _ = fmt.Fprintf(l.out, "%s\n%s\n%s\n", rule, title, rule)
	}
	if l.file != nil {
		_, _ = fmt.Fprintf(l.file, "%s === %s ===\n", l.now().Format("2006-01-02 15:04:05"), title)
	}
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...any) {
	l.line("INFO", green, fmt.Sprintf(format, args...))
}

// Warn logs at WARNING level.
func (l *Logger) Warn(format string, args ...any) {
	l.line("WARNING", yellow, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level to stderr.
func (l *Logger) Error(format string, args ...any) {
	l.line("ERROR", red, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level.
func (l *Logger) Success(format string, args ...any) {
	l.line("SUCCESS", blue, fmt.Sprintf(format, args...))
}

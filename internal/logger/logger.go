package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
)

const appName = "caption-studio"

// Options configures the logger backend.
type Options struct {
	Level  string
	Format string // "text" or "json"
	Output io.Writer
}

type implLogger struct {
	logger hclog.Logger
	level  hclog.Level
}

// New creates a new text Logger writing to stdout
func New(level string) Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions creates a Logger with explicit format and destination.
func NewWithOptions(opts Options) Logger {
	level := parseLevel(opts.Level)
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	jsonFormat := strings.EqualFold(opts.Format, "json")

	return &implLogger{
		logger: hclog.New(&hclog.LoggerOptions{
			Name:       appName,
			Level:      level,
			Output:     output,
			JSONFormat: jsonFormat,
			Color:      colorMode(output, jsonFormat),
		}),
		level: level,
	}
}

// colorMode enables colour only for text output going to a terminal.
func colorMode(w io.Writer, jsonFormat bool) hclog.ColorOption {
	if jsonFormat {
		return hclog.ColorOff
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return hclog.ColorOff
	}
	return hclog.AutoColor
}

// Discard returns a Logger that drops everything. Used by tests.
func Discard() Logger {
	return &implLogger{
		logger: hclog.NewNullLogger(),
		level:  hclog.Off,
	}
}

func parseLevel(level string) hclog.Level {
	parsed := hclog.LevelFromString(strings.ToLower(strings.TrimSpace(level)))
	if parsed == hclog.NoLevel {
		return hclog.Info
	}
	return parsed
}

func (l *implLogger) shouldLog(level string) bool {
	target := hclog.LevelFromString(level)
	if target == hclog.NoLevel {
		return true
	}
	return target >= l.level
}

func (l *implLogger) Named(name string) Logger {
	return &implLogger{
		logger: l.logger.Named(name),
		level:  l.level,
	}
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("debug") {
		l.logger.Debug(format(msg, args))
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("info") {
		l.logger.Info(format(msg, args))
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("warn") {
		l.logger.Warn(format(msg, args))
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("error") {
		l.logger.Error(format(msg, args))
	}
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

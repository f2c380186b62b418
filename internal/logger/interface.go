package logger

import "context"

// Logger is the printf-style logging contract used across the pipeline.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})

	// Named returns a child logger tagged with a component name.
	Named(name string) Logger
}

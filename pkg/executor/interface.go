// Package executor runs external tools (ffmpeg, whisper.cpp, espeak-ng)
// and reports failures with their exit code and stderr.
package executor

import "context"

// Executor runs a command to completion and returns its stdout. A non-zero
// exit is reported as *ExitError.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// ExecuteInDir runs the command with dir as its working directory so
	// relative arguments resolve inside it.
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
}

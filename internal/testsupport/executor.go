package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// Call records one command passed to a FakeExecutor.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// Arg returns the argument following flag, or "" when absent.
func (c Call) Arg(flag string) string {
	for i := 0; i < len(c.Args)-1; i++ {
		if c.Args[i] == flag {
			return c.Args[i+1]
		}
	}
	return ""
}

// Last returns the final argument, which for ffmpeg is the output path.
func (c Call) Last() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[len(c.Args)-1]
}

// FakeExecutor records commands and delegates results to Handler.
// A nil Handler makes every command succeed with empty output.
type FakeExecutor struct {
	Handler func(call Call) (string, error)

	mu    sync.Mutex
	calls []Call
}

func (f *FakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.ExecuteInDir(ctx, "", name, args...)
}

func (f *FakeExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	call := Call{Dir: dir, Name: name, Args: append([]string(nil), args...)}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	handler := f.Handler
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if handler == nil {
		return "", nil
	}
	return handler(call)
}

// Calls returns a copy of all recorded calls.
func (f *FakeExecutor) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded calls for one binary.
func (f *FakeExecutor) CallsTo(name string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// TouchOutput creates the file named by the call's last argument,
// resolving relative paths against the call directory.
func TouchOutput(call Call, content string) error {
	path := call.Last()
	if !filepath.IsAbs(path) && call.Dir != "" {
		path = filepath.Join(call.Dir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// WriteFile creates path with content, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

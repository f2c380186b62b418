package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExecute(t *testing.T) {
	exec := New()
	out, err := exec.Execute(context.Background(), "sh", "-c", "printf hello")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "hello" {
		t.Errorf("Execute() = %q, want %q", out, "hello")
	}
}

func TestExecuteExitError(t *testing.T) {
	exec := New()
	_, err := exec.Execute(context.Background(), "sh", "-c", "echo \"No such filter: 'subtitles'\" >&2; exit 1")
	if err == nil {
		t.Fatal("Execute() expected error")
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error %T is not *ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("Code = %d, want 1", exitErr.Code)
	}
	if exitErr.Stderr != "No such filter: 'subtitles'" {
		t.Errorf("Stderr = %q", exitErr.Stderr)
	}
	if !strings.Contains(err.Error(), "exit 1") {
		t.Errorf("Error() = %q, want exit code", err.Error())
	}
}

func TestExecuteMissingBinary(t *testing.T) {
	exec := New()
	_, err := exec.Execute(context.Background(), "definitely-not-a-real-binary-xyz")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error %T is not *ExitError", err)
	}
	if exitErr.Code != -1 {
		t.Errorf("Code = %d, want -1", exitErr.Code)
	}
}

func TestExecuteInDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	exec := New()
	out, err := exec.ExecuteInDir(context.Background(), dir, "sh", "-c", "ls")
	if err != nil {
		t.Fatalf("ExecuteInDir() error = %v", err)
	}
	if !strings.Contains(out, "marker.txt") {
		t.Errorf("ExecuteInDir() output = %q, want marker.txt listed", out)
	}
}

package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyentantai21042004/caption-studio/internal/config"
)

// NewConfig produces a validated config whose directories live under a
// per-test temp dir. All directories from Config.Dirs exist on return.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := &config.Config{
		Whisper: config.WhisperConfig{
			ModelPath:  filepath.Join(base, "models", "ggml-small.bin"),
			BinaryPath: "whisper-cli",
			Language:   "en",
			Threads:    2,
		},
		Paths: config.PathsConfig{
			Input:    filepath.Join(base, "input"),
			Output:   filepath.Join(base, "output"),
			Archived: filepath.Join(base, "archived"),
			Temp:     filepath.Join(base, "temp"),
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate test config: %v", err)
	}
	for _, dir := range cfg.Dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return cfg
}

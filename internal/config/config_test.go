package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		Whisper: WhisperConfig{
			ModelPath:  "models/test.bin",
			BinaryPath: "./whisper",
			Language:   "en",
		},
		Paths: PathsConfig{
			Input:  "data/input",
			Output: "data/output",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			modify:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing model path",
			modify:  func(c *Config) { c.Whisper.ModelPath = "" },
			wantErr: true,
		},
		{
			name:    "missing paths",
			modify:  func(c *Config) { c.Paths = PathsConfig{} },
			wantErr: true,
		},
		{
			name:    "auto language",
			modify:  func(c *Config) { c.Whisper.Language = "auto" },
			wantErr: false,
		},
		{
			name:    "invalid language",
			modify:  func(c *Config) { c.Whisper.Language = "not a language" },
			wantErr: true,
		},
		{
			name:    "invalid default task",
			modify:  func(c *Config) { c.Whisper.DefaultTask = "summarize" },
			wantErr: true,
		},
		{
			name:    "storage without credentials",
			modify:  func(c *Config) { c.Storage = StorageConfig{Enabled: true, Endpoint: "localhost:9000", Bucket: "captions"} },
			wantErr: true,
		},
		{
			name: "storage with credentials",
			modify: func(c *Config) {
				c.Storage = StorageConfig{Enabled: true, Endpoint: "localhost:9000", Bucket: "captions", AccessKey: "a", SecretKey: "s"}
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Whisper.Language = "en-US"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	if cfg.Whisper.Language != "en" {
		t.Errorf("Language = %q, want base tag en", cfg.Whisper.Language)
	}
	if cfg.FFmpeg.BinaryPath != "ffmpeg" || cfg.FFmpeg.AudioCodec != "copy" {
		t.Errorf("ffmpeg defaults = %+v", cfg.FFmpeg)
	}
	if cfg.Whisper.DefaultTask != "transcribe" {
		t.Errorf("DefaultTask = %q", cfg.Whisper.DefaultTask)
	}
	if cfg.Performance.MaxConcurrent != 2 || cfg.Whisper.Threads != 8 {
		t.Errorf("performance defaults = %+v, threads %d", cfg.Performance, cfg.Whisper.Threads)
	}
	if cfg.Paths.Database != filepath.Join("data/output", "jobs.db") {
		t.Errorf("Database = %q", cfg.Paths.Database)
	}
	if cfg.Slideshow.Width != 1280 || cfg.Slideshow.Height != 720 || cfg.Slideshow.FPS != 24 {
		t.Errorf("slideshow defaults = %+v", cfg.Slideshow)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
whisper:
  model_path: "models/test.bin"
  binary_path: "./whisper"
  language: "en"
  prompt: "test"

ffmpeg:
  video_bitrate: "5M"
  audio_codec: "copy"
  encoder: "h264_videotoolbox"

paths:
  input: "data/input"
  output: "data/output"

logging:
  level: "info"
  format: "text"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMINI_API_KEYS=key-one, key-two\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvGeminiKeys, "")
	os.Unsetenv(EnvGeminiKeys)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Whisper.ModelPath != "models/test.bin" {
		t.Errorf("ModelPath = %v, want %v", cfg.Whisper.ModelPath, "models/test.bin")
	}
	if cfg.Paths.Input != "data/input" {
		t.Errorf("Input = %v, want %v", cfg.Paths.Input, "data/input")
	}
	if cfg.FFmpeg.Encoder != "h264_videotoolbox" {
		t.Errorf("Encoder = %v", cfg.FFmpeg.Encoder)
	}
	if len(cfg.Gemini.APIKeys) != 2 || cfg.Gemini.APIKeys[1] != "key-two" {
		t.Errorf("APIKeys = %v", cfg.Gemini.APIKeys)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestResolveBinaries(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	cfg.FFmpeg.BinaryPath = bin
	cfg.Whisper.BinaryPath = bin
	cfg.Speech.BinaryPath = "sh"

	before := os.Getenv("PATH")
	if err := cfg.ResolveBinaries(); err != nil {
		t.Fatalf("ResolveBinaries() error = %v", err)
	}
	if os.Getenv("PATH") != before {
		t.Error("ResolveBinaries() changed PATH")
	}
	if !filepath.IsAbs(cfg.Speech.BinaryPath) {
		t.Errorf("Speech.BinaryPath = %q, want absolute", cfg.Speech.BinaryPath)
	}

	cfg.FFmpeg.BinaryPath = filepath.Join(dir, "missing", "ffmpeg")
	if err := cfg.ResolveBinaries(); err == nil {
		t.Error("ResolveBinaries() should fail for a missing binary")
	}
}

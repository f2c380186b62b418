package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

type Config struct {
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	Speech      SpeechConfig      `yaml:"speech"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Server      ServerConfig      `yaml:"server"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Storage     StorageConfig     `yaml:"storage"`
	Slideshow   SlideshowConfig   `yaml:"slideshow"`
}

type FFmpegConfig struct {
	BinaryPath   string `yaml:"binary_path"`
	VideoBitrate string `yaml:"video_bitrate"`
	AudioCodec   string `yaml:"audio_codec"`
	Encoder      string `yaml:"encoder"`
	Preset       string `yaml:"preset"`
}

type WhisperConfig struct {
	ModelPath   string `yaml:"model_path"`
	BinaryPath  string `yaml:"binary_path"`
	Language    string `yaml:"language"`
	Prompt      string `yaml:"prompt"`
	Threads     int    `yaml:"threads"`
	DefaultTask string `yaml:"default_task"`
}

type SpeechConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Voice      string `yaml:"voice"`
	Rate       int    `yaml:"rate"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
	Temp     string `yaml:"temp"`
	Database string `yaml:"database"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
	SettleDelayMS int `yaml:"settle_delay_ms"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr"`
	MaxUploadMB   int64  `yaml:"max_upload_mb"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"-"`
}

type StorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

type SlideshowConfig struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	LineDuration int `yaml:"line_duration"`
	FPS          int `yaml:"fps"`
}

func (c *Config) Validate() error {
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}
	if c.Whisper.Language == "" {
		return fmt.Errorf("whisper.language is required")
	}
	if c.Whisper.Language != "auto" {
		tag, err := language.Parse(c.Whisper.Language)
		if err != nil {
			return fmt.Errorf("whisper.language %q: %w", c.Whisper.Language, err)
		}
		base, _ := tag.Base()
		c.Whisper.Language = base.String()
	}
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	switch c.Whisper.DefaultTask {
	case "":
		c.Whisper.DefaultTask = "transcribe"
	case "transcribe", "translate":
	default:
		return fmt.Errorf("whisper.default_task must be transcribe or translate, got %q", c.Whisper.DefaultTask)
	}
	if c.Storage.Enabled {
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			return fmt.Errorf("storage.endpoint and storage.bucket are required when storage is enabled")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when storage is enabled")
		}
	}

	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.Encoder == "" {
		c.FFmpeg.Encoder = "libx264"
	}
	if c.FFmpeg.AudioCodec == "" {
		c.FFmpeg.AudioCodec = "copy"
	}
	if c.FFmpeg.Preset == "" {
		c.FFmpeg.Preset = "medium"
	}
	if c.Speech.BinaryPath == "" {
		c.Speech.BinaryPath = "espeak-ng"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Paths.Database == "" {
		c.Paths.Database = filepath.Join(c.Paths.Output, "jobs.db")
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Performance.SettleDelayMS == 0 {
		c.Performance.SettleDelayMS = 500
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8501"
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 2048
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
	if c.Slideshow.Width == 0 {
		c.Slideshow.Width = 1280
	}
	if c.Slideshow.Height == 0 {
		c.Slideshow.Height = 720
	}
	if c.Slideshow.LineDuration == 0 {
		c.Slideshow.LineDuration = 3
	}
	if c.Slideshow.FPS == 0 {
		c.Slideshow.FPS = 24
	}

	return nil
}

// ResolveBinaries replaces bare executable names with absolute paths found
// on PATH. Paths containing a separator are only checked for existence.
func (c *Config) ResolveBinaries() error {
	targets := []struct {
		key  string
		path *string
	}{
		{"ffmpeg.binary_path", &c.FFmpeg.BinaryPath},
		{"whisper.binary_path", &c.Whisper.BinaryPath},
		{"speech.binary_path", &c.Speech.BinaryPath},
	}

	for _, target := range targets {
		resolved, err := resolveBinary(*target.path)
		if err != nil {
			return fmt.Errorf("%s: %w", target.key, err)
		}
		*target.path = resolved
	}
	return nil
}

func resolveBinary(path string) (string, error) {
	if strings.ContainsRune(path, os.PathSeparator) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(abs); err != nil {
			return "", err
		}
		return abs, nil
	}
	return exec.LookPath(path)
}

// CaptionsDir holds generated subtitle documents.
func (c *Config) CaptionsDir() string {
	return filepath.Join(c.Paths.Output, "captions")
}

// VideosDir holds videos with burned-in subtitles.
func (c *Config) VideosDir() string {
	return filepath.Join(c.Paths.Output, "videos")
}

// GeneratedDir holds artifacts produced by the file generator.
func (c *Config) GeneratedDir() string {
	return filepath.Join(c.Paths.Output, "generated")
}

// Dirs lists the directories the application writes into.
func (c *Config) Dirs() []string {
	return []string{
		c.Paths.Input,
		c.Paths.Output,
		c.CaptionsDir(),
		c.VideosDir(),
		c.GeneratedDir(),
		c.Paths.Archived,
		c.Paths.Temp,
		filepath.Dir(c.Paths.Database),
	}
}

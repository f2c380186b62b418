package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables holding secrets that never live in config.yaml.
const (
	EnvGeminiKeys  = "GEMINI_API_KEYS"
	EnvMinioAccess = "MINIO_ACCESS_KEY"
	EnvMinioSecret = "MINIO_SECRET_KEY"
)

// Load reads the YAML file at path, merges secrets from the environment
// (and an optional .env next to the config file) and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Gemini.APIKeys = splitKeys(os.Getenv(EnvGeminiKeys))
	cfg.Storage.AccessKey = os.Getenv(EnvMinioAccess)
	cfg.Storage.SecretKey = os.Getenv(EnvMinioSecret)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

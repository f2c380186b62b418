package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/nguyentantai21042004/caption-studio/internal/config"
	"github.com/nguyentantai21042004/caption-studio/internal/jobs"
	"github.com/nguyentantai21042004/caption-studio/internal/logger"
	"github.com/nguyentantai21042004/caption-studio/internal/processor"
	"github.com/nguyentantai21042004/caption-studio/internal/transcriber"
	"github.com/nguyentantai21042004/caption-studio/pkg/executor"
)

const lockFileName = ".studio.lock"

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
	logger     logger.Logger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

// ensureConfig loads the configuration once and creates the directories
// the application writes into.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(*c.configFlag)
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		for _, dir := range cfg.Dirs() {
			if err := os.MkdirAll(dir, 0755); err != nil {
				c.configErr = fmt.Errorf("create directory %s: %w", dir, err)
				return
			}
		}

		level := cfg.Logging.Level
		if c.logLevelFlag != nil && *c.logLevelFlag != "" {
			level = *c.logLevelFlag
		}
		c.logger = logger.NewWithOptions(logger.Options{
			Level:  level,
			Format: cfg.Logging.Format,
			Output: os.Stderr,
		})
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log() logger.Logger {
	if c.logger == nil {
		return logger.Discard()
	}
	return c.logger
}

// withTools resolves external binaries for commands that run them.
func (c *commandContext) withTools() (*config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveBinaries(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *commandContext) openJobs() (*jobs.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return jobs.Open(cfg.Paths.Database)
}

func newProcessor(cfg *config.Config, log logger.Logger) processor.Processor {
	exec := executor.New()
	return processor.New(cfg, exec, transcriber.NewWhisper(cfg.Whisper, exec, log), log)
}

// acquireLock takes the single-instance lock in the output directory.
func acquireLock(cfg *config.Config) (*flock.Flock, error) {
	path := filepath.Join(cfg.Paths.Output, lockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another studio instance is already serving or watching " + cfg.Paths.Output)
	}
	return lock, nil
}

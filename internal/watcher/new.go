package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/caption-studio/internal/logger"
)

// New creates a Watcher for inputDir. settleDelay is how long a new file
// must sit before it is handed to handler, giving the writer time to finish.
func New(inputDir string, handler EventHandler, log logger.Logger, settleDelay time.Duration) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if settleDelay < 0 {
		settleDelay = 0
	}

	return &implWatcher{
		inputDir:    inputDir,
		handler:     handler,
		logger:      log.Named("watcher"),
		watcher:     watcher,
		settleDelay: settleDelay,
		pending:     make(map[string]struct{}),
	}, nil
}

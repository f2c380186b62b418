// Package watcher hands videos arriving in the input directory to a
// handler once they have stopped changing.
package watcher

import "context"

// Watcher monitors one directory until its context ends.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one settled video file. Errors are logged and do
// not stop the watcher.
type EventHandler func(ctx context.Context, videoPath string) error

// Package storage publishes finished artifacts to object storage.
package storage

import (
	"context"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Object describes a published artifact.
type Object struct {
	Key string `json:"key,omitempty"`
	URL string `json:"url,omitempty"`
}

// Publisher uploads a local file and returns where it can be fetched.
type Publisher interface {
	Publish(ctx context.Context, localPath string) (Object, error)
}

type noopPublisher struct{}

// Noop returns a Publisher that leaves files where they are.
func Noop() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, string) (Object, error) {
	return Object{}, nil
}

const presignExpiry = 24 * time.Hour

// objectKey places a file under prefix, grouped by UTC day.
func objectKey(prefix, localPath string, now time.Time) string {
	prefix = strings.Trim(prefix, "/")
	return path.Join(prefix, now.UTC().Format("2006/01/02"), filepath.Base(localPath))
}

func contentType(localPath string) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	switch ext {
	case ".srt":
		return "application/x-subrip"
	case ".md":
		return "text/markdown"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

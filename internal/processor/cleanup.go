package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Archive moves the source video out of the watched folder.
func (p *implProcessor) Archive(ctx context.Context, videoPath string) error {
	destPath := filepath.Join(p.cfg.Paths.Archived, filepath.Base(videoPath))

	p.logger.Info(ctx, "Archiving source video: %s -> %s", videoPath, destPath)

	if err := os.Rename(videoPath, destPath); err != nil {
		return fmt.Errorf("move to archived: %w", err)
	}

	return nil
}

// cleanupTempDir removes a scratch directory, logs warning if fails
func (p *implProcessor) cleanupTempDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup temp dir %s: %v", dir, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up temp dir: %s", dir)
	}
}

package shutdown

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"paintserver/core"
	"paintserver/logging"
)

// TempImagePatterns match the scratch PNGs written for image edit uploads.
var TempImagePatterns = []string{"paint-image-*.png", "paint-mask-*.png"}

// RemoveTempFiles returns a hook deleting files in dir that match patterns.
// Failures are logged and never fail the shutdown.
func RemoveTempFiles(logger *logging.Logger, dir string, patterns ...string) core.ShutdownFunc {
	return func(ctx context.Context) error {
		removed := 0
		for _, pattern := range patterns {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				logger.Warn("Bad temp file pattern", zap.String("pattern", pattern), zap.Error(err))
				continue
			}
			for _, path := range matches {
				if ctx.Err() != nil {
					return nil
				}
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					logger.Warn("Failed to remove temp file", zap.String("file", filepath.Base(path)), zap.Error(err))
					continue
				}
				removed++
			}
		}
		if removed > 0 {
			logger.Info("Removed temp files", zap.Int("count", removed))
		}
		return nil
	}
}

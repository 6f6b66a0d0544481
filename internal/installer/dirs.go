package installer

import (
	"fmt"
	"os"
	"path/filepath"

	"setup-devenv/internal/logger"
)

// CreateDirectories makes each dir (relative to home) and returns the ones
// that did not exist before. With dryRun nothing is created.
func CreateDirectories(home string, dirs []string, dryRun bool) ([]string, error) {
	var created []string
	for _, d := range dirs {
		path := filepath.Join(home, d)
		if _, err := os.Stat(path); err == nil {
			logger.Debug("[DEBUG] Directory %s exists\n", path)
			continue
		}
		if dryRun {
			logger.Info("[DRY-RUN] mkdir -p %s\n", path)
			created = append(created, path)
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return created, fmt.Errorf("create directory %s: %w", path, err)
		}
		created = append(created, path)
	}
	return created, nil
}

package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/existflow/semplan/internal/config"
)

// The semester context remembers which semester CLI commands work on.
// Without it every run starts on the latest semester.

func contextFilePath() string {
	return filepath.Join(config.Dir(), "semester")
}

// GetCurrentContext returns the remembered semester id (empty means latest)
func GetCurrentContext() string {
	data, err := os.ReadFile(contextFilePath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetContext saves the current semester
func SetContext(semesterID string) error {
	path := contextFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(semesterID), 0644)
}

// ClearContext removes the context file
func ClearContext() error {
	if err := os.Remove(contextFilePath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Package state manages the planner's state directory and marker files.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Directory and file names inside the state directory.
const (
	DataDir    = "data"
	StateDir   = "state"
	SeededFile = "seeded"
)

// DataDirPath returns the directory holding the task slot.
func DataDirPath(base string) string {
	return filepath.Join(base, DataDir)
}

// StateDirPath returns the directory holding marker files.
func StateDirPath(base string) string {
	return filepath.Join(base, StateDir)
}

// SeededFilePath returns the path of the marker written once sample data
// has been offered.
func SeededFilePath(base string) string {
	return filepath.Join(base, StateDir, SeededFile)
}

// EnsureDir creates the state directory structure if it doesn't exist:
//   - <base>/
//   - <base>/data/
//   - <base>/state/
//
// The parent of base must already exist. Calling it again is safe.
func EnsureDir(base string) error {
	parent := filepath.Dir(filepath.Clean(base))
	if _, err := os.Stat(parent); os.IsNotExist(err) {
		return fmt.Errorf("root directory does not exist: %s", parent)
	}

	for _, dir := range []string{base, DataDirPath(base), StateDirPath(base)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// IsSeeded reports whether sample data was already offered.
func IsSeeded(base string) (bool, error) {
	_, err := os.Stat(SeededFilePath(base))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check seeded state: %w", err)
	}
	return true, nil
}

// SetSeeded records that sample data was offered. Clearing it lets the
// next start seed again.
func SetSeeded(base string, seeded bool) error {
	stateDir := StateDirPath(base)
	if _, err := os.Stat(stateDir); os.IsNotExist(err) {
		return fmt.Errorf("state directory does not exist: %s", stateDir)
	}

	path := SeededFilePath(base)
	if seeded {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create seeded file: %w", err)
		}
		return file.Close()
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove seeded file: %w", err)
	}
	return nil
}

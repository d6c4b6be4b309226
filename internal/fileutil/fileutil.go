package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// RenameInPlace renames a file to a new base name inside its own directory and
// returns the new path. Renaming onto an existing file is refused so a rule
// bug cannot silently clobber another converted file.
func RenameInPlace(path, newName string) (string, error) {
	target := filepath.Join(filepath.Dir(path), newName)
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("rename %s: target %s already exists", filepath.Base(path), newName)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat rename target: %w", err)
	}
	if err := os.Rename(path, target); err != nil {
		return "", err
	}
	return target, nil
}

// Package fileutil holds small filesystem helpers shared by the commands.
package fileutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SanitizeFilename cleans a filename by replacing problematic characters.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, ":", " -")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	return name
}

// FileExists checks if a regular file exists at the given path.
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// WriteFileWithOverwrite writes data to a file, respecting the overwrite
// flag. Returns true if the file was written, false if it was skipped.
func WriteFileWithOverwrite(filePath string, data []byte, perm os.FileMode, overwrite bool) (bool, error) {
	if FileExists(filePath) && !overwrite {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return false, err
	}
	if err := os.WriteFile(filePath, data, perm); err != nil {
		return false, err
	}
	return true, nil
}

// WriteJSONFile writes data as indented JSON, respecting the overwrite flag.
func WriteJSONFile(data any, filePath string, overwrite bool) (bool, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return WriteFileWithOverwrite(filePath, jsonData, 0644, overwrite)
}

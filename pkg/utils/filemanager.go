// =============================================================================
// Retail Sales Cleaner - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the cleaner, including:
//   - Output directory management
//   - Output file naming with placeholders
//   - Atomic file writes
//
// WRITE STRATEGY:
//   - Every artifact is written to a temporary file in the output directory
//   - The temporary file is renamed over the target only after a full write
//   - A failed write leaves no partial artifact behind
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles output file operations for the cleaner.
type FileManager struct {
	// OutputDir is the directory where output files are placed.
	OutputDir string

	// RunID replaces the {uuid} placeholder. A random UUID is used when empty.
	RunID string

	// Now is the time used for {timestamp}, {date} and {time}.
	Now time.Time
}

// NewFileManager creates a new FileManager for the output directory.
func NewFileManager(outputDir, runID string) *FileManager {
	return &FileManager{
		OutputDir: outputDir,
		RunID:     runID,
		Now:       time.Now(),
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directory if it doesn't exist.
//
// RETURNS:
//   - An error if the directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	if fm.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(fm.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// Path expands the placeholders in name and joins it to the output directory.
func (fm *FileManager) Path(name string, params map[string]string) string {
	if params == nil {
		params = map[string]string{}
	}
	if _, ok := params["uuid"]; !ok && fm.RunID != "" {
		params["uuid"] = fm.RunID
	}
	return filepath.Join(fm.OutputDir, GenerateOutputFileName(name, params, fm.Now))
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands placeholders in a file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - The run id, or a random UUID
//               {timestamp} - Timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Date (YYYYMMDD)
//               {time}      - Time (HHMMSS)
//               {original}  - Input file name (without extension)
//   - params: A map of placeholder values. Keys are given without braces.
//   - now: The time used for the time-based placeholders.
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//   format: "retail_sales_clean_{date}.csv"
//   output: "retail_sales_clean_20240115.csv"
func GenerateOutputFileName(format string, params map[string]string, now time.Time) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	if _, ok := replacements["{uuid}"]; !ok && strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// FILE WRITING
// =============================================================================

// WriteAtomic writes a file through a temporary file in the same directory
// and renames it into place once write returns successfully.
//
// PARAMETERS:
//   - path: The target file path.
//   - write: Writes the file content.
//
// RETURNS:
//   - An error if writing or renaming fails. The target is left untouched.
func WriteAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	return nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

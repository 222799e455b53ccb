package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the paperforge home directory.
	DefaultDirName = ".paperforge"

	// ExportsDirName is the subdirectory for generated LaTeX files.
	ExportsDirName = "exports"

	// UploadsDirName is the subdirectory for per-run upload staging.
	UploadsDirName = "uploads"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// CallLogFileName is the LLM call log file name.
	CallLogFileName = "llm_calls.jsonl"
)

// Dir represents the paperforge home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.paperforge).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// ExportsDir returns the directory for generated LaTeX documents.
func (d *Dir) ExportsDir() string {
	return filepath.Join(d.path, ExportsDirName)
}

// ExportPath returns the path for a named export file.
func (d *Dir) ExportPath(filename string) string {
	return filepath.Join(d.ExportsDir(), filename)
}

// UploadsDir returns the staging directory for uploaded PDFs.
func (d *Dir) UploadsDir() string {
	return filepath.Join(d.path, UploadsDirName)
}

// RunUploadsDir returns the upload staging directory for a single run.
func (d *Dir) RunUploadsDir(runID string) string {
	return filepath.Join(d.UploadsDir(), runID)
}

// CallLogPath returns the path to the LLM call log.
func (d *Dir) CallLogPath() string {
	return filepath.Join(d.path, CallLogFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.ExportsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create exports directory: %w", err)
	}
	if err := os.MkdirAll(d.UploadsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return nil
}

// EnsureRunUploadsDir creates the upload staging directory for a run.
func (d *Dir) EnsureRunUploadsDir(runID string) error {
	return os.MkdirAll(d.RunUploadsDir(runID), 0o755)
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

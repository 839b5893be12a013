package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/postcut/internal/machine"
	"github.com/piwi3910/postcut/internal/model"
)

// bundleVersion is the format version of job bundles.
const bundleVersion = "1.0.0"

// Bundle packs a job with the machine it is posted for, so the job can be
// exported on another computer without its machine library.
type Bundle struct {
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Job       *model.Job      `json:"job"`
	Machine   machine.Machine `json:"machine"`
}

// ExportBundle writes job and m to a single JSON file at the specified path.
func ExportBundle(exportPath string, job *model.Job, m machine.Machine) error {
	m.Version = machine.SchemaVersion
	bundle := Bundle{
		Version:   bundleVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Job:       job,
		Machine:   m,
	}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write bundle file: %w", err)
	}
	return nil
}

// ImportBundle reads a bundle file. The job's tool references are resolved
// and the machine goes through the same migration as a machine file.
func ImportBundle(importPath string) (Bundle, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to read bundle file: %w", err)
	}
	var raw struct {
		Version   string         `json:"version"`
		CreatedAt string         `json:"created_at"`
		Job       *model.Job     `json:"job"`
		Machine   map[string]any `json:"machine"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Bundle{}, &ParseError{Path: importPath, Format: "json", Err: err}
	}
	if raw.Version == "" {
		return Bundle{}, fmt.Errorf("invalid bundle file: missing version field")
	}
	if raw.Job == nil {
		return Bundle{}, fmt.Errorf("invalid bundle file: missing job")
	}
	if err := raw.Job.Resolve(); err != nil {
		return Bundle{}, &ParseError{Path: importPath, Format: "json", Err: err}
	}
	m, err := machine.Decode(raw.Machine)
	if err != nil {
		return Bundle{}, &ParseError{Path: importPath, Format: "json", Err: err}
	}
	return Bundle{Version: raw.Version, CreatedAt: raw.CreatedAt, Job: raw.Job, Machine: m}, nil
}

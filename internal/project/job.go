package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/postcut/internal/model"
)

// LoadJob reads a job from a JSON file and links its operations to their
// tool controllers.
func LoadJob(path string) (*model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	job := &model.Job{}
	if err := json.Unmarshal(data, job); err != nil {
		return nil, &ParseError{Path: path, Format: "json", Err: err}
	}
	if err := job.Resolve(); err != nil {
		return nil, &ParseError{Path: path, Format: "json", Err: err}
	}
	if job.Document == "" {
		job.Document = path
	}
	return job, nil
}

// SaveJob writes a job as indented JSON.
func SaveJob(path string, job *model.Job) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write job file: %w", err)
	}
	return nil
}

package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
)

// File is the layout of a seed YAML file:
//
//	jobs:
//	  - title: Backend Engineer
//	    company: Acme
//	    location: Remote
//	    postedDate: "2025-01-14"
//	    applyUrl: https://acme.example/jobs/1
type File struct {
	Jobs []domain.JobInput `yaml:"jobs"`
}

// Loader reads sample listings from a YAML file
type Loader struct {
	filePath string
}

// NewLoader creates a new seed loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads, parses and validates the file. ${VAR} references are expanded
// from the environment before parsing.
func (l *Loader) Load() ([]domain.JobInput, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	jobs := make([]domain.JobInput, 0, len(file.Jobs))
	for i, job := range file.Jobs {
		job = job.Normalize()
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("seed job #%d (%q): %w", i+1, job.Title, err)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// Resolve returns the listings from filePath, or Builtin when filePath is empty.
func Resolve(filePath string) ([]domain.JobInput, error) {
	if filePath == "" {
		return Builtin(), nil
	}
	return NewLoader(filePath).Load()
}

package seed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinIsValid(t *testing.T) {
	jobs := Builtin()
	if len(jobs) != 5 {
		t.Fatalf("expected 5 builtin jobs, got %d", len(jobs))
	}
	for _, job := range jobs {
		if err := job.Validate(); err != nil {
			t.Errorf("builtin job %q is invalid: %v", job.Title, err)
		}
	}
}

func TestLoaderLoad(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "jobs.yaml")

	t.Setenv("JOBBOARD_TEST_APPLY", "https://acme.example/jobs/1")
	yamlContent := `jobs:
  - title: "  Backend Engineer "
    company: Acme
    location: Remote
    postedDate: "2025-01-14"
    applyUrl: ${JOBBOARD_TEST_APPLY}
  - title: Designer
    company: Acme
    location: Seoul
    postedDate: "2025-01-10"
`
	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	jobs, err := NewLoader(yamlPath).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("Load() returned %d jobs, want 2", len(jobs))
	}
	if jobs[0].Title != "Backend Engineer" {
		t.Errorf("title not trimmed: %q", jobs[0].Title)
	}
	if jobs[0].ApplyURL != "https://acme.example/jobs/1" {
		t.Errorf("applyUrl not expanded: %q", jobs[0].ApplyURL)
	}
}

func TestLoaderLoadInvalidJob(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "jobs.yaml")

	yamlContent := `jobs:
  - title: Missing company
    location: Remote
    postedDate: "2025-01-14"
`
	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	if _, err := NewLoader(yamlPath).Load(); err == nil {
		t.Error("Load() with an invalid job should return error")
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	if _, err := NewLoader("/nonexistent/path/jobs.yaml").Load(); err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestResolve(t *testing.T) {
	jobs, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve(\"\") error = %v", err)
	}
	if len(jobs) != len(Builtin()) {
		t.Errorf("Resolve(\"\") should return the builtin set")
	}
}

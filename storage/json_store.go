package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"reputation-monitor/models"
)

// JSONStore keeps the snapshot as one indented JSON document on disk.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store for the file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path is the snapshot file location.
func (s *JSONStore) Path() string { return s.path }

// Write serialises the snapshot to a temp file next to the target and renames
// it into place, so readers never see a half-written document.
func (s *JSONStore) Write(snapshot *models.Snapshot) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("snapshot: create dir: %w", err)
	}

	normalized := *snapshot
	if normalized.Products == nil {
		normalized.Products = []models.Product{}
	}
	if normalized.Testimonials == nil {
		normalized.Testimonials = []models.Testimonial{}
	}
	if normalized.Reviews == nil {
		normalized.Reviews = []models.Review{}
	}
	normalized.ScrapedAt = normalized.ScrapedAt.UTC()

	data, err := json.MarshalIndent(&normalized, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("snapshot: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("snapshot: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("snapshot: replace %q: %w", s.path, err)
	}
	return nil
}

// Read loads and parses the whole snapshot. A missing or malformed file is
// an error; there is no partial recovery.
func (s *JSONStore) Read() (*models.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %q: %w", s.path, err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("snapshot: parse %q: %w", s.path, err)
	}
	return &snapshot, nil
}

package triage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"shotsort/internal/errors"
)

// ManifestName is the per-run report written into the output directory.
const ManifestName = "shotsort_manifest.json"

// Manifest is the machine-readable record of one run.
type Manifest struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	InputDir   string    `json:"input_dir"`
	OutputDir  string    `json:"output_dir"`
	Threshold  float64   `json:"confidence_threshold"`
	Stats      RunStats  `json:"stats"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	Throughput float64   `json:"images_per_second"`
	Records    []Record  `json:"records"`
}

// WriteManifest stores m as indented JSON in dir, replacing any previous
// manifest atomically.
func WriteManifest(dir string, m Manifest) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode manifest")
	}
	data = append(data, '\n')

	path := filepath.Join(dir, ManifestName)
	tmp, err := os.CreateTemp(dir, ".shotsort-manifest-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "create manifest")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", errors.Wrap(err, "write manifest")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "write manifest")
	}
	if err := replaceFile(tmp.Name(), path); err != nil {
		return "", errors.Wrap(err, "write manifest")
	}
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, errors.Wrap(err, "read manifest")
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, errors.Wrap(err, "decode manifest")
	}
	return m, nil
}

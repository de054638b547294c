package triage

import (
	"os"

	"shotsort/internal/errors"
	"shotsort/pkg/imgutil"
)

// Discover lists the image files directly inside dir, in the order the
// directory listing returns them. Subdirectories are not descended into.
// When dir cannot be read the result is empty and the error is marked
// ErrDiscovery; callers treat that as "no images found".
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}, errors.Mark(errors.Wrapf(err, "list %s", dir), errors.ErrDiscovery)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imgutil.SupportedExtension(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

package triage

import (
	"path/filepath"

	"github.com/gofrs/flock"

	"shotsort/internal/errors"
)

// LockName is the advisory lock file kept in the output directory while a
// run writes to it.
const LockName = ".shotsort.lock"

// lockOutput takes a non-blocking lock on outputDir so two processes never
// copy into the same destination folders at once.
func lockOutput(outputDir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(outputDir, LockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "lock output directory"), errors.ErrSetup)
	}
	if !ok {
		return nil, errors.WithHint(
			errors.Mark(errors.Newf("output directory %s is in use by another run", outputDir), errors.ErrState),
			"wait for the other shotsort run to finish or pick a different --output",
		)
	}
	return lock, nil
}

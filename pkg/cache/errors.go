package cache

import (
	"github.com/matzehuels/gdpmap/pkg/errors"
)

// backendError wraps a failure of a networked backend. Callers treat cache
// errors as misses, so the code only matters for logs.
func backendError(backend, op, key string, err error) error {
	return errors.Wrap(errors.ErrCodeNetwork, err, "%s %s %q", backend, op, key)
}

// fileError wraps a failure of the file backend.
func fileError(op, path string, err error) error {
	return errors.Wrap(errors.ErrCodeEnvironment, err, "cache %s %s", op, path)
}

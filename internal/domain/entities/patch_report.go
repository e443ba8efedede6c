package entities

import "errors"

// PatchReport records the outcome of writing a set of descriptors. Files are
// written independently, so a failed run still tells which files changed.
type PatchReport struct {
	Written   []string
	Unchanged []string
	Failed    []*PatchWriteError
}

// Err joins every write failure, or returns nil when all writes succeeded.
func (r *PatchReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// NotWritten returns the paths of every file that failed to be written.
func (r *PatchReport) NotWritten() []string {
	paths := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		paths = append(paths, f.Path)
	}
	return paths
}

package repositories

import "context"

// RevisionRepository supplies the revision token appended to every new
// version of a run, e.g. the current commit of the working copy.
type RevisionRepository interface {
	Revision(ctx context.Context, projectDir string) (string, error)
}

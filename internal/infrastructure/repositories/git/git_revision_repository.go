package git

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/nonsnapshot/internal/domain/repositories"
)

const shortHashLength = 7

// RevisionRepository implements repositories.RevisionRepository using the
// HEAD commit of the git repository enclosing the project directory.
type RevisionRepository struct{}

// NewRevisionRepository creates a new git revision repository.
func NewRevisionRepository() repositories.RevisionRepository {
	return &RevisionRepository{}
}

// Revision returns the abbreviated hash of the HEAD commit.
func (r *RevisionRepository) Revision(_ context.Context, projectDir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(projectDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("failed to open git repository at %q: %w", projectDir, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	hash := head.Hash().String()
	if len(hash) > shortHashLength {
		hash = hash[:shortHashLength]
	}
	logger.Debugf("Using revision %s from %s", hash, head.Name().Short())
	return hash, nil
}

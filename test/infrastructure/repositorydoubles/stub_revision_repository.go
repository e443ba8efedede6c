//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/nonsnapshot/internal/domain/repositories"
)

// StubRevisionRepository is a stub implementation of repositories.RevisionRepository.
type StubRevisionRepository struct {
	Token       string
	RevisionErr error
	CallCount   int
}

var _ repositories.RevisionRepository = (*StubRevisionRepository)(nil)

func (s *StubRevisionRepository) Revision(_ context.Context, _ string) (string, error) {
	s.CallCount++
	return s.Token, s.RevisionErr
}

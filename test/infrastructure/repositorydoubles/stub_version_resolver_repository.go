//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
	"github.com/rios0rios0/nonsnapshot/internal/domain/repositories"
)

// SpyVersionResolverRepository implements repositories.VersionResolverRepository
// as a configurable spy. Versions are keyed by "groupId:artifactId".
type SpyVersionResolverRepository struct {
	// --- ResolveVersionRange ---
	Versions   map[string][]string
	ResolveErr error
	// spy: queries received
	Calls []ResolveCall

	mu sync.Mutex
}

// ResolveCall records a single invocation of ResolveVersionRange.
type ResolveCall struct {
	Coordinate entities.BuildCoordinate
	Range      entities.VersionRange
}

var _ repositories.VersionResolverRepository = (*SpyVersionResolverRepository)(nil)

func (s *SpyVersionResolverRepository) ResolveVersionRange(
	_ context.Context,
	coordinate entities.BuildCoordinate,
	versionRange entities.VersionRange,
) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, ResolveCall{Coordinate: coordinate, Range: versionRange})
	if s.ResolveErr != nil {
		return nil, s.ResolveErr
	}
	return s.Versions[coordinate.Key()], nil
}

// CallCount returns the number of queries received so far.
func (s *SpyVersionResolverRepository) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// Factory returns a repositories.VersionResolverFactory that always yields the spy.
func (s *SpyVersionResolverRepository) Factory() repositories.VersionResolverFactory {
	return func(_ *entities.Settings) repositories.VersionResolverRepository {
		return s
	}
}

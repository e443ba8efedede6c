package repositories

import (
	"context"

	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
)

// VersionResolverRepository answers version range queries against the
// published versions of an artifact.
type VersionResolverRepository interface {
	// ResolveVersionRange returns every known version of the coordinate
	// inside the range. An empty result is not an error; transport failures
	// and timeouts are entities.DependencyResolutionError.
	ResolveVersionRange(
		ctx context.Context,
		coordinate entities.BuildCoordinate,
		versionRange entities.VersionRange,
	) ([]string, error)
}

// VersionResolverFactory builds a resolver for the repositories and
// timeouts of the given settings.
type VersionResolverFactory func(settings *entities.Settings) VersionResolverRepository

package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/nonsnapshot/internal/domain/repositories"
	gitRepo "github.com/rios0rios0/nonsnapshot/internal/infrastructure/repositories/git"
	mavenRepo "github.com/rios0rios0/nonsnapshot/internal/infrastructure/repositories/maven"
	pomRepo "github.com/rios0rios0/nonsnapshot/internal/infrastructure/repositories/pom"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(pomRepo.NewDescriptorRepository); err != nil {
		return err
	}
	if err := container.Provide(gitRepo.NewRevisionRepository); err != nil {
		return err
	}

	// The resolver depends on the settings of each run, so a factory is registered
	if err := container.Provide(func() domainRepos.VersionResolverFactory {
		return mavenRepo.NewResolverRepository
	}); err != nil {
		return err
	}

	return nil
}

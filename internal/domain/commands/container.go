package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	if err := container.Provide(NewComputeVersionsCommand); err != nil {
		return err
	}
	if err := container.Provide(NewWriteVersionsCommand); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *ComputeVersionsCommand) ComputeVersions {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *WriteVersionsCommand) WriteVersions {
		return impl
	}); err != nil {
		return err
	}

	return nil
}

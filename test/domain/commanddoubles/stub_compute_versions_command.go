//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/nonsnapshot/internal/domain/commands"
	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
)

// StubComputeVersionsCommand is a stub implementation of commands.ComputeVersions.
type StubComputeVersionsCommand struct {
	Modules          []*entities.Module
	ExecuteErr       error
	ExecuteCallCount int
	LastSettings     *entities.Settings
	LastOpts         commands.ComputeOptions
}

var _ commands.ComputeVersions = (*StubComputeVersionsCommand)(nil)

func (s *StubComputeVersionsCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.ComputeOptions,
) ([]*entities.Module, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	return s.Modules, s.ExecuteErr
}

//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/nonsnapshot/internal/domain/commands"
	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
)

// StubWriteVersionsCommand is a stub implementation of commands.WriteVersions.
type StubWriteVersionsCommand struct {
	Report           *entities.PatchReport
	ExecuteErr       error
	ExecuteCallCount int
	LastModules      []*entities.Module
	LastOpts         commands.WriteOptions
}

var _ commands.WriteVersions = (*StubWriteVersionsCommand)(nil)

func (s *StubWriteVersionsCommand) Execute(
	_ context.Context,
	modules []*entities.Module,
	opts commands.WriteOptions,
) (*entities.PatchReport, error) {
	s.ExecuteCallCount++
	s.LastModules = modules
	s.LastOpts = opts
	if s.Report == nil {
		return &entities.PatchReport{}, s.ExecuteErr
	}
	return s.Report, s.ExecuteErr
}

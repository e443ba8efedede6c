package commands

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
	"github.com/rios0rios0/nonsnapshot/internal/domain/repositories"
)

// WriteVersions is the interface for rewriting the descriptors of a computed tree.
type WriteVersions interface {
	Execute(ctx context.Context, modules []*entities.Module, opts WriteOptions) (*entities.PatchReport, error)
}

// WriteOptions holds runtime options for the write step.
type WriteOptions struct {
	Workers int
}

// WriteVersionsCommand plans and applies the version patches of every dirty
// module. Each descriptor is written independently of the others.
type WriteVersionsCommand struct {
	descriptors repositories.DescriptorRepository
}

// NewWriteVersionsCommand creates a new WriteVersionsCommand.
func NewWriteVersionsCommand(descriptors repositories.DescriptorRepository) *WriteVersionsCommand {
	return &WriteVersionsCommand{descriptors: descriptors}
}

// Execute writes every non-empty plan and reports which files were written,
// left alone or failed. The returned error joins all write failures.
func (it *WriteVersionsCommand) Execute(
	ctx context.Context,
	modules []*entities.Module,
	opts WriteOptions,
) (*entities.PatchReport, error) {
	report := &entities.PatchReport{}

	var plans []entities.PatchPlan
	seen := make(map[string]bool)
	for _, m := range modules {
		if seen[m.DescriptorPath] {
			report.Failed = append(report.Failed, &entities.PatchWriteError{
				Path: m.DescriptorPath,
				Err:  errors.New("descriptor belongs to more than one module"),
			})
			continue
		}
		seen[m.DescriptorPath] = true

		plan := entities.PlanPatches(m)
		if plan.IsEmpty() {
			report.Unchanged = append(report.Unchanged, m.DescriptorPath)
			continue
		}
		plans = append(plans, plan)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = entities.DefaultResolverWorkers
	}

	// A plain Group does not cancel the other writes on failure, so every
	// plan gets its own result.
	results := make([]error, len(plans))
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, plan := range plans {
		g.Go(func() error {
			results[i] = it.descriptors.Write(ctx, plan)
			return results[i]
		})
	}
	if err := g.Wait(); err != nil {
		logger.Debugf("Not every descriptor could be written, first failure: %v", err)
	}

	for i, plan := range plans {
		path := plan.Module.DescriptorPath
		if err := results[i]; err != nil {
			var writeErr *entities.PatchWriteError
			if !errors.As(err, &writeErr) {
				writeErr = &entities.PatchWriteError{Path: path, Err: err}
			}
			logger.Errorf("Failed to update %s: %v", path, err)
			report.Failed = append(report.Failed, writeErr)
			continue
		}
		logger.Infof("Updated %s (%d changes)", path, len(plan.Patches))
		report.Written = append(report.Written, path)
	}

	return report, report.Err()
}

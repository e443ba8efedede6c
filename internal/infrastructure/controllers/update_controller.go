package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/nonsnapshot/internal/domain/commands"
	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
)

// UpdateController handles the "update" subcommand.
type UpdateController struct {
	compute commands.ComputeVersions
	write   commands.WriteVersions
}

// NewUpdateController creates a new UpdateController.
func NewUpdateController(compute commands.ComputeVersions, write commands.WriteVersions) *UpdateController {
	return &UpdateController{compute: compute, write: write}
}

// GetBind returns the Cobra command metadata for the update controller.
func (it *UpdateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "update [path]",
		Short: "Give every changed module a new release version",
		Long: `Walk the module tree, find the modules that changed or whose
dependencies changed, and rewrite their descriptors with the version
<base>-<revision>.

Only the version texts are replaced; every other byte of the descriptors
is preserved.`,
	}
}

// Execute computes the versions and rewrites the descriptors.
func (it *UpdateController) Execute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	input, err := readRunInput(cmd, args)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	modules, err := it.compute.Execute(ctx, input.settings, input.opts)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	logSummary(modules)

	if input.dryRun {
		logger.Info("Dry run, no descriptor is written")
		return nil
	}

	report, err := it.write.Execute(ctx, modules, commands.WriteOptions{
		Workers: input.settings.Resolver.Workers,
	})
	if report != nil {
		logger.Infof("Descriptors written: %d, unchanged: %d, failed: %d",
			len(report.Written), len(report.Unchanged), len(report.Failed))
	}
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	return nil
}

package controllers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/nonsnapshot/internal/domain/commands"
	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
)

// PretendController handles the "pretend" subcommand.
type PretendController struct {
	compute commands.ComputeVersions
}

// NewPretendController creates a new PretendController.
func NewPretendController(compute commands.ComputeVersions) *PretendController {
	return &PretendController{compute: compute}
}

// GetBind returns the Cobra command metadata for the pretend controller.
func (it *PretendController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "pretend [path]",
		Short: "Show which modules would receive a new version",
		Long: `Compute the new versions of the module tree without touching any descriptor.

Upstream dependencies are still queried, and the changed modules file is
written when one is configured.`,
	}
}

// Execute computes the versions and logs the summary.
func (it *PretendController) Execute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	input, err := readRunInput(cmd, args)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	modules, err := it.compute.Execute(ctx, input.settings, input.opts)
	if err != nil {
		return fmt.Errorf("pretend failed: %w", err)
	}
	logSummary(modules)
	return nil
}

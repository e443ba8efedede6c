package repositories

import (
	"context"

	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
)

// DescriptorRepository reads module descriptors and writes version patches
// back into them without touching any other byte of the file.
type DescriptorRepository interface {
	// DescriptorPath returns the descriptor file of a module directory.
	DescriptorPath(moduleDir string) string

	// Read parses one descriptor into a module, recording the location of
	// every version field. Failures are entities.ModuleDiscoveryError.
	Read(ctx context.Context, descriptorPath string) (*entities.Module, error)

	// Write applies the plan to the descriptor in a single rewrite.
	// Failures are entities.PatchWriteError.
	Write(ctx context.Context, plan entities.PatchPlan) error
}

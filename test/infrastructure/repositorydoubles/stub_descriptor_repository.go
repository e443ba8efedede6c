//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
	"github.com/rios0rios0/nonsnapshot/internal/domain/repositories"
)

// SpyDescriptorRepository implements repositories.DescriptorRepository over
// an in-memory set of modules keyed by descriptor path.
type SpyDescriptorRepository struct {
	// --- Read ---
	Modules map[string]*entities.Module
	// spy: paths that were read, in order
	ReadPaths []string

	// --- Write ---
	WriteErrs map[string]error
	// spy: plans that were written successfully
	WrittenPlans []entities.PatchPlan

	mu sync.Mutex
}

var _ repositories.DescriptorRepository = (*SpyDescriptorRepository)(nil)

func (s *SpyDescriptorRepository) DescriptorPath(moduleDir string) string {
	return filepath.Join(moduleDir, "pom.xml")
}

func (s *SpyDescriptorRepository) Read(_ context.Context, descriptorPath string) (*entities.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReadPaths = append(s.ReadPaths, descriptorPath)
	if m, ok := s.Modules[descriptorPath]; ok {
		return m, nil
	}
	return nil, &entities.ModuleDiscoveryError{Path: descriptorPath, Err: fmt.Errorf("no such descriptor")}
}

func (s *SpyDescriptorRepository) Write(_ context.Context, plan entities.PatchPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.WriteErrs[plan.Module.DescriptorPath]; ok {
		return err
	}
	s.WrittenPlans = append(s.WrittenPlans, plan)
	return nil
}

// WrittenPaths returns the descriptor paths of every successful write.
func (s *SpyDescriptorRepository) WrittenPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.WrittenPlans))
	for _, plan := range s.WrittenPlans {
		paths = append(paths, plan.Module.DescriptorPath)
	}
	return paths
}

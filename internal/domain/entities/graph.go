package entities

import "fmt"

// ModuleIndex looks modules up by their version-less coordinate.
type ModuleIndex map[string]*Module

// NewModuleIndex indexes the modules and fails when two of them share the
// same group and artifact.
func NewModuleIndex(modules []*Module) (ModuleIndex, error) {
	index := make(ModuleIndex, len(modules))
	for _, m := range modules {
		key := m.Coordinate.Key()
		if existing, ok := index[key]; ok {
			return nil, &ModuleDiscoveryError{
				Path: m.DescriptorPath,
				Err:  fmt.Errorf("coordinate %s already declared by %s", key, existing.DescriptorPath),
			}
		}
		index[key] = m
	}
	return index, nil
}

// Lookup returns the module with the same group and artifact, ignoring version.
func (idx ModuleIndex) Lookup(coordinate BuildCoordinate) (*Module, bool) {
	m, ok := idx[coordinate.Key()]
	return m, ok
}

// LinkModules resolves parent links and dependency references against the
// module set. References that do not resolve stay unlinked; they are
// candidates for upstream classification.
func LinkModules(modules []*Module) (ModuleIndex, error) {
	index, err := NewModuleIndex(modules)
	if err != nil {
		return nil, err
	}

	for _, m := range modules {
		if m.Parent != nil {
			if parent, ok := index.Lookup(*m.Parent); ok && parent != m {
				m.ParentModule = parent
			}
		}

		for _, dep := range m.Dependencies {
			if target, ok := index.Lookup(dep.Coordinate); ok && target != m {
				dep.Module = target
			}
		}
	}
	return index, nil
}

// UntrackedDependencies returns every dependency that does not point into
// the tree and declares a concrete version.
func UntrackedDependencies(modules []*Module) []*DependencyReference {
	var result []*DependencyReference
	for _, m := range modules {
		for _, dep := range m.Dependencies {
			if dep.Module == nil && dep.Coordinate.Version != "" && dep.VersionSpan != nil {
				result = append(result, dep)
			}
		}
	}
	return result
}

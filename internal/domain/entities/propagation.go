package entities

// PropagateDirty marks every module that needs a new version and returns how
// many modules changed state.
//
// A module is seeded dirty when its descriptor lacks a version field or when
// one of its upstream dependencies has a newer version. Dirtiness then flows
// along depends-on edges (parent links and in-tree dependencies) from a
// dirty module to its dependents, one full pass at a time, until a pass
// changes nothing. State only ever goes from clean to dirty, so the loop
// runs at most len(modules)+1 passes and the result does not depend on the
// order of the slice.
func PropagateDirty(modules []*Module) int {
	changed := 0
	for _, m := range modules {
		if needsOwnVersion(m) || hasUpstreamUpdate(m) {
			if m.MarkDirty() {
				changed++
			}
		}
	}

	for {
		passChanged := 0
		for _, m := range modules {
			if m.IsDirty() || !dependsOnDirty(m) {
				continue
			}
			if m.MarkDirty() {
				passChanged++
			}
		}
		if passChanged == 0 {
			return changed
		}
		changed += passChanged
	}
}

// DirtyModules returns the dirty modules, keeping the input order.
func DirtyModules(modules []*Module) []*Module {
	var result []*Module
	for _, m := range modules {
		if m.IsDirty() {
			result = append(result, m)
		}
	}
	return result
}

// AssignVersions hands the revision token to every dirty module and returns
// the modules that ended up with a new version. A non-empty baseVersion
// replaces the base version read from the descriptors.
func AssignVersions(modules []*Module, revisionToken, baseVersion string) []*Module {
	var assigned []*Module
	for _, m := range modules {
		if !m.IsDirty() {
			continue
		}
		if baseVersion != "" {
			m.BaseVersion = baseVersion
		}
		m.RevisionToken = revisionToken
		if m.NewVersion() != "" {
			assigned = append(assigned, m)
		}
	}
	return assigned
}

func needsOwnVersion(m *Module) bool {
	return m.InsertVersion || m.Coordinate.Version == ""
}

func hasUpstreamUpdate(m *Module) bool {
	for _, dep := range m.Dependencies {
		if dep.Module == nil && dep.TargetVersion() != "" {
			return true
		}
	}
	return false
}

func dependsOnDirty(m *Module) bool {
	if m.ParentModule != nil && m.ParentModule.IsDirty() {
		return true
	}
	for _, dep := range m.Dependencies {
		if dep.Module != nil && dep.Module.IsDirty() {
			return true
		}
	}
	return false
}

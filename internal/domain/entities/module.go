package entities

import (
	"path/filepath"
	"strings"
)

// TextSpan is the byte range [Start, End) of a version text inside the
// descriptor as it was originally read, plus the 1-based line it sits on.
type TextSpan struct {
	Start int
	End   int
	Line  int
}

// Len returns the number of bytes covered by the span.
func (s TextSpan) Len() int { return s.End - s.Start }

// InsertionPoint tells the patch writer where a missing version field goes.
type InsertionPoint struct {
	Offset int    // Byte offset right after the last identity field
	Indent string // Leading whitespace of the identity field lines
	Line   int
}

// DependencyReference is one dependency declared inside a module descriptor.
type DependencyReference struct {
	Coordinate  BuildCoordinate
	VersionSpan *TextSpan // nil when the version is absent or a property expression

	// Set by LinkModules when the coordinate resolves to a module of the tree.
	Module *Module

	// Set by the upstream resolution step for untracked dependencies.
	UpstreamRule    *UpstreamRule
	UpstreamVersion string
}

// IsInTree reports whether the dependency points to a module of the same project.
func (d *DependencyReference) IsInTree() bool { return d.Module != nil }

// IsUpstream reports whether the dependency matched a configured upstream rule.
func (d *DependencyReference) IsUpstream() bool { return d.Module == nil && d.UpstreamRule != nil }

// NeedsUpdate reports whether the version text of this dependency has to change.
func (d *DependencyReference) NeedsUpdate() bool {
	return d.TargetVersion() != ""
}

// TargetVersion returns the version the dependency must be moved to, or an
// empty string when it stays as declared.
func (d *DependencyReference) TargetVersion() string {
	if d.Module != nil {
		if d.Module.IsDirty() {
			return d.Module.NewVersion()
		}
		return ""
	}
	if d.UpstreamVersion != "" && d.UpstreamVersion != d.Coordinate.Version {
		return d.UpstreamVersion
	}
	return ""
}

// Module is one descriptor of the project tree and everything the run
// learns about it.
type Module struct {
	Coordinate     BuildCoordinate
	DescriptorPath string

	Parent            *BuildCoordinate
	ParentVersionSpan *TextSpan
	ParentModule      *Module // Set by LinkModules when the parent is part of the tree

	VersionSpan    *TextSpan
	InsertVersion  bool
	InsertionPoint *InsertionPoint

	BaseVersion   string
	RevisionToken string

	Dependencies []*DependencyReference
	ChildPaths   []string  // Child module paths, relative to the descriptor directory
	Children     []*Module // Resolved child modules, filled by the tree walker

	dirty bool
}

// IsDirty reports whether the module must receive a new version.
func (m *Module) IsDirty() bool { return m.dirty }

// MarkDirty flags the module and reports whether its state changed.
// A dirty module never becomes clean again.
func (m *Module) MarkDirty() bool {
	if m.dirty {
		return false
	}
	m.dirty = true
	return true
}

// NewVersion returns baseVersion-revisionToken, or an empty string when
// either part is missing.
func (m *Module) NewVersion() string {
	if m.BaseVersion == "" || m.RevisionToken == "" {
		return ""
	}
	return m.BaseVersion + "-" + m.RevisionToken
}

// IsWritable reports whether the module is dirty and has a version to write.
func (m *Module) IsWritable() bool {
	return m.dirty && m.NewVersion() != ""
}

// Dir returns the directory holding the descriptor.
func (m *Module) Dir() string {
	return filepath.Dir(m.DescriptorPath)
}

func (m *Module) String() string {
	var sb strings.Builder
	sb.WriteString(m.Coordinate.String())
	if m.DescriptorPath != "" {
		sb.WriteString(" (")
		sb.WriteString(m.DescriptorPath)
		sb.WriteString(")")
	}
	return sb.String()
}

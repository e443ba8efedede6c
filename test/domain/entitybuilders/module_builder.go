//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// ModuleBuilder helps create test modules with a fluent interface. Version
// texts get spans so that the modules can be planned for patching.
type ModuleBuilder struct {
	*testkit.BaseBuilder
	groupID        string
	artifactID     string
	version        string
	descriptorPath string
	parent         *entities.Module
	dependencies   []*entities.DependencyReference
	insertVersion  bool
	dirty          bool
}

// NewModuleBuilder creates a new module builder with sensible defaults.
func NewModuleBuilder() *ModuleBuilder {
	return &ModuleBuilder{
		BaseBuilder:    testkit.NewBaseBuilder(),
		groupID:        "com.example",
		artifactID:     "test-module",
		version:        "1.0.0-SNAPSHOT",
		descriptorPath: "/project/pom.xml",
	}
}

// WithCoordinate sets the groupId, artifactId and version.
func (b *ModuleBuilder) WithCoordinate(groupID, artifactID, version string) *ModuleBuilder {
	b.groupID = groupID
	b.artifactID = artifactID
	b.version = version
	return b
}

// WithArtifactID sets the artifactId.
func (b *ModuleBuilder) WithArtifactID(artifactID string) *ModuleBuilder {
	b.artifactID = artifactID
	return b
}

// WithVersion sets the version.
func (b *ModuleBuilder) WithVersion(version string) *ModuleBuilder {
	b.version = version
	return b
}

// WithoutVersion builds a module whose descriptor lacks a version field.
func (b *ModuleBuilder) WithoutVersion() *ModuleBuilder {
	b.insertVersion = true
	return b
}

// WithDescriptorPath sets the descriptor path.
func (b *ModuleBuilder) WithDescriptorPath(path string) *ModuleBuilder {
	b.descriptorPath = path
	return b
}

// WithParent declares an in-tree parent module.
func (b *ModuleBuilder) WithParent(parent *entities.Module) *ModuleBuilder {
	b.parent = parent
	return b
}

// WithDependency declares an in-tree dependency on module.
func (b *ModuleBuilder) WithDependency(module *entities.Module) *ModuleBuilder {
	b.dependencies = append(b.dependencies, &entities.DependencyReference{
		Coordinate:  module.Coordinate,
		VersionSpan: &entities.TextSpan{Start: 0, End: len(module.Coordinate.Version), Line: 1},
		Module:      module,
	})
	return b
}

// WithUpstreamDependency declares an untracked dependency that resolved to upstreamVersion.
func (b *ModuleBuilder) WithUpstreamDependency(
	coordinate entities.BuildCoordinate,
	upstreamVersion string,
) *ModuleBuilder {
	b.dependencies = append(b.dependencies, &entities.DependencyReference{
		Coordinate:      coordinate,
		VersionSpan:     &entities.TextSpan{Start: 0, End: len(coordinate.Version), Line: 1},
		UpstreamVersion: upstreamVersion,
	})
	return b
}

// Dirty builds the module already marked dirty.
func (b *ModuleBuilder) Dirty() *ModuleBuilder {
	b.dirty = true
	return b
}

// Build creates the module (satisfies testkit.Builder interface).
func (b *ModuleBuilder) Build() interface{} {
	return b.BuildModule()
}

// BuildModule creates the module with a concrete return type.
func (b *ModuleBuilder) BuildModule() *entities.Module {
	module := &entities.Module{
		Coordinate: entities.BuildCoordinate{
			GroupID:    b.groupID,
			ArtifactID: b.artifactID,
			Version:    b.version,
		},
		DescriptorPath: b.descriptorPath,
		BaseVersion:    entities.BaseVersion(b.version),
		Dependencies:   b.dependencies,
		InsertVersion:  b.insertVersion,
	}

	if b.insertVersion {
		module.InsertionPoint = &entities.InsertionPoint{Offset: 0, Indent: "  ", Line: 1}
	} else {
		module.VersionSpan = &entities.TextSpan{Start: 0, End: len(b.version), Line: 1}
	}

	if b.parent != nil {
		parent := b.parent.Coordinate
		module.Parent = &parent
		module.ParentModule = b.parent
		module.ParentVersionSpan = &entities.TextSpan{Start: 0, End: len(parent.Version), Line: 1}
	}

	if b.dirty {
		module.MarkDirty()
	}
	return module
}

// Reset clears the builder state, allowing it to be reused.
func (b *ModuleBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.groupID = "com.example"
	b.artifactID = "test-module"
	b.version = "1.0.0-SNAPSHOT"
	b.descriptorPath = "/project/pom.xml"
	b.parent = nil
	b.dependencies = nil
	b.insertVersion = false
	b.dirty = false
	return b
}

// Clone creates a deep copy of the ModuleBuilder.
func (b *ModuleBuilder) Clone() testkit.Builder {
	dependencies := make([]*entities.DependencyReference, len(b.dependencies))
	copy(dependencies, b.dependencies)
	return &ModuleBuilder{
		BaseBuilder:    b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		groupID:        b.groupID,
		artifactID:     b.artifactID,
		version:        b.version,
		descriptorPath: b.descriptorPath,
		parent:         b.parent,
		dependencies:   dependencies,
		insertVersion:  b.insertVersion,
		dirty:          b.dirty,
	}
}

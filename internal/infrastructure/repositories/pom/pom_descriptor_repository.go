package pom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/viant/afs"

	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
	"github.com/rios0rios0/nonsnapshot/internal/domain/repositories"
)

const (
	descriptorFileName = "pom.xml"
	descriptorFileMode = 0o644
)

// DescriptorRepository implements repositories.DescriptorRepository for
// Maven pom.xml files. Reading records the byte span of every version text
// so that writing can replace exactly those bytes and nothing else.
type DescriptorRepository struct {
	fs afs.Service
}

// NewDescriptorRepository creates a new pom.xml descriptor repository.
func NewDescriptorRepository() repositories.DescriptorRepository {
	return &DescriptorRepository{fs: afs.New()}
}

// DescriptorPath returns the pom.xml inside moduleDir. A path that already
// names an XML file is returned unchanged.
func (r *DescriptorRepository) DescriptorPath(moduleDir string) string {
	if strings.EqualFold(filepath.Ext(moduleDir), ".xml") {
		return moduleDir
	}
	return filepath.Join(moduleDir, descriptorFileName)
}

// Read parses the descriptor at descriptorPath into a Module.
func (r *DescriptorRepository) Read(ctx context.Context, descriptorPath string) (*entities.Module, error) {
	content, err := r.fs.DownloadWithURL(ctx, descriptorPath)
	if err != nil {
		return nil, &entities.ModuleDiscoveryError{Path: descriptorPath, Err: err}
	}

	module, err := parseModule(content, descriptorPath)
	if err != nil {
		return nil, &entities.ModuleDiscoveryError{Path: descriptorPath, Err: err}
	}
	return module, nil
}

// Write applies the plan to the descriptor. Every replaced span must still
// hold the text that was read, otherwise the file is left untouched.
func (r *DescriptorRepository) Write(ctx context.Context, plan entities.PatchPlan) error {
	if plan.IsEmpty() {
		return nil
	}
	path := plan.Module.DescriptorPath

	content, err := r.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return &entities.PatchWriteError{Path: path, Err: err}
	}

	edits, err := buildEdits(content, plan.Patches)
	if err != nil {
		return &entities.PatchWriteError{Path: path, Err: err}
	}

	patched, err := entities.ApplyTextEdits(content, edits)
	if err != nil {
		return &entities.PatchWriteError{Path: path, Err: err}
	}

	if uploadErr := r.fs.Upload(ctx, path, descriptorFileMode, bytes.NewReader(patched)); uploadErr != nil {
		return &entities.PatchWriteError{Path: path, Err: uploadErr}
	}
	logger.Debugf("Wrote %d version changes to %s", len(edits), path)
	return nil
}

// buildEdits turns version patches into text edits, verifying that the
// content has not changed since the spans were recorded.
func buildEdits(content []byte, patches []entities.VersionPatch) ([]entities.TextEdit, error) {
	edits := make([]entities.TextEdit, 0, len(patches))
	for _, p := range patches {
		if p.Span.Start < 0 || p.Span.End > len(content) || p.Span.End < p.Span.Start {
			return nil, fmt.Errorf("%s at line %d is outside the file", p.Field, p.Span.Line)
		}

		switch p.Kind {
		case entities.PatchInsert:
			edits = append(edits, entities.TextEdit{
				Start: p.Span.Start,
				End:   p.Span.Start,
				Text:  "\n" + p.Indent + "<version>" + p.Version + "</version>",
			})
		case entities.PatchReplace:
			current := string(content[p.Span.Start:p.Span.End])
			switch {
			case current == p.Original:
				edits = append(edits, entities.TextEdit{Start: p.Span.Start, End: p.Span.End, Text: p.Version})
			case p.Original == "" && isEmptyElement(current):
				name := emptyElementName(current)
				edits = append(edits, entities.TextEdit{
					Start: p.Span.Start,
					End:   p.Span.End,
					Text:  "<" + name + ">" + p.Version + "</" + name + ">",
				})
			default:
				return nil, fmt.Errorf(
					"%s at line %d changed since it was read: expected %q, found %q",
					p.Field, p.Span.Line, p.Original, current,
				)
			}
		}
	}
	return edits, nil
}

// parseModule builds the Module of a descriptor, applying the inheritance
// of groupId and version from the parent declaration.
func parseModule(content []byte, descriptorPath string) (*entities.Module, error) {
	scan, err := scanDescriptor(content)
	if err != nil {
		return nil, err
	}
	if scan.artifactID == nil || scan.artifactID.text == "" {
		return nil, errors.New("artifactId is missing")
	}

	module := &entities.Module{
		DescriptorPath: descriptorPath,
		ChildPaths:     scan.modules,
	}

	if scan.parentArtifactID != nil {
		parent := &entities.BuildCoordinate{ArtifactID: scan.parentArtifactID.text}
		if scan.parentGroupID != nil {
			parent.GroupID = scan.parentGroupID.text
		}
		if scan.parentVersion != nil {
			parent.Version = scan.parentVersion.text
			if !isExpression(parent.Version) {
				span := scan.parentVersion.span
				module.ParentVersionSpan = &span
			}
		}
		module.Parent = parent
	}

	module.Coordinate.ArtifactID = scan.artifactID.text
	switch {
	case scan.groupID != nil && scan.groupID.text != "":
		module.Coordinate.GroupID = scan.groupID.text
	case module.Parent != nil && module.Parent.GroupID != "":
		module.Coordinate.GroupID = module.Parent.GroupID
	default:
		return nil, errors.New("groupId is missing and there is no parent to inherit it from")
	}

	switch {
	case scan.version != nil && scan.version.text != "":
		module.Coordinate.Version = scan.version.text
		if !isExpression(scan.version.text) {
			span := scan.version.span
			module.VersionSpan = &span
		}
	case scan.version != nil:
		// <version></version> replaces the empty text, <version/> the whole tag
		span := scan.version.span
		module.VersionSpan = &span
	default:
		if module.Parent != nil {
			module.Coordinate.Version = module.Parent.Version
		}
		module.InsertVersion = true
		if scan.artifactIDEnd >= 0 {
			module.InsertionPoint = &entities.InsertionPoint{
				Offset: scan.artifactIDEnd,
				Indent: scan.artifactIDIndent,
				Line:   scan.artifactID.span.Line,
			}
		}
	}
	if !isExpression(module.Coordinate.Version) {
		module.BaseVersion = entities.BaseVersion(module.Coordinate.Version)
	}

	for _, raw := range scan.dependencies {
		dep := toDependency(raw, module.Coordinate)
		if dep == nil {
			continue
		}
		module.Dependencies = append(module.Dependencies, dep)
	}
	return module, nil
}

// toDependency converts a scanned dependency, resolving the project
// property references Maven allows for the groupId and version.
func toDependency(raw *rawDependency, project entities.BuildCoordinate) *entities.DependencyReference {
	if raw.artifactID == nil || raw.artifactID.text == "" {
		return nil
	}

	coordinate := entities.BuildCoordinate{ArtifactID: raw.artifactID.text}
	switch {
	case raw.groupID != nil && raw.groupID.text != "":
		coordinate.GroupID = expandProjectProperty(raw.groupID.text, project)
	case raw.plugin:
		coordinate.GroupID = defaultPluginGroup
	default:
		logger.Debugf("Skipping dependency %s without groupId", coordinate.ArtifactID)
		return nil
	}

	dep := &entities.DependencyReference{Coordinate: coordinate}
	if raw.version == nil || raw.version.text == "" {
		return dep
	}

	dep.Coordinate.Version = expandProjectProperty(raw.version.text, project)
	if !isExpression(raw.version.text) {
		span := raw.version.span
		dep.VersionSpan = &span
	}
	return dep
}

func expandProjectProperty(text string, project entities.BuildCoordinate) string {
	switch text {
	case "${project.groupId}", "${pom.groupId}", "${groupId}":
		return project.GroupID
	case "${project.version}", "${pom.version}", "${version}":
		return project.Version
	default:
		return text
	}
}

// isEmptyElement reports whether text is a self-closing tag like <version/>.
func isEmptyElement(text string) bool {
	return strings.HasPrefix(text, "<") && strings.HasSuffix(text, "/>")
}

func emptyElementName(tag string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(tag, "<"), "/>")
	if fields := strings.Fields(inner); len(fields) > 0 {
		return fields[0]
	}
	return "version"
}

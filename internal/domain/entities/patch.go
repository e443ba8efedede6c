package entities

import (
	"bytes"
	"fmt"
	"sort"
)

// PatchKind tells whether a version text is replaced or a new field inserted.
type PatchKind int

const (
	PatchReplace PatchKind = iota
	PatchInsert
)

// VersionPatch is one version change planned for a descriptor. Spans refer
// to the descriptor bytes as they were first read.
type VersionPatch struct {
	Kind     PatchKind
	Field    string // "version", "parent" or the dependency coordinate
	Span     TextSpan
	Indent   string // Insertions only
	Original string // Text expected at Span, empty for insertions
	Version  string
}

// PatchPlan is the set of patches for a single descriptor file.
type PatchPlan struct {
	Module  *Module
	Patches []VersionPatch
}

// IsEmpty reports whether the plan leaves the file untouched.
func (p PatchPlan) IsEmpty() bool { return len(p.Patches) == 0 }

// PlanPatches computes every version change for a module. Modules that are
// not dirty, or have no new version, get an empty plan.
func PlanPatches(m *Module) PatchPlan {
	plan := PatchPlan{Module: m}
	if !m.IsWritable() {
		return plan
	}

	switch {
	case m.InsertVersion && m.InsertionPoint != nil:
		plan.Patches = append(plan.Patches, VersionPatch{
			Kind:    PatchInsert,
			Field:   "version",
			Span:    TextSpan{Start: m.InsertionPoint.Offset, End: m.InsertionPoint.Offset, Line: m.InsertionPoint.Line},
			Indent:  m.InsertionPoint.Indent,
			Version: m.NewVersion(),
		})
	case m.VersionSpan != nil:
		plan.Patches = append(plan.Patches, VersionPatch{
			Kind:     PatchReplace,
			Field:    "version",
			Span:     *m.VersionSpan,
			Original: m.Coordinate.Version,
			Version:  m.NewVersion(),
		})
	}

	if m.ParentModule != nil && m.ParentVersionSpan != nil && m.ParentModule.IsWritable() {
		original := ""
		if m.Parent != nil {
			original = m.Parent.Version
		}
		plan.Patches = append(plan.Patches, VersionPatch{
			Kind:     PatchReplace,
			Field:    "parent",
			Span:     *m.ParentVersionSpan,
			Original: original,
			Version:  m.ParentModule.NewVersion(),
		})
	}

	for _, dep := range m.Dependencies {
		if dep.VersionSpan == nil {
			continue
		}
		target := dep.TargetVersion()
		if target == "" {
			continue
		}
		plan.Patches = append(plan.Patches, VersionPatch{
			Kind:     PatchReplace,
			Field:    dep.Coordinate.Key(),
			Span:     *dep.VersionSpan,
			Original: dep.Coordinate.Version,
			Version:  target,
		})
	}
	return plan
}

// TextEdit replaces content[Start:End] with Text. Start == End inserts.
type TextEdit struct {
	Start int
	End   int
	Text  string
}

// ApplyTextEdits applies all edits against the original content in a single
// pass. Edits must not overlap; bytes outside the edits are copied verbatim.
func ApplyTextEdits(content []byte, edits []TextEdit) ([]byte, error) {
	if len(edits) == 0 {
		return content, nil
	}

	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out bytes.Buffer
	out.Grow(len(content))
	cursor := 0
	for _, e := range sorted {
		if e.Start < cursor || e.End < e.Start || e.End > len(content) {
			return nil, fmt.Errorf("edit [%d,%d) is out of bounds or overlaps a previous edit", e.Start, e.End)
		}
		out.Write(content[cursor:e.Start])
		out.WriteString(e.Text)
		cursor = e.End
	}
	out.Write(content[cursor:])
	return out.Bytes(), nil
}

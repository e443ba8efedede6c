package pom

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
)

const (
	defaultIndent      = "  "
	defaultPluginGroup = "org.apache.maven.plugins"
)

// dependencyContainers are the element paths whose children are dependency
// declarations, mapped to whether the declarations are plugins.
//
//nolint:gochecknoglobals // read-only lookup table
var dependencyContainers = map[string]bool{
	"project/dependencies/dependency":                      false,
	"project/dependencyManagement/dependencies/dependency": false,
	"project/build/plugins/plugin":                         true,
	"project/build/pluginManagement/plugins/plugin":        true,
}

// field is the trimmed text of a leaf element and where it sits.
type field struct {
	text string
	span entities.TextSpan
}

// rawDependency collects the identity fields of one dependency element.
type rawDependency struct {
	plugin     bool
	groupID    *field
	artifactID *field
	version    *field
}

// scanResult is everything read from a single descriptor.
type scanResult struct {
	groupID    *field
	artifactID *field
	version    *field

	parentGroupID    *field
	parentArtifactID *field
	parentVersion    *field

	// Offset right after </artifactId> and the indentation of its line.
	artifactIDEnd    int
	artifactIDIndent string

	modules      []string
	dependencies []*rawDependency
}

// elementFrame is one open element of the document.
type elementFrame struct {
	name         string
	tagStart     int  // Offset of '<' of the start tag
	contentStart int  // Offset right after the start tag
	selfClosing  bool // <version/>: the decoder reports the end at contentStart
}

// scanDescriptor tokenizes the descriptor and records the identity fields
// together with their byte spans in content.
func scanDescriptor(content []byte) (*scanResult, error) {
	decoded, err := decodeDescriptor(content)
	if err != nil {
		return nil, fmt.Errorf("malformed descriptor: %w", err)
	}

	result, err := scanDecoded(decoded.content)
	if err != nil {
		return nil, err
	}
	if decoded.offsets != nil {
		result.remap(decoded)
	}
	return result, nil
}

// scanDecoded does the work of scanDescriptor on UTF-8 content.
func scanDecoded(content []byte) (*scanResult, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil // Already UTF-8
	}

	result := &scanResult{artifactIDEnd: -1}
	var (
		stack   []elementFrame
		current *rawDependency
	)

	for {
		tokenStart := int(decoder.InputOffset())
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed descriptor: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			contentStart := int(decoder.InputOffset())
			stack = append(stack, elementFrame{
				name:         t.Name.Local,
				tagStart:     tokenStart,
				contentStart: contentStart,
				selfClosing:  bytes.HasSuffix(content[:contentStart], []byte("/>")),
			})
			if plugin, ok := dependencyContainers[joinPath(stack)]; ok {
				current = &rawDependency{plugin: plugin}
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New("malformed descriptor: unbalanced end element")
			}
			frame := stack[len(stack)-1]
			path := joinPath(stack)
			stack = stack[:len(stack)-1]

			if _, ok := dependencyContainers[path]; ok {
				if current != nil {
					result.dependencies = append(result.dependencies, current)
				}
				current = nil
				continue
			}

			leaf := leafField(content, frame, tokenStart)
			if current != nil {
				if _, direct := dependencyContainers[joinPath(stack)]; direct {
					assignDependencyField(current, frame.name, leaf)
				}
				continue
			}
			result.assign(path, leaf)
			if path == "project/artifactId" {
				result.artifactIDEnd = int(decoder.InputOffset())
				result.artifactIDIndent = lineIndent(content, frame.tagStart)
			}
		}
	}

	if len(stack) != 0 {
		return nil, errors.New("malformed descriptor: unexpected end of document")
	}
	return result, nil
}

// remap moves every recorded offset from the decoded content back to the
// original bytes. Lines and indentation are the same in both.
func (r *scanResult) remap(decoded *decodedDescriptor) {
	fields := []*field{
		r.groupID, r.artifactID, r.version,
		r.parentGroupID, r.parentArtifactID, r.parentVersion,
	}
	for _, dep := range r.dependencies {
		fields = append(fields, dep.groupID, dep.artifactID, dep.version)
	}
	for _, f := range fields {
		if f == nil {
			continue
		}
		f.span.Start = decoded.original(f.span.Start)
		f.span.End = decoded.original(f.span.End)
	}
	if r.artifactIDEnd >= 0 {
		r.artifactIDEnd = decoded.original(r.artifactIDEnd)
	}
}

func (r *scanResult) assign(path string, f *field) {
	switch path {
	case "project/groupId":
		r.groupID = f
	case "project/artifactId":
		r.artifactID = f
	case "project/version":
		r.version = f
	case "project/parent/groupId":
		r.parentGroupID = f
	case "project/parent/artifactId":
		r.parentArtifactID = f
	case "project/parent/version":
		r.parentVersion = f
	case "project/modules/module":
		if f.text != "" {
			r.modules = append(r.modules, f.text)
		}
	}
}

func assignDependencyField(dep *rawDependency, name string, f *field) {
	switch name {
	case "groupId":
		dep.groupID = f
	case "artifactId":
		dep.artifactID = f
	case "version":
		dep.version = f
	}
}

func joinPath(stack []elementFrame) string {
	names := make([]string, len(stack))
	for i, frame := range stack {
		names[i] = frame.name
	}
	return strings.Join(names, "/")
}

// leafField returns the text of the element that ends at end. An empty
// self-closing element spans the whole tag, so that the writer replaces the
// tag instead of appending text after it.
func leafField(content []byte, frame elementFrame, end int) *field {
	if frame.selfClosing {
		return &field{
			span: entities.TextSpan{
				Start: frame.tagStart,
				End:   frame.contentStart,
				Line:  lineOf(content, frame.tagStart),
			},
		}
	}
	return trimmedField(content, frame.contentStart, end)
}

// trimmedField returns the text between start and end without surrounding
// whitespace, with the span narrowed to match.
func trimmedField(content []byte, start, end int) *field {
	for start < end && isSpace(content[start]) {
		start++
	}
	for end > start && isSpace(content[end-1]) {
		end--
	}
	return &field{
		text: string(content[start:end]),
		span: entities.TextSpan{Start: start, End: end, Line: lineOf(content, start)},
	}
}

// lineIndent returns the whitespace between the start of the line and
// offset, or the default indentation when other text precedes offset.
func lineIndent(content []byte, offset int) string {
	lineStart := bytes.LastIndexByte(content[:offset], '\n') + 1
	prefix := content[lineStart:offset]
	if len(prefix) == 0 || len(bytes.TrimLeft(prefix, " \t")) != 0 {
		return defaultIndent
	}
	return string(prefix)
}

func lineOf(content []byte, offset int) int {
	return bytes.Count(content[:offset], []byte("\n")) + 1
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isExpression(text string) bool {
	return strings.Contains(text, "${")
}

// Package render turns traversal events into the text tree and the structured record tree.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/fstree/internal/types"
	"github.com/temirov/fstree/internal/walker"
)

// ErrOrphanEntry reports an entry whose parent directory was never registered.
var ErrOrphanEntry = errors.New("entry parent was not registered")

const (
	errorOrphanFormat     = "%w: %s"
	errorEncodeFormat     = "encoding %s record: %w"
	errorUnknownFormat    = "unknown record format %q"
	jsonIndent            = "  "
	yamlIndent            = 2
	relativePathSeparator = "/"
)

// Record is one node of the structured tree. Directories always carry a children list,
// files never do.
type Record struct {
	Name      string
	Type      string
	SymlinkTo string
	Children  []*Record
}

// IsDir reports whether the record describes a directory.
func (record *Record) IsDir() bool {
	return record.Type == types.RecordTypeDirectory
}

type recordDocument struct {
	Name      string     `json:"name" yaml:"name"`
	Type      string     `json:"type" yaml:"type"`
	SymlinkTo string     `json:"symlink_to,omitempty" yaml:"symlink_to,omitempty"`
	Children  *[]*Record `json:"children,omitempty" yaml:"children,omitempty"`
}

func (record *Record) document() recordDocument {
	document := recordDocument{Name: record.Name, Type: record.Type, SymlinkTo: record.SymlinkTo}
	if record.IsDir() {
		children := record.Children
		if children == nil {
			children = []*Record{}
		}
		document.Children = &children
	}
	return document
}

// MarshalJSON keeps the field order name, type, symlink_to, children.
// HTML characters are left unescaped.
func (record *Record) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(record.document()); encodeError != nil {
		return nil, encodeError
	}
	return bytes.TrimRight(buffer.Bytes(), lineBreak), nil
}

// MarshalYAML mirrors the JSON layout.
func (record *Record) MarshalYAML() (interface{}, error) {
	return record.document(), nil
}

// RecordBuilder assembles a Record tree from events. Parents are looked up by their
// absolute path, so a directory must be added before anything inside it.
type RecordBuilder struct {
	root  *Record
	index map[string]*Record
}

// NewRecordBuilder registers the root directory under rootPath with the given display name.
func NewRecordBuilder(rootPath string, rootName string) *RecordBuilder {
	root := &Record{Name: rootName, Type: types.RecordTypeDirectory, Children: []*Record{}}
	return &RecordBuilder{
		root:  root,
		index: map[string]*Record{filepath.Clean(rootPath): root},
	}
}

// Add attaches a node event to its parent. Permission-denied events carry no record.
func (builder *RecordBuilder) Add(event walker.Event) error {
	if event.Kind != walker.EventNode {
		return nil
	}
	entry := event.Entry
	parent, registered := builder.index[filepath.Dir(entry.Path)]
	if !registered {
		return fmt.Errorf(errorOrphanFormat, ErrOrphanEntry, entry.Path)
	}
	record := &Record{Name: entry.Name, Type: types.RecordTypeFile}
	if entry.IsSymlink() {
		record.SymlinkTo = entry.LinkTarget
	}
	if entry.IsDir() {
		record.Type = types.RecordTypeDirectory
		record.Children = []*Record{}
		builder.index[entry.Path] = record
	}
	parent.Children = append(parent.Children, record)
	return nil
}

// Root returns the tree built so far.
func (builder *RecordBuilder) Root() *Record {
	return builder.root
}

// WriteRecordJSON writes record as two-space indented JSON without HTML escaping.
func WriteRecordJSON(writer io.Writer, record *Record) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", jsonIndent)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(record); encodeError != nil {
		return fmt.Errorf(errorEncodeFormat, types.FormatJSON, encodeError)
	}
	return nil
}

// WriteRecordYAML writes record as a YAML document.
func WriteRecordYAML(writer io.Writer, record *Record) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(yamlIndent)
	if encodeError := encoder.Encode(record); encodeError != nil {
		return fmt.Errorf(errorEncodeFormat, types.FormatYAML, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(errorEncodeFormat, types.FormatYAML, closeError)
	}
	return nil
}

// RecordRenderer collects events into a record and writes it in the chosen format on Flush.
type RecordRenderer struct {
	writer  io.Writer
	format  string
	builder *RecordBuilder
}

// NewRecordRenderer builds a renderer for the json or yaml format.
func NewRecordRenderer(writer io.Writer, format string, rootPath string, rootName string) (*RecordRenderer, error) {
	if format != types.FormatJSON && format != types.FormatYAML {
		return nil, fmt.Errorf(errorUnknownFormat, format)
	}
	return &RecordRenderer{writer: writer, format: format, builder: NewRecordBuilder(rootPath, rootName)}, nil
}

// Handle adds one event to the record.
func (renderer *RecordRenderer) Handle(event walker.Event) error {
	return renderer.builder.Add(event)
}

// Flush writes the finished record.
func (renderer *RecordRenderer) Flush() error {
	if renderer.format == types.FormatYAML {
		return WriteRecordYAML(renderer.writer, renderer.builder.Root())
	}
	return WriteRecordJSON(renderer.writer, renderer.builder.Root())
}

// Root exposes the record collected so far.
func (renderer *RecordRenderer) Root() *Record {
	return renderer.builder.Root()
}

// Paths flattens a record into root-relative paths in pre-order. Directory paths end
// with a slash.
func Paths(record *Record) []string {
	var paths []string
	var visit func(node *Record, parentPath string)
	visit = func(node *Record, parentPath string) {
		for _, child := range node.Children {
			childPath := child.Name
			if parentPath != "" {
				childPath = parentPath + relativePathSeparator + child.Name
			}
			if child.IsDir() {
				paths = append(paths, childPath+relativePathSeparator)
			} else {
				paths = append(paths, childPath)
			}
			visit(child, childPath)
		}
	}
	visit(record, "")
	return paths
}

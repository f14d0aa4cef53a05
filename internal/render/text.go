package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/temirov/fstree/internal/types"
	"github.com/temirov/fstree/internal/walker"
)

const (
	branchConnector = "├── "
	lastConnector   = "└── "
	branchPadding   = "│   "
	lastPadding     = "    "

	directorySuffix      = "/"
	symlinkArrow         = " -> "
	permissionDeniedText = "[permission denied]"
	truncatedText        = "… (truncated)"
	lineBreak            = "\n"
)

// TextRenderer writes the connector-drawn text tree, one line per event.
type TextRenderer struct {
	writer  *bufio.Writer
	palette Palette
}

// NewTextRenderer builds a renderer writing to writer.
func NewTextRenderer(writer io.Writer, palette Palette) *TextRenderer {
	return &TextRenderer{writer: bufio.NewWriter(writer), palette: palette}
}

// Begin writes the root line. The relative label is printed as is; any other label
// gets a trailing slash.
func (renderer *TextRenderer) Begin(rootLabel string) error {
	return renderer.writeLine(RootLine(rootLabel))
}

// Handle writes the line for one event, followed by a truncation marker when needed.
func (renderer *TextRenderer) Handle(event walker.Event) error {
	switch event.Kind {
	case walker.EventPermissionDenied:
		return renderer.writeLine(renderer.palette.apply(renderer.palette.connector, Prefix(event.Ancestors)) +
			renderer.palette.apply(renderer.palette.denied, permissionDeniedText))
	case walker.EventNode:
		line := renderer.palette.apply(renderer.palette.connector, Prefix(event.Ancestors)) + renderer.label(event.Entry)
		if writeError := renderer.writeLine(line); writeError != nil {
			return writeError
		}
		if event.Truncated {
			return renderer.writeLine(renderer.palette.apply(renderer.palette.marker, Padding(event.Ancestors)+truncatedText))
		}
	}
	return nil
}

// Flush pushes buffered lines to the underlying writer.
func (renderer *TextRenderer) Flush() error {
	return renderer.writer.Flush()
}

func (renderer *TextRenderer) label(entry walker.Entry) string {
	name := entry.Name
	if entry.IsDir() {
		name += directorySuffix
	}
	switch {
	case entry.IsSymlink():
		name = renderer.palette.apply(renderer.palette.symlink, name) + symlinkArrow + entry.LinkTarget
	case entry.IsDir():
		name = renderer.palette.apply(renderer.palette.directory, name)
	}
	return name
}

func (renderer *TextRenderer) writeLine(line string) error {
	_, writeError := renderer.writer.WriteString(line + lineBreak)
	return writeError
}

// RootLine formats the first line of a text tree.
func RootLine(rootLabel string) string {
	if rootLabel == types.RelativeRootLabel {
		return rootLabel
	}
	return rootLabel + directorySuffix
}

// Prefix draws the connectors for a line: padding for every ancestor and a branch for
// the entry itself, the final flag.
func Prefix(flags []bool) string {
	if len(flags) == 0 {
		return ""
	}
	var builder strings.Builder
	builder.WriteString(Padding(flags[:len(flags)-1]))
	if flags[len(flags)-1] {
		builder.WriteString(lastConnector)
	} else {
		builder.WriteString(branchConnector)
	}
	return builder.String()
}

// Padding draws the vertical guides for flags with no connector.
func Padding(flags []bool) string {
	var builder strings.Builder
	for _, isLast := range flags {
		if isLast {
			builder.WriteString(lastPadding)
		} else {
			builder.WriteString(branchPadding)
		}
	}
	return builder.String()
}

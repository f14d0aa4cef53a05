// Package htmlview renders the record tree as a self-contained, interactive HTML page.
package htmlview

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/temirov/fstree/internal/classify"
	"github.com/temirov/fstree/internal/render"
)

//go:embed assets/tree.html.tmpl
var pageTemplateSource string

var pageTemplate = template.Must(template.New("tree").Parse(pageTemplateSource))

const (
	defaultTitleFormat   = "%s · fstree"
	outputFileName       = "tree.html"
	outputFilePermission = 0o644

	errorMissingTree  = "htmlview: page has no tree"
	errorRenderFormat = "rendering page: %w"
	errorWriteFormat  = "writing page %s: %w"
)

// Page is the data embedded in the document.
type Page struct {
	Title string
	Tree  *render.Record
	Roles map[string]classify.Role
}

// NewPage builds a page for tree, classifying every entry with table.
func NewPage(tree *render.Record, table classify.Table) Page {
	return Page{
		Title: fmt.Sprintf(defaultTitleFormat, tree.Name),
		Tree:  tree,
		Roles: table.Annotate(tree),
	}
}

// Render writes the page document to writer.
func Render(writer io.Writer, page Page) error {
	if page.Tree == nil {
		return errors.New(errorMissingTree)
	}
	if page.Roles == nil {
		page.Roles = map[string]classify.Role{}
	}
	if executeError := pageTemplate.Execute(writer, page); executeError != nil {
		return fmt.Errorf(errorRenderFormat, executeError)
	}
	return nil
}

// WriteFile renders the page into path, replacing any existing file.
func WriteFile(path string, page Page) error {
	var buffer bytes.Buffer
	if renderError := Render(&buffer, page); renderError != nil {
		return renderError
	}
	if writeError := os.WriteFile(path, buffer.Bytes(), outputFilePermission); writeError != nil {
		return fmt.Errorf(errorWriteFormat, path, writeError)
	}
	return nil
}

// DefaultOutputPath is the page location used when none is given.
func DefaultOutputPath() string {
	return filepath.Join(os.TempDir(), outputFileName)
}

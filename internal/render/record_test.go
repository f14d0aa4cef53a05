package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/fstree/internal/render"
	"github.com/temirov/fstree/internal/types"
	"github.com/temirov/fstree/internal/walker"
)

func syntheticEvents() []walker.Event {
	return []walker.Event{
		{Kind: walker.EventNode, Entry: walker.Entry{Name: "link", Path: "/proj/link", Kind: walker.KindSymlinkDirectory, LinkTarget: "src"}},
		{Kind: walker.EventNode, Entry: walker.Entry{Name: "src", Path: "/proj/src", Kind: walker.KindDirectory}},
		{Kind: walker.EventNode, Entry: walker.Entry{Name: "main.go", Path: "/proj/src/main.go", Kind: walker.KindFile}},
		{Kind: walker.EventPermissionDenied, Path: "/proj/src/locked"},
		{Kind: walker.EventNode, Entry: walker.Entry{Name: "a&b.txt", Path: "/proj/a&b.txt", Kind: walker.KindFile}},
	}
}

func buildRecord(t *testing.T, rootName string, events []walker.Event) *render.Record {
	t.Helper()
	builder := render.NewRecordBuilder("/proj", rootName)
	for _, event := range events {
		require.NoError(t, builder.Add(event))
	}
	return builder.Root()
}

func TestWriteRecordJSON(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	require.NoError(t, render.WriteRecordJSON(&buffer, buildRecord(t, "proj", syntheticEvents())))

	expected := strings.Join([]string{
		`{`,
		`  "name": "proj",`,
		`  "type": "dir",`,
		`  "children": [`,
		`    {`,
		`      "name": "link",`,
		`      "type": "dir",`,
		`      "symlink_to": "src",`,
		`      "children": []`,
		`    },`,
		`    {`,
		`      "name": "src",`,
		`      "type": "dir",`,
		`      "children": [`,
		`        {`,
		`          "name": "main.go",`,
		`          "type": "file"`,
		`        }`,
		`      ]`,
		`    },`,
		`    {`,
		`      "name": "a&b.txt",`,
		`      "type": "file"`,
		`    }`,
		`  ]`,
		`}`,
		``,
	}, "\n")
	assert.Equal(t, expected, buffer.String())
}

func TestWriteRecordJSONEmptyRoot(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	require.NoError(t, render.WriteRecordJSON(&buffer, buildRecord(t, types.RelativeRootLabel, nil)))
	assert.Equal(t, "{\n  \"name\": \".\",\n  \"type\": \"dir\",\n  \"children\": []\n}\n", buffer.String())
}

func TestWriteRecordYAML(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	require.NoError(t, render.WriteRecordYAML(&buffer, buildRecord(t, "proj", syntheticEvents())))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buffer.Bytes(), &decoded))
	assert.Equal(t, "proj", decoded["name"])
	assert.Equal(t, "dir", decoded["type"])

	children, ok := decoded["children"].([]interface{})
	require.True(t, ok)
	require.Len(t, children, 3)

	link := children[0].(map[string]interface{})
	assert.Equal(t, "src", link["symlink_to"])
	assert.Equal(t, []interface{}{}, link["children"])

	file := children[2].(map[string]interface{})
	assert.Equal(t, "a&b.txt", file["name"])
	_, hasChildren := file["children"]
	assert.False(t, hasChildren, "files carry no children")
}

func TestRecordBuilderRejectsOrphans(t *testing.T) {
	t.Parallel()

	builder := render.NewRecordBuilder("/proj", "proj")
	addError := builder.Add(walker.Event{
		Kind:  walker.EventNode,
		Entry: walker.Entry{Name: "x.txt", Path: "/proj/missing/x.txt", Kind: walker.KindFile},
	})
	assert.ErrorIs(t, addError, render.ErrOrphanEntry)
}

func TestRecordRendererFormats(t *testing.T) {
	t.Parallel()

	_, unknownError := render.NewRecordRenderer(&bytes.Buffer{}, "xml", "/proj", "proj")
	assert.Error(t, unknownError)

	var buffer bytes.Buffer
	renderer, rendererError := render.NewRecordRenderer(&buffer, types.FormatYAML, "/proj", "proj")
	require.NoError(t, rendererError)
	for _, event := range syntheticEvents() {
		require.NoError(t, renderer.Handle(event))
	}
	require.NoError(t, renderer.Flush())
	assert.Contains(t, buffer.String(), "symlink_to: src")
}

func TestRecordMatchesTextTree(t *testing.T) {
	t.Parallel()

	rootDirectory := createFixture(t, "app/page.tsx", "app/api/route.ts", "lib/util.ts", "README.md", "docs/guide.md")
	events, walkError := walker.Walk(walker.DefaultOptions(rootDirectory))
	require.NoError(t, walkError)

	builder := render.NewRecordBuilder(rootDirectory, "proj")
	var eventPaths []string
	for _, event := range events {
		require.NoError(t, builder.Add(event))
		path := event.Entry.RelativePath
		if event.Entry.IsDir() {
			path += "/"
		}
		eventPaths = append(eventPaths, path)
	}
	assert.Equal(t, eventPaths, render.Paths(builder.Root()))

	lines := strings.Split(strings.TrimSuffix(renderText(t, "proj", events), "\n"), "\n")
	assert.Len(t, lines, len(eventPaths)+1)
}

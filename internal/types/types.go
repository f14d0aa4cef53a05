// Package types defines every cross‑package constant and data structure used by the fstree CLI.
package types

const (
	RecordTypeFile      = "file"
	RecordTypeDirectory = "dir"

	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"

	// RelativeRootLabel replaces the root directory name in relative display mode.
	RelativeRootLabel = "."
	// UnreadableLinkTarget stands in for a symlink target that could not be read.
	UnreadableLinkTarget = "?"
	// UnlimitedDepth disables the depth limit.
	UnlimitedDepth = -1
)

// ValidatedRoot is an absolute, symlink-resolved directory that passed existence checks.
type ValidatedRoot struct {
	AbsolutePath string
	Name         string
}

// DisplayName returns the label used for the root in renderings.
func (root ValidatedRoot) DisplayName(relative bool) string {
	if relative {
		return RelativeRootLabel
	}
	return root.Name
}

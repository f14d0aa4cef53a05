// Package walker implements the lazy, filtered, pre-order traversal of a directory tree.
//
// A Walker yields one Event per visible entry. Directories precede their children,
// siblings are ordered directories first and then case-insensitively by name, and every
// event carries the ancestor-is-last flags that drive connector rendering. The walker
// keeps an explicit stack of open directories instead of recursing, so deep trees do not
// grow the call stack and callers can stop pulling at any point.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/temirov/fstree/internal/ignore"
	"github.com/temirov/fstree/internal/types"
)

// Kind classifies a filesystem entry.
type Kind string

const (
	KindFile             Kind = "file"
	KindDirectory        Kind = "dir"
	KindSymlinkDirectory Kind = "symlink-to-dir"
	KindSymlinkFile      Kind = "symlink-to-file"
)

// EventKind distinguishes visible entries from unreadable directories.
type EventKind string

const (
	EventNode             EventKind = "node"
	EventPermissionDenied EventKind = "permission-denied"
)

const (
	relativePathSeparator = "/"

	warningReadDirectoryFormat = "reading directory %s: %v"
	errorRootNotAbsolute       = "must be an absolute path"
	errorInvalidOptionsFormat  = "invalid walk options: %w"
)

// Entry is an immutable snapshot of one filesystem object taken at visit time.
type Entry struct {
	Name         string
	Path         string
	RelativePath string
	Kind         Kind
	Depth        int
	LinkTarget   string
	// RegularFile reports whether the entry, after following links, is a regular file.
	RegularFile bool
}

// IsDir reports whether the entry is a directory or a link to one.
func (entry Entry) IsDir() bool {
	return entry.Kind == KindDirectory || entry.Kind == KindSymlinkDirectory
}

// IsSymlink reports whether the entry is a symbolic link.
func (entry Entry) IsSymlink() bool {
	return entry.Kind == KindSymlinkDirectory || entry.Kind == KindSymlinkFile
}

// Event is a single step of the traversal.
type Event struct {
	Kind EventKind
	// Entry is set for EventNode.
	Entry Entry
	// Path is the unreadable directory for EventPermissionDenied.
	Path string
	// Ancestors holds one is-last-sibling flag per level. For a node the final flag
	// belongs to the node itself; for a denied directory they are the directory's own flags.
	Ancestors []bool
	// Truncated marks the last visible entry of a directory whose listing was cut.
	Truncated bool
}

// Options configures a traversal.
type Options struct {
	Root           string
	MaxDepth       int
	Rules          ignore.RuleSet
	ExtraIgnores   []string
	ShowHidden     bool
	DirsOnly       bool
	FilesOnly      bool
	LimitPerDir    int
	FollowSymlinks bool
	Warn           func(message string)
}

// DefaultOptions returns options for an unlimited walk of root.
func DefaultOptions(root string) Options {
	return Options{Root: root, MaxDepth: types.UnlimitedDepth}
}

// Validate checks option invariants.
func (options Options) Validate() error {
	return validation.ValidateStruct(&options,
		validation.Field(&options.Root, validation.Required, validation.By(requireAbsolutePath)),
		validation.Field(&options.MaxDepth, validation.Min(types.UnlimitedDepth)),
		validation.Field(&options.LimitPerDir, validation.Min(0)),
	)
}

func requireAbsolutePath(value interface{}) error {
	path, _ := value.(string)
	if !filepath.IsAbs(path) {
		return errors.New(errorRootNotAbsolute)
	}
	return nil
}

type frame struct {
	entries   []Entry
	index     int
	ancestors []bool
	truncated bool
}

type pendingDirectory struct {
	path         string
	relativePath string
	ancestors    []bool
	childDepth   int
}

// Walker produces traversal events on demand. It is not restartable and not safe for
// concurrent use.
type Walker struct {
	options Options
	stack   []*frame
	pending *pendingDirectory
}

// New validates options and prepares a walker positioned before the root's listing.
func New(options Options) (*Walker, error) {
	if validationError := options.Validate(); validationError != nil {
		return nil, fmt.Errorf(errorInvalidOptionsFormat, validationError)
	}
	if options.Warn == nil {
		options.Warn = func(string) {}
	}
	return &Walker{
		options: options,
		pending: &pendingDirectory{path: options.Root, childDepth: 1},
	}, nil
}

// Next returns the next event, or false once the traversal is exhausted.
func (walker *Walker) Next() (Event, bool) {
	for {
		if walker.pending != nil {
			directory := walker.pending
			walker.pending = nil
			opened, denied := walker.open(directory)
			if denied != nil {
				return *denied, true
			}
			if opened != nil {
				walker.stack = append(walker.stack, opened)
			}
			continue
		}
		if len(walker.stack) == 0 {
			return Event{}, false
		}
		top := walker.stack[len(walker.stack)-1]
		if top.index >= len(top.entries) {
			walker.stack = walker.stack[:len(walker.stack)-1]
			continue
		}
		entry := top.entries[top.index]
		top.index++
		isLast := top.index == len(top.entries)
		ancestors := make([]bool, len(top.ancestors)+1)
		copy(ancestors, top.ancestors)
		ancestors[len(top.ancestors)] = isLast
		if walker.shouldExpand(entry) {
			walker.pending = &pendingDirectory{
				path:         entry.Path,
				relativePath: entry.RelativePath,
				ancestors:    ancestors,
				childDepth:   entry.Depth + 1,
			}
		}
		return Event{Kind: EventNode, Entry: entry, Ancestors: ancestors, Truncated: top.truncated && isLast}, true
	}
}

// Events adapts the walker to a range-over-func sequence.
func (walker *Walker) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			event, ok := walker.Next()
			if !ok || !yield(event) {
				return
			}
		}
	}
}

// Walk runs a complete traversal and collects every event.
func Walk(options Options) ([]Event, error) {
	walker, walkerError := New(options)
	if walkerError != nil {
		return nil, walkerError
	}
	var events []Event
	for event := range walker.Events() {
		events = append(events, event)
	}
	return events, nil
}

func (walker *Walker) shouldExpand(entry Entry) bool {
	if !entry.IsDir() {
		return false
	}
	if walker.options.MaxDepth != types.UnlimitedDepth && entry.Depth >= walker.options.MaxDepth {
		return false
	}
	if entry.IsSymlink() && !walker.options.FollowSymlinks {
		return false
	}
	return true
}

// open lists a directory and returns its frame of visible entries. A permission error
// yields a denied event instead; other listing errors are reported and leave the
// directory empty.
func (walker *Walker) open(directory *pendingDirectory) (*frame, *Event) {
	directoryEntries, readError := os.ReadDir(directory.path)
	if readError != nil {
		if errors.Is(readError, fs.ErrPermission) {
			return nil, &Event{Kind: EventPermissionDenied, Path: directory.path, Ancestors: directory.ancestors}
		}
		walker.options.Warn(fmt.Sprintf(warningReadDirectoryFormat, directory.path, readError))
		return nil, nil
	}

	entries := make([]Entry, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		entries = append(entries, describe(directoryEntry, directory))
	}
	sortEntries(entries)

	truncated := false
	if walker.options.LimitPerDir > 0 && len(entries) > walker.options.LimitPerDir {
		entries = entries[:walker.options.LimitPerDir]
		truncated = true
	}

	visible := entries[:0]
	for _, entry := range entries {
		if walker.isVisible(entry) {
			visible = append(visible, entry)
		}
	}
	if len(visible) == 0 {
		return nil, nil
	}
	return &frame{entries: visible, ancestors: directory.ancestors, truncated: truncated}, nil
}

func (walker *Walker) isVisible(entry Entry) bool {
	if walker.options.Rules.IsIgnored(entry.Name, entry.RelativePath, walker.options.ExtraIgnores, walker.options.ShowHidden) {
		return false
	}
	if walker.options.DirsOnly && !entry.IsDir() {
		return false
	}
	if walker.options.FilesOnly && !entry.RegularFile {
		return false
	}
	return true
}

func describe(directoryEntry fs.DirEntry, parent *pendingDirectory) Entry {
	name := directoryEntry.Name()
	relativePath := name
	if parent.relativePath != "" {
		relativePath = parent.relativePath + relativePathSeparator + name
	}
	entry := Entry{
		Name:         name,
		Path:         filepath.Join(parent.path, name),
		RelativePath: relativePath,
		Depth:        parent.childDepth,
	}

	if directoryEntry.Type()&fs.ModeSymlink != 0 {
		linkTarget, readLinkError := os.Readlink(entry.Path)
		if readLinkError != nil {
			linkTarget = types.UnreadableLinkTarget
		}
		entry.LinkTarget = linkTarget
		entry.Kind = KindSymlinkFile
		if targetInfo, statError := os.Stat(entry.Path); statError == nil {
			if targetInfo.IsDir() {
				entry.Kind = KindSymlinkDirectory
			}
			entry.RegularFile = targetInfo.Mode().IsRegular()
		}
		return entry
	}

	if directoryEntry.IsDir() {
		entry.Kind = KindDirectory
		return entry
	}
	entry.Kind = KindFile
	entry.RegularFile = directoryEntry.Type().IsRegular()
	return entry
}

// sortEntries orders directories before everything else, then by case-folded name,
// falling back to the raw name so the order is total.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(left, right int) bool {
		leftEntry, rightEntry := entries[left], entries[right]
		if leftEntry.IsDir() != rightEntry.IsDir() {
			return leftEntry.IsDir()
		}
		leftName, rightName := strings.ToLower(leftEntry.Name), strings.ToLower(rightEntry.Name)
		if leftName != rightName {
			return leftName < rightName
		}
		return leftEntry.Name < rightEntry.Name
	})
}

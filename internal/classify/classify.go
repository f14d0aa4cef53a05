// Package classify assigns a human-readable role to paths of a project tree.
package classify

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"gopkg.in/yaml.v3"

	"github.com/temirov/fstree/internal/render"
)

// Kind restricts a rule to directories, files, or both.
type Kind string

const (
	KindAny       Kind = "any"
	KindDirectory Kind = "dir"
	KindFile      Kind = "file"
)

const (
	pathSeparator       = "/"
	extensionSeparator  = "."
	fallbackDirectory   = "Directory"
	fallbackFile        = "File"
	errorReadFormat     = "reading classification table %s: %w"
	errorDecodeFormat   = "decoding classification table %s: %w"
	errorRuleFormat     = "classification rule %d: %w"
	errorPatternMessage = "must be a valid regular expression"
)

// Role is the label and description shown for a path.
type Role struct {
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Rule matches when every condition it sets holds. Prefixes match the path itself or
// anything below it, names and extensions apply to the last path element, and the
// pattern is a regular expression over the whole root-relative path.
type Rule struct {
	Label       string   `yaml:"label"`
	Description string   `yaml:"description"`
	Kind        Kind     `yaml:"kind"`
	Prefixes    []string `yaml:"prefixes"`
	Names       []string `yaml:"names"`
	Extensions  []string `yaml:"extensions"`
	Pattern     string   `yaml:"pattern"`

	compiled *regexp.Regexp
}

// Validate checks that the rule can be compiled.
func (rule Rule) Validate() error {
	return validation.ValidateStruct(&rule,
		validation.Field(&rule.Label, validation.Required),
		validation.Field(&rule.Kind, validation.In(KindAny, KindDirectory, KindFile)),
		validation.Field(&rule.Pattern, validation.By(requireRegexp)),
	)
}

func requireRegexp(value interface{}) error {
	pattern, _ := value.(string)
	if _, compileError := regexp.Compile(pattern); compileError != nil {
		return errors.New(errorPatternMessage)
	}
	return nil
}

func (rule Rule) matches(relativePath string, name string, extension string, isDirectory bool) bool {
	switch rule.Kind {
	case KindDirectory:
		if !isDirectory {
			return false
		}
	case KindFile:
		if isDirectory {
			return false
		}
	}
	if len(rule.Prefixes) > 0 && !hasAnyPrefix(relativePath, rule.Prefixes) {
		return false
	}
	if len(rule.Names) > 0 && !containsFold(rule.Names, name, false) {
		return false
	}
	if len(rule.Extensions) > 0 && !containsFold(rule.Extensions, extension, true) {
		return false
	}
	if rule.compiled != nil && !rule.compiled.MatchString(relativePath) {
		return false
	}
	return true
}

func hasAnyPrefix(relativePath string, prefixes []string) bool {
	for _, prefix := range prefixes {
		trimmedPrefix := strings.TrimSuffix(prefix, pathSeparator)
		if relativePath == trimmedPrefix || strings.HasPrefix(relativePath, trimmedPrefix+pathSeparator) {
			return true
		}
	}
	return false
}

func containsFold(values []string, candidate string, foldCase bool) bool {
	for _, value := range values {
		if value == candidate || (foldCase && strings.EqualFold(value, candidate)) {
			return true
		}
	}
	return false
}

// Table is an ordered rule list; the first matching rule wins.
type Table struct {
	rules []Rule
}

type tableDocument struct {
	Rules []Rule `yaml:"rules"`
}

// NewTable validates and compiles rules.
func NewTable(rules []Rule) (Table, error) {
	compiledRules := make([]Rule, 0, len(rules))
	for index, rule := range rules {
		if rule.Kind == "" {
			rule.Kind = KindAny
		}
		if validationError := rule.Validate(); validationError != nil {
			return Table{}, fmt.Errorf(errorRuleFormat, index, validationError)
		}
		if rule.Pattern != "" {
			rule.compiled = regexp.MustCompile(rule.Pattern)
		}
		compiledRules = append(compiledRules, rule)
	}
	return Table{rules: compiledRules}, nil
}

// LoadFile reads a YAML table of the form `rules: [{label, description, kind, prefixes,
// names, extensions, pattern}]`.
//
// #nosec G304
func LoadFile(path string) (Table, error) {
	content, readError := os.ReadFile(path)
	if readError != nil {
		return Table{}, fmt.Errorf(errorReadFormat, path, readError)
	}
	var document tableDocument
	if decodeError := yaml.Unmarshal(content, &document); decodeError != nil {
		return Table{}, fmt.Errorf(errorDecodeFormat, path, decodeError)
	}
	table, tableError := NewTable(document.Rules)
	if tableError != nil {
		return Table{}, fmt.Errorf(errorDecodeFormat, path, tableError)
	}
	return table, nil
}

// Len reports the number of rules.
func (table Table) Len() int {
	return len(table.rules)
}

// Classify returns the role of a slash-separated, root-relative path. Paths that no rule
// matches fall back to a generic directory or file role.
func (table Table) Classify(relativePath string, isDirectory bool) Role {
	normalizedPath := strings.ReplaceAll(relativePath, `\`, pathSeparator)
	name := normalizedPath
	if separatorIndex := strings.LastIndex(normalizedPath, pathSeparator); separatorIndex >= 0 {
		name = normalizedPath[separatorIndex+1:]
	}
	extension := Extension(name)
	for _, rule := range table.rules {
		if rule.matches(normalizedPath, name, extension, isDirectory) {
			return Role{Label: rule.Label, Description: rule.Description}
		}
	}
	if isDirectory {
		return Role{Label: fallbackDirectory}
	}
	return Role{Label: fallbackFile}
}

// Annotate classifies every node below the root of record, keyed by root-relative path.
func (table Table) Annotate(record *render.Record) map[string]Role {
	roles := make(map[string]Role)
	var visit func(node *render.Record, parentPath string)
	visit = func(node *render.Record, parentPath string) {
		for _, child := range node.Children {
			childPath := child.Name
			if parentPath != "" {
				childPath = parentPath + pathSeparator + child.Name
			}
			roles[childPath] = table.Classify(childPath, child.IsDir())
			visit(child, childPath)
		}
	}
	visit(record, "")
	return roles
}

// Extension returns the lower-cased text after the last dot of name, or "" when there is none.
func Extension(name string) string {
	dotIndex := strings.LastIndex(name, extensionSeparator)
	if dotIndex < 0 {
		return ""
	}
	return strings.ToLower(name[dotIndex+1:])
}

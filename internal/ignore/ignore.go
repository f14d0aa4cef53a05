// Package ignore loads project ignore files and decides whether a path is hidden from the tree.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/fstree/internal/glob"
	"github.com/temirov/fstree/internal/utils"
)

const (
	// anchorPrefix marks a pattern that only matches the root-relative path.
	anchorPrefix = "/"
	// commentPrefix starts a line that carries no pattern.
	commentPrefix = "#"
	// hiddenPrefix marks hidden entries.
	hiddenPrefix = "."

	errorLoadFormat = "loading %s from %s: %w"
)

// Rule is a single compiled ignore pattern.
type Rule struct {
	Pattern  string
	Anchored bool
}

// matches reports whether the rule excludes an entry with the given bare name and root-relative path.
func (rule Rule) matches(name, relativePath string) bool {
	if rule.Anchored {
		return glob.Match(rule.Pattern, relativePath)
	}
	return glob.Match(rule.Pattern, name) || glob.Match(rule.Pattern, relativePath)
}

// RuleSet is an immutable collection of rules. Any matching rule excludes the entry,
// so the order of rules never changes the outcome.
type RuleSet struct {
	rules []Rule
}

// LoadOptions selects which ignore files at the root are read.
type LoadOptions struct {
	UseGitignore  bool
	UseIgnoreFile bool
}

// DefaultLoadOptions reads both the .gitignore and the .ignore file.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{UseGitignore: true, UseIgnoreFile: true}
}

// NewRuleSet compiles patterns written in ignore-file syntax.
func NewRuleSet(patterns ...string) RuleSet {
	rules := make([]Rule, 0, len(patterns))
	for _, pattern := range utils.DeduplicatePatterns(patterns) {
		if rule, ok := ParseRule(pattern); ok {
			rules = append(rules, rule)
		}
	}
	return RuleSet{rules: rules}
}

// ParseRule converts one ignore-file line into a rule. Blank lines and comments yield false.
func ParseRule(line string) (Rule, bool) {
	trimmedLine := strings.TrimSpace(line)
	if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
		return Rule{}, false
	}
	if strings.HasPrefix(trimmedLine, anchorPrefix) {
		return Rule{Pattern: strings.TrimLeft(trimmedLine, anchorPrefix), Anchored: true}, true
	}
	return Rule{Pattern: trimmedLine}, true
}

// Load reads the ignore files found directly under root. Missing files contribute no rules.
func Load(root string, options LoadOptions) (RuleSet, error) {
	var patterns []string
	if options.UseGitignore {
		gitIgnorePatterns, loadError := LoadFilePatterns(filepath.Join(root, utils.GitIgnoreFileName))
		if loadError != nil {
			return RuleSet{}, fmt.Errorf(errorLoadFormat, utils.GitIgnoreFileName, root, loadError)
		}
		patterns = append(patterns, gitIgnorePatterns...)
	}
	if options.UseIgnoreFile {
		ignoreFilePatterns, loadError := LoadFilePatterns(filepath.Join(root, utils.IgnoreFileName))
		if loadError != nil {
			return RuleSet{}, fmt.Errorf(errorLoadFormat, utils.IgnoreFileName, root, loadError)
		}
		patterns = append(patterns, ignoreFilePatterns...)
	}
	return NewRuleSet(patterns...), nil
}

// LoadFilePatterns reads an ignore file and returns its pattern lines.
// A file that does not exist yields no patterns and no error.
//
// #nosec G304
func LoadFilePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer fileHandle.Close()

	var patterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		if rule, ok := ParseRule(scanner.Text()); ok {
			if rule.Anchored {
				patterns = append(patterns, anchorPrefix+rule.Pattern)
				continue
			}
			patterns = append(patterns, rule.Pattern)
		}
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return patterns, nil
}

// Rules returns a copy of the compiled rules.
func (ruleSet RuleSet) Rules() []Rule {
	return append([]Rule(nil), ruleSet.rules...)
}

// Len reports the number of compiled rules.
func (ruleSet RuleSet) Len() int {
	return len(ruleSet.rules)
}

// IsIgnored reports whether an entry is excluded. Hidden entries are excluded first
// unless showHidden is set. Extra patterns match the bare name or the relative path
// regardless of a leading separator; rule-set patterns follow their anchoring.
func (ruleSet RuleSet) IsIgnored(name string, relativePath string, extraPatterns []string, showHidden bool) bool {
	if !showHidden && strings.HasPrefix(name, hiddenPrefix) {
		return true
	}
	for _, pattern := range extraPatterns {
		if glob.Match(pattern, name) || glob.Match(pattern, relativePath) {
			return true
		}
	}
	for _, rule := range ruleSet.rules {
		if rule.matches(name, relativePath) {
			return true
		}
	}
	return false
}

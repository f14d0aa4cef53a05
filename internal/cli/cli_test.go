package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/temirov/fstree/internal/services/clipboard"
	"github.com/temirov/fstree/internal/utils"
)

const (
	fixtureRootName  = "proj"
	expectedTreeText = "proj/\n" +
		"├── b/\n" +
		"│   └── c.txt\n" +
		"├── Z/\n" +
		"├── a.txt\n" +
		"└── B.txt\n"
)

type commandResult struct {
	stdout string
	stderr string
	err    error
}

// buildProject creates proj/{b/c.txt, Z/, a.txt, B.txt, .hidden} under a temporary directory.
func buildProject(testingHandle *testing.T) (string, string) {
	testingHandle.Helper()
	workingDirectory := testingHandle.TempDir()
	projectRoot := filepath.Join(workingDirectory, fixtureRootName)
	for _, directory := range []string{"b", "Z"} {
		if err := os.MkdirAll(filepath.Join(projectRoot, directory), 0o755); err != nil {
			testingHandle.Fatalf("mkdir %s: %v", directory, err)
		}
	}
	for _, file := range []string{"b/c.txt", "a.txt", "B.txt", ".hidden"} {
		if err := os.WriteFile(filepath.Join(projectRoot, file), []byte(file), 0o644); err != nil {
			testingHandle.Fatalf("write %s: %v", file, err)
		}
	}
	return workingDirectory, projectRoot
}

func runCommand(testingHandle *testing.T, dependencies Dependencies, arguments ...string) commandResult {
	testingHandle.Helper()
	var stdout, stderr bytes.Buffer
	dependencies.Stdout = &stdout
	dependencies.Stderr = &stderr
	if dependencies.HomeDirectory == "" {
		dependencies.HomeDirectory = testingHandle.TempDir()
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.CopierFunc(func(string) error {
			testingHandle.Fatalf("clipboard used unexpectedly")
			return nil
		})
	}
	rootCommand, err := NewRootCommand(dependencies)
	if err != nil {
		testingHandle.Fatalf("new root command: %v", err)
	}
	rootCommand.SetArgs(arguments)
	executeErr := rootCommand.ExecuteContext(context.Background())
	return commandResult{stdout: stdout.String(), stderr: stderr.String(), err: executeErr}
}

func TestTreeCommandPrintsText(testingHandle *testing.T) {
	workingDirectory, _ := buildProject(testingHandle)
	result := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory}, "tree", fixtureRootName)
	if result.err != nil {
		testingHandle.Fatalf("tree: %v", result.err)
	}
	if result.stdout != expectedTreeText {
		testingHandle.Fatalf("unexpected tree:\n%s", result.stdout)
	}
}

func TestTreeCommandAliasAndDefaultPath(testingHandle *testing.T) {
	_, projectRoot := buildProject(testingHandle)
	result := runCommand(testingHandle, Dependencies{WorkingDirectory: projectRoot}, "t", "--relative", "-d", "1")
	if result.err != nil {
		testingHandle.Fatalf("tree: %v", result.err)
	}
	expected := ".\n├── b/\n├── Z/\n├── a.txt\n└── B.txt\n"
	if result.stdout != expected {
		testingHandle.Fatalf("unexpected tree:\n%s", result.stdout)
	}
}

func TestTreeCommandFilters(testingHandle *testing.T) {
	workingDirectory, _ := buildProject(testingHandle)
	testCases := []struct {
		name      string
		arguments []string
		expected  string
	}{
		{
			name:      "show_hidden",
			arguments: []string{"--show-hidden", "-d", "1"},
			expected:  "proj/\n├── b/\n├── Z/\n├── .hidden\n├── a.txt\n└── B.txt\n",
		},
		{
			name:      "ignore_pattern",
			arguments: []string{"-I", "b", "-I", "*.TXT"},
			expected:  "proj/\n├── Z/\n├── a.txt\n└── B.txt\n",
		},
		{
			name:      "dirs_only",
			arguments: []string{"--dirs-only"},
			expected:  "proj/\n├── b/\n└── Z/\n",
		},
		{
			name:      "limit_per_dir",
			arguments: []string{"--limit-per-dir", "2", "-d", "1"},
			expected:  "proj/\n├── b/\n└── Z/\n    … (truncated)\n",
		},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			arguments := append([]string{"tree", fixtureRootName}, testCase.arguments...)
			result := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory}, arguments...)
			if result.err != nil {
				testingHandle.Fatalf("tree: %v", result.err)
			}
			if result.stdout != testCase.expected {
				testingHandle.Fatalf("unexpected tree:\n%s", result.stdout)
			}
		})
	}
}

func TestTreeCommandRecordFormats(testingHandle *testing.T) {
	workingDirectory, _ := buildProject(testingHandle)

	jsonResult := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory}, "tree", fixtureRootName, "--json", "-d", "1")
	if jsonResult.err != nil {
		testingHandle.Fatalf("tree --json: %v", jsonResult.err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(jsonResult.stdout), &decoded); err != nil {
		testingHandle.Fatalf("decode json: %v\n%s", err, jsonResult.stdout)
	}
	if decoded["name"] != fixtureRootName || decoded["type"] != "dir" {
		testingHandle.Fatalf("unexpected root record %v", decoded)
	}
	children, _ := decoded["children"].([]any)
	if len(children) != 4 {
		testingHandle.Fatalf("expected 4 children, got %d", len(children))
	}

	yamlResult := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory}, "tree", fixtureRootName, "--format", "yaml", "--relative", "--files-only")
	if yamlResult.err != nil {
		testingHandle.Fatalf("tree --format yaml: %v", yamlResult.err)
	}
	var yamlDecoded map[string]any
	if err := yaml.Unmarshal([]byte(yamlResult.stdout), &yamlDecoded); err != nil {
		testingHandle.Fatalf("decode yaml: %v\n%s", err, yamlResult.stdout)
	}
	if yamlDecoded["name"] != "." {
		testingHandle.Fatalf("expected relative root name, got %v", yamlDecoded["name"])
	}
	yamlChildren, _ := yamlDecoded["children"].([]any)
	if len(yamlChildren) != 2 {
		testingHandle.Fatalf("expected 2 files, got %v", yamlChildren)
	}
}

func TestTreeCommandRejectsUnknownFormat(testingHandle *testing.T) {
	workingDirectory, _ := buildProject(testingHandle)
	result := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory}, "tree", fixtureRootName, "--format", "xml")
	if result.err == nil || !strings.Contains(result.err.Error(), "invalid tree flags") {
		testingHandle.Fatalf("expected invalid flags error, got %v", result.err)
	}
}

func TestTreeCommandMissingRoot(testingHandle *testing.T) {
	workingDirectory, projectRoot := buildProject(testingHandle)
	testCases := []struct {
		name     string
		argument string
	}{
		{name: "missing", argument: "absent"},
		{name: "file", argument: filepath.Join(projectRoot, "a.txt")},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			result := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory}, "tree", testCase.argument)
			var exitError *ExitError
			if !errors.As(result.err, &exitError) || exitError.Code != exitCodeInvalidRoot {
				testingHandle.Fatalf("expected exit status %d, got %v", exitCodeInvalidRoot, result.err)
			}
			if !strings.HasPrefix(result.stderr, "Error: directory not found: ") {
				testingHandle.Fatalf("unexpected stderr %q", result.stderr)
			}
			if result.stdout != "" {
				testingHandle.Fatalf("expected no stdout, got %q", result.stdout)
			}
		})
	}
}

func TestTreeCommandHonorsConfigurationAndFlags(testingHandle *testing.T) {
	workingDirectory, _ := buildProject(testingHandle)
	configuration := "traversal:\n  max_depth: 1\n  dirs_only: true\n"
	if err := os.WriteFile(filepath.Join(workingDirectory, utils.ConfigFileName), []byte(configuration), 0o644); err != nil {
		testingHandle.Fatalf("write configuration: %v", err)
	}

	configured := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory}, "tree", fixtureRootName)
	if configured.err != nil {
		testingHandle.Fatalf("tree: %v", configured.err)
	}
	if configured.stdout != "proj/\n├── b/\n└── Z/\n" {
		testingHandle.Fatalf("configuration not applied:\n%s", configured.stdout)
	}

	overridden := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory}, "tree", fixtureRootName, "--dirs-only=no", "-d", "-1")
	if overridden.err != nil {
		testingHandle.Fatalf("tree: %v", overridden.err)
	}
	if overridden.stdout != expectedTreeText {
		testingHandle.Fatalf("flags did not override configuration:\n%s", overridden.stdout)
	}
}

func TestTreeCommandReadsRootIgnoreFiles(testingHandle *testing.T) {
	workingDirectory, projectRoot := buildProject(testingHandle)
	if err := os.WriteFile(filepath.Join(projectRoot, utils.GitIgnoreFileName), []byte("/b\n"), 0o644); err != nil {
		testingHandle.Fatalf("write gitignore: %v", err)
	}

	ignored := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory}, "tree", fixtureRootName)
	if ignored.err != nil {
		testingHandle.Fatalf("tree: %v", ignored.err)
	}
	if strings.Contains(ignored.stdout, "b/") {
		testingHandle.Fatalf("expected b/ to be ignored:\n%s", ignored.stdout)
	}

	unfiltered := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory}, "tree", fixtureRootName, "--no-gitignore")
	if unfiltered.err != nil {
		testingHandle.Fatalf("tree: %v", unfiltered.err)
	}
	if unfiltered.stdout != expectedTreeText {
		testingHandle.Fatalf("expected full tree:\n%s", unfiltered.stdout)
	}
}

func TestTreeCommandCopiesToClipboard(testingHandle *testing.T) {
	workingDirectory, _ := buildProject(testingHandle)
	var copied string
	copier := clipboard.CopierFunc(func(text string) error {
		copied = text
		return nil
	})
	result := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory, Clipboard: copier}, "tree", fixtureRootName, "--clipboard", "--color", "always")
	if result.err != nil {
		testingHandle.Fatalf("tree: %v", result.err)
	}
	if copied != expectedTreeText || result.stdout != expectedTreeText {
		testingHandle.Fatalf("expected plain tree on stdout and clipboard, got %q and %q", result.stdout, copied)
	}

	failing := clipboard.CopierFunc(func(string) error { return clipboard.ErrUnavailable })
	failed := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory, Clipboard: failing}, "tree", fixtureRootName, "--clipboard")
	if !errors.Is(failed.err, clipboard.ErrUnavailable) {
		testingHandle.Fatalf("expected clipboard error, got %v", failed.err)
	}
}

func TestHTMLCommandWritesPage(testingHandle *testing.T) {
	workingDirectory, _ := buildProject(testingHandle)
	result := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory}, "html", fixtureRootName, "-o", "tree.html")
	if result.err != nil {
		testingHandle.Fatalf("html: %v", result.err)
	}
	expectedPath := filepath.Join(workingDirectory, "tree.html")
	if strings.TrimSpace(result.stdout) != expectedPath {
		testingHandle.Fatalf("expected printed path %s, got %q", expectedPath, result.stdout)
	}
	content, err := os.ReadFile(expectedPath)
	if err != nil {
		testingHandle.Fatalf("read page: %v", err)
	}
	page := string(content)
	for _, fragment := range []string{"<!doctype html>", "const DATA = ", `"c.txt"`, "const ROLES = "} {
		if !strings.Contains(page, fragment) {
			testingHandle.Fatalf("page is missing %q", fragment)
		}
	}
}

func TestHTMLCommandRejectsInvalidRoles(testingHandle *testing.T) {
	workingDirectory, _ := buildProject(testingHandle)
	if err := os.WriteFile(filepath.Join(workingDirectory, "roles.yaml"), []byte("rules:\n  - pattern: \"(\"\n    label: Broken\n"), 0o644); err != nil {
		testingHandle.Fatalf("write roles: %v", err)
	}
	result := runCommand(testingHandle, Dependencies{WorkingDirectory: workingDirectory}, "html", fixtureRootName, "-o", "tree.html", "--roles", "roles.yaml")
	if result.err == nil {
		testingHandle.Fatalf("expected invalid roles to fail")
	}
	if _, statErr := os.Stat(filepath.Join(workingDirectory, "tree.html")); !os.IsNotExist(statErr) {
		testingHandle.Fatalf("expected no page to be written, got %v", statErr)
	}
}

func TestInitCommandWritesConfiguration(testingHandle *testing.T) {
	workingDirectory := testingHandle.TempDir()
	homeDirectory := testingHandle.TempDir()
	dependencies := Dependencies{WorkingDirectory: workingDirectory, HomeDirectory: homeDirectory}

	local := runCommand(testingHandle, dependencies, "init")
	if local.err != nil {
		testingHandle.Fatalf("init: %v", local.err)
	}
	localPath := filepath.Join(workingDirectory, utils.ConfigFileName)
	if local.stdout != "configuration written to "+localPath+"\n" {
		testingHandle.Fatalf("unexpected output %q", local.stdout)
	}
	if repeated := runCommand(testingHandle, dependencies, "init"); repeated.err == nil {
		testingHandle.Fatalf("expected init without --force to refuse overwriting")
	}
	if forced := runCommand(testingHandle, dependencies, "init", "--force"); forced.err != nil {
		testingHandle.Fatalf("init --force: %v", forced.err)
	}

	global := runCommand(testingHandle, dependencies, "init", "--global")
	if global.err != nil {
		testingHandle.Fatalf("init --global: %v", global.err)
	}
	if !strings.HasPrefix(global.stdout, "configuration written to "+homeDirectory) {
		testingHandle.Fatalf("unexpected output %q", global.stdout)
	}
}

func TestVersionFlag(testingHandle *testing.T) {
	result := runCommand(testingHandle, Dependencies{WorkingDirectory: testingHandle.TempDir()}, "--version")
	var exitError *ExitError
	if !errors.As(result.err, &exitError) || exitError.Code != 0 {
		testingHandle.Fatalf("expected a zero exit error, got %v", result.err)
	}
	if !strings.HasPrefix(result.stdout, "fstree version: ") {
		testingHandle.Fatalf("unexpected version output %q", result.stdout)
	}
}

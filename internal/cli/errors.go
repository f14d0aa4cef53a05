package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/temirov/fstree/internal/types"
)

const (
	exitCodeInvalidRoot         = 2
	errorDirectoryMissingFormat = "Error: directory not found: %s"
)

// ExitError ends the program with Code after Message, if any, was shown to the user.
type ExitError struct {
	Code    int
	Message string
}

func (exitError *ExitError) Error() string {
	if exitError.Message == "" {
		return fmt.Sprintf("exit status %d", exitError.Code)
	}
	return exitError.Message
}

// resolveRoot turns a path argument into an absolute, symlink-resolved directory.
// Anything that is not an existing directory is reported on stderr as exit status 2.
func resolveRoot(command *cobra.Command, argument string, workingDirectory string) (types.ValidatedRoot, error) {
	candidate := argument
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(workingDirectory, candidate)
	}
	absolutePath := filepath.Clean(candidate)
	resolvedPath, evalError := filepath.EvalSymlinks(absolutePath)
	if evalError == nil {
		absolutePath = resolvedPath
		if info, statError := os.Stat(resolvedPath); statError == nil && info.IsDir() {
			return types.ValidatedRoot{AbsolutePath: resolvedPath, Name: rootName(resolvedPath)}, nil
		}
	}
	message := fmt.Sprintf(errorDirectoryMissingFormat, absolutePath)
	fmt.Fprintln(command.ErrOrStderr(), message)
	return types.ValidatedRoot{}, &ExitError{Code: exitCodeInvalidRoot, Message: message}
}

func rootName(absolutePath string) string {
	name := filepath.Base(absolutePath)
	if name == string(filepath.Separator) || name == filepath.VolumeName(absolutePath)+string(filepath.Separator) {
		return ""
	}
	return name
}

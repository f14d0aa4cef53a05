// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fstree/internal/config"
	"github.com/temirov/fstree/internal/services/clipboard"
	"github.com/temirov/fstree/internal/utils"
)

const (
	versionFlagName        = "version"
	configFlagName         = "config"
	versionTemplate        = "fstree version: %s\n"
	rootUse                = "fstree"
	rootShortDescription   = "render directory trees"
	rootLongDescription    = `fstree renders a directory as a connector-drawn text tree, a JSON or YAML record,
or an interactive HTML page with search and role hints. Ignore rules come from .gitignore and
.ignore at the root plus any --ignore patterns. Defaults are read from ~/.fstree/config.yaml and
./.fstree.yaml; command-line flags win.`
	versionFlagDescription = "display application version"
	configFlagDescription  = "configuration file used instead of ./.fstree.yaml"
	defaultPath            = "."

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
)

// Dependencies carries the collaborators commands use. Zero values are replaced with
// production implementations.
type Dependencies struct {
	Logger           *zap.Logger
	Clipboard        clipboard.Copier
	WorkingDirectory string
	HomeDirectory    string
	Stdout           io.Writer
	Stderr           io.Writer
}

func (dependencies Dependencies) withDefaults() (Dependencies, error) {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	if dependencies.WorkingDirectory == "" {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return Dependencies{}, fmt.Errorf(workingDirectoryErrorFormat, err)
		}
		dependencies.WorkingDirectory = workingDirectory
	}
	return dependencies, nil
}

// Execute runs the fstree application with os.Args.
func Execute(ctx context.Context, dependencies Dependencies) error {
	rootCommand, err := NewRootCommand(dependencies)
	if err != nil {
		return err
	}
	return rootCommand.ExecuteContext(ctx)
}

// application holds state shared by every subcommand of one invocation.
type application struct {
	dependencies      Dependencies
	configurationPath string
}

func (app *application) loadConfiguration() (config.ApplicationConfiguration, error) {
	return config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: app.dependencies.WorkingDirectory,
		ExplicitFilePath: app.configurationPath,
		HomeDirectory:    app.dependencies.HomeDirectory,
	})
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) (*cobra.Command, error) {
	resolvedDependencies, err := dependencies.withDefaults()
	if err != nil {
		return nil, err
	}
	app := &application{dependencies: resolvedDependencies}
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return &ExitError{Code: 0}
			}
			return nil
		},
	}
	if resolvedDependencies.Stdout != nil {
		rootCommand.SetOut(resolvedDependencies.Stdout)
	}
	if resolvedDependencies.Stderr != nil {
		rootCommand.SetErr(resolvedDependencies.Stderr)
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configurationPath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		createTreeCommand(app),
		createHTMLCommand(app),
		createServeCommand(app),
		createInitCommand(app),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand, nil
}

func pathArgument(arguments []string) string {
	if len(arguments) == 0 {
		return defaultPath
	}
	return arguments[0]
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/fstree/internal/config"
)

const (
	initUse                  = "init"
	initShortDescription     = "write a default configuration file"
	globalFlagName           = "global"
	forceFlagName            = "force"
	globalFlagDescription    = "write ~/.fstree/config.yaml instead of ./.fstree.yaml"
	forceFlagDescription     = "overwrite an existing configuration file"
	initializedMessageFormat = "configuration written to %s\n"
)

// createInitCommand returns the init subcommand.
func createInitCommand(app *application) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: app.dependencies.WorkingDirectory,
				HomeDirectory:    app.dependencies.HomeDirectory,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(command.OutOrStdout(), initializedMessageFormat, path)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/temirov/fstree/internal/config"
	"github.com/temirov/fstree/internal/server"
)

const (
	serveUse              = "serve [path]"
	serveShortDescription = "serve live tree renderings over HTTP"
	serveLongDescription  = `Serve the interactive page at /, the record at /tree.json and /tree.yaml, and
the text tree at /tree.txt. Every request walks the tree again, so edits show up on reload.
Prometheus metrics are exposed at /metrics. Stop with Ctrl-C.`
	serveUsageExample = `  fstree serve --listen 127.0.0.1:9000 ./site`

	listenFlagName        = "listen"
	listenFlagDescription = "address to listen on"
)

// createServeCommand returns the serve subcommand.
func createServeCommand(app *application) *cobra.Command {
	var traversal traversalFlags
	var listenAddress string
	var rolesPath string

	serveCommand := &cobra.Command{
		Use:     serveUse,
		Short:   serveShortDescription,
		Long:    serveLongDescription,
		Example: serveUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			plan, planError := app.prepareWalk(command, arguments, traversal)
			if planError != nil {
				return planError
			}
			changed := command.Flags().Changed
			resolvedListen := config.StringValue(plan.configuration.Serve.Listen, server.DefaultListenAddress)
			if changed(listenFlagName) {
				resolvedListen = listenAddress
			}
			resolvedRoles := plan.configuration.Serve.Roles
			if changed(rolesFlagName) {
				resolvedRoles = rolesPath
			}
			table, tableError := app.loadRoles(resolvedRoles)
			if tableError != nil {
				return tableError
			}

			ctx := command.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			signalContext, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			previewServer := server.New(server.Options{
				Root:     plan.root,
				RootName: plan.rootLabel,
				Walk:     plan.options,
				Roles:    table,
				Listen:   resolvedListen,
				Logger:   app.dependencies.Logger,
			})
			return previewServer.ListenAndServe(signalContext)
		},
	}
	addTraversalFlags(serveCommand, &traversal)
	serveCommand.Flags().StringVar(&listenAddress, listenFlagName, server.DefaultListenAddress, listenFlagDescription)
	serveCommand.Flags().StringVar(&rolesPath, rolesFlagName, "", rolesFlagDescription)
	return serveCommand
}

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/temirov/fstree/internal/classify"
	"github.com/temirov/fstree/internal/htmlview"
	"github.com/temirov/fstree/internal/render"
	"github.com/temirov/fstree/internal/services/stream"
)

const (
	htmlUse              = "html [path]"
	htmlShortDescription = "write an interactive HTML tree"
	htmlLongDescription  = `Write a self-contained HTML page for the tree under path. The page offers
expand and collapse controls, a wildcard filter, and a side panel describing the role of
the selected entry. Roles come from a built-in Next.js App Router table or from --roles.`
	htmlUsageExample = `  # Write to the default location and print it
  fstree html .

  # Custom output and role table
  fstree html -o site-tree.html --roles roles.yaml ./site`

	outputFlagName        = "output"
	outputShorthand       = "o"
	rolesFlagName         = "roles"
	outputFlagDescription = "HTML file to write (default <temp dir>/tree.html)"
	rolesFlagDescription  = "YAML classification table replacing the built-in roles"
)

// createHTMLCommand returns the html subcommand.
func createHTMLCommand(app *application) *cobra.Command {
	var traversal traversalFlags
	var outputPath string
	var rolesPath string

	htmlCommand := &cobra.Command{
		Use:     htmlUse,
		Short:   htmlShortDescription,
		Long:    htmlLongDescription,
		Example: htmlUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			plan, planError := app.prepareWalk(command, arguments, traversal)
			if planError != nil {
				return planError
			}
			changed := command.Flags().Changed
			resolvedOutput := plan.configuration.HTML.Output
			if changed(outputFlagName) {
				resolvedOutput = outputPath
			}
			if resolvedOutput == "" {
				resolvedOutput = htmlview.DefaultOutputPath()
			} else if !filepath.IsAbs(resolvedOutput) {
				resolvedOutput = filepath.Join(app.dependencies.WorkingDirectory, resolvedOutput)
			}
			resolvedRoles := plan.configuration.HTML.Roles
			if changed(rolesFlagName) {
				resolvedRoles = rolesPath
			}
			table, tableError := app.loadRoles(resolvedRoles)
			if tableError != nil {
				return tableError
			}

			builder := render.NewRecordBuilder(plan.root.AbsolutePath, plan.rootLabel)
			if dispatchError := stream.Dispatch(command.Context(), stream.WalkProducer(plan.options), builder.Add); dispatchError != nil {
				return dispatchError
			}
			if writeError := htmlview.WriteFile(resolvedOutput, htmlview.NewPage(builder.Root(), table)); writeError != nil {
				return writeError
			}
			fmt.Fprintln(command.OutOrStdout(), resolvedOutput)
			return nil
		},
	}
	addTraversalFlags(htmlCommand, &traversal)
	htmlCommand.Flags().StringVarP(&outputPath, outputFlagName, outputShorthand, "", outputFlagDescription)
	htmlCommand.Flags().StringVar(&rolesPath, rolesFlagName, "", rolesFlagDescription)
	return htmlCommand
}

// loadRoles returns the built-in table when path is empty.
func (app *application) loadRoles(path string) (classify.Table, error) {
	if path == "" {
		return classify.Default(), nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(app.dependencies.WorkingDirectory, path)
	}
	return classify.LoadFile(path)
}

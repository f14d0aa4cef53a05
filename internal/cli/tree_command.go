package cli

import (
	"bytes"
	"fmt"
	"io"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/cobra"

	"github.com/temirov/fstree/internal/config"
	"github.com/temirov/fstree/internal/render"
	"github.com/temirov/fstree/internal/services/stream"
	"github.com/temirov/fstree/internal/types"
)

const (
	treeUse              = "tree [path]"
	treeAlias            = "t"
	treeShortDescription = "print a directory tree (" + treeAlias + ")"
	treeLongDescription  = `Print the tree under path (default ".") with box-drawing connectors, or as a
JSON or YAML record. Directories come first, then files, each group ordered by name
regardless of case.`
	treeUsageExample = `  # Two levels, hiding build output
  fstree tree -d 2 -I dist -I '*.log' .

  # Record output for tooling
  fstree tree --format yaml --relative ./web`

	formatFlagName        = "format"
	jsonFlagName          = "json"
	colorFlagName         = "color"
	clipboardFlagName     = "clipboard"
	formatFlagDescription = "output format: text, json, or yaml"
	jsonFlagDescription   = "shorthand for --format json"
	colorFlagDescription  = "colorize text output: auto, always, or never"
	clipboardDescription  = "also copy the output to the system clipboard"

	errorInvalidTreeFlagsFormat = "invalid tree flags: %w"
	errorClipboardFormat        = "copy to clipboard: %w"
)

type treeFlags struct {
	format    string
	json      bool
	color     string
	clipboard bool
}

func (flags treeFlags) validate() error {
	return validation.ValidateStruct(&flags,
		validation.Field(&flags.format, validation.Required, validation.In(types.FormatText, types.FormatJSON, types.FormatYAML)),
		validation.Field(&flags.color, validation.Required, validation.In(types.ColorAuto, types.ColorAlways, types.ColorNever)),
	)
}

// resolve layers explicitly set flags over the tree configuration.
func (flags treeFlags) resolve(command *cobra.Command, configuration config.TreeConfiguration) treeFlags {
	changed := command.Flags().Changed
	resolved := treeFlags{
		format:    config.StringValue(configuration.Format, types.FormatText),
		color:     config.StringValue(configuration.Color, types.ColorAuto),
		clipboard: config.BoolValue(configuration.Clipboard, false),
	}
	if changed(formatFlagName) {
		resolved.format = flags.format
	}
	if flags.json {
		resolved.format = types.FormatJSON
	}
	if changed(colorFlagName) {
		resolved.color = flags.color
	}
	if changed(clipboardFlagName) {
		resolved.clipboard = flags.clipboard
	}
	return resolved
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(app *application) *cobra.Command {
	var traversal traversalFlags
	var output treeFlags

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			plan, planError := app.prepareWalk(command, arguments, traversal)
			if planError != nil {
				return planError
			}
			resolvedOutput := output.resolve(command, plan.configuration.Tree)
			if validationError := resolvedOutput.validate(); validationError != nil {
				return fmt.Errorf(errorInvalidTreeFlagsFormat, validationError)
			}
			return app.runTree(command, plan, resolvedOutput)
		},
	}
	addTraversalFlags(treeCommand, &traversal)
	treeCommand.Flags().StringVar(&output.format, formatFlagName, types.FormatText, formatFlagDescription)
	registerSwitch(treeCommand.Flags(), &output.json, jsonFlagName, jsonFlagDescription)
	treeCommand.Flags().StringVar(&output.color, colorFlagName, types.ColorAuto, colorFlagDescription)
	registerSwitch(treeCommand.Flags(), &output.clipboard, clipboardFlagName, clipboardDescription)
	return treeCommand
}

func (app *application) runTree(command *cobra.Command, plan walkPlan, output treeFlags) error {
	stdout := command.OutOrStdout()
	var writer io.Writer = stdout
	var copied bytes.Buffer
	palette := render.NewPalette(stdout, output.color)
	if output.clipboard {
		writer = io.MultiWriter(stdout, &copied)
		palette = render.Palette{}
	}

	var handler stream.Handler
	if output.format == types.FormatText {
		textRenderer := render.NewTextRenderer(writer, palette)
		if beginError := textRenderer.Begin(plan.rootLabel); beginError != nil {
			return beginError
		}
		handler = textRenderer
	} else {
		recordRenderer, rendererError := render.NewRecordRenderer(writer, output.format, plan.root.AbsolutePath, plan.rootLabel)
		if rendererError != nil {
			return rendererError
		}
		handler = recordRenderer
	}

	if runError := stream.Run(command.Context(), plan.options, handler); runError != nil {
		return runError
	}
	if output.clipboard {
		if copyError := app.dependencies.Clipboard.Copy(copied.String()); copyError != nil {
			return fmt.Errorf(errorClipboardFormat, copyError)
		}
	}
	return nil
}

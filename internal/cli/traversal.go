package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fstree/internal/config"
	"github.com/temirov/fstree/internal/ignore"
	"github.com/temirov/fstree/internal/types"
	"github.com/temirov/fstree/internal/utils"
	"github.com/temirov/fstree/internal/walker"
)

const (
	maxDepthFlagName       = "max-depth"
	maxDepthShorthand      = "d"
	ignoreFlagName         = "ignore"
	ignoreShorthand        = "I"
	showHiddenFlagName     = "show-hidden"
	dirsOnlyFlagName       = "dirs-only"
	filesOnlyFlagName      = "files-only"
	limitPerDirFlagName    = "limit-per-dir"
	followSymlinksFlagName = "follow-symlinks"
	relativeFlagName       = "relative"
	noGitignoreFlagName    = "no-gitignore"
	noIgnoreFlagName       = "no-ignore"

	maxDepthFlagDescription       = "maximum depth to expand (-1 for unlimited)"
	ignoreFlagDescription         = "glob to ignore, matched against names and relative paths (repeatable)"
	showHiddenFlagDescription     = "include entries whose names start with a dot"
	dirsOnlyFlagDescription       = "show directories only"
	filesOnlyFlagDescription      = "show regular files only"
	limitPerDirFlagDescription    = "consider at most this many entries per directory (0 for unlimited)"
	followSymlinksFlagDescription = "descend into symlinked directories"
	relativeFlagDescription       = "label the root as '.' instead of its name"
	noGitignoreFlagDescription    = "do not use .gitignore"
	noIgnoreFlagDescription       = "do not use .ignore"

	logWalkWarning = "walk warning"
)

// traversalFlags holds the flags shared by every command that walks a tree.
type traversalFlags struct {
	maxDepth       int
	ignorePatterns []string
	showHidden     bool
	dirsOnly       bool
	filesOnly      bool
	limitPerDir    int
	followSymlinks bool
	relative       bool
	noGitignore    bool
	noIgnoreFile   bool
}

// addTraversalFlags registers traversal flags on the command.
func addTraversalFlags(command *cobra.Command, flags *traversalFlags) {
	flagSet := command.Flags()
	flagSet.IntVarP(&flags.maxDepth, maxDepthFlagName, maxDepthShorthand, types.UnlimitedDepth, maxDepthFlagDescription)
	flagSet.StringArrayVarP(&flags.ignorePatterns, ignoreFlagName, ignoreShorthand, nil, ignoreFlagDescription)
	registerSwitch(flagSet, &flags.showHidden, showHiddenFlagName, showHiddenFlagDescription)
	registerSwitch(flagSet, &flags.dirsOnly, dirsOnlyFlagName, dirsOnlyFlagDescription)
	registerSwitch(flagSet, &flags.filesOnly, filesOnlyFlagName, filesOnlyFlagDescription)
	flagSet.IntVar(&flags.limitPerDir, limitPerDirFlagName, 0, limitPerDirFlagDescription)
	registerSwitch(flagSet, &flags.followSymlinks, followSymlinksFlagName, followSymlinksFlagDescription)
	registerSwitch(flagSet, &flags.relative, relativeFlagName, relativeFlagDescription)
	registerSwitch(flagSet, &flags.noGitignore, noGitignoreFlagName, noGitignoreFlagDescription)
	registerSwitch(flagSet, &flags.noIgnoreFile, noIgnoreFlagName, noIgnoreFlagDescription)
}

// traversalSettings is the outcome of layering flags over configuration.
type traversalSettings struct {
	options     walker.Options
	relative    bool
	loadOptions ignore.LoadOptions
}

// resolve applies explicitly set flags over configuration over built-in defaults.
// Ignore patterns from configuration and flags are combined.
func (flags traversalFlags) resolve(command *cobra.Command, configuration config.TraversalConfiguration) traversalSettings {
	changed := command.Flags().Changed
	chooseBool := func(flagName string, flagValue bool, configured *bool, fallback bool) bool {
		if changed(flagName) {
			return flagValue
		}
		return config.BoolValue(configured, fallback)
	}
	chooseInt := func(flagName string, flagValue int, configured *int, fallback int) int {
		if changed(flagName) {
			return flagValue
		}
		return config.IntValue(configured, fallback)
	}

	options := walker.Options{
		MaxDepth:       chooseInt(maxDepthFlagName, flags.maxDepth, configuration.MaxDepth, types.UnlimitedDepth),
		ExtraIgnores:   utils.DeduplicatePatterns(append(append([]string{}, configuration.Ignore...), flags.ignorePatterns...)),
		ShowHidden:     chooseBool(showHiddenFlagName, flags.showHidden, configuration.ShowHidden, false),
		DirsOnly:       chooseBool(dirsOnlyFlagName, flags.dirsOnly, configuration.DirsOnly, false),
		FilesOnly:      chooseBool(filesOnlyFlagName, flags.filesOnly, configuration.FilesOnly, false),
		LimitPerDir:    chooseInt(limitPerDirFlagName, flags.limitPerDir, configuration.LimitPerDir, 0),
		FollowSymlinks: chooseBool(followSymlinksFlagName, flags.followSymlinks, configuration.FollowSymlinks, false),
	}

	useGitignore := config.BoolValue(configuration.UseGitignore, true)
	if changed(noGitignoreFlagName) {
		useGitignore = !flags.noGitignore
	}
	useIgnoreFile := config.BoolValue(configuration.UseIgnoreFile, true)
	if changed(noIgnoreFlagName) {
		useIgnoreFile = !flags.noIgnoreFile
	}

	return traversalSettings{
		options:     options,
		relative:    chooseBool(relativeFlagName, flags.relative, configuration.Relative, false),
		loadOptions: ignore.LoadOptions{UseGitignore: useGitignore, UseIgnoreFile: useIgnoreFile},
	}
}

// walkOptions completes the settings for a concrete root: it loads the root's ignore
// files and routes walker warnings to the logger.
func (settings traversalSettings) walkOptions(root types.ValidatedRoot, logger *zap.Logger) (walker.Options, error) {
	rules, loadError := ignore.Load(root.AbsolutePath, settings.loadOptions)
	if loadError != nil {
		return walker.Options{}, loadError
	}
	options := settings.options
	options.Root = root.AbsolutePath
	options.Rules = rules
	options.Warn = func(message string) {
		logger.Warn(logWalkWarning, zap.String("detail", message))
	}
	if validationError := options.Validate(); validationError != nil {
		return walker.Options{}, validationError
	}
	return options, nil
}

// walkPlan is everything a command needs to walk one root.
type walkPlan struct {
	root          types.ValidatedRoot
	rootLabel     string
	configuration config.ApplicationConfiguration
	options       walker.Options
}

// prepareWalk resolves the root argument, configuration, and flags into a walk plan.
func (app *application) prepareWalk(command *cobra.Command, arguments []string, flags traversalFlags) (walkPlan, error) {
	root, rootError := resolveRoot(command, pathArgument(arguments), app.dependencies.WorkingDirectory)
	if rootError != nil {
		return walkPlan{}, rootError
	}
	configuration, configurationError := app.loadConfiguration()
	if configurationError != nil {
		return walkPlan{}, configurationError
	}
	settings := flags.resolve(command, configuration.Traversal)
	options, optionsError := settings.walkOptions(root, app.dependencies.Logger)
	if optionsError != nil {
		return walkPlan{}, optionsError
	}
	return walkPlan{
		root:          root,
		rootLabel:     root.DisplayName(settings.relative),
		configuration: configuration,
		options:       options,
	}, nil
}

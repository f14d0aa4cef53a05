// Package config loads fstree defaults from global and local configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"

	"github.com/temirov/fstree/internal/types"
	"github.com/temirov/fstree/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	HomeDirectory    string
}

// ApplicationConfiguration holds defaults for every command. Unset values are nil or
// empty so that a later source only overrides what it names.
type ApplicationConfiguration struct {
	Traversal TraversalConfiguration `mapstructure:"traversal"`
	Tree      TreeConfiguration      `mapstructure:"tree"`
	HTML      HTMLConfiguration      `mapstructure:"html"`
	Serve     ServeConfiguration     `mapstructure:"serve"`
}

// TraversalConfiguration is shared by the tree, html, and serve commands.
type TraversalConfiguration struct {
	MaxDepth       *int     `mapstructure:"max_depth"`
	Ignore         []string `mapstructure:"ignore"`
	ShowHidden     *bool    `mapstructure:"show_hidden"`
	DirsOnly       *bool    `mapstructure:"dirs_only"`
	FilesOnly      *bool    `mapstructure:"files_only"`
	LimitPerDir    *int     `mapstructure:"limit_per_dir"`
	FollowSymlinks *bool    `mapstructure:"follow_symlinks"`
	Relative       *bool    `mapstructure:"relative"`
	UseGitignore   *bool    `mapstructure:"use_gitignore"`
	UseIgnoreFile  *bool    `mapstructure:"use_ignore"`
}

// TreeConfiguration defines defaults for the tree command.
type TreeConfiguration struct {
	Format    string `mapstructure:"format"`
	Color     string `mapstructure:"color"`
	Clipboard *bool  `mapstructure:"clipboard"`
}

// HTMLConfiguration defines defaults for the html command.
type HTMLConfiguration struct {
	Output string `mapstructure:"output"`
	Roles  string `mapstructure:"roles"`
}

// ServeConfiguration defines defaults for the serve command.
type ServeConfiguration struct {
	Listen string `mapstructure:"listen"`
	Roles  string `mapstructure:"roles"`
}

// Validate rejects values no command accepts.
func (config ApplicationConfiguration) Validate() error {
	return validation.Errors{
		"traversal": config.Traversal.Validate(),
		"tree":      config.Tree.Validate(),
	}.Filter()
}

// Validate checks numeric limits.
func (config TraversalConfiguration) Validate() error {
	return validation.ValidateStruct(&config,
		validation.Field(&config.MaxDepth, validation.Min(types.UnlimitedDepth)),
		validation.Field(&config.LimitPerDir, validation.Min(0)),
	)
}

// Validate checks the output format and color mode.
func (config TreeConfiguration) Validate() error {
	return validation.ValidateStruct(&config,
		validation.Field(&config.Format, validation.In(types.FormatText, types.FormatJSON, types.FormatYAML)),
		validation.Field(&config.Color, validation.In(types.ColorAuto, types.ColorAlways, types.ColorNever)),
	)
}

// LoadApplicationConfiguration loads configuration from the global file and then the
// local or explicit file, each overriding what came before.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		homeDirectory, _ = os.UserHomeDir()
	}
	if homeDirectory != "" {
		globalConfig, loadErr := loadConfigurationFromPath(GlobalConfigurationPath(homeDirectory))
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localConfig, loadErr := loadConfigurationFromPath(resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath))
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)
	merged.Traversal.Ignore = utils.DeduplicatePatterns(merged.Traversal.Ignore)

	if validationErr := merged.Validate(); validationErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("invalid configuration: %w", validationErr)
	}
	return merged, nil
}

// GlobalConfigurationPath returns the global configuration file under homeDirectory.
func GlobalConfigurationPath(homeDirectory string) string {
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Traversal = result.Traversal.merge(override.Traversal)
	result.Tree = result.Tree.merge(override.Tree)
	result.HTML = result.HTML.merge(override.HTML)
	result.Serve = result.Serve.merge(override.Serve)
	return result
}

func (config TraversalConfiguration) merge(override TraversalConfiguration) TraversalConfiguration {
	result := config
	if override.MaxDepth != nil {
		result.MaxDepth = cloneInt(override.MaxDepth)
	}
	if len(override.Ignore) > 0 {
		result.Ignore = append([]string{}, utils.DeduplicatePatterns(override.Ignore)...)
	}
	if override.ShowHidden != nil {
		result.ShowHidden = cloneBool(override.ShowHidden)
	}
	if override.DirsOnly != nil {
		result.DirsOnly = cloneBool(override.DirsOnly)
	}
	if override.FilesOnly != nil {
		result.FilesOnly = cloneBool(override.FilesOnly)
	}
	if override.LimitPerDir != nil {
		result.LimitPerDir = cloneInt(override.LimitPerDir)
	}
	if override.FollowSymlinks != nil {
		result.FollowSymlinks = cloneBool(override.FollowSymlinks)
	}
	if override.Relative != nil {
		result.Relative = cloneBool(override.Relative)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.UseIgnoreFile != nil {
		result.UseIgnoreFile = cloneBool(override.UseIgnoreFile)
	}
	return result
}

func (config TreeConfiguration) merge(override TreeConfiguration) TreeConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Color != "" {
		result.Color = override.Color
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config HTMLConfiguration) merge(override HTMLConfiguration) HTMLConfiguration {
	result := config
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Roles != "" {
		result.Roles = override.Roles
	}
	return result
}

func (config ServeConfiguration) merge(override ServeConfiguration) ServeConfiguration {
	result := config
	if override.Listen != "" {
		result.Listen = override.Listen
	}
	if override.Roles != "" {
		result.Roles = override.Roles
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

// BoolValue dereferences value, returning fallback when it is unset.
func BoolValue(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

// IntValue dereferences value, returning fallback when it is unset.
func IntValue(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

// StringValue returns value, or fallback when it is empty.
func StringValue(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

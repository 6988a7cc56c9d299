// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tdzio/tdz/internal/config"
	"github.com/tdzio/tdz/internal/ui"
)

var (
	// Global flags
	rootPathFlag string // Explicit data root (overrides config)
	configPath   string

	// Resolved values
	resolvedRoot string
	cfg          *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tdz",
	Short: "tdz - A personal productivity store",
	Long: `tdz captures tasks, memories, ideas, and the rest of your working
context from plain text. Drop tag-formatted fragments anywhere in a
message and tdz files each one into a local JSON store, indexed for
keyword and semantic search.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip root resolution for commands that don't touch the store
		switch cmd.Name() {
		case "init", "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg == nil {
			cfg = &config.Config{}
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)

		// Resolve data root: explicit flag > config > default
		if rootPathFlag != "" {
			resolvedRoot = rootPathFlag
		} else {
			resolvedRoot, err = cfg.GetDataRoot()
			if err != nil {
				return fmt.Errorf(`no data root available

Either:
  1. Use --root /path/to/data
  2. Set data_root in ~/.config/tdz/config.toml
  3. Run 'tdz init' to create the default layout`)
			}
		}

		// Commands that create the root themselves skip the existence check
		if cmd.Name() == "serve" {
			return nil
		}
		if _, err := os.Stat(resolvedRoot); os.IsNotExist(err) {
			return fmt.Errorf("data root not found: %s\n\nRun 'tdz init' to create it", resolvedRoot)
		}

		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Accept snake_case flag spellings from scripted callers.
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	rootCmd.PersistentFlags().StringVar(&rootPathFlag, "root", "", "Path to the data root directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// getRoot returns the resolved data root.
func getRoot() string {
	return resolvedRoot
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}

func loadGlobalConfig() (*config.Config, error) {
	var loaded *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loaded, err = config.LoadFrom(configPath)
	} else {
		loaded, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		loaded = &config.Config{}
	}
	return loaded, nil
}

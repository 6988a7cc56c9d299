package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/config"
	"github.com/tdzio/tdz/internal/store"
	"github.com/tdzio/tdz/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create the config file and data root",
	Long: `Write a commented config template to ~/.config/tdz/config.toml (if
none exists), create the data root layout, and seed the default agent
roster. Pass a path to use it as the data root instead of the default.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, err := config.CreateDefault()
		if err != nil {
			return fail(err)
		}

		loaded, err := loadGlobalConfig()
		if err != nil {
			return fail(err)
		}
		cfg = loaded

		root := rootPathFlag
		if len(args) == 1 {
			root = args[0]
		}
		if root == "" {
			root, err = cfg.GetDataRoot()
			if err != nil {
				return fail(err)
			}
		}

		st, err := store.Open(root)
		if err != nil {
			return fail(err)
		}
		defer st.Close()

		if err := st.SeedDefaultAgents(); err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{"config": configFile, "root": root}, nil)
			return nil
		}
		fmt.Println(ui.Successf("data root   %s", root))
		fmt.Println(ui.Successf("config      %s", configFile))
		fmt.Println(ui.Hint("try: tdz add \"ship the thing\" -p inbox"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

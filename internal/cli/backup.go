package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/store"
	"github.com/tdzio/tdz/internal/ui"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot and restore the store",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a backup snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		created, err := e.st.CreateBackup(name)
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"backup": created}, nil)
			return nil
		}
		fmt.Println(ui.Successf("created backup %s", ui.Accent.Render(created)))
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		backups, err := e.st.ListBackups()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(backups, &Meta{Count: len(backups)})
			return nil
		}
		if len(backups) == 0 {
			fmt.Println(ui.Hint("no backups"))
			return nil
		}
		for _, b := range backups {
			fmt.Println(b)
		}
		return nil
	},
}

var backupRestoreForce bool

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Restore the store from a backup",
	Long: `Replace the store's current contents with a backup snapshot.
Asks for confirmation unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !backupRestoreForce && !isJSONOutput() {
			if !confirm(fmt.Sprintf("restore %q and overwrite current data?", args[0])) {
				return handleErrorMsg(ErrOperationAbort, "restore cancelled", "")
			}
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if err := e.st.RestoreBackup(args[0]); err != nil {
			return fail(err)
		}
		if rebuildErr := e.idx.RebuildAll(e.st); rebuildErr != nil {
			return fail(rebuildErr)
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"restored": args[0]}, nil)
			return nil
		}
		fmt.Println(ui.Successf("restored %s", args[0]))
		return nil
	},
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <kind> <path>",
	Short: "Export one collection to a file",
	Long: `Write a collection (tasks, memories, ideas, feelings, errors,
training, chunks, queue, projects, agents) to a JSON or YAML file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := model.ParseKind(args[0])
		if err != nil {
			return fail(err)
		}
		format := store.ExportFormat(strings.ToLower(exportFormat))
		if format != store.ExportJSON && format != store.ExportYAML {
			return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("unknown export format %q (want json or yaml)", exportFormat), "")
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if err := e.st.Export(kind, format, args[1]); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"kind": string(kind), "path": args[1]}, nil)
			return nil
		}
		fmt.Println(ui.Successf("exported %s to %s", kind, args[1]))
		return nil
	},
}

func init() {
	backupRestoreCmd.Flags().BoolVarP(&backupRestoreForce, "force", "f", false, "Skip the confirmation prompt")
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "F", "json", "Export format (json, yaml)")
	rootCmd.AddCommand(backupCmd, exportCmd)
}

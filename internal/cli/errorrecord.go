package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/tags"
	"github.com/tdzio/tdz/internal/ui"
	"github.com/tdzio/tdz/internal/validate"
)

var errorCmd = &cobra.Command{
	Use:   "error",
	Short: "Track and resolve error records",
}

var (
	errSeverity string
	errCategory string
	errSource   string
	errContext  string
	errTags     []string
)

var errorAddCmd = &cobra.Command{
	Use:   "add <title> <description>",
	Short: "Record an error",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := validate.ErrorRecord(tags.ErrorDraft{
			Title:       args[0],
			Description: args[1],
			Severity:    errSeverity,
			Category:    errCategory,
			Source:      errSource,
			Context:     errContext,
			Tags:        errTags,
		})
		if err != nil {
			return fail(err)
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if e.embedder != nil {
			if vec, embErr := e.embedder.Embed(cmd.Context(), rec.SearchText()); embErr == nil {
				rec.Embedding = vec
			}
		}
		if err := e.st.SaveErrorRecord(rec); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(rec, nil)
			return nil
		}
		fmt.Println(ui.Successf("recorded %s", ui.Accent.Render(rec.ID)))
		return nil
	},
}

var errorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List error records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		records, err := e.st.ListErrorRecords()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(records, &Meta{Count: len(records)})
			return nil
		}
		if len(records) == 0 {
			fmt.Println(ui.Hint("no error records"))
			return nil
		}
		display := ui.NewDisplayContext()
		table := ui.NewResultsTable(display, ui.SearchLayout)
		contentWidth := table.ContentWidth("content")
		for i, r := range records {
			meta := fmt.Sprintf("%s/%s", r.Severity, r.Category)
			state := "open"
			if r.Resolved {
				state = "resolved"
			}
			table.AddRow(ui.ResultRow{
				Num:      i + 1,
				Cells:    []string{ui.FormatRowNum(i+1, len(records)), ui.TruncateWithEllipsis(r.Title, contentWidth), meta, state},
				Location: "error:" + r.ID,
			})
		}
		fmt.Println(table.Render())
		return nil
	},
}

var errorResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Mark an error record resolved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		rec, err := e.st.ResolveErrorRecord(args[0])
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(rec, nil)
			return nil
		}
		fmt.Println(ui.Successf("resolved %s", rec.Title))
		return nil
	},
}

var errorDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an error record",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID(func(e *env, id string) error { return e.st.DeleteErrorRecord(id) }),
}

func init() {
	errorAddCmd.Flags().StringVarP(&errSeverity, "severity", "s", "", "Severity (low, medium, high, critical)")
	errorAddCmd.Flags().StringVarP(&errCategory, "category", "c", "", "Category (runtime, logic, network, ...)")
	errorAddCmd.Flags().StringVar(&errSource, "source", "", "Where the error surfaced")
	errorAddCmd.Flags().StringVar(&errContext, "context", "", "Supporting context")
	errorAddCmd.Flags().StringSliceVar(&errTags, "tags", nil, "Comma-separated tags")
	errorCmd.AddCommand(errorAddCmd, errorListCmd, errorResolveCmd, errorDeleteCmd)
	rootCmd.AddCommand(errorCmd)
}

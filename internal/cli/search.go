package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/search"
	"github.com/tdzio/tdz/internal/ui"
)

var (
	searchMode      string
	searchTypes     string
	searchLimitFlag int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search across tasks, memories, ideas, errors, and training data",
	Long: `Search the store. Three modes are available:

  fast   keyword match only
  deep   semantic match only (needs an embedding provider)
  smart  keyword plus semantic, merged (default)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		opts := search.Options{Limit: searchLimitFlag}
		if opts.Limit <= 0 {
			opts.Limit = searchLimit()
		}

		started := time.Now()
		var envlp search.Envelope
		if searchTypes != "" {
			envlp, err = e.engine.Find(cmd.Context(), args[0], searchTypes, opts)
		} else {
			switch searchMode {
			case "fast":
				envlp, err = e.engine.Fast(cmd.Context(), args[0], opts)
			case "deep":
				envlp, err = e.engine.Deep(cmd.Context(), args[0], opts)
			case "", "smart":
				envlp, err = e.engine.Smart(cmd.Context(), args[0], opts)
			default:
				return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("unknown search mode %q (want fast, deep, or smart)", searchMode), "")
			}
		}
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(envlp, &Meta{Count: envlp.Total(), QueryTimeMs: time.Since(started).Milliseconds()})
			return nil
		}
		printSearchResults(envlp)
		return nil
	},
}

func printSearchResults(envlp search.Envelope) {
	total := envlp.Total()
	if total == 0 {
		fmt.Println(ui.Hint("no results"))
		return
	}
	display := ui.NewDisplayContext()
	table := ui.NewResultsTable(display, ui.SearchLayout)
	contentWidth := table.ContentWidth("content")

	rows := flattenResults(envlp)
	for i, r := range rows {
		table.AddRow(ui.ResultRow{
			Num:      i + 1,
			Cells:    []string{ui.FormatRowNum(i+1, len(rows)), ui.TruncateWithEllipsis(r.text, contentWidth), string(r.kind), r.meta},
			Location: string(r.kind) + ":" + r.id,
		})
	}
	fmt.Println(table.Render())
	fmt.Println(ui.Hint(fmt.Sprintf("  %d %s", total, pluralize(total, "result", "results"))))
}

type searchRow struct {
	kind model.Kind
	id   string
	text string
	meta string
}

// flattenResults orders hits for display: the ranked Top slice when the
// smart path produced one, per-kind order otherwise.
func flattenResults(envlp search.Envelope) []searchRow {
	if len(envlp.Top) > 0 {
		rows := make([]searchRow, 0, len(envlp.Top))
		for _, r := range envlp.Top {
			rows = append(rows, searchRow{kind: r.Kind, id: r.ID, text: r.Text, meta: fmt.Sprintf("%.2f", r.Score)})
		}
		return rows
	}
	var rows []searchRow
	for _, t := range envlp.TaskResults {
		rows = append(rows, searchRow{kind: model.KindTask, id: t.ID, text: t.Action, meta: t.ParentProject})
	}
	for _, m := range envlp.MemoryResults {
		rows = append(rows, searchRow{kind: model.KindMemory, id: m.ID, text: m.Moment, meta: string(m.MemoryType)})
	}
	for _, id := range envlp.IdeaResults {
		rows = append(rows, searchRow{kind: model.KindIdea, id: id.ID, text: id.Idea, meta: string(id.Importance)})
	}
	for _, r := range envlp.ErrorResults {
		rows = append(rows, searchRow{kind: model.KindError, id: r.ID, text: r.Title, meta: string(r.Severity)})
	}
	for _, s := range envlp.TrainingResults {
		rows = append(rows, searchRow{kind: model.KindTraining, id: s.ID, text: s.Prompt, meta: string(s.DataType)})
	}
	return rows
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		var sp *ui.Spinner
		if !isJSONOutput() {
			sp = ui.NewSpinner("rebuilding index")
			sp.Start()
		}
		err = e.idx.RebuildAll(e.st)
		if sp != nil {
			sp.Stop()
		}
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(map[string]bool{"rebuilt": true}, nil)
			return nil
		}
		fmt.Println(ui.Success("index rebuilt"))
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "smart", "Search mode (fast, deep, smart)")
	searchCmd.Flags().StringVarP(&searchTypes, "types", "T", "", "Restrict to kinds, e.g. tasks,memories")
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "n", 0, "Maximum results")
	rootCmd.AddCommand(searchCmd, reindexCmd)
}

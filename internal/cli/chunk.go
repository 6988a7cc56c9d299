package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/tags"
	"github.com/tdzio/tdz/internal/ui"
	"github.com/tdzio/tdz/internal/validate"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Track code chunks and their readiness",
}

var (
	chunkLevel string
	chunkDeps  []string
	chunkCode  string
)

var chunkAddCmd = &cobra.Command{
	Use:   "add <id> <description>",
	Short: "Register a code chunk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chunk, err := validate.Chunk(tags.ChunkDraft{
			ID:           args[0],
			Level:        chunkLevel,
			Description:  args[1],
			Dependencies: chunkDeps,
			Code:         chunkCode,
		})
		if err != nil {
			return fail(err)
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if err := e.st.SaveChunk(chunk); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(chunk, nil)
			return nil
		}
		fmt.Println(ui.Successf("registered %s", ui.Accent.Render(chunk.ChunkID)))
		return nil
	},
}

var chunkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chunks in dependency order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		chunks, err := e.st.ListChunks()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(chunks, &Meta{Count: len(chunks)})
			return nil
		}
		if len(chunks) == 0 {
			fmt.Println(ui.Hint("no chunks"))
			return nil
		}
		display := ui.NewDisplayContext()
		table := ui.NewResultsTable(display, ui.SearchLayout)
		contentWidth := table.ContentWidth("content")
		for i, c := range chunks {
			meta := fmt.Sprintf("%s/%s", c.Level, c.Status)
			table.AddRow(ui.ResultRow{
				Num:      i + 1,
				Cells:    []string{ui.FormatRowNum(i+1, len(chunks)), ui.TruncateWithEllipsis(c.Description, contentWidth), meta, c.ChunkID},
				Location: "chunk:" + c.ChunkID,
			})
		}
		fmt.Println(table.Render())
		return nil
	},
}

var chunkShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a chunk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		chunk, err := e.st.LoadChunk(args[0])
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(chunk, nil)
			return nil
		}
		fmt.Println(ui.AccentBold.Render(chunk.ChunkID))
		fmt.Printf("  level   %s\n", chunk.Level)
		fmt.Printf("  status  %s\n", chunk.Status)
		fmt.Printf("  desc    %s\n", chunk.Description)
		if len(chunk.Dependencies) > 0 {
			fmt.Printf("  deps    %s\n", strings.Join(chunk.Dependencies, ", "))
		}
		if chunk.Code != "" {
			fmt.Println()
			if rendered, mdErr := ui.RenderMarkdown("```\n"+chunk.Code+"\n```", 0); mdErr == nil {
				fmt.Println(rendered)
			} else {
				fmt.Println(chunk.Code)
			}
		}
		return nil
	},
}

var chunkStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move a chunk through its lifecycle",
	Long: `Set a chunk's status to pending, in_progress, done, or failed.
The ready state is derived from dependencies and cannot be assigned.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := model.ParseChunkStatus(args[1])
		if err != nil {
			return fail(err)
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if err := e.st.SetChunkStatus(args[0], status); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"id": args[0], "status": string(status)}, nil)
			return nil
		}
		fmt.Println(ui.Successf("%s is now %s", args[0], status))
		return nil
	},
}

var chunkDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a chunk",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID(func(e *env, id string) error { return e.st.DeleteChunk(id) }),
}

func init() {
	chunkAddCmd.Flags().StringVarP(&chunkLevel, "level", "l", "", "Granularity (project, module, class, method, block)")
	chunkAddCmd.Flags().StringSliceVar(&chunkDeps, "deps", nil, "Chunk ids this one depends on")
	chunkAddCmd.Flags().StringVar(&chunkCode, "code", "", "Implementation snippet")
	chunkCmd.AddCommand(chunkAddCmd, chunkListCmd, chunkShowCmd, chunkStatusCmd, chunkDeleteCmd)
	rootCmd.AddCommand(chunkCmd)
}

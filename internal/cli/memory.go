package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/tags"
	"github.com/tdzio/tdz/internal/ui"
	"github.com/tdzio/tdz/internal/validate"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Record and browse memories",
}

var (
	memoryType       string
	memoryReason     string
	memoryImportance string
	memoryTerm       string
	memoryTags       []string
)

var memoryAddCmd = &cobra.Command{
	Use:   "add <moment> <meaning>",
	Short: "Record a memory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mem, err := validate.Memory(tags.MemoryDraft{
			Type:       memoryType,
			Moment:     args[0],
			Meaning:    args[1],
			Reason:     memoryReason,
			Importance: memoryImportance,
			Term:       memoryTerm,
			Tags:       memoryTags,
		})
		if err != nil {
			return fail(err)
		}
		mem.UserID = getConfig().GetUserID()

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if e.embedder != nil {
			if vec, embErr := e.embedder.Embed(cmd.Context(), mem.SearchText()); embErr == nil {
				mem.Embedding = vec
			}
		}
		if err := e.st.SaveMemory(mem); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(mem, nil)
			return nil
		}
		fmt.Println(ui.Successf("remembered %s", ui.Accent.Render(mem.ID)))
		return nil
	},
}

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List memories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		memories, err := e.st.ListMemories()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(memories, &Meta{Count: len(memories)})
			return nil
		}
		if len(memories) == 0 {
			fmt.Println(ui.Hint("no memories"))
			return nil
		}
		display := ui.NewDisplayContext()
		table := ui.NewResultsTable(display, ui.SearchLayout)
		contentWidth := table.ContentWidth("content")
		for i, m := range memories {
			meta := fmt.Sprintf("%s/%s", m.MemoryType, m.Importance)
			table.AddRow(ui.ResultRow{
				Num:      i + 1,
				Cells:    []string{ui.FormatRowNum(i+1, len(memories)), ui.TruncateWithEllipsis(m.Moment, contentWidth), meta, string(m.Term)},
				Location: "memory:" + m.ID,
			})
		}
		fmt.Println(table.Render())
		return nil
	},
}

var memoryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		mem, err := e.st.LoadMemory(args[0])
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(mem, nil)
			return nil
		}
		fmt.Println(ui.AccentBold.Render(mem.Moment))
		fmt.Printf("  meaning     %s\n", mem.Meaning)
		if mem.Reason != "" {
			fmt.Printf("  reason      %s\n", mem.Reason)
		}
		fmt.Printf("  type        %s\n", mem.MemoryType)
		if mem.Emotion != "" {
			fmt.Printf("  emotion     %s\n", mem.Emotion)
		}
		fmt.Printf("  importance  %s\n", mem.Importance)
		fmt.Printf("  term        %s\n", mem.Term)
		fmt.Printf("  created     %s\n", ui.Muted.Render(mem.CreatedAt.Format("2006-01-02 15:04")))
		return nil
	},
}

var memoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a memory",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID(func(e *env, id string) error { return e.st.DeleteMemory(id) }),
}

// deleteByID builds a RunE that removes one artifact by id, shared by the
// artifact subcommand groups.
func deleteByID(del func(e *env, id string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if err := del(e, args[0]); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"deleted": args[0]}, nil)
			return nil
		}
		fmt.Println(ui.Successf("deleted %s", args[0]))
		return nil
	}
}

var ideaCmd = &cobra.Command{
	Use:   "idea",
	Short: "Capture and browse ideas",
}

var (
	ideaShare      string
	ideaImportance string
	ideaContext    string
	ideaTags       []string
)

var ideaAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Capture an idea",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idea, err := validate.Idea(tags.IdeaDraft{
			Idea:       args[0],
			Share:      ideaShare,
			Importance: ideaImportance,
			Context:    ideaContext,
			Tags:       ideaTags,
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
			if vec, embErr := e.embedder.Embed(cmd.Context(), idea.SearchText()); embErr == nil {
				idea.Embedding = vec
			}
		}
		if err := e.st.SaveIdea(idea); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(idea, nil)
			return nil
		}
		fmt.Println(ui.Successf("captured %s", ui.Accent.Render(idea.ID)))
		return nil
	},
}

var ideaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ideas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		ideas, err := e.st.ListIdeas()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(ideas, &Meta{Count: len(ideas)})
			return nil
		}
		if len(ideas) == 0 {
			fmt.Println(ui.Hint("no ideas"))
			return nil
		}
		display := ui.NewDisplayContext()
		table := ui.NewResultsTable(display, ui.SearchLayout)
		contentWidth := table.ContentWidth("content")
		for i, id := range ideas {
			table.AddRow(ui.ResultRow{
				Num:      i + 1,
				Cells:    []string{ui.FormatRowNum(i+1, len(ideas)), ui.TruncateWithEllipsis(id.Idea, contentWidth), string(id.Importance), string(id.Share)},
				Location: "idea:" + id.ID,
			})
		}
		fmt.Println(table.Render())
		return nil
	},
}

var ideaDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an idea",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID(func(e *env, id string) error { return e.st.DeleteIdea(id) }),
}

var feelCmd = &cobra.Command{
	Use:   "feel",
	Short: "Log and browse feelings",
}

var (
	feelIntensity   string
	feelDescription string
	feelContext     string
	feelTags        []string
)

var feelAddCmd = &cobra.Command{
	Use:   "add <emotion>",
	Short: "Log a feeling",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feeling, err := validate.Feeling(tags.FeelDraft{
			Emotion:     args[0],
			Intensity:   feelIntensity,
			Description: feelDescription,
			Context:     feelContext,
			Tags:        feelTags,
		})
		if err != nil {
			return fail(err)
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if err := e.st.SaveFeeling(feeling); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(feeling, nil)
			return nil
		}
		fmt.Println(ui.Successf("logged %s (%d/10)", feeling.Emotion, feeling.Intensity))
		return nil
	},
}

var feelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List feelings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		feelings, err := e.st.ListFeelings()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(feelings, &Meta{Count: len(feelings)})
			return nil
		}
		if len(feelings) == 0 {
			fmt.Println(ui.Hint("no feelings logged"))
			return nil
		}
		for _, f := range feelings {
			line := fmt.Sprintf("%s  %s %d/10", f.CreatedAt.Format("2006-01-02"), f.Emotion, f.Intensity)
			if f.Description != "" {
				line += "  " + ui.Muted.Render(f.Description)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var feelDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a feeling",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID(func(e *env, id string) error { return e.st.DeleteFeeling(id) }),
}

func init() {
	memoryAddCmd.Flags().StringVarP(&memoryType, "type", "T", "", "Memory type (standard, secret, human, or an emotion)")
	memoryAddCmd.Flags().StringVarP(&memoryReason, "reason", "r", "", "Why this matters")
	memoryAddCmd.Flags().StringVarP(&memoryImportance, "importance", "i", "", "Importance (low, medium, high, critical)")
	memoryAddCmd.Flags().StringVar(&memoryTerm, "term", "", "Retention term (short, long)")
	memoryAddCmd.Flags().StringSliceVar(&memoryTags, "tags", nil, "Comma-separated tags")
	memoryCmd.AddCommand(memoryAddCmd, memoryListCmd, memoryShowCmd, memoryDeleteCmd)

	ideaAddCmd.Flags().StringVar(&ideaShare, "share", "", "Share level (private, team, public)")
	ideaAddCmd.Flags().StringVarP(&ideaImportance, "importance", "i", "", "Importance")
	ideaAddCmd.Flags().StringVar(&ideaContext, "context", "", "Supporting context")
	ideaAddCmd.Flags().StringSliceVar(&ideaTags, "tags", nil, "Comma-separated tags")
	ideaCmd.AddCommand(ideaAddCmd, ideaListCmd, ideaDeleteCmd)

	feelAddCmd.Flags().StringVarP(&feelIntensity, "intensity", "i", "", "Intensity from 1 to 10")
	feelAddCmd.Flags().StringVarP(&feelDescription, "description", "d", "", "What happened")
	feelAddCmd.Flags().StringVar(&feelContext, "context", "", "Surrounding context")
	feelAddCmd.Flags().StringSliceVar(&feelTags, "tags", nil, "Comma-separated tags")
	feelCmd.AddCommand(feelAddCmd, feelListCmd, feelDeleteCmd)

	rootCmd.AddCommand(memoryCmd, ideaCmd, feelCmd)
}

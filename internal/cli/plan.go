package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/planner"
	"github.com/tdzio/tdz/internal/ui"
)

var (
	planContext string
	planProject string
	planSave    bool
)

var planCmd = &cobra.Command{
	Use:   "plan <message>",
	Short: "Extract tasks, memories, and ideas from free text",
	Long: `Send free-form text to the configured planner endpoint and show what
it extracts. With --save, extracted items are written to the store.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if cfg.Planner.Endpoint == "" {
			return handleErrorMsg(ErrPlannerDown, "no planner endpoint configured", "set [planner] endpoint in the config file")
		}
		client := planner.New(cfg.Planner.Endpoint, cfg.Planner.APIKey)

		var sp *ui.Spinner
		if !isJSONOutput() {
			sp = ui.NewSpinner("extracting plan")
			sp.Start()
		}
		extraction, err := client.Extract(cmd.Context(), args[0], planContext)
		if sp != nil {
			sp.Stop()
		}
		if err != nil {
			return fail(err)
		}

		if !planSave {
			if isJSONOutput() {
				outputSuccess(extraction, nil)
				return nil
			}
			printExtraction(extraction)
			return nil
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		saved := 0
		userID := cfg.GetUserID()
		for _, task := range extraction.TaskRecords(planProject) {
			task.UserID = userID
			if err := e.st.AddTask(task); err != nil {
				return fail(err)
			}
			saved++
		}
		for _, m := range extraction.Memories {
			if m.Moment == "" {
				continue
			}
			mem := model.NewMemory(m.Moment, m.Meaning, m.Reason)
			mem.UserID = userID
			if err := e.st.SaveMemory(mem); err != nil {
				return fail(err)
			}
			saved++
		}
		for _, i := range extraction.Ideas {
			if i.Idea == "" {
				continue
			}
			idea := model.NewIdea(i.Idea)
			if imp, impErr := model.ParseIdeaImportance(i.Importance); impErr == nil {
				idea.Importance = imp
			}
			if err := e.st.SaveIdea(idea); err != nil {
				return fail(err)
			}
			saved++
		}

		if isJSONOutput() {
			outputSuccess(extraction, &Meta{Count: saved})
			return nil
		}
		printExtraction(extraction)
		fmt.Println(ui.Successf("saved %d %s", saved, pluralize(saved, "item", "items")))
		return nil
	},
}

func printExtraction(x planner.Extraction) {
	if len(x.Tasks) == 0 && len(x.Memories) == 0 && len(x.Ideas) == 0 {
		fmt.Println(ui.Hint("nothing extracted"))
		return
	}
	for _, t := range x.Tasks {
		line := "task: " + t.Action
		if t.Project != "" {
			line += "  " + ui.Muted.Render(t.Project)
		}
		fmt.Println(line)
	}
	for _, m := range x.Memories {
		fmt.Println("memory: " + m.Moment)
	}
	for _, i := range x.Ideas {
		fmt.Println("idea: " + i.Idea)
	}
}

func init() {
	planCmd.Flags().StringVar(&planContext, "context", "", "Extra context passed to the planner")
	planCmd.Flags().StringVarP(&planProject, "project", "p", "inbox", "Default project for extracted tasks")
	planCmd.Flags().BoolVar(&planSave, "save", false, "Persist extracted items to the store")
	rootCmd.AddCommand(planCmd)
}

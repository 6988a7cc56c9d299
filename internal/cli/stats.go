package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store-wide counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		stats, err := e.st.GetStats()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(stats, nil)
			return nil
		}

		fmt.Println(ui.AccentBold.Render("store"))
		counts := ui.NewColumns("  ")
		counts.Row("tasks", fmt.Sprintf("%d (%d done, %.0f%%)", stats.Tasks, stats.CompletedTasks, stats.CompletionRatio*100))
		counts.Row("projects", fmt.Sprintf("%d", stats.Projects))
		if stats.OpenSessions > 0 {
			counts.Row("sessions", fmt.Sprintf("%d open", stats.OpenSessions))
		}
		kinds := make([]string, 0, len(stats.Counts))
		for k := range stats.Counts {
			if k == "tasks" {
				continue
			}
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			counts.Row(k, fmt.Sprintf("%d", stats.Counts[k]))
		}
		fmt.Print(counts.String())

		if len(stats.TasksPerProject) > 0 {
			fmt.Println(ui.AccentBold.Render("projects"))
			perProject := ui.NewColumns("  ")
			names := make([]string, 0, len(stats.TasksPerProject))
			for name := range stats.TasksPerProject {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				perProject.Row(name, fmt.Sprintf("%d", stats.TasksPerProject[name]))
			}
			fmt.Print(perProject.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/ui"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Work queue with timed sessions",
}

var (
	queuePriority string
	queueProject  string
	queueDesc     string
)

var queueAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Enqueue a work item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		priority := model.PriorityMedium
		if queuePriority != "" {
			var err error
			priority, err = model.ParsePriority(queuePriority)
			if err != nil {
				return fail(err)
			}
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		item := model.NewQueueItem(args[0], queueDesc, priority, queueProject)
		if err := e.st.AddQueueItem(item); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(item, nil)
			return nil
		}
		fmt.Println(ui.Successf("enqueued %s", ui.Accent.Render(item.ID)))
		return nil
	},
}

var queueStatusFilter string

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queue items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var status model.QueueStatus
		if queueStatusFilter != "" {
			var err error
			status, err = model.ParseQueueStatus(queueStatusFilter)
			if err != nil {
				return fail(err)
			}
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		items, err := e.st.ListQueue(status)
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(items, &Meta{Count: len(items)})
			return nil
		}
		if len(items) == 0 {
			fmt.Println(ui.Hint("queue is empty"))
			return nil
		}
		display := ui.NewDisplayContext()
		table := ui.NewResultsTable(display, ui.SearchLayout)
		contentWidth := table.ContentWidth("content")
		for i, it := range items {
			meta := fmt.Sprintf("%s/%s", it.Status, it.Priority)
			table.AddRow(ui.ResultRow{
				Num:      i + 1,
				Cells:    []string{ui.FormatRowNum(i+1, len(items)), ui.TruncateWithEllipsis(it.TaskName, contentWidth), meta, it.ProjectID},
				Location: "queue:" + it.ID,
			})
		}
		fmt.Println(table.Render())
		return nil
	},
}

var queueStartCmd = &cobra.Command{
	Use:   "start <item-id>",
	Short: "Start a working session on a queue item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		session, err := e.st.StartSession(args[0])
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(session, nil)
			return nil
		}
		fmt.Println(ui.Successf("session %s started", ui.Accent.Render(session.SessionID)))
		return nil
	},
}

var queueEndCmd = &cobra.Command{
	Use:   "end <session-id>",
	Short: "End a working session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		session, err := e.st.EndSession(args[0])
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(session, nil)
			return nil
		}
		var dur time.Duration
		if session.DurationSeconds != nil {
			dur = time.Duration(*session.DurationSeconds) * time.Second
		}
		fmt.Println(ui.Successf("session ended after %s", dur))
		return nil
	},
}

var queueSessionsCmd = &cobra.Command{
	Use:   "sessions <item-id>",
	Short: "List sessions for a queue item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		sessions, err := e.st.ListSessions(args[0])
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(sessions, &Meta{Count: len(sessions)})
			return nil
		}
		if len(sessions) == 0 {
			fmt.Println(ui.Hint("no sessions"))
			return nil
		}
		for _, s := range sessions {
			line := fmt.Sprintf("%s  %s", s.SessionID, s.StartTime.Format("2006-01-02 15:04"))
			if s.Open() {
				line += "  " + ui.Accent.Render("open")
			} else if s.DurationSeconds != nil {
				line += "  " + ui.Muted.Render((time.Duration(*s.DurationSeconds) * time.Second).String())
			}
			fmt.Println(line)
		}
		return nil
	},
}

var queueDeleteCmd = &cobra.Command{
	Use:   "delete <item-id>",
	Short: "Delete a queue item",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID(func(e *env, id string) error { return e.st.DeleteQueueItem(id) }),
}

func init() {
	queueAddCmd.Flags().StringVarP(&queuePriority, "priority", "P", "", "Priority (defaults to medium)")
	queueAddCmd.Flags().StringVarP(&queueProject, "project", "p", "", "Project the item belongs to")
	queueAddCmd.Flags().StringVarP(&queueDesc, "description", "d", "", "What the work involves")
	queueListCmd.Flags().StringVarP(&queueStatusFilter, "status", "s", "", "Filter by status (backlog, active, complete)")
	queueCmd.AddCommand(queueAddCmd, queueListCmd, queueStartCmd, queueEndCmd, queueSessionsCmd, queueDeleteCmd)
	rootCmd.AddCommand(queueCmd)
}

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

var (
	addTime     string
	addPriority string
	addProject  string
	addStatus   string
	addAssignee string
	addTags     []string
)

var addCmd = &cobra.Command{
	Use:   "add <action>",
	Short: "Add a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := validate.Task(tags.TaskDraft{
			Action:   args[0],
			Time:     addTime,
			Priority: addPriority,
			Project:  addProject,
			Status:   addStatus,
			Assignee: addAssignee,
			Tags:     addTags,
		})
		if err != nil {
			return fail(err)
		}
		task.UserID = getConfig().GetUserID()

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if e.embedder != nil {
			if vec, embErr := e.embedder.Embed(cmd.Context(), task.SearchText()); embErr == nil {
				task.Embedding = vec
			}
		}
		if err := e.st.AddTask(task); err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(task, nil)
			return nil
		}
		fmt.Println(ui.Successf("added %s", ui.Accent.Render(task.ID)))
		fmt.Printf("  %s  %s/%s\n", task.Action, ui.Muted.Render(task.ParentProject), ui.Muted.Render(string(task.Priority)))
		return nil
	},
}

var (
	listStatus   string
	listPriority string
	listProject  string
	listAssignee string
	listText     string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters := model.TaskFilters{Project: listProject, Text: listText}
		if listStatus != "" {
			status, err := model.ParseStatus(listStatus)
			if err != nil {
				return fail(err)
			}
			filters.Status = status
		}
		if listPriority != "" {
			priority, err := model.ParsePriority(listPriority)
			if err != nil {
				return fail(err)
			}
			filters.Priority = priority
		}
		if listAssignee != "" {
			assignee, err := model.ParseAssignee(listAssignee)
			if err != nil {
				return fail(err)
			}
			filters.Assignee = assignee
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		tasks, err := e.st.ListTasks(filters)
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(tasks, &Meta{Count: len(tasks)})
			return nil
		}
		printTaskTable(tasks)
		return nil
	},
}

func printTaskTable(tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Println(ui.Hint("no tasks"))
		return
	}
	display := ui.NewDisplayContext()
	table := ui.NewResultsTable(display, ui.TaskLayout)
	contentWidth := table.ContentWidth("content")
	for i, t := range tasks {
		meta := fmt.Sprintf("%s/%s", t.Status, t.Priority)
		if t.Progress != nil {
			meta += fmt.Sprintf(" %d%%", *t.Progress)
		}
		table.AddRow(ui.ResultRow{
			Num:      i + 1,
			Cells:    []string{ui.FormatRowNum(i+1, len(tasks)), ui.TruncateWithEllipsis(t.Action, contentWidth), meta, t.ParentProject},
			Location: "task:" + t.ID,
		})
	}
	fmt.Println(table.Render())
	fmt.Println(ui.Hint(fmt.Sprintf("  %d %s", len(tasks), pluralize(len(tasks), "task", "tasks"))))
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		task, err := e.st.GetTask(args[0])
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(task, nil)
			return nil
		}
		printTask(task)
		return nil
	},
}

func printTask(t model.Task) {
	fmt.Println(ui.AccentBold.Render(t.Action))
	fmt.Printf("  id        %s\n", ui.Muted.Render(t.ID))
	fmt.Printf("  project   %s\n", t.ParentProject)
	fmt.Printf("  status    %s\n", t.Status)
	fmt.Printf("  priority  %s\n", t.Priority)
	if t.Time != "" {
		fmt.Printf("  time      %s\n", t.Time)
	}
	if t.Assignee != "" {
		fmt.Printf("  assignee  %s\n", t.Assignee)
	}
	if t.Progress != nil {
		fmt.Printf("  progress  %d%%\n", *t.Progress)
	}
	if len(t.Tags) > 0 {
		fmt.Printf("  tags      %s\n", strings.Join(t.Tags, ", "))
	}
	if t.ContextNotes != "" {
		fmt.Printf("  notes     %s\n", t.ContextNotes)
	}
	fmt.Printf("  updated   %s\n", ui.Muted.Render(t.UpdatedAt.Format("2006-01-02 15:04")))
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Complete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		task, err := e.st.CompleteTask(args[0])
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(task, nil)
			return nil
		}
		fmt.Println(ui.Successf("completed %s", task.Action))
		return nil
	},
}

var (
	updateAction   string
	updateTime     string
	updatePriority string
	updateProject  string
	updateStatus   string
	updateAssignee string
	updateNotes    string
	updateProgress int
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields on a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := buildTaskPatch(cmd)
		if err != nil {
			return fail(err)
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		task, err := e.st.UpdateTask(args[0], patch)
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(task, nil)
			return nil
		}
		fmt.Println(ui.Successf("updated %s", ui.Accent.Render(task.ID)))
		return nil
	},
}

func buildTaskPatch(cmd *cobra.Command) (model.TaskUpdate, error) {
	var patch model.TaskUpdate
	if cmd.Flags().Changed("action") {
		patch.Action = &updateAction
	}
	if cmd.Flags().Changed("time") {
		patch.Time = &updateTime
	}
	if cmd.Flags().Changed("priority") {
		priority, err := model.ParsePriority(updatePriority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &priority
	}
	if cmd.Flags().Changed("project") {
		patch.Project = &updateProject
	}
	if cmd.Flags().Changed("status") {
		status, err := model.ParseStatus(updateStatus)
		if err != nil {
			return patch, err
		}
		patch.Status = &status
	}
	if cmd.Flags().Changed("assignee") {
		assignee, err := model.ParseAssignee(updateAssignee)
		if err != nil {
			return patch, err
		}
		patch.Assignee = &assignee
	}
	if cmd.Flags().Changed("notes") {
		patch.ContextNotes = &updateNotes
	}
	if cmd.Flags().Changed("progress") {
		patch.Progress = &updateProgress
	}
	return patch, nil
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if err := e.st.DeleteTask(args[0]); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"deleted": args[0]}, nil)
			return nil
		}
		fmt.Println(ui.Successf("deleted %s", args[0]))
		return nil
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign <task-id> <agent-id>",
	Short: "Assign a task to an agent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		task, err := e.st.AssignTask(args[1], args[0])
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(task, nil)
			return nil
		}
		fmt.Println(ui.Successf("assigned %s to %s", task.Action, args[1]))
		return nil
	},
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Repair task partition placement",
	Long: `Scan every task partition and repair misplaced or duplicated tasks:
finished tasks sitting in active files move to completed, and ids
present on both sides collapse to the side matching their status.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		fixed, err := e.st.FixCompletedTasksConsistency()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(map[string]int{"fixed": fixed}, nil)
			return nil
		}
		if fixed == 0 {
			fmt.Println(ui.Success("partitions consistent"))
		} else {
			fmt.Println(ui.Successf("repaired %d %s", fixed, pluralize(fixed, "task", "tasks")))
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addTime, "time", "t", "", "Time estimate")
	addCmd.Flags().StringVarP(&addPriority, "priority", "P", "", "Priority (low, medium, high, critical, urgent)")
	addCmd.Flags().StringVarP(&addProject, "project", "p", "", "Project name (required)")
	addCmd.Flags().StringVarP(&addStatus, "status", "s", "", "Initial status")
	addCmd.Flags().StringVarP(&addAssignee, "assignee", "a", "", "Assignee (ai, human, collaborative, or agent name)")
	addCmd.Flags().StringSliceVar(&addTags, "tags", nil, "Comma-separated tags")
	_ = addCmd.MarkFlagRequired("project")

	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Filter by status")
	listCmd.Flags().StringVarP(&listPriority, "priority", "P", "", "Filter by priority")
	listCmd.Flags().StringVarP(&listProject, "project", "p", "", "Filter by project")
	listCmd.Flags().StringVarP(&listAssignee, "assignee", "a", "", "Filter by assignee")
	listCmd.Flags().StringVarP(&listText, "text", "q", "", "Filter by substring match")

	updateCmd.Flags().StringVar(&updateAction, "action", "", "New action text")
	updateCmd.Flags().StringVarP(&updateTime, "time", "t", "", "New time estimate")
	updateCmd.Flags().StringVarP(&updatePriority, "priority", "P", "", "New priority")
	updateCmd.Flags().StringVarP(&updateProject, "project", "p", "", "New project")
	updateCmd.Flags().StringVarP(&updateStatus, "status", "s", "", "New status")
	updateCmd.Flags().StringVarP(&updateAssignee, "assignee", "a", "", "New assignee")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "Context notes")
	updateCmd.Flags().IntVar(&updateProgress, "progress", 0, "Progress percent (0-100)")

	rootCmd.AddCommand(addCmd, listCmd, showCmd, doneCmd, updateCmd, deleteCmd, assignCmd, fixCmd)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/ui"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage project partitions",
}

var projectDesc string

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		project := model.NewProject(args[0], projectDesc)
		if err := e.st.CreateProject(project); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(project, nil)
			return nil
		}
		fmt.Println(ui.Successf("created project %s", ui.Accent.Render(project.Name)))
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		projects, err := e.st.ListProjects()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(projects, &Meta{Count: len(projects)})
			return nil
		}
		if len(projects) == 0 {
			fmt.Println(ui.Hint("no projects"))
			return nil
		}
		for _, p := range projects {
			line := fmt.Sprintf("%-24s %s", p.Name, ui.Muted.Render(string(p.Status)))
			if p.Description != "" {
				line += "  " + p.Description
			}
			fmt.Println(line)
		}
		return nil
	},
}

var projectStatusCmd = &cobra.Command{
	Use:   "status <name> <status>",
	Short: "Set a project's lifecycle state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := model.ParseProjectStatus(args[1])
		if err != nil {
			return fail(err)
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		project, err := e.st.SetProjectStatus(args[0], status)
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(project, nil)
			return nil
		}
		fmt.Println(ui.Successf("%s is now %s", project.Name, project.Status))
		return nil
	},
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive <name>",
	Short: "Archive a project's tasks",
	Long: `Move every task in the project out of the active and completed
partitions into the archive. The project record itself is marked archived.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		moved, err := e.st.ArchiveProject(args[0])
		if err != nil {
			return fail(err)
		}
		// Best effort: the project record may not exist for ad-hoc partitions.
		if _, statusErr := e.st.SetProjectStatus(args[0], model.ProjectArchived); statusErr != nil && model.KindOf(statusErr) != model.KindNotFound {
			return fail(statusErr)
		}
		if isJSONOutput() {
			outputSuccess(map[string]int{"archived": moved}, nil)
			return nil
		}
		fmt.Println(ui.Successf("archived %d %s from %s", moved, pluralize(moved, "task", "tasks"), args[0]))
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a project record",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID(func(e *env, name string) error { return e.st.DeleteProject(name) }),
}

func init() {
	projectCreateCmd.Flags().StringVarP(&projectDesc, "description", "d", "", "What the project is about")
	projectCmd.AddCommand(projectCreateCmd, projectListCmd, projectStatusCmd, projectArchiveCmd, projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}

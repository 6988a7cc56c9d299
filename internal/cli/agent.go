package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/ui"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage agents and their assignments",
}

var agentCapabilities []string

var agentCreateCmd = &cobra.Command{
	Use:   "create <id> <name> [description]",
	Short: "Register an agent",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		description := ""
		if len(args) == 3 {
			description = args[2]
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		agent := model.NewAgent(args[0], args[1], description)
		agent.Capabilities = agentCapabilities
		if err := e.st.SaveAgent(agent); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(agent, nil)
			return nil
		}
		fmt.Println(ui.Successf("registered agent %s", ui.Accent.Render(agent.ID)))
		return nil
	},
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List agents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		agents, err := e.st.ListAgents()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(agents, &Meta{Count: len(agents)})
			return nil
		}
		if len(agents) == 0 {
			fmt.Println(ui.Hint("no agents (run 'tdz agent seed' for defaults)"))
			return nil
		}
		for _, a := range agents {
			line := fmt.Sprintf("%-16s %-20s %s", a.ID, a.Name, ui.Muted.Render(string(a.Status)))
			if len(a.Capabilities) > 0 {
				line += "  " + strings.Join(a.Capabilities, ",")
			}
			if n := len(a.Assignments); n > 0 {
				line += fmt.Sprintf("  %d assigned", n)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var agentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		agent, err := e.st.GetAgent(args[0])
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(agent, nil)
			return nil
		}
		fmt.Println(ui.AccentBold.Render(agent.Name))
		fmt.Printf("  id      %s\n", agent.ID)
		fmt.Printf("  status  %s\n", agent.Status)
		fmt.Printf("  model   %s (t=%.1f)\n", agent.Model.Name, agent.Model.Temperature)
		if agent.Description != "" {
			fmt.Printf("  about   %s\n", agent.Description)
		}
		if len(agent.Capabilities) > 0 {
			fmt.Printf("  can     %s\n", strings.Join(agent.Capabilities, ", "))
		}
		for _, asg := range agent.Assignments {
			fmt.Printf("  task    %s  %s\n", asg.TaskID, ui.Muted.Render(string(asg.Status)))
		}
		return nil
	},
}

var agentSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default agent roster",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if err := e.st.SeedDefaultAgents(); err != nil {
			return fail(err)
		}
		agents, err := e.st.ListAgents()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(agents, &Meta{Count: len(agents)})
			return nil
		}
		fmt.Println(ui.Successf("%d agents available", len(agents)))
		return nil
	},
}

var agentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an agent",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID(func(e *env, id string) error { return e.st.DeleteAgent(id) }),
}

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage server API keys",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an API key",
	Long: `Generate a random API key and store its hash. The raw key is printed
once; it cannot be recovered afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := randomKey()
		if err != nil {
			return fail(err)
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		key, err := e.st.CreateAPIKey(args[0], raw)
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"id": key.ID, "name": key.Name, "key": raw}, nil)
			return nil
		}
		fmt.Println(ui.Successf("created key %s", ui.Accent.Render(key.ID)))
		fmt.Printf("  %s\n", raw)
		fmt.Println(ui.Hint("store this now; only its hash is kept"))
		return nil
	},
}

func randomKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", model.IOError("apikey", err)
	}
	return "tdz_" + hex.EncodeToString(buf), nil
}

var apikeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		keys, err := e.st.ListAPIKeys()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(keys, &Meta{Count: len(keys)})
			return nil
		}
		if len(keys) == 0 {
			fmt.Println(ui.Hint("no API keys"))
			return nil
		}
		for _, k := range keys {
			state := "live"
			if k.Revoked {
				state = "revoked"
			}
			fmt.Printf("%s  %-20s %s\n", k.ID, k.Name, ui.Muted.Render(state))
		}
		return nil
	},
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke <id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if err := e.st.RevokeAPIKey(args[0]); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"revoked": args[0]}, nil)
			return nil
		}
		fmt.Println(ui.Successf("revoked %s", args[0]))
		return nil
	},
}

func init() {
	agentCreateCmd.Flags().StringSliceVar(&agentCapabilities, "capabilities", nil, "Comma-separated capability names")
	agentCmd.AddCommand(agentCreateCmd, agentListCmd, agentShowCmd, agentSeedCmd, agentDeleteCmd)
	apikeyCmd.AddCommand(apikeyCreateCmd, apikeyListCmd, apikeyRevokeCmd)
	rootCmd.AddCommand(agentCmd, apikeyCmd)
}

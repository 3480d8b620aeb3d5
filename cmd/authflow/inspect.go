package main

import (
	"github.com/aretw0/authflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the available automata",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return app.List(cmd.Context())
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <name>",
	Short: "Print the transition table of an automaton",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return app.Describe(cmd.Context(), args[0], !plain && tui.IsTerminal(cmd.OutOrStdout()))
	},
}

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [name]",
	Short: "Export the automaton graph visualization",
	Long: `Outputs a Mermaid diagram (graph LR) of the automaton.
With --session, the states visited by that run are highlighted and its
current configuration is marked active.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return app.Graph(cmd.Context(), name, sessionID)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every automaton definition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return app.Validate(cmd.Context())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <target-dir>",
	Short: "Write every automaton as a YAML file",
	Long: `Writes every automaton served by the current source as an editable
YAML file. Run it without --dir to seed a directory with the built-in catalog.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		_, err = app.Export(cmd.Context(), args[0])
		return err
	},
}

func init() {
	describeCmd.Flags().Bool("plain", false, "Print raw markdown instead of rendering it")
	graphCmd.Flags().StringP("session", "s", "", "Highlight the trajectory of this run")

	rootCmd.AddCommand(listCmd, describeCmd, graphCmd, validateCmd, exportCmd)
}

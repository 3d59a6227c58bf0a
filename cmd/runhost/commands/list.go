package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/runhost/internal/host"
)

var listCmd = &cobra.Command{
	Use:     "commands",
	Aliases: []string{"list"},
	Short:   "List available commands",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var usageCmd = &cobra.Command{
	Use:   "usage <command>",
	Short: "Show the arguments a command accepts",
	Long: `Show the arguments a command accepts.

Examples:
  runhost usage echo
  runhost usage probe`,
	Args: cobra.ExactArgs(1),
	RunE: runUsage,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMMAND\tDESCRIPTION")
	for _, reg := range a.registry.List() {
		fmt.Fprintf(w, "%s\t%s\n", reg.Name, reg.Description)
	}
	return w.Flush()
}

func runUsage(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	reg, err := a.registry.Resolve(args[0])
	if err != nil {
		return &ExitError{Code: host.ExitUsage, Message: err.Error()}
	}

	out := cmd.OutOrStdout()
	if reg.Description != "" {
		fmt.Fprintf(out, "%s - %s\n\n", reg.Name, reg.Description)
	}
	return reg.Usage(out, host.Width(out))
}

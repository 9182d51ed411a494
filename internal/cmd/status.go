package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show active workflows and their gates",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	active := a.store.ListActive()
	if len(active) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No active workflows")
		return nil
	}

	for i, entry := range active {
		rec := entry.Record
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Workflow: %s\n", rec.WorkflowID)
		if rec.Workflow.Type != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  Type: %s\n", rec.Workflow.Type)
		}
		if rec.Mode.Current != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  Mode: %s\n", rec.Mode.Current)
		}
		if rec.Phase != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  Phase: %s\n", rec.Phase.Current)
		}
		if rec.UpdatedAt != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  Updated: %s\n", rec.UpdatedAt)
		}

		if rec.AllMandatoryGatesPassed() {
			fmt.Fprintln(cmd.OutOrStdout(), "  Gates: all passed")
		} else {
			pending := rec.PendingGates()
			names := make([]string, 0, len(pending))
			for _, g := range pending {
				names = append(names, fmt.Sprintf("%s (%s)", g.Name, g.Gate.Status))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  Pending gates: %s\n", strings.Join(names, ", "))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  State: %s\n", entry.Path)
	}

	if orphans := a.store.FindOrphans(); len(orphans) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nOrphaned documents:\n")
		for _, path := range orphans {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", path)
		}
	}
	return nil
}

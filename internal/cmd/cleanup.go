package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	cleanupMaxAgeHours int
	cleanupSession     string
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove stale session scratch files",
	Long: `Cleanup removes session artifacts that accumulate over time:
markers, bindings, and safety-valve counters past the age limit. With
--session, everything belonging to that one session is removed
regardless of age. Orphaned workflow documents are reported but never
deleted.`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().IntVar(&cleanupMaxAgeHours, "max-age-hours", 0, "Override the age limit (default from config)")
	cleanupCmd.Flags().StringVar(&cleanupSession, "session", "", "Remove all scratch files for one session")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	if cleanupSession != "" {
		removed := a.bindings.CleanupSessionFiles(cleanupSession)
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d files for session %s\n", removed, cleanupSession)
		return nil
	}

	maxAge := a.cfg.Cleanup.MaxAge()
	if cleanupMaxAgeHours > 0 {
		maxAge = time.Duration(cleanupMaxAgeHours) * time.Hour
	}
	removed := a.bindings.CleanupStale(maxAge)
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale files (older than %s)\n", removed, maxAge)

	if orphans := a.store.FindOrphans(); len(orphans) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d orphaned workflow documents (not removed):\n", len(orphans))
		for _, path := range orphans {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", path)
		}
	}
	return nil
}

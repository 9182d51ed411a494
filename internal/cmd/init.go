package cmd

import (
	"fmt"

	"github.com/Iron-Ham/warden/internal/bootstrap"
	"github.com/spf13/cobra"
)

var initCheck bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the workflow directory layout",
	Long: `Creates every directory the enforcement hooks rely on. Safe to
run repeatedly; existing directories are left alone.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initCheck, "check", false, "Report missing directories without creating anything")
}

func runInit(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()
	base := a.cfg.Paths.BaseDir

	if initCheck {
		missing := bootstrap.Check(base)
		if len(missing) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All directories exist")
			return nil
		}
		for _, dir := range missing {
			fmt.Fprintf(cmd.OutOrStdout(), "missing: %s\n", dir)
		}
		return fmt.Errorf("%d directories missing", len(missing))
	}

	res := bootstrap.Initialize(base)
	for _, st := range res.Directories {
		icon := "·"
		switch st.Status {
		case "created":
			icon = "✓"
		case "error":
			icon = "✗"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", icon, st.Path, st.Status)
	}
	if !res.OK() {
		for _, st := range res.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", st.Path, st.Err)
		}
		return fmt.Errorf("initialization failed for %d directories", len(res.Errors))
	}
	return nil
}

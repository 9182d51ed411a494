package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/warden/internal/statusline"
	"github.com/spf13/cobra"
)

var statuslineCmd = &cobra.Command{
	Use:   "statusline",
	Short: "Render the status line",
	Long: `Renders the one-line status bar from the session snapshot on
stdin plus cached usage-limit data. Usage data is fetched at most once
per cache TTL; everything degrades gracefully when unavailable.`,
	RunE: runStatusline,
}

func init() {
	rootCmd.AddCommand(statuslineCmd)
}

func runStatusline(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	session := statusline.DecodeSession(cmd.InOrStdin())

	client := statusline.NewUsageClient(filepath.Join(a.cfg.Paths.ScratchDir, "warden-statusline-usage.json"))
	client.TTL = a.cfg.Statusline.CacheTTL()

	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	usage := statusline.FetchUsage(cmd.Context(), client, home)

	if line := statusline.Render(session, usage, time.Now()); line != "" {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

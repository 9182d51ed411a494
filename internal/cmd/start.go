package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Iron-Ham/warden/internal/rules"
	"github.com/Iron-Ham/warden/internal/workflow"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	startType    string
	startMode    string
	startSession string
)

var startCmd = &cobra.Command{
	Use:   "start [description]",
	Short: "Create a new workflow and optionally bind a session to it",
	Long: `Creates a workflow state record with the full gate sequence
pending and an org file skeleton next to it. With --session, the
session is bound to the new workflow so enforcement applies to it
immediately.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().StringVar(&startType, "type", "development", "Workflow type (development or e2e)")
	startCmd.Flags().StringVar(&startMode, "mode", "standard", "Operating mode (eco, turbo, standard, thorough, swarm)")
	startCmd.Flags().StringVar(&startSession, "session", "", "Session id to bind to the new workflow")
}

func runStart(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	if _, ok := rules.ModeConstraints[startMode]; !ok {
		return fmt.Errorf("unknown mode %q", startMode)
	}
	phases := rules.PhaseOrder
	switch startType {
	case "development":
	case "e2e":
		phases = rules.E2EPhaseOrder
	default:
		return fmt.Errorf("unknown workflow type %q", startType)
	}

	description := ""
	if len(args) > 0 {
		description = args[0]
	}

	id := "wf-" + uuid.NewString()[:8]
	now := time.Now().UTC().Format(time.RFC3339Nano)

	gates := make(map[string]*workflow.Gate, len(phases))
	for _, name := range phases {
		gates[name] = &workflow.Gate{Status: workflow.GatePending}
	}

	orgPath := filepath.Join(a.store.ActiveDir(), id+".org")
	rec := &workflow.Record{
		WorkflowID: id,
		Workflow:   workflow.Meta{Type: startType, Description: description},
		Mode:       workflow.Mode{Current: startMode},
		Phase: &workflow.Phase{
			Current:   phases[0],
			Remaining: append([]string(nil), phases...),
		},
		Gates:     gates,
		OrgFile:   orgPath,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := os.MkdirAll(a.store.ActiveDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create active directory: %w", err)
	}
	statePath := filepath.Join(a.store.ActiveDir(), id+".state.json")
	if !a.store.Write(statePath, rec) {
		return fmt.Errorf("failed to write workflow state to %s", statePath)
	}
	if err := os.WriteFile(orgPath, []byte(orgSkeleton(rec, phases)), 0o644); err != nil {
		a.log.Warn("org file not written", "path", orgPath, "err", err)
	}

	if startSession != "" {
		if !a.bindings.Bind(startSession, statePath, id) {
			return fmt.Errorf("workflow created but session %q could not be bound", startSession)
		}
		a.bindings.WriteMarker(startSession)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Workflow %s created (%s, mode %s)\n", id, startType, startMode)
	fmt.Fprintf(cmd.OutOrStdout(), "State: %s\n", statePath)
	fmt.Fprintf(cmd.OutOrStdout(), "Org:   %s\n", orgPath)
	if startSession != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Bound session: %s\n", startSession)
	}
	return nil
}

func orgSkeleton(rec *workflow.Record, phases []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#+TITLE: Workflow %s\n", rec.WorkflowID)
	fmt.Fprintf(&b, "#+TYPE: %s\n", rec.Workflow.Type)
	fmt.Fprintf(&b, "#+MODE: %s\n\n", rec.Mode.Current)
	if rec.Workflow.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", rec.Workflow.Description)
	}
	b.WriteString("* Gates\n\n")
	b.WriteString("| Gate | Status |\n")
	b.WriteString("|------+--------|\n")
	for _, name := range phases {
		fmt.Fprintf(&b, "| %s | pending |\n", name)
	}
	return b.String()
}

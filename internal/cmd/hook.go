package cmd

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/warden/internal/cmdsafety"
	"github.com/Iron-Ham/warden/internal/hook"
	"github.com/Iron-Ham/warden/internal/validate"
	"github.com/spf13/cobra"
)

// The hook subcommands are the surfaces lifecycle events invoke. They
// read one JSON payload from stdin, write at most one decision to
// stdout, and exit 0, with the single exception of task-completed,
// which signals a hard block via exit status 2. Errors are deliberately
// swallowed: a hook that cannot decide must not wedge the session.

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Lifecycle event entry points",
	Long: `Hook subcommands are invoked by the agent runtime on lifecycle
events. Each reads the event payload from stdin and emits a decision,
if any, as JSON on stdout.`,
}

func init() {
	rootCmd.AddCommand(hookCmd)
	hookCmd.AddCommand(
		hookStopCmd,
		hookSubagentStopCmd,
		hookPreTaskCmd,
		hookTaskCompletedCmd,
		hookSessionStartCmd,
		hookSessionEndCmd,
		hookPreBashCmd,
		hookPostEditCmd,
	)
}

var hookStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Termination check (Stop event)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		in := hook.Decode(cmd.InOrStdin())
		if d := a.guard.CheckStop(in); !d.Allow {
			return hook.WriteStopBlock(cmd.OutOrStdout(), d.Reason)
		}
		return nil
	},
}

var hookSubagentStopCmd = &cobra.Command{
	Use:   "subagent-stop",
	Short: "Gate tracking (SubagentStop event)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		a.guard.TrackSubagent(hook.Decode(cmd.InOrStdin()))
		return nil
	},
}

var hookPreTaskCmd = &cobra.Command{
	Use:   "pre-task",
	Short: "Mode routing (PreToolUse event, Task tool)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		in := hook.Decode(cmd.InOrStdin())
		if d := a.guard.RouteTask(in); !d.Allow {
			return hook.WritePermissionDecision(cmd.OutOrStdout(), hook.PermissionDeny, d.Reason)
		}
		return nil
	},
}

var hookTaskCompletedCmd = &cobra.Command{
	Use:   "task-completed",
	Short: "Completion gate (TaskCompleted event)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		in := hook.Decode(cmd.InOrStdin())
		if d := a.guard.CheckCompletion(in); !d.Allow {
			fmt.Fprintln(cmd.ErrOrStderr(), d.Reason)
			os.Exit(hook.ExitBlockCompletion)
		}
		return nil
	},
}

var hookSessionStartCmd = &cobra.Command{
	Use:   "session-start",
	Short: "Workflow auto-resume (SessionStart event)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		in := hook.Decode(cmd.InOrStdin())
		if ctx := a.guard.SessionStartContext(in); ctx != "" {
			return hook.WriteSessionContext(cmd.OutOrStdout(), ctx)
		}
		return nil
	},
}

var hookSessionEndCmd = &cobra.Command{
	Use:   "session-end",
	Short: "Session scratch cleanup (SessionEnd event)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		in := hook.Decode(cmd.InOrStdin())
		removed := a.bindings.CleanupSessionFiles(in.SessionID)
		a.log.WithHook("session-end").Info("session files cleaned",
			"session_id", in.SessionID, "removed", removed)
		return nil
	},
}

var hookPreBashCmd = &cobra.Command{
	Use:   "pre-bash",
	Short: "Command safety check (PreToolUse event, Bash tool)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		in := hook.Decode(cmd.InOrStdin())
		switch d := cmdsafety.Classify(in.ToolInput.Command); d.Verdict {
		case cmdsafety.Allow:
			return hook.WritePermissionDecision(cmd.OutOrStdout(), hook.PermissionAllow, d.Reason)
		case cmdsafety.Deny:
			a.log.WithHook("pre-bash").Warn("command blocked", "reason", d.Reason)
			return hook.WritePermissionDecision(cmd.OutOrStdout(), hook.PermissionDeny, d.Reason)
		default:
			// No opinion: the normal permission flow decides.
			return nil
		}
	},
}

var hookPostEditCmd = &cobra.Command{
	Use:   "post-edit",
	Short: "Syntax validation (PostToolUse event, Edit/Write tools)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		in := hook.Decode(cmd.InOrStdin())
		path := in.ToolInput.FilePath
		if path == "" {
			path = os.Getenv("CLAUDE_FILE_PATH")
		}
		if cwd, err := os.Getwd(); err == nil {
			a.store.AllowRoot(cwd)
		}
		resolved := a.store.ValidatePath(path)
		if resolved == "" {
			return nil
		}

		v := validate.New(a.cfg.Validator.Timeout(), a.log)
		if report := v.Check(cmd.Context(), resolved); report != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), report)
		}
		return nil
	},
}

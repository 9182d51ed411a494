// Package statusline renders the one-line status bar: model name,
// rolling usage limits, context window fill, and session cost. Every
// data source is optional; whatever is unavailable simply leaves its
// segment out.
package statusline

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/Iron-Ham/warden/internal/util"
)

const (
	// maxModelWidth bounds the model name segment so one long display
	// name cannot crowd out the usage bars.
	maxModelWidth = 24

	// maxLineWidth caps the assembled line. Terminals clip overlong
	// status lines mid escape sequence, so clipping happens here with
	// ANSI-aware truncation instead.
	maxLineWidth = 160
)

// Session is the session snapshot delivered on stdin.
type Session struct {
	Model *struct {
		DisplayName string `json:"display_name"`
	} `json:"model,omitempty"`
	ContextWindow *struct {
		UsedPercentage *float64 `json:"used_percentage"`
	} `json:"context_window,omitempty"`
	Cost *struct {
		TotalCostUSD *float64 `json:"total_cost_usd"`
	} `json:"cost,omitempty"`
}

// DecodeSession reads the session snapshot, degrading to an empty one
// on any failure.
func DecodeSession(r io.Reader) Session {
	var s Session
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil || len(data) == 0 {
		return Session{}
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}
	}
	return s
}

// Render assembles the status line. Usage segments require a usable
// usage payload; session segments come from the snapshot alone.
func Render(session Session, usage *Usage, now time.Time) string {
	var parts []string

	if session.Model != nil && session.Model.DisplayName != "" {
		name := util.TruncateString(session.Model.DisplayName, maxModelWidth)
		parts = append(parts, modelStyle.Render(name))
	}

	if usage != nil {
		if seg := usageSegment("5h", usage.FiveHour, now); seg != "" {
			parts = append(parts, seg)
		}
		if seg := usageSegment("7d", usage.SevenDay, now); seg != "" {
			parts = append(parts, seg)
		}
	}

	if cw := session.ContextWindow; cw != nil && cw.UsedPercentage != nil {
		parts = append(parts,
			dimStyle.Render("ctx")+" "+ProgressBar(*cw.UsedPercentage, barWidth)+" "+FormatPct(*cw.UsedPercentage))
	}

	if c := session.Cost; c != nil && c.TotalCostUSD != nil {
		parts = append(parts, costStyle.Render(FormatCost(*c.TotalCostUSD)))
	}

	return util.TruncateANSI(strings.Join(parts, " "+dimStyle.Render(separator)+" "), maxLineWidth)
}

func usageSegment(label string, w *Window, now time.Time) string {
	if w == nil {
		return ""
	}
	seg := dimStyle.Render(label) + " " + ProgressBar(w.Utilization, barWidth) + " " + FormatPct(w.Utilization)
	if reset := FormatResetTime(w.ResetsAt, now); reset != "" {
		seg += " " + dimStyle.Render(reset)
	}
	return seg
}

// FetchUsage resolves credentials and pulls usage data, returning nil
// when either step comes up empty.
func FetchUsage(ctx context.Context, client *UsageClient, homeDir string) *Usage {
	token := AccessToken(homeDir)
	if token == "" {
		return nil
	}
	return client.Fetch(ctx, token)
}

package statusline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimStyle    = lipgloss.NewStyle().Faint(true)
	modelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB"))
	costStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22D3EE"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24"))
	dangerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
)

const (
	barWidth  = 10
	barFull   = "█"
	barEmpty  = "░"
	separator = "│"
)

// levelStyle picks the color band for a utilization percentage.
func levelStyle(pct int) lipgloss.Style {
	switch {
	case pct >= 90:
		return dangerStyle
	case pct >= 70:
		return warnStyle
	default:
		return okStyle
	}
}

// ProgressBar renders a fixed-width utilization bar.
func ProgressBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct/100*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	style := levelStyle(int(pct + 0.5))
	return style.Render(strings.Repeat(barFull, filled)) +
		dimStyle.Render(strings.Repeat(barEmpty, width-filled))
}

// FormatPct renders a right-aligned colored percentage.
func FormatPct(pct float64) string {
	rounded := int(pct + 0.5)
	return levelStyle(rounded).Render(fmt.Sprintf("%3d%%", rounded))
}

// FormatResetTime renders how long until the given RFC3339 instant,
// compressed to the largest useful unit. Empty input or a past instant
// render as "" and "now" respectively.
func FormatResetTime(iso string, now time.Time) string {
	if iso == "" {
		return ""
	}
	reset, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return ""
	}
	diff := reset.Sub(now)
	if diff <= 0 {
		return "now"
	}
	hours := int(diff.Hours())
	mins := int(diff.Minutes()) % 60
	switch {
	case hours > 24:
		return fmt.Sprintf("%dd", hours/24)
	case hours > 0:
		return fmt.Sprintf("%dh%dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// FormatCost renders a dollar amount, flooring sub-cent values to $0.00.
func FormatCost(usd float64) string {
	if usd < 0.01 {
		return "$0.00"
	}
	return fmt.Sprintf("$%.2f", usd)
}

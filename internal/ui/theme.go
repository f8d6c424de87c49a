package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Deck theme (CLI + TUI).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconAgent   = "🤖"
	IconQuest   = "🗺️"
	IconSparkle = "✨"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconBell    = "🔔"
	IconSkill   = "🔓"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconUp      = "⬆️"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// PriorityText styles a notification priority.
func PriorityText(priority string) string {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "high":
		return Bad.Render("high")
	case "medium":
		return Warn.Render("medium")
	case "low":
		return Muted.Render("low")
	default:
		return Muted.Render(priority)
	}
}

// XPBar renders a fixed-width progress bar for xp out of xpToNext.
func XPBar(xp, xpToNext, width int) string {
	if width < 4 {
		width = 4
	}
	if xpToNext <= 0 {
		xpToNext = 1
	}
	filled := xp * width / xpToNext
	if filled > width {
		filled = width
	}
	bar := Good.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %d/%d", bar, xp, xpToNext)
}

// ClassIcon returns a small glyph per agent class.
func ClassIcon(class string) string {
	switch class {
	case "coder":
		return "⌨️"
	case "researcher":
		return "🔬"
	case "designer":
		return "🎨"
	case "strategist":
		return "♟️"
	case "support":
		return "🛟"
	default:
		return IconAgent
	}
}

// Package ui holds presentation state and terminal rendering for the
// storefront CLI.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/utafrali/bookshelf/internal/domain"
)

// Palette.
var (
	Primary     = lipgloss.Color("#3E5C76")
	Accent      = lipgloss.Color("#C08552")
	MutedColor  = lipgloss.Color("#8D99AE")
	BorderColor = lipgloss.Color("#D6DAE0")
	Destructive = lipgloss.Color("#E53935")
	SuccessTint = lipgloss.Color("#6A994E")
	InfoTint    = lipgloss.Color("#2196F3")
)

// Styles groups the lipgloss styles used by every view.
type Styles struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Price   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Panel   lipgloss.Style
}

// DefaultStyles returns the storefront styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Bold:    lipgloss.NewStyle().Bold(true),
		Body:    lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle().Foreground(MutedColor),
		Price:   lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Success: lipgloss.NewStyle().Foreground(SuccessTint),
		Error:   lipgloss.NewStyle().Foreground(Destructive),
		Info:    lipgloss.NewStyle().Foreground(InfoTint),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1),
	}
}

// FormatPrice renders an amount with thousands separators and two decimals.
func FormatPrice(m domain.Money) string {
	f, _ := m.Cents().Float64()
	return "$" + humanize.FormatFloat("#,###.##", f)
}

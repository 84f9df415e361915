// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Minus   = "-"
)

// Text styles.
var (
	Installed = lipgloss.NewStyle().Foreground(Green)
	Skipped   = lipgloss.NewStyle().Foreground(Slate)
	Removed   = lipgloss.NewStyle().Foreground(Yellow)
	Identity  = lipgloss.NewStyle().Foreground(Iris).Bold(true)
)

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/twig/internal/app"
	"go.trai.ch/twig/internal/ui/output"
	"go.trai.ch/twig/internal/ui/style"
)

// printReport writes one line per changed package followed by a summary.
func printReport(w io.Writer, report *app.InstallReport) {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(output.ColorProfile(w))

	installed := r.NewStyle().Inherit(style.Installed)
	removed := r.NewStyle().Inherit(style.Removed)
	skipped := r.NewStyle().Inherit(style.Skipped)
	identity := r.NewStyle().Inherit(style.Identity)

	var b strings.Builder
	for _, p := range report.Result.Installed {
		line := installed.Render(style.Check) + " " + p
		if n, ok := report.Tree.Find(p); ok {
			line += " " + identity.Render(n.ID())
		}
		b.WriteString(line + "\n")
	}
	for _, p := range report.Result.Removed {
		b.WriteString(removed.Render(style.Minus) + " " + p + "\n")
	}

	b.WriteString(skipped.Render(fmt.Sprintf("%d installed, %d unchanged, %d removed",
		len(report.Result.Installed), len(report.Result.Skipped), len(report.Result.Removed))) + "\n")

	_, _ = io.WriteString(w, b.String())
}

package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	doctorColorGreen = lipgloss.Color("#22c55e")
	doctorColorRed   = lipgloss.Color("#ef4444")
	doctorColorAmber = lipgloss.Color("#f59e0b")
	doctorColorBlue  = lipgloss.Color("#3b82f6")
	doctorColorDim   = lipgloss.Color("#6b7280")
)

var (
	doctorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(doctorColorBlue)
	doctorDimStyle   = lipgloss.NewStyle().Foreground(doctorColorDim)
	doctorOKStyle    = lipgloss.NewStyle().Foreground(doctorColorGreen)
	doctorFailStyle  = lipgloss.NewStyle().Foreground(doctorColorRed)
	doctorWarnStyle  = lipgloss.NewStyle().Foreground(doctorColorAmber)
)

// renderDoctor produces a lipgloss-styled doctor report.
func renderDoctor(status *DoctorStatus) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(doctorTitleStyle.Render("  Tools"))
	b.WriteString("\n")
	b.WriteString(doctorDimStyle.Render("  " + strings.Repeat("─", 35)))
	b.WriteString("\n")
	for _, r := range status.Tools {
		switch {
		case r.Found:
			b.WriteString(doctorOKStyle.Render("  ✓ "))
			fmt.Fprintf(&b, "%-20s %s\n", r.Tool.Name, doctorDimStyle.Render(r.Version))
		case r.Tool.Required:
			b.WriteString(doctorFailStyle.Render("  ✗ "))
			fmt.Fprintf(&b, "%-20s %s\n", r.Tool.Name, doctorDimStyle.Render(r.Tool.Description))
		default:
			b.WriteString(doctorWarnStyle.Render("  - "))
			fmt.Fprintf(&b, "%-20s %s\n", r.Tool.Name, doctorDimStyle.Render("optional, not installed"))
		}
	}

	b.WriteString("\n")
	b.WriteString(doctorTitleStyle.Render("  Environment"))
	b.WriteString("\n")
	b.WriteString(doctorDimStyle.Render("  " + strings.Repeat("─", 35)))
	b.WriteString("\n")
	if status.Environment == "" {
		b.WriteString(doctorWarnStyle.Render("    none selected (use --environment or JUJU_ENV)"))
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "    Name:      %s\n", status.Environment)
		fmt.Fprintf(&b, "    State:     %s\n", renderState(status))
	}
	fmt.Fprintf(&b, "    Bootstrap: %t\n", status.Bootstrap)
	fmt.Fprintf(&b, "    Sources:   %d\n", status.Sources)
	fmt.Fprintf(&b, "    Packages:  %d\n", status.Packages)
	b.WriteString("\n")

	return b.String()
}

func renderState(status *DoctorStatus) string {
	switch {
	case status.ProbeError != "":
		return doctorFailStyle.Render(status.State + ": " + status.ProbeError)
	case status.State == "running":
		return doctorOKStyle.Render(status.State)
	default:
		return doctorWarnStyle.Render(status.State)
	}
}

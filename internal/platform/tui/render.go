package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-pet/internal/pet"
)

const (
	heartFull  = "♥"
	heartEmpty = "♡"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	heartFullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	heartEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("213")).
			Padding(0, 2)
)

// RenderHearts draws MaxHearts slots, filled up to hearts.
// Out-of-range counts are clamped for display.
func RenderHearts(hearts int) string {
	hearts = max(pet.MinHearts, min(hearts, pet.MaxHearts))

	slots := make([]string, 0, pet.MaxHearts)
	for i := 0; i < pet.MaxHearts; i++ {
		if i < hearts {
			slots = append(slots, heartFullStyle.Render(heartFull))
		} else {
			slots = append(slots, heartEmptyStyle.Render(heartEmpty))
		}
	}
	return strings.Join(slots, " ")
}

// RenderAudio describes the muted flag.
func RenderAudio(muted bool) string {
	if muted {
		return mutedStyle.Render("Muted")
	}
	return activeStyle.Render("Active")
}

// RenderStatus is the compact multi-line summary used by the CLI.
func RenderStatus(st pet.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %d/%d\n", RenderHearts(st.Hearts), st.Hearts, pet.MaxHearts)
	fmt.Fprintf(&b, "Audio: %s\n", RenderAudio(st.IsMuted))
	if !st.LastUpdated.IsZero() {
		b.WriteString(dimStyle.Render("Updated " + st.LastUpdated.Local().Format("2006-01-02 15:04:05")))
		b.WriteString("\n")
	}
	return b.String()
}

// renderPanel draws the boxed control panel body.
func renderPanel(title string, st pet.State) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(RenderStatus(st))
	if st.IsMuted {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Earmuffs on: the pet can't hear taps."))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

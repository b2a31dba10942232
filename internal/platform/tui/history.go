package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-pet/internal/storage"
)

// History layout constants
const (
	historyLimit     = 50
	historyMinHeight = 5
)

// historyMsg carries a loaded page of journal entries.
type historyMsg struct {
	entries []storage.ChangeEntry
	err     error
}

// newHistoryTable creates the journal table sized for the terminal.
func newHistoryTable(width, height int) table.Model {
	columns := []table.Column{
		{Title: "#", Width: 6},
		{Title: "Action", Width: 14},
		{Title: "Hearts", Width: 6},
		{Title: "Audio", Width: 7},
		{Title: "When", Width: 14},
	}

	// Give the time column whatever is left
	if width > 60 {
		columns[4].Width = min(width-4-6-14-6-7-10, 20)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(height-12, historyMinHeight)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// historyRows converts journal entries to table rows.
func historyRows(entries []storage.ChangeEntry) []table.Row {
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		audio := "on"
		if e.IsMuted {
			audio = "muted"
		}
		rows[i] = table.Row{
			strconv.FormatInt(e.ID, 10),
			string(e.Action),
			strconv.Itoa(e.Hearts),
			audio,
			e.LastUpdated.Local().Format("Jan 02 15:04:05"),
		}
	}
	return rows
}

// Package tui provides the pet control panel: a Bubble Tea model usable in a
// local terminal or over SSH via Wish.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pet/internal/pet"
)

// TickMsg triggers a state refresh when polling a remote server.
type TickMsg time.Time

// tickCmd returns a command that sends a TickMsg after interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// changeMsg carries a change pushed by the store.
type changeMsg pet.Change

// waitForChange blocks until the next change or until done is closed.
func waitForChange(changes <-chan pet.Change, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case c := <-changes:
			return changeMsg(c)
		case <-done:
			return nil
		}
	}
}

package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pet/internal/pet"
)

// requestTimeout bounds each controller call.
const requestTimeout = 5 * time.Second

const msgMutedGuard = "The pet has its earmuffs on. Press m to take them off."

// stateMsg is the result of a controller call.
type stateMsg struct {
	state   pet.State
	message string
}

// refreshMsg is a background refresh; it does not touch the status line.
type refreshMsg struct {
	state pet.State
}

type errMsg struct {
	err error
}

// Model is the Bubble Tea model for the pet control panel.
type Model struct {
	ctrl  Controller
	title string
	keys  KeyMap
	help  help.Model

	state   pet.State
	loaded  bool
	busy    bool
	status  string
	isError bool

	// In-process sessions get pushed changes; remote sessions poll.
	changes      <-chan pet.Change
	changesDone  <-chan struct{}
	pollInterval time.Duration

	showHistory bool
	history     table.Model

	width    int
	height   int
	quitting bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithTitle sets the panel title.
func WithTitle(title string) ModelOption {
	return func(m *Model) {
		m.title = title
	}
}

// WithSubscription redraws whenever sub delivers a change.
func WithSubscription(sub *pet.Subscription) ModelOption {
	return func(m *Model) {
		m.changes = sub.Changes()
		m.changesDone = sub.Done()
	}
}

// WithPolling refreshes the state every interval.
func WithPolling(interval time.Duration) ModelOption {
	return func(m *Model) {
		m.pollInterval = interval
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) ModelOption {
	return func(m *Model) {
		m.width = width
		m.height = height
	}
}

// NewModel creates a control panel driving ctrl.
func NewModel(ctrl Controller, opts ...ModelOption) Model {
	m := Model{
		ctrl:   ctrl,
		title:  "Pet",
		keys:   DefaultKeyMap(),
		help:   help.New(),
		width:  80,
		height: 24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.help.Width = m.width
	m.history = newHistoryTable(m.width, m.height)
	return m
}

// Init loads the state and starts listening for changes.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refresh()}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes, m.changesDone))
	}
	if m.pollInterval > 0 {
		cmds = append(cmds, tickCmd(m.pollInterval))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.history = newHistoryTable(m.width, m.height)
		return m, nil

	case stateMsg:
		m.adopt(msg.state)
		m.busy = false
		m.status = msg.message
		m.isError = false
		return m, nil

	case refreshMsg:
		m.adopt(msg.state)
		return m, nil

	case errMsg:
		m.busy = false
		m.status = errorText(msg.err)
		m.isError = true
		return m, nil

	case changeMsg:
		m.adopt(msg.State)
		return m, waitForChange(m.changes, m.changesDone)

	case TickMsg:
		return m, tea.Batch(m.refresh(), tickCmd(m.pollInterval))

	case historyMsg:
		if msg.err != nil {
			m.showHistory = false
			m.status = errorText(msg.err)
			m.isError = true
			return m, nil
		}
		m.history.SetRows(historyRows(msg.entries))
		m.history.GotoTop()
		return m, nil
	}

	if m.showHistory {
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}
	return m, nil
}

// adopt takes st unless it is older than what is already shown. Refreshes
// and pushed changes can arrive out of order with action results.
func (m *Model) adopt(st pet.State) {
	if m.loaded && st.LastUpdated.Before(m.state.LastUpdated) {
		return
	}
	m.state = st
	m.loaded = true
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.History):
		m.showHistory = !m.showHistory
		if m.showHistory {
			return m, m.loadHistory()
		}
		return m, nil
	}

	if m.showHistory {
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}

	// Actions are ignored while a call is in flight or before the first load.
	if m.busy || !m.loaded {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.AddHeart):
		if m.state.IsMuted {
			return m.guard(), nil
		}
		return m.start(m.ctrl.AddHeart, "Heart added")

	case key.Matches(msg, m.keys.RemoveHeart):
		if m.state.IsMuted {
			return m.guard(), nil
		}
		return m.start(m.ctrl.RemoveHeart, "Heart removed")

	case key.Matches(msg, m.keys.ToggleAudio):
		return m.start(m.ctrl.ToggleAudio, "")

	case key.Matches(msg, m.keys.Reset):
		return m.start(m.ctrl.Reset, "Pet reset")
	}

	return m, nil
}

func (m Model) guard() Model {
	m.status = msgMutedGuard
	m.isError = true
	return m
}

func (m Model) start(op func(context.Context) (pet.State, error), message string) (Model, tea.Cmd) {
	m.busy = true
	return m, m.call(op, message)
}

// call runs op off the UI goroutine and reports a stateMsg or errMsg.
func (m Model) call(op func(context.Context) (pet.State, error), message string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		st, err := op(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		if message == "" {
			message = audioMessage(st)
		}
		return stateMsg{state: st, message: message}
	}
}

func (m Model) refresh() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		st, err := ctrl.GetState(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return refreshMsg{state: st}
	}
}

func (m Model) loadHistory() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		entries, err := ctrl.History(ctx, historyLimit)
		return historyMsg{entries: entries, err: err}
	}
}

func audioMessage(st pet.State) string {
	if st.IsMuted {
		return "Earmuffs on"
	}
	return "Earmuffs off"
}

// View renders the control panel.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if !m.loaded {
		b.WriteString(dimStyle.Render("Loading..."))
	} else if m.showHistory {
		b.WriteString(titleStyle.Render("History"))
		b.WriteString("\n\n")
		b.WriteString(m.history.View())
	} else {
		b.WriteString(renderPanel(m.title, m.state))
	}
	b.WriteString("\n")

	switch {
	case m.busy:
		b.WriteString(dimStyle.Render("..."))
	case m.status != "" && m.isError:
		b.WriteString(errorStyle.Render(m.status))
	case m.status != "":
		b.WriteString(m.status)
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// State returns the last known pet state.
func (m Model) State() pet.State {
	return m.state
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

// IsQuitting returns true if user requested to quit.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// Run starts the control panel in the local terminal.
func Run(ctrl Controller, opts ...ModelOption) error {
	p := tea.NewProgram(NewModel(ctrl, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Package inbox is the interactive terminal UI for answering pending
// requests. The model polls the broker on a fixed cadence and routes
// keystrokes between the request list and the answer composer.
package inbox

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MEKXH/nudge/internal/store"
)

// Source is the slice of the broker client the inbox needs.
type Source interface {
	Pending() ([]store.Request, error)
	Answer(id, text string) error
}

const pollInterval = 2 * time.Second

// FocusRegion identifies where keyboard input goes.
type FocusRegion int

const (
	// FocusList means navigation keys move the request cursor.
	FocusList FocusRegion = iota
	// FocusCompose means keystrokes go to the answer textarea.
	FocusCompose
)

// composeKind distinguishes what the composer submits.
type composeKind int

const (
	composeAnswer composeKind = iota
	composeApprove
	composeDeny
)

// pendingMsg delivers a poll result through the message loop.
type pendingMsg struct {
	requests []store.Request
	err      error
}

// answerResultMsg is sent when an answer submission completes.
type answerResultMsg struct {
	id  string
	err error
}

// pollTickMsg schedules the next pending fetch.
type pollTickMsg struct{}

// Model is the bubbletea model for the inbox.
type Model struct {
	source Source
	keys   KeyMap
	theme  Theme
	poll   time.Duration

	requests []store.Request
	cursor   int
	focus    FocusRegion
	kind     composeKind
	composer textarea.Model

	width  int
	height int
	notice string
}

// New creates an inbox model reading from the given source.
func New(source Source) Model {
	composer := textarea.New()
	composer.Placeholder = "Type your answer..."
	composer.CharLimit = store.MaxAnswerLen
	composer.SetHeight(5)

	return Model{
		source:   source,
		keys:     DefaultKeyMap,
		theme:    DefaultTheme,
		poll:     pollInterval,
		composer: composer,
	}
}

// Init fetches the first batch of pending requests.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchPending(), m.pollTick())
}

// Selected returns the request under the cursor, if any.
func (m Model) Selected() (store.Request, bool) {
	if m.cursor < 0 || m.cursor >= len(m.requests) {
		return store.Request{}, false
	}
	return m.requests[m.cursor], true
}

func (m Model) fetchPending() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		requests, err := source.Pending()
		return pendingMsg{requests: requests, err: err}
	}
}

func (m Model) submitAnswer(id, text string) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		return answerResultMsg{id: id, err: source.Answer(id, text)}
	}
}

func (m Model) pollTick() tea.Cmd {
	return tea.Tick(m.poll, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

// Update routes messages to the focused region.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.composer.SetWidth(msg.Width - 4)
		return m, nil

	case pollTickMsg:
		return m, tea.Batch(m.fetchPending(), m.pollTick())

	case pendingMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("poll failed: %v", msg.err)
			return m, nil
		}
		m.setRequests(msg.requests)
		return m, nil

	case answerResultMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("answer failed: %v", msg.err)
		} else {
			m.notice = fmt.Sprintf("answered %s", msg.id)
		}
		return m, m.fetchPending()

	case tea.KeyMsg:
		if m.focus == FocusCompose {
			return m.updateCompose(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

// setRequests replaces the list while keeping the cursor on the same
// request when it is still pending.
func (m *Model) setRequests(requests []store.Request) {
	selectedID := ""
	if req, ok := m.Selected(); ok {
		selectedID = req.ID
	}

	m.requests = requests
	m.cursor = 0
	for i, req := range requests {
		if req.ID == selectedID {
			m.cursor = i
			break
		}
	}
	if m.cursor >= len(requests) {
		m.cursor = 0
	}
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.requests)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchPending()

	case key.Matches(msg, m.keys.Answer):
		if _, ok := m.Selected(); ok {
			return m.openComposer(composeAnswer), nil
		}

	case key.Matches(msg, m.keys.Approve):
		if req, ok := m.Selected(); ok && req.Type == store.TypePermission {
			return m.openComposer(composeApprove), nil
		}

	case key.Matches(msg, m.keys.Deny):
		if req, ok := m.Selected(); ok && req.Type == store.TypePermission {
			return m.openComposer(composeDeny), nil
		}
	}

	return m, nil
}

func (m Model) openComposer(kind composeKind) Model {
	m.focus = FocusCompose
	m.kind = kind
	m.notice = ""
	m.composer.Reset()
	switch kind {
	case composeAnswer:
		m.composer.Placeholder = "Type your answer..."
	case composeApprove:
		m.composer.Placeholder = "Optional comment, C-d to approve"
	case composeDeny:
		m.composer.Placeholder = "Optional comment, C-d to deny"
	}
	m.composer.Focus()
	return m
}

func (m Model) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.focus = FocusList
		m.composer.Blur()
		return m, nil

	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		req, ok := m.Selected()
		if !ok {
			m.focus = FocusList
			return m, nil
		}
		text := m.composer.Value()
		switch m.kind {
		case composeApprove:
			text = store.Decision{Decision: store.DecisionApproved, Comment: text}.Encode()
		case composeDeny:
			text = store.Decision{Decision: store.DecisionDenied, Comment: text}.Encode()
		default:
			if text == "" {
				m.notice = "answer is empty"
				return m, nil
			}
		}
		m.focus = FocusList
		m.composer.Blur()
		return m, m.submitAnswer(req.ID, text)
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

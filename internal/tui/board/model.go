// Package board is the interactive Kanban board.
package board

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	model "github.com/Paintersrp/an-kanban/internal/board"
	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/internal/editor"
	boardsvc "github.com/Paintersrp/an-kanban/internal/services/board"
	"github.com/Paintersrp/an-kanban/internal/state"
	"github.com/Paintersrp/an-kanban/internal/undo"
)

const heartbeatInterval = 30 * time.Second

type mode int

const (
	modeBoard mode = iota
	modeCreate
	modeRename
	modeEdit
)

// deleteEventMsg carries a delete transition from the deleter's timer into
// the update loop.
type deleteEventMsg struct {
	event undo.Event
}

type editorClosedMsg struct {
	err error
}

type Model struct {
	state    *state.State
	service  *boardsvc.Service
	settings config.Effective
	editor   editor.Editor
	keys     keyMap
	help     help.Model
	input    textinput.Model
	events   chan undo.Event
	copy     func(string) error

	board  model.Board
	col    int
	row    int
	mode   mode
	width  int
	height int

	// property editing
	editProps []string
	editIdx   int

	status string
	toast  string
	err    error
}

// NewModel selects board on s and builds the model around a controller for
// it. An empty board name selects the workspace's first board.
func NewModel(s *state.State, board string) (*Model, error) {
	if s == nil || s.Handler == nil || s.Cards == nil {
		return nil, fmt.Errorf("board view requires a configured state")
	}

	settings, err := s.SelectBoard(board)
	if err != nil {
		return nil, err
	}

	events := make(chan undo.Event, 16)
	var store boardsvc.OrderStore
	if s.Config != nil {
		store = s.Config
	}

	colors := model.Light
	if lipgloss.HasDarkBackground() {
		colors = model.Dark
	}

	svc := boardsvc.New(s.Feed, s.Cards, store, settings,
		boardsvc.WithLogger(s.Logger),
		boardsvc.WithColors(colors),
		boardsvc.WithDeleteEvents(func(ev undo.Event) {
			select {
			case events <- ev:
			default:
			}
		}),
	)

	input := textinput.New()
	input.CharLimit = 256

	m := &Model{
		state:    s,
		service:  svc,
		settings: settings,
		keys:     newKeyMap(),
		help:     help.New(),
		input:    input,
		events:   events,
		copy:     clipboard.WriteAll,
	}
	if s.Workspace != nil {
		m.editor = editor.New(s.Workspace)
	}

	if err := m.reload(); err != nil {
		_ = svc.Teardown()
		return nil, err
	}
	return m, nil
}

// Close tears the controller down, committing any pending delete.
func (m *Model) Close() error {
	return m.service.Teardown()
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForDeleteEvent()}
	if m.state.Watcher != nil {
		cmds = append(cmds, m.state.Watcher.Start())
	} else {
		cmds = append(cmds, m.state.StatusHeartbeatCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model) waitForDeleteEvent() tea.Cmd {
	ch := m.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return deleteEventMsg{event: ev}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case state.VaultCardsChangedMsg:
		m.setError(m.reload())
		return m, m.state.Watcher.Start()

	case state.FeedStatsMsg:
		m.status = msg.Line
		if m.state.Watcher != nil {
			return m, m.state.Watcher.Start()
		}
		return m, nil

	case state.VaultWatcherErrMsg:
		m.setError(msg.Err)
		return m, m.state.Watcher.Start()

	case deleteEventMsg:
		m.handleDeleteEvent(msg.event)
		return m, m.waitForDeleteEvent()

	case editorClosedMsg:
		m.setError(msg.err)
		m.setError(m.reload())
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeBoard {
			return m.updateInput(msg)
		}
		return m.updateBoard(msg)
	}

	return m, nil
}

func (m *Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.left):
		m.focusColumn(m.col - 1)
	case key.Matches(msg, m.keys.right):
		m.focusColumn(m.col + 1)
	case key.Matches(msg, m.keys.up):
		m.focusRow(m.row - 1)
	case key.Matches(msg, m.keys.down):
		m.focusRow(m.row + 1)
	case key.Matches(msg, m.keys.moveLeft):
		m.setError(m.moveCard(-1))
	case key.Matches(msg, m.keys.moveRight):
		m.setError(m.moveCard(1))
	case key.Matches(msg, m.keys.columnLeft):
		m.setError(m.moveColumn(-1))
	case key.Matches(msg, m.keys.columnRight):
		m.setError(m.moveColumn(1))
	case key.Matches(msg, m.keys.create):
		return m, m.startCreate()
	case key.Matches(msg, m.keys.rename):
		return m, m.startRename()
	case key.Matches(msg, m.keys.edit):
		return m, m.startEdit()
	case key.Matches(msg, m.keys.toggle):
		m.setError(m.toggleCheckbox())
	case key.Matches(msg, m.keys.remove):
		m.setError(m.deleteCard())
	case key.Matches(msg, m.keys.undo):
		if id, ok := m.service.Undo(); ok {
			m.toast = fmt.Sprintf("Restored %s", id)
			m.refreshVisible()
		}
	case key.Matches(msg, m.keys.open):
		return m, m.openCard()
	case key.Matches(msg, m.keys.copy):
		m.setError(m.copyPath())
	case key.Matches(msg, m.keys.refresh):
		if _, err := m.service.Refresh(); err != nil {
			m.setError(err)
		} else {
			m.refreshVisible()
		}
	}
	return m, nil
}

// reload pulls the controller's board and keeps focus on the same card.
func (m *Model) reload() error {
	b, err := m.service.Board()
	if err != nil {
		return err
	}
	m.show(b)
	return nil
}

func (m *Model) refreshVisible() {
	if b, err := m.service.Board(); err == nil {
		m.show(b)
	}
}

func (m *Model) show(b model.Board) {
	focused, hadFocus := m.focusedCard()
	colID := ""
	if col := m.focusedColumn(); col != nil {
		colID = col.ID
	}

	m.board = m.service.Visible(b)

	if id, ok := m.service.NewCard(); ok {
		if m.focusCard(id) {
			m.service.ClearNewCard()
			return
		}
	}
	if hadFocus && m.focusCard(focused.ID) {
		return
	}
	if colID != "" {
		if _, idx := m.board.Column(colID); idx >= 0 {
			m.col = idx
		}
	}
	m.clampFocus()
}

func (m *Model) focusedColumn() *model.Column {
	if m.col < 0 || m.col >= len(m.board.Columns) {
		return nil
	}
	return &m.board.Columns[m.col]
}

func (m *Model) focusedCard() (model.Card, bool) {
	col := m.focusedColumn()
	if col == nil || m.row < 0 || m.row >= len(col.Cards) {
		return model.Card{}, false
	}
	return col.Cards[m.row], true
}

func (m *Model) focusCard(id string) bool {
	for ci, col := range m.board.Columns {
		for ri, card := range col.Cards {
			if card.ID == id {
				m.col, m.row = ci, ri
				return true
			}
		}
	}
	return false
}

func (m *Model) focusColumn(idx int) {
	if len(m.board.Columns) == 0 {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.board.Columns) {
		idx = len(m.board.Columns) - 1
	}
	m.col = idx
	m.clampFocus()
}

func (m *Model) focusRow(idx int) {
	m.row = idx
	m.clampFocus()
}

func (m *Model) clampFocus() {
	if len(m.board.Columns) == 0 {
		m.col, m.row = 0, 0
		return
	}
	if m.col >= len(m.board.Columns) {
		m.col = len(m.board.Columns) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	n := len(m.board.Columns[m.col].Cards)
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m *Model) moveCard(delta int) error {
	card, ok := m.focusedCard()
	if !ok {
		return nil
	}
	target := m.col + delta
	if target < 0 || target >= len(m.board.Columns) {
		return nil
	}

	err := m.service.Move(card.ID, m.board.Columns[target].ID)
	if errors.Is(err, boardsvc.ErrDragDisabled) {
		m.toast = "Moving cards is disabled for this board"
		return nil
	}
	if err != nil {
		_ = m.reload()
		return err
	}
	return m.reload()
}

func (m *Model) moveColumn(delta int) error {
	col := m.focusedColumn()
	if col == nil {
		return nil
	}
	id := col.ID
	if err := m.service.MoveColumn(id, delta); err != nil {
		return err
	}
	if err := m.reload(); err != nil {
		return err
	}
	if _, idx := m.board.Column(id); idx >= 0 {
		m.col = idx
		m.clampFocus()
	}
	return nil
}

func (m *Model) deleteCard() error {
	card, ok := m.focusedCard()
	if !ok {
		return nil
	}
	if err := m.service.Delete(card.ID); err != nil {
		return err
	}
	m.refreshVisible()
	return nil
}

func (m *Model) handleDeleteEvent(ev undo.Event) {
	switch ev.Kind {
	case undo.Hidden:
		m.toast = fmt.Sprintf("Deleted %s · press u to undo", ev.CardID)
	case undo.Committed:
		m.toast = ""
		m.setError(m.reload())
	case undo.Failed:
		m.toast = ""
		m.setError(fmt.Errorf("delete %s: %w", ev.CardID, ev.Err))
		m.setError(m.reload())
	case undo.Released:
		m.refreshVisible()
	}
}

func (m *Model) openCard() tea.Cmd {
	card, ok := m.focusedCard()
	if !ok {
		return nil
	}
	path, err := m.state.Handler.Path(card.ID)
	if err != nil {
		m.setError(err)
		return nil
	}

	launch, err := m.editor.For(path)
	if err != nil {
		m.setError(err)
		return nil
	}
	if !launch.Wait {
		if err := launch.Cmd.Start(); err != nil {
			m.setError(fmt.Errorf("error starting editor: %w", err))
		}
		return nil
	}
	return tea.ExecProcess(launch.Cmd, func(err error) tea.Msg {
		return editorClosedMsg{err: err}
	})
}

func (m *Model) copyPath() error {
	card, ok := m.focusedCard()
	if !ok {
		return nil
	}
	path, err := m.state.Handler.Path(card.ID)
	if err != nil {
		return err
	}
	if err := m.copy(path); err != nil {
		return fmt.Errorf("copy path: %w", err)
	}
	m.toast = fmt.Sprintf("Copied %s", path)
	return nil
}

func (m *Model) setError(err error) {
	if err != nil {
		m.err = err
	}
}

// Run starts the board view for board and blocks until the user quits.
func Run(s *state.State, board string) error {
	m, err := NewModel(s, board)
	if err != nil {
		return err
	}

	if watcher, err := s.StartWatcher(); err == nil {
		watcher.SetHeartbeat(s.StatusHeartbeatCmd, heartbeatInterval)
	} else {
		s.Logger.WithError(err).Warn("vault watcher unavailable")
	}

	_, runErr := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithAltScreen()).Run()
	closeErr := m.Close()
	if runErr != nil && strings.Contains(runErr.Error(), "resource temporarily unavailable") {
		runErr = nil
	}
	return errors.Join(runErr, closeErr)
}

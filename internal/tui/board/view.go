package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	model "github.com/Paintersrp/an-kanban/internal/board"
	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/internal/constants"
	"github.com/Paintersrp/an-kanban/internal/property"
)

const (
	minColumnWidth = 24
	maxColumnWidth = 40
)

func (m *Model) View() string {
	sections := []string{m.headerView()}

	if m.board.Empty() {
		sections = append(sections, hintStyle.Render(fmt.Sprintf(constants.EmptyBoardHint, m.settings.GroupBy)))
	} else {
		sections = append(sections, m.columnsView())
	}

	if m.mode != modeBoard {
		sections = append(sections, inputStyle.Render(m.input.View()))
	}
	if footer := m.footerView(); footer != "" {
		sections = append(sections, footer)
	}

	if m.mode != modeBoard {
		sections = append(sections, m.help.View(inputHelp{keys: m.keys, editing: m.mode == modeEdit}))
	} else {
		sections = append(sections, m.help.View(m.keys))
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) headerView() string {
	title := fmt.Sprintf("%s · %s", m.settings.Board, m.settings.GroupBy)
	if m.settings.Folder != "" {
		title += fmt.Sprintf(" · %s/", m.settings.Folder)
	}
	return titleStyle.Render(title)
}

func (m *Model) footerView() string {
	var parts []string
	if m.err != nil {
		parts = append(parts, errorStyle.Render(m.err.Error()))
	}
	if m.toast != "" {
		parts = append(parts, toastStyle.Render(m.toast))
	}
	if line := m.statusLine(); line != "" {
		parts = append(parts, statusStyle.Render(line))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) statusLine() string {
	if m.status != "" {
		return m.status
	}
	return m.state.Status.Get()
}

// columnWidth splits the available width between columns, within bounds.
func (m *Model) columnWidth() int {
	n := len(m.board.Columns)
	if n == 0 {
		return minColumnWidth
	}
	h, _ := appStyle.GetFrameSize()
	avail := m.width - h
	if avail <= 0 {
		return maxColumnWidth
	}
	w := avail/n - columnStyle.GetHorizontalFrameSize()
	if w < minColumnWidth {
		w = minColumnWidth
	}
	if w > maxColumnWidth {
		w = maxColumnWidth
	}
	return w
}

// visibleColumns returns the window of columns that fits the terminal,
// keeping the focused column in view.
func (m *Model) visibleColumns(width int) (int, int) {
	n := len(m.board.Columns)
	if m.width <= 0 {
		return 0, n
	}
	h, _ := appStyle.GetFrameSize()
	fit := (m.width - h) / (width + columnStyle.GetHorizontalFrameSize())
	if fit < 1 {
		fit = 1
	}
	if fit >= n {
		return 0, n
	}
	start := m.col - fit/2
	if start < 0 {
		start = 0
	}
	if start+fit > n {
		start = n - fit
	}
	return start, start + fit
}

func (m *Model) columnsView() string {
	width := m.columnWidth()
	start, end := m.visibleColumns(width)

	rendered := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rendered = append(rendered, m.columnView(i, width))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) columnView(idx, width int) string {
	col := m.board.Columns[idx]
	focused := idx == m.col

	lines := []string{m.columnHeader(col, width)}

	from, to := cardWindow(len(col.Cards), m.settings.MaxCardsPerColumn, focusRow(focused, m.row))
	for i := from; i < to; i++ {
		lines = append(lines, m.cardView(col.Cards[i], width, focused && i == m.row))
	}
	if hidden := len(col.Cards) - (to - from); hidden > 0 {
		lines = append(lines, moreStyle.Render(fmt.Sprintf("+%d more", hidden)))
	}

	style := columnStyle
	if focused {
		style = focusedColumnStyle
	}
	if col.Color != nil && m.settings.ShowColors {
		style = style.Copy().BorderForeground(lipgloss.Color(col.Color.Dot))
		if focused {
			style = style.BorderStyle(lipgloss.ThickBorder())
		}
	}
	return style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func focusRow(focused bool, row int) int {
	if !focused {
		return 0
	}
	return row
}

// cardWindow picks which cards of a column are drawn when the column is
// capped at limit cards, keeping row inside the window.
func cardWindow(n, limit, row int) (int, int) {
	if limit <= 0 || n <= limit {
		return 0, n
	}
	start := 0
	if row >= limit {
		start = row - limit + 1
	}
	return start, start + limit
}

func (m *Model) columnHeader(col model.Column, width int) string {
	title := col.Title
	if m.settings.ShowCardCount {
		title = fmt.Sprintf("%s %s", title, countStyle.Render(fmt.Sprintf("(%d)", col.Count)))
	}
	header := columnTitleStyle.Render(truncate.StringWithTail(title, uint(width), "…"))
	if col.Color != nil && m.settings.ShowColors {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(col.Color.Dot)).Render("●")
		header = dot + " " + header
	}
	return header
}

func (m *Model) cardView(card model.Card, width int, focused bool) string {
	inner := width - cardStyle.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}

	lines := []string{truncate.StringWithTail(card.Title, uint(inner), "…")}
	for _, line := range m.propertyLines(card) {
		lines = append(lines, propertyStyle.Render(truncate.StringWithTail(line, uint(inner), "…")))
	}

	style := cardStyle
	switch {
	case focused:
		style = focusedCardStyle
	case card.IsNew:
		style = newCardStyle
	}
	if m.settings.CompactMode {
		style = style.Copy().Border(lipgloss.HiddenBorder(), false)
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

// propertyLines renders the card's visible properties, limited by card size.
// Compact mode and small cards show titles only.
func (m *Model) propertyLines(card model.Card) []string {
	if m.settings.CompactMode {
		return nil
	}
	limit := 0
	switch m.settings.CardSize {
	case config.CardSmall:
		return nil
	case config.CardMedium:
		limit = 3
	}

	var lines []string
	for _, name := range m.shownProperties(card) {
		value := card.Properties[name]
		text := property.Format(value, m.propertyType(name, value))
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", name, text))
		if limit > 0 && len(lines) == limit {
			break
		}
	}
	return lines
}

func (m *Model) shownProperties(card model.Card) []string {
	if len(m.settings.VisibleProperties) > 0 {
		return m.settings.VisibleProperties
	}
	names := make([]string, 0, len(m.board.Properties))
	for _, meta := range m.board.Properties {
		if meta.Name == m.settings.GroupBy {
			continue
		}
		if _, ok := card.Properties[meta.Name]; ok {
			names = append(names, meta.Name)
		}
	}
	return names
}

package board

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	model "github.com/Paintersrp/an-kanban/internal/board"
	"github.com/Paintersrp/an-kanban/internal/property"
)

func (m *Model) startCreate() tea.Cmd {
	if m.focusedColumn() == nil {
		m.toast = "No column to add a card to"
		return nil
	}
	m.mode = modeCreate
	m.input.Placeholder = "Card title"
	m.input.SetValue("")
	return m.input.Focus()
}

func (m *Model) startRename() tea.Cmd {
	card, ok := m.focusedCard()
	if !ok {
		return nil
	}
	m.mode = modeRename
	m.input.Placeholder = "New title"
	m.input.SetValue(card.Title)
	m.input.CursorEnd()
	return m.input.Focus()
}

// startEdit opens the property editor on the first editable property of the
// focused card. Tab cycles through the rest.
func (m *Model) startEdit() tea.Cmd {
	if _, ok := m.focusedCard(); !ok {
		return nil
	}
	props := m.editableProperties()
	if len(props) == 0 {
		m.toast = "No properties to edit"
		return nil
	}
	m.mode = modeEdit
	m.editProps = props
	m.editIdx = 0
	m.loadEditValue()
	return m.input.Focus()
}

func (m *Model) loadEditValue() {
	card, _ := m.focusedCard()
	name := m.editProps[m.editIdx]
	t := m.propertyType(name, card.Properties[name])
	m.input.Placeholder = fmt.Sprintf("%s (%s)", name, t)
	m.input.SetValue(property.Format(card.Properties[name], t))
	if t == property.Checkbox {
		m.input.SetValue(fmt.Sprint(card.Properties[name] == true))
	}
	m.input.CursorEnd()
}

func (m *Model) stopInput() {
	m.mode = modeBoard
	m.input.Blur()
	m.input.SetValue("")
	m.editProps = nil
	m.editIdx = 0
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.stopInput()
		return m, nil
	case m.mode == modeEdit && key.Matches(msg, m.keys.next):
		m.editIdx = (m.editIdx + 1) % len(m.editProps)
		m.loadEditValue()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		err := m.submitInput()
		m.setError(err)
		if err == nil {
			m.stopInput()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submitInput() error {
	text := strings.TrimSpace(m.input.Value())

	switch m.mode {
	case modeCreate:
		if text == "" {
			return nil
		}
		col := m.focusedColumn()
		if col == nil {
			return nil
		}
		if _, err := m.service.Create(model.CreateIntent{
			Title:    text,
			ColumnID: col.ID,
			Position: model.InsertBottom,
		}); err != nil {
			return err
		}
		return m.reload()

	case modeRename:
		card, ok := m.focusedCard()
		if !ok || text == "" || text == card.Title {
			return nil
		}
		if _, err := m.service.Rename(card.ID, text); err != nil {
			return err
		}
		return m.reload()

	case modeEdit:
		card, ok := m.focusedCard()
		if !ok {
			return nil
		}
		name := m.editProps[m.editIdx]
		original := card.Properties[name]
		value, err := property.ParseInput(text, m.propertyType(name, original), original)
		if err != nil {
			return err
		}
		if err := m.service.SetProperty(card.ID, name, value); err != nil {
			return err
		}
		return m.reload()
	}
	return nil
}

// toggleCheckbox flips the first checkbox property shown on the focused card.
func (m *Model) toggleCheckbox() error {
	card, ok := m.focusedCard()
	if !ok {
		return nil
	}
	for _, name := range m.editableProperties() {
		value := card.Properties[name]
		if m.propertyType(name, value) != property.Checkbox {
			continue
		}
		checked := value == true || property.String(value) == "true"
		if err := m.service.SetProperty(card.ID, name, !checked); err != nil {
			return err
		}
		return m.reload()
	}
	m.toast = "No checkbox property on this card"
	return nil
}

// editableProperties are the visible properties minus the grouping property,
// which changes through moves.
func (m *Model) editableProperties() []string {
	names := m.settings.VisibleProperties
	if len(names) == 0 {
		for _, meta := range m.board.Properties {
			names = append(names, meta.Name)
		}
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == m.settings.GroupBy || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func (m *Model) propertyType(name string, value any) property.Type {
	if meta, ok := property.Lookup(m.board.Properties, name); ok && meta.Type != "" {
		return meta.Type
	}
	return property.Infer(value, name)
}

package config

import (
	"fmt"
	"strings"
)

// BoardNames returns the boards in display order.
func (ws *Workspace) BoardNames() []string {
	return normalizeOrder(ws.BoardOrder, ws.Boards)
}

// Board looks up a board by name. An empty name selects the first board.
func (ws *Workspace) Board(name string) (string, *BoardConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		names := ws.BoardNames()
		if len(names) == 0 {
			return "", nil, fmt.Errorf("no boards are configured")
		}
		name = names[0]
	}

	b, ok := ws.Boards[name]
	if !ok {
		return "", nil, fmt.Errorf("board %q does not exist", name)
	}
	if b == nil {
		b = &BoardConfig{}
		ws.Boards[name] = b
	}
	return name, b, nil
}

// Clone returns a deep copy of b.
func (b *BoardConfig) Clone() *BoardConfig {
	if b == nil {
		return &BoardConfig{}
	}
	c := *b
	c.Exclude = cloneStrings(b.Exclude)
	c.ColumnOrder = cloneStrings(b.ColumnOrder)
	c.VisibleProperties = cloneStrings(b.VisibleProperties)
	c.GroupBy = clonePtr(b.GroupBy)
	c.CardSize = clonePtr(b.CardSize)
	c.MaxCardsPerColumn = clonePtr(b.MaxCardsPerColumn)
	c.Draggable = clonePtr(b.Draggable)
	c.ShowCardCount = clonePtr(b.ShowCardCount)
	c.CompactMode = clonePtr(b.CompactMode)
	c.ShowColors = clonePtr(b.ShowColors)
	c.NewFileFolder = clonePtr(b.NewFileFolder)
	c.ConfirmDelete = clonePtr(b.ConfirmDelete)
	c.UndoDelay = clonePtr(b.UndoDelay)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func (cfg *Config) AddBoard(name string, b *BoardConfig) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("board name cannot be empty")
	}

	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}
	if _, exists := ws.Boards[trimmed]; exists {
		return fmt.Errorf("board %q already exists", trimmed)
	}

	if b == nil {
		b = &BoardConfig{}
	}
	b.Folder = strings.Trim(strings.TrimSpace(b.Folder), "/")
	ws.Boards[trimmed] = b
	ws.BoardOrder = append(removeFromOrder(ws.BoardOrder, trimmed), trimmed)

	return cfg.Save()
}

func (cfg *Config) RemoveBoard(name string) error {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}

	if _, exists := ws.Boards[name]; !exists {
		return fmt.Errorf("board %q does not exist", name)
	}
	if len(ws.Boards) <= 1 {
		return fmt.Errorf("cannot remove the last board")
	}

	delete(ws.Boards, name)
	ws.BoardOrder = removeFromOrder(ws.BoardOrder, name)

	return cfg.Save()
}

// SetColumnOrder persists the column order of a board. Blank and duplicate
// ids are dropped; an empty order restores the default sort.
func (cfg *Config) SetColumnOrder(board string, order []string) error {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}
	_, b, err := ws.Board(board)
	if err != nil {
		return err
	}

	deduped := make([]string, 0, len(order))
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		deduped = append(deduped, trimmed)
	}

	if len(deduped) == 0 {
		b.ColumnOrder = nil
	} else {
		b.ColumnOrder = deduped
	}
	return cfg.Save()
}

func removeFromOrder(order []string, target string) []string {
	if len(order) == 0 {
		return order
	}

	filtered := make([]string, 0, len(order))
	for _, name := range order {
		if name == target {
			continue
		}
		filtered = append(filtered, name)
	}

	return filtered
}

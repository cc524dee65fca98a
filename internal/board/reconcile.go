package board

import "fmt"

// Intent is a mutation requested by the view and applied by the controller.
type Intent interface {
	intent()
}

// MoveIntent records a card that changed column between two snapshots.
type MoveIntent struct {
	CardID string
	From   string
	To     string
}

// DeleteIntent asks for a card to be deleted through the undo window.
type DeleteIntent struct {
	CardID string
}

// CreateIntent asks for a new card in a column.
type CreateIntent struct {
	Title    string
	ColumnID string
	Position InsertPosition
	Extra    map[string]any
}

// RenameIntent renames the file behind a card.
type RenameIntent struct {
	CardID string
	Title  string
}

// PropertyIntent writes one property of a card. A nil Value removes it.
type PropertyIntent struct {
	CardID string
	Name   string
	Value  any
}

// ReorderIntent persists a new column order.
type ReorderIntent struct {
	Order []string
}

func (MoveIntent) intent()     {}
func (DeleteIntent) intent()   {}
func (CreateIntent) intent()   {}
func (RenameIntent) intent()   {}
func (PropertyIntent) intent() {}
func (ReorderIntent) intent()  {}

func (m MoveIntent) String() string {
	return fmt.Sprintf("%s: %s -> %s", m.CardID, m.From, m.To)
}

// Reconcile diffs two snapshots and returns one MoveIntent per card whose
// column changed. Cards that only exist in next are creations and cards missing
// from next are deletions; neither produces an intent. Reordering within a
// column is not tracked.
func Reconcile(prev, next Board) []MoveIntent {
	location := make(map[string]string)
	for _, col := range prev.Columns {
		for _, card := range col.Cards {
			if _, ok := location[card.ID]; !ok {
				location[card.ID] = col.ID
			}
		}
	}

	var moves []MoveIntent
	seen := make(map[string]struct{})
	for _, col := range next.Columns {
		for _, card := range col.Cards {
			if _, dup := seen[card.ID]; dup {
				continue
			}
			seen[card.ID] = struct{}{}

			if prevColumnHas(prev, col.ID, card.ID) {
				continue
			}
			from, ok := location[card.ID]
			if !ok || from == col.ID {
				continue
			}
			moves = append(moves, MoveIntent{CardID: card.ID, From: from, To: col.ID})
		}
	}
	return moves
}

func prevColumnHas(b Board, columnID, cardID string) bool {
	col, _ := b.Column(columnID)
	if col == nil {
		return false
	}
	for _, card := range col.Cards {
		if card.ID == cardID {
			return true
		}
	}
	return false
}

// MoveCard returns a copy of b with cardID appended to column to. The input
// board is left untouched so it can serve as the previous snapshot.
func MoveCard(b Board, cardID, to string) (Board, error) {
	if _, idx := b.Column(to); idx < 0 {
		return b, fmt.Errorf("column %q not found", to)
	}

	out := b.clone()
	var moved *Card
	for i := range out.Columns {
		col := &out.Columns[i]
		for j, card := range col.Cards {
			if card.ID != cardID {
				continue
			}
			if col.ID == to {
				return b, nil
			}
			c := card
			moved = &c
			col.Cards = append(col.Cards[:j:j], col.Cards[j+1:]...)
			col.Count = len(col.Cards)
			break
		}
		if moved != nil {
			break
		}
	}
	if moved == nil {
		return b, fmt.Errorf("card %q not found", cardID)
	}

	target, _ := out.Column(to)
	moved.ColumnID = to
	target.Cards = append(target.Cards, *moved)
	target.Count = len(target.Cards)
	return out, nil
}

// MoveColumn shifts id by delta positions within order and returns the new
// order. Out of range moves are clamped.
func MoveColumn(order []string, id string, delta int) []string {
	out := append([]string(nil), order...)
	from := -1
	for i, v := range out {
		if v == id {
			from = i
			break
		}
	}
	if from < 0 || delta == 0 {
		return out
	}
	to := from + delta
	if to < 0 {
		to = 0
	}
	if to > len(out)-1 {
		to = len(out) - 1
	}
	if to == from {
		return out
	}
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]string{id}, out[to:]...)...)
	return out
}

func (b Board) clone() Board {
	out := b
	out.Columns = make([]Column, len(b.Columns))
	for i, col := range b.Columns {
		col.Cards = append([]Card(nil), col.Cards...)
		out.Columns[i] = col
	}
	out.ColumnOrder = append([]string(nil), b.ColumnOrder...)
	return out
}

// Package board projects vault entries into a Kanban board and diffs board
// snapshots into the property writes that persist a user's moves.
package board

import (
	"github.com/Paintersrp/an-kanban/internal/property"
)

const (
	// Uncategorized is the column id for cards without a grouping value.
	Uncategorized = "uncategorized"
	// UnknownID identifies a card whose entry carried no path.
	UnknownID = "unknown"
	// UntitledTitle is shown for a card whose entry carried no name.
	UntitledTitle = "Untitled"
)

// InsertPosition places a newly created card within its column.
type InsertPosition string

const (
	InsertNone   InsertPosition = ""
	InsertTop    InsertPosition = "top"
	InsertBottom InsertPosition = "bottom"
)

// Entry is a raw document as supplied by the feed.
type Entry struct {
	Path       string
	Name       string
	Properties map[string]any
}

// Card is the board's projection of an Entry.
type Card struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Properties     map[string]any `json:"properties"`
	ColumnID       string         `json:"column"`
	Order          int            `json:"order"`
	IsNew          bool           `json:"isNew,omitempty"`
	InsertPosition InsertPosition `json:"insertPosition,omitempty"`
}

// Color is a column colour set expressed as hex strings.
type Color struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Dot        string `json:"dot"`
}

// ColorFunc maps a column id to its colours. It must be pure.
type ColorFunc func(id string) Color

// Column groups the cards sharing one grouping value.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Value is the raw grouping value cards in this column carry, nil for
	// Uncategorized. Moves write it back unchanged so numbers stay numbers.
	Value any    `json:"-"`
	Cards []Card `json:"cards"`
	Count int    `json:"count"`
	Order int    `json:"order"`
	Color *Color `json:"color,omitempty"`
}

// Board is the grouped and ordered projection rendered to the user.
type Board struct {
	Columns         []Column            `json:"columns"`
	GroupBy         string              `json:"groupBy"`
	ColumnOrder     []string            `json:"columnOrder"`
	AvailableValues map[string][]string `json:"availableValues"`
	Properties      []property.Metadata `json:"-"`
}

// EntryToCard converts one entry. It never fails: a missing path becomes
// UnknownID, a missing name becomes UntitledTitle and a missing grouping value
// places the card in Uncategorized.
func EntryToCard(entry Entry, groupBy string) Card {
	id := entry.Path
	if id == "" {
		id = UnknownID
	}
	title := entry.Name
	if title == "" {
		title = UntitledTitle
	}
	props := entry.Properties
	if props == nil {
		props = map[string]any{}
	}

	return Card{
		ID:         id,
		Title:      title,
		Properties: props,
		ColumnID:   ColumnID(props[groupBy]),
	}
}

// ColumnID returns the column a grouping value belongs to.
func ColumnID(value any) string {
	if value == nil {
		return Uncategorized
	}
	return property.String(value)
}

// Column returns the column with id and its index.
func (b Board) Column(id string) (*Column, int) {
	for i := range b.Columns {
		if b.Columns[i].ID == id {
			return &b.Columns[i], i
		}
	}
	return nil, -1
}

// Find locates a card by id.
func (b Board) Find(cardID string) (Card, bool) {
	for _, col := range b.Columns {
		for _, card := range col.Cards {
			if card.ID == cardID {
				return card, true
			}
		}
	}
	return Card{}, false
}

// CardCount is the total number of cards across every column.
func (b Board) CardCount() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col.Cards)
	}
	return n
}

// ColumnValues returns the distinct grouping values seen on the board.
func (b Board) ColumnValues() []string {
	return append([]string(nil), b.AvailableValues[b.GroupBy]...)
}

// Empty reports whether the board has no columns to render.
func (b Board) Empty() bool {
	return len(b.Columns) == 0
}

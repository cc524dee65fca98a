package board

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Paintersrp/an-kanban/internal/property"
)

// Options tune a Build pass.
type Options struct {
	// SavedOrder is the persisted column order. Empty means the default
	// alphabetical order with Uncategorized last.
	SavedOrder []string
	ShowColors bool
	ColorFunc  ColorFunc
	// NewCardID marks a just-created card so the view can focus it.
	NewCardID       string
	NewCardPosition InsertPosition
}

// Build groups entries into columns by the groupBy property and orders them.
// Zero entries yield an empty board, not an error.
func Build(entries []Entry, groupBy string, opts Options) Board {
	b := Board{
		GroupBy:         groupBy,
		Columns:         []Column{},
		ColumnOrder:     []string{},
		AvailableValues: map[string][]string{},
	}

	byID := make(map[string]*Column)
	var ids []string
	bags := make([]map[string]any, 0, len(entries))

	for _, entry := range entries {
		card := EntryToCard(entry, groupBy)
		if opts.NewCardID != "" && card.ID == opts.NewCardID {
			card.IsNew = true
			card.InsertPosition = opts.NewCardPosition
		}
		bags = append(bags, card.Properties)

		col, ok := byID[card.ColumnID]
		if !ok {
			col = &Column{ID: card.ColumnID, Title: card.ColumnID}
			byID[card.ColumnID] = col
			ids = append(ids, card.ColumnID)
		}
		if col.Value == nil && card.ColumnID != Uncategorized {
			col.Value = card.Properties[groupBy]
		}
		col.Cards = append(col.Cards, card)
	}

	for _, id := range ids {
		col := byID[id]
		placeNewCards(col.Cards)
		col.Count = len(col.Cards)
		if opts.ShowColors {
			colorFor := opts.ColorFunc
			if colorFor == nil {
				colorFor = Light
			}
			c := colorFor(id)
			col.Color = &c
		}
	}

	less := newCollator()
	ids = OrderColumns(ids, opts.SavedOrder, less)

	for i, id := range ids {
		col := byID[id]
		col.Order = i
		b.Columns = append(b.Columns, *col)
		b.ColumnOrder = append(b.ColumnOrder, id)
	}

	b.AvailableValues = availableValues(bags, groupBy)
	b.Properties = property.Collect(bags)
	return b
}

// OrderColumns sorts column ids. With a saved order, known ids keep their
// saved positions and unknown ids follow alphabetically. Without one, ids sort
// alphabetically. Uncategorized is last among the ids it is sorted with.
func OrderColumns(ids, saved []string, less func(a, b string) bool) []string {
	if less == nil {
		less = newCollator()
	}
	out := append([]string(nil), ids...)

	if len(saved) == 0 {
		sort.SliceStable(out, func(i, j int) bool {
			return alphabetical(out[i], out[j], less)
		})
		return out
	}

	index := make(map[string]int, len(saved))
	for i, id := range saved {
		if _, dup := index[id]; !dup {
			index[id] = i
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ia, knownA := index[a]
		ib, knownB := index[b]
		switch {
		case knownA && knownB:
			return ia < ib
		case knownA:
			return true
		case knownB:
			return false
		default:
			return alphabetical(a, b, less)
		}
	})
	return out
}

func alphabetical(a, b string, less func(a, b string) bool) bool {
	if a == Uncategorized {
		return false
	}
	if b == Uncategorized {
		return true
	}
	return less(a, b)
}

// newCollator returns a locale aware comparison. Collators are not safe for
// concurrent use, so each build creates its own.
func newCollator() func(a, b string) bool {
	c := collate.New(language.Und)
	return func(a, b string) bool {
		if r := c.CompareString(a, b); r != 0 {
			return r < 0
		}
		return a < b
	}
}

// placeNewCards moves new cards flagged top to the front and those flagged
// bottom to the end. Everything else keeps arrival order.
func placeNewCards(cards []Card) {
	rank := func(c Card) int {
		if !c.IsNew {
			return 1
		}
		switch c.InsertPosition {
		case InsertTop:
			return 0
		case InsertBottom:
			return 2
		}
		return 1
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return rank(cards[i]) < rank(cards[j])
	})
}

func availableValues(bags []map[string]any, groupBy string) map[string][]string {
	sets := make(map[string]map[string]struct{})
	add := func(name, value string) {
		if value == "" {
			return
		}
		set, ok := sets[name]
		if !ok {
			set = make(map[string]struct{})
			sets[name] = set
		}
		set[value] = struct{}{}
	}

	for _, bag := range bags {
		for name, value := range bag {
			switch {
			case property.IsList(value):
				for _, elem := range property.Elements(value) {
					add(name, elem)
				}
			case name == groupBy && value != nil:
				add(name, property.String(value))
			}
		}
	}

	less := newCollator()
	out := make(map[string][]string, len(sets))
	for name, set := range sets {
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Slice(values, func(i, j int) bool { return less(values[i], values[j]) })
		out[name] = values
	}
	return out
}

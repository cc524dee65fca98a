// Package picker lets the user choose a card with a fuzzy finder.
package picker

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/muesli/termenv"

	model "github.com/Paintersrp/an-kanban/internal/board"
)

// ErrNoSelection is returned when the user aborts the finder.
var ErrNoSelection = errors.New("no card selected")

// Resolver maps card ids to files. *handler.FileHandler satisfies it.
type Resolver interface {
	Path(id string) (string, error)
}

// Picker runs a fuzzy finder over the cards of a board with a rendered
// preview of the selected card.
type Picker struct {
	files  Resolver
	Header string
	cards  []model.Card
}

func New(files Resolver, header string) *Picker {
	return &Picker{files: files, Header: header}
}

// Pick returns the chosen card. query pre-fills the finder.
func (p *Picker) Pick(b model.Board, query string) (model.Card, error) {
	p.cards = p.cards[:0]
	for _, col := range b.Columns {
		p.cards = append(p.cards, col.Cards...)
	}
	if len(p.cards) == 0 {
		return model.Card{}, fmt.Errorf("board has no cards")
	}

	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(p.renderPreview),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}
	if p.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(p.Header))
	}

	idx, err := fuzzyfinder.Find(p.cards, func(i int) string {
		return Label(p.cards[i])
	}, options...)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return model.Card{}, ErrNoSelection
	}
	if err != nil {
		return model.Card{}, fmt.Errorf("error selecting card: %w", err)
	}
	return p.cards[idx], nil
}

// Label is the line shown for a card in the finder.
func Label(c model.Card) string {
	return fmt.Sprintf("%s [%s] %s", c.Title, c.ColumnID, c.ID)
}

func (p *Picker) renderPreview(i, w, _ int) string {
	if i == -1 {
		return ""
	}

	path, err := p.files.Path(p.cards[i].ID)
	if err != nil {
		return "Error resolving card"
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "Error reading file"
	}

	wrap := w - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(wrap),
		glamour.WithColorProfile(termenv.ANSI256),
	)
	if err != nil {
		return string(content)
	}

	markdown, err := r.Render(string(content))
	if err != nil {
		return "Error rendering markdown"
	}
	return markdown
}

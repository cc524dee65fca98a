package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	model "github.com/Paintersrp/an-kanban/internal/board"
	"github.com/Paintersrp/an-kanban/internal/picker"
	boardsvc "github.com/Paintersrp/an-kanban/internal/services/board"
	"github.com/Paintersrp/an-kanban/internal/state"
)

// OpenBoard builds a controller for the selected board and loads the board.
// Callers must Teardown the controller so pending work is flushed.
func OpenBoard(s *state.State) (*boardsvc.Service, model.Board, error) {
	if s == nil || s.Feed == nil || s.Cards == nil {
		return nil, model.Board{}, fmt.Errorf("no board selected")
	}

	var store boardsvc.OrderStore
	if s.Config != nil {
		store = s.Config
	}
	svc := boardsvc.New(s.Feed, s.Cards, store, s.Board, boardsvc.WithLogger(s.Logger))

	b, err := svc.Board()
	if err != nil {
		_ = svc.Teardown()
		return nil, model.Board{}, err
	}
	return svc, b, nil
}

// SelectCard resolves the card named by args, or asks for one with the fuzzy
// finder when no argument was given and the session is interactive.
func SelectCard(s *state.State, b model.Board, args []string) (model.Card, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return ResolveCard(s, b, args[0])
	}
	if !Interactive() {
		return model.Card{}, fmt.Errorf("a card argument is required")
	}
	return picker.New(s.Handler, fmt.Sprintf("Cards on %s", s.Board.Board)).Pick(b, "")
}

// Interactive reports whether prompts can be shown. Test binaries never
// prompt.
func Interactive() bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return !strings.HasSuffix(filepath.Base(os.Args[0]), ".test")
}

package card

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/spf13/cobra"

	model "github.com/Paintersrp/an-kanban/internal/board"
	"github.com/Paintersrp/an-kanban/internal/editor"
	"github.com/Paintersrp/an-kanban/internal/property"
	boardsvc "github.com/Paintersrp/an-kanban/internal/services/board"
	"github.com/Paintersrp/an-kanban/internal/state"
	"github.com/Paintersrp/an-kanban/pkg/cmd"
)

// ErrNotConfirmed is returned when a delete needs confirmation that cannot
// be asked for.
var ErrNotConfirmed = errors.New("delete not confirmed; pass --yes to delete without a prompt")

func NewCmdCard(s *state.State) *cobra.Command {
	c := &cobra.Command{
		Use:     "card",
		Aliases: []string{"c"},
		Short:   "Create, move and edit cards from the command line",
		Long: heredoc.Doc(`
			Card commands act on the selected board (see --board). Cards are
			named by id, by path relative to the vault or board folder, or by
			title. Commands taking an optional card open a fuzzy finder when
			the card is left out.
		`),
	}

	c.AddCommand(
		newCmdNew(s),
		newCmdMove(s),
		newCmdRename(s),
		newCmdSet(s),
		newCmdDelete(s),
		newCmdOpen(s),
		newCmdArchive(s),
		newCmdRestore(s),
	)

	return c
}

// withBoard opens the selected board for one command and tears the
// controller down afterwards so pending writes land before exit.
func withBoard(s *state.State, fn func(*boardsvc.Service, model.Board) error) error {
	svc, b, err := cmd.OpenBoard(s)
	if err != nil {
		return err
	}
	return errors.Join(fn(svc, b), svc.Teardown())
}

func newCmdNew(s *state.State) *cobra.Command {
	var column string
	var sets []string
	var top bool

	c := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a card",
		Example: heredoc.Doc(`
			kb card new "Write docs" --column Todo
			kb card new "Ship it" -c Doing --set due=2024-03-05 --set tags=release,web
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			extra, err := parseSets(sets)
			if err != nil {
				return err
			}

			return withBoard(s, func(svc *boardsvc.Service, b model.Board) error {
				columnID := newCardColumn(b, column)
				pos := model.InsertBottom
				if top {
					pos = model.InsertTop
				}

				id, err := svc.Create(model.CreateIntent{
					Title:    args[0],
					ColumnID: columnID,
					Position: pos,
					Extra:    extra,
				})
				if err != nil {
					return err
				}
				svc.ClearNewCard()
				fmt.Fprintf(c.OutOrStdout(), "Created %s in %s\n", id, columnID)
				return nil
			})
		},
	}

	c.Flags().StringVarP(&column, "column", "c", "", "Column to create the card in (defaults to the first column)")
	c.Flags().StringArrayVar(&sets, "set", nil, "Extra property as name=value, repeatable")
	c.Flags().BoolVar(&top, "top", false, "Place the card at the top of its column")

	return c
}

// newCardColumn picks the column for a new card. An unknown name starts a new
// column with that grouping value.
func newCardColumn(b model.Board, arg string) string {
	if strings.TrimSpace(arg) == "" {
		if len(b.Columns) == 0 {
			return model.Uncategorized
		}
		return b.Columns[0].ID
	}
	if id, ok := cmd.ResolveColumn(b, arg); ok {
		return id
	}
	return strings.TrimSpace(arg)
}

func parseSets(sets []string) (map[string]any, error) {
	if len(sets) == 0 {
		return nil, nil
	}

	extra := make(map[string]any, len(sets))
	for _, kv := range sets {
		name, text, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, expected name=value", kv)
		}
		value, err := property.ParseInput(text, property.Infer(text, name), nil)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		extra[name] = value
	}
	return extra, nil
}

func newCmdMove(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "move <card> <column>",
		Aliases: []string{"mv"},
		Short:   "Move a card to another column",
		Example: `kb card move "Write docs" Done`,
		Args:    cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return withBoard(s, func(svc *boardsvc.Service, b model.Board) error {
				card, err := cmd.ResolveCard(s, b, args[0])
				if err != nil {
					return err
				}
				to, ok := cmd.ResolveColumn(b, args[1])
				if !ok {
					return fmt.Errorf("column %q not found on board %q", args[1], s.Board.Board)
				}
				if card.ColumnID == to {
					fmt.Fprintf(c.OutOrStdout(), "%s is already in %s\n", card.Title, to)
					return nil
				}

				if err := svc.Move(card.ID, to); err != nil {
					if errors.Is(err, boardsvc.ErrDragDisabled) {
						return fmt.Errorf("moving cards is disabled for board %q", s.Board.Board)
					}
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "Moved %s to %s\n", card.Title, to)
				return nil
			})
		},
	}
}

func newCmdRename(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <card> <title>",
		Short: "Rename the file behind a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return withBoard(s, func(svc *boardsvc.Service, b model.Board) error {
				card, err := cmd.ResolveCard(s, b, args[0])
				if err != nil {
					return err
				}
				id, err := svc.Rename(card.ID, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "Renamed %s to %s\n", card.ID, id)
				return nil
			})
		},
	}
}

func newCmdSet(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "set <card> <property> <value>",
		Short: "Write one property of a card",
		Long: heredoc.Doc(`
			Writes a front matter property. The value is read as the type the
			property has on the board: dates accept most common formats, lists
			are comma separated and an empty value removes the property.
		`),
		Example: heredoc.Doc(`
			kb card set "Write docs" due "March 8, 2024"
			kb card set "Write docs" tags "docs, web"
			kb card set "Write docs" due ""
		`),
		Args: cobra.ExactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			return withBoard(s, func(svc *boardsvc.Service, b model.Board) error {
				card, err := cmd.ResolveCard(s, b, args[0])
				if err != nil {
					return err
				}
				name := strings.TrimSpace(args[1])
				if name == "" {
					return fmt.Errorf("property name cannot be empty")
				}

				typ := property.Infer(args[2], name)
				if meta, ok := property.Lookup(b.Properties, name); ok {
					typ = meta.Type
				}

				value, err := property.ParseInput(args[2], typ, card.Properties[name])
				if err != nil {
					return err
				}
				if err := svc.SetProperty(card.ID, name, value); err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "Set %s on %s\n", name, card.Title)
				return nil
			})
		},
	}
}

func newCmdDelete(s *state.State) *cobra.Command {
	var yes bool

	c := &cobra.Command{
		Use:     "delete [card]",
		Aliases: []string{"rm"},
		Short:   "Move a card's file to the vault trash",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withBoard(s, func(svc *boardsvc.Service, b model.Board) error {
				card, err := cmd.SelectCard(s, b, args)
				if err != nil {
					return err
				}

				if s.Board.ConfirmDelete && !yes {
					if !cmd.Interactive() {
						return ErrNotConfirmed
					}
					input := confirmation.New(fmt.Sprintf("Delete %s?", card.Title), confirmation.No)
					confirmed, err := input.RunPrompt()
					if err != nil {
						return err
					}
					if !confirmed {
						return nil
					}
				}

				if err := svc.Dispatch(model.DeleteIntent{CardID: card.ID}); err != nil {
					return err
				}
				// Teardown in withBoard commits the delete.
				fmt.Fprintf(c.OutOrStdout(), "Deleted %s\n", card.ID)
				return nil
			})
		},
	}

	c.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")

	return c
}

func newCmdOpen(s *state.State) *cobra.Command {
	var printPath bool

	c := &cobra.Command{
		Use:   "open [card]",
		Short: "Open a card in the configured editor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withBoard(s, func(_ *boardsvc.Service, b model.Board) error {
				card, err := cmd.SelectCard(s, b, args)
				if err != nil {
					return err
				}
				path, err := s.Handler.Path(card.ID)
				if err != nil {
					return err
				}
				if printPath {
					fmt.Fprintln(c.OutOrStdout(), path)
					return nil
				}
				return editor.New(s.Workspace).Open(path)
			})
		},
	}

	c.Flags().BoolVar(&printPath, "path", false, "Print the card's file path instead of opening it")

	return c
}

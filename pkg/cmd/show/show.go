package show

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	model "github.com/Paintersrp/an-kanban/internal/board"
	"github.com/Paintersrp/an-kanban/internal/constants"
	"github.com/Paintersrp/an-kanban/internal/property"
	"github.com/Paintersrp/an-kanban/internal/state"
	"github.com/Paintersrp/an-kanban/pkg/cmd"
)

func NewCmdShow(s *state.State) *cobra.Command {
	var asJSON bool
	var withProps bool

	c := &cobra.Command{
		Use:     "show [board]",
		Aliases: []string{"ls"},
		Short:   "Print a board",
		Long: heredoc.Doc(`
			Prints the columns and cards of a board without opening the board
			view. --json prints the board model for scripts.
		`),
		Example: heredoc.Doc(`
			kb show
			kb show work --json | jq '.columns[].count'
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) > 0 {
				if _, err := s.SelectBoard(args[0]); err != nil {
					return err
				}
			}

			svc, b, err := cmd.OpenBoard(s)
			if err != nil {
				return err
			}
			defer svc.Teardown()

			if asJSON {
				return writeJSON(c.OutOrStdout(), b)
			}
			writeText(c.OutOrStdout(), s.Board.Board, b, withProps)
			return nil
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "Print the board as JSON")
	c.Flags().BoolVarP(&withProps, "properties", "p", false, "Print card properties")

	return c
}

func writeJSON(w io.Writer, b model.Board) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeText(w io.Writer, name string, b model.Board, withProps bool) {
	fmt.Fprintf(w, "%s (group by %s, %d cards)\n", name, b.GroupBy, b.CardCount())
	if b.Empty() {
		fmt.Fprintf(w, "\n%s\n", fmt.Sprintf(constants.EmptyBoardHint, b.GroupBy))
		return
	}

	for _, col := range b.Columns {
		fmt.Fprintf(w, "\n%s (%d)\n", col.Title, col.Count)
		for _, card := range col.Cards {
			fmt.Fprintf(w, "  - %s  [%s]\n", card.Title, card.ID)
			if !withProps {
				continue
			}
			for _, line := range propertyLines(card, b.GroupBy) {
				fmt.Fprintf(w, "      %s\n", line)
			}
		}
	}
}

func propertyLines(card model.Card, groupBy string) []string {
	var lines []string
	for _, name := range property.SortedSet(keys(card.Properties)) {
		if name == groupBy {
			continue
		}
		value := card.Properties[name]
		text := property.Format(value, property.Infer(value, name))
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, name+": "+text)
	}
	return lines
}

func keys(m map[string]any) map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for k := range m {
		set[k] = struct{}{}
	}
	return set
}

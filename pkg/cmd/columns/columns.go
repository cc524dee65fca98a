package columns

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	model "github.com/Paintersrp/an-kanban/internal/board"
	"github.com/Paintersrp/an-kanban/internal/state"
	"github.com/Paintersrp/an-kanban/pkg/cmd"
)

func NewCmdColumns(s *state.State) *cobra.Command {
	c := &cobra.Command{
		Use:     "columns",
		Aliases: []string{"cols"},
		Short:   "Inspect and order the columns of a board",
	}

	c.AddCommand(
		newCmdList(s),
		newCmdOrder(s),
		newCmdReset(s),
	)

	return c
}

func newCmdList(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List columns in board order",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			svc, b, err := cmd.OpenBoard(s)
			if err != nil {
				return err
			}
			defer svc.Teardown()

			out := c.OutOrStdout()
			for _, col := range b.Columns {
				fmt.Fprintf(out, "%s\t%d\n", col.ID, col.Count)
			}
			if len(s.Board.ColumnOrder) > 0 {
				fmt.Fprintf(out, "\nsaved order: %s\n", strings.Join(s.Board.ColumnOrder, ", "))
			}
			return nil
		},
	}
}

func newCmdOrder(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "order <column>...",
		Short: "Save the column order of a board",
		Long: heredoc.Doc(`
			Saves the order columns are shown in. Columns left out keep their
			alphabetical place after the listed ones.
		`),
		Example: "kb columns order Todo Doing Done uncategorized",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			svc, b, err := cmd.OpenBoard(s)
			if err != nil {
				return err
			}

			order, err := resolveOrder(b, args)
			if err == nil {
				err = svc.Reorder(order)
			}
			if err = errors.Join(err, svc.Teardown()); err != nil {
				return err
			}

			s.Board.ColumnOrder = order
			fmt.Fprintf(c.OutOrStdout(), "Saved column order for %q\n", s.Board.Board)
			return nil
		},
	}
}

func resolveOrder(b model.Board, args []string) ([]string, error) {
	order := make([]string, 0, len(args))
	for _, arg := range args {
		id, ok := cmd.ResolveColumn(b, arg)
		if !ok {
			return nil, fmt.Errorf("column %q not found", arg)
		}
		order = append(order, id)
	}
	return order, nil
}

func newCmdReset(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the saved column order",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if err := s.Config.SetColumnOrder(s.Board.Board, nil); err != nil {
				return err
			}
			s.Board.ColumnOrder = nil
			fmt.Fprintf(c.OutOrStdout(), "Column order for %q reset to alphabetical\n", s.Board.Board)
			return nil
		},
	}
}

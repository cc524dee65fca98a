package boards

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/selection"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/internal/feed"
	"github.com/Paintersrp/an-kanban/internal/property"
	"github.com/Paintersrp/an-kanban/internal/state"
	"github.com/Paintersrp/an-kanban/pkg/cmd"
)

func NewCmdBoards(s *state.State) *cobra.Command {
	c := &cobra.Command{
		Use:     "boards",
		Aliases: []string{"bs"},
		Short:   "Manage the boards of the active workspace",
	}

	c.AddCommand(
		newCmdList(s),
		newCmdAdd(s),
		newCmdRemove(s),
	)

	return c
}

func newCmdList(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List boards",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			out := c.OutOrStdout()
			for _, name := range s.Workspace.BoardNames() {
				eff, err := s.Workspace.Resolve(name)
				if err != nil {
					return err
				}

				marker := " "
				if name == s.Board.Board {
					marker = "*"
				}
				folder := eff.Folder
				if folder == "" {
					folder = "/"
				}
				fmt.Fprintf(out, "%s %s\t%s\tgroup by %s\n", marker, name, folder, eff.GroupBy)
			}
			return nil
		},
	}
}

func newCmdAdd(s *state.State) *cobra.Command {
	var folder string
	var groupBy string
	var exclude []string

	c := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a board over a vault folder",
		Long: heredoc.Doc(`
			Adds a board whose cards are the notes below --folder. Without
			--group-by the board inherits the workspace grouping property, or,
			in a terminal, lets you pick one of the properties found in the
			folder.
		`),
		Example: heredoc.Doc(`
			kb boards add work --folder projects/work --group-by stage
			kb boards add reading --folder books --exclude drafts
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			b := &config.BoardConfig{
				Folder:  folder,
				Exclude: exclude,
			}

			if strings.TrimSpace(groupBy) == "" && cmd.Interactive() {
				picked, err := pickGroupBy(s, folder)
				if err != nil {
					return err
				}
				groupBy = picked
			}
			if g := strings.TrimSpace(groupBy); g != "" {
				b.GroupBy = &g
			}

			if err := s.Config.AddBoard(args[0], b); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Added board %q\n", strings.TrimSpace(args[0]))
			return nil
		},
	}

	c.Flags().StringVar(&folder, "folder", "", "Vault folder holding the board's cards")
	c.Flags().StringVar(&groupBy, "group-by", "", "Property that groups cards into columns")
	c.Flags().StringSliceVar(&exclude, "exclude", nil, "Folders below --folder to skip")

	return c
}

// pickGroupBy offers the properties found in folder. An empty result keeps
// the workspace default.
func pickGroupBy(s *state.State, folder string) (string, error) {
	names, err := PropertyNames(s, folder)
	if err != nil || len(names) == 0 {
		return "", err
	}

	sel := selection.New("Group cards by which property?", names)
	sel.Filter = nil
	return sel.RunPrompt()
}

// PropertyNames lists the front matter properties used by the notes in
// folder.
func PropertyNames(s *state.State, folder string) ([]string, error) {
	f := feed.New(s.Handler, feed.Scope{Folder: folder}, s.Logger)
	defer f.Close()

	entries, err := f.Entries()
	if err != nil {
		return nil, err
	}

	bags := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		bags = append(bags, e.Properties)
	}

	metas := property.Collect(bags)
	names := make([]string, 0, len(metas))
	for _, m := range metas {
		names = append(names, m.Name)
	}
	return names, nil
}

func newCmdRemove(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a board. Its notes are left untouched.",
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if err := s.Config.RemoveBoard(name); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Removed board %q\n", name)
			return nil
		},
	}
}

package settings

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/internal/state"
)

func NewCmdSettings(s *state.State) *cobra.Command {
	c := &cobra.Command{
		Use:     "settings",
		Aliases: []string{"s"},
		Short:   "Read and change board settings",
		Long: heredoc.Docf(`
			Settings live at the workspace level and can be overridden per
			board. Without --board the workspace value is read or written;
			with --board the board's override is. Overridden values are
			marked with * in the list.

			Keys: %s
		`, strings.Join(config.SettingKeys(), ", ")),
		Example: heredoc.Doc(`
			kb settings list
			kb settings set card_size large
			kb settings set --board work group_by stage
			kb settings unset --board work group_by
		`),
	}

	c.AddCommand(
		newCmdList(s),
		newCmdGet(s),
		newCmdSet(s),
		newCmdUnset(s),
	)

	return c
}

// scope returns the board named with --board, or "" for the workspace.
func scope(c *cobra.Command, s *state.State) (string, error) {
	f := c.Flags().Lookup("board")
	if f == nil || !f.Changed {
		return "", nil
	}
	name := strings.TrimSpace(f.Value.String())
	if name == "" {
		return s.Board.Board, nil
	}
	if _, _, err := s.Workspace.Board(name); err != nil {
		return "", err
	}
	return name, nil
}

func newCmdList(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List settings with their resolved values",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			board, err := scope(c, s)
			if err != nil {
				return err
			}
			all, err := s.Workspace.EffectiveSettings(board)
			if err != nil {
				return err
			}

			for _, setting := range all {
				marker := " "
				if setting.Overridden {
					marker = "*"
				}
				fmt.Fprintf(c.OutOrStdout(), "%s %s = %s\n", marker, setting.Key, setting.Value)
			}
			return nil
		},
	}
}

func newCmdGet(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			board, err := scope(c, s)
			if err != nil {
				return err
			}
			setting, err := s.Workspace.Setting(board, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), setting.Value)
			return nil
		},
	}
}

func newCmdSet(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			board, err := scope(c, s)
			if err != nil {
				return err
			}
			if err := s.Config.SetSetting(board, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "%s = %s%s\n", args[0], args[1], suffix(board))
			return nil
		},
	}
}

func newCmdUnset(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Drop a board override, or reset a workspace setting to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			board, err := scope(c, s)
			if err != nil {
				return err
			}
			if err := s.Config.UnsetSetting(board, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "%s reset%s\n", args[0], suffix(board))
			return nil
		},
	}
}

func suffix(board string) string {
	if board == "" {
		return ""
	}
	return fmt.Sprintf(" for board %q", board)
}

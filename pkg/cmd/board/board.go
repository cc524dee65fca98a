package board

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/an-kanban/internal/state"
	tuiboard "github.com/Paintersrp/an-kanban/internal/tui/board"
)

func NewCmdBoard(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "board [name]",
		Aliases: []string{"open", "o"},
		Short:   "Open a board",
		Long:    "Opens the named board, or the selected one, in the interactive board view.",
		Example: "kb board work",
		Args:    cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return s.Workspace.BoardNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := viper.GetString("board")
			if len(args) > 0 {
				name = args[0]
			}
			return tuiboard.Run(s, name)
		},
	}

	return cmd
}

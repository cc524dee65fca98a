package root

import (
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/an-kanban/internal/state"
	tuiboard "github.com/Paintersrp/an-kanban/internal/tui/board"
	"github.com/Paintersrp/an-kanban/pkg/cmd/board"
	"github.com/Paintersrp/an-kanban/pkg/cmd/boards"
	"github.com/Paintersrp/an-kanban/pkg/cmd/card"
	"github.com/Paintersrp/an-kanban/pkg/cmd/changeEditor"
	"github.com/Paintersrp/an-kanban/pkg/cmd/columns"
	"github.com/Paintersrp/an-kanban/pkg/cmd/initialize"
	"github.com/Paintersrp/an-kanban/pkg/cmd/settings"
	"github.com/Paintersrp/an-kanban/pkg/cmd/show"
	"github.com/Paintersrp/an-kanban/pkg/cmd/workspace"
)

var (
	workspaceName string
	boardName     string
	logLevel      string
)

func NewCmdRoot(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "an-kanban [board]",
		Aliases: []string{"kb"},
		Short:   "Kanban boards over the markdown notes in your vault.",
		Long: heredoc.Doc(`
			Groups the notes of a vault folder into columns by a front matter
			property and lets you move, create, rename and delete cards. Every
			change is written straight back to the note's front matter.

			Run without a subcommand to open the selected board.
		`),
		Example: heredoc.Doc(`
			kb
			kb work
			kb card move "Write docs" Done
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tuiboard.Run(s, target(args))
		},
	}

	AddGlobalFlags(cmd)

	cmd.AddCommand(
		initialize.NewCmdInit(s.Home),
		board.NewCmdBoard(s),
		boards.NewCmdBoards(s),
		show.NewCmdShow(s),
		card.NewCmdCard(s),
		columns.NewCmdColumns(s),
		settings.NewCmdSettings(s),
		workspace.NewCmdWorkspace(s),
		changeEditor.NewCmdChangeEditor(s.Config),
	)

	return cmd
}

// NewCmdSetup is the command tree offered before a vault is configured.
// Only init is available.
func NewCmdSetup(home string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "an-kanban",
		Aliases:       []string{"kb"},
		Short:         "Kanban boards over the markdown notes in your vault.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	AddGlobalFlags(cmd)
	cmd.AddCommand(initialize.NewCmdInit(home))
	return cmd
}

// AddGlobalFlags registers the persistent flags shared by every command and
// binds them to viper.
func AddGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&workspaceName, "workspace", "w", "", "Workspace to use for this command")
	flags.StringVarP(&boardName, "board", "b", "", "Board to use for this command")
	flags.StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	viper.BindPFlag("workspace", flags.Lookup("workspace"))
	viper.BindPFlag("board", flags.Lookup("board"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
}

func target(args []string) string {
	if len(args) > 0 {
		return strings.TrimSpace(args[0])
	}
	return viper.GetString("board")
}

package workspace

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/internal/state"
)

func NewCmdWorkspace(s *state.State) *cobra.Command {
	c := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Manage workspaces",
		Long: heredoc.Doc(`
			A workspace is one vault with its own editor, settings and boards.
			Commands act on the current workspace unless --workspace is given.
		`),
	}

	c.AddCommand(
		newCmdList(s),
		newCmdSwitch(s),
		newCmdAdd(s),
		newCmdRemove(s),
	)

	return c
}

func newCmdList(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List workspaces with their vault and board count",
		RunE: func(c *cobra.Command, _ []string) error {
			names := s.Config.WorkspaceNames()
			if len(names) == 0 {
				fmt.Fprintln(c.OutOrStdout(), "No workspaces configured")
				return nil
			}

			for _, name := range names {
				ws := s.Config.Workspaces[name]
				marker := " "
				if name == s.Config.CurrentWorkspace {
					marker = "*"
				}
				fmt.Fprintf(c.OutOrStdout(), "%s %s\t%s\t%s\n", marker, name, ws.VaultDir, plural(len(ws.Boards), "board"))
			}
			return nil
		},
	}
}

func newCmdSwitch(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <name>",
		Short: "Make another workspace current",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return s.Config.WorkspaceNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(c *cobra.Command, args []string) error {
			target := strings.TrimSpace(args[0])
			if target == "" {
				return fmt.Errorf("workspace name cannot be empty")
			}
			if err := s.Config.SwitchWorkspace(target); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Switched to workspace %q\n", target)
			return nil
		},
	}
}

func newCmdAdd(s *state.State) *cobra.Command {
	var (
		name        string
		vault       string
		makeCurrent bool
		withBoards  bool
	)

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a workspace over another vault",
		Long: heredoc.Doc(`
			Adds a workspace over another vault. The editor and settings of the
			current workspace are copied. Boards start as a single board over
			the whole vault unless --with-boards copies the current board
			definitions as well.
		`),
		Example: heredoc.Doc(`
			kb workspace add --name personal --vault ~/notes --current
			kb workspace add --name mirror --vault /mnt/vault --with-boards
		`),
		RunE: func(c *cobra.Command, _ []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("workspace name is required")
			}
			vault = strings.TrimSpace(vault)
			if vault == "" {
				return fmt.Errorf("vault path is required")
			}
			abs, err := filepath.Abs(vault)
			if err != nil {
				return err
			}

			ws := inherit(s.Workspace, withBoards)
			ws.VaultDir = abs
			if err := s.Config.AddWorkspace(name, ws, makeCurrent); err != nil {
				return err
			}

			fmt.Fprintf(c.OutOrStdout(), "Added workspace %q with %s\n", name, plural(len(ws.Boards), "board"))
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "Name of the new workspace")
	c.Flags().StringVar(&vault, "vault", "", "Path to the workspace vault")
	c.Flags().BoolVar(&makeCurrent, "current", false, "Switch to the new workspace after creation")
	c.Flags().BoolVar(&withBoards, "with-boards", false, "Copy the current board definitions")

	return c
}

func newCmdRemove(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a workspace from the configuration",
		Long:    "Removes the workspace entry only. The vault and its cards are left untouched.",
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("workspace name cannot be empty")
			}
			if err := s.Config.RemoveWorkspace(name); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Removed workspace %q\n", name)
			return nil
		},
	}
}

// inherit builds the workspace a new vault starts from. Board definitions
// refer to folders of the source vault, so they are copied only on request.
func inherit(src *config.Workspace, withBoards bool) *config.Workspace {
	ws := &config.Workspace{}
	if src == nil {
		return ws
	}

	ws.Editor = src.Editor
	ws.NvimArgs = src.NvimArgs
	if src.Settings != nil {
		settings := *src.Settings
		ws.Settings = &settings
	}

	if withBoards && len(src.Boards) > 0 {
		ws.Boards = make(map[string]*config.BoardConfig, len(src.Boards))
		for name, b := range src.Boards {
			ws.Boards[name] = b.Clone()
		}
		ws.BoardOrder = append([]string(nil), src.BoardOrder...)
	}
	return ws
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

package card

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	model "github.com/Paintersrp/an-kanban/internal/board"
	"github.com/Paintersrp/an-kanban/internal/handler"
	boardsvc "github.com/Paintersrp/an-kanban/internal/services/board"
	"github.com/Paintersrp/an-kanban/internal/state"
	"github.com/Paintersrp/an-kanban/pkg/cmd"
)

func newCmdArchive(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "archive [card]",
		Short: "Move a card's file to the vault archive",
		Long: heredoc.Doc(`
			Archived cards leave every board because the archive folder is
			never scanned. Bring them back with "kb card restore".
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withBoard(s, func(_ *boardsvc.Service, b model.Board) error {
				card, err := cmd.SelectCard(s, b, args)
				if err != nil {
					return err
				}
				id, err := s.Handler.Archive(card.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "Archived %s to %s\n", card.ID, id)
				return nil
			})
		},
	}
}

func newCmdRestore(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "restore <path>",
		Aliases: []string{"untrash", "unarchive"},
		Short:   "Move a trashed or archived card back to where it was",
		Example: heredoc.Doc(`
			kb card restore trash/work/a.md
			kb card restore work/a
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			from, err := restoreSource(s, args[0])
			if err != nil {
				return err
			}
			id, err := s.Handler.Restore(from)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Restored %s\n", id)
			return nil
		},
	}
}

// restoreSource finds the trashed or archived file arg names. Paths without a
// trash or archive prefix are looked up in the trash first.
func restoreSource(s *state.State, arg string) (string, error) {
	rel, err := cmd.VaultRelative(s, arg)
	if err != nil {
		return "", err
	}

	var candidates []string
	if strings.HasPrefix(rel, handler.TrashDir+"/") || strings.HasPrefix(rel, handler.ArchiveDir+"/") {
		candidates = []string{rel, rel + ".md"}
	} else {
		for _, dir := range []string{handler.TrashDir, handler.ArchiveDir} {
			candidates = append(candidates, path.Join(dir, rel), path.Join(dir, rel)+".md")
		}
	}

	for _, id := range candidates {
		p, err := s.Handler.Path(id)
		if err != nil {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return id, nil
		}
	}
	return "", fmt.Errorf("no trashed or archived card at %q", arg)
}

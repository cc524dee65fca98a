package workspace

import (
	"strings"
	"testing"

	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/pkg/cmd/cmdtest"
)

func TestAddSwitchRemove(t *testing.T) {
	s := cmdtest.NewState(t, nil, "")
	if err := s.Config.SetSetting("", "card_size", "large"); err != nil {
		t.Fatalf("failed to seed setting: %v", err)
	}

	other := t.TempDir()
	if _, err := cmdtest.Run(NewCmdWorkspace(s), "add", "--name", "personal", "--vault", other); err != nil {
		t.Fatalf("add returned error: %v", err)
	}

	out, err := cmdtest.Run(NewCmdWorkspace(s), "list")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if !strings.Contains(out, "* default") || !strings.Contains(out, "  personal\t"+other) {
		t.Fatalf("unexpected workspace list:\n%s", out)
	}

	if _, err := cmdtest.Run(NewCmdWorkspace(s), "switch", "personal"); err != nil {
		t.Fatalf("switch returned error: %v", err)
	}

	reloaded, err := config.Load(s.Home)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if reloaded.CurrentWorkspace != "personal" {
		t.Fatalf("expected personal to be current, got %q", reloaded.CurrentWorkspace)
	}
	ws := reloaded.MustWorkspace()
	if ws.Settings.CardSize != config.CardLarge {
		t.Fatalf("expected settings to be copied, got %q", ws.Settings.CardSize)
	}
	if names := ws.BoardNames(); len(names) != 1 || names[0] != config.DefaultBoardName {
		t.Fatalf("expected a fresh default board, got %v", names)
	}

	if _, err := cmdtest.Run(NewCmdWorkspace(s), "remove", "default"); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	if _, err := cmdtest.Run(NewCmdWorkspace(s), "remove", "personal"); err == nil {
		t.Fatalf("expected removing the last workspace to fail")
	}
}

func TestAddRequiresFlags(t *testing.T) {
	s := cmdtest.NewState(t, nil, "")
	if _, err := cmdtest.Run(NewCmdWorkspace(s), "add", "--name", "x"); err == nil {
		t.Fatalf("expected missing vault to fail")
	}
	if _, err := cmdtest.Run(NewCmdWorkspace(s), "add", "--vault", t.TempDir()); err == nil {
		t.Fatalf("expected missing name to fail")
	}
}

func TestAddWithBoards(t *testing.T) {
	s := cmdtest.NewState(t, nil, "  work:\n    folder: work\n    group_by: stage\n    column_order: [Done, Todo]\n  reading:\n    folder: books\n")

	out, err := cmdtest.Run(NewCmdWorkspace(s), "add", "--name", "mirror", "--vault", t.TempDir(), "--with-boards")
	if err != nil {
		t.Fatalf("add returned error: %v", err)
	}
	if !strings.Contains(out, "with 2 boards") {
		t.Fatalf("unexpected output %q", out)
	}

	reloaded, err := config.Load(s.Home)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	ws := reloaded.Workspaces["mirror"]
	if ws == nil {
		t.Fatalf("expected mirror workspace")
	}
	work := ws.Boards["work"]
	if work == nil || work.Folder != "work" || work.GroupBy == nil || *work.GroupBy != "stage" {
		t.Fatalf("unexpected copied board %#v", work)
	}
	if len(work.ColumnOrder) != 2 || work.ColumnOrder[0] != "Done" {
		t.Fatalf("expected column order to be copied, got %v", work.ColumnOrder)
	}

	list, err := cmdtest.Run(NewCmdWorkspace(s), "list")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if !strings.Contains(list, "\t2 boards") {
		t.Fatalf("expected board counts in list:\n%s", list)
	}
}

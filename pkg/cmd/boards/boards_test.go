package boards

import (
	"slices"
	"strings"
	"testing"

	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/pkg/cmd/cmdtest"
)

var files = map[string]string{
	"work/a.md":  "---\nstage: Doing\nowner: sam\n---\n",
	"books/b.md": "---\nshelf: read\n---\n",
}

const workBoard = "  work:\n    folder: work\n"

func TestAddListRemove(t *testing.T) {
	s := cmdtest.NewState(t, files, workBoard)

	if _, err := cmdtest.Run(NewCmdBoards(s), "add", "reading", "--folder", "/books/", "--group-by", "shelf"); err != nil {
		t.Fatalf("add returned error: %v", err)
	}

	out, err := cmdtest.Run(NewCmdBoards(s), "list")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two boards, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "* work") {
		t.Fatalf("expected selected work board first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "reading\tbooks\tgroup by shelf") {
		t.Fatalf("unexpected line for new board %q", lines[1])
	}

	reloaded, err := config.Load(s.Home)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if got := reloaded.MustWorkspace().BoardNames(); !slices.Equal(got, []string{"work", "reading"}) {
		t.Fatalf("unexpected persisted boards %v", got)
	}

	if _, err := cmdtest.Run(NewCmdBoards(s), "remove", "reading"); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	if _, err := cmdtest.Run(NewCmdBoards(s), "remove", "work"); err == nil {
		t.Fatalf("expected removing the last board to fail")
	}
}

func TestAddRejectsDuplicate(t *testing.T) {
	s := cmdtest.NewState(t, files, workBoard)
	if _, err := cmdtest.Run(NewCmdBoards(s), "add", "work"); err == nil {
		t.Fatalf("expected duplicate board to fail")
	}
}

func TestPropertyNames(t *testing.T) {
	s := cmdtest.NewState(t, files, workBoard)

	names, err := PropertyNames(s, "work")
	if err != nil {
		t.Fatalf("PropertyNames returned error: %v", err)
	}
	if !slices.Equal(names, []string{"owner", "stage"}) {
		t.Fatalf("unexpected property names %v", names)
	}
}

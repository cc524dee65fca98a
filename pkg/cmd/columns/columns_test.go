package columns

import (
	"slices"
	"strings"
	"testing"

	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/pkg/cmd/cmdtest"
)

var files = map[string]string{
	"a.md": "---\nstatus: Todo\n---\n",
	"b.md": "---\nstatus: Done\n---\n",
	"c.md": "---\nstatus: Doing\n---\n",
	"d.md": "---\nstatus: Doing\n---\n",
}

func columnIDs(out string) []string {
	var ids []string
	for _, line := range strings.Split(out, "\n") {
		id, _, ok := strings.Cut(line, "\t")
		if ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func TestListOrderReset(t *testing.T) {
	s := cmdtest.NewState(t, files, "")

	out, err := cmdtest.Run(NewCmdColumns(s), "list")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if got := columnIDs(out); !slices.Equal(got, []string{"Doing", "Done", "Todo"}) {
		t.Fatalf("unexpected default order %v", got)
	}
	if !strings.Contains(out, "Doing\t2") {
		t.Fatalf("expected card counts, got %q", out)
	}

	if _, err := cmdtest.Run(NewCmdColumns(s), "order", "todo", "Doing"); err != nil {
		t.Fatalf("order returned error: %v", err)
	}
	out, err = cmdtest.Run(NewCmdColumns(s), "list")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if got := columnIDs(out); !slices.Equal(got, []string{"Todo", "Doing", "Done"}) {
		t.Fatalf("unexpected saved order %v", got)
	}

	reloaded, err := config.Load(s.Home)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	eff, err := reloaded.MustWorkspace().Resolve("")
	if err != nil {
		t.Fatalf("failed to resolve board: %v", err)
	}
	if !slices.Equal(eff.ColumnOrder, []string{"Todo", "Doing"}) {
		t.Fatalf("unexpected persisted order %v", eff.ColumnOrder)
	}

	if _, err := cmdtest.Run(NewCmdColumns(s), "reset"); err != nil {
		t.Fatalf("reset returned error: %v", err)
	}
	out, err = cmdtest.Run(NewCmdColumns(s), "list")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if got := columnIDs(out); !slices.Equal(got, []string{"Doing", "Done", "Todo"}) {
		t.Fatalf("expected alphabetical order after reset, got %v", got)
	}
}

func TestOrderRejectsUnknownColumn(t *testing.T) {
	s := cmdtest.NewState(t, files, "")
	if _, err := cmdtest.Run(NewCmdColumns(s), "order", "Todo", "Someday"); err == nil {
		t.Fatalf("expected unknown column to fail")
	}
}

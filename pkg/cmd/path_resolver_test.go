package cmd

import (
	"path/filepath"
	"testing"

	model "github.com/Paintersrp/an-kanban/internal/board"
	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/internal/state"
)

func sampleBoard() model.Board {
	return model.Board{
		GroupBy: "status",
		Columns: []model.Column{
			{ID: "Todo", Title: "Todo", Cards: []model.Card{
				{ID: "work/plan.md", Title: "plan", ColumnID: "Todo"},
				{ID: "work/notes/ship.md", Title: "ship", ColumnID: "Todo"},
			}},
			{ID: "Done", Title: "Done", Cards: []model.Card{
				{ID: "work/retro.md", Title: "retro", ColumnID: "Done"},
				{ID: "work/old/retro.md", Title: "retro", ColumnID: "Done"},
			}},
		},
	}
}

func TestResolveCard(t *testing.T) {
	vaultDir := t.TempDir()

	st := &state.State{
		Workspace: &config.Workspace{VaultDir: vaultDir},
		Board:     config.Effective{Board: "work", Folder: "work"},
	}
	b := sampleBoard()

	tests := map[string]struct {
		input   string
		want    string
		wantErr bool
	}{
		"id": {
			input: "work/plan.md",
			want:  "work/plan.md",
		},
		"id without extension": {
			input: "work/plan",
			want:  "work/plan.md",
		},
		"absolute inside vault": {
			input: filepath.Join(vaultDir, "work", "plan.md"),
			want:  "work/plan.md",
		},
		"relative to board folder": {
			input: "notes/ship",
			want:  "work/notes/ship.md",
		},
		"title ignores case": {
			input: "PLAN",
			want:  "work/plan.md",
		},
		"ambiguous title": {
			input:   "retro",
			wantErr: true,
		},
		"path picks one of two cards sharing a title": {
			input: "work/old/retro",
			want:  "work/old/retro.md",
		},
		"file name in board folder with a shared title": {
			input: "retro.md",
			want:  "work/retro.md",
		},
		"escape attempt": {
			input:   "../evil.md",
			wantErr: true,
		},
		"absolute outside vault": {
			input:   filepath.Join(filepath.Dir(vaultDir), "evil.md"),
			wantErr: true,
		},
		"unknown": {
			input:   "nothing",
			wantErr: true,
		},
		"empty": {
			input:   "  ",
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ResolveCard(st, b, tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error but got card %q", got.ID)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got.ID)
			}
		})
	}
}

func TestResolveCardRequiresVault(t *testing.T) {
	if _, err := ResolveCard(&state.State{}, sampleBoard(), "plan"); err == nil {
		t.Fatalf("expected error without workspace")
	}
	st := &state.State{Workspace: &config.Workspace{}}
	if _, err := ResolveCard(st, sampleBoard(), "plan"); err == nil {
		t.Fatalf("expected error without vault directory")
	}
}

func TestResolveColumn(t *testing.T) {
	b := sampleBoard()

	if id, ok := ResolveColumn(b, "Done"); !ok || id != "Done" {
		t.Fatalf("expected exact match, got %q %v", id, ok)
	}
	if id, ok := ResolveColumn(b, "todo"); !ok || id != "Todo" {
		t.Fatalf("expected case-insensitive match, got %q %v", id, ok)
	}
	if _, ok := ResolveColumn(b, "Later"); ok {
		t.Fatalf("expected no match for unknown column")
	}
}

func TestSelectCardWithoutArgumentOutsideTerminal(t *testing.T) {
	st := &state.State{Workspace: &config.Workspace{VaultDir: t.TempDir()}}
	if _, err := SelectCard(st, sampleBoard(), nil); err == nil {
		t.Fatalf("expected error when no card is named and no terminal is attached")
	}
}

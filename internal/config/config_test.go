package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/an-kanban/internal/config"
)

func writeConfig(t *testing.T, home string, content string) {
	t.Helper()

	configPath := config.GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("failed to create config directory: %v", err)
	}
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
}

func TestLoadAcceptsSupportedEditors(t *testing.T) {
	editors := []string{"nvim", "obsidian", "vscode", "vim", "nano"}

	for _, editor := range editors {
		editor := editor
		t.Run(editor, func(t *testing.T) {
			home := t.TempDir()

			cfgData := map[string]any{
				"vaultdir": filepath.Join(home, "vault"),
				"editor":   editor,
				"nvimargs": "",
			}

			data, err := yaml.Marshal(cfgData)
			if err != nil {
				t.Fatalf("failed to marshal config data: %v", err)
			}
			writeConfig(t, home, string(data))

			cfg, err := config.Load(home)
			if err != nil {
				t.Fatalf("expected load to succeed for editor %q: %v", editor, err)
			}

			if cfg.MustWorkspace().Editor != editor {
				t.Fatalf("expected editor %q, got %q", editor, cfg.MustWorkspace().Editor)
			}
		})
	}
}

func TestLoadRejectsUnsupportedEditor(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "vaultdir: /tmp/vault\neditor: unsupported\n")

	_, err := config.Load(home)
	if err == nil {
		t.Fatal("expected load to fail for unsupported editor")
	}

	if !strings.Contains(err.Error(), "invalid editor") {
		t.Fatalf("expected invalid editor error, got %v", err)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, `
workspaces:
  work:
    vaultdir: /tmp/vault
    settings:
      group_by: stage
      show_colors: false
current_workspace: work
`)

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	ws := cfg.MustWorkspace()
	if ws.Settings.GroupBy != "stage" || ws.Settings.ShowColors {
		t.Fatalf("expected file values to be kept, got %#v", ws.Settings)
	}
	if !ws.Settings.Draggable || !ws.Settings.ConfirmDelete || ws.Settings.CardSize != config.CardMedium {
		t.Fatalf("expected missing keys to default, got %#v", ws.Settings)
	}
	if ws.Settings.UndoDelay != 5*time.Second {
		t.Fatalf("expected default undo delay, got %s", ws.Settings.UndoDelay)
	}
	if names := ws.BoardNames(); !slices.Equal(names, []string{config.DefaultBoardName}) {
		t.Fatalf("expected default board, got %v", names)
	}
}

func TestLoadRejectsInvalidChoices(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, `
vaultdir: /tmp/vault
boards:
  work:
    sort: random
`)

	_, err := config.Load(home)
	if err == nil || !strings.Contains(err.Error(), "invalid sort") {
		t.Fatalf("expected invalid sort error, got %v", err)
	}
}

func TestResolveAppliesOverrides(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, `
vaultdir: /tmp/vault
settings:
  group_by: status
  card_size: small
boards:
  work:
    folder: projects/work
    group_by: stage
    show_colors: false
    undo_delay: 2s
    column_order: [Done, Todo]
board_order: [work]
`)

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	eff, err := cfg.MustWorkspace().Resolve("")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if eff.Board != "work" || eff.Folder != "projects/work" {
		t.Fatalf("unexpected board scope %#v", eff)
	}
	if eff.GroupBy != "stage" || eff.ShowColors || eff.UndoDelay != 2*time.Second {
		t.Fatalf("expected overrides to apply, got %#v", eff.Settings)
	}
	if eff.CardSize != config.CardSmall || eff.Sort != config.SortTitle {
		t.Fatalf("expected inherited values, got %#v", eff)
	}
	if !slices.Equal(eff.ColumnOrder, []string{"Done", "Todo"}) {
		t.Fatalf("unexpected column order %v", eff.ColumnOrder)
	}
	if !eff.Overridden("group_by") || eff.Overridden("card_size") {
		t.Fatalf("unexpected override flags")
	}

	if _, err := cfg.MustWorkspace().Resolve("missing"); err == nil {
		t.Fatalf("expected error for unknown board")
	}
}

func TestSetAndUnsetSettingPersist(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "vaultdir: /tmp/vault\n")

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if err := cfg.SetSetting("default", "card_size", "LARGE"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}
	if err := cfg.SetSetting("", "max_cards_per_column", "10"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}
	if err := cfg.SetSetting("default", "visible_properties", "due, tags, due"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}

	reloaded, err := config.Load(home)
	if err != nil {
		t.Fatalf("reloading config: %v", err)
	}
	ws := reloaded.MustWorkspace()

	s, err := ws.Setting("default", "card_size")
	if err != nil {
		t.Fatalf("Setting returned error: %v", err)
	}
	if s.Value != config.CardLarge || !s.Overridden {
		t.Fatalf("expected persisted override, got %#v", s)
	}
	if ws.Settings.MaxCardsPerColumn != 10 {
		t.Fatalf("expected global setting to persist, got %d", ws.Settings.MaxCardsPerColumn)
	}
	eff, _ := ws.Resolve("default")
	if !slices.Equal(eff.VisibleProperties, []string{"due", "tags"}) {
		t.Fatalf("unexpected visible properties %v", eff.VisibleProperties)
	}

	if err := reloaded.UnsetSetting("default", "card_size"); err != nil {
		t.Fatalf("UnsetSetting returned error: %v", err)
	}
	s, _ = ws.Setting("default", "card_size")
	if s.Value != config.CardMedium || s.Overridden {
		t.Fatalf("expected inherited value after unset, got %#v", s)
	}

	if err := reloaded.UnsetSetting("", "max_cards_per_column"); err != nil {
		t.Fatalf("UnsetSetting returned error: %v", err)
	}
	if ws.Settings.MaxCardsPerColumn != 0 {
		t.Fatalf("expected default after global unset, got %d", ws.Settings.MaxCardsPerColumn)
	}
}

func TestSetSettingValidates(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "vaultdir: /tmp/vault\n")

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	tests := []struct {
		board, key, value, want string
	}{
		{"default", "card_size", "huge", "invalid card size"},
		{"default", "sort", "random", "invalid sort"},
		{"default", "draggable", "maybe", "not a boolean"},
		{"default", "undo_delay", "soon", "invalid undo_delay"},
		{"", "max_cards_per_column", "-1", "non-negative"},
		{"", "folder", "x", "per board"},
		{"default", "log_level", "debug", "cannot be overridden"},
		{"default", "colour", "red", "unknown setting"},
		{"missing", "card_size", "small", "does not exist"},
	}

	for _, tt := range tests {
		err := cfg.SetSetting(tt.board, tt.key, tt.value)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("SetSetting(%q, %q, %q) = %v, want error containing %q", tt.board, tt.key, tt.value, err, tt.want)
		}
	}
}

func TestBoardsAndColumnOrder(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "vaultdir: /tmp/vault\n")

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if err := cfg.AddBoard("work", &config.BoardConfig{Folder: "/work/"}); err != nil {
		t.Fatalf("AddBoard returned error: %v", err)
	}
	if err := cfg.AddBoard("work", nil); err == nil {
		t.Fatalf("expected duplicate board error")
	}
	if err := cfg.SetColumnOrder("work", []string{"Done", " ", "Todo", "Done"}); err != nil {
		t.Fatalf("SetColumnOrder returned error: %v", err)
	}

	reloaded, err := config.Load(home)
	if err != nil {
		t.Fatalf("reloading config: %v", err)
	}
	ws := reloaded.MustWorkspace()
	if !slices.Equal(ws.BoardNames(), []string{"default", "work"}) {
		t.Fatalf("unexpected boards %v", ws.BoardNames())
	}
	_, b, err := ws.Board("work")
	if err != nil {
		t.Fatalf("Board returned error: %v", err)
	}
	if b.Folder != "work" || !slices.Equal(b.ColumnOrder, []string{"Done", "Todo"}) {
		t.Fatalf("unexpected board %#v", b)
	}

	if err := reloaded.SetColumnOrder("work", nil); err != nil {
		t.Fatalf("SetColumnOrder returned error: %v", err)
	}
	if b.ColumnOrder != nil {
		t.Fatalf("expected reset column order, got %v", b.ColumnOrder)
	}

	if err := reloaded.RemoveBoard("default"); err != nil {
		t.Fatalf("RemoveBoard returned error: %v", err)
	}
	if err := reloaded.RemoveBoard("work"); err == nil {
		t.Fatalf("expected error removing the last board")
	}
}

func TestEnsureConfigExistsRequiresVault(t *testing.T) {
	home := t.TempDir()

	err := config.EnsureConfigExists(home)
	var initErr *config.ConfigInitError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected ConfigInitError, got %v", err)
	}
	if !strings.Contains(err.Error(), "VaultDir") {
		t.Fatalf("expected missing vault error, got %v", err)
	}

	writeConfig(t, home, "vaultdir: /tmp/vault\n")
	if err := config.EnsureConfigExists(home); err != nil {
		t.Fatalf("EnsureConfigExists returned error: %v", err)
	}
}

func TestBoardConfigClone(t *testing.T) {
	groupBy := "stage"
	delay := 3 * time.Second
	src := &config.BoardConfig{
		Folder:      "work",
		ColumnOrder: []string{"Done", "Todo"},
		GroupBy:     &groupBy,
		UndoDelay:   &delay,
	}

	c := src.Clone()
	*src.GroupBy = "status"
	src.ColumnOrder[0] = "Later"

	if c.Folder != "work" || *c.GroupBy != "stage" || *c.UndoDelay != delay {
		t.Fatalf("unexpected clone %#v", c)
	}
	if !slices.Equal(c.ColumnOrder, []string{"Done", "Todo"}) {
		t.Fatalf("clone shares column order: %v", c.ColumnOrder)
	}
	if c.Draggable != nil || c.Exclude != nil {
		t.Fatalf("unset fields should stay nil")
	}

	var nilBoard *config.BoardConfig
	if got := nilBoard.Clone(); got == nil {
		t.Fatalf("Clone of nil should return an empty board")
	}
}

package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/internal/feed"
	"github.com/Paintersrp/an-kanban/internal/handler"
	"github.com/Paintersrp/an-kanban/internal/logging"
)

type stubStats struct {
	stats feed.Stats
}

func (s stubStats) Stats() feed.Stats { return s.stats }

func TestFormatFeedStatusIncludesScan(t *testing.T) {
	t.Parallel()

	src := stubStats{stats: feed.Stats{
		Entries:  12,
		Cached:   9,
		LastScan: time.Date(2024, time.March, 5, 17, 42, 0, 0, time.Local),
	}}

	got := formatFeedStatus(src)
	want := "Cards: 12 · cached 9 · scanned 17:42"
	if got != want {
		t.Fatalf("formatFeedStatus mismatch: got %q, want %q", got, want)
	}
}

func TestFormatFeedStatusOmitsEmptyParts(t *testing.T) {
	t.Parallel()

	got := formatFeedStatus(stubStats{})
	if got != "Cards: 0" {
		t.Fatalf("formatFeedStatus mismatch: got %q", got)
	}
	if formatFeedStatus(nil) != "" {
		t.Fatalf("expected empty status without a source")
	}
}

func TestStatusHeartbeatClearsWhenFeedNil(t *testing.T) {
	t.Parallel()

	st := &State{Status: &StatusLine{}}
	st.Status.Set("stale")

	msg := st.StatusHeartbeatCmd()()
	stats, ok := msg.(FeedStatsMsg)
	if !ok {
		t.Fatalf("expected FeedStatsMsg, got %T", msg)
	}
	if stats.Line != "" || st.Status.Get() != "" {
		t.Fatalf("expected cleared status, got %q / %q", stats.Line, st.Status.Get())
	}
}

func newTestState(t *testing.T, vault string, ws *config.Workspace) *State {
	t.Helper()

	h := handler.NewFileHandler(vault)
	return &State{
		Workspace: ws,
		Handler:   h,
		Logger:    logging.Discard(),
		Vault:     vault,
		Status:    &StatusLine{},
	}
}

func TestSelectBoardScopesFeed(t *testing.T) {
	vault := t.TempDir()
	for _, rel := range []string{"work/a.md", "home/b.md"} {
		p := filepath.Join(vault, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(p, []byte("---\nstatus: Todo\n---\n"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
	}

	ws := &config.Workspace{
		VaultDir: vault,
		Boards: map[string]*config.BoardConfig{
			"work": {Folder: "work"},
			"home": {Folder: "home", Sort: config.SortPath},
		},
		BoardOrder: []string{"work", "home"},
	}
	st := newTestState(t, vault, ws)
	t.Cleanup(func() { _ = st.Close() })

	eff, err := st.SelectBoard("")
	if err != nil {
		t.Fatalf("SelectBoard returned error: %v", err)
	}
	if eff.Board != "work" {
		t.Fatalf("expected first board, got %q", eff.Board)
	}
	entries, err := st.Feed.Entries()
	if err != nil || len(entries) != 1 || entries[0].Path != "work/a.md" {
		t.Fatalf("unexpected entries %#v, %v", entries, err)
	}

	if _, err := st.SelectBoard("home"); err != nil {
		t.Fatalf("SelectBoard returned error: %v", err)
	}
	if scope := st.Feed.Scope(); scope.Folder != "home" || scope.Sort != config.SortPath {
		t.Fatalf("unexpected scope %#v", scope)
	}

	if _, err := st.SelectBoard("missing"); err == nil {
		t.Fatalf("expected error for unknown board")
	}
}

func TestStartWatcherInvalidatesFeed(t *testing.T) {
	vault := t.TempDir()
	ws := &config.Workspace{VaultDir: vault, Boards: map[string]*config.BoardConfig{"default": {}}}
	st := newTestState(t, vault, ws)

	if _, err := st.SelectBoard(""); err != nil {
		t.Fatalf("SelectBoard returned error: %v", err)
	}

	changed := make(chan string, 4)
	st.Feed.OnChange(func(rel string) { changed <- rel })

	watcher, err := st.StartWatcher()
	if err != nil {
		t.Fatalf("StartWatcher returned error: %v", err)
	}
	again, _ := st.StartWatcher()
	if again != watcher {
		t.Fatalf("expected StartWatcher to reuse the running watcher")
	}

	done := make(chan any, 1)
	go func() { done <- watcher.Start()() }()

	if err := os.WriteFile(filepath.Join(vault, "card.md"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write card: %v", err)
	}

	select {
	case msg := <-done:
		changedMsg, ok := msg.(VaultCardsChangedMsg)
		if !ok || len(changedMsg.Paths) != 1 || changedMsg.Paths[0] != "card.md" {
			t.Fatalf("unexpected watcher message %#v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}

	select {
	case rel := <-changed:
		if rel != "card.md" {
			t.Fatalf("unexpected invalidation %q", rel)
		}
	case <-time.After(time.Second):
		t.Fatal("expected feed invalidation")
	}

	if err := st.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if st.Watcher != nil || st.Feed != nil {
		t.Fatalf("expected Close to release watcher and feed")
	}
}

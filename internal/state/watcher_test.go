package state

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestVaultWatcherBatchesCardChanges(t *testing.T) {
	vault := t.TempDir()
	for _, dir := range []string{"work", "trash", ".obsidian"} {
		if err := os.MkdirAll(filepath.Join(vault, dir), 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	w, err := NewVaultWatcher(vault)
	if err != nil {
		t.Fatalf("NewVaultWatcher returned error: %v", err)
	}
	w.SetSettle(300 * time.Millisecond)

	var seen []string
	seenCh := make(chan string, 16)
	w.OnChange(func(rel string) { seenCh <- rel })
	closed := make(chan struct{})
	w.OnClose(func() { close(closed) })

	done := make(chan any, 1)
	go func() { done <- w.Start()() }()

	for _, name := range []string{"work/a.md", "work/b.md", "trash/x.md", ".obsidian/y.md", "work/notes.txt"} {
		if err := os.WriteFile(filepath.Join(vault, filepath.FromSlash(name)), []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	select {
	case msg := <-done:
		batch, ok := msg.(VaultCardsChangedMsg)
		if !ok {
			t.Fatalf("unexpected watcher message %#v", msg)
		}
		if !slices.Equal(batch.Paths, []string{"work/a.md", "work/b.md"}) {
			t.Fatalf("unexpected batch %v", batch.Paths)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher batch")
	}

drain:
	for {
		select {
		case rel := <-seenCh:
			seen = append(seen, rel)
		default:
			break drain
		}
	}
	for _, rel := range seen {
		if rel != "work/a.md" && rel != "work/b.md" {
			t.Fatalf("OnChange received ignored path %q", rel)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("expected OnClose to run")
	}
}

func TestNewVaultWatcherRequiresVault(t *testing.T) {
	if _, err := NewVaultWatcher(""); err == nil {
		t.Fatalf("expected error for empty vault")
	}
}

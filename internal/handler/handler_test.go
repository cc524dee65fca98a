package handler

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestWalkFilesDefaultIncludesRootAndNestedNotes(t *testing.T) {
	t.Parallel()

	vaultDir := t.TempDir()

	rootNote := filepath.Join(vaultDir, "root.md")
	nestedDir := filepath.Join(vaultDir, "project")
	nestedNote := filepath.Join(nestedDir, "nested.md")
	archivedNote := filepath.Join(vaultDir, "archive", "archived.md")
	trashedNote := filepath.Join(vaultDir, "trash", "trashed.md")
	hiddenNote := filepath.Join(vaultDir, ".obsidian", "hidden.md")
	textFile := filepath.Join(vaultDir, "notes.txt")

	mustWriteFile(t, rootNote)
	mustMkdirAll(t, nestedDir)
	mustWriteFile(t, nestedNote)
	mustWriteFile(t, archivedNote)
	mustWriteFile(t, trashedNote)
	mustWriteFile(t, hiddenNote)
	mustWriteFile(t, textFile)

	h := NewFileHandler(vaultDir)

	files, err := h.WalkFiles("", []string{"archive", "trash"})
	if err != nil {
		t.Fatalf("WalkFiles returned error: %v", err)
	}

	slices.Sort(files)
	expected := []string{rootNote, nestedNote}
	slices.Sort(expected)

	if !slices.Equal(files, expected) {
		t.Fatalf("WalkFiles returned %v, want %v", files, expected)
	}

	scoped, err := h.WalkFiles("project", nil)
	if err != nil {
		t.Fatalf("WalkFiles returned error for folder scope: %v", err)
	}
	if !slices.Equal(scoped, []string{nestedNote}) {
		t.Fatalf("scoped WalkFiles returned %v", scoped)
	}

	missing, err := h.WalkFiles("does-not-exist", nil)
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected empty result for missing folder, got %v, %v", missing, err)
	}
}

func TestReadAndWriteProperties(t *testing.T) {
	t.Parallel()

	vaultDir := t.TempDir()
	h := NewFileHandler(vaultDir)

	path := filepath.Join(vaultDir, "work", "card.md")
	mustWriteContent(t, path, "---\nstatus: Todo\n---\nbody\n")

	props, err := h.ReadProperties("work/card.md")
	if err != nil {
		t.Fatalf("ReadProperties returned error: %v", err)
	}
	if props["status"] != "Todo" {
		t.Fatalf("unexpected properties %#v", props)
	}

	if err := h.WriteProperty("work/card.md", "status", "Done"); err != nil {
		t.Fatalf("WriteProperty returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read card: %v", err)
	}
	if string(data) != "---\nstatus: Done\n---\nbody\n" {
		t.Fatalf("unexpected content %q", data)
	}

	if _, err := h.ReadProperties("work/missing.md"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := h.WriteProperty("work/missing.md", "status", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRejectsCollisions(t *testing.T) {
	t.Parallel()

	vaultDir := t.TempDir()
	h := NewFileHandler(vaultDir)

	id, err := h.Create("/boards/new card.md", []byte("---\nstatus: Todo\n---\n"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if id != "boards/new card.md" {
		t.Fatalf("unexpected id %q", id)
	}
	if _, err := os.Stat(filepath.Join(vaultDir, "boards", "new card.md")); err != nil {
		t.Fatalf("expected created file: %v", err)
	}

	if _, err := h.Create("boards/new card.md", nil); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := h.Create("../escape.md", nil); err == nil {
		t.Fatalf("expected error when creating outside the vault")
	}
}

func TestRename(t *testing.T) {
	t.Parallel()

	vaultDir := t.TempDir()
	h := NewFileHandler(vaultDir)
	mustWriteFile(t, filepath.Join(vaultDir, "a.md"))
	mustWriteFile(t, filepath.Join(vaultDir, "taken.md"))

	if err := h.Rename("a.md", "taken.md"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if err := h.Rename("missing.md", "b.md"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := h.Rename("a.md", "b.md"); err != nil {
		t.Fatalf("Rename returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(vaultDir, "b.md")); err != nil {
		t.Fatalf("expected renamed file: %v", err)
	}
	if err := h.Rename("b.md", "b.md"); err != nil {
		t.Fatalf("renaming to the same path should be a no-op, got %v", err)
	}
}

func TestDeleteMovesToTrash(t *testing.T) {
	t.Parallel()

	vaultDir := t.TempDir()
	h := NewFileHandler(vaultDir)
	mustWriteFile(t, filepath.Join(vaultDir, "work", "card.md"))

	if err := h.Delete("work/card.md"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(vaultDir, "trash", "work", "card.md")); err != nil {
		t.Fatalf("expected card in trash: %v", err)
	}
	if err := h.Delete("work/card.md"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteKeepsEarlierTrashedCard(t *testing.T) {
	t.Parallel()

	vaultDir := t.TempDir()
	h := NewFileHandler(vaultDir)
	mustWriteContent(t, filepath.Join(vaultDir, "work", "card.md"), "first\n")
	if err := h.Delete("work/card.md"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	mustWriteContent(t, filepath.Join(vaultDir, "work", "card.md"), "second\n")
	if err := h.Delete("work/card.md"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists when the trash slot is taken, got %v", err)
	}

	trashed, err := os.ReadFile(filepath.Join(vaultDir, "trash", "work", "card.md"))
	if err != nil || string(trashed) != "first\n" {
		t.Fatalf("trashed card was replaced: %q, %v", trashed, err)
	}
	if _, err := os.Stat(filepath.Join(vaultDir, "work", "card.md")); err != nil {
		t.Fatalf("expected second card to stay in place: %v", err)
	}
}

func TestArchiveAndRestore(t *testing.T) {
	t.Parallel()

	vaultDir := t.TempDir()
	h := NewFileHandler(vaultDir)
	mustWriteFile(t, filepath.Join(vaultDir, "work", "card.md"))

	archived, err := h.Archive("work/card.md")
	if err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}
	if archived != "archive/work/card.md" {
		t.Fatalf("unexpected archived id %q", archived)
	}
	if _, err := os.Stat(filepath.Join(vaultDir, "archive", "work", "card.md")); err != nil {
		t.Fatalf("expected card in archive: %v", err)
	}

	restored, err := h.Restore(archived)
	if err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if restored != "work/card.md" {
		t.Fatalf("unexpected restored id %q", restored)
	}

	if err := h.Delete("work/card.md"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	mustWriteFile(t, filepath.Join(vaultDir, "work", "card.md"))
	if _, err := h.Restore("trash/work/card.md"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists when the original path is taken, got %v", err)
	}
	if _, err := h.Restore("work/card.md"); err == nil {
		t.Fatalf("expected error restoring a card outside trash and archive")
	}
}

func TestEnsureFolder(t *testing.T) {
	t.Parallel()

	vaultDir := t.TempDir()
	h := NewFileHandler(vaultDir)

	if err := h.EnsureFolder(""); err != nil {
		t.Fatalf("EnsureFolder on root returned error: %v", err)
	}
	if err := h.EnsureFolder("a/b/c"); err != nil {
		t.Fatalf("EnsureFolder returned error: %v", err)
	}
	info, err := os.Stat(filepath.Join(vaultDir, "a", "b", "c"))
	if err != nil || !info.IsDir() {
		t.Fatalf("expected nested folder, got %v", err)
	}

	mustWriteFile(t, filepath.Join(vaultDir, "file"))
	if err := h.EnsureFolder("file"); !errors.Is(err, ErrNotFolder) {
		t.Fatalf("expected ErrNotFolder, got %v", err)
	}
}

func TestIDAndPath(t *testing.T) {
	t.Parallel()

	vaultDir := t.TempDir()
	h := NewFileHandler(vaultDir)

	id, err := h.ID(filepath.Join(vaultDir, "x", "y.md"))
	if err != nil || id != "x/y.md" {
		t.Fatalf("ID returned %q, %v", id, err)
	}
	if _, err := h.ID(filepath.Dir(vaultDir)); err == nil {
		t.Fatalf("expected error for path outside vault")
	}

	path, err := h.Path("x/y.md")
	if err != nil || path != filepath.Join(vaultDir, "x", "y.md") {
		t.Fatalf("Path returned %q, %v", path, err)
	}
	if h.VaultDir() != filepath.Clean(vaultDir) {
		t.Fatalf("unexpected vault dir %q", h.VaultDir())
	}
}

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

func mustWriteFile(t *testing.T, path string) {
	t.Helper()
	mustWriteContent(t, path, "# test\n")
}

func mustWriteContent(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

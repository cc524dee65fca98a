package handler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Paintersrp/an-kanban/internal/frontmatter"
	"github.com/Paintersrp/an-kanban/internal/pathutil"
)

var (
	// ErrNotFound is returned when a card file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrExists is returned when a create or rename target is taken.
	ErrExists = errors.New("file already exists")
	// ErrNotFolder is returned when a folder path is occupied by a file.
	ErrNotFolder = errors.New("path exists but is not a folder")
)

const (
	// TrashDir is the vault folder deleted cards are moved into.
	TrashDir = "trash"
	// ArchiveDir is the vault folder archived cards are moved into.
	ArchiveDir = "archive"
)

// FileHandler stores cards as markdown files inside a vault directory. Card
// ids are vault-relative paths with forward slashes.
type FileHandler struct {
	vaultDir string
}

func NewFileHandler(vaultDir string) *FileHandler {
	return &FileHandler{vaultDir: pathutil.NormalizePath(vaultDir)}
}

// VaultDir returns the vault root.
func (h *FileHandler) VaultDir() string {
	return h.vaultDir
}

// Path resolves a card id to its absolute path.
func (h *FileHandler) Path(id string) (string, error) {
	return pathutil.Resolve(h.vaultDir, id)
}

// ID converts an absolute path inside the vault to a card id.
func (h *FileHandler) ID(path string) (string, error) {
	rel, err := pathutil.VaultRelative(h.vaultDir, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", pathutil.ErrOutsideVault
	}
	return rel, nil
}

// ReadFile returns the raw content of a card.
func (h *FileHandler) ReadFile(id string) ([]byte, error) {
	path, err := h.Path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return data, err
}

// ReadProperties parses the front matter of a card.
func (h *FileHandler) ReadProperties(id string) (map[string]any, error) {
	data, err := h.ReadFile(id)
	if err != nil {
		return nil, err
	}
	props, err := frontmatter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return props, nil
}

// WriteProperty sets one front matter key of a card. A nil value removes it.
func (h *FileHandler) WriteProperty(id, name string, value any) error {
	path, err := h.Path(id)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	updated, err := frontmatter.SetProperty(data, name, value)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	return os.WriteFile(path, updated, info.Mode().Perm())
}

// Create writes a new card file and returns its id. Missing parent folders
// are created.
func (h *FileHandler) Create(rel string, content []byte) (string, error) {
	id := pathutil.CleanRelative(rel)
	path, err := h.Path(id)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("create: empty path")
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%s: %w", id, ErrExists)
	}
	if err != nil {
		return "", err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return "", err
	}
	return id, f.Close()
}

// Rename moves a card to newRel. The target must not exist.
func (h *FileHandler) Rename(id, newRel string) error {
	from, err := h.Path(id)
	if err != nil {
		return err
	}
	target := pathutil.CleanRelative(newRel)
	to, err := h.Path(target)
	if err != nil {
		return err
	}

	if _, err := os.Stat(from); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if from == to {
		return nil
	}
	if _, err := os.Stat(to); err == nil && !sameFile(from, to) {
		return fmt.Errorf("%s: %w", target, ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(to), os.ModePerm); err != nil {
		return err
	}
	return os.Rename(from, to)
}

// Delete moves a card into the trash folder, keeping its subdirectory.
func (h *FileHandler) Delete(id string) error {
	path, err := h.Path(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return h.Trash(path)
}

// Trash moves a card file to the trash subdirectory. A file already in the
// trash under the same path is never replaced.
func (h *FileHandler) Trash(path string) error {
	subDir, err := filepath.Rel(h.vaultDir, filepath.Dir(path))
	if err != nil {
		return err
	}

	trashDir := filepath.Join(h.vaultDir, TrashDir, subDir)
	newPath := filepath.Join(trashDir, filepath.Base(path))
	if _, err := os.Lstat(newPath); err == nil {
		rel, _ := h.ID(newPath)
		return fmt.Errorf("%s is already in the trash, restore or remove it first: %w", rel, ErrExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(trashDir, os.ModePerm); err != nil {
		return err
	}
	return os.Rename(path, newPath)
}

// Archive moves a card into the archive folder, keeping its subdirectory,
// and returns the archived id.
func (h *FileHandler) Archive(id string) (string, error) {
	id = pathutil.CleanRelative(id)
	target := ArchiveDir + "/" + id
	if err := h.Rename(id, target); err != nil {
		return "", err
	}
	return target, nil
}

// Restore moves a card out of the trash or archive folder back to the folder
// it came from and returns the restored id. An existing file at the original
// location is never overwritten.
func (h *FileHandler) Restore(id string) (string, error) {
	id = pathutil.CleanRelative(id)
	var original string
	for _, dir := range []string{TrashDir, ArchiveDir} {
		if rest, ok := strings.CutPrefix(id, dir+"/"); ok {
			original = rest
			break
		}
	}
	if original == "" {
		return "", fmt.Errorf("%s is not in the %s or %s folder", id, TrashDir, ArchiveDir)
	}

	if err := h.Rename(id, original); err != nil {
		return "", err
	}
	return original, nil
}

// EnsureFolder creates a vault folder and its parents. The vault root is a
// no-op.
func (h *FileHandler) EnsureFolder(rel string) error {
	cleaned := pathutil.CleanRelative(rel)
	if cleaned == "" {
		return nil
	}
	path, err := h.Path(cleaned)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%s: %w", cleaned, ErrNotFolder)
	case err == nil:
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	return os.MkdirAll(path, os.ModePerm)
}

// WalkFiles returns every markdown file below root, a vault-relative folder.
// Hidden entries and the excluded vault folders are skipped.
func (h *FileHandler) WalkFiles(root string, excludeDirs []string) ([]string, error) {
	start, err := h.Path(root)
	if err != nil {
		return nil, err
	}

	var excludePaths []string
	for _, d := range excludeDirs {
		excludePaths = append(excludePaths, filepath.Clean(filepath.Join(h.vaultDir, d)))
	}

	var files []string
	err = filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == start && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}

		cleaned := filepath.Clean(path)
		name := d.Name()

		if d.IsDir() {
			for _, excluded := range excludePaths {
				if cleaned == excluded {
					return filepath.SkipDir
				}
			}
			if cleaned != start && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || filepath.Ext(name) != ".md" {
			return nil
		}
		files = append(files, path)
		return nil
	})

	return files, err
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

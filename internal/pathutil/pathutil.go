package pathutil

import (
	"errors"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrOutsideVault is returned when a card path would resolve outside the vault.
var ErrOutsideVault = errors.New("path escapes vault")

var (
	illegalFilenameChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespaceRun        = regexp.MustCompile(`\s+`)
)

// NormalizePath converts Windows-style separators to the current platform's separator
// and cleans the resulting path.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	// Replace Windows separators and collapse redundant separators/segments.
	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// VaultRelative returns the path to target relative to the provided vault directory.
// The returned path always uses forward slashes to simplify downstream processing
// and ensure platform agnosticism.
func VaultRelative(vaultDir, target string) (string, error) {
	base := NormalizePath(vaultDir)
	cleanedTarget := NormalizePath(target)

	rel, err := filepath.Rel(base, cleanedTarget)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// Resolve maps a vault-relative, slash separated path to an absolute path on
// disk. Paths that climb out of the vault are rejected.
func Resolve(vaultDir, rel string) (string, error) {
	cleaned := CleanRelative(rel)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrOutsideVault
	}
	base := NormalizePath(vaultDir)
	if cleaned == "" {
		return base, nil
	}
	return filepath.Join(base, filepath.FromSlash(cleaned)), nil
}

// CleanRelative normalises a vault-relative path to slash form without a
// leading slash. The vault root is "".
func CleanRelative(rel string) string {
	replaced := strings.ReplaceAll(strings.TrimSpace(rel), "\\", "/")
	cleaned := strings.TrimLeft(path.Clean(replaced), "/")
	if cleaned == "." {
		return ""
	}
	return cleaned
}

// SanitizeFilename strips characters that are illegal in file names on common
// platforms, collapses whitespace runs to one space and trims the result.
func SanitizeFilename(name string) string {
	stripped := illegalFilenameChars.ReplaceAllString(name, "")
	collapsed := whitespaceRun.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(collapsed)
}

// Stem returns the base name of p without its extension.
func Stem(p string) string {
	base := path.Base(filepath.ToSlash(p))
	return strings.TrimSuffix(base, path.Ext(base))
}

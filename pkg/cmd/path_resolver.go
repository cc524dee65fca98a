package cmd

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	model "github.com/Paintersrp/an-kanban/internal/board"
	"github.com/Paintersrp/an-kanban/internal/state"
)

// ResolveCard finds the card an argument names on b. The argument may be a
// card id, a path inside the vault (absolute, vault-relative or relative to
// the board folder, with or without ".md") or a card title.
func ResolveCard(s *state.State, b model.Board, arg string) (model.Card, error) {
	arg = strings.TrimSpace(arg)
	rel, err := VaultRelative(s, arg)
	if err != nil {
		return model.Card{}, err
	}

	// A bare name is a title first. Two cards sharing it is an error even
	// when one of them also matches as a path.
	if !strings.ContainsAny(arg, `/\`) && !strings.EqualFold(path.Ext(arg), ".md") {
		if matches := titleMatches(b, arg); len(matches) > 0 {
			return pickTitle(matches, arg, s.Board.Board)
		}
	}

	candidates := []string{rel, rel + ".md"}
	if folder := s.Board.Folder; folder != "" && !filepath.IsAbs(arg) {
		inFolder := path.Join(folder, filepath.ToSlash(filepath.Clean(arg)))
		candidates = append(candidates, inFolder, inFolder+".md")
	}
	for _, id := range candidates {
		if card, ok := b.Find(id); ok {
			return card, nil
		}
	}

	return findByTitle(b, arg, s.Board.Board)
}

// VaultRelative turns an absolute or vault-relative path argument into a
// slash separated path relative to the vault, rejecting paths outside it.
func VaultRelative(s *state.State, arg string) (string, error) {
	if s == nil || s.Workspace == nil {
		return "", fmt.Errorf("state configuration is not initialized")
	}
	if s.Workspace.VaultDir == "" {
		return "", fmt.Errorf("vault directory is not configured")
	}
	vaultDir := filepath.Clean(s.Workspace.VaultDir)
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("a card argument is required")
	}

	var resolved string
	if filepath.IsAbs(arg) {
		resolved = filepath.Clean(arg)
	} else {
		resolved = filepath.Join(vaultDir, filepath.Clean(arg))
	}
	if err := ensureWithinVault(vaultDir, resolved); err != nil {
		return "", err
	}

	rel, err := filepath.Rel(vaultDir, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func findByTitle(b model.Board, title, boardName string) (model.Card, error) {
	return pickTitle(titleMatches(b, title), title, boardName)
}

func titleMatches(b model.Board, title string) []model.Card {
	var matches []model.Card
	for _, col := range b.Columns {
		for _, card := range col.Cards {
			if strings.EqualFold(card.Title, title) {
				matches = append(matches, card)
			}
		}
	}
	return matches
}

func pickTitle(matches []model.Card, title, boardName string) (model.Card, error) {
	switch len(matches) {
	case 0:
		return model.Card{}, fmt.Errorf("card %q not found on board %q", title, boardName)
	case 1:
		return matches[0], nil
	}

	ids := make([]string, 0, len(matches))
	for _, card := range matches {
		ids = append(ids, card.ID)
	}
	sort.Strings(ids)
	return model.Card{}, fmt.Errorf("card title %q is ambiguous: %s", title, strings.Join(ids, ", "))
}

// ResolveColumn matches arg against the column ids of b, exactly first and
// then ignoring case.
func ResolveColumn(b model.Board, arg string) (string, bool) {
	arg = strings.TrimSpace(arg)
	if _, idx := b.Column(arg); idx >= 0 {
		return arg, true
	}
	for _, col := range b.Columns {
		if strings.EqualFold(col.ID, arg) || strings.EqualFold(col.Title, arg) {
			return col.ID, true
		}
	}
	return "", false
}

func ensureWithinVault(vaultDir, resolved string) error {
	rel, err := filepath.Rel(vaultDir, resolved)
	if err != nil {
		return fmt.Errorf("failed to resolve path %q relative to vault %q: %w", resolved, vaultDir, err)
	}

	if rel == "." {
		return nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q is outside the vault %q", resolved, vaultDir)
	}

	return nil
}

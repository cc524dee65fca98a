// Package cards is the narrow set of mutations the board applies to the
// vault: create, rename, set a property and delete.
package cards

import (
	"errors"
	"path"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/Paintersrp/an-kanban/internal/frontmatter"
	"github.com/Paintersrp/an-kanban/internal/handler"
	"github.com/Paintersrp/an-kanban/internal/pathutil"
)

// Store persists cards. Ids are vault-relative paths.
type Store interface {
	ReadProperties(id string) (map[string]any, error)
	WriteProperty(id, name string, value any) error
	Create(path string, content []byte) (string, error)
	Rename(id, newPath string) error
	Delete(id string) error
	EnsureFolder(path string) error
}

// CreateParams describe a new card.
type CreateParams struct {
	Title      string
	GroupBy    string
	GroupValue any
	// Extra properties are written after the grouping property and win
	// over it when they share a name.
	Extra  map[string]any
	Folder string
}

// Manager applies card mutations to a Store.
type Manager struct {
	store  Store
	logger log.FieldLogger
}

func NewManager(store Store, logger log.FieldLogger) *Manager {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Manager{store: store, logger: logger}
}

// CreateCard writes a new card file and returns its id.
func (m *Manager) CreateCard(p CreateParams) (string, error) {
	title := pathutil.SanitizeFilename(p.Title)
	folder := pathutil.CleanRelative(p.Folder)
	target := path.Join(folder, title+".md")
	if title == "" {
		return "", &CreationError{Path: target, Err: ErrEmptyTitle}
	}

	if err := m.store.EnsureFolder(folder); err != nil {
		if errors.Is(err, handler.ErrNotFolder) {
			return "", &FolderConflictError{Folder: folder, Err: err}
		}
		return "", &CreationError{Path: target, Err: err}
	}

	content, err := frontmatter.Render(initialFields(p))
	if err != nil {
		return "", &CreationError{Path: target, Err: err}
	}

	id, err := m.store.Create(target, content)
	if err != nil {
		return "", &CreationError{Path: target, Err: err}
	}

	m.logger.WithFields(log.Fields{"card": id, "property": p.GroupBy}).Debug("card created")
	return id, nil
}

func initialFields(p CreateParams) []frontmatter.Field {
	var fields []frontmatter.Field
	if p.GroupBy != "" {
		value := p.GroupValue
		if extra, ok := p.Extra[p.GroupBy]; ok {
			value = extra
		}
		fields = append(fields, frontmatter.Field{Key: p.GroupBy, Value: value})
	}

	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		if k != p.GroupBy {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, frontmatter.Field{Key: k, Value: p.Extra[k]})
	}
	return fields
}

// RenameCard renames a card within its folder and returns the new id.
func (m *Manager) RenameCard(id, newTitle string) (string, error) {
	title := pathutil.SanitizeFilename(newTitle)
	dir := path.Dir(id)
	if dir == "." {
		dir = ""
	}
	target := path.Join(dir, title+".md")
	if title == "" {
		return "", &RenameError{ID: id, Target: target, Err: ErrEmptyTitle}
	}

	if err := m.store.Rename(id, target); err != nil {
		return "", &RenameError{ID: id, Target: target, Err: err}
	}

	m.logger.WithFields(log.Fields{"card": id, "to": target}).Debug("card renamed")
	return target, nil
}

// DeleteCard removes a card through the store.
func (m *Manager) DeleteCard(id string) error {
	if err := m.store.Delete(id); err != nil {
		return &DeleteError{ID: id, Err: err}
	}
	m.logger.WithField("card", id).Debug("card deleted")
	return nil
}

// SetProperty writes one property. A nil value removes it.
func (m *Manager) SetProperty(id, name string, value any) error {
	if err := m.store.WriteProperty(id, name, value); err != nil {
		return &PropertyWriteError{ID: id, Property: name, Err: err}
	}
	m.logger.WithFields(log.Fields{"card": id, "property": name}).Debug("property written")
	return nil
}

// GetProperties returns a card's properties. Read failures are logged and
// yield an empty map since cards without properties are normal.
func (m *Manager) GetProperties(id string) map[string]any {
	props, err := m.store.ReadProperties(id)
	if err != nil {
		m.logger.WithError(err).WithField("card", id).Warn("read properties")
		return map[string]any{}
	}
	if props == nil {
		return map[string]any{}
	}
	return props
}

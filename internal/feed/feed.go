// Package feed supplies the entries a board is built from. It scans a folder
// of the vault, parses each card's front matter through an LRU cache keyed by
// modification time, and fans change notifications out to subscribers.
package feed

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Paintersrp/an-kanban/internal/board"
	"github.com/Paintersrp/an-kanban/internal/cache"
	"github.com/Paintersrp/an-kanban/internal/frontmatter"
	"github.com/Paintersrp/an-kanban/internal/pathutil"
)

// ErrClosed signals that the feed has been shut down.
var ErrClosed = errors.New("feed closed")

// Sort modes for entries within a snapshot.
const (
	SortTitle   = "title"
	SortUpdated = "updated"
	SortPath    = "path"
)

// SortModes lists the accepted sort modes.
var SortModes = []string{SortTitle, SortUpdated, SortPath}

// DefaultExcludes are vault folders never shown on a board.
var DefaultExcludes = []string{"trash", "archive"}

const defaultCacheSize = 2048

// Vault lists card files. *handler.FileHandler satisfies it.
type Vault interface {
	WalkFiles(root string, excludeDirs []string) ([]string, error)
	ID(path string) (string, error)
}

// Scope selects which part of the vault a board shows.
type Scope struct {
	Folder  string
	Exclude []string
	Sort    string
}

// Stats summarises the most recent scan.
type Stats struct {
	Entries  int
	Cached   int
	LastScan time.Time
}

// Group is a set of entries sharing a folder.
type Group struct {
	Key     string
	Entries []board.Entry
}

type cached struct {
	modTime time.Time
	size    int64
	entry   board.Entry
}

type loaded struct {
	entry   board.Entry
	modTime time.Time
}

// Feed is the query feed over a vault folder.
type Feed struct {
	mu     sync.RWMutex
	vault  Vault
	scope  Scope
	cache  *cache.LRUCache[string, cached]
	subs   map[int]func(string)
	nextID int
	closed bool
	logger log.FieldLogger

	lastScan  time.Time
	lastCount int

	now  func() time.Time
	read func(string) ([]byte, error)
	stat func(string) (fs.FileInfo, error)
}

// New constructs a feed over vault limited to scope.
func New(vault Vault, scope Scope, logger log.FieldLogger) *Feed {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Feed{
		vault:  vault,
		scope:  scope,
		cache:  cache.NewLRUCache[string, cached](defaultCacheSize),
		subs:   make(map[int]func(string)),
		logger: logger,
		now:    time.Now,
		read:   os.ReadFile,
		stat:   os.Stat,
	}
}

// Scope returns the current scope.
func (f *Feed) Scope() Scope {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.scope
}

// SetScope changes the folder or sort order and notifies subscribers.
func (f *Feed) SetScope(scope Scope) {
	f.mu.Lock()
	f.scope = scope
	f.mu.Unlock()
	f.notify("")
}

// Entries returns every entry in scope, sorted by the scope's sort mode.
func (f *Feed) Entries() ([]board.Entry, error) {
	f.mu.RLock()
	closed := f.closed
	scope := f.scope
	f.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	folder := pathutil.CleanRelative(scope.Folder)
	paths, err := f.vault.WalkFiles(folder, excludeDirs(folder, scope.Exclude))
	if err != nil {
		return nil, err
	}

	items := make([]loaded, 0, len(paths))
	for _, p := range paths {
		item, ok := f.load(p)
		if ok {
			items = append(items, item)
		}
	}

	sortEntries(items, scope.Sort)

	entries := make([]board.Entry, len(items))
	for i, item := range items {
		entries[i] = item.entry
	}

	f.mu.Lock()
	f.lastScan = f.now()
	f.lastCount = len(entries)
	f.mu.Unlock()

	f.logger.WithFields(log.Fields{"folder": folder, "cards": len(entries)}).Debug("scanned board folder")
	return entries, nil
}

// Stats reports the size of the last scan and of the parse cache.
func (f *Feed) Stats() Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Stats{Entries: f.lastCount, Cached: f.cache.Len(), LastScan: f.lastScan}
}

// Snapshot returns the entries in scope grouped by folder, folders sorted by
// name.
func (f *Feed) Snapshot() ([]Group, error) {
	entries, err := f.Entries()
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var groups []Group
	for _, e := range entries {
		key := path.Dir(e.Path)
		if key == "." {
			key = ""
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups, nil
}

// Flatten concatenates grouped entries in group order.
func Flatten(groups []Group) []board.Entry {
	var out []board.Entry
	for _, g := range groups {
		out = append(out, g.Entries...)
	}
	return out
}

// OnChange registers fn to run whenever the vault changes. The argument is the
// vault-relative path that changed, or "" for a full refresh. The returned
// function unregisters fn.
func (f *Feed) OnChange(fn func(string)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Invalidate drops a cached entry and notifies subscribers.
func (f *Feed) Invalidate(rel string) {
	rel = pathutil.CleanRelative(rel)
	if rel != "" {
		f.cache.Remove(rel)
	}
	f.notify(rel)
}

// Refresh clears the parse cache and notifies subscribers.
func (f *Feed) Refresh() {
	f.cache.Purge()
	f.notify("")
}

// Close drops subscribers and rejects further snapshots.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	f.subs = make(map[int]func(string))
	f.cache.Purge()
	return nil
}

func (f *Feed) notify(rel string) {
	f.mu.RLock()
	if f.closed {
		f.mu.RUnlock()
		return
	}
	subs := make([]func(string), 0, len(f.subs))
	ids := make([]int, 0, len(f.subs))
	for id := range f.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		subs = append(subs, f.subs[id])
	}
	f.mu.RUnlock()

	for _, fn := range subs {
		fn(rel)
	}
}

func (f *Feed) load(abs string) (loaded, bool) {
	id, err := f.vault.ID(abs)
	if err != nil {
		return loaded{}, false
	}
	info, err := f.stat(abs)
	if err != nil {
		return loaded{}, false
	}

	if hit, ok := f.cache.Get(id); ok && hit.modTime.Equal(info.ModTime()) && hit.size == info.Size() {
		entry := hit.entry
		entry.Properties = maps.Clone(hit.entry.Properties)
		return loaded{entry: entry, modTime: hit.modTime}, true
	}

	entry := board.Entry{Path: id, Name: pathutil.Stem(id), Properties: map[string]any{}}
	data, err := f.read(abs)
	if err != nil {
		f.logger.WithError(err).WithField("card", id).Warn("read card")
		return loaded{}, false
	}
	props, err := frontmatter.Parse(data)
	if err != nil {
		f.logger.WithError(err).WithField("card", id).Warn("read properties")
	} else {
		entry.Properties = props
	}

	stored := entry
	stored.Properties = maps.Clone(entry.Properties)
	f.cache.Put(id, cached{modTime: info.ModTime(), size: info.Size(), entry: stored})
	return loaded{entry: entry, modTime: info.ModTime()}, true
}

// excludeDirs returns vault-relative folders to skip. Defaults apply at the
// vault root and at the board folder; board excludes are relative to the
// board folder.
func excludeDirs(folder string, exclude []string) []string {
	dirs := append([]string(nil), DefaultExcludes...)
	for _, d := range DefaultExcludes {
		if folder != "" {
			dirs = append(dirs, path.Join(folder, d))
		}
	}
	for _, d := range exclude {
		if d = pathutil.CleanRelative(d); d != "" {
			dirs = append(dirs, path.Join(folder, d))
		}
	}
	return dirs
}

func sortEntries(items []loaded, mode string) {
	switch mode {
	case SortUpdated:
		sort.SliceStable(items, func(i, j int) bool {
			if !items[i].modTime.Equal(items[j].modTime) {
				return items[i].modTime.After(items[j].modTime)
			}
			return items[i].entry.Path < items[j].entry.Path
		})
	case SortPath:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].entry.Path < items[j].entry.Path
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := strings.ToLower(items[i].entry.Name), strings.ToLower(items[j].entry.Name)
			if a != b {
				return a < b
			}
			return items[i].entry.Path < items[j].entry.Path
		})
	}
}

// ValidSort reports whether mode is an accepted sort mode.
func ValidSort(mode string) bool {
	for _, m := range SortModes {
		if m == mode {
			return true
		}
	}
	return false
}

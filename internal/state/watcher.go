package state

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/Paintersrp/an-kanban/internal/handler"
	"github.com/Paintersrp/an-kanban/internal/pathutil"
)

// DefaultSettle is how long the watcher keeps collecting events after the
// first one before reporting the batch.
const DefaultSettle = 75 * time.Millisecond

// VaultCardsChangedMsg reports the card files created, written, removed or
// renamed in one burst of vault activity, as sorted vault-relative paths.
type VaultCardsChangedMsg struct {
	Paths []string
}

type VaultWatcherErrMsg struct {
	Err error
}

// VaultWatcher turns fsnotify events under a vault into card change
// batches. Hidden folders and the trash and archive folders are ignored.
type VaultWatcher struct {
	watcher *fsnotify.Watcher
	vault   string
	done    chan struct{}
	once    sync.Once

	mu        sync.Mutex
	queued    tea.Msg
	settle    time.Duration
	heartbeat func() tea.Cmd
	interval  time.Duration
	onChange  func(string)
	onClose   func()
}

func NewVaultWatcher(vault string) (*VaultWatcher, error) {
	root := pathutil.NormalizePath(vault)
	if root == "" {
		return nil, errors.New("vault directory cannot be empty")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &VaultWatcher{
		watcher: fw,
		vault:   root,
		done:    make(chan struct{}),
		settle:  DefaultSettle,
	}
	if err := w.watchTree(root); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// Start returns a command that blocks until the next batch of card changes
// and reports it as a message. Callers re-issue it after every message.
func (w *VaultWatcher) Start() tea.Cmd {
	if w == nil {
		return nil
	}

	return func() tea.Msg {
		if msg := w.takeQueued(); msg != nil {
			return msg
		}

		hb, interval := w.heartbeatConfig()
		var ticks <-chan time.Time
		if hb != nil && interval > 0 {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			ticks = ticker.C
		}

		for {
			select {
			case <-w.done:
				return nil
			case <-ticks:
				if msg := runCmd(hb); msg != nil {
					return msg
				}
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				rel := w.handle(event)
				if rel == "" {
					continue
				}
				batch := w.collect(rel)
				msg := VaultCardsChangedMsg{Paths: batch}
				if status := runCmd(hb); status != nil {
					w.queue(msg)
					return status
				}
				return msg
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					return VaultWatcherErrMsg{Err: err}
				}
			}
		}
	}
}

// handle registers new folders and returns the card path an event touches,
// or "" when the event does not concern a card.
func (w *VaultWatcher) handle(event fsnotify.Event) string {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.watchTree(event.Name)
			return ""
		}
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return ""
	}

	rel := w.cardPath(event.Name)
	if rel == "" {
		return ""
	}
	w.notify(rel)
	return rel
}

// collect keeps reading events until the vault has been quiet for the
// settle window and returns every card path seen, first included.
func (w *VaultWatcher) collect(first string) []string {
	seen := map[string]struct{}{first: {}}

	w.mu.Lock()
	settle := w.settle
	w.mu.Unlock()

	if settle > 0 {
		timer := time.NewTimer(settle)
		defer timer.Stop()
	loop:
		for {
			select {
			case <-w.done:
				break loop
			case <-timer.C:
				break loop
			case event, ok := <-w.watcher.Events:
				if !ok {
					break loop
				}
				if rel := w.handle(event); rel != "" {
					seen[rel] = struct{}{}
				}
			}
		}
	}

	paths := make([]string, 0, len(seen))
	for rel := range seen {
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	return paths
}

func (w *VaultWatcher) notify(rel string) {
	w.mu.Lock()
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn(rel)
	}
}

func (w *VaultWatcher) heartbeatConfig() (func() tea.Cmd, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.heartbeat, w.interval
}

func runCmd(fn func() tea.Cmd) tea.Msg {
	if fn == nil {
		return nil
	}
	if cmd := fn(); cmd != nil {
		return cmd()
	}
	return nil
}

func (w *VaultWatcher) queue(msg tea.Msg) {
	w.mu.Lock()
	w.queued = msg
	w.mu.Unlock()
}

func (w *VaultWatcher) takeQueued() tea.Msg {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg := w.queued
	w.queued = nil
	return msg
}

func (w *VaultWatcher) Close() error {
	if w == nil {
		return nil
	}

	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()

		w.mu.Lock()
		fn := w.onClose
		w.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
	return err
}

// OnChange registers a callback receiving each changed card path as soon as
// its event arrives, before the batch is reported.
func (w *VaultWatcher) OnChange(fn func(string)) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// OnClose registers a callback run once when the watcher shuts down.
func (w *VaultWatcher) OnClose(fn func()) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.onClose = fn
	w.mu.Unlock()
}

// SetSettle changes the batching window. Zero reports every event alone.
func (w *VaultWatcher) SetSettle(d time.Duration) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.settle = d
	w.mu.Unlock()
}

// SetHeartbeat configures a status command run on every batch and on each
// tick of interval.
func (w *VaultWatcher) SetHeartbeat(fn func() tea.Cmd, interval time.Duration) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.heartbeat = fn
	w.interval = interval
}

func (w *VaultWatcher) watchTree(root string) error {
	root = pathutil.NormalizePath(root)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || w.ignored(path)) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// cardPath returns the vault-relative path of a markdown card file, or ""
// for anything outside the board-visible part of the vault.
func (w *VaultWatcher) cardPath(path string) string {
	if !strings.EqualFold(filepath.Ext(path), ".md") || w.ignored(path) {
		return ""
	}
	rel, err := pathutil.VaultRelative(w.vault, pathutil.NormalizePath(path))
	if err != nil || rel == "." || rel == "" || strings.HasPrefix(rel, "..") {
		return ""
	}
	return rel
}

func (w *VaultWatcher) ignored(path string) bool {
	rel, err := pathutil.VaultRelative(w.vault, pathutil.NormalizePath(path))
	if err != nil {
		return true
	}
	for _, dir := range []string{handler.TrashDir, handler.ArchiveDir} {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}

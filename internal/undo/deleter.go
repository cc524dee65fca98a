// Package undo implements optimistic card deletion with a cancelable undo
// window.
package undo

import (
	"errors"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultDelay is how long a delete stays pending before it is committed.
	DefaultDelay = 5 * time.Second
	// DefaultGrace keeps a committed card hidden until the feed catches up.
	DefaultGrace = 300 * time.Millisecond
)

// ErrClosed is returned by Request after Close.
var ErrClosed = errors.New("deleter closed")

// Timer is the subset of *time.Timer the deleter needs.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// EventKind describes a transition of the deleter.
type EventKind int

const (
	// Hidden: a card entered the pending state and should disappear.
	Hidden EventKind = iota
	// Restored: a pending card was un-hidden without being deleted.
	Restored
	// Committed: the store delete succeeded.
	Committed
	// Failed: the store delete failed and the card is visible again.
	Failed
	// Released: a committed card left the hidden set after the grace delay.
	Released
)

func (k EventKind) String() string {
	switch k {
	case Hidden:
		return "hidden"
	case Restored:
		return "restored"
	case Committed:
		return "committed"
	case Failed:
		return "failed"
	case Released:
		return "released"
	}
	return "unknown"
}

// Event is delivered to the notify callback after every transition.
type Event struct {
	Kind   EventKind
	CardID string
	Err    error
}

// DeleteFunc removes a card from the store.
type DeleteFunc func(cardID string) error

type pending struct {
	cardID string
	timer  Timer
	gen    uint64
}

// Deleter holds at most one pending delete. Cards are hidden immediately and
// deleted once the delay elapses unless Undo is called first.
type Deleter struct {
	mu      sync.Mutex
	del     DeleteFunc
	clock   Clock
	delay   time.Duration
	grace   time.Duration
	confirm bool
	logger  log.FieldLogger
	notify  func(Event)

	hidden  map[string]struct{}
	pending *pending
	gen     uint64
	closed  bool
}

// Option configures a Deleter.
type Option func(*Deleter)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(d *Deleter) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithDelay sets the undo window.
func WithDelay(delay time.Duration) Option {
	return func(d *Deleter) {
		if delay > 0 {
			d.delay = delay
		}
	}
}

// WithGrace sets how long a committed card stays hidden.
func WithGrace(grace time.Duration) Option {
	return func(d *Deleter) {
		if grace >= 0 {
			d.grace = grace
		}
	}
}

// WithConfirm toggles the undo window. When false every request commits
// immediately.
func WithConfirm(confirm bool) Option {
	return func(d *Deleter) {
		d.confirm = confirm
	}
}

// WithLogger sets the logger.
func WithLogger(l log.FieldLogger) Option {
	return func(d *Deleter) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithNotify registers the transition callback. It runs without the
// deleter's lock held and may be invoked from a timer goroutine.
func WithNotify(fn func(Event)) Option {
	return func(d *Deleter) {
		d.notify = fn
	}
}

// New constructs a Deleter that removes cards through del.
func New(del DeleteFunc, opts ...Option) *Deleter {
	d := &Deleter{
		del:     del,
		clock:   realClock{},
		delay:   DefaultDelay,
		grace:   DefaultGrace,
		confirm: true,
		logger:  log.StandardLogger(),
		hidden:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Request starts deleting cardID. A delete already pending for another card is
// cancelled and that card restored first. Without confirmation the delete is
// committed before Request returns and its error is returned.
func (d *Deleter) Request(cardID string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}

	var events []Event
	if prev := d.pending; prev != nil {
		if prev.cardID == cardID {
			d.mu.Unlock()
			return nil
		}
		prev.timer.Stop()
		delete(d.hidden, prev.cardID)
		d.pending = nil
		events = append(events, Event{Kind: Restored, CardID: prev.cardID})
	}

	if !d.confirm {
		d.mu.Unlock()
		d.emit(events...)
		return d.commit(cardID)
	}

	d.gen++
	gen := d.gen
	d.hidden[cardID] = struct{}{}
	d.pending = &pending{
		cardID: cardID,
		gen:    gen,
		timer:  d.clock.AfterFunc(d.delay, func() { d.fire(gen) }),
	}
	d.mu.Unlock()

	d.logger.WithField("card", cardID).Debug("delete pending")
	events = append(events, Event{Kind: Hidden, CardID: cardID})
	d.emit(events...)
	return nil
}

// Undo cancels the pending delete and returns the restored card id.
func (d *Deleter) Undo() (string, bool) {
	d.mu.Lock()
	p := d.pending
	if p == nil {
		d.mu.Unlock()
		return "", false
	}
	p.timer.Stop()
	delete(d.hidden, p.cardID)
	d.pending = nil
	d.mu.Unlock()

	d.logger.WithField("card", p.cardID).Debug("delete undone")
	d.emit(Event{Kind: Restored, CardID: p.cardID})
	return p.cardID, true
}

// Flush commits the pending delete now, if any.
func (d *Deleter) Flush() error {
	d.mu.Lock()
	p := d.pending
	if p == nil {
		d.mu.Unlock()
		return nil
	}
	p.timer.Stop()
	d.pending = nil
	d.mu.Unlock()

	return d.commit(p.cardID)
}

// Close flushes the pending delete and rejects further requests.
func (d *Deleter) Close() error {
	err := d.Flush()
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return err
}

// IsHidden reports whether cardID should be left out of the rendered board.
func (d *Deleter) IsHidden(cardID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.hidden[cardID]
	return ok
}

// HiddenIDs returns the hidden card ids in sorted order.
func (d *Deleter) HiddenIDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.hidden))
	for id := range d.hidden {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Pending returns the card awaiting deletion.
func (d *Deleter) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return "", false
	}
	return d.pending.cardID, true
}

// SetConfirm toggles the undo window for later requests.
func (d *Deleter) SetConfirm(confirm bool) {
	d.mu.Lock()
	d.confirm = confirm
	d.mu.Unlock()
}

// Delay is the configured undo window.
func (d *Deleter) Delay() time.Duration {
	return d.delay
}

func (d *Deleter) fire(gen uint64) {
	d.mu.Lock()
	p := d.pending
	if p == nil || p.gen != gen {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.mu.Unlock()

	_ = d.commit(p.cardID)
}

func (d *Deleter) commit(cardID string) error {
	entry := d.logger.WithField("card", cardID)

	if err := d.del(cardID); err != nil {
		d.mu.Lock()
		delete(d.hidden, cardID)
		d.mu.Unlock()
		entry.WithError(err).Error("delete failed")
		d.emit(Event{Kind: Failed, CardID: cardID, Err: err})
		return err
	}

	entry.Debug("delete committed")
	d.mu.Lock()
	d.hidden[cardID] = struct{}{}
	d.mu.Unlock()
	d.emit(Event{Kind: Committed, CardID: cardID})

	d.clock.AfterFunc(d.grace, func() { d.release(cardID) })
	return nil
}

func (d *Deleter) release(cardID string) {
	d.mu.Lock()
	if d.pending != nil && d.pending.cardID == cardID {
		d.mu.Unlock()
		return
	}
	_, ok := d.hidden[cardID]
	delete(d.hidden, cardID)
	d.mu.Unlock()

	if ok {
		d.emit(Event{Kind: Released, CardID: cardID})
	}
}

func (d *Deleter) emit(events ...Event) {
	if d.notify == nil {
		return
	}
	for _, ev := range events {
		d.notify(ev)
	}
}

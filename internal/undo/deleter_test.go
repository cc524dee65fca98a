package undo

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeTimer struct {
	clock   *fakeClock
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every active timer scheduled so far, in order.
func (c *fakeClock) fireAll() {
	c.mu.Lock()
	timers := append([]*fakeTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range timers {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.f()
	}
}

type recorder struct {
	mu      sync.Mutex
	deleted []string
	err     error
	events  []Event
}

func (r *recorder) delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *recorder) notify(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func newDeleter(r *recorder, c *fakeClock, opts ...Option) *Deleter {
	base := []Option{WithClock(c), WithNotify(r.notify)}
	return New(r.delete, append(base, opts...)...)
}

func TestRequestHidesAndUndoRestores(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	c := &fakeClock{}
	d := newDeleter(r, c)

	if err := d.Request("card1.md"); err != nil {
		t.Fatalf("Request returned error: %v", err)
	}
	if !d.IsHidden("card1.md") {
		t.Fatalf("expected card to be hidden immediately")
	}
	if c.timers[0].d != DefaultDelay {
		t.Fatalf("expected %s timer, got %s", DefaultDelay, c.timers[0].d)
	}

	id, ok := d.Undo()
	if !ok || id != "card1.md" {
		t.Fatalf("Undo returned %q, %v", id, ok)
	}
	if d.IsHidden("card1.md") {
		t.Fatalf("expected card to be visible after undo")
	}

	c.fireAll()
	if len(r.deleted) != 0 {
		t.Fatalf("expected no store deletes after undo, got %v", r.deleted)
	}
	if _, ok := d.Undo(); ok {
		t.Fatalf("expected nothing left to undo")
	}
	if got, want := r.kinds(), []EventKind{Hidden, Restored}; !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestTimerCommitsExactlyOnce(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	c := &fakeClock{}
	d := newDeleter(r, c, WithDelay(time.Second))

	if err := d.Request("card1.md"); err != nil {
		t.Fatalf("Request returned error: %v", err)
	}
	c.fireAll()

	if !reflect.DeepEqual(r.deleted, []string{"card1.md"}) {
		t.Fatalf("expected exactly one delete, got %v", r.deleted)
	}
	if !d.IsHidden("card1.md") {
		t.Fatalf("expected committed card to stay hidden during grace period")
	}
	if _, ok := d.Pending(); ok {
		t.Fatalf("expected no pending delete after commit")
	}

	c.fireAll()
	if d.IsHidden("card1.md") {
		t.Fatalf("expected card to be released after grace period")
	}
	if len(r.deleted) != 1 {
		t.Fatalf("expected a single delete call, got %v", r.deleted)
	}
	if got, want := r.kinds(), []EventKind{Hidden, Committed, Released}; !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestSecondRequestRestoresFirst(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	c := &fakeClock{}
	d := newDeleter(r, c)

	_ = d.Request("a.md")
	_ = d.Request("b.md")

	if d.IsHidden("a.md") {
		t.Fatalf("expected first card to be restored")
	}
	if got := d.HiddenIDs(); !reflect.DeepEqual(got, []string{"b.md"}) {
		t.Fatalf("hidden = %v, want [b.md]", got)
	}
	if id, _ := d.Pending(); id != "b.md" {
		t.Fatalf("pending = %q, want b.md", id)
	}

	c.fireAll()
	if !reflect.DeepEqual(r.deleted, []string{"b.md"}) {
		t.Fatalf("expected only b.md to be deleted, got %v", r.deleted)
	}
}

func TestRepeatedRequestForSameCardKeepsTimer(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	c := &fakeClock{}
	d := newDeleter(r, c)

	_ = d.Request("a.md")
	_ = d.Request("a.md")
	if len(c.timers) != 1 {
		t.Fatalf("expected a single timer, got %d", len(c.timers))
	}
}

func TestFailedCommitRestoresCard(t *testing.T) {
	t.Parallel()

	r := &recorder{err: errors.New("boom")}
	c := &fakeClock{}
	d := newDeleter(r, c)

	_ = d.Request("a.md")
	c.fireAll()

	if d.IsHidden("a.md") {
		t.Fatalf("expected card to be visible after failed delete")
	}
	r.mu.Lock()
	last := r.events[len(r.events)-1]
	r.mu.Unlock()
	if last.Kind != Failed || last.Err == nil {
		t.Fatalf("expected failure event, got %+v", last)
	}
}

func TestWithoutConfirmCommitsImmediately(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	c := &fakeClock{}
	d := newDeleter(r, c, WithConfirm(false))

	if err := d.Request("a.md"); err != nil {
		t.Fatalf("Request returned error: %v", err)
	}
	if !reflect.DeepEqual(r.deleted, []string{"a.md"}) {
		t.Fatalf("expected immediate delete, got %v", r.deleted)
	}
	if _, ok := d.Undo(); ok {
		t.Fatalf("expected nothing to undo")
	}

	r.err = errors.New("gone")
	if err := d.Request("b.md"); err == nil {
		t.Fatalf("expected store error to surface")
	}
}

func TestCloseFlushesPending(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	c := &fakeClock{}
	d := newDeleter(r, c)

	_ = d.Request("a.md")
	if err := d.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !reflect.DeepEqual(r.deleted, []string{"a.md"}) {
		t.Fatalf("expected pending delete to be flushed, got %v", r.deleted)
	}

	c.timers[0].f()
	if len(r.deleted) != 1 {
		t.Fatalf("stale timer caused a second delete: %v", r.deleted)
	}
	if err := d.Request("b.md"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

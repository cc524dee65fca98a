// Package board is the controller between the feed, the card mutations and a
// board view. It owns the only authoritative board value, turns view intents
// into vault writes and rebuilds from the feed whenever the vault changes.
package board

import (
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	model "github.com/Paintersrp/an-kanban/internal/board"
	"github.com/Paintersrp/an-kanban/internal/cards"
	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/internal/undo"
)

// ErrClosed signals that the controller has been torn down.
var ErrClosed = errors.New("board controller closed")

// ErrDragDisabled is returned for moves on a board with dragging turned off.
var ErrDragDisabled = errors.New("moving cards is disabled for this board")

// Source supplies entries and change notifications. *feed.Feed satisfies it.
type Source interface {
	Entries() ([]model.Entry, error)
	OnChange(fn func(string)) func()
}

// Mutator writes cards. *cards.Manager satisfies it.
type Mutator interface {
	CreateCard(p cards.CreateParams) (string, error)
	RenameCard(id, newTitle string) (string, error)
	DeleteCard(id string) error
	SetProperty(id, name string, value any) error
}

// OrderStore persists column order. *config.Config satisfies it.
type OrderStore interface {
	SetColumnOrder(board string, order []string) error
}

// Service is the board controller.
type Service struct {
	mu       sync.Mutex
	source   Source
	cards    Mutator
	store    OrderStore
	settings config.Effective
	logger   log.FieldLogger
	deleter  *undo.Deleter
	colors   model.ColorFunc

	entries  []model.Entry
	current  model.Board
	stale    bool
	newCard  string
	newPos   model.InsertPosition
	inflight map[string]string

	cancel func()
	closed bool
}

// Option configures a Service.
type Option func(*options)

type options struct {
	logger  log.FieldLogger
	colors  model.ColorFunc
	undo    []undo.Option
	onEvent func(undo.Event)
}

// WithLogger sets the logger.
func WithLogger(l log.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithColors replaces the column palette.
func WithColors(fn model.ColorFunc) Option {
	return func(o *options) { o.colors = fn }
}

// WithUndoOptions passes options through to the delete/undo machine.
func WithUndoOptions(opts ...undo.Option) Option {
	return func(o *options) { o.undo = append(o.undo, opts...) }
}

// WithDeleteEvents registers a callback for delete transitions. It may run
// on a timer goroutine.
func WithDeleteEvents(fn func(undo.Event)) Option {
	return func(o *options) { o.onEvent = fn }
}

// New wires a controller for one board.
func New(source Source, mutator Mutator, store OrderStore, settings config.Effective, opts ...Option) *Service {
	o := options{colors: model.Light}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.StandardLogger()
	}
	logger := o.logger.WithField("board", settings.Board)

	s := &Service{
		source:   source,
		cards:    mutator,
		store:    store,
		settings: settings,
		logger:   logger,
		colors:   o.colors,
		stale:    true,
		inflight: make(map[string]string),
	}

	undoOpts := []undo.Option{
		undo.WithConfirm(settings.ConfirmDelete),
		undo.WithDelay(settings.UndoDelay),
		undo.WithLogger(logger),
		undo.WithNotify(func(ev undo.Event) {
			if ev.Kind == undo.Committed {
				s.markStale()
			}
			if o.onEvent != nil {
				o.onEvent(ev)
			}
		}),
	}
	s.deleter = undo.New(mutator.DeleteCard, append(undoOpts, o.undo...)...)

	if source != nil {
		s.cancel = source.OnChange(func(string) { s.markStale() })
	}
	return s
}

// Settings returns the resolved board settings in use.
func (s *Service) Settings() config.Effective {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Board returns the current board, rebuilding from the feed first when the
// vault changed since the last build.
func (s *Service) Board() (model.Board, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.Board{}, ErrClosed
	}
	if !s.stale {
		defer s.mu.Unlock()
		return s.current, nil
	}
	s.mu.Unlock()
	return s.Refresh()
}

// Refresh pulls a fresh snapshot from the feed and rebuilds.
func (s *Service) Refresh() (model.Board, error) {
	entries, err := s.source.Entries()
	if err != nil {
		return model.Board{}, fmt.Errorf("load board entries: %w", err)
	}
	return s.ReceiveSnapshot(entries), nil
}

// ReceiveSnapshot rebuilds the board wholesale from entries. Any optimistic
// state from earlier moves is discarded, including the record of moves
// written but not yet seen, so a later move is always written again.
func (s *Service) ReceiveSnapshot(entries []model.Entry) model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = entries
	s.stale = false
	s.current = s.build()
	clear(s.inflight)
	return s.current
}

// SettingsChanged applies new board settings and rebuilds from the last
// snapshot.
func (s *Service) SettingsChanged(settings config.Effective) model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	s.deleter.SetConfirm(settings.ConfirmDelete)
	s.current = s.build()
	return s.current
}

// Teardown commits any pending delete and stops listening to the feed.
func (s *Service) Teardown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := s.deleter.Close(); err != nil && !errors.Is(err, undo.ErrClosed) {
		return err
	}
	return nil
}

// Dispatch applies one view intent.
func (s *Service) Dispatch(intent model.Intent) error {
	if s.isClosed() {
		return ErrClosed
	}

	switch in := intent.(type) {
	case model.MoveIntent:
		return s.Move(in.CardID, in.To)
	case model.DeleteIntent:
		return s.deleter.Request(in.CardID)
	case model.CreateIntent:
		_, err := s.Create(in)
		return err
	case model.RenameIntent:
		_, err := s.Rename(in.CardID, in.Title)
		return err
	case model.PropertyIntent:
		return s.SetProperty(in.CardID, in.Name, in.Value)
	case model.ReorderIntent:
		return s.Reorder(in.Order)
	default:
		return fmt.Errorf("unsupported intent %T", intent)
	}
}

// Move moves a card to another column optimistically and writes the grouping
// property once.
func (s *Service) Move(cardID, to string) error {
	s.mu.Lock()
	if !s.settings.Draggable {
		s.mu.Unlock()
		return ErrDragDisabled
	}
	prev := s.current
	next, err := model.MoveCard(prev, cardID, to)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Apply(next)
}

// Apply reconciles next against the current board, writes one grouping
// property per moved card and adopts next as the optimistic board. A failed
// write marks the board stale so the next Board call restores the truth.
func (s *Service) Apply(next model.Board) error {
	s.mu.Lock()
	prev := s.current
	groupBy := s.settings.GroupBy
	moves := model.Reconcile(prev, next)

	var pending []model.MoveIntent
	for _, mv := range moves {
		if s.inflight[mv.CardID] == mv.To {
			continue
		}
		s.inflight[mv.CardID] = mv.To
		pending = append(pending, mv)
	}
	s.current = next
	s.mu.Unlock()

	var errs []error
	for _, mv := range pending {
		value := columnValue(prev, next, mv.To)
		if err := s.cards.SetProperty(mv.CardID, groupBy, value); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"card": mv.CardID, "from": mv.From, "to": mv.To,
			}).Error("move card")

			s.mu.Lock()
			delete(s.inflight, mv.CardID)
			s.stale = true
			s.mu.Unlock()
			errs = append(errs, err)
			continue
		}
		s.logger.WithFields(log.Fields{"card": mv.CardID, "from": mv.From, "to": mv.To}).Debug("card moved")
	}
	return errors.Join(errs...)
}

// Create writes a new card into a column and marks it so the next build
// flags it as new.
func (s *Service) Create(in model.CreateIntent) (string, error) {
	s.mu.Lock()
	settings := s.settings
	col, _ := s.current.Column(in.ColumnID)
	s.mu.Unlock()

	p := cards.CreateParams{
		Title:  in.Title,
		Extra:  in.Extra,
		Folder: newCardFolder(settings),
	}
	if in.ColumnID != model.Uncategorized {
		p.GroupBy = settings.GroupBy
		p.GroupValue = in.ColumnID
		if col != nil && col.Value != nil {
			p.GroupValue = col.Value
		}
	}

	id, err := s.cards.CreateCard(p)
	if err != nil {
		return "", err
	}

	pos := in.Position
	if pos == model.InsertNone {
		pos = model.InsertBottom
	}

	s.mu.Lock()
	s.newCard = id
	s.newPos = pos
	s.stale = true
	s.mu.Unlock()
	return id, nil
}

// NewCard reports the card created through Create that the view has not
// finished with yet.
func (s *Service) NewCard() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newCard, s.newCard != ""
}

// ClearNewCard ends the creation flow of the marked card.
func (s *Service) ClearNewCard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newCard = ""
	s.newPos = model.InsertNone
}

// Rename renames a card and returns its new id.
func (s *Service) Rename(cardID, title string) (string, error) {
	id, err := s.cards.RenameCard(cardID, title)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.newCard == cardID {
		s.newCard = id
	}
	s.stale = true
	s.mu.Unlock()
	return id, nil
}

// SetProperty writes one property of a card.
func (s *Service) SetProperty(cardID, name string, value any) error {
	if err := s.cards.SetProperty(cardID, name, value); err != nil {
		return err
	}
	s.markStale()
	return nil
}

// Reorder persists a column order and rebuilds with it.
func (s *Service) Reorder(order []string) error {
	s.mu.Lock()
	board := s.settings.Board
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SetColumnOrder(board, order); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.ColumnOrder = append([]string(nil), order...)
	s.current = s.build()
	return nil
}

// MoveColumn shifts a column by delta positions and persists the result.
func (s *Service) MoveColumn(columnID string, delta int) error {
	s.mu.Lock()
	order := model.MoveColumn(s.current.ColumnOrder, columnID, delta)
	s.mu.Unlock()
	return s.Reorder(order)
}

// Delete starts deleting a card through the undo window.
func (s *Service) Delete(cardID string) error {
	return s.deleter.Request(cardID)
}

// Undo cancels the pending delete.
func (s *Service) Undo() (string, bool) {
	return s.deleter.Undo()
}

// Hidden reports whether a card is hidden by a pending or just committed
// delete.
func (s *Service) Hidden(cardID string) bool {
	return s.deleter.IsHidden(cardID)
}

// PendingDelete reports the card waiting out the undo window.
func (s *Service) PendingDelete() (string, bool) {
	return s.deleter.Pending()
}

// Visible returns b without hidden cards. Counts follow the cards shown.
func (s *Service) Visible(b model.Board) model.Board {
	hidden := s.deleter.HiddenIDs()
	if len(hidden) == 0 {
		return b
	}
	skip := make(map[string]struct{}, len(hidden))
	for _, id := range hidden {
		skip[id] = struct{}{}
	}

	out := b
	out.Columns = make([]model.Column, len(b.Columns))
	for i, col := range b.Columns {
		c := col
		c.Cards = make([]model.Card, 0, len(col.Cards))
		for _, card := range col.Cards {
			if _, ok := skip[card.ID]; !ok {
				c.Cards = append(c.Cards, card)
			}
		}
		c.Count = len(c.Cards)
		out.Columns[i] = c
	}
	return out
}

func (s *Service) build() model.Board {
	return model.Build(s.entries, s.settings.GroupBy, model.Options{
		SavedOrder:      s.settings.ColumnOrder,
		ShowColors:      s.settings.ShowColors,
		ColorFunc:       s.colors,
		NewCardID:       s.newCard,
		NewCardPosition: s.newPos,
	})
}

func (s *Service) markStale() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

func (s *Service) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// columnValue is the grouping value a card moved into column to receives.
// Existing columns keep their raw value so numbers stay numbers; the
// uncategorized column removes the property.
func columnValue(prev, next model.Board, to string) any {
	if to == model.Uncategorized {
		return nil
	}
	for _, b := range []model.Board{prev, next} {
		if col, _ := b.Column(to); col != nil && col.Value != nil {
			return col.Value
		}
	}
	return to
}

// newCardFolder picks where new cards are written: the configured folder,
// else the board's own folder.
func newCardFolder(settings config.Effective) string {
	if settings.NewFileFolder != "" {
		return settings.NewFileFolder
	}
	return settings.Folder
}

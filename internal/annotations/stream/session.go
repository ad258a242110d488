package stream

import (
	"context"
	"errors"
	"log"

	"github.com/Barap1/UniExplorer/internal/annotations/domain"
	"github.com/Barap1/UniExplorer/internal/bodies"
)

// Subscription is a live query over the annotation store. Next blocks until
// the next snapshot notification: the full result set, delivered once
// initially and again on every change.
type Subscription interface {
	Next() ([]domain.Annotation, error)
	Stop()
}

// Watcher opens subscriptions for a (body, userID) pair.
type Watcher interface {
	Watch(ctx context.Context, body, userID string) Subscription
}

// WatcherFunc adapts a function to the Watcher interface.
type WatcherFunc func(ctx context.Context, body, userID string) Subscription

func (f WatcherFunc) Watch(ctx context.Context, body, userID string) Subscription {
	return f(ctx, body, userID)
}

// Event types pushed to the viewer.
const (
	EventCleared  = "cleared"
	EventAdded    = "added"
	EventRemoved  = "removed"
	EventSnapshot = "snapshot"
	EventError    = "error"
)

// Event is one outbound message of a live session.
type Event struct {
	Type        string             `json:"type"`
	Body        string             `json:"body,omitempty"`
	Mine        bool               `json:"mine,omitempty"`
	Annotation  *domain.Annotation `json:"annotation,omitempty"`
	ID          string             `json:"id,omitempty"`
	Annotations []domain.Annotation `json:"annotations,omitempty"`
	Count       int                `json:"count,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// subscribeRequest switches a session to a new (body, mine) pair.
type subscribeRequest struct {
	Body string
	Mine bool
}

// snapshotMsg tags a snapshot delivery with the subscription generation that
// produced it, so notifications from a torn-down subscription can never
// touch the marker set of its successor.
type snapshotMsg struct {
	gen  uint64
	data []domain.Annotation
	err  error
}

// Session keeps one viewer's marker set consistent with the live query for
// its current (body, filter) pair. All marker mutation happens on the single
// Run goroutine; the websocket pumps only feed it requests and drain its
// events.
type Session struct {
	watcher  Watcher
	registry *bodies.Registry
	userID   string

	events    chan Event
	subs      chan subscribeRequest
	snapshots chan snapshotMsg
	markers   *MarkerSet

	gen    uint64
	cancel context.CancelFunc
	body   string
	mine   bool
}

func NewSession(watcher Watcher, registry *bodies.Registry, userID string) *Session {
	return &Session{
		watcher:   watcher,
		registry:  registry,
		userID:    userID,
		events:    make(chan Event, 64),
		subs:      make(chan subscribeRequest),
		snapshots: make(chan snapshotMsg, 8),
		markers:   NewMarkerSet(),
	}
}

// Events returns the outbound event stream. It is closed when Run returns.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Subscribe asks the session to switch to a new (body, mine) pair. Blocks
// until the session picks the request up or ctx ends.
func (s *Session) Subscribe(ctx context.Context, body string, mine bool) {
	select {
	case s.subs <- subscribeRequest{Body: body, Mine: mine}:
	case <-ctx.Done():
	}
}

// Run owns the marker set until ctx ends.
func (s *Session) Run(ctx context.Context) {
	defer func() {
		s.teardown()
		close(s.events)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case req := <-s.subs:
			s.resubscribe(ctx, req)

		case msg := <-s.snapshots:
			s.handleSnapshot(ctx, msg)
		}
	}
}

// resubscribe tears the current subscription and marker set down completely
// before installing the new one. No marker survives a body or filter change.
func (s *Session) resubscribe(ctx context.Context, req subscribeRequest) {
	b, err := s.registry.Get(req.Body)
	if err != nil {
		s.emit(ctx, Event{Type: EventError, Error: "unknown celestial body"})
		return
	}

	// The mine-only filter needs a session to filter on.
	mine := req.Mine && s.userID != ""

	s.teardown()
	s.gen++

	removed := s.markers.Clear()
	s.body = b.Key
	s.mine = mine

	userID := ""
	if mine {
		userID = s.userID
	}

	wctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	sub := s.watcher.Watch(wctx, b.Key, userID)
	go s.pump(wctx, sub, s.gen)

	// The viewer sees the old markers drop before anything from the new
	// subscription arrives.
	s.emit(ctx, Event{Type: EventCleared, Body: b.Key, Mine: mine, Count: len(removed)})
}

// pump forwards snapshot notifications from one subscription to the session
// goroutine. It exits on the first delivery error; there is no retry.
func (s *Session) pump(ctx context.Context, sub Subscription, gen uint64) {
	defer sub.Stop()

	for {
		data, err := sub.Next()

		select {
		case s.snapshots <- snapshotMsg{gen: gen, data: data, err: err}:
		case <-ctx.Done():
			return
		}

		if err != nil {
			return
		}
	}
}

func (s *Session) handleSnapshot(ctx context.Context, msg snapshotMsg) {
	// A notification from a torn-down subscription must not touch the
	// current marker set.
	if msg.gen != s.gen {
		return
	}

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return
		}
		// Markers stay at their last-known-good state.
		log.Printf("[stream] subscription for body %s failed: %v", s.body, msg.err)
		return
	}

	diff := s.markers.Apply(msg.data)

	for _, a := range diff.Added {
		marker := a
		s.emit(ctx, Event{Type: EventAdded, Annotation: &marker})
	}
	for _, id := range diff.Removed {
		s.emit(ctx, Event{Type: EventRemoved, ID: id})
	}

	s.emit(ctx, Event{
		Type:        EventSnapshot,
		Body:        s.body,
		Mine:        s.mine,
		Annotations: s.markers.All(),
		Count:       s.markers.Count(),
	})
}

func (s *Session) teardown() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) emit(ctx context.Context, e Event) {
	select {
	case s.events <- e:
	case <-ctx.Done():
	}
}

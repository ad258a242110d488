package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Barap1/UniExplorer/internal/annotations/domain"
	"github.com/Barap1/UniExplorer/internal/bodies"
)

type snapshotResult struct {
	data []domain.Annotation
	err  error
}

type fakeSubscription struct {
	ch chan snapshotResult
}

func (f *fakeSubscription) Next() ([]domain.Annotation, error) {
	res, ok := <-f.ch
	if !ok {
		return nil, context.Canceled
	}
	return res.data, res.err
}

func (f *fakeSubscription) Stop() {}

type watchCall struct {
	body   string
	userID string
	sub    *fakeSubscription
}

type fakeWatcher struct {
	mu    sync.Mutex
	calls []watchCall
}

func (w *fakeWatcher) Watch(_ context.Context, body, userID string) Subscription {
	sub := &fakeSubscription{ch: make(chan snapshotResult, 8)}
	w.mu.Lock()
	w.calls = append(w.calls, watchCall{body: body, userID: userID, sub: sub})
	w.mu.Unlock()
	return sub
}

func (w *fakeWatcher) last(t *testing.T) watchCall {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	require.NotEmpty(t, w.calls)
	return w.calls[len(w.calls)-1]
}

func startSession(t *testing.T, userID string) (*Session, *fakeWatcher) {
	t.Helper()

	watcher := &fakeWatcher{}
	session := NewSession(watcher, bodies.NewRegistry(), userID)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go session.Run(ctx)

	return session, watcher
}

func nextEvent(t *testing.T, s *Session) Event {
	t.Helper()
	select {
	case e, ok := <-s.Events():
		require.True(t, ok, "event stream closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

// readThroughSnapshot reads events until the next snapshot event and returns
// everything read, snapshot included.
func readThroughSnapshot(t *testing.T, s *Session) []Event {
	t.Helper()
	var events []Event
	for {
		e := nextEvent(t, s)
		events = append(events, e)
		if e.Type == EventSnapshot {
			return events
		}
		if len(events) > 50 {
			t.Fatal("no snapshot event after 50 events")
		}
	}
}

func TestSessionInitialSnapshot(t *testing.T) {
	session, watcher := startSession(t, "")
	session.Subscribe(context.Background(), "mars", false)

	cleared := nextEvent(t, session)
	assert.Equal(t, EventCleared, cleared.Type)
	assert.Equal(t, "mars", cleared.Body)
	assert.Equal(t, 0, cleared.Count)

	call := watcher.last(t)
	assert.Equal(t, "mars", call.body)
	assert.Equal(t, "", call.userID)

	call.sub.ch <- snapshotResult{data: []domain.Annotation{ann("a1"), ann("a2"), ann("b1")}}

	events := readThroughSnapshot(t, session)
	require.Len(t, events, 4)
	for _, e := range events[:3] {
		assert.Equal(t, EventAdded, e.Type)
	}

	snap := events[3]
	assert.Equal(t, 3, snap.Count)
	assert.Len(t, snap.Annotations, 3)
}

func TestSessionKeyedReconciliation(t *testing.T) {
	session, watcher := startSession(t, "")
	session.Subscribe(context.Background(), "mars", false)
	nextEvent(t, session) // cleared

	sub := watcher.last(t).sub
	sub.ch <- snapshotResult{data: []domain.Annotation{ann("a"), ann("b"), ann("c")}}
	readThroughSnapshot(t, session)

	// One document gone, one new one.
	sub.ch <- snapshotResult{data: []domain.Annotation{ann("a"), ann("c"), ann("d")}}
	events := readThroughSnapshot(t, session)
	require.Len(t, events, 3)

	assert.Equal(t, EventAdded, events[0].Type)
	assert.Equal(t, "d", events[0].Annotation.ID)
	assert.Equal(t, EventRemoved, events[1].Type)
	assert.Equal(t, "b", events[1].ID)
	assert.Equal(t, 3, events[2].Count)
}

func TestSessionBodySwitchLeaksNothing(t *testing.T) {
	session, watcher := startSession(t, "")
	session.Subscribe(context.Background(), "mars", false)
	nextEvent(t, session) // cleared

	marsSub := watcher.last(t).sub
	marsSnapshot := []domain.Annotation{ann("m1"), ann("m2"), ann("m3")}
	marsSub.ch <- snapshotResult{data: marsSnapshot}
	events := readThroughSnapshot(t, session)
	assert.Equal(t, 3, events[len(events)-1].Count)

	session.Subscribe(context.Background(), "moon", false)

	// Every mars marker is gone before anything from moon appears.
	cleared := nextEvent(t, session)
	assert.Equal(t, EventCleared, cleared.Type)
	assert.Equal(t, "moon", cleared.Body)
	assert.Equal(t, 3, cleared.Count)

	moonSub := watcher.last(t).sub
	require.NotSame(t, marsSub, moonSub)

	// A late delivery from the torn-down mars subscription must be ignored.
	marsSub.ch <- snapshotResult{data: []domain.Annotation{ann("stale")}}

	moon1 := domain.Annotation{ID: "c1", Body: "moon"}
	moon2 := domain.Annotation{ID: "c2", Body: "moon"}
	moonSub.ch <- snapshotResult{data: []domain.Annotation{moon1, moon2}}

	events = readThroughSnapshot(t, session)
	snap := events[len(events)-1]
	assert.Equal(t, 2, snap.Count)
	for _, a := range snap.Annotations {
		assert.Equal(t, "moon", a.Body, "no marker may leak across a body switch")
	}
}

func TestSessionSubscriptionErrorKeepsLastGoodState(t *testing.T) {
	session, watcher := startSession(t, "")
	session.Subscribe(context.Background(), "mars", false)
	nextEvent(t, session) // cleared

	sub := watcher.last(t).sub
	sub.ch <- snapshotResult{data: []domain.Annotation{ann("a"), ann("b")}}
	readThroughSnapshot(t, session)

	sub.ch <- snapshotResult{err: assert.AnError}

	// The error is logged only. Resubscribing shows the markers were frozen
	// at the last good state rather than dropped.
	session.Subscribe(context.Background(), "moon", false)
	cleared := nextEvent(t, session)
	assert.Equal(t, EventCleared, cleared.Type)
	assert.Equal(t, 2, cleared.Count)
}

func TestSessionMineFilter(t *testing.T) {
	t.Run("authenticated session passes its user id", func(t *testing.T) {
		session, watcher := startSession(t, "uid-9")
		session.Subscribe(context.Background(), "mars", true)
		cleared := nextEvent(t, session)
		assert.True(t, cleared.Mine)
		assert.Equal(t, "uid-9", watcher.last(t).userID)
	})

	t.Run("anonymous session cannot filter to mine", func(t *testing.T) {
		session, watcher := startSession(t, "")
		session.Subscribe(context.Background(), "mars", true)
		cleared := nextEvent(t, session)
		assert.False(t, cleared.Mine)
		assert.Equal(t, "", watcher.last(t).userID)
	})
}

func TestSessionUnknownBody(t *testing.T) {
	session, watcher := startSession(t, "")
	session.Subscribe(context.Background(), "pluto", false)

	e := nextEvent(t, session)
	assert.Equal(t, EventError, e.Type)
	assert.NotEmpty(t, e.Error)

	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	assert.Empty(t, watcher.calls, "no subscription is opened for an unknown body")
}

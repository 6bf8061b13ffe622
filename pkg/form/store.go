package form

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithSanitizer applies fn to free-text values (UpdateField values and
// document file names) before they reach the reducer.
func WithSanitizer(fn func(string) string) StoreOption {
	return func(s *Store) {
		s.sanitize = fn
	}
}

// WithLogger routes dispatch logs to logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInitialState seeds the store with state instead of InitialState. The
// value is cloned; a state without documents gets the default placeholder.
func WithInitialState(state State) StoreOption {
	return func(s *Store) {
		seeded := state.Clone()
		if len(seeded.Documents) == 0 {
			seeded.Documents = initialDocuments()
		}
		s.state = seeded
	}
}

// Store owns the canonical State. Dispatch is the only way to change it;
// readers receive independent snapshots.
type Store struct {
	mu        sync.RWMutex
	state     State
	sanitize  func(string) string
	logger    *slog.Logger
	version   uint64
	listeners map[int]func(State)
	nextID    int
}

// NewStore returns a Store holding InitialState.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		state:     InitialState(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Dispatch applies action. On error the state is left untouched and the error
// wraps one of the package sentinels.
func (s *Store) Dispatch(action Action) error {
	return s.DispatchContext(context.Background(), action)
}

// DispatchContext is Dispatch with a context for log correlation.
func (s *Store) DispatchContext(ctx context.Context, action Action) error {
	action = s.sanitizeAction(action)

	s.mu.Lock()
	next, err := Reduce(s.state, action)
	if err != nil {
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "form action rejected", "action", actionName(action), "error", err)
		return err
	}
	s.state = next
	s.version++
	listeners := s.listenersLocked()
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "form action applied", "action", actionName(action), "documents", len(next.Documents))
	notify(listeners, next)
	return nil
}

// DispatchAtVersion applies actions as one step, but only while the store is
// still at version. It reports false, leaving the state alone, when another
// action was applied in between. A failing action discards the whole batch.
func (s *Store) DispatchAtVersion(ctx context.Context, version uint64, actions ...Action) (bool, error) {
	batch := make([]Action, len(actions))
	for i, action := range actions {
		batch[i] = s.sanitizeAction(action)
	}

	s.mu.Lock()
	if s.version != version {
		s.mu.Unlock()
		return false, nil
	}
	next := s.state
	for _, action := range batch {
		var err error
		next, err = Reduce(next, action)
		if err != nil {
			s.mu.Unlock()
			s.logger.WarnContext(ctx, "form action rejected", "action", actionName(action), "error", err)
			return false, err
		}
	}
	s.state = next
	s.version++
	listeners := s.listenersLocked()
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "form actions applied", "count", len(batch), "documents", len(next.Documents))
	notify(listeners, next)
	return true, nil
}

// Version is the store's revision. It advances on every successful Dispatch
// and once per applied DispatchAtVersion batch.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// SnapshotVersion returns a copy of the current state together with the
// version it was taken at.
func (s *Store) SnapshotVersion() (State, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone(), s.version
}

func (s *Store) listenersLocked() []func(State) {
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	return listeners
}

func notify(listeners []func(State), state State) {
	for _, fn := range listeners {
		fn(state.Clone())
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers fn to receive a snapshot after every applied action.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) sanitizeAction(action Action) Action {
	if s.sanitize == nil {
		return action
	}
	switch act := action.(type) {
	case UpdateField:
		act.Value = s.sanitize(act.Value)
		return act
	case UpdateDocument:
		if name, ok := act.Value.(string); ok && act.Field == FieldFileName {
			act.Value = s.sanitize(name)
		}
		return act
	default:
		return action
	}
}

func actionName(action Action) string {
	if action == nil {
		return "<nil>"
	}
	return string(action.Type())
}

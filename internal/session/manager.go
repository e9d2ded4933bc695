package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/editstate/internal/logging"
)

// closeParallelism bounds concurrent persists in CloseAll.
const closeParallelism = 4

// Manager owns the open sessions of a workspace.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*Session
	closing   map[uuid.UUID]chan struct{}
	persister Persister
	opts      []Option
	quiet     time.Duration
	logger    *logging.Logger

	onDirty     []func(id uuid.UUID, dirty bool)
	onPersisted []func(id uuid.UUID, revision uint64)
	onError     []func(err *PersistError)
}

// NewManager creates a session manager. opts apply to every session it
// opens.
func NewManager(p Persister, opts ...Option) *Manager {
	base := &Session{}
	for _, opt := range opts {
		opt(base)
	}
	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		closing:   make(map[uuid.UUID]chan struct{}),
		persister: p,
		opts:      opts,
		logger:    logging.Or(base.logger).WithComponent("sessions"),
	}
}

// Open returns the session for path, creating it if needed. If the
// session is being closed, Open waits for the close to finish and returns a
// new session.
func (m *Manager) Open(path string) *Session {
	id := IDFor(path)

	m.mu.Lock()
	for {
		done, ok := m.closing[id]
		if !ok {
			break
		}
		m.mu.Unlock()
		<-done
		m.mu.Lock()
	}
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}

	opts := m.opts
	if m.quiet > 0 {
		opts = append(append([]Option(nil), opts...), WithQuietPeriod(m.quiet))
	}
	s := New(path, m.persister, opts...)
	for _, h := range m.onDirty {
		s.OnDirty(h)
	}
	for _, h := range m.onPersisted {
		s.OnPersisted(h)
	}
	for _, h := range m.onError {
		s.OnPersistError(h)
	}
	m.sessions[id] = s
	m.logger.Debug("opened %s (%s)", path, id)
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) lookup(id uuid.UUID) (*Session, error) {
	s, ok := m.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// ContentMutated records a mutation of the session with the given id.
func (m *Manager) ContentMutated(id uuid.UUID) (uint64, error) {
	s, err := m.lookup(id)
	if err != nil {
		return 0, err
	}
	return s.ContentMutated()
}

// Flush persists the session immediately if it is dirty.
func (m *Manager) Flush(ctx context.Context, id uuid.UUID) error {
	s, err := m.lookup(id)
	if err != nil {
		return err
	}
	return s.Flush(ctx)
}

// Close closes the session and removes it from the manager. The session
// stays registered until its final persist returns.
func (m *Manager) Close(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if _, busy := m.closing[id]; busy {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrClosed, id)
	}
	m.closing[id] = make(chan struct{})
	m.mu.Unlock()

	err := s.Close(ctx)
	m.finishClose(id)
	return err
}

// finishClose unregisters a closed session and releases waiting Opens.
func (m *Manager) finishClose(id uuid.UUID) {
	m.mu.Lock()
	done := m.closing[id]
	delete(m.closing, id)
	delete(m.sessions, id)
	m.mu.Unlock()
	if done != nil {
		close(done)
	}
}

// CloseAll closes every session, flushing dirty ones in parallel. All
// sessions are closed even when some final persists fail; the failures are
// joined into the returned error. Sessions already being closed are left to
// their closer.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		if _, busy := m.closing[id]; busy {
			continue
		}
		m.closing[id] = make(chan struct{})
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	var (
		g      errgroup.Group
		errsMu sync.Mutex
		errs   []error
	)
	g.SetLimit(closeParallelism)
	for _, s := range sessions {
		g.Go(func() error {
			err := s.Close(ctx)
			m.finishClose(s.ID())
			if err != nil {
				errsMu.Lock()
				errs = append(errs, err)
				errsMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		m.logger.Warn("%d of %d sessions failed to persist on close", len(errs), len(sessions))
	}
	return errors.Join(errs...)
}

// Sessions returns the open sessions sorted by path.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Path() < out[j].Path() })
	return out
}

// Dirty returns the sessions with unpersisted changes, sorted by path.
func (m *Manager) Dirty() []*Session {
	var out []*Session
	for _, s := range m.Sessions() {
		if s.Dirty() {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SetQuietPeriod changes the quiet period of open and future sessions.
func (m *Manager) SetQuietPeriod(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.quiet = d
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.SetQuietPeriod(d)
	}
}

// OnDirty registers a dirty-state handler on every current and future
// session.
func (m *Manager) OnDirty(handler func(id uuid.UUID, dirty bool)) {
	m.mu.Lock()
	m.onDirty = append(m.onDirty, handler)
	sessions := m.snapshotLocked()
	m.mu.Unlock()
	for _, s := range sessions {
		s.OnDirty(handler)
	}
}

// OnPersisted registers a persisted handler on every current and future
// session.
func (m *Manager) OnPersisted(handler func(id uuid.UUID, revision uint64)) {
	m.mu.Lock()
	m.onPersisted = append(m.onPersisted, handler)
	sessions := m.snapshotLocked()
	m.mu.Unlock()
	for _, s := range sessions {
		s.OnPersisted(handler)
	}
}

// OnPersistError registers an error handler on every current and future
// session.
func (m *Manager) OnPersistError(handler func(err *PersistError)) {
	m.mu.Lock()
	m.onError = append(m.onError, handler)
	sessions := m.snapshotLocked()
	m.mu.Unlock()
	for _, s := range sessions {
		s.OnPersistError(handler)
	}
}

func (m *Manager) snapshotLocked() []*Session {
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

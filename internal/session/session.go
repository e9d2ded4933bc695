// Package session tracks open edit sessions and schedules their
// persistence.
//
// Every content mutation bumps the session's revision and marks it dirty at
// once; persisting is deferred with a trailing-edge debounce. Each session
// runs a small state machine:
//
//	idle ──mutation──> timerArmed ──quiet period──> persisting ──done──> idle
//	                       ^  └─mutation (re-arm)        │
//	                       └──────done, timer armed──────┤
//	                                                     └─timer fires─> persistingWithPendingRearm
//
// A timer that fires while a persist is in flight is deferred until the
// persist completes and is then re-evaluated against the dirty state, so a
// mutation made during a persist is never lost and at most one persist is in
// flight per session.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/dshills/editstate/internal/clock"
	"github.com/dshills/editstate/internal/logging"
)

// Default timings.
const (
	DefaultQuietPeriod    = 250 * time.Millisecond
	DefaultPersistTimeout = 10 * time.Second
)

// State is the debounce state of a session.
type State int

const (
	StateIdle State = iota
	StateTimerArmed
	StatePersisting
	StatePersistingWithPendingRearm
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTimerArmed:
		return "timerArmed"
	case StatePersisting:
		return "persisting"
	case StatePersistingWithPendingRearm:
		return "persistingWithPendingRearm"
	default:
		return "unknown"
	}
}

func (s State) inFlight() bool {
	return s == StatePersisting || s == StatePersistingWithPendingRearm
}

// Request describes one persist attempt.
type Request struct {
	SessionID uuid.UUID
	Path      string
	Revision  uint64
	AttemptID ulid.ULID
}

// Persister saves a session's content. Persisting a session with no
// pending changes must be harmless.
type Persister interface {
	Persist(ctx context.Context, req Request) error
}

// PersistFunc adapts a function to the Persister interface.
type PersistFunc func(ctx context.Context, req Request) error

// Persist calls f.
func (f PersistFunc) Persist(ctx context.Context, req Request) error {
	return f(ctx, req)
}

// Cursor is a caret position. Sessions store it for the widget and never
// interpret it.
type Cursor struct {
	Line   int
	Column int
}

// Session is an open edit session.
type Session struct {
	id        uuid.UUID
	path      string
	persister Persister
	clock     clock.Clock
	spawn     func(func())
	logger    *logging.Logger

	mu      sync.Mutex
	settled *sync.Cond // signalled when a persist completes

	quiet   time.Duration
	timeout time.Duration

	state     State
	timer     clock.Timer
	timerGen  uint64
	revision  uint64
	persisted uint64
	closing   bool
	cursor    Cursor

	onDirty     []func(id uuid.UUID, dirty bool)
	onPersisted []func(id uuid.UUID, revision uint64)
	onError     []func(err *PersistError)
}

// Option configures a Session.
type Option func(*Session)

// WithQuietPeriod sets the debounce quiet period.
func WithQuietPeriod(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.quiet = d
		}
	}
}

// WithPersistTimeout bounds each persist call.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock sets the clock used for debounce timers.
func WithClock(c clock.Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithSpawn sets how debounced persists are started. The default runs each
// on a new goroutine.
func WithSpawn(spawn func(func())) Option {
	return func(s *Session) {
		s.spawn = spawn
	}
}

// WithLogger sets the session's logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// New creates a session for the resource at path.
func New(path string, p Persister, opts ...Option) *Session {
	s := &Session{
		id:        IDFor(path),
		path:      path,
		persister: p,
		quiet:     DefaultQuietPeriod,
		timeout:   DefaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.spawn == nil {
		s.spawn = func(f func()) { go f() }
	}
	s.logger = logging.Or(s.logger).WithComponent("session").WithField("path", path)
	s.settled = sync.NewCond(&s.mu)
	return s
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Path returns the resource path.
func (s *Session) Path() string {
	return s.path
}

// Revision returns the content revision.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// PersistedRevision returns the revision of the last successful persist.
func (s *Session) PersistedRevision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

// Dirty reports whether there are unpersisted changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision != s.persisted
}

// State returns the debounce state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// Cursor returns the stored cursor position.
func (s *Session) Cursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// SetCursor stores the cursor position.
func (s *Session) SetCursor(c Cursor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = c
}

// SetQuietPeriod changes the quiet period used from the next mutation on.
func (s *Session) SetQuietPeriod(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quiet = d
}

// OnDirty registers a handler called on every mutation (dirty=true) and
// when a persist leaves the session clean (dirty=false).
func (s *Session) OnDirty(handler func(id uuid.UUID, dirty bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDirty = append(s.onDirty, handler)
}

// OnPersisted registers a handler called after each successful persist.
func (s *Session) OnPersisted(handler func(id uuid.UUID, revision uint64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPersisted = append(s.onPersisted, handler)
}

// OnPersistError registers a handler called after each failed persist.
func (s *Session) OnPersistError(handler func(err *PersistError)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = append(s.onError, handler)
}

// ContentMutated records a content change and returns the new revision.
// Dirty handlers run before it returns; the persist is debounced.
func (s *Session) ContentMutated() (uint64, error) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	s.revision++
	rev := s.revision
	s.armLocked()
	switch s.state {
	case StateIdle:
		s.state = StateTimerArmed
	case StatePersistingWithPendingRearm:
		// The new quiet period supersedes the deferred firing.
		s.state = StatePersisting
	}
	handlers := make([]func(uuid.UUID, bool), len(s.onDirty))
	copy(handlers, s.onDirty)
	s.mu.Unlock()

	for _, h := range handlers {
		h(s.id, true)
	}
	return rev, nil
}

// Flush persists immediately if the session is dirty, waiting for any
// in-flight persist first.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return ErrClosed
	}
	s.cancelTimerLocked()
	s.mu.Unlock()

	return s.persistNow(ctx)
}

// Close cancels the pending timer and persists synchronously if the session
// is dirty. It blocks until that persist completes. A failed final persist
// is returned and also reported to the error handlers; the session is
// closed either way.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closing = true
	s.cancelTimerLocked()
	s.mu.Unlock()

	err := s.persistNow(ctx)
	s.logger.Debug("closed")
	return err
}

// armLocked (re)starts the debounce timer.
func (s *Session) armLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerGen++
	gen := s.timerGen
	s.timer = s.clock.AfterFunc(s.quiet, func() { s.fire(gen) })
}

func (s *Session) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
	switch s.state {
	case StateTimerArmed:
		s.state = StateIdle
	case StatePersistingWithPendingRearm:
		s.state = StatePersisting
	}
}

// fire handles the end of a quiet period. Callbacks from superseded timers
// are ignored.
func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || s.closing {
		s.mu.Unlock()
		return
	}
	s.timer = nil

	switch s.state {
	case StateTimerArmed:
		if s.revision == s.persisted {
			s.state = StateIdle
			break
		}
		req := s.beginLocked()
		s.mu.Unlock()
		s.spawn(func() { s.run(req) })
		return
	case StatePersisting:
		s.state = StatePersistingWithPendingRearm
	}
	s.mu.Unlock()
}

// beginLocked moves to the persisting state and builds the request.
func (s *Session) beginLocked() Request {
	if s.state.inFlight() {
		panic("session: persist started while another is in flight")
	}
	s.state = StatePersisting
	return Request{
		SessionID: s.id,
		Path:      s.path,
		Revision:  s.revision,
		AttemptID: ulid.MustNew(ulid.Timestamp(s.clock.Now()), ulid.DefaultEntropy()),
	}
}

// run performs a debounced persist.
func (s *Session) run(req Request) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_ = s.finish(req, s.persister.Persist(ctx, req))
}

// persistNow waits for any in-flight persist and then persists
// synchronously if the session is dirty.
func (s *Session) persistNow(ctx context.Context) error {
	s.mu.Lock()
	for s.state.inFlight() {
		s.settled.Wait()
	}
	if s.revision == s.persisted {
		s.mu.Unlock()
		return nil
	}
	req := s.beginLocked()
	timeout := s.timeout
	s.mu.Unlock()

	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.finish(req, s.persister.Persist(pctx, req))
}

// finish records the outcome of req, runs the observers and starts a
// deferred persist when one is due.
func (s *Session) finish(req Request, err error) error {
	s.mu.Lock()
	if err == nil && req.Revision > s.persisted {
		s.persisted = req.Revision
	}
	dirty := s.revision != s.persisted

	var next *Request
	switch {
	case s.closing:
		s.state = StateIdle
	case s.state == StatePersistingWithPendingRearm && dirty:
		s.state = StateIdle
		r := s.beginLocked()
		next = &r
	case s.timer != nil:
		s.state = StateTimerArmed
	default:
		s.state = StateIdle
	}
	s.settled.Broadcast()

	dirtyHandlers := make([]func(uuid.UUID, bool), len(s.onDirty))
	copy(dirtyHandlers, s.onDirty)
	persistedHandlers := make([]func(uuid.UUID, uint64), len(s.onPersisted))
	copy(persistedHandlers, s.onPersisted)
	errorHandlers := make([]func(*PersistError), len(s.onError))
	copy(errorHandlers, s.onError)
	s.mu.Unlock()

	var result error
	if err != nil {
		pe := &PersistError{
			SessionID: s.id,
			Path:      s.path,
			Revision:  req.Revision,
			AttemptID: req.AttemptID,
			Err:       err,
		}
		s.logger.Warn("%v", pe)
		for _, h := range errorHandlers {
			h(pe)
		}
		result = pe
	} else {
		s.logger.Debug("persisted revision %d (attempt %s)", req.Revision, req.AttemptID)
		for _, h := range persistedHandlers {
			h(s.id, req.Revision)
		}
		if !dirty {
			for _, h := range dirtyHandlers {
				h(s.id, false)
			}
		}
	}

	if next != nil {
		r := *next
		s.spawn(func() { s.run(r) })
	}
	return result
}

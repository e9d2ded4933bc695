// Package focus reconciles the two observable notions of focus in a
// workspace: the active tab group, driven by selection, and the focused
// surface, driven by low-level input focus.
//
// Writing either slot propagates the value into the other at most once. A
// suppress flag is raised for the whole transition, including observer
// callbacks, so observers that react by writing the other slot are ignored
// rather than starting a cascade.
//
// The arbiter is driven from a single event timeline; observers run
// synchronously on it.
package focus

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/editstate/internal/clock"
	"github.com/dshills/editstate/internal/logging"
)

// GroupID identifies a pane/tab group.
type GroupID string

// None is the empty group id: no group.
const None GroupID = ""

// DefaultHistorySize is the number of transitions kept for diagnostics.
const DefaultHistorySize = 64

// State is the pair of focus slots.
type State struct {
	ActiveGroup    GroupID
	FocusedSurface GroupID
}

// Converged reports whether the slots agree. A state with no focused
// surface is always converged.
func (s State) Converged() bool {
	return s.FocusedSurface == None || s.ActiveGroup == s.FocusedSurface
}

// Stats counts arbiter activity.
type Stats struct {
	// External is the number of accepted external transitions.
	External uint64
	// Propagated is the number of writes made to the other slot.
	Propagated uint64
	// Suppressed is the number of writes ignored during a transition.
	Suppressed uint64
	// Rejected is the number of transitions naming unknown groups.
	Rejected uint64
}

// Arbiter owns the focus state.
type Arbiter struct {
	mu       sync.Mutex
	state    State
	suppress bool

	groups map[GroupID]uint64 // group -> last time it became active
	stamp  uint64
	seq    uint64

	onActive  []func(GroupID)
	onFocused []func(GroupID)

	history *ring
	stats   Stats
	clock   clock.Clock
	logger  *logging.Logger
}

// Option configures an Arbiter.
type Option func(*Arbiter)

// WithHistorySize sets how many transitions History keeps.
func WithHistorySize(n int) Option {
	return func(a *Arbiter) {
		a.history = newRing(n)
	}
}

// WithClock sets the clock used to stamp transitions.
func WithClock(c clock.Clock) Option {
	return func(a *Arbiter) {
		a.clock = c
	}
}

// WithLogger sets the arbiter's logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Arbiter) {
		a.logger = l
	}
}

// New creates an arbiter with no groups.
func New(opts ...Option) *Arbiter {
	a := &Arbiter{
		groups: make(map[GroupID]uint64),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.history == nil {
		a.history = newRing(DefaultHistorySize)
	}
	if a.clock == nil {
		a.clock = clock.Real()
	}
	a.logger = logging.Or(a.logger).WithComponent("focus")
	return a
}

// Register adds a group that focus may target.
func (a *Arbiter) Register(id GroupID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id == None {
		return &TargetError{Op: "register", ID: id}
	}
	if _, ok := a.groups[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateGroup, id)
	}
	a.groups[id] = 0
	return nil
}

// Unregister removes a group. If it held either slot, focus moves to the
// most recently active remaining group, or to none. Groups cannot be
// removed from inside a transition's observers.
func (a *Arbiter) Unregister(id GroupID) error {
	a.mu.Lock()
	if a.suppress {
		a.stats.Suppressed++
		a.mu.Unlock()
		return fmt.Errorf("unregister %s: %w", id, ErrBusy)
	}
	if _, ok := a.groups[id]; !ok {
		a.mu.Unlock()
		return &TargetError{Op: "unregister", ID: id}
	}
	delete(a.groups, id)

	from := a.state
	to := from
	if from.ActiveGroup == id || from.FocusedSurface == id {
		next := a.mostRecentLocked()
		if to.ActiveGroup == id {
			to.ActiveGroup = next
		}
		if to.FocusedSurface == id {
			to.FocusedSurface = next
		}
	}
	a.commitLocked(OriginUnregister, from, to, false)
	return nil
}

// SetFocusedSurface records a low-level focus change. A surface other than
// the active group becomes the active group. Calls made while a transition
// is being propagated are ignored.
func (a *Arbiter) SetFocusedSurface(id GroupID) error {
	a.mu.Lock()
	if a.suppress {
		a.stats.Suppressed++
		a.mu.Unlock()
		return nil
	}
	if err := a.validateLocked("focus surface", id); err != nil {
		a.mu.Unlock()
		return err
	}

	from := a.state
	to := from
	to.FocusedSurface = id
	propagate := id != None && id != from.ActiveGroup
	if propagate {
		to.ActiveGroup = id
	}
	a.commitLocked(OriginSurface, from, to, propagate)
	return nil
}

// SetActiveGroup records a tab/group selection. The focused surface follows
// the active group. Calls made while a transition is being propagated are
// ignored.
func (a *Arbiter) SetActiveGroup(id GroupID) error {
	a.mu.Lock()
	if a.suppress {
		a.stats.Suppressed++
		a.mu.Unlock()
		return nil
	}
	if err := a.validateLocked("activate group", id); err != nil {
		a.mu.Unlock()
		return err
	}

	from := a.state
	to := from
	to.ActiveGroup = id
	propagate := id != from.FocusedSurface
	if propagate {
		to.FocusedSurface = id
	}
	a.commitLocked(OriginGroup, from, to, propagate)
	return nil
}

func (a *Arbiter) validateLocked(op string, id GroupID) error {
	if id == None {
		return nil
	}
	if _, ok := a.groups[id]; ok {
		return nil
	}
	a.stats.Rejected++
	err := &TargetError{Op: op, ID: id}
	a.logger.Warn("ignoring transition: %v", err)
	return err
}

// commitLocked applies a transition and notifies observers with the
// suppress flag raised. It must be called with a.mu held and releases it.
func (a *Arbiter) commitLocked(origin Origin, from, to State, propagated bool) {
	if !to.Converged() {
		a.mu.Unlock()
		panic(fmt.Sprintf("focus: transition %s left slots diverged: %+v", origin, to))
	}

	if origin != OriginUnregister {
		a.stats.External++
	}
	if propagated {
		a.stats.Propagated++
	}
	if from == to {
		a.mu.Unlock()
		return
	}

	a.state = to
	if to.ActiveGroup != from.ActiveGroup && to.ActiveGroup != None {
		a.stamp++
		a.groups[to.ActiveGroup] = a.stamp
	}
	a.seq++
	a.history.add(Transition{
		Seq:        a.seq,
		Origin:     origin,
		From:       from,
		To:         to,
		Propagated: propagated,
		Time:       a.clock.Now(),
	})

	a.suppress = true
	onActive := make([]func(GroupID), len(a.onActive))
	copy(onActive, a.onActive)
	onFocused := make([]func(GroupID), len(a.onFocused))
	copy(onFocused, a.onFocused)
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.suppress = false
		a.mu.Unlock()
	}()

	a.logger.Debug("%s: active %q -> %q, focused %q -> %q",
		origin, from.ActiveGroup, to.ActiveGroup, from.FocusedSurface, to.FocusedSurface)

	notifyFocused := func() {
		if from.FocusedSurface != to.FocusedSurface {
			for _, fn := range onFocused {
				fn(to.FocusedSurface)
			}
		}
	}
	notifyActive := func() {
		if from.ActiveGroup != to.ActiveGroup {
			for _, fn := range onActive {
				fn(to.ActiveGroup)
			}
		}
	}
	// The slot written by the caller is announced first.
	if origin == OriginSurface {
		notifyFocused()
		notifyActive()
	} else {
		notifyActive()
		notifyFocused()
	}
}

func (a *Arbiter) mostRecentLocked() GroupID {
	var (
		best  GroupID
		stamp uint64
	)
	for id, s := range a.groups {
		if best == None || s > stamp || (s == stamp && id < best) {
			best, stamp = id, s
		}
	}
	return best
}

// OnActiveGroupChanged registers an observer of the active group slot.
func (a *Arbiter) OnActiveGroupChanged(fn func(GroupID)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onActive = append(a.onActive, fn)
}

// OnFocusedSurfaceChanged registers an observer of the focused surface
// slot.
func (a *Arbiter) OnFocusedSurfaceChanged(fn func(GroupID)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onFocused = append(a.onFocused, fn)
}

// State returns both slots.
func (a *Arbiter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// ActiveGroup returns the active group.
func (a *Arbiter) ActiveGroup() GroupID {
	return a.State().ActiveGroup
}

// FocusedSurface returns the focused surface.
func (a *Arbiter) FocusedSurface() GroupID {
	return a.State().FocusedSurface
}

// Groups returns the registered groups, sorted.
func (a *Arbiter) Groups() []GroupID {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]GroupID, 0, len(a.groups))
	for id := range a.groups {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// History returns recent transitions, oldest first.
func (a *Arbiter) History() []Transition {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.all()
}

// Stats returns a copy of the activity counters.
func (a *Arbiter) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

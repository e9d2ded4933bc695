// Package notify delivers settings change notifications to observers.
//
// Every change carries a sequence number assigned when it is accepted;
// observers always see changes in sequence order, whether delivery is
// synchronous or asynchronous. A Batch commits several changes as one
// grouped notification so consumers can reconcile them in a single pass.
package notify

import (
	"sort"
	"sync"
)

// ChangeType represents the type of settings change.
type ChangeType int

const (
	// ChangeSet indicates a value was set or updated.
	ChangeSet ChangeType = iota

	// ChangeDelete indicates a value was deleted.
	ChangeDelete

	// ChangeReload indicates a settings source was reloaded. Batch holds
	// the per-key differences the reload produced.
	ChangeReload

	// ChangeBatch groups several changes committed together.
	ChangeBatch
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeDelete:
		return "delete"
	case ChangeReload:
		return "reload"
	case ChangeBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// Change represents a settings change event.
type Change struct {
	// Path is the dot-separated option key. Empty for reload and batch
	// events.
	Path string

	// Type is the type of change.
	Type ChangeType

	// OldValue is the previous effective value (may be nil).
	OldValue any

	// NewValue is the new effective value (nil for deletes).
	NewValue any

	// Source identifies where the change came from.
	Source string

	// Seq is the delivery sequence number.
	Seq uint64

	// Batch holds the grouped changes of reload and batch events.
	Batch []Change
}

// Flatten returns the individual set/delete changes carried by c.
func (c Change) Flatten() []Change {
	switch c.Type {
	case ChangeReload, ChangeBatch:
		out := make([]Change, 0, len(c.Batch))
		for _, sub := range c.Batch {
			out = append(out, sub.Flatten()...)
		}
		return out
	default:
		return []Change{c}
	}
}

// Observer is called when settings change.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	path     string
	notifier *Notifier
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages settings change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	// Global observers receive every change, including grouped ones.
	globalObservers map[uint64]Observer

	// Path observers receive the individual changes under their path.
	pathObservers map[string]map[uint64]Observer

	nextID  uint64
	nextSeq uint64

	// Delivery queue in Seq order. In synchronous mode whichever caller
	// finds the queue idle drains it, so re-entrant and concurrent
	// notifications are delivered in order without blocking on each other.
	queue      []Change
	delivering bool

	// sendMu keeps async buffer order equal to Seq order.
	sendMu sync.Mutex
	async  bool
	buffer chan Change
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous notification delivery on a dedicated
// goroutine with the given buffer size.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		globalObservers: make(map[uint64]Observer),
		pathObservers:   make(map[string]map[uint64]Observer),
		done:            make(chan struct{}),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}

	return n
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.globalObservers[id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribePath registers an observer for changes at or below path.
// Subscribing to "textEditing" receives "textEditing.font.size".
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	if n.pathObservers[path] == nil {
		n.pathObservers[path] = make(map[uint64]Observer)
	}
	n.pathObservers[path][id] = observer

	return &Subscription{id: id, path: path, notifier: n}
}

// Notify sends a change notification to all relevant observers.
func (n *Notifier) Notify(change Change) {
	n.Post(change)
	n.Deliver()
}

// Post assigns change the next sequence number and queues it without
// delivering. Callers that must order notifications with their own state
// changes Post while holding their lock and Deliver after releasing it.
func (n *Notifier) Post(change Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.nextSeq++
	change.Seq = n.nextSeq
	n.queue = append(n.queue, change)
}

// Deliver sends every queued change to its observers in sequence order.
// A Deliver call made while another caller is delivering returns at once;
// the active caller drains the queue.
func (n *Notifier) Deliver() {
	if n.async {
		n.deliverAsync()
		return
	}

	n.mu.Lock()
	if n.delivering {
		n.mu.Unlock()
		return
	}
	n.delivering = true
	for len(n.queue) > 0 {
		next := n.queue[0]
		n.queue = n.queue[1:]
		n.mu.Unlock()
		n.deliverChange(next)
		n.mu.Lock()
	}
	n.delivering = false
	n.mu.Unlock()
}

// deliverAsync moves queued changes into the async buffer in order.
func (n *Notifier) deliverAsync() {
	n.sendMu.Lock()
	defer n.sendMu.Unlock()

	for {
		n.mu.Lock()
		if len(n.queue) == 0 {
			n.mu.Unlock()
			return
		}
		next := n.queue[0]
		n.queue = n.queue[1:]
		n.mu.Unlock()

		select {
		case n.buffer <- next:
		case <-n.done:
			return
		}
	}
}

// NotifySet is a convenience method for set changes.
func (n *Notifier) NotifySet(path string, oldValue, newValue any, source string) {
	n.Notify(Change{
		Path:     path,
		Type:     ChangeSet,
		OldValue: oldValue,
		NewValue: newValue,
		Source:   source,
	})
}

// NotifyDelete is a convenience method for delete changes.
func (n *Notifier) NotifyDelete(path string, oldValue any, source string) {
	n.Notify(Change{
		Path:     path,
		Type:     ChangeDelete,
		OldValue: oldValue,
		Source:   source,
	})
}

// NotifyReload announces a reload of source together with the per-key
// differences it produced.
func (n *Notifier) NotifyReload(source string, diff []Change) {
	n.Notify(Change{
		Type:   ChangeReload,
		Source: source,
		Batch:  diff,
	})
}

// Close shuts down the notifier, draining pending async deliveries. It is
// safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.globalObservers, id)

	for path, observers := range n.pathObservers {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.pathObservers, path)
		}
	}
}

type entry struct {
	id     uint64
	obs    Observer
	change Change
}

// deliverChange sends a change to all matching observers in subscription
// order. Observers run outside the subscription lock.
func (n *Notifier) deliverChange(change Change) {
	n.mu.RLock()
	var entries []entry

	for id, obs := range n.globalObservers {
		entries = append(entries, entry{id: id, obs: obs, change: change})
	}

	for _, c := range change.Flatten() {
		for path, pathObs := range n.pathObservers {
			if path != c.Path && !isParentPath(path, c.Path) {
				continue
			}
			for id, obs := range pathObs {
				sub := c
				sub.Seq = change.Seq
				entries = append(entries, entry{id: id, obs: obs, change: sub})
			}
		}
	}
	n.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].id < entries[j].id })
	for _, e := range entries {
		e.obs(e.change)
	}
}

func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.buffer:
			n.deliverChange(change)
		case <-n.done:
			for {
				select {
				case change := <-n.buffer:
					n.deliverChange(change)
				default:
					return
				}
			}
		}
	}
}

// isParentPath checks if parent is a parent path of child.
// e.g., "textEditing" is parent of "textEditing.font".
func isParentPath(parent, child string) bool {
	if len(parent) >= len(child) {
		return false
	}
	if parent == "" {
		return true
	}
	return child[:len(parent)] == parent && child[len(parent)] == '.'
}

// Batch collects multiple changes and delivers them as one grouped
// notification.
type Batch struct {
	notifier *Notifier
	source   string
	changes  []Change
	mu       sync.Mutex
}

// NewBatch creates a new batch for collecting changes.
func (n *Notifier) NewBatch(source string) *Batch {
	return &Batch{notifier: n, source: source}
}

// Add adds a change to the batch.
func (b *Batch) Add(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, change)
}

// Set adds a set change to the batch.
func (b *Batch) Set(path string, oldValue, newValue any) {
	b.Add(Change{
		Path:     path,
		Type:     ChangeSet,
		OldValue: oldValue,
		NewValue: newValue,
		Source:   b.source,
	})
}

// Commit sends the batched changes as a single ChangeBatch notification.
// Empty batches send nothing.
func (b *Batch) Commit() {
	b.mu.Lock()
	changes := b.changes
	b.changes = nil
	b.mu.Unlock()

	if len(changes) == 0 {
		return
	}
	b.notifier.Notify(Change{Type: ChangeBatch, Source: b.source, Batch: changes})
}

// Discard clears the batch without sending notifications.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = nil
}

// Len returns the number of pending changes.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}

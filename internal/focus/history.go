package focus

import "time"

// Origin identifies which transition produced a history entry.
type Origin string

const (
	OriginSurface    Origin = "surface"    // low-level input focus
	OriginGroup      Origin = "group"      // tab/group selection
	OriginUnregister Origin = "unregister" // active group removed
)

// Transition records one applied focus transition.
type Transition struct {
	Seq        uint64
	Origin     Origin
	From       State
	To         State
	Propagated bool
	Time       time.Time
}

// ring is a fixed-capacity circular buffer of transitions.
type ring struct {
	buf  []Transition
	head int
	size int
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]Transition, capacity)}
}

func (r *ring) add(t Transition) {
	r.buf[r.head] = t
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// all returns the entries oldest first.
func (r *ring) all() []Transition {
	out := make([]Transition, r.size)
	start := (r.head - r.size + len(r.buf)) % len(r.buf)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

// Package projector keeps a DerivedEditorConfig consistent with the
// settings store.
//
// The projector holds the latest settings snapshot, the active theme and the
// system appearance. Each external event (a settings change, a batch of
// changes, an appearance change or a theme edit) runs one reconciliation
// pass: the changed inputs are collected, the dependency table selects the
// derived fields that read them, and only those fields are recomputed. A
// pass that produces an equal config publishes nothing.
//
//	store change ─┐
//	appearance ───┼─> pass ─> affected fields ─> DerivedEditorConfig ─> subscribers
//	theme edit ───┘
package projector

import (
	"sort"
	"sync"

	"github.com/dshills/editstate/internal/config"
	"github.com/dshills/editstate/internal/logging"
	"github.com/dshills/editstate/internal/theme"
)

// ThemeSource resolves theme ids to themes.
type ThemeSource interface {
	Get(id string) (theme.Theme, bool)
}

// Change is a single settings change.
type Change struct {
	Key   string
	Value any
}

// Stats counts projector activity.
type Stats struct {
	// Passes is the number of reconciliation passes that recomputed at
	// least one field.
	Passes uint64
	// Publications is the number of configs delivered to subscribers.
	Publications uint64
	// Coalesced is the number of configs superseded before delivery.
	Coalesced uint64
	// Ignored counts changes to keys no derived field depends on.
	Ignored uint64
	// Invalid counts changes rejected by validation.
	Invalid uint64
	// Recomputed counts recomputations per field.
	Recomputed [FieldCount]uint64
}

// Projector derives editor configuration from settings.
type Projector struct {
	mu sync.Mutex

	themes     ThemeSource
	snapshot   config.Snapshot
	appearance theme.Appearance
	theme      theme.Theme
	current    DerivedEditorConfig

	// generation increments on every config change; published is the
	// generation last delivered.
	generation uint64
	published  uint64
	delivering bool

	subs    map[uint64]func(DerivedEditorConfig)
	nextSub uint64

	selectTheme func(id string)
	logger      *logging.Logger
	stats       Stats
}

// Option configures a Projector.
type Option func(*Projector)

// WithSnapshot sets the initial settings snapshot.
func WithSnapshot(s config.Snapshot) Option {
	return func(p *Projector) {
		p.snapshot = s
	}
}

// WithAppearance sets the initial system appearance.
func WithAppearance(a theme.Appearance) Option {
	return func(p *Projector) {
		p.appearance = a
	}
}

// WithThemeSelector sets a callback invoked when an appearance change
// switches the active theme, so the selection can be recorded in the
// settings store.
func WithThemeSelector(fn func(id string)) Option {
	return func(p *Projector) {
		p.selectTheme = fn
	}
}

// WithLogger sets the projector's logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Projector) {
		p.logger = l
	}
}

// New creates a projector and computes the initial configuration.
func New(themes ThemeSource, opts ...Option) *Projector {
	p := &Projector{
		themes:   themes,
		snapshot: config.DefaultSnapshot(),
		subs:     make(map[uint64]func(DerivedEditorConfig)),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.Or(p.logger).WithComponent("projector")

	p.theme = p.lookupLocked(p.snapshot.Theme)
	p.current = Compute(p.inputsLocked())
	return p
}

// HandleChange processes one settings change.
func (p *Projector) HandleChange(key string, value any) {
	p.Apply(Change{Key: key, Value: value})
}

// Apply processes several settings changes in a single pass.
func (p *Projector) Apply(changes ...Change) {
	p.mu.Lock()
	changed := make(map[string]bool)
	for _, c := range changes {
		if !tracked(c.Key) {
			p.stats.Ignored++
			continue
		}
		ok, err := p.snapshot.Apply(c.Key, c.Value)
		if err != nil {
			p.stats.Invalid++
			p.logger.Warn("ignoring %s: %v", c.Key, err)
			continue
		}
		if ok {
			changed[c.Key] = true
		}
	}
	p.passLocked(changed)
	p.mu.Unlock()

	p.deliver()
}

// SystemAppearanceChanged records a new system appearance. When appearance
// matching is enabled the active theme switches to the dark or light
// preference; the switch and the appearance change are reconciled in one
// pass.
func (p *Projector) SystemAppearanceChanged(a theme.Appearance) {
	p.mu.Lock()
	if a == p.appearance {
		p.mu.Unlock()
		return
	}
	p.appearance = a
	changed := map[string]bool{InputAppearance: true}

	var selected string
	if p.snapshot.MatchAppearance {
		pref := p.snapshot.LightTheme
		if a == theme.AppearanceDark {
			pref = p.snapshot.DarkTheme
		}
		if a != theme.AppearanceUnspecified && pref != "" && pref != p.snapshot.Theme {
			p.snapshot.Theme = pref
			changed[config.KeyTheme] = true
			selected = pref
		}
	}
	p.passLocked(changed)
	selectTheme := p.selectTheme
	p.mu.Unlock()

	if selected != "" {
		p.logger.Info("appearance %s selects theme %s", a, selected)
		if selectTheme != nil {
			selectTheme(selected)
		}
	}
	p.deliver()
}

// ThemeUpdated reconciles an edit of a registered theme. Edits of themes
// other than the active one are ignored.
func (p *Projector) ThemeUpdated(t theme.Theme) {
	p.mu.Lock()
	if t.ID != p.snapshot.Theme || t == p.theme {
		p.mu.Unlock()
		return
	}
	p.theme = t
	p.passLocked(map[string]bool{InputTheme: true})
	p.mu.Unlock()

	p.deliver()
}

// passLocked recomputes the fields affected by changed.
func (p *Projector) passLocked(changed map[string]bool) {
	if changed[config.KeyTheme] {
		if th := p.lookupLocked(p.snapshot.Theme); th != p.theme {
			p.theme = th
			changed[InputTheme] = true
		}
	}

	fields := affected(changed)
	if len(fields) == 0 {
		return
	}
	p.stats.Passes++

	in := p.inputsLocked()
	next := p.current
	for _, f := range fields {
		derive(f, in, &next)
		p.stats.Recomputed[f]++
	}
	if next == p.current {
		return
	}
	p.current = next
	p.generation++
}

// deliver publishes the latest config to subscribers. A call made while
// another caller is delivering returns at once; the active caller picks up
// the newer generation. Superseded generations are never delivered.
func (p *Projector) deliver() {
	p.mu.Lock()
	if p.delivering {
		p.mu.Unlock()
		return
	}
	p.delivering = true
	for p.published < p.generation {
		cfg, gen := p.current, p.generation
		p.stats.Coalesced += gen - p.published - 1
		subs := p.subscribersLocked()
		p.mu.Unlock()

		for _, fn := range subs {
			fn(cfg)
		}

		p.mu.Lock()
		p.published = gen
		p.stats.Publications++
	}
	p.delivering = false
	p.mu.Unlock()
}

func (p *Projector) subscribersLocked() []func(DerivedEditorConfig) {
	ids := make([]uint64, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]func(DerivedEditorConfig), len(ids))
	for i, id := range ids {
		out[i] = p.subs[id]
	}
	return out
}

func (p *Projector) lookupLocked(id string) theme.Theme {
	if p.themes != nil {
		if th, ok := p.themes.Get(id); ok {
			return th
		}
	}
	p.logger.Warn("theme %q not found, using fallback", id)
	return theme.Fallback()
}

func (p *Projector) inputsLocked() Inputs {
	return Inputs{Snapshot: p.snapshot, Theme: p.theme, Appearance: p.appearance}
}

// Subscribe registers fn to receive every published config. The returned
// function removes the subscription.
func (p *Projector) Subscribe(fn func(DerivedEditorConfig)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Current returns the latest derived configuration.
func (p *Projector) Current() DerivedEditorConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Generation returns the number of distinct configs produced so far.
func (p *Projector) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// Snapshot returns the settings snapshot the projector currently holds.
func (p *Projector) Snapshot() config.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// Appearance returns the last reported system appearance.
func (p *Projector) Appearance() theme.Appearance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.appearance
}

// Stats returns a copy of the activity counters.
func (p *Projector) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

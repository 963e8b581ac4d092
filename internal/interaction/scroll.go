package interaction

// Reference defaults for the scroll tracker, in CSS pixels.
const (
	DefaultScrollThreshold = 50
	DefaultProbeOffset     = 100
)

// ScrollOptions configures a ScrollTracker.
type ScrollOptions struct {
	// Threshold is the offset past which the header switches to its
	// opaque treatment.
	Threshold float64

	// ProbeOffset is the distance from the viewport top used to pick the
	// active section.
	ProbeOffset float64
}

// DefaultScrollOptions returns the reference 50px/100px configuration.
func DefaultScrollOptions() ScrollOptions {
	return ScrollOptions{
		Threshold:   DefaultScrollThreshold,
		ProbeOffset: DefaultProbeOffset,
	}
}

// ScrollState is the state derived from the last scroll sample.
type ScrollState struct {
	PastThreshold bool
	ActiveSection SectionID
}

// ScrollTracker derives ScrollState from scroll samples. It is owned by a
// single view and is not safe for concurrent use.
type ScrollTracker struct {
	opts     ScrollOptions
	state    ScrollState
	attached bool
}

// NewScrollTracker creates a detached tracker in the initial state.
func NewScrollTracker(opts ScrollOptions) *ScrollTracker {
	return &ScrollTracker{
		opts:  opts,
		state: ScrollState{ActiveSection: SectionHero},
	}
}

// Options returns the tracker configuration.
func (t *ScrollTracker) Options() ScrollOptions {
	return t.opts
}

// Attach starts accepting scroll samples.
func (t *ScrollTracker) Attach() {
	t.attached = true
}

// Detach stops accepting scroll samples. Later calls to Observe are ignored.
func (t *ScrollTracker) Detach() {
	t.attached = false
}

// Attached reports whether the tracker is subscribed.
func (t *ScrollTracker) Attached() bool {
	return t.attached
}

// State returns the current scroll state.
func (t *ScrollTracker) State() ScrollState {
	return t.state
}

// Observe recomputes the state from a scroll offset and the current section
// bounds. It reports whether the state changed.
//
// The active section is the first section in declared order whose bounds
// contain the probe offset. When none does, the previous value is kept.
// Sections the querier cannot find are skipped.
func (t *ScrollTracker) Observe(offset float64, q BoundsQuerier) (ScrollState, bool) {
	if !t.attached {
		return t.state, false
	}

	next := t.state
	next.PastThreshold = offset > t.opts.Threshold

	if q != nil {
		for _, id := range sectionOrder {
			rect, ok := q.QueryElementBounds(id)
			if !ok {
				continue
			}
			if rect.Contains(t.opts.ProbeOffset) {
				next.ActiveSection = id
				break
			}
		}
	}

	changed := next != t.state
	t.state = next
	return next, changed
}

package viewstate

import "sync"

// Holder wires a raw record snapshot and filter parameters to a pure derive
// function. It recomputes the derived state on every input change and
// serializes emissions by subscription generation: a snapshot delivered for
// a generation that has since been superseded is dropped, so a stale
// emission can never win a race against a fresh subscription.
type Holder[Raw, Params, Derived any] struct {
	mu       sync.Mutex
	derive   func([]Raw, Params) Derived
	raw      []Raw
	hasRaw   bool
	params   Params
	gen      uint64
	state    State[Derived]
	onChange []func(State[Derived])
}

// NewHolder creates a Holder in the Loading state. The derive function must
// be pure: no I/O, no mutation of its inputs.
func NewHolder[Raw, Params, Derived any](derive func([]Raw, Params) Derived) *Holder[Raw, Params, Derived] {
	return &Holder[Raw, Params, Derived]{
		derive: derive,
		state:  Loading[Derived](),
	}
}

// State returns the current derived state.
func (h *Holder[Raw, Params, Derived]) State() State[Derived] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// OnChange registers a callback invoked, under no lock ordering guarantees
// beyond per-holder serialization, whenever the derived state changes.
func (h *Holder[Raw, Params, Derived]) OnChange(fn func(State[Derived])) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// Begin starts a new subscription generation and resets the holder to
// Loading. Deliveries tagged with an older generation are ignored from this
// point on; the caller must cancel the previous source before or while
// starting the new one.
func (h *Holder[Raw, Params, Derived]) Begin() uint64 {
	h.mu.Lock()
	h.gen++
	gen := h.gen
	h.hasRaw = false
	h.state = Loading[Derived]()
	fns, st := h.snapshotCallbacks()
	h.mu.Unlock()

	notify(fns, st)
	return gen
}

// Deliver installs a raw snapshot for the given generation and recomputes.
// It reports whether the delivery was accepted; stale generations are
// dropped without effect.
func (h *Holder[Raw, Params, Derived]) Deliver(gen uint64, raw []Raw) bool {
	h.mu.Lock()
	if gen != h.gen {
		h.mu.Unlock()
		return false
	}
	h.raw = raw
	h.hasRaw = true
	h.state = Success(h.derive(raw, h.params))
	fns, st := h.snapshotCallbacks()
	h.mu.Unlock()

	notify(fns, st)
	return true
}

// Fail moves the holder to the Error state for the given generation. Stale
// generations are dropped, matching Deliver.
func (h *Holder[Raw, Params, Derived]) Fail(gen uint64, msg string) bool {
	h.mu.Lock()
	if gen != h.gen {
		h.mu.Unlock()
		return false
	}
	h.hasRaw = false
	h.state = Error[Derived](msg)
	fns, st := h.snapshotCallbacks()
	h.mu.Unlock()

	notify(fns, st)
	return true
}

// SetParams replaces the filter parameters and recomputes against the
// latest raw snapshot. Parameters always apply to the current generation;
// with no snapshot yet delivered the holder stays in its current state.
func (h *Holder[Raw, Params, Derived]) SetParams(params Params) {
	h.mu.Lock()
	h.params = params
	if !h.hasRaw {
		h.mu.Unlock()
		return
	}
	h.state = Success(h.derive(h.raw, params))
	fns, st := h.snapshotCallbacks()
	h.mu.Unlock()

	notify(fns, st)
}

func (h *Holder[Raw, Params, Derived]) snapshotCallbacks() ([]func(State[Derived]), State[Derived]) {
	fns := make([]func(State[Derived]), len(h.onChange))
	copy(fns, h.onChange)
	return fns, h.state
}

func notify[Derived any](fns []func(State[Derived]), st State[Derived]) {
	for _, fn := range fns {
		fn(st)
	}
}

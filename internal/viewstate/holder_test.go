package viewstate

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// sumOver derives the total of values at or above a threshold.
func sumOver(raw []int, threshold int) int {
	total := 0
	for _, v := range raw {
		if v >= threshold {
			total += v
		}
	}
	return total
}

func TestHolder_StartsLoading(t *testing.T) {
	h := NewHolder(sumOver)
	if st := h.State(); st.Kind != KindLoading {
		t.Errorf("expected loading, got %v", st.Kind)
	}
}

func TestHolder_DeliverRecomputes(t *testing.T) {
	h := NewHolder(sumOver)
	gen := h.Begin()

	if !h.Deliver(gen, []int{1, 2, 3}) {
		t.Fatal("expected delivery to be accepted")
	}
	st := h.State()
	if st.Kind != KindSuccess || st.Data != 6 {
		t.Errorf("expected success 6, got %+v", st)
	}
}

func TestHolder_ParamsChangeRecomputes(t *testing.T) {
	h := NewHolder(sumOver)
	gen := h.Begin()
	h.Deliver(gen, []int{1, 2, 3})

	h.SetParams(2)
	st := h.State()
	if st.Kind != KindSuccess || st.Data != 5 {
		t.Errorf("expected recompute to 5, got %+v", st)
	}
}

func TestHolder_ParamsBeforeDataKeepsLoading(t *testing.T) {
	h := NewHolder(sumOver)
	h.Begin()
	h.SetParams(2)
	if st := h.State(); st.Kind != KindLoading {
		t.Errorf("expected loading, got %v", st.Kind)
	}
}

func TestHolder_StaleGenerationDropped(t *testing.T) {
	h := NewHolder(sumOver)
	old := h.Begin()
	fresh := h.Begin()

	if h.Deliver(old, []int{100}) {
		t.Error("expected stale delivery to be rejected")
	}
	if st := h.State(); st.Kind != KindLoading {
		t.Errorf("stale delivery must not change state, got %v", st.Kind)
	}

	h.Deliver(fresh, []int{1})
	if st := h.State(); st.Data != 1 {
		t.Errorf("expected fresh delivery to win, got %+v", st)
	}

	// A late emission from the old subscription cannot overwrite the fresh one.
	if h.Deliver(old, []int{100}) {
		t.Error("expected late stale delivery to be rejected")
	}
	if st := h.State(); st.Data != 1 {
		t.Errorf("expected state to remain fresh, got %+v", st)
	}
}

func TestHolder_FailSurfacesError(t *testing.T) {
	h := NewHolder(sumOver)
	gen := h.Begin()

	if !h.Fail(gen, "subscription lost") {
		t.Fatal("expected failure to be accepted")
	}
	st := h.State()
	if st.Kind != KindError || st.Err != "subscription lost" {
		t.Errorf("expected error state, got %+v", st)
	}

	// Stale errors are dropped too.
	next := h.Begin()
	if h.Fail(gen, "old error") {
		t.Error("expected stale error to be rejected")
	}
	h.Deliver(next, []int{4})
	if st := h.State(); st.Kind != KindSuccess {
		t.Errorf("expected success after recovery, got %+v", st)
	}
}

func TestHolder_OnChange(t *testing.T) {
	h := NewHolder(sumOver)
	var seen []Kind
	h.OnChange(func(st State[int]) {
		seen = append(seen, st.Kind)
	})

	gen := h.Begin()
	h.Deliver(gen, []int{1})
	h.SetParams(0)

	want := []Kind{KindLoading, KindSuccess, KindSuccess}
	if len(seen) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(seen))
	}
	for i, k := range want {
		if seen[i] != k {
			t.Errorf("notification %d: expected %v, got %v", i, k, seen[i])
		}
	}
}

func TestRefresher_StartStop(t *testing.T) {
	var ticks atomic.Int32
	r := NewRefresher(5*time.Millisecond, func(context.Context) {
		ticks.Add(1)
	})

	r.Start(context.Background())
	if !r.Running() {
		t.Fatal("expected refresher to be running")
	}

	time.Sleep(30 * time.Millisecond)
	r.Stop()
	if r.Running() {
		t.Fatal("expected refresher to be stopped")
	}

	if ticks.Load() == 0 {
		t.Error("expected at least one tick")
	}

	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if ticks.Load() != after {
		t.Error("expected no ticks after Stop")
	}
}

func TestRefresher_Idempotent(t *testing.T) {
	r := NewRefresher(time.Hour, func(context.Context) {})

	r.Start(context.Background())
	r.Start(context.Background())
	r.Stop()
	r.Stop()

	if r.Running() {
		t.Error("expected refresher to be stopped")
	}
}

func TestRefresher_ContextCancelStops(t *testing.T) {
	var ticks atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRefresher(5*time.Millisecond, func(context.Context) {
		ticks.Add(1)
	})

	r.Start(ctx)
	cancel()
	time.Sleep(20 * time.Millisecond)
	before := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if ticks.Load() != before {
		t.Error("expected no ticks after context cancellation")
	}
	r.Stop()
}

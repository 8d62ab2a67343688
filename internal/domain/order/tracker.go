package order

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/drlist/drlist/internal/viewstate"
)

// Tracker drives the order-tracking auto-refresh loop. Every tick reloads
// the full order list through a view-state holder and republishes the
// derived snapshot to the orders topic, so subscribers converge even if an
// individual change event was missed. Reloads are tagged with the holder's
// subscription generation: a reload that finishes after a newer one began
// is dropped, never published.
type Tracker struct {
	svc    *Service
	holder *viewstate.Holder[Order, string, []Order]
	loop   *viewstate.Refresher
}

// NewTracker builds a Tracker republishing every interval. The status
// parameter of the derive stage starts at StatusAll, so the published
// snapshot covers every order.
func NewTracker(svc *Service, interval time.Duration) *Tracker {
	t := &Tracker{svc: svc}
	t.holder = viewstate.NewHolder(func(orders []Order, status string) []Order {
		return FilterByStatus(orders, status)
	})
	t.holder.SetParams(StatusAll)
	t.loop = viewstate.NewRefresher(interval, t.refresh)
	return t
}

// Start launches the refresh loop bound to ctx.
func (t *Tracker) Start(ctx context.Context) {
	t.loop.Start(ctx)
}

// Stop halts the refresh loop and waits for an in-flight tick to finish.
func (t *Tracker) Stop() {
	t.loop.Stop()
}

// State returns the latest derived order snapshot state.
func (t *Tracker) State() viewstate.State[[]Order] {
	return t.holder.State()
}

func (t *Tracker) refresh(ctx context.Context) {
	gen := t.holder.Begin()

	orders, err := t.svc.repo.ListAll(ctx)
	if err != nil {
		if t.holder.Fail(gen, err.Error()) {
			log.Warn().Err(err).Msg("order snapshot reload failed")
		}
		return
	}
	normalize(orders)

	if !t.holder.Deliver(gen, orders) {
		return // a newer reload superseded this one
	}
	st := t.holder.State()
	if st.Kind == viewstate.KindSuccess {
		t.svc.publishOrdersSnapshot(ctx, st.Data)
	}
}

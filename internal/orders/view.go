package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/araute/storefront-admin/internal/gateway"
)

// Phase is the reconciliation view's position in its lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseListing    Phase = "listing"
	PhaseReviewing  Phase = "reviewing"
	PhaseSubmitting Phase = "submitting"
)

var (
	ErrNotListing   = errors.New("no order list to select from")
	ErrNoSelection  = errors.New("no order under review")
	ErrUnknownOrder = errors.New("order not in current list")
)

// Gateway is the slice of the data backend the reconciliation view needs.
type Gateway interface {
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
	WatchOrders(ctx context.Context) (gateway.Feed[Order], error)
}

// View keeps the staff-facing order list live and drives the review flow for
// one selected order at a time. Snapshots from the feed wholly replace the
// in-memory list; there is no incremental merge.
type View struct {
	gw  Gateway
	log *zap.Logger

	mu      sync.Mutex
	phase   Phase
	orders  []Order
	active  *Order
	items   []OrderItem
	seen    map[string]struct{}
	feed    gateway.Feed[Order]
	stopped bool
}

func NewView(gw Gateway, log *zap.Logger) *View {
	return &View{
		gw:    gw,
		log:   log,
		phase: PhaseIdle,
		seen:  make(map[string]struct{}),
	}
}

// Start performs the initial order fetch and establishes the live feed for
// the lifetime of the view. A failed initial fetch is logged and leaves the
// list empty; the feed will repopulate it.
func (v *View) Start(ctx context.Context) error {
	v.mu.Lock()
	if v.phase != PhaseIdle || v.stopped {
		v.mu.Unlock()
		return fmt.Errorf("view already started (phase %s)", v.phase)
	}
	v.phase = PhaseLoading
	v.mu.Unlock()

	list, err := v.gw.ListOrders(ctx)
	if err != nil {
		v.log.Error("initial order list", zap.Error(err))
		list = nil
	}

	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return nil
	}
	v.orders = list
	v.phase = PhaseListing
	v.mu.Unlock()

	feed, err := v.gw.WatchOrders(ctx)
	if err != nil {
		v.log.Error("order feed subscribe", zap.Error(err))
		return err
	}

	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		_ = feed.Close()
		return nil
	}
	v.feed = feed
	v.mu.Unlock()

	go v.consume(feed)
	return nil
}

func (v *View) consume(feed gateway.Feed[Order]) {
	for snap := range feed.Snapshots() {
		if id, ok := v.apply(snap); ok {
			// Auto-opened on a freshly paid order: fetch its items outside
			// the lock, like a user-initiated review would.
			if err := v.loadItems(context.Background(), id); err != nil {
				v.log.Error("load items for paid order", zap.String("order_id", id), zap.Error(err))
			}
		}
	}
}

// apply replaces the order list with a feed snapshot. When the feed is
// synced and the snapshot is non-empty, the newest unhandled Paid order (if
// any) is opened for review automatically so staff see the payment come in.
func (v *View) apply(snap gateway.Snapshot[Order]) (openedID string, opened bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopped {
		return "", false
	}
	v.orders = snap.Items

	if !snap.Synced || len(snap.Items) == 0 || v.phase != PhaseListing {
		return "", false
	}
	// Newest first; snapshot order is append order.
	for i := len(snap.Items) - 1; i >= 0; i-- {
		o := snap.Items[i]
		if o.Status != StatusPaid {
			continue
		}
		if _, done := v.seen[o.ID]; done {
			continue
		}
		v.seen[o.ID] = struct{}{}
		ord := o
		v.active = &ord
		v.items = nil
		v.phase = PhaseReviewing
		return o.ID, true
	}
	return "", false
}

// Open selects one order for review, any status. Its items are fetched
// filtered by order id and consolidated before they are exposed.
func (v *View) Open(ctx context.Context, id string) error {
	v.mu.Lock()
	if v.phase != PhaseListing {
		v.mu.Unlock()
		return ErrNotListing
	}
	var found *Order
	for i := range v.orders {
		if v.orders[i].ID == id {
			ord := v.orders[i]
			found = &ord
			break
		}
	}
	if found == nil {
		v.mu.Unlock()
		return ErrUnknownOrder
	}
	v.active = found
	v.items = nil
	v.phase = PhaseReviewing
	v.mu.Unlock()

	return v.loadItems(ctx, id)
}

func (v *View) loadItems(ctx context.Context, id string) error {
	raw, err := v.gw.ListOrderItems(ctx, id)
	if err != nil {
		v.log.Error("load order items", zap.String("order_id", id), zap.Error(err))
		return err
	}
	consolidated := Consolidate(raw)

	v.mu.Lock()
	defer v.mu.Unlock()
	// The selection may have moved on while the fetch was in flight.
	if v.stopped || v.active == nil || v.active.ID != id {
		return nil
	}
	v.items = consolidated
	return nil
}

// Submit transitions the reviewed order to the target status under the
// elevated staff context. Success closes the review and clears the
// selection; failure is logged and leaves the review open.
func (v *View) Submit(ctx context.Context, target Status) error {
	if !IsStaffAction(target) {
		return fmt.Errorf("status %q is not a staff action", target)
	}

	v.mu.Lock()
	if v.phase != PhaseReviewing || v.active == nil {
		v.mu.Unlock()
		return ErrNoSelection
	}
	id := v.active.ID
	v.phase = PhaseSubmitting
	v.mu.Unlock()

	_, err := v.gw.UpdateStatus(ctx, id, target)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopped {
		return err
	}
	if err != nil {
		v.log.Error("update order status",
			zap.String("order_id", id), zap.String("status", string(target)), zap.Error(err))
		v.phase = PhaseReviewing
		return err
	}
	v.seen[id] = struct{}{}
	v.active = nil
	v.items = nil
	v.phase = PhaseListing
	return nil
}

// Dismiss closes the review without acting on the order. The order counts as
// handled so the paid-order heuristic does not immediately reopen it.
func (v *View) Dismiss() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.phase != PhaseReviewing {
		return
	}
	if v.active != nil {
		v.seen[v.active.ID] = struct{}{}
	}
	v.active = nil
	v.items = nil
	v.phase = PhaseListing
}

// Stop releases the live feed. Any in-flight fetch completing afterwards is
// discarded.
func (v *View) Stop() {
	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return
	}
	v.stopped = true
	feed := v.feed
	v.feed = nil
	v.phase = PhaseIdle
	v.mu.Unlock()

	if feed != nil {
		_ = feed.Close()
	}
}

func (v *View) Phase() Phase {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.phase
}

func (v *View) Orders() []Order {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Order, len(v.orders))
	copy(out, v.orders)
	return out
}

// Active returns the order under review, or nil.
func (v *View) Active() *Order {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.active == nil {
		return nil
	}
	ord := *v.active
	return &ord
}

// Items returns the consolidated items of the order under review.
func (v *View) Items() []OrderItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]OrderItem, len(v.items))
	copy(out, v.items)
	return out
}

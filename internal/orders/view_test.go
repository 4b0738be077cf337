package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/araute/storefront-admin/internal/gateway"
)

type fakeFeed struct {
	mu     sync.Mutex
	ch     chan gateway.Snapshot[Order]
	closed bool
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{ch: make(chan gateway.Snapshot[Order], 8)}
}

func (f *fakeFeed) Snapshots() <-chan gateway.Snapshot[Order] { return f.ch }

func (f *fakeFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
	return nil
}

func (f *fakeFeed) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type updateCall struct {
	id     string
	status Status
}

type fakeGateway struct {
	mu        sync.Mutex
	orders    []Order
	items     map[string][]OrderItem
	listErr   error
	itemsErr  error
	updateErr error
	updates   []updateCall
	feed      *fakeFeed
}

func (g *fakeGateway) ListOrders(ctx context.Context) ([]Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.orders, nil
}

func (g *fakeGateway) ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.itemsErr != nil {
		return nil, g.itemsErr
	}
	return g.items[orderID], nil
}

func (g *fakeGateway) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updates = append(g.updates, updateCall{id: id, status: status})
	if g.updateErr != nil {
		return nil, g.updateErr
	}
	return &Order{ID: id, Status: status}, nil
}

func (g *fakeGateway) WatchOrders(ctx context.Context) (gateway.Feed[Order], error) {
	return g.feed, nil
}

func (g *fakeGateway) updateCalls() []updateCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]updateCall, len(g.updates))
	copy(out, g.updates)
	return out
}

func order(id string, status Status) Order {
	return Order{ID: id, OrderNumber: "N-" + id, TotalAmount: 10, Status: status}
}

func startedView(t *testing.T, g *fakeGateway) *View {
	t.Helper()
	v := NewView(g, zap.NewNop())
	require.NoError(t, v.Start(context.Background()))
	t.Cleanup(v.Stop)
	return v
}

func TestStartLoadsOrdersAndEntersListing(t *testing.T) {
	g := &fakeGateway{orders: []Order{order("O1", StatusPending)}, feed: newFakeFeed()}
	v := startedView(t, g)

	assert.Equal(t, PhaseListing, v.Phase())
	require.Len(t, v.Orders(), 1)
	assert.Equal(t, "O1", v.Orders()[0].ID)
}

func TestStartSurvivesListFailure(t *testing.T) {
	g := &fakeGateway{listErr: errors.New("gateway down"), feed: newFakeFeed()}
	v := startedView(t, g)

	assert.Equal(t, PhaseListing, v.Phase())
	assert.Empty(t, v.Orders())
}

func TestSnapshotReplacesList(t *testing.T) {
	g := &fakeGateway{orders: []Order{order("O1", StatusPending)}, feed: newFakeFeed()}
	v := startedView(t, g)

	g.feed.ch <- gateway.Snapshot[Order]{
		Items:  []Order{order("O2", StatusPending), order("O3", StatusConfirmed)},
		Synced: true,
	}

	require.Eventually(t, func() bool { return len(v.Orders()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "O2", v.Orders()[0].ID)
	assert.Equal(t, PhaseListing, v.Phase())
}

func TestSyncedPaidOrderOpensReviewAutomatically(t *testing.T) {
	g := &fakeGateway{
		feed: newFakeFeed(),
		items: map[string][]OrderItem{
			"O2": {item("i1", "P1", qty(2)), item("i2", "P1", qty(3))},
		},
	}
	v := startedView(t, g)

	g.feed.ch <- gateway.Snapshot[Order]{
		Items:  []Order{order("O1", StatusPending), order("O2", StatusPaid)},
		Synced: true,
	}

	require.Eventually(t, func() bool { return v.Phase() == PhaseReviewing }, time.Second, 5*time.Millisecond)
	require.NotNil(t, v.Active())
	assert.Equal(t, "O2", v.Active().ID)

	// Items arrive consolidated.
	require.Eventually(t, func() bool { return len(v.Items()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 5, v.Items()[0].Qty())
}

func TestUnsyncedSnapshotDoesNotAutoOpen(t *testing.T) {
	g := &fakeGateway{feed: newFakeFeed()}
	v := startedView(t, g)

	g.feed.ch <- gateway.Snapshot[Order]{Items: []Order{order("O1", StatusPaid)}, Synced: false}

	require.Eventually(t, func() bool { return len(v.Orders()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, PhaseListing, v.Phase())
}

func TestHandledPaidOrderIsNotReopened(t *testing.T) {
	g := &fakeGateway{feed: newFakeFeed(), items: map[string][]OrderItem{}}
	v := startedView(t, g)

	paid := gateway.Snapshot[Order]{Items: []Order{order("O1", StatusPaid)}, Synced: true}
	g.feed.ch <- paid
	require.Eventually(t, func() bool { return v.Phase() == PhaseReviewing }, time.Second, 5*time.Millisecond)

	require.NoError(t, v.Submit(context.Background(), StatusPreparing))
	assert.Equal(t, PhaseListing, v.Phase())

	// The same order appearing Paid again in a later snapshot stays closed.
	g.feed.ch <- paid
	require.Eventually(t, func() bool { return len(v.Orders()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, PhaseListing, v.Phase())
}

func TestOpenConsolidatesItems(t *testing.T) {
	g := &fakeGateway{
		orders: []Order{order("O1", StatusPending)},
		feed:   newFakeFeed(),
		items: map[string][]OrderItem{
			"O1": {
				item("i1", "P1", qty(2)),
				item("i2", "P2", qty(1)),
				item("i3", "P1", qty(3)),
			},
		},
	}
	v := startedView(t, g)

	require.NoError(t, v.Open(context.Background(), "O1"))
	assert.Equal(t, PhaseReviewing, v.Phase())

	items := v.Items()
	require.Len(t, items, 2)
	byProduct := map[string]int{}
	for _, it := range items {
		byProduct[it.ProductID] = it.Qty()
	}
	assert.Equal(t, 5, byProduct["P1"])
	assert.Equal(t, 1, byProduct["P2"])
}

func TestOpenUnknownOrder(t *testing.T) {
	g := &fakeGateway{orders: []Order{order("O1", StatusPending)}, feed: newFakeFeed()}
	v := startedView(t, g)

	assert.ErrorIs(t, v.Open(context.Background(), "nope"), ErrUnknownOrder)
	assert.Equal(t, PhaseListing, v.Phase())
}

func TestSubmitSuccessClosesReview(t *testing.T) {
	g := &fakeGateway{orders: []Order{order("O1", StatusPending)}, feed: newFakeFeed(), items: map[string][]OrderItem{}}
	v := startedView(t, g)

	require.NoError(t, v.Open(context.Background(), "O1"))
	require.NoError(t, v.Submit(context.Background(), StatusConfirmed))

	assert.Equal(t, PhaseListing, v.Phase())
	assert.Nil(t, v.Active())
	assert.Empty(t, v.Items())
	require.Len(t, g.updateCalls(), 1)
	assert.Equal(t, updateCall{id: "O1", status: StatusConfirmed}, g.updateCalls()[0])
}

func TestSubmitFailureStaysReviewing(t *testing.T) {
	g := &fakeGateway{
		orders:    []Order{order("O1", StatusPending)},
		feed:      newFakeFeed(),
		items:     map[string][]OrderItem{},
		updateErr: errors.New("boom"),
	}
	v := startedView(t, g)

	require.NoError(t, v.Open(context.Background(), "O1"))
	assert.Error(t, v.Submit(context.Background(), StatusCancelled))

	assert.Equal(t, PhaseReviewing, v.Phase())
	require.NotNil(t, v.Active())
	assert.Equal(t, "O1", v.Active().ID)
}

func TestSubmitRejectsNonStaffStatus(t *testing.T) {
	g := &fakeGateway{orders: []Order{order("O1", StatusPending)}, feed: newFakeFeed(), items: map[string][]OrderItem{}}
	v := startedView(t, g)

	require.NoError(t, v.Open(context.Background(), "O1"))
	assert.Error(t, v.Submit(context.Background(), StatusCompleted))
	assert.Empty(t, g.updateCalls())
}

func TestStopClosesFeedAndIgnoresLateSnapshots(t *testing.T) {
	g := &fakeGateway{orders: []Order{order("O1", StatusPending)}, feed: newFakeFeed()}
	v := NewView(g, zap.NewNop())
	require.NoError(t, v.Start(context.Background()))

	v.Stop()
	assert.True(t, g.feed.isClosed())
	assert.Equal(t, PhaseIdle, v.Phase())
}

package orders

import (
	"context"

	"github.com/araute/storefront-admin/internal/gateway"
)

// Remote binds the view's Gateway interface to the real data backend.
type Remote struct {
	Client   *gateway.Client
	Feeds    *gateway.FeedSource
	PageSize int
}

func (r *Remote) ListOrders(ctx context.Context) ([]Order, error) {
	return gateway.ListAll[Order](ctx, r.Client, gateway.EntityOrders, nil, r.PageSize)
}

func (r *Remote) ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	return gateway.ListAll[OrderItem](ctx, r.Client, gateway.EntityOrderItems,
		gateway.Filter{"orderID": orderID}, r.PageSize)
}

func (r *Remote) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	return gateway.Update[Order](ctx, r.Client, gateway.EntityOrders, id,
		map[string]any{"status": string(status)}, gateway.AuthStaff)
}

func (r *Remote) WatchOrders(ctx context.Context) (gateway.Feed[Order], error) {
	return gateway.Watch[Order](ctx, r.Feeds, gateway.EntityOrders)
}

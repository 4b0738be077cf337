package inventory

import (
	"context"

	"github.com/araute/storefront-admin/internal/catalog"
	"github.com/araute/storefront-admin/internal/gateway"
)

// Remote binds the view's Gateway interface to the real data backend.
type Remote struct {
	Client *gateway.Client
}

func (r *Remote) ListStoreProducts(ctx context.Context, storeID string, limit int, nextToken string) ([]StoreProduct, string, error) {
	page, err := gateway.List[StoreProduct](ctx, r.Client, gateway.EntityStoreProducts, gateway.ListOptions{
		Filter:    gateway.Filter{"storeID": storeID},
		Limit:     limit,
		NextToken: nextToken,
	})
	if err != nil {
		return nil, "", err
	}
	return page.Items, page.NextToken, nil
}

func (r *Remote) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	return gateway.Get[catalog.Product](ctx, r.Client, gateway.EntityProducts, id, gateway.AuthStaff)
}

func (r *Remote) SaveQuantity(ctx context.Context, id, productID string, quantity int) error {
	_, err := gateway.Update[StoreProduct](ctx, r.Client, gateway.EntityStoreProducts, id,
		map[string]any{"productID": productID, "quantity": quantity}, gateway.AuthStaff)
	return err
}

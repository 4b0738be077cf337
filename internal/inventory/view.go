package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/araute/storefront-admin/internal/catalog"
)

var (
	ErrUnknownRow = errors.New("no such store product row")
	ErrRowState   = errors.New("row is not in the required state")
)

// Gateway is the slice of the data backend the adjustment view needs.
type Gateway interface {
	ListStoreProducts(ctx context.Context, storeID string, limit int, nextToken string) ([]StoreProduct, string, error)
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
	SaveQuantity(ctx context.Context, id, productID string, quantity int) error
}

// Message is the transient per-action feedback shown after a save.
type Message struct {
	Text  string `json:"text"`
	Error bool   `json:"error"`
}

// View loads one store's product rows joined with the catalog and lets staff
// edit quantities row by row.
type View struct {
	gw       Gateway
	log      *zap.Logger
	storeID  string
	pageSize int

	mu      sync.Mutex
	rows    []Detail
	message *Message
	closed  bool
}

func NewView(gw Gateway, storeID string, pageSize int, log *zap.Logger) *View {
	return &View{gw: gw, log: log, storeID: storeID, pageSize: pageSize}
}

// Load rebuilds the projection: every StoreProduct page for the store,
// concatenated until the gateway returns no continuation token, then the
// distinct products resolved concurrently and joined in. Products that no
// longer exist are skipped silently; their rows keep empty display fields.
func (v *View) Load(ctx context.Context) error {
	var all []StoreProduct
	token := ""
	for {
		page, next, err := v.gw.ListStoreProducts(ctx, v.storeID, v.pageSize, token)
		if err != nil {
			v.log.Error("list store products", zap.String("store_id", v.storeID), zap.Error(err))
			return err
		}
		all = append(all, page...)
		if next == "" {
			break
		}
		token = next
	}

	products, err := v.resolveProducts(ctx, all)
	if err != nil {
		v.log.Error("resolve catalog products", zap.Error(err))
		return err
	}

	rows := make([]Detail, 0, len(all))
	for _, sp := range all {
		rows = append(rows, NewDetail(sp, products[sp.ProductID]))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.rows = rows
	return nil
}

// resolveProducts fetches each distinct product once, concurrently. The join
// is all-or-nothing: any fetch error fails the whole load. A missing product
// is not an error, it just stays out of the map.
func (v *View) resolveProducts(ctx context.Context, rows []StoreProduct) (map[string]*catalog.Product, error) {
	ids := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, sp := range rows {
		if _, ok := seen[sp.ProductID]; ok {
			continue
		}
		seen[sp.ProductID] = struct{}{}
		ids = append(ids, sp.ProductID)
	}

	var mu sync.Mutex
	products := make(map[string]*catalog.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			p, err := v.gw.GetProduct(gctx, id)
			if err != nil {
				return err
			}
			if p != nil {
				mu.Lock()
				products[id] = p
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}

// Edit switches a read-only row into editing, seeding the draft with the
// current quantity.
func (v *View) Edit(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	row := v.findLocked(id)
	if row == nil {
		return ErrUnknownRow
	}
	if row.State != RowReadOnly {
		return fmt.Errorf("%w: %s is %s", ErrRowState, id, row.State)
	}
	row.State = RowEditing
	row.Draft = row.Quantity
	return nil
}

// SetQuantity buffers a new draft quantity on an editing row. Nothing is
// sent to the gateway until Save.
func (v *View) SetQuantity(id string, quantity int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	row := v.findLocked(id)
	if row == nil {
		return ErrUnknownRow
	}
	if row.State != RowEditing {
		return fmt.Errorf("%w: %s is %s", ErrRowState, id, row.State)
	}
	row.Draft = quantity
	return nil
}

// Save submits the row's buffered quantity under the staff context. Success
// returns the row to read-only; failure keeps it editable with the draft
// intact so nothing typed is lost.
func (v *View) Save(ctx context.Context, id string) error {
	v.mu.Lock()
	row := v.findLocked(id)
	if row == nil {
		v.mu.Unlock()
		return ErrUnknownRow
	}
	if row.State != RowEditing {
		v.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrRowState, id, row.State)
	}
	row.State = RowSaving
	productID, draft, name := row.ProductID, row.Draft, row.ProductName
	v.mu.Unlock()

	err := v.gw.SaveQuantity(ctx, id, productID, draft)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return err
	}
	row = v.findLocked(id)
	if row == nil {
		return err
	}
	if err != nil {
		v.log.Error("save store product quantity",
			zap.String("store_product_id", id), zap.Error(err))
		row.State = RowEditing
		v.message = &Message{Text: fmt.Sprintf("Failed to save %s", name), Error: true}
		return err
	}
	row.Quantity = draft
	row.State = RowReadOnly
	v.message = &Message{Text: fmt.Sprintf("Saved %s successfully", name)}
	return nil
}

// Cancel abandons an edit, dropping the draft.
func (v *View) Cancel(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	row := v.findLocked(id)
	if row == nil {
		return ErrUnknownRow
	}
	if row.State != RowEditing {
		return fmt.Errorf("%w: %s is %s", ErrRowState, id, row.State)
	}
	row.State = RowReadOnly
	row.Draft = 0
	return nil
}

func (v *View) findLocked(id string) *Detail {
	for i := range v.rows {
		if v.rows[i].ID == id {
			return &v.rows[i]
		}
	}
	return nil
}

func (v *View) Rows() []Detail {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Detail, len(v.rows))
	copy(out, v.rows)
	return out
}

// TakeMessage returns the transient feedback from the last save and clears
// it.
func (v *View) TakeMessage() *Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	m := v.message
	v.message = nil
	return m
}

// Close discards late load results; the view is done.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

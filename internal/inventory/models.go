package inventory

import (
	"fmt"

	"github.com/araute/storefront-admin/internal/catalog"
)

// StoreProduct joins one store to one catalog product: store-level stock,
// optional price override, optional availability flag. This is the only
// entity the adjustment view mutates.
type StoreProduct struct {
	ID            string   `json:"id"`
	StoreID       string   `json:"storeID"`
	ProductID     string   `json:"productID"`
	Quantity      int      `json:"quantity"`
	PriceOverride *float64 `json:"priceOverride,omitempty"`
	IsAvailable   *bool    `json:"isAvailable,omitempty"`
}

// RowState is a row's position in the edit flow. One enum instead of
// independent isEditing/isSaving flags, so "saving while not editing" is not
// representable.
type RowState int

const (
	RowReadOnly RowState = iota
	RowEditing
	RowSaving
)

func (s RowState) String() string {
	switch s {
	case RowEditing:
		return "editing"
	case RowSaving:
		return "saving"
	default:
		return "readOnly"
	}
}

func (s RowState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *RowState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "readOnly":
		*s = RowReadOnly
	case "editing":
		*s = RowEditing
	case "saving":
		*s = RowSaving
	default:
		return fmt.Errorf("unknown row state %q", b)
	}
	return nil
}

// Detail is the in-memory projection of a StoreProduct joined with its
// catalog product. Rebuilt on every load, never persisted. Display fields
// stay zero when the catalog product no longer exists.
type Detail struct {
	ID            string   `json:"id"`
	ProductID     string   `json:"productID"`
	ProductName   string   `json:"productName,omitempty"`
	ProductPrice  float64  `json:"productPrice,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	Quantity      int      `json:"quantity"`
	PriceOverride *float64 `json:"priceOverride,omitempty"`
	FinalPrice    float64  `json:"finalPrice"`
	IsAvailable   bool     `json:"isAvailable"`
	State         RowState `json:"state"`
	// Draft buffers the quantity while the row is being edited.
	Draft int `json:"draft,omitempty"`
}

// NewDetail builds the projection row. The final price is the store's
// override when present, otherwise the catalog price.
func NewDetail(sp StoreProduct, p *catalog.Product) Detail {
	d := Detail{
		ID:            sp.ID,
		ProductID:     sp.ProductID,
		Quantity:      sp.Quantity,
		PriceOverride: sp.PriceOverride,
		IsAvailable:   sp.IsAvailable == nil || *sp.IsAvailable,
		State:         RowReadOnly,
	}
	if p != nil {
		d.ProductName = p.Name
		d.ProductPrice = p.Price
		d.ImageURL = p.ImageURL
	}
	if sp.PriceOverride != nil {
		d.FinalPrice = *sp.PriceOverride
	} else if p != nil {
		d.FinalPrice = p.Price
	}
	return d
}

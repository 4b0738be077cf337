package orders

import "time"

type Order struct {
	ID             string    `json:"id"`
	OrderNumber    string    `json:"orderNumber"`
	TotalAmount    float64   `json:"totalAmount"`
	TrackingNumber string    `json:"trackingNumber,omitempty"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	Owner          string    `json:"owner,omitempty"`
}

type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"orderID"`
	ProductID   string  `json:"productID"`
	ProductName string  `json:"productName"`
	MealName    string  `json:"mealName,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	Price       float64 `json:"price"`
	Owner       string  `json:"owner,omitempty"`
}

// Qty returns the stored quantity, applying the schema default of 1 when the
// field is absent.
func (i OrderItem) Qty() int {
	if i.Quantity == nil {
		return 1
	}
	return *i.Quantity
}

// Package catalog holds the shared product catalog entity. The catalog is
// read-only from this service; products are managed elsewhere.
package catalog

type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Price          float64 `json:"price"`
	ImageURL       string  `json:"imageUrl,omitempty"`
	Category       string  `json:"category,omitempty"`
	Available      bool    `json:"available"`
	RewardInterval int     `json:"rewardInterval"`
}

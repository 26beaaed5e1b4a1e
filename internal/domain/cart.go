package domain

import "time"

// Quantity bounds enforced on every cart mutation.
const (
	MinQuantity = 1
	MaxQuantity = 100
)

// CartLine is one (user, product) row in a user's cart. At most one line
// exists per product for a given user; repeated adds merge quantities.
type CartLine struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartSummary holds the derived per-user aggregates. It is always
// reconstructable from the user's cart lines and current product prices;
// cached copies are an optimization, never a second source of truth.
type CartSummary struct {
	ItemCount     int   `json:"itemCount"`
	TotalQuantity int   `json:"totalQuantity"`
	TotalCents    int64 `json:"totalCents"`
}

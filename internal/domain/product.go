package domain

import "time"

type Product struct {
	ID             string    `json:"id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	PriceCents     int64     `json:"priceCents"`
	SalePriceCents *int64    `json:"salePriceCents,omitempty"`
	Currency       string    `json:"currency"`
	Active         bool      `json:"active"`
	StockQuantity  int       `json:"stockQuantity"`
	CreatedAt      time.Time `json:"createdAt"`
}

// EffectivePriceCents returns the price a cart line is valued at right now:
// the sale price when one is set and lower than the list price.
func (p Product) EffectivePriceCents() int64 {
	if p.SalePriceCents != nil && *p.SalePriceCents < p.PriceCents {
		return *p.SalePriceCents
	}
	return p.PriceCents
}

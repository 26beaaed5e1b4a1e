package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	SKU            string
	Name           string
	Description    string
	PriceCents     int64
	SalePriceCents *int64
	Currency       string
	StockQuantity  int
}

func cents(v int64) *int64 { return &v }

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			SKU:           "SKU-DEMO-TSHIRT",
			Name:          "Demo T-Shirt",
			Description:   "Soft cotton tee for demo purposes",
			PriceCents:    1999,
			Currency:      "USD",
			StockQuantity: 50,
		},
		{
			SKU:            "SKU-DEMO-MUG",
			Name:           "Demo Mug",
			Description:    "Ceramic mug with demo logo",
			PriceCents:     1299,
			SalePriceCents: cents(999),
			Currency:       "USD",
			StockQuantity:  25,
		},
		{
			SKU:           "SKU-DEMO-POSTER",
			Name:          "Demo Poster",
			Description:   "Limited run print, low stock",
			PriceCents:    2999,
			Currency:      "USD",
			StockQuantity: 5,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, description, price_cents, sale_price_cents, currency, stock_quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (sku) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    sale_price_cents = EXCLUDED.sale_price_cents,
    currency = EXCLUDED.currency,
    stock_quantity = EXCLUDED.stock_quantity
`
	_, err := pool.Exec(ctx, q, p.SKU, p.Name, p.Description, p.PriceCents, p.SalePriceCents, p.Currency, p.StockQuantity)
	return err
}

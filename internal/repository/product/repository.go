package product

import (
	"context"

	"shopcart/internal/domain"
)

// Repository is the read-only product catalog lookup the cart depends on for
// pricing, availability and stock.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

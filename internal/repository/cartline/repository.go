package cartline

import (
	"context"

	"shopcart/internal/domain"
)

// Repository is the durable cart line store. It owns the
// (user_id, product_id) uniqueness invariant; a concurrent insert race is
// rejected by the store and surfaced as domain.ErrConflict.
type Repository interface {
	Create(ctx context.Context, userID, productID string, quantity int) (*domain.CartLine, error)
	GetByID(ctx context.Context, id string) (*domain.CartLine, error)
	GetByUserProduct(ctx context.Context, userID, productID string) (*domain.CartLine, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.CartLine, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)

	CountLines(ctx context.Context, userID string) (int, error)
	SumQuantity(ctx context.Context, userID string) (int, error)
	SumTotalCents(ctx context.Context, userID string) (int64, error)
}

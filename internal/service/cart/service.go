// Package cart implements the cart mutation service: the single entry point
// for cart line writes. Every mutation commits to the durable store first,
// then synchronously invalidates the owning user's cached aggregates before
// returning, so no caller ever observes pre-mutation aggregates after a
// mutation it initiated.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"shopcart/internal/domain"
)

type lineRepo interface {
	Create(ctx context.Context, userID, productID string, quantity int) (*domain.CartLine, error)
	GetByID(ctx context.Context, id string) (*domain.CartLine, error)
	GetByUserProduct(ctx context.Context, userID, productID string) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.CartLine, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type aggregateCache interface {
	Invalidate(ctx context.Context, userID string) error
}

type Service struct {
	lines     lineRepo
	products  productRepo
	cache     aggregateCache
	logger    zerolog.Logger
	observers []Observer
}

func New(lines lineRepo, products productRepo, cache aggregateCache, logger zerolog.Logger, observers ...Observer) *Service {
	return &Service{
		lines:     lines,
		products:  products,
		cache:     cache,
		logger:    logger,
		observers: observers,
	}
}

// AddItem adds quantity of a product to the user's cart. If a line for the
// product already exists, the quantities merge and the resulting total is
// re-validated against the quantity bounds and current stock.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartLine, error) {
	if err := validQuantity(quantity); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %s does not exist", domain.ErrProductUnavailable, productID)
		}
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("%w: product %s is inactive", domain.ErrProductUnavailable, productID)
	}

	// The merge decision reads the durable store, never the cache: a stale
	// cached line would seed the merged absolute quantity and overwrite a
	// newer durable value.
	existing, err := s.lines.GetByUserProduct(ctx, userID, productID)
	switch {
	case err == nil:
		return s.mergeAdd(ctx, *product, existing, quantity)
	case errors.Is(err, domain.ErrCartItemNotFound):
		// fresh line
	default:
		return nil, err
	}

	if product.StockQuantity < quantity {
		return nil, fmt.Errorf("%w: requested %d, stock %d", domain.ErrProductUnavailable, quantity, product.StockQuantity)
	}

	line, err := s.lines.Create(ctx, userID, productID, quantity)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost an insert race on (user, product); re-read the winner's
			// line and convert the add into a merge. One retry only.
			existing, rerr := s.lines.GetByUserProduct(ctx, userID, productID)
			if rerr != nil {
				return nil, err
			}
			return s.mergeAdd(ctx, *product, existing, quantity)
		}
		return nil, err
	}

	s.finish(ctx, Event{Op: OpAdd, UserID: userID, LineID: line.ID, ProductID: productID, Quantity: line.Quantity})
	return line, nil
}

// UpdateQuantity sets a cart line to an absolute quantity. Ownership of the
// line is the caller's responsibility; this service only guarantees data and
// cache consistency.
func (s *Service) UpdateQuantity(ctx context.Context, lineID string, quantity int) (*domain.CartLine, error) {
	if err := validQuantity(quantity); err != nil {
		return nil, err
	}

	line, err := s.lines.GetByID(ctx, lineID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %s does not exist", domain.ErrProductUnavailable, line.ProductID)
		}
		return nil, err
	}
	if product.StockQuantity < quantity {
		return nil, fmt.Errorf("%w: requested %d, stock %d", domain.ErrProductUnavailable, quantity, product.StockQuantity)
	}

	updated, err := s.lines.UpdateQuantity(ctx, lineID, quantity)
	if err != nil {
		return nil, err
	}

	s.finish(ctx, Event{Op: OpUpdate, UserID: updated.UserID, LineID: updated.ID, ProductID: updated.ProductID, Quantity: updated.Quantity})
	return updated, nil
}

// RemoveItem deletes a cart line.
func (s *Service) RemoveItem(ctx context.Context, lineID string) error {
	line, err := s.lines.GetByID(ctx, lineID)
	if err != nil {
		return err
	}
	if err := s.lines.Delete(ctx, lineID); err != nil {
		return err
	}

	s.finish(ctx, Event{Op: OpRemove, UserID: line.UserID, LineID: line.ID, ProductID: line.ProductID})
	return nil
}

// ClearCart deletes every line in the user's cart and returns the number
// removed. Clearing an already-empty cart returns 0; the invalidation still
// runs.
func (s *Service) ClearCart(ctx context.Context, userID string) (int64, error) {
	removed, err := s.lines.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.finish(ctx, Event{Op: OpClear, UserID: userID, Removed: removed})
	return removed, nil
}

// mergeAdd folds an add into an existing line, re-validating the combined
// quantity against the bounds and current stock.
func (s *Service) mergeAdd(ctx context.Context, product domain.Product, existing *domain.CartLine, quantity int) (*domain.CartLine, error) {
	newQuantity := existing.Quantity + quantity
	if err := validQuantity(newQuantity); err != nil {
		return nil, err
	}
	if product.StockQuantity < newQuantity {
		return nil, fmt.Errorf("%w: cart would hold %d, stock %d", domain.ErrProductUnavailable, newQuantity, product.StockQuantity)
	}

	updated, err := s.lines.UpdateQuantity(ctx, existing.ID, newQuantity)
	if err != nil {
		return nil, err
	}

	s.finish(ctx, Event{Op: OpAdd, UserID: updated.UserID, LineID: updated.ID, ProductID: updated.ProductID, Quantity: updated.Quantity})
	return updated, nil
}

// finish runs the post-commit tail of every mutation: cache invalidation,
// then observers. An invalidation failure never rolls back the mutation; the
// durable change wins and the cache TTL bounds the staleness.
func (s *Service) finish(ctx context.Context, event Event) {
	if err := s.cache.Invalidate(ctx, event.UserID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", event.UserID).Str("op", string(event.Op)).
			Msg("cart cache invalidation failed, relying on TTL expiry")
	}
	for _, observer := range s.observers {
		observer.CartChanged(ctx, event)
	}
}

func validQuantity(quantity int) error {
	if quantity < domain.MinQuantity || quantity > domain.MaxQuantity {
		return fmt.Errorf("%w: %d not in [%d, %d]", domain.ErrInvalidQuantity, quantity, domain.MinQuantity, domain.MaxQuantity)
	}
	return nil
}

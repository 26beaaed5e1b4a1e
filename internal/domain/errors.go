package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrCartItemNotFound indicates the targeted cart line does not exist.
	ErrCartItemNotFound = errors.New("cart item not found")

	// ErrInvalidQuantity indicates a quantity outside the [MinQuantity, MaxQuantity]
	// range, either as requested or as the result of merging an add.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrProductUnavailable indicates the product is inactive or its stock is
	// insufficient for the requested (or resulting) quantity.
	ErrProductUnavailable = errors.New("product unavailable")

	// ErrConflict indicates a concurrent insert raced on the (user, product)
	// uniqueness constraint and lost.
	ErrConflict = errors.New("cart line conflict")
)

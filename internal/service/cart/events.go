package cart

import "context"

// Op identifies a cart mutation kind.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
	OpClear  Op = "clear"
)

// Event describes a committed cart mutation.
type Event struct {
	Op        Op
	UserID    string
	LineID    string
	ProductID string
	// Quantity is the line quantity after the mutation; zero for remove/clear.
	Quantity int
	// Removed is the number of lines deleted by a clear.
	Removed int64
}

// Observer receives post-commit notifications of cart mutations, for audit
// logging or analytics. Observers run synchronously after cache invalidation;
// they must not fail the mutation.
type Observer interface {
	CartChanged(ctx context.Context, event Event)
}

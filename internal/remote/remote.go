// Package remote defines the table-store contract consumed over the network.
// Errors are returned values at this boundary; implementations live in
// subpackages.
package remote

import "context"

// Collection names served by Store implementations.
const (
	CollectionGoals            = "goals"
	CollectionRetrospects      = "retrospects"
	CollectionFlexibleGoals    = "flexible_goals"
	CollectionDailyResolutions = "daily_resolutions"
)

// Row is one record in a remote collection.
type Row map[string]any

// Eq is an equality filter on a single column.
type Eq struct {
	Column string
	Value  any
}

// Order sorts a selection by one column.
type Order struct {
	Column string
	Desc   bool
}

// Collection provides row-level access to one remote table.
type Collection interface {
	// Insert stores a new row and returns it with the store-assigned id.
	Insert(ctx context.Context, row Row) (Row, error)
	// Update applies patch to rows matching every filter. Matching no rows
	// is not an error. At least one filter is required.
	Update(ctx context.Context, patch Row, filters ...Eq) error
	// Delete removes rows matching every filter. At least one is required.
	Delete(ctx context.Context, filters ...Eq) error
	// Select returns the named columns (all when empty) of rows matching
	// every filter, optionally ordered.
	Select(ctx context.Context, columns []string, order *Order, filters ...Eq) ([]Row, error)
}

// Store exposes the remote collections.
type Store interface {
	// Collection returns the named collection, or errs.ErrUnknownCollection.
	Collection(name string) (Collection, error)
}

// Package store keeps the product catalog in a single SQLite file.
package store

import (
	"context"

	"github.com/abgdnv/productdesk/internal/store/db"
)

// ProductStore is the durable keeper of the product set.
// Calls are synchronous and are not meant to overlap.
type ProductStore interface {
	// EnsureSchema creates the products table, and the file, when missing.
	// Calling it again is a no-op.
	EnsureSchema(ctx context.Context) error

	// ListAll returns a fresh snapshot of every row, ordered by id.
	// Returns an empty slice if no products exist.
	ListAll(ctx context.Context) ([]db.Product, error)

	// Insert adds a product and returns it with its generated id.
	// Returns ValidationError for an empty name or a non-finite price.
	Insert(ctx context.Context, name string, price float64) (*db.Product, error)

	// Update replaces name and price of the product with the given id.
	// An id with no row is a silent no-op.
	Update(ctx context.Context, id int64, name string, price float64) error

	// Delete removes the product with the given id.
	// An id with no row is a silent no-op.
	Delete(ctx context.Context, id int64) error
}

// Package storage defines the Storage interface, the contract that any
// database backend must satisfy to serve the mountains API.
//
// Handlers depend only on this interface. Switching databases means
// implementing it for the new backend and changing the constructor call
// in main.go; tests can pass a stub that satisfies it.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/mountains-api/internal/types"
)

// ErrNotFound is returned by update and delete operations when no row
// matches the requested id.
var ErrNotFound = errors.New("mountain not found")

// Storage is the database contract.
//
// Every method receives the request context and holds a pooled connection
// only for the duration of its single statement.
type Storage interface {
	// CreateMountain inserts a new row and returns the generated id.
	CreateMountain(ctx context.Context, name string, height float64, location string) (int64, error)

	// GetMountains returns every mountain ordered by id.
	// Returns an empty slice (not nil) when the table is empty.
	GetMountains(ctx context.Context) ([]types.Mountain, error)

	// GetMountainsByID returns the rows matching id: one element, or an
	// empty slice when nothing matches. A missing row is not an error.
	GetMountainsByID(ctx context.Context, id int64) ([]types.Mountain, error)

	// UpdateMountainByID replaces name, height and location of an existing
	// row. Returns ErrNotFound when no row has that id.
	UpdateMountainByID(ctx context.Context, id int64, mountain types.Mountain) (types.Mountain, error)

	// DeleteMountainByID removes a row permanently.
	// Returns ErrNotFound when no row has that id.
	DeleteMountainByID(ctx context.Context, id int64) error

	// Close releases the connection pool.
	Close() error
}

// Package store is the document-database boundary for event records.
package store

import (
	"context"
	"errors"

	models "github.com/phillip/events-console-go/models"
)

// ErrNotFound is returned when no record exists for the given identifier.
var ErrNotFound = errors.New("store: record not found")

// RecordStore persists event records.
type RecordStore interface {
	// Create inserts a new record and returns its assigned identifier.
	Create(ctx context.Context, event *models.Event) (string, error)
	// Get loads a record by identifier.
	Get(ctx context.Context, id string) (*models.Event, error)
	// Update rewrites a record's mutable fields in place. The record's
	// creation timestamp is never touched.
	Update(ctx context.Context, id string, event *models.Event) error
	// Delete removes the record document.
	Delete(ctx context.Context, id string) error
	// ListOrdered returns all records sorted by orderField.
	ListOrdered(ctx context.Context, orderField string, descending bool) ([]models.Event, error)
}

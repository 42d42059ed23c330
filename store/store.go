// Package store is the client side of the remote hierarchical key-value
// store. A path like users/tg_123 names one record; a record is a flat
// field map.
package store

import (
	"context"
	"time"
)

type Store interface {
	// Get returns the record's fields. found is false for an absent record;
	// absence is not an error.
	Get(ctx context.Context, path string) (fields map[string]string, found bool, err error)

	// Set writes the full record, replacing whatever was there.
	Set(ctx context.Context, path string, fields map[string]string) error

	// Update merges fields into the record without touching other fields.
	Update(ctx context.Context, path string, fields map[string]string) error

	// Incr atomically adds each delta to its numeric field. Missing fields
	// count from zero. The returned map holds the new values.
	Incr(ctx context.Context, path string, deltas map[string]float64) (map[string]float64, error)

	// SetFieldNX writes the field only if it does not exist yet and reports
	// whether this call won the write.
	SetFieldNX(ctx context.Context, path, field, value string) (bool, error)

	// Children lists record paths under the prefix.
	Children(ctx context.Context, prefix string) ([]string, error)

	// Now is the store's server-assigned clock.
	Now(ctx context.Context) (time.Time, error)
}

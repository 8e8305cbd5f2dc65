// Package repo contains the Local Store Adapter for Loopspot: a per-device
// key-value store whose keys are loop ids and whose values are the JSON
// records of loops. Each backend lives in its own file.
// No business logic lives here, only storage and key mapping.
package repo

import "context"

// LoopStore defines the persistence operations for loop records.
// The service layer depends on this interface, not a concrete backend,
// which allows the service to be unit-tested with a mock.
//
// Values are opaque bytes to the store. A successful Set is visible to every
// later Get on the same store.
type LoopStore interface {
	// Get returns the record stored under id.
	// Returns domain.ErrNotFound if nothing is stored under id.
	Get(ctx context.Context, id string) ([]byte, error)

	// Set stores data under id, replacing any previous record.
	Set(ctx context.Context, id string, data []byte) error

	// Delete removes the record stored under id.
	// Returns domain.ErrNotFound if nothing is stored under id.
	Delete(ctx context.Context, id string) error

	// Keys returns every stored id in ascending order.
	Keys(ctx context.Context) ([]string, error)
}

// Package repository persists the widget snapshot in a shared store that
// the native renderer reads from another process.
package repository

import "context"

// Store provides read/write access to the single snapshot record. Save
// always fully overwrites; there is no history and no merge.
type Store interface {
	// Save durably overwrites the snapshot record.
	Save(ctx context.Context, data []byte) error

	// Load returns the raw snapshot record, or nil when absent.
	Load(ctx context.Context) ([]byte, error)

	// Close releases the underlying store.
	Close() error
}

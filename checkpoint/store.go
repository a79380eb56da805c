package checkpoint

import "context"

// Store persists named sequence positions so consumer progress survives
// a pipeline shutdown
type Store interface {
	// Save records the position for one name, replacing any previous one.
	Save(ctx context.Context, name string, sequence int64) error

	// SaveAll records every position in one atomic batch.
	SaveAll(ctx context.Context, positions map[string]int64) error

	// Load returns the recorded position for name. The boolean reports
	// whether a position was ever recorded.
	Load(ctx context.Context, name string) (int64, bool, error)

	// Close releases the store's resources.
	Close() error
}

package storage

import (
	"context"
	"fmt"
)

// Copy replaces the destination store's collection with the source store's.
// It returns the number of mindmaps written.
func Copy(ctx context.Context, from, to Store) (int, error) {
	maps, err := from.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read source store: %w", err)
	}
	if err := to.SaveAll(ctx, maps); err != nil {
		return 0, fmt.Errorf("failed to write destination store: %w", err)
	}
	return len(maps), nil
}

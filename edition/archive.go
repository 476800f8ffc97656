package edition

import (
	"context"
	"time"
)

// =============================================================================
// EDITION ARCHIVE - Persistence of custom editions
// =============================================================================

// Record is a stored custom edition document.
type Record struct {
	Name      string
	Document  []byte // factory.EditionJSON encoded as JSON
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Archive persists custom edition documents so they survive a restart.
type Archive interface {
	// SaveEdition inserts or replaces a document, bumping its version.
	SaveEdition(ctx context.Context, name string, document []byte) error

	// ListEditions returns every stored document ordered by name.
	ListEditions(ctx context.Context) ([]Record, error)
}

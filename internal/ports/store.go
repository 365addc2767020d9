package ports

import (
	"context"

	"github.com/mouselight/pipeline-scheduler/internal/domain/tile"
)

// TileStore is the keyed-table abstraction over one project's persisted
// stage-zero tile-status table (spec §1, §6: "the generic object-relational
// persistence layer, viewed abstractly as a keyed table store"). The real
// implementation - schema migrations, SQL driver, connection pooling - lives
// outside this module; it is an external collaborator reached only through
// this interface.
//
// Implementations must be safe for the access pattern in spec §5: a single
// project's rows are only ever mutated by that project's ingestor loop; other
// callers only read.
type TileStore interface {
	// List returns every persisted tile-status row for a project, in no
	// particular order.
	List(ctx context.Context, projectID string) ([]tile.Row, error)

	// Insert, Update, and Delete apply one bucket of a mux plan within a
	// single logical transaction each (spec §4.5 step 3, §7: "Partial
	// application must be transactional per bucket").
	Insert(ctx context.Context, projectID string, rows []tile.Row) error
	Update(ctx context.Context, projectID string, rows []tile.Row) error
	Delete(ctx context.Context, projectID string, relativePaths []string) error
}

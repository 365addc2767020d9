// Package memstore provides an in-memory ports.TileStore. It is the
// default backing store wired by cmd/schedcore's "run" command and by this
// module's own tests; the production ORM-backed implementation is an
// external collaborator out of scope per the data model's keyed-table
// abstraction (internal/ports.TileStore).
package memstore

import (
	"context"
	"sync"

	"github.com/mouselight/pipeline-scheduler/internal/domain/tile"
	"github.com/mouselight/pipeline-scheduler/internal/ports"
)

// Store is a concurrency-safe, per-project in-memory tile-status table.
type Store struct {
	mu    sync.RWMutex
	byProject map[string]map[string]tile.Row
}

// New constructs an empty Store.
func New() *Store {
	return &Store{byProject: make(map[string]map[string]tile.Row)}
}

func (s *Store) project(projectID string) map[string]tile.Row {
	rows, ok := s.byProject[projectID]
	if !ok {
		rows = make(map[string]tile.Row)
		s.byProject[projectID] = rows
	}
	return rows
}

// List returns every persisted row for projectID.
func (s *Store) List(ctx context.Context, projectID string) ([]tile.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.byProject[projectID]
	out := make([]tile.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	return out, nil
}

// Insert adds rows to projectID's table, keyed by RelativePath.
func (s *Store) Insert(ctx context.Context, projectID string, rows []tile.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.project(projectID)
	for _, row := range rows {
		table[row.RelativePath] = row
	}
	return nil
}

// Update overwrites existing rows in projectID's table, keyed by RelativePath.
func (s *Store) Update(ctx context.Context, projectID string, rows []tile.Row) error {
	return s.Insert(ctx, projectID, rows)
}

// Delete removes rows by RelativePath from projectID's table.
func (s *Store) Delete(ctx context.Context, projectID string, relativePaths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.project(projectID)
	for _, path := range relativePaths {
		delete(table, path)
	}
	return nil
}

var _ ports.TileStore = (*Store)(nil)

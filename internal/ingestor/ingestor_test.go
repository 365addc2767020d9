package ingestor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mouselight/pipeline-scheduler/internal/config"
	"github.com/mouselight/pipeline-scheduler/internal/domain/project"
	"github.com/mouselight/pipeline-scheduler/internal/domain/tile"
	"github.com/mouselight/pipeline-scheduler/internal/infrastructure/logging"
	"github.com/mouselight/pipeline-scheduler/internal/pathmap"
)

type fakeStore struct {
	mu   sync.Mutex
	rows map[string][]tile.Row
}

func newFakeStore() *fakeStore { return &fakeStore{rows: make(map[string][]tile.Row)} }

func (s *fakeStore) List(ctx context.Context, projectID string) ([]tile.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tile.Row, len(s.rows[projectID]))
	copy(out, s.rows[projectID])
	return out, nil
}

func (s *fakeStore) Insert(ctx context.Context, projectID string, rows []tile.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[projectID] = append(s.rows[projectID], rows...)
	return nil
}

func (s *fakeStore) Update(ctx context.Context, projectID string, rows []tile.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, updated := range rows {
		for i, existing := range s.rows[projectID] {
			if existing.RelativePath == updated.RelativePath {
				s.rows[projectID][i] = updated
			}
		}
	}
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, projectID string, paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	toDelete := make(map[string]bool, len(paths))
	for _, p := range paths {
		toDelete[p] = true
	}
	kept := s.rows[projectID][:0]
	for _, row := range s.rows[projectID] {
		if !toDelete[row.RelativePath] {
			kept = append(kept, row)
		}
	}
	s.rows[projectID] = kept
	return nil
}

type fakeControlPlane struct {
	mu      sync.Mutex
	states  map[string]project.InputSourceState
	extents map[string]project.Extent
}

func newFakeControlPlane() *fakeControlPlane {
	return &fakeControlPlane{
		states:  make(map[string]project.InputSourceState),
		extents: make(map[string]project.Extent),
	}
}

func (c *fakeControlPlane) UpdateProject(ctx context.Context, projectID string, state project.InputSourceState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[projectID] = state
	return nil
}

func (c *fakeControlPlane) UpdateProjectExtent(ctx context.Context, projectID string, extent project.Extent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extents[projectID] = extent
	return nil
}

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.New(logging.Options{Writer: os.Stderr})
	require.NoError(t, err)
	return logger
}

func TestProjectLoopTickInsertsOnFirstRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline-input.json"), []byte(`{
		"pipelineFormat": 1,
		"tiles": [{"id": 1, "relativePath": "a.tif", "isComplete": false}]
	}`), 0o644))

	store := newFakeStore()
	cp := newFakeControlPlane()
	pc := config.ProjectConfig{ID: "proj-1", Name: "P1", RemoteRoot: dir, PollInterval: config.Duration(time.Hour)}

	loop := New(pc, pathmap.New(nil), store, cp, fixedClock{t: time.Now()}, testLogger(t))
	require.NoError(t, loop.RefreshTileStatus(context.Background()))

	rows, err := store.List(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "a.tif", rows[0].RelativePath)

	cp.mu.Lock()
	defer cp.mu.Unlock()
	require.Equal(t, project.InputPipeline, cp.states["proj-1"])
}

func TestProjectLoopTickWritesSnapshot(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline-input.json"), []byte(`{
		"pipelineFormat": 1,
		"tiles": [{"id": 1, "relativePath": "a.tif", "isComplete": true}]
	}`), 0o644))

	store := newFakeStore()
	cp := newFakeControlPlane()
	pc := config.ProjectConfig{ID: "proj-1", Name: "P1", RemoteRoot: dir, PollInterval: config.Duration(time.Hour)}

	loop := New(pc, pathmap.New(nil), store, cp, fixedClock{t: time.Now()}, testLogger(t))
	require.NoError(t, loop.RefreshTileStatus(context.Background()))

	_, err := os.Stat(filepath.Join(dir, "pipeline-storage.json"))
	require.NoError(t, err)
}

func TestProjectLoopUsesPathMapping(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline-input.json"), []byte(`{"pipelineFormat": 1, "tiles": []}`), 0o644))

	store := newFakeStore()
	cp := newFakeControlPlane()
	pc := config.ProjectConfig{ID: "proj-1", Name: "P1", RemoteRoot: "/remote/root", PollInterval: config.Duration(time.Hour)}
	mapper := pathmap.New([]pathmap.Rule{{Remote: "/remote/root", Local: dir}})

	loop := New(pc, mapper, store, cp, fixedClock{t: time.Now()}, testLogger(t))
	require.NoError(t, loop.RefreshTileStatus(context.Background()))

	cp.mu.Lock()
	defer cp.mu.Unlock()
	require.Equal(t, project.InputPipeline, cp.states["proj-1"])
}

// S5 — an inventory document's extents are flushed to persistence before
// tile processing.
func TestProjectLoopTickFlushesExtentBeforeTileProcessing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline-input.json"), []byte(`{
		"pipelineFormat": 1,
		"extents": {"minimumX": 1, "maximumX": 2, "minimumY": 3, "maximumY": 4, "minimumZ": 5, "maximumZ": 6},
		"tiles": [{"id": 1, "relativePath": "a.tif", "isComplete": false}]
	}`), 0o644))

	store := newFakeStore()
	cp := newFakeControlPlane()
	pc := config.ProjectConfig{ID: "proj-1", Name: "P1", RemoteRoot: dir, PollInterval: config.Duration(time.Hour)}

	loop := New(pc, pathmap.New(nil), store, cp, fixedClock{t: time.Now()}, testLogger(t))
	require.NoError(t, loop.RefreshTileStatus(context.Background()))

	cp.mu.Lock()
	defer cp.mu.Unlock()
	require.Equal(t, project.Extent{MinX: 1, MaxX: 2, MinY: 3, MaxY: 4, MinZ: 5, MaxZ: 6}, cp.extents["proj-1"])
}

func TestProjectLoopTickSkipsExtentFlushWhenAbsent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline-input.json"), []byte(`{
		"pipelineFormat": 1,
		"tiles": [{"id": 1, "relativePath": "a.tif", "isComplete": false}]
	}`), 0o644))

	store := newFakeStore()
	cp := newFakeControlPlane()
	pc := config.ProjectConfig{ID: "proj-1", Name: "P1", RemoteRoot: dir, PollInterval: config.Duration(time.Hour)}

	loop := New(pc, pathmap.New(nil), store, cp, fixedClock{t: time.Now()}, testLogger(t))
	require.NoError(t, loop.RefreshTileStatus(context.Background()))

	cp.mu.Lock()
	defer cp.mu.Unlock()
	_, ok := cp.extents["proj-1"]
	require.False(t, ok)
}

func TestProjectLoopRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := newFakeStore()
	cp := newFakeControlPlane()
	pc := config.ProjectConfig{ID: "proj-1", Name: "P1", RemoteRoot: dir, PollInterval: config.Duration(10 * time.Millisecond)}

	loop := New(pc, pathmap.New(nil), store, cp, fixedClock{t: time.Now()}, testLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("ProjectLoop.Run did not stop after context cancellation")
	}
}

package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mouselight/pipeline-scheduler/internal/domain/project"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// S1 — first ingest, pipeline format, backslash path normalization.
func TestReadPipelineFormatFirstIngest(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, pipelineInputFilename, `{
		"pipelineFormat": 1,
		"tiles": [
			{"id": 1, "relativePath": "a\\b.tif", "isComplete": false},
			{"id": 2, "relativePath": "c/d.tif", "isComplete": true}
		]
	}`)

	res, err := NewReader().Read("proj-1", dir)
	require.NoError(t, err)
	require.Equal(t, project.InputPipeline, res.State)
	require.Len(t, res.Tiles, 2)
	require.Equal(t, "a/b.tif", res.Tiles[0].RelativePath)
	require.False(t, res.Tiles[0].IsComplete)
	require.Equal(t, "c/d.tif", res.Tiles[1].RelativePath)
	require.True(t, res.Tiles[1].IsComplete)
	require.Equal(t, "b.tif", res.Tiles[0].TileName)
}

// S3 — missing root.
func TestReadMissingRootYieldsBadLocation(t *testing.T) {
	t.Parallel()
	res, err := NewReader().Read("proj-1", filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	require.Equal(t, project.InputBadLocation, res.State)
	require.Empty(t, res.Tiles)
}

func TestReadNoInventoryFileYieldsMissing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	res, err := NewReader().Read("proj-1", dir)
	require.NoError(t, err)
	require.Equal(t, project.InputMissing, res.State)
	require.Empty(t, res.Tiles)
}

// S5 — legacy dashboard format with extents and one tileMap group.
func TestReadDashboardFormatWithExtents(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, dashboardFilename, `{
		"monitor": {"extents": {"minimumX":0,"maximumX":10,"minimumY":0,"maximumY":20,"minimumZ":0,"maximumZ":1}},
		"tileMap": {
			"group-a": [
				{"id": 7, "relativePath": "x/1.tif", "contents": {"latticePosition": {"x":1,"y":2,"z":0}, "latticeStep": {"x":0.5,"y":0.5,"z":1}}, "isComplete": true}
			]
		}
	}`)

	res, err := NewReader().Read("proj-1", dir)
	require.NoError(t, err)
	require.Equal(t, project.InputDashboard, res.State)
	require.True(t, res.HasExtent)
	require.Equal(t, 20.0, res.Extent.MaxY)
	require.Len(t, res.Tiles, 1)
	require.Equal(t, "x/1.tif", res.Tiles[0].RelativePath)
	require.NotNil(t, res.Tiles[0].LatX)
	require.Equal(t, 1.0, *res.Tiles[0].LatX)
}

func TestReadPreferstPipelineOverDashboardWhenBothPresent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, dashboardFilename, `{"monitor":{},"tileMap":{}}`)
	writeFile(t, dir, pipelineInputFilename, `{"pipelineFormat": true, "tiles": []}`)

	res, err := NewReader().Read("proj-1", dir)
	require.NoError(t, err)
	require.Equal(t, project.InputPipeline, res.State)
}

func TestReadMissingPositionAndStepDefaultToNil(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, pipelineInputFilename, `{
		"pipelineFormat": 1,
		"tiles": [{"id": 1, "relativePath": "a.tif", "isComplete": false}]
	}`)

	res, err := NewReader().Read("proj-1", dir)
	require.NoError(t, err)
	require.Nil(t, res.Tiles[0].LatX)
	require.Nil(t, res.Tiles[0].StepX)
}

func TestReadMalformedJSONReturnsParseError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, pipelineInputFilename, `{not valid json`)

	_, err := NewReader().Read("proj-1", dir)
	require.Error(t, err)
}

func TestReadPipelineTileWithEmptyRelativePathIsRejected(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, pipelineInputFilename, `{
		"pipelineFormat": 1,
		"tiles": [{"id": 1, "relativePath": "", "isComplete": false}]
	}`)

	_, err := NewReader().Read("proj-1", dir)
	require.Error(t, err)
}

func TestReadDashboardTileWithEmptyRelativePathIsRejected(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, dashboardFilename, `{
		"monitor": {},
		"tileMap": {"a": [{"id": 1, "relativePath": "", "isComplete": false}]}
	}`)

	_, err := NewReader().Read("proj-1", dir)
	require.Error(t, err)
}

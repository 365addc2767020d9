// Package inventory implements the Inventory Reader (C2): locating and
// parsing a project's tile-inventory document and classifying its
// input-source state (spec §4.2).
package inventory

import (
	"os"
	"path/filepath"

	"github.com/mouselight/pipeline-scheduler/internal/domain/project"
	"github.com/mouselight/pipeline-scheduler/internal/domain/tile"
	apperrors "github.com/mouselight/pipeline-scheduler/pkg/errors"
)

const (
	pipelineInputFilename = "pipeline-input.json"
	dashboardFilename     = "dashboard.json"
)

// Result is the outcome of one Inventory Reader pass.
type Result struct {
	State  project.InputSourceState
	Tiles  []tile.Tile
	Extent project.Extent
	HasExtent bool
}

// Reader locates and parses the inventory document at a (locally mapped)
// project root.
type Reader struct{}

// NewReader constructs a Reader. It holds no state - all inputs arrive
// through Read's parameters.
func NewReader() *Reader { return &Reader{} }

// Read implements the procedure in spec §4.2. root must already have been
// passed through the Path Mapper (C1).
func (r *Reader) Read(projectID, root string) (Result, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return Result{State: project.InputBadLocation}, nil
	}

	pipelinePath := filepath.Join(root, pipelineInputFilename)
	dashboardPath := filepath.Join(root, dashboardFilename)

	var (
		selectedPath string
		state        project.InputSourceState
	)
	switch {
	case fileExists(pipelinePath):
		selectedPath, state = pipelinePath, project.InputPipeline
	case fileExists(dashboardPath):
		selectedPath, state = dashboardPath, project.InputDashboard
	default:
		return Result{State: project.InputMissing}, nil
	}

	raw, err := os.ReadFile(selectedPath)
	if err != nil {
		return Result{}, apperrors.NewInventoryParseError(projectID, selectedPath, err)
	}

	doc, err := parseDocument(raw)
	if err != nil {
		return Result{}, apperrors.NewInventoryParseError(projectID, selectedPath, err)
	}

	extent, hasExtent := doc.Extent()
	return Result{
		State:     state,
		Tiles:     doc.Tiles(),
		Extent:    extent,
		HasExtent: hasExtent,
	}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

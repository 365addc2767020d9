package inventory

import (
	"encoding/json"

	"github.com/mouselight/pipeline-scheduler/internal/domain/project"
	"github.com/mouselight/pipeline-scheduler/internal/domain/tile"
)

// Document is the tagged-variant inventory shape from spec §9's design
// notes: Inventory = Pipeline{extents?, tiles[]} | Dashboard{extents?,
// tiles[]}, where a Dashboard's tiles are its tileMap groups concatenated in
// sorted group-name order. Dispatch between variants is by content, not by the filename
// that selected the document (spec §4.2).
type Document interface {
	isDocument()
	// Tiles returns the parsed, order-preserving, normalized tile vector.
	Tiles() []tile.Tile
	// Extent reports the document's sample-extent rectangle, if present.
	Extent() (project.Extent, bool)
}

// PipelineDocument is the "pipelineFormat" variant (spec §6).
type PipelineDocument struct {
	extent      project.Extent
	hasExtent   bool
	tiles       []tile.Tile
}

func (PipelineDocument) isDocument() {}

// Tiles implements Document.
func (d PipelineDocument) Tiles() []tile.Tile { return d.tiles }

// Extent implements Document.
func (d PipelineDocument) Extent() (project.Extent, bool) { return d.extent, d.hasExtent }

// DashboardDocument is the legacy "monitor"/"tileMap" variant (spec §6).
type DashboardDocument struct {
	extent    project.Extent
	hasExtent bool
	tiles     []tile.Tile
}

func (DashboardDocument) isDocument() {}

// Tiles implements Document.
func (d DashboardDocument) Tiles() []tile.Tile { return d.tiles }

// Extent implements Document.
func (d DashboardDocument) Extent() (project.Extent, bool) { return d.extent, d.hasExtent }

// --- wire shapes, unexported ---

type extentsJSON struct {
	MinimumX *float64 `json:"minimumX"`
	MaximumX *float64 `json:"maximumX"`
	MinimumY *float64 `json:"minimumY"`
	MaximumY *float64 `json:"maximumY"`
	MinimumZ *float64 `json:"minimumZ"`
	MaximumZ *float64 `json:"maximumZ"`
}

func (e *extentsJSON) toExtent() project.Extent {
	if e == nil {
		return project.Extent{}
	}
	get := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	return project.Extent{
		MinX: get(e.MinimumX), MaxX: get(e.MaximumX),
		MinY: get(e.MinimumY), MaxY: get(e.MaximumY),
		MinZ: get(e.MinimumZ), MaxZ: get(e.MaximumZ),
	}
}

type sentinelEnvelope struct {
	PipelineFormat json.RawMessage `json:"pipelineFormat"`
}

// hasPipelineFormat reports whether raw carries a "pipelineFormat" field,
// the sole content-based dispatch signal per spec §4.2.
func hasPipelineFormat(raw []byte) bool {
	var env sentinelEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false
	}
	return env.PipelineFormat != nil
}

type pointJSON struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

type pipelineTileJSON struct {
	ID           *int64     `json:"id"`
	RelativePath string     `json:"relativePath" validate:"required"`
	Position     *pointJSON `json:"position"`
	Step         *pointJSON `json:"step"`
	IsComplete   bool       `json:"isComplete"`
}

type pipelineDocJSON struct {
	PipelineFormat json.RawMessage    `json:"pipelineFormat"`
	Extents        *extentsJSON       `json:"extents"`
	Tiles          []pipelineTileJSON `json:"tiles"`
}

type dashboardTileContentsJSON struct {
	LatticePosition *pointJSON `json:"latticePosition"`
	LatticeStep     *pointJSON `json:"latticeStep"`
}

type dashboardTileJSON struct {
	ID           *int64                    `json:"id"`
	RelativePath string                    `json:"relativePath" validate:"required"`
	Contents     dashboardTileContentsJSON `json:"contents"`
	IsComplete   bool                      `json:"isComplete"`
}

type monitorJSON struct {
	Extents *extentsJSON `json:"extents"`
}

type dashboardDocJSON struct {
	Monitor monitorJSON                      `json:"monitor"`
	TileMap map[string][]dashboardTileJSON   `json:"tileMap"`
}

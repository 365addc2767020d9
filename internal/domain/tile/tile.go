// Package tile defines the canonical tile and tile-status row types shared by
// the inventory reader, muxer, and snapshot writer.
package tile

import "time"

// StageStatus enumerates the lifecycle states of a tile at a single
// processing stage.
type StageStatus int

const (
	StatusIncomplete StageStatus = 1
	StatusQueued     StageStatus = 2
	StatusProcessing StageStatus = 3
	StatusComplete   StageStatus = 4
	StatusFailed     StageStatus = 5
	StatusCanceled   StageStatus = 6
)

// String renders the status for logging.
func (s StageStatus) String() string {
	switch s {
	case StatusIncomplete:
		return "incomplete"
	case StatusQueued:
		return "queued"
	case StatusProcessing:
		return "processing"
	case StatusComplete:
		return "complete"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// FromComplete maps the inventory's boolean isComplete flag onto a
// StageStatus, per spec §3 and §4.2.
func FromComplete(isComplete bool) StageStatus {
	if isComplete {
		return StatusComplete
	}
	return StatusIncomplete
}

// Tile is the canonical, parsed representation of one inventory entry. It is
// the output of the Inventory Reader (C2) and the input to the Tile Muxer
// (C3).
type Tile struct {
	RelativePath        string // POSIX-normalized, primary key within a project
	Index               *int64
	TileName            string
	LatX, LatY, LatZ    *float64
	StepX, StepY, StepZ *float64
	IsComplete          bool
}

// Row is a tile-status row persisted in the stage-zero tile-status table. It
// extends Tile with stage lifecycle and accounting fields.
type Row struct {
	RelativePath        string
	Index               *int64
	TileName            string
	LatX, LatY, LatZ    *float64
	StepX, StepY, StepZ *float64

	PrevStageStatus StageStatus
	ThisStageStatus StageStatus

	Duration   float64
	CPUHigh    float64
	MemoryHigh float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRowFromTile builds a fresh Row for a tile observed for the first time,
// per spec §4.3 (to_insert semantics).
func NewRowFromTile(t Tile, now time.Time) Row {
	status := FromComplete(t.IsComplete)
	return Row{
		RelativePath:    t.RelativePath,
		Index:           t.Index,
		TileName:        t.TileName,
		LatX:            t.LatX,
		LatY:            t.LatY,
		LatZ:            t.LatZ,
		StepX:           t.StepX,
		StepY:           t.StepY,
		StepZ:           t.StepZ,
		PrevStageStatus: status,
		ThisStageStatus: status,
		Duration:        0,
		CPUHigh:         0,
		MemoryHigh:      0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// MergeTile overwrites the mutable fields of an existing Row with a freshly
// observed Tile, per spec §4.3 (to_update semantics). The caller is
// responsible for evaluating the update predicate before calling MergeTile.
func MergeTile(existing Row, t Tile, now time.Time) Row {
	status := FromComplete(t.IsComplete)
	existing.TileName = t.TileName
	existing.Index = t.Index
	// Stage zero keeps prev/this in lockstep, mirroring NewRowFromTile: both
	// fields always reflect the latest parsed isComplete value. The update
	// predicate that decides whether MergeTile runs at all (see package mux)
	// compares the row's old PrevStageStatus against this candidate status,
	// not the row's old ThisStageStatus - that asymmetry is intentional.
	existing.PrevStageStatus = status
	existing.ThisStageStatus = status
	existing.LatX = t.LatX
	existing.LatY = t.LatY
	existing.LatZ = t.LatZ
	existing.StepX = t.StepX
	existing.StepY = t.StepY
	existing.StepZ = t.StepZ
	existing.UpdatedAt = now
	return existing
}

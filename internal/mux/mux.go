// Package mux implements the Tile Muxer (C3): diffing a freshly parsed tile
// list against the persisted tile table and producing an insert/update/
// delete plan, guarded against mass-deletion anomalies (spec §4.3).
package mux

import (
	"github.com/mouselight/pipeline-scheduler/internal/domain/tile"
	"github.com/mouselight/pipeline-scheduler/internal/ports"
	apperrors "github.com/mouselight/pipeline-scheduler/pkg/errors"
)

// massDeletionThreshold is the guard from spec §4.3 and the boundary
// scenario in §8 property 5: a delta of 1000 applies, 1001 refuses.
const massDeletionThreshold = 1000

// Plan is the ordered insert/update/delete plan produced by one mux pass.
// Reset is reserved for cross-stage reset cascades invoked by surrounding
// code; stage zero never populates it (spec §4.3).
type Plan struct {
	Insert []tile.Row
	Update []tile.Row
	Delete []string
	Reset  []string
}

// Mux is pure given its inputs and a clock collaborator (spec §9: "clock
// injection"); it never touches storage. parsed is the Inventory Reader's
// output (I); persisted is the current stage-zero tile vector (O).
func Mux(projectID string, parsed []tile.Tile, persisted []tile.Row, clock ports.Clock) (*Plan, error) {
	if len(persisted)-len(parsed) > massDeletionThreshold {
		return nil, apperrors.NewGuardError(projectID, len(persisted), len(parsed))
	}

	now := clock.Now()

	// The mux deduplicates I by relative_path; later entries in document
	// order win, but insert/update ordering follows first-occurrence order
	// (spec §4.3: "order follows the input ordering of I").
	byPath := make(map[string]tile.Tile, len(parsed))
	order := make([]string, 0, len(parsed))
	for _, t := range parsed {
		if _, seen := byPath[t.RelativePath]; !seen {
			order = append(order, t.RelativePath)
		}
		byPath[t.RelativePath] = t
	}

	existing := make(map[string]tile.Row, len(persisted))
	for _, row := range persisted {
		existing[row.RelativePath] = row
	}

	plan := &Plan{}

	for _, path := range order {
		t := byPath[path]
		if row, ok := existing[path]; ok {
			candidateStatus := tile.FromComplete(t.IsComplete)
			// Intentionally asymmetric per spec §9's open question: compares
			// the row's OLD prev_stage_status to the NEW candidate
			// this_stage_status, not old vs old this_stage_status.
			if row.PrevStageStatus != candidateStatus {
				plan.Update = append(plan.Update, tile.MergeTile(row, t, now))
			}
		} else {
			plan.Insert = append(plan.Insert, tile.NewRowFromTile(t, now))
		}
	}

	for _, row := range persisted {
		if _, ok := byPath[row.RelativePath]; !ok {
			plan.Delete = append(plan.Delete, row.RelativePath)
		}
	}

	return plan, nil
}

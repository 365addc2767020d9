package ports

import (
	"context"

	"github.com/mouselight/pipeline-scheduler/internal/domain/completion"
)

// StageScheduler is the capability set every per-stage scheduler implements
// (spec §9: "polymorphism over the scheduler base class"). Stage zero - the
// inventory-synchronization stage specified by this module (internal/ingestor)
// - is one concrete StageScheduler among several; sibling stages own their
// own task-dispatch logic out of scope here.
type StageScheduler interface {
	// RefreshTileStatus re-derives this stage's view of tile status, e.g.
	// from a completion record or an inventory pass.
	RefreshTileStatus(ctx context.Context) error

	// MuxInputOutputTiles reconciles this stage's persisted tile table
	// against its upstream input, producing and applying an insert/
	// update/delete plan. For stage zero this is the Project Ingestor
	// Loop's per-tick work (spec §4.5).
	MuxInputOutputTiles(ctx context.Context) error

	// CreateOutputStageConnector returns the identifier of the next stage
	// in the pipeline that should consume this stage's completed tiles.
	// Reserved for cross-stage reset cascades (spec §4.3: "to_reset");
	// stage zero's implementation (internal/ingestor) returns "".
	CreateOutputStageConnector() string
}

// SchedulerHub is the external-facing facade (C8) that routes completion
// records to the per-stage scheduler owning a given task (spec §4.8).
type SchedulerHub interface {
	// OnTaskExecutionComplete looks up the scheduler owning
	// rec.PipelineStageID and hands it the record. It returns false - never
	// an error - when no scheduler is registered for that stage, so the
	// Completion Dispatcher (C7) retries after the control plane has a
	// chance to register one.
	OnTaskExecutionComplete(ctx context.Context, rec completion.Record) bool
}

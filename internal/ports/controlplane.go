package ports

import (
	"context"

	"github.com/mouselight/pipeline-scheduler/internal/domain/completion"
	"github.com/mouselight/pipeline-scheduler/internal/domain/project"
)

// ControlPlane is the set of methods this module calls on the external
// HTTP/GraphQL control plane (spec §6): persisting a project's input-source
// classification and its sample-extent rectangle. All other project queries
// are out of scope - they read from the local database directly.
type ControlPlane interface {
	UpdateProject(ctx context.Context, projectID string, state project.InputSourceState) error

	// UpdateProjectExtent persists a project's sample-extent rectangle,
	// parsed from an inventory document's optional "extents" field. It must
	// be called, and observed to complete, before the tick's tile mux/apply
	// step runs (spec §4.2, §4.5 scenario S5: "project extents updated...
	// before tile processing").
	UpdateProjectExtent(ctx context.Context, projectID string, extent project.Extent) error
}

// MetricsSink is the write-only, concurrent-safe time-series writer (spec
// §6). It must be invoked before a completion message is acknowledged.
type MetricsSink interface {
	WriteTaskExecution(ctx context.Context, rec completion.Record) error
}

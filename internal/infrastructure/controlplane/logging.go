// Package controlplane provides the default ports.ControlPlane adapter: a
// structured-log sink, mirroring the teacher's LoggingPublisher domain-event
// adapter. The real HTTP/GraphQL control plane is an external collaborator
// out of scope per spec §1; a production deployment swaps this adapter for
// one that actually calls it.
package controlplane

import (
	"context"

	"github.com/mouselight/pipeline-scheduler/internal/domain/project"
	"github.com/mouselight/pipeline-scheduler/internal/ports"
)

// LoggingControlPlane records project input-state transitions as structured
// log entries instead of calling a remote control plane.
type LoggingControlPlane struct {
	logger ports.Logger
}

// NewLoggingControlPlane constructs a LoggingControlPlane.
func NewLoggingControlPlane(logger ports.Logger) *LoggingControlPlane {
	return &LoggingControlPlane{logger: logger}
}

// UpdateProject logs the classification instead of persisting it remotely.
func (c *LoggingControlPlane) UpdateProject(ctx context.Context, projectID string, state project.InputSourceState) error {
	if c == nil || c.logger == nil {
		return nil
	}
	c.logger.Info(ctx, "project input state updated", "project_id", projectID, "state", state.String())
	return nil
}

// UpdateProjectExtent logs the sample-extent rectangle instead of persisting
// it remotely.
func (c *LoggingControlPlane) UpdateProjectExtent(ctx context.Context, projectID string, extent project.Extent) error {
	if c == nil || c.logger == nil {
		return nil
	}
	c.logger.Info(ctx, "project extent updated", "project_id", projectID,
		"min_x", extent.MinX, "max_x", extent.MaxX,
		"min_y", extent.MinY, "max_y", extent.MaxY,
		"min_z", extent.MinZ, "max_z", extent.MaxZ)
	return nil
}

var _ ports.ControlPlane = (*LoggingControlPlane)(nil)

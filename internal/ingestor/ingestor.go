// Package ingestor implements the Project Input Ingestor: the Project
// Ingestor Loop (C5) driving the Path Mapper (C1), Inventory Reader (C2),
// Tile Muxer (C3), and Inventory Writer (C4) on a periodic per-project
// cadence (spec §4.5, §5, §7).
package ingestor

import (
	"context"
	"time"

	"github.com/mouselight/pipeline-scheduler/internal/config"
	"github.com/mouselight/pipeline-scheduler/internal/domain/project"
	"github.com/mouselight/pipeline-scheduler/internal/inventory"
	"github.com/mouselight/pipeline-scheduler/internal/mux"
	"github.com/mouselight/pipeline-scheduler/internal/pathmap"
	"github.com/mouselight/pipeline-scheduler/internal/ports"
	"github.com/mouselight/pipeline-scheduler/internal/snapshot"
	apperrors "github.com/mouselight/pipeline-scheduler/pkg/errors"
)

// ProjectLoop drives one project's ingestor ticks. It implements
// ports.StageScheduler, making stage zero one concrete scheduler among
// several registered with the Scheduler Hub (spec §9).
type ProjectLoop struct {
	projectID    string
	mapper       *pathmap.Mapper
	remoteRoot   string
	pollInterval time.Duration

	store        ports.TileStore
	controlPlane ports.ControlPlane
	clock        ports.Clock
	logger       ports.Logger

	reader *inventory.Reader
}

// New constructs a ProjectLoop for one project configuration.
func New(pc config.ProjectConfig, mapper *pathmap.Mapper, store ports.TileStore, cp ports.ControlPlane, clock ports.Clock, logger ports.Logger) *ProjectLoop {
	return &ProjectLoop{
		projectID:    pc.ID,
		mapper:       mapper,
		remoteRoot:   pc.RemoteRoot,
		pollInterval: pc.PollInterval.Value(),
		store:        store,
		controlPlane: cp,
		clock:        clock,
		logger:       logger,
		reader:       inventory.NewReader(),
	}
}

// Run blocks, driving one tick immediately and then on every pollInterval,
// until ctx is canceled (the exit_requested signal from spec §5 is modeled
// as context cancellation). Ticks never overlap: Run is single-goroutine and
// a tick always runs to completion before the next fires.
func (l *ProjectLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	if err := l.tick(ctx); err != nil {
		l.logger.Error(ctx, "ingestor tick failed", "project_id", l.projectID, "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := l.tick(ctx); err != nil {
				l.logger.Error(ctx, "ingestor tick failed", "project_id", l.projectID, "error", err)
			}
		}
	}
}

// tick implements spec §4.5's four steps. A tripped mass-deletion guard is
// swallowed here (logged, tick skipped) rather than propagated, matching
// "skip this tick without writing to disk or DB".
func (l *ProjectLoop) tick(ctx context.Context) error {
	ctx = ports.WithCorrelationID(ctx, ports.GenerateCorrelationID())
	log := l.logger.With("project_id", l.projectID, "correlation_id", ports.GetCorrelationID(ctx))

	localRoot := l.mapper.Map(l.remoteRoot)

	result, err := l.reader.Read(l.projectID, localRoot)
	if err != nil {
		return err
	}

	if err := l.controlPlane.UpdateProject(ctx, l.projectID, result.State); err != nil {
		log.Warn(ctx, "failed to publish project input state", "error", err)
	}

	// A missing root or a missing inventory document ends the tick once the
	// state is published: the tile table and the snapshot are left as they are.
	if result.State == project.InputBadLocation || result.State == project.InputMissing {
		log.Info(ctx, "no inventory document, skipping tick", "state", result.State.String())
		return nil
	}

	// The extent, if present, must be flushed to persistence before tile
	// processing (spec §4.2, §4.5 scenario S5).
	if result.HasExtent {
		if err := l.controlPlane.UpdateProjectExtent(ctx, l.projectID, result.Extent); err != nil {
			log.Warn(ctx, "failed to publish project extent", "error", err)
		}
	}

	persisted, err := l.store.List(ctx, l.projectID)
	if err != nil {
		return apperrors.NewStoreError(l.projectID, "list", err)
	}

	plan, err := mux.Mux(l.projectID, result.Tiles, persisted, l.clock)
	if err != nil {
		if _, ok := err.(*apperrors.GuardError); ok {
			log.Warn(ctx, "mass-deletion guard tripped, skipping tick", "error", err)
			return nil
		}
		return err
	}

	if len(plan.Insert) > 0 {
		if err := l.store.Insert(ctx, l.projectID, plan.Insert); err != nil {
			return apperrors.NewStoreError(l.projectID, "insert", err)
		}
	}
	if len(plan.Update) > 0 {
		if err := l.store.Update(ctx, l.projectID, plan.Update); err != nil {
			return apperrors.NewStoreError(l.projectID, "update", err)
		}
	}
	if len(plan.Delete) > 0 {
		if err := l.store.Delete(ctx, l.projectID, plan.Delete); err != nil {
			return apperrors.NewStoreError(l.projectID, "delete", err)
		}
	}

	rows, err := l.store.List(ctx, l.projectID)
	if err != nil {
		return apperrors.NewStoreError(l.projectID, "list", err)
	}
	if err := snapshot.Write(localRoot, rows); err != nil {
		log.Warn(ctx, "failed to write recovery snapshot", "error", err)
	}

	log.Info(ctx, "ingestor tick complete",
		"state", result.State.String(),
		"inserted", len(plan.Insert), "updated", len(plan.Update), "deleted", len(plan.Delete))
	return nil
}

// RefreshTileStatus satisfies ports.StageScheduler by running one ad-hoc
// tick outside the ticker cadence, e.g. when the Scheduler Hub routes a
// completion record to stage zero.
func (l *ProjectLoop) RefreshTileStatus(ctx context.Context) error {
	return l.tick(ctx)
}

// MuxInputOutputTiles satisfies ports.StageScheduler; for stage zero this is
// the same work as a regular tick (spec §9).
func (l *ProjectLoop) MuxInputOutputTiles(ctx context.Context) error {
	return l.tick(ctx)
}

// CreateOutputStageConnector satisfies ports.StageScheduler. Stage zero
// returns "": a ProjectLoop holds no reference to a downstream stage.
func (l *ProjectLoop) CreateOutputStageConnector() string { return "" }

var _ ports.StageScheduler = (*ProjectLoop)(nil)

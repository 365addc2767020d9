package ingestor

import (
	"context"
	"sync"

	"github.com/mouselight/pipeline-scheduler/internal/config"
	"github.com/mouselight/pipeline-scheduler/internal/pathmap"
	"github.com/mouselight/pipeline-scheduler/internal/ports"
)

// Supervisor fans one goroutine out per configured project, matching spec
// §5's "distinct projects run in parallel and share only the database".
type Supervisor struct {
	loops []*ProjectLoop
}

// NewSupervisor builds one ProjectLoop per project in cfg, sharing a single
// path mapper, tile store, control plane, clock, and logger.
func NewSupervisor(cfg *config.Config, store ports.TileStore, cp ports.ControlPlane, clock ports.Clock, logger ports.Logger) *Supervisor {
	mapper := pathmap.New(cfg.PathMapping)

	loops := make([]*ProjectLoop, 0, len(cfg.Projects))
	for _, pc := range cfg.Projects {
		loops = append(loops, New(pc, mapper, store, cp, clock, logger))
	}
	return &Supervisor{loops: loops}
}

// Loops returns the per-project loops, so callers can register each one
// with the Scheduler Hub before starting Run.
func (s *Supervisor) Loops() []*ProjectLoop {
	return s.loops
}

// Run starts every project's loop and blocks until ctx is canceled and every
// loop has returned.
func (s *Supervisor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, loop := range s.loops {
		wg.Add(1)
		go func(l *ProjectLoop) {
			defer wg.Done()
			_ = l.Run(ctx)
		}(loop)
	}
	wg.Wait()
}

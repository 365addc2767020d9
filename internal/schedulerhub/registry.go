// Package schedulerhub implements the Scheduler Hub (C8): an external-facing
// facade that routes completion records to the per-stage scheduler owning a
// given task (spec §4.8).
package schedulerhub

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mouselight/pipeline-scheduler/internal/domain/completion"
	"github.com/mouselight/pipeline-scheduler/internal/ports"
)

// Hub is a concurrency-safe registry of per-stage schedulers keyed by stage
// id, mirroring the teacher's plugin registry's RWMutex-guarded map idiom
// but without a dependency graph: stages form a linear sequence, not a DAG,
// so there is nothing here to topologically sort or cycle-check.
type Hub struct {
	mu         sync.RWMutex
	schedulers map[string]ports.StageScheduler
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{schedulers: make(map[string]ports.StageScheduler)}
}

// Register associates a stage id with its StageScheduler. Registering a
// second scheduler under an already-registered stage id is an error; the
// control plane is expected to register each stage exactly once.
func (h *Hub) Register(stageID string, s ports.StageScheduler) error {
	if s == nil {
		return fmt.Errorf("schedulerhub: nil scheduler for stage %q", stageID)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.schedulers[stageID]; exists {
		return fmt.Errorf("schedulerhub: stage %q already registered", stageID)
	}
	h.schedulers[stageID] = s
	return nil
}

// Deregister removes a stage's scheduler, e.g. when a stage is torn down.
func (h *Hub) Deregister(stageID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.schedulers, stageID)
}

// StageIDs returns the currently registered stage ids in sorted order.
func (h *Hub) StageIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.schedulers))
	for id := range h.schedulers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OnTaskExecutionComplete looks up the scheduler owning rec.PipelineStageID
// and hands it the record. A lookup miss returns false - not an error - so
// the Completion Dispatcher retries later rather than failing the delivery
// (spec §4.8).
func (h *Hub) OnTaskExecutionComplete(ctx context.Context, rec completion.Record) bool {
	h.mu.RLock()
	s, ok := h.schedulers[rec.PipelineStageID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	if err := s.RefreshTileStatus(ctx); err != nil {
		return false
	}
	return true
}

var _ ports.SchedulerHub = (*Hub)(nil)

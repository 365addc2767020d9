// Package dispatch implements the Completion Dispatcher (C7): handing a
// completion record to the metrics sink and the Scheduler Hub, retrying the
// hub call until it is handled or the caller's context is canceled (spec
// §4.7, §5, §7).
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/mouselight/pipeline-scheduler/internal/domain/completion"
	"github.com/mouselight/pipeline-scheduler/internal/ports"
	apperrors "github.com/mouselight/pipeline-scheduler/pkg/errors"
)

// retryInterval is the fixed wait between hub-handling attempts (spec §4.7:
// "wait 10 seconds and retry").
const retryInterval = 10 * time.Second

// Dispatcher wires one completion record through the metrics sink and the
// scheduler hub.
type Dispatcher struct {
	metrics ports.MetricsSink
	hub     ports.SchedulerHub
	logger  ports.Logger

	retryInterval time.Duration

	mu          sync.Mutex
	metricsSent map[string]struct{}
}

// New constructs a Dispatcher with the default 10-second retry interval.
func New(metrics ports.MetricsSink, hub ports.SchedulerHub, logger ports.Logger) *Dispatcher {
	return &Dispatcher{
		metrics:       metrics,
		hub:           hub,
		logger:        logger,
		retryInterval: retryInterval,
		metricsSent:   make(map[string]struct{}),
	}
}

// Dispatch implements spec §4.7's three steps. It blocks, retrying the hub
// call every 10 seconds, until the hub reports the record handled or ctx is
// canceled. A canceled context returns an error so the Queue Consumer
// leaves the delivery un-acked (spec §5: "interruptible retries").
//
// Idempotency is at (record id, stage id) granularity (rec.DedupKey()): if
// the broker redelivers a record this Dispatcher already wrote metrics for
// - a retry loop that outlasted a channel reconnect - the metrics write is
// skipped and only the hub call is retried.
func (d *Dispatcher) Dispatch(ctx context.Context, rec completion.Record) error {
	key := rec.DedupKey()

	if !d.alreadySentMetrics(key) {
		if err := d.metrics.WriteTaskExecution(ctx, rec); err != nil {
			return apperrors.NewDispatchError(rec.ID, rec.PipelineStageID, "metrics", err)
		}
		d.markMetricsSent(key)
	}

	for {
		if d.hub.OnTaskExecutionComplete(ctx, rec) {
			return nil
		}

		d.logger.Warn(ctx, "completion record not handled, retrying",
			"record_id", rec.ID, "stage_id", rec.PipelineStageID)

		timer := time.NewTimer(d.retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return apperrors.NewDispatchError(rec.ID, rec.PipelineStageID, "hub", ctx.Err())
		case <-timer.C:
		}
	}
}

func (d *Dispatcher) alreadySentMetrics(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.metricsSent[key]
	return ok
}

func (d *Dispatcher) markMetricsSent(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metricsSent[key] = struct{}{}
}

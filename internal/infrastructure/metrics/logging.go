// Package metrics provides the default ports.MetricsSink adapter: a
// structured-log sink standing in for the out-of-scope time-series writer
// (spec §6). It is concurrent-safe by construction (the underlying logger
// is), satisfying the write-only/concurrent-safe contract.
package metrics

import (
	"context"

	"github.com/mouselight/pipeline-scheduler/internal/domain/completion"
	"github.com/mouselight/pipeline-scheduler/internal/ports"
)

// LoggingSink records completion-record executions as structured log
// entries instead of writing to a remote time-series store.
type LoggingSink struct {
	logger ports.Logger
}

// NewLoggingSink constructs a LoggingSink.
func NewLoggingSink(logger ports.Logger) *LoggingSink {
	return &LoggingSink{logger: logger}
}

// WriteTaskExecution logs the execution record. Repeated calls for the same
// (record id, stage id) are safe: each one logs one more entry and has no
// other effect.
func (s *LoggingSink) WriteTaskExecution(ctx context.Context, rec completion.Record) error {
	if s == nil || s.logger == nil {
		return nil
	}
	s.logger.Info(ctx, "task execution recorded",
		"record_id", rec.ID, "stage_id", rec.PipelineStageID, "worker_id", rec.WorkerID,
		"cpu_time_seconds", rec.CPUTimeSeconds, "max_memory_mb", rec.MaxMemoryMB, "exit_code", rec.ExitCode)
	return nil
}

var _ ports.MetricsSink = (*LoggingSink)(nil)

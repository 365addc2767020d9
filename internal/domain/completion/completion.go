// Package completion defines the task-execution completion record that
// arrives from workers via the durable message queue (spec §3, §6).
package completion

import "time"

// Record is a single task-execution completion report. Fields mirror the
// JSON payload produced by workers; submitted/started/completed are
// re-materialized as absolute timestamps by the queue consumer (spec §4.6).
type Record struct {
	ID                   string    `json:"id"`
	WorkerID             string    `json:"worker_id"`
	TileID               string    `json:"tile_id"`
	PipelineStageID      string    `json:"pipeline_stage_id"`
	ExecutionStatusCode  int       `json:"execution_status_code"`
	CompletionStatusCode int       `json:"completion_status_code"`
	SubmittedAt          time.Time `json:"submitted_at"`
	StartedAt            time.Time `json:"started_at"`
	CompletedAt          time.Time `json:"completed_at"`
	CPUTimeSeconds       float64   `json:"cpu_time_seconds"`
	MaxCPUPercent        float64   `json:"max_cpu_percent"`
	MaxMemoryMB          float64   `json:"max_memory_mb"`
	ExitCode             int       `json:"exit_code"`
}

// DedupKey returns the (record id, stage id) granularity key that dispatch
// idempotency is defined over (spec §4.7).
func (r Record) DedupKey() string {
	return r.ID + "/" + r.PipelineStageID
}

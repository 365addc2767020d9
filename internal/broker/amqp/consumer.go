// Package amqp implements the Queue Consumer (C6): a durable-queue
// consumer over the AMQP wire protocol that hands decoded completion
// records to the Completion Dispatcher (C7) and acknowledges only after
// confirmed handling (spec §4.6, §5, §7).
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	streadway "github.com/streadway/amqp"

	"github.com/mouselight/pipeline-scheduler/internal/config"
	"github.com/mouselight/pipeline-scheduler/internal/domain/completion"
	"github.com/mouselight/pipeline-scheduler/internal/ports"
)

// wireRecord is the JSON payload shape published by workers: timestamps
// arrive as RFC3339 strings and are re-materialized into absolute
// time.Time values on decode (spec §4.6).
type wireRecord struct {
	ID                   string  `json:"id"`
	WorkerID             string  `json:"worker_id"`
	TileID               string  `json:"tile_id"`
	PipelineStageID      string  `json:"pipeline_stage_id"`
	ExecutionStatusCode  int     `json:"execution_status_code"`
	CompletionStatusCode int     `json:"completion_status_code"`
	SubmittedAt          string  `json:"submitted_at"`
	StartedAt            string  `json:"started_at"`
	CompletedAt          string  `json:"completed_at"`
	CPUTimeSeconds       float64 `json:"cpu_time_seconds"`
	MaxCPUPercent        float64 `json:"max_cpu_percent"`
	MaxMemoryMB          float64 `json:"max_memory_mb"`
	ExitCode             int     `json:"exit_code"`
}

func (w wireRecord) toRecord() (completion.Record, error) {
	submitted, err := time.Parse(time.RFC3339, w.SubmittedAt)
	if err != nil {
		return completion.Record{}, fmt.Errorf("parse submitted_at: %w", err)
	}
	started, err := time.Parse(time.RFC3339, w.StartedAt)
	if err != nil {
		return completion.Record{}, fmt.Errorf("parse started_at: %w", err)
	}
	completed, err := time.Parse(time.RFC3339, w.CompletedAt)
	if err != nil {
		return completion.Record{}, fmt.Errorf("parse completed_at: %w", err)
	}

	return completion.Record{
		ID:                   w.ID,
		WorkerID:             w.WorkerID,
		TileID:               w.TileID,
		PipelineStageID:      w.PipelineStageID,
		ExecutionStatusCode:  w.ExecutionStatusCode,
		CompletionStatusCode: w.CompletionStatusCode,
		SubmittedAt:          submitted,
		StartedAt:            started,
		CompletedAt:          completed,
		CPUTimeSeconds:       w.CPUTimeSeconds,
		MaxCPUPercent:        w.MaxCPUPercent,
		MaxMemoryMB:          w.MaxMemoryMB,
		ExitCode:             w.ExitCode,
	}, nil
}

// Handler processes one decoded completion record and reports whether it
// was handled. In production this is dispatch.Dispatcher.Dispatch.
type Handler func(ctx context.Context, rec completion.Record) error

// Consumer connects to a durable AMQP broker, declares the queue from spec
// §4.6, and dispatches deliveries to a Handler with bounded concurrency.
type Consumer struct {
	cfg     config.BrokerConfig
	handler Handler
	logger  ports.Logger

	sem chan struct{}
}

// New constructs a Consumer. handler is called once per decoded delivery;
// the delivery is acked only after handler returns nil.
func New(cfg config.BrokerConfig, handler Handler, logger ports.Logger) *Consumer {
	return &Consumer{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		sem:     make(chan struct{}, cfg.PrefetchCount),
	}
}

// Run connects, declares the queue, and consumes deliveries until ctx is
// canceled, reconnecting on connection loss with a single capped
// exponential backoff policy (spec §9's Open Question: standardize
// reconnect logic on one policy rather than distinct 5s/15s literal sleeps).
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		conn, ch, deliveries, err := c.connect(ctx)
		if err != nil {
			return err // ctx canceled during backoff
		}

		c.logger.Info(ctx, "broker connected", "queue", c.cfg.Queue)
		closeNotify := conn.NotifyClose(make(chan *streadway.Error, 1))

		c.drain(ctx, deliveries, closeNotify)

		_ = ch.Close()
		_ = conn.Close()

		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn(ctx, "broker connection lost, reconnecting", "queue", c.cfg.Queue)
	}
}

// connect dials the broker, declares the queue, and starts consuming, retrying with capped
// exponential backoff until it succeeds or ctx is canceled.
func (c *Consumer) connect(ctx context.Context) (*streadway.Connection, *streadway.Channel, <-chan streadway.Delivery, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.ReconnectInitial.Value()
	b.MaxInterval = c.cfg.ReconnectMax.Value()
	b.MaxElapsedTime = 0 // retry forever; only ctx cancellation stops it
	bctx := backoff.WithContext(b, ctx)

	var (
		conn       *streadway.Connection
		ch         *streadway.Channel
		deliveries <-chan streadway.Delivery
	)

	operation := func() error {
		var err error
		conn, err = streadway.Dial(c.cfg.URL)
		if err != nil {
			return err
		}

		ch, err = conn.Channel()
		if err != nil {
			conn.Close()
			return err
		}

		if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return err
		}

		if err := ch.Qos(c.cfg.PrefetchCount, 0, false); err != nil {
			ch.Close()
			conn.Close()
			return err
		}

		deliveries, err = ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
		if err != nil {
			ch.Close()
			conn.Close()
			return err
		}
		return nil
	}

	if err := backoff.Retry(func() error {
		err := operation()
		if err != nil {
			c.logger.Warn(ctx, "broker connect attempt failed", "error", err)
		}
		return err
	}, bctx); err != nil {
		return nil, nil, nil, err
	}

	return conn, ch, deliveries, nil
}

// drain dispatches deliveries to the handler with up to PrefetchCount
// in-flight goroutines (spec §8 property 7), returning when ctx is
// canceled, the delivery channel closes, or the connection drops.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan streadway.Delivery, closeNotify <-chan *streadway.Error) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closeNotify:
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}

			c.sem <- struct{}{}
			wg.Add(1)
			go func(d streadway.Delivery) {
				defer wg.Done()
				defer func() { <-c.sem }()
				c.handle(ctx, d)
			}(d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d streadway.Delivery) {
	ctx = ports.WithCorrelationID(ctx, ports.GenerateCorrelationID())

	var w wireRecord
	if err := json.Unmarshal(d.Body, &w); err != nil {
		c.logger.Error(ctx, "completion record decode failure, dropping", "error", err)
		return
	}

	rec, err := w.toRecord()
	if err != nil {
		c.logger.Error(ctx, "completion record timestamp decode failure, dropping", "error", err)
		return
	}

	if err := c.handler(ctx, rec); err != nil {
		c.logger.Warn(ctx, "completion record handling failed, leaving un-acked",
			"record_id", rec.ID, "error", err)
		return
	}

	if err := d.Ack(false); err != nil {
		c.logger.Error(ctx, "failed to ack completion record", "record_id", rec.ID, "error", err)
	}
}

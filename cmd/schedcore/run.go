package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mouselight/pipeline-scheduler/internal/broker/amqp"
	"github.com/mouselight/pipeline-scheduler/internal/clock"
	"github.com/mouselight/pipeline-scheduler/internal/config"
	"github.com/mouselight/pipeline-scheduler/internal/dispatch"
	"github.com/mouselight/pipeline-scheduler/internal/ingestor"
	"github.com/mouselight/pipeline-scheduler/internal/infrastructure/controlplane"
	"github.com/mouselight/pipeline-scheduler/internal/infrastructure/metrics"
	"github.com/mouselight/pipeline-scheduler/internal/memstore"
	"github.com/mouselight/pipeline-scheduler/internal/ports"
	"github.com/mouselight/pipeline-scheduler/internal/schedulerhub"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the project ingestor and completion intake path until stopped",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler(cmd, flags)
		},
	}
}

func runScheduler(cmd *cobra.Command, flags *rootFlags) error {
	app, err := buildAppContext(cmd, flags)
	if err != nil {
		return err
	}

	ctx, logger := app.CommandContext(cmd, "run")
	ctx = ports.WithCorrelationID(ctx, ports.GenerateCorrelationID())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := memstore.New()
	cp := controlplane.NewLoggingControlPlane(app.LoggerFor("control_plane"))
	metricsSink := metrics.NewLoggingSink(app.LoggerFor("metrics"))
	sysClock := clock.System{}

	hub := schedulerhub.NewHub()
	supervisor := ingestor.NewSupervisor(app.Config, store, cp, sysClock, app.LoggerFor("ingestor"))
	for i, loop := range supervisor.Loops() {
		if err := hub.Register(app.Config.Projects[i].ID, loop); err != nil {
			return fmt.Errorf("register stage scheduler for project %s: %w", app.Config.Projects[i].ID, err)
		}
	}

	dispatcher := dispatch.New(metricsSink, hub, app.LoggerFor("dispatch"))
	consumer := amqp.New(app.Config.Broker, dispatcher.Dispatch, app.LoggerFor("broker"))

	logger.Info(ctx, "starting schedcore", "projects", len(app.Config.Projects))

	supervisorDone := make(chan struct{})
	go func() {
		supervisor.Run(ctx)
		close(supervisorDone)
	}()

	consumerErr := make(chan error, 1)
	go func() { consumerErr <- consumer.Run(ctx) }()

	select {
	case <-ctx.Done():
	case err := <-consumerErr:
		if err != nil {
			logger.Error(ctx, "queue consumer exited", "error", err)
		}
	}

	<-supervisorDone
	logger.Info(ctx, "schedcore stopped")
	return nil
}

func buildAppContext(cmd *cobra.Command, flags *rootFlags) (*AppContext, error) {
	level := "info"
	if flags.verbose {
		level = "debug"
	}

	appLogger, err := newLogger(level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &AppContext{Logger: appLogger, Config: cfg}, nil
}

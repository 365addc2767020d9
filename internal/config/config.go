// Package config loads and validates the YAML configuration document that
// wires together the scheduling core's external collaborators: project
// roots, path-mapping rules, broker connection settings, poll cadence, and
// control-plane/metrics endpoints.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mouselight/pipeline-scheduler/internal/pathmap"
	apperrors "github.com/mouselight/pipeline-scheduler/pkg/errors"
)

// Duration wraps time.Duration so YAML documents can spell cadences as
// "30s" rather than raw nanosecond integers.
type Duration time.Duration

// UnmarshalYAML accepts either a duration string ("30s") or a plain integer
// of nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err == nil && value.ShortTag() != "!!int" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var nanos int64
	if err := value.Decode(&nanos); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	*d = Duration(nanos)
	return nil
}

// Value returns the underlying time.Duration.
func (d Duration) Value() time.Duration { return time.Duration(d) }

// ProjectConfig describes one project's root location and ingestor cadence.
type ProjectConfig struct {
	ID           string   `yaml:"id" validate:"required"`
	Name         string   `yaml:"name" validate:"required"`
	RemoteRoot   string   `yaml:"remoteRoot" validate:"required"`
	PollInterval Duration `yaml:"pollInterval" validate:"required,gt=0"`
}

// BrokerConfig describes the durable message broker connection.
type BrokerConfig struct {
	URL              string   `yaml:"url" validate:"required"`
	Queue            string   `yaml:"queue" validate:"required"`
	PrefetchCount    int      `yaml:"prefetchCount" validate:"required,gt=0"`
	ReconnectInitial Duration `yaml:"reconnectInitial" validate:"required,gt=0"`
	ReconnectMax     Duration `yaml:"reconnectMax" validate:"required,gtefield=ReconnectInitial"`
}

// ControlPlaneConfig describes the out-of-scope HTTP/GraphQL control plane
// endpoint reached through ports.ControlPlane.
type ControlPlaneConfig struct {
	Endpoint string `yaml:"endpoint" validate:"required,url"`
}

// MetricsConfig describes the out-of-scope metrics sink endpoint reached
// through ports.MetricsSink.
type MetricsConfig struct {
	Endpoint string `yaml:"endpoint" validate:"required,url"`
}

// Config is the root configuration document.
type Config struct {
	Projects     []ProjectConfig    `yaml:"projects" validate:"required,dive"`
	PathMapping  []pathmap.Rule     `yaml:"pathMapping" validate:"dive"`
	Broker       BrokerConfig       `yaml:"broker" validate:"required"`
	ControlPlane ControlPlaneConfig `yaml:"controlPlane" validate:"required"`
	Metrics      MetricsConfig      `yaml:"metrics" validate:"required"`
}

// Load reads, parses, and validates a configuration document from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError(path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.NewConfigError(path, fmt.Errorf("parse yaml: %w", err))
	}

	if err := Validate(&cfg); err != nil {
		return nil, apperrors.NewConfigError(path, err)
	}

	return &cfg, nil
}

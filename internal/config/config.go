// Package config loads the demo engine's tuning knobs. It is
// deliberately kept outside pkg/threading: per spec.md §1,
// configuration parsing is not part of the core primitive — the core
// takes plain Go values (durations, ints) at construction time.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flowwatch/threading/pkg/threading"
)

// Config holds the demo engine's tuning knobs, loaded from YAML.
type Config struct {
	// Reporter controls the default reporter's minimum log level:
	// one of "debug", "info", "warn", "error", "fatal".
	Reporter ReporterConfig `yaml:"reporter"`

	// HeartbeatInterval is how often the engine's main loop ticks a
	// heartbeat into every registered thread.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// DrainInterval is how often the engine's main loop drains every
	// registered thread's out-queue.
	DrainInterval time.Duration `yaml:"drain_interval"`

	// ShutdownTimeout bounds how long Manager.Shutdown waits for a
	// thread to join before reporting it as stuck.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// QueueBatchThreshold is the number of locally-buffered messages a
	// MsgThread's queues accumulate before splicing into the shared
	// staging buffer. Passed to threading.NewMsgThread via
	// threading.WithQueueBatchThreshold; the core package never reads
	// YAML itself.
	QueueBatchThreshold int `yaml:"queue_batch_threshold"`

	// QueueWaitTimeout bounds how long a MsgThread's queues block a
	// consumer on an empty queue before it re-checks for termination.
	// Passed to threading.NewMsgThread via threading.WithQueuePollInterval.
	QueueWaitTimeout time.Duration `yaml:"queue_wait_timeout"`
}

// ReporterConfig configures the default zap-backed reporter.
type ReporterConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration the demo engine falls back to
// when no file is supplied.
func Default() Config {
	return Config{
		Reporter:            ReporterConfig{Level: "info"},
		HeartbeatInterval:   time.Second,
		DrainInterval:       50 * time.Millisecond,
		ShutdownTimeout:     5 * time.Second,
		QueueBatchThreshold: threading.DefaultBatchThreshold,
		QueueWaitTimeout:    threading.DefaultPollInterval,
	}
}

// Load reads and parses a YAML config file at path on top of Default():
// fields the file does not mention keep their Default() values, while a
// field the file sets explicitly, even to zero, takes the file's value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

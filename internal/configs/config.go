package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/google/uuid"
)

type ClientConfig struct {
	Client   Client   `toml:"client"`
	Polling  Polling  `toml:"polling"`
	Transfer Transfer `toml:"transfer"`
}

type Client struct {
	// OrchestratorURL is the base URL of the orchestrator that proxies
	// executor attestation and brokers storage access.
	OrchestratorURL string `toml:"orchestrator_url"`

	// ID identifies this party in workflows, e.g. "ClientA".
	ID string `toml:"client_id"`

	// UUID is generated on first use and identifies this installation
	// in journal entries.
	UUID string `toml:"client_uuid"`

	// HTTPTimeoutSeconds bounds each orchestrator request.
	HTTPTimeoutSeconds int `toml:"http_timeout_seconds"`
}

type Polling struct {
	// IntervalSeconds is the base delay between log fetches.
	IntervalSeconds int `toml:"interval_seconds"`

	// MaxElapsedMinutes bounds the total time spent polling one run.
	MaxElapsedMinutes int `toml:"max_elapsed_minutes"`

	// MaxConsecutiveFailures bounds transient log-fetch failures before
	// the poll is abandoned.
	MaxConsecutiveFailures int `toml:"max_consecutive_failures"`

	// CompletionMarkers are log-line substrings that signal run completion.
	// The executor signals completion through its log stream only, so this
	// list has to track what it prints.
	CompletionMarkers []string `toml:"completion_markers"`
}

type Transfer struct {
	// MaxDatasetMB bounds the size of a single dataset file. The whole file
	// is held in memory while it is sealed, so this also bounds memory use.
	MaxDatasetMB int `toml:"max_dataset_mb"`
}

// Defaults applied when a field is unset in the config file.
const (
	DefaultHTTPTimeoutSeconds     = 30
	DefaultPollIntervalSeconds    = 2
	DefaultMaxElapsedMinutes      = 30
	DefaultMaxConsecutiveFailures = 10
	DefaultMaxDatasetMB           = 512
)

// DefaultCompletionMarkers match what the executor emits today.
var DefaultCompletionMarkers = []string{"Notebook executed", "Execution finished"}

func configPath() string {
	return filepath.Join(UserCleanroomSettings.UserConfigsPath, "config.toml")
}

// LoadClientConfig loads the client configuration, applying defaults for
// unset fields. A missing config file returns a config with defaults only.
func LoadClientConfig() (*ClientConfig, error) {
	config := &ClientConfig{}

	if _, err := os.Stat(configPath()); err == nil {
		if err := LoadTOML(configPath(), config); err != nil {
			return nil, fmt.Errorf("failed to load client config: %w", err)
		}
	}

	applyDefaults(config)
	return config, nil
}

// SaveClientConfig saves the client configuration to the config file.
func SaveClientConfig(config *ClientConfig) error {
	if err := SaveTOML(configPath(), config); err != nil {
		return fmt.Errorf("failed to save client config: %w", err)
	}
	return nil
}

// EnsureClientConfig loads the config and verifies it is usable for network
// operations. Returns ErrNotConfigured when the orchestrator URL or client
// id is missing.
func EnsureClientConfig() (*ClientConfig, error) {
	config, err := LoadClientConfig()
	if err != nil {
		return nil, err
	}

	if config.Client.OrchestratorURL == "" || config.Client.ID == "" {
		return nil, cerrors.ErrNotConfigured
	}

	if config.Client.UUID == "" {
		config.Client.UUID = uuid.New().String()
		if err := SaveClientConfig(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func applyDefaults(config *ClientConfig) {
	if config.Client.HTTPTimeoutSeconds <= 0 {
		config.Client.HTTPTimeoutSeconds = DefaultHTTPTimeoutSeconds
	}
	if config.Polling.IntervalSeconds <= 0 {
		config.Polling.IntervalSeconds = DefaultPollIntervalSeconds
	}
	if config.Polling.MaxElapsedMinutes <= 0 {
		config.Polling.MaxElapsedMinutes = DefaultMaxElapsedMinutes
	}
	if config.Polling.MaxConsecutiveFailures <= 0 {
		config.Polling.MaxConsecutiveFailures = DefaultMaxConsecutiveFailures
	}
	if len(config.Polling.CompletionMarkers) == 0 {
		config.Polling.CompletionMarkers = append([]string(nil), DefaultCompletionMarkers...)
	}
	if config.Transfer.MaxDatasetMB <= 0 {
		config.Transfer.MaxDatasetMB = DefaultMaxDatasetMB
	}
}

// HTTPTimeout returns the per-request timeout as a duration.
func (c *ClientConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.Client.HTTPTimeoutSeconds) * time.Second
}

// PollInterval returns the base polling interval as a duration.
func (c *ClientConfig) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalSeconds) * time.Second
}

// PollMaxElapsed returns the polling time bound as a duration.
func (c *ClientConfig) PollMaxElapsed() time.Duration {
	return time.Duration(c.Polling.MaxElapsedMinutes) * time.Minute
}

// MaxDatasetBytes returns the dataset size bound in bytes.
func (c *ClientConfig) MaxDatasetBytes() int64 {
	return int64(c.Transfer.MaxDatasetMB) * 1024 * 1024
}

// Package daemon holds the TOML-configured settings for the moldplan
// server process: HTTP bind address, SQLite storage path, runner
// concurrency, and default GA parameters.
package daemon

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the full daemon configuration, loaded from a TOML file and
// defaulted via DefaultConfig.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Runner   RunnerConfig   `toml:"runner"`
	Planning PlanningConfig `toml:"planning"`
}

// ServerConfig controls the HTTP API's bind address.
type ServerConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	MetricsEnabled bool   `toml:"metrics_enabled"`
}

// StorageConfig controls where plan runs are persisted.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path"`
}

// RunnerConfig controls asynchronous plan-run concurrency.
type RunnerConfig struct {
	MaxConcurrent int `toml:"max_concurrent"`
}

// PlanningConfig holds GA parameter values read from the [planning] table.
// The server does not apply them to plan requests: a request that omits
// GA parameters gets the defaults in internal/core.
type PlanningConfig struct {
	PopSize              int     `toml:"pop_size"`
	NGenerations         int     `toml:"n_generations"`
	MutationRate         float64 `toml:"mutation_rate"`
	MoldChangeTimeHours  float64 `toml:"mold_change_time_hours"`
	ColorChangeTimeHours float64 `toml:"color_change_time_hours"`
}

// DefaultConfig returns the daemon's out-of-the-box configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			MetricsEnabled: true,
		},
		Storage: StorageConfig{
			SQLitePath: "moldplan.db",
		},
		Runner: RunnerConfig{
			MaxConcurrent: 4,
		},
		Planning: PlanningConfig{
			PopSize:              30,
			NGenerations:         80,
			MutationRate:         0.25,
			MoldChangeTimeHours:  0,
			ColorChangeTimeHours: 0,
		},
	}
}

// Load reads a TOML file at path, applying its values on top of
// DefaultConfig so a partial file only overrides what it sets.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Addr is the host:port string the HTTP server should listen on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

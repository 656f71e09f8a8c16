// Package config loads simulation defaults from an optional HCL file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem-odds/analysis"
)

const (
	DefaultTrials   = 50000
	DefaultLogLevel = "info"
)

// Config represents the complete configuration file
type Config struct {
	LogLevel   string            `hcl:"log_level,optional"`
	Simulation *SimulationConfig `hcl:"simulation,block"`
}

// SimulationConfig contains the Monte Carlo settings
type SimulationConfig struct {
	Trials    int   `hcl:"trials,optional"`
	BatchSize int   `hcl:"batch_size,optional"`
	Workers   int   `hcl:"workers,optional"`
	Seed      int64 `hcl:"seed,optional"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Simulation: &SimulationConfig{
			Trials:    DefaultTrials,
			BatchSize: analysis.DefaultBatchSize,
		},
	}
}

// Load loads configuration from an HCL file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
	if config.Simulation == nil {
		config.Simulation = &SimulationConfig{}
	}
	if config.Simulation.Trials == 0 {
		config.Simulation.Trials = DefaultTrials
	}
	if config.Simulation.BatchSize == 0 {
		config.Simulation.BatchSize = analysis.DefaultBatchSize
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Simulation == nil {
		return fmt.Errorf("missing simulation block")
	}
	if c.Simulation.Trials <= 0 {
		return fmt.Errorf("trials must be positive: %d", c.Simulation.Trials)
	}
	if c.Simulation.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive: %d", c.Simulation.BatchSize)
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("workers cannot be negative: %d", c.Simulation.Workers)
	}
	return nil
}

// Level returns the parsed log level
func (c *Config) Level() (log.Level, error) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// SimulatorConfig builds the simulator configuration. Trials are passed per
// call rather than stored on the simulator.
func (c *Config) SimulatorConfig(logger *log.Logger) analysis.Config {
	return analysis.Config{
		BatchSize: c.Simulation.BatchSize,
		Workers:   c.Simulation.Workers,
		Seed:      c.Simulation.Seed,
		Logger:    logger,
	}
}

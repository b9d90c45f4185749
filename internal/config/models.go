package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/muurk/ssdp/internal/ssdp"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the config file format version
const CurrentVersion = 1

const (
	DefaultPollInterval     = 100 * time.Millisecond
	DefaultAnnounceInterval = 30 * time.Second
	DefaultSearchTarget     = "ssdp:all"
)

// Config represents the ssdpctl configuration file.
type Config struct {
	Version          int               `yaml:"version"`
	Port             int               `yaml:"port"`                // SSDP multicast port
	MaxInterfaces    int               `yaml:"max_interfaces"`      // Interface list limit
	LogLevel         string            `yaml:"log_level,omitempty"` // debug, info, warn or error; empty disables logging
	PollInterval     Duration          `yaml:"poll_interval"`       // How often the receiver is drained
	AnnounceInterval Duration          `yaml:"announce_interval"`   // Period of repeated NOTIFY, 0 announces once
	Header           ssdp.HeaderConfig `yaml:"header"`
}

// Duration is a time.Duration written as a string such as "30s"
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Plain integers are seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	if node.ShortTag() == "!!int" {
		var secs int64
		if err := node.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Version:          CurrentVersion,
		Port:             ssdp.DefaultPort,
		MaxInterfaces:    ssdp.DefaultMaxInterfaces,
		PollInterval:     Duration(DefaultPollInterval),
		AnnounceInterval: Duration(DefaultAnnounceInterval),
		Header: ssdp.HeaderConfig{
			SearchTarget: DefaultSearchTarget,
		},
	}
}

var validLogLevels = map[string]bool{
	"":        true,
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the configuration for values the rest of the program
// cannot use.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxInterfaces < 1 {
		return fmt.Errorf("max_interfaces must be positive, got %d", c.MaxInterfaces)
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.AnnounceInterval < 0 {
		return fmt.Errorf("announce_interval must not be negative, got %s", c.AnnounceInterval)
	}
	if c.Header.SearchTarget == "" {
		return fmt.Errorf("header.search_target is required")
	}
	if p := c.Header.LocationPort; p < 0 || p > 65535 {
		return fmt.Errorf("header.location_port must be between 0 and 65535, got %d", p)
	}
	return nil
}

// Package config loads the rf-remote daemon configuration from an optional
// YAML file. Command-line flags take precedence over file values; the file
// exists so a fleet of receivers can share one deployed config.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete daemon configuration.
type Config struct {
	Receiver  ReceiverConfig  `yaml:"receiver"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	HTTP      HTTPConfig      `yaml:"http"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
}

// ReceiverConfig describes the RF receiver wiring.
type ReceiverConfig struct {
	Chip   string `yaml:"chip"`
	Pin    int    `yaml:"pin"`
	Invert bool   `yaml:"invert"`
}

// MQTTConfig describes the broker connection.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// HTTPConfig describes the status server. An empty address disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// HeartbeatConfig describes the periodic status publish.
type HeartbeatConfig struct {
	IntervalMs int64 `yaml:"interval_ms"`
}

// Default returns the configuration used when no file and no flags are given.
func Default() Config {
	return Config{
		Receiver: ReceiverConfig{
			Chip: "gpiochip0",
			Pin:  27,
		},
		MQTT: MQTTConfig{
			Broker: "tcp://192.168.1.200:1883",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Heartbeat: HeartbeatConfig{
			IntervalMs: 15 * 60 * 1000,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. A missing file is an error; callers that treat the file as
// optional should check os.IsNotExist.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

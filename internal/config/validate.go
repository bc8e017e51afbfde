package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration correctness. It does not mutate the config.
func Validate(cfg *Config) error {
	if cfg.Receiver.Chip == "" {
		return fmt.Errorf("receiver: chip must not be empty")
	}
	if cfg.Receiver.Pin < 0 {
		return fmt.Errorf("receiver: pin %d is negative", cfg.Receiver.Pin)
	}

	if cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt: broker must not be empty")
	}
	if !strings.Contains(cfg.MQTT.Broker, "://") {
		return fmt.Errorf("mqtt: broker %q has no scheme (want e.g. tcp://host:1883)", cfg.MQTT.Broker)
	}

	if cfg.Heartbeat.IntervalMs < 0 {
		return fmt.Errorf("heartbeat: interval_ms %d is negative (use 0 to disable)", cfg.Heartbeat.IntervalMs)
	}

	return nil
}

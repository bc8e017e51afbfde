// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"
)

// Topic is the MQTT topic for decoded remote presses.
const Topic = "home/rf/remote/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/rf/remote/system"

// PressEvent represents one decoded remote transmission.
type PressEvent struct {
	Timestamp time.Time
	Address   uint32 // 20-bit transmitter address
	Key       uint8  // 4-bit key code
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a remote press event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event PressEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure for press events.
type Payload struct {
	Remote RemotePayload `json:"remote"`
}

// RemotePayload contains the decoded transmission details.
type RemotePayload struct {
	Timestamp  string `json:"timestamp"`
	Address    uint32 `json:"address"`
	AddressHex string `json:"address_hex"`
	Key        uint8  `json:"key"`
}

// FormatPayload creates the JSON payload for a press event. The address is
// included both as a decimal integer and as the zero-padded hex form that
// remote vendors print on their labels.
func FormatPayload(event PressEvent) ([]byte, error) {
	payload := Payload{
		Remote: RemotePayload{
			Timestamp:  event.Timestamp.UTC().Format(time.RFC3339),
			Address:    event.Address,
			AddressHex: fmt.Sprintf("%05X", event.Address),
			Key:        event.Key,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

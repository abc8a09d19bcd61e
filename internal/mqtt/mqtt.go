// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/skyward-er/ignition-sensor/internal/logic"
)

// Topic is the MQTT topic for igniter band-change events.
const Topic = "rocketry/igniter/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "rocketry/igniter/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an igniter cycle event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(cycle logic.Cycle) error

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

// Payload represents the MQTT message payload structure.
type Payload struct {
	Igniter IgniterPayload `json:"igniter"`
}

// IgniterPayload contains the cycle event details.
type IgniterPayload struct {
	Timestamp string `json:"timestamp"`
	Band      string `json:"band"`
	Count     uint16 `json:"count"`
	MOSGate   bool   `json:"mos_gate"`
}

// FormatPayload creates the JSON payload for a cycle event.
func FormatPayload(cycle logic.Cycle) ([]byte, error) {
	payload := Payload{
		Igniter: IgniterPayload{
			Timestamp: cycle.Timestamp.UTC().Format(time.RFC3339),
			Band:      string(cycle.Band),
			Count:     cycle.Count,
			MOSGate:   cycle.Outputs.MOSGate,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
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

package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Band          string       `json:"band"`
	LastCount     uint16       `json:"last_count"`
	Outputs       OutputsJSON  `json:"outputs"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"cycle_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// OutputsJSON is the JSON representation of the three output lines.
type OutputsJSON struct {
	IgnitionLED bool `json:"ignition_led"`
	LinkLED     bool `json:"link_led"`
	MOSGate     bool `json:"mos_gate"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of per-band cycle counts.
type CountsJSON struct {
	Ignition int `json:"ignition"`
	LinkOK   int `json:"link_ok"`
	Idle     int `json:"idle"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	WindowMs    int64  `json:"window_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
	WSBroker    string `json:"ws_broker,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Band:          string(snap.Band),
		LastCount:     snap.LastCount,
		Outputs: OutputsJSON{
			IgnitionLED: snap.Outputs.IgnitionLED,
			LinkLED:     snap.Outputs.LinkLED,
			MOSGate:     snap.Outputs.MOSGate,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Ignition: snap.Counts.Ignition,
			LinkOK:   snap.Counts.LinkOK,
			Idle:     snap.Counts.Idle,
		},
		Config: ConfigJSON{
			WindowMs:    snap.Config.WindowMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			WSBroker:    snap.Config.WSBroker,
		},
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}

	return inner
}

// FormatJSON returns the status snapshot as JSON for the HTTP endpoint.
func FormatJSON(snap Snapshot) []byte {
	b, _ := json.Marshal(StatusJSON{Status: buildInner(snap)})
	return b
}

// FormatStatusEvent returns the snapshot as JSON with event/reason fields
// set, used as the payload of STARTUP/SHUTDOWN/HEARTBEAT system events.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	b, _ := json.Marshal(StatusJSON{Status: inner})
	return b
}

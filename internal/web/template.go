package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/skyward-er/ignition-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"onoff": func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Ignition Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.band-ignition { color: red; font-weight: bold; }
.band-link { color: green; font-weight: bold; }
.band-idle { color: #888; }
.armed { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Ignition Sensor{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>State</h2>
<table>
<tr><th>Band</th><td id="band" class="{{if eq (printf "%s" .Band) "IGNITION"}}band-ignition{{else if eq (printf "%s" .Band) "LINK_OK"}}band-link{{else}}band-idle{{end}}">{{.Band}}</td></tr>
<tr><th>Last Count</th><td id="count">{{.LastCount}}</td></tr>
<tr><th>MOS Gate</th><td id="mos-gate" class="{{if .Outputs.MOSGate}}armed{{else}}off{{end}}">{{onoff .Outputs.MOSGate}}</td></tr>
<tr><th>Ignition LED</th><td class="{{if .Outputs.IgnitionLED}}on{{else}}off{{end}}">{{onoff .Outputs.IgnitionLED}}</td></tr>
<tr><th>Link LED</th><td class="{{if .Outputs.LinkLED}}on{{else}}off{{end}}">{{onoff .Outputs.LinkLED}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} — {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Cycle Counts</h2>
<table>
<tr><th>IGNITION</th><td>{{.Counts.Ignition}}</td></tr>
<tr><th>LINK_OK</th><td>{{.Counts.LinkOK}}</td></tr>
<tr><th>IDLE</th><td>{{.Counts.Idle}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Window</th><td>{{.Config.WindowMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="https://unpkg.com/mqtt/dist/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "rocketry/igniter/events";
  var dot = document.getElementById("live-dot");
  var bandEl = document.getElementById("band");
  var countEl = document.getElementById("count");
  var mosEl = document.getElementById("mos-gate");

  function setBand(band) {
    bandEl.textContent = band;
    bandEl.className = band === "IGNITION" ? "band-ignition" : band === "LINK_OK" ? "band-link" : "band-idle";
  }

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (msg.igniter) {
        setBand(msg.igniter.band);
        countEl.textContent = msg.igniter.count;
        mosEl.textContent = msg.igniter.mos_gate ? "ON" : "OFF";
        mosEl.className = msg.igniter.mos_gate ? "armed" : "off";
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}

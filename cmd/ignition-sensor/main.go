// Command ignition-sensor measures the PWM frequency from the launch
// control board by gated pulse counting and drives the igniter board's
// LEDs and MOS gate accordingly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skyward-er/ignition-sensor/internal/gpio"
	"github.com/skyward-er/ignition-sensor/internal/logic"
	"github.com/skyward-er/ignition-sensor/internal/mqtt"
	"github.com/skyward-er/ignition-sensor/internal/status"
	"github.com/skyward-er/ignition-sensor/internal/web"
)

// Startup self-test: the two LEDs alternate a few times so a pre-flight
// check can confirm both work.
const (
	selfTestBlinks     = 5
	selfTestHalfPeriod = 50 * time.Millisecond
)

func main() {
	window := flag.Duration("window", time.Second, "Measurement window duration")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	pinInput := flag.Int("pin-input", gpio.DefaultPinInput, "BCM pin number for the PWM input")
	pinIgnition := flag.Int("pin-ignition-led", gpio.DefaultPinIgnitionLED, "BCM pin number for the ignition LED")
	pinLink := flag.Int("pin-link-led", gpio.DefaultPinLinkLED, "BCM pin number for the link LED")
	pinMOS := flag.Int("pin-mos-gate", gpio.DefaultPinMOSGate, "BCM pin number for the MOS gate")
	printCount := flag.Bool("print-count", false, "Run one measurement window, print count and band, exit")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	wsBroker := flag.String("ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)

	flag.Parse()

	pins := gpio.Pins{
		Input:       *pinInput,
		IgnitionLED: *pinIgnition,
		LinkLED:     *pinLink,
		MOSGate:     *pinMOS,
	}
	ws := resolveWSBroker(*wsBroker, *broker)
	if err := run(*window, *broker, *heartbeat, pins, *printCount, *httpAddr, ws); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(window time.Duration, broker string, heartbeat time.Duration, pins gpio.Pins, printCount bool, httpAddr, wsBroker string) error {
	// Initialize GPIO
	dev, err := gpio.NewRealDevice(pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer dev.Close()

	// One-shot measurement mode
	if printCount {
		count, err := measureOnce(dev, window, time.Sleep)
		if err != nil {
			return fmt.Errorf("measure: %w", err)
		}
		fmt.Printf("count: %d, band: %s\n", count, logic.Classify(count))
		return nil
	}

	// LED self-test before anything can fire
	if err := selfTest(dev, selfTestBlinks, selfTestHalfPeriod, time.Sleep); err != nil {
		return fmt.Errorf("self-test: %w", err)
	}

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(broker)
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		WindowMs:    window.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      broker,
		HTTPPort:    httpAddr,
		WSBroker:    wsBroker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: window=%v broker=%s heartbeat=%v input=%d", window, broker, heartbeat, pins.Input)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(dev, publisher, publisher, tracker, window, heartbeat, time.Now, time.Sleep, sigCh)
}

// selfTest alternates the two indicator LEDs, then leaves both off.
func selfTest(dev gpio.Device, blinks int, halfPeriod time.Duration, sleep func(time.Duration)) error {
	for i := 0; i < blinks; i++ {
		if err := dev.SetIgnitionLED(true); err != nil {
			return err
		}
		if err := dev.SetLinkLED(false); err != nil {
			return err
		}
		sleep(halfPeriod)
		if err := dev.SetIgnitionLED(false); err != nil {
			return err
		}
		if err := dev.SetLinkLED(true); err != nil {
			return err
		}
		sleep(halfPeriod)
	}
	return dev.SetLinkLED(false)
}

// measureOnce runs a single gated counting window and returns the count.
func measureOnce(dev gpio.Device, window time.Duration, sleep func(time.Duration)) (uint16, error) {
	if err := dev.ResetCounter(); err != nil {
		return 0, err
	}
	if err := dev.EnableCounter(); err != nil {
		return 0, err
	}
	sleep(window)
	if err := dev.DisableCounter(); err != nil {
		return 0, err
	}
	return dev.ReadCounter()
}

// applyOutputs writes one cycle's outputs to the hardware. The MOS gate is
// written first when dropping and last when asserting, so the gate is never
// high outside the span its classification covers.
func applyOutputs(dev gpio.Device, out logic.Outputs) error {
	if !out.MOSGate {
		if err := dev.SetMOSGate(false); err != nil {
			return err
		}
	}
	if err := dev.SetIgnitionLED(out.IgnitionLED); err != nil {
		return err
	}
	if err := dev.SetLinkLED(out.LinkLED); err != nil {
		return err
	}
	if out.MOSGate {
		return dev.SetMOSGate(true)
	}
	return nil
}

// failSafe forces every output off. Used on shutdown and after output
// errors: the igniter must never stay energized on an ambiguous state.
func failSafe(dev gpio.Device) {
	if err := dev.SetMOSGate(false); err != nil {
		log.Printf("fail-safe: clear mos gate: %v", err)
	}
	if err := dev.SetIgnitionLED(false); err != nil {
		log.Printf("fail-safe: clear ignition led: %v", err)
	}
	if err := dev.SetLinkLED(false); err != nil {
		log.Printf("fail-safe: clear link led: %v", err)
	}
}

func runLoop(dev gpio.Device, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, window, heartbeat time.Duration, now func() time.Time, sleep func(time.Duration), sig <-chan os.Signal) error {
	startTime := now()
	controller := logic.NewController(startTime)

	for {
		// A window that has started always runs to completion; shutdown is
		// only honored between cycles.
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			failSafe(dev)

			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		default:
		}

		count, err := measureOnce(dev, window, sleep)
		t := now()
		if err != nil {
			// Fail safe: a window we cannot read is indistinguishable from
			// no signal, and no signal means everything off but the link LED.
			log.Printf("counter read error: %v", err)
			count = 0
		}

		cycle := controller.Step(count, t)

		if err := applyOutputs(dev, cycle.Outputs); err != nil {
			log.Printf("output error: %v", err)
			failSafe(dev)
			continue
		}

		if cycle.BandChanged {
			log.Printf("band: %s (count=%d mos_gate=%v)", cycle.Band, cycle.Count, cycle.Outputs.MOSGate)
			if err := publisher.Publish(cycle); err != nil {
				log.Printf("publish error: %v", err)
				// Don't crash on publish failure
			}
		}

		// Update status tracker for HTTP consumers
		if tracker != nil {
			tracker.Update(cycle, controller.Counts())
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
		}

		// Check for heartbeat
		if hbData := controller.CheckHeartbeat(t, heartbeat); hbData != nil {
			log.Printf("heartbeat: uptime=%v ignition=%d link_ok=%d idle=%d",
				hbData.Uptime, hbData.Counts.Ignition, hbData.Counts.LinkOK, hbData.Counts.Idle)

			hbEvent := mqtt.SystemEvent{
				Timestamp: hbData.Timestamp,
				Event:     "HEARTBEAT",
			}
			if tracker != nil {
				// Refresh network info for heartbeat
				if net := readNetworkInfo(); net != nil {
					tracker.SetNetwork(net)
				}
				snap := tracker.Snapshot()
				hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}

package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/skyward-er/ignition-sensor/internal/logic"
)

// offlineQueueSize bounds how many messages are held across a broker outage.
const offlineQueueSize = 256

// publishTimeout is the longest a connected publish may block the caller.
// The measurement loop calls Publish between windows; anything slower than
// this is treated as a disconnect and queued instead.
const publishTimeout = 2 * time.Second

// RealPublisher publishes to an actual MQTT broker.
//
// While disconnected, messages go to a bounded offline queue that is
// replayed when the connection comes back, so the measurement loop never
// waits on an unreachable broker.
type RealPublisher struct {
	client paho.Client

	mu    sync.Mutex
	queue *offlineQueue
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is established in the background with automatic retry; publishing before
// the first connect simply queues.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{queue: newOfflineQueue(offlineQueueSize)}

	lwt, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
		Reason:    "LWT",
	})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("ignition-sensor").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(TopicSystem, lwt, 1, false).
		SetOnConnectHandler(func(paho.Client) {
			p.replayQueued()
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// Publish sends a cycle event to the broker (QoS 0, not retained).
func (p *RealPublisher) Publish(cycle logic.Cycle) error {
	payload, err := FormatPayload(cycle)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(queuedMsg{topic: Topic, payload: payload, qos: 0})
}

// PublishSystem sends a system lifecycle event (QoS 1 — delivery matters
// for STARTUP/SHUTDOWN).
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(queuedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// send publishes immediately when connected, otherwise queues for replay.
func (p *RealPublisher) send(msg queuedMsg) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.queue.add(msg)
		n := p.queue.len()
		p.mu.Unlock()
		log.Printf("mqtt: disconnected, queued message for %s (%d queued)", msg.topic, n)
		return nil
	}

	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		p.mu.Lock()
		p.queue.add(msg)
		p.mu.Unlock()
		return fmt.Errorf("publish timeout, message queued")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// replayQueued flushes the offline queue after (re)connection.
func (p *RealPublisher) replayQueued() {
	p.mu.Lock()
	msgs := p.queue.drain()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	log.Printf("mqtt: connected, replaying %d queued messages", len(msgs))
	for _, msg := range msgs {
		token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
			log.Printf("mqtt: replay failed for %s", msg.topic)
		}
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

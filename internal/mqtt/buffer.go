package mqtt

import "log"

// queuedMsg is a serialized MQTT message held for replay after reconnection.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineQueue holds messages published while the broker is unreachable.
// Bounded: once full, the oldest message is dropped for each new one, so a
// long outage costs history, never memory. Not safe for concurrent use —
// the publisher's mutex covers it.
type offlineQueue struct {
	msgs    []queuedMsg
	max     int
	dropped int // messages discarded since the last drain
}

func newOfflineQueue(max int) *offlineQueue {
	return &offlineQueue{max: max}
}

func (q *offlineQueue) add(msg queuedMsg) {
	if len(q.msgs) == q.max {
		if q.dropped == 0 {
			log.Printf("mqtt: offline queue full (%d messages), dropping oldest", q.max)
		}
		q.dropped++
		copy(q.msgs, q.msgs[1:])
		q.msgs[len(q.msgs)-1] = msg
		return
	}
	q.msgs = append(q.msgs, msg)
}

// drain returns all queued messages, oldest first, and empties the queue.
func (q *offlineQueue) drain() []queuedMsg {
	if len(q.msgs) == 0 {
		return nil
	}
	out := q.msgs
	q.msgs = nil
	q.dropped = 0
	return out
}

func (q *offlineQueue) len() int {
	return len(q.msgs)
}

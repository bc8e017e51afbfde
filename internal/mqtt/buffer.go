package mqtt

// queuedMsg stores a serialized MQTT message for replay after reconnection.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// msgQueue is a fixed-capacity FIFO holding messages while the broker is
// unreachable. When full, the oldest message is overwritten so the queue
// always holds the most recent traffic. Not safe for concurrent use —
// the caller must synchronize.
type msgQueue struct {
	buf     []queuedMsg
	head    int // next write position
	count   int
	dropped int // messages overwritten since the last drain
}

func newMsgQueue(capacity int) *msgQueue {
	return &msgQueue{buf: make([]queuedMsg, capacity)}
}

func (q *msgQueue) push(msg queuedMsg) {
	if q.count == len(q.buf) {
		// head points at the oldest entry; overwrite it.
		q.dropped++
		q.buf[q.head] = msg
		q.head = (q.head + 1) % len(q.buf)
		return
	}
	q.buf[q.head] = msg
	q.head = (q.head + 1) % len(q.buf)
	q.count++
}

// drain returns the queued messages oldest-first along with the number of
// messages lost to overflow, and empties the queue.
func (q *msgQueue) drain() ([]queuedMsg, int) {
	dropped := q.dropped
	q.dropped = 0
	if q.count == 0 {
		return nil, dropped
	}

	out := make([]queuedMsg, q.count)
	start := (q.head - q.count + len(q.buf)) % len(q.buf)
	for i := range out {
		out[i] = q.buf[(start+i)%len(q.buf)]
	}

	q.count = 0
	q.head = 0
	return out, dropped
}

func (q *msgQueue) len() int { return q.count }

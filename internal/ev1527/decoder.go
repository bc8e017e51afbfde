package ev1527

// Decoder is the EV1527 pulse-timing state machine. It consumes one
// (HIGH, LOW) duration pair per call and exposes the most recent decoded
// frame through ReadFrame.
//
// The decoded frame is a single-slot mailbox with last-wins semantics: a
// new frame overwrites the previous one even if the consumer has not read
// it yet. There is no queue — a consumer that polls slower than remotes
// transmit will miss repeats. This matches the behavior of the receiver
// hardware this was built for and is a documented limitation.
//
// Not safe for concurrent use. OnPulsePair, ReadFrame and ClearDetected
// must all be called from the same goroutine; cross-goroutine consumers go
// through the status tracker instead.
type Decoder struct {
	// bitIndex is -1 while awaiting a preamble, otherwise the next bit
	// slot to fill (0..23).
	bitIndex int
	// acc holds the data bits collected so far, first bit in the MSB.
	acc    uint32
	frame  Frame
	counts Counts
}

// NewDecoder returns a Decoder awaiting a preamble.
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.Reset()
	return d
}

// Reset returns the state machine to awaiting-preamble and clears the
// decoded frame. Activity counts are preserved.
func (d *Decoder) Reset() {
	d.bitIndex = -1
	d.acc = 0
	d.frame = Frame{}
}

// seeking reports whether the decoder is waiting for a preamble.
func (d *Decoder) seeking() bool { return d.bitIndex < 0 }

// OnPulsePair consumes one completed HIGH-then-LOW pulse cycle, both
// durations in ticks. It returns true when this pair completed a valid
// 24-bit frame; the frame is then available from ReadFrame.
//
// Invalid input never produces an error: out-of-range pairs drop any
// partial frame and return the machine to preamble seeking, keeping the
// decoder ready for the next transmission.
func (d *Decoder) OnPulsePair(highTicks, lowTicks uint32) bool {
	total := highTicks + lowTicks

	if d.seeking() {
		// The preamble's ~31T LOW puts its combined duration above the
		// data-bit window, so only the noise floor applies to preamble
		// candidates, not the upper bound.
		if total > MinPulseTicks &&
			lowTicks >= preambleRatioMin*highTicks && lowTicks <= preambleRatioMax*highTicks {
			d.bitIndex = 0
			d.acc = 0
			d.counts.Preambles++
		} else if total <= MinPulseTicks || total >= MaxPulseTicks {
			d.counts.Noise++
		}
		// A ratio mismatch may be the last pair before a later preamble,
		// so nothing is consumed — keep seeking.
		return false
	}

	if total <= MinPulseTicks || total >= MaxPulseTicks {
		// Not a data bit. Drop the partial frame and reseek.
		d.counts.Noise++
		d.counts.Aborted++
		d.bitIndex = -1
		d.acc = 0
		return false
	}

	// Bit decision threshold is HIGH >= 1.5x LOW, kept in integer math.
	var bit uint32
	if 2*highTicks >= 3*lowTicks {
		bit = 1
	}
	d.acc = d.acc<<1 | bit
	d.bitIndex++
	if d.bitIndex < FrameBits {
		return false
	}

	// All 24 bits collected: the top 20 are the address (first bit
	// received is the most significant address bit), the low 4 the key.
	d.frame.set(d.acc>>keyBits, uint8(d.acc&keyMask))
	d.counts.Frames++
	d.bitIndex = -1
	d.acc = 0
	return true
}

// ReadFrame returns a copy of the decoded frame mailbox.
func (d *Decoder) ReadFrame() Frame { return d.frame }

// ClearDetected marks the current frame as consumed. Address and key stay
// readable until the next decode overwrites them.
func (d *Decoder) ClearDetected() { d.frame.clearDetect() }

// CountsSnapshot returns a copy of the activity counters.
func (d *Decoder) CountsSnapshot() Counts { return d.counts }

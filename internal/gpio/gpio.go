// Package gpio provides RF receiver pulse capture with hardware abstraction.
// The real implementation uses Linux GPIO character device edge events.
// The fake implementation allows testing without hardware.
package gpio

// Pulse is one completed HIGH+LOW cycle on the RF data line. Durations are
// in microsecond ticks, taken from kernel edge-event timestamps.
type Pulse struct {
	High uint32
	Low  uint32
}

// Watcher delivers pulses observed on the RF data line.
type Watcher interface {
	// Pulses returns the channel on which completed pulse pairs arrive.
	Pulses() <-chan Pulse

	// Close stops edge detection and releases GPIO resources.
	Close() error
}

// Defaults for a 433MHz receiver module on a Raspberry Pi (BCM numbering).
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 27
)

// PulseBuffer is the capacity of the pulse channel. RF noise bursts can
// produce edges faster than the run loop drains them; pulses that do not
// fit are dropped and the decoder resynchronizes on the next preamble.
const PulseBuffer = 256

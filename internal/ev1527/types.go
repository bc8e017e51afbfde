// Package ev1527 decodes the EV1527 fixed-code RF remote protocol from
// pulse-width measurements. This package has NO external dependencies (no
// GPIO, MQTT, OS, or time) — pulse durations come in as plain tick counts,
// so the decoder can be driven from hardware edge events or from tests.
//
// On the wire a frame is [preamble][20-bit address][4-bit key]. Each data
// bit is one HIGH+LOW pulse cycle: logic '1' is long-HIGH/short-LOW (~3:1),
// logic '0' is short-HIGH/long-LOW (~1:3). The preamble is a short HIGH
// (~1T) followed by a very long LOW (~31T).
package ev1527

// Timing constants in ticks. One tick is one unit of the caller's timing
// source, calibrated to microsecond resolution.
const (
	// MinPulseTicks is the smallest combined HIGH+LOW duration accepted as
	// signal. Anything at or below this is electrical noise. Exclusive.
	MinPulseTicks = 450

	// MaxPulseTicks is the largest combined HIGH+LOW duration accepted.
	// Anything at or above this is a timeout between transmissions.
	// Exclusive.
	MaxPulseTicks = 8500

	// FrameBits is the number of data bits per frame: 20 address + 4 key.
	FrameBits = 24

	// The preamble LOW is 25-40x longer than its HIGH. Data bits never get
	// past ~3:1, so the window cannot match mid-frame. Inclusive bounds.
	preambleRatioMin = 25
	preambleRatioMax = 40
)

// Packed frame word layout: the 24 data bits occupy the low 24 bits with
// the key in the low nibble and the address above it; the detect flag sits
// at bit 24. Field access goes through the accessors below rather than a
// bit-field overlay, so the layout is explicit.
const (
	keyBits    = 4
	keyMask    = 1<<keyBits - 1
	addrShift  = keyBits
	addrMask   = 1<<20 - 1
	detectFlag = 1 << FrameBits
)

// Frame is the decoded result: a 20-bit transmitter address, a 4-bit key
// code, and a detect flag, packed into a single word so a completed decode
// lands in one store.
type Frame struct {
	raw uint32
}

// Address returns the 20-bit transmitter address (0 to 1048575).
func (f Frame) Address() uint32 { return f.raw >> addrShift & addrMask }

// Key returns the 4-bit key code (0 to 15) identifying the pressed button.
func (f Frame) Key() uint8 { return uint8(f.raw & keyMask) }

// Detected reports whether the frame holds a complete decoded transmission
// that has not yet been cleared by the consumer.
func (f Frame) Detected() bool { return f.raw&detectFlag != 0 }

// set stores address, key and the detect flag in a single assignment.
func (f *Frame) set(addr uint32, key uint8) {
	f.raw = (addr&addrMask)<<addrShift | uint32(key)&keyMask | detectFlag
}

// clearDetect drops the detect flag, leaving address and key readable.
func (f *Frame) clearDetect() { f.raw &^= detectFlag }

// Counts tracks decoder activity since startup.
type Counts struct {
	// Frames is the number of complete 24-bit frames decoded.
	Frames int
	// Preambles is the number of preamble matches (frame starts seen).
	Preambles int
	// Noise is the number of pulse pairs rejected by the duration check.
	Noise int
	// Aborted is the number of partial frames dropped mid-collection.
	Aborted int
}

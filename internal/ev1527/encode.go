package ev1527

// PulsePair is one (HIGH, LOW) tick duration pair as it appears on the
// wire. Marshal produces these; the decoder consumes the two halves via
// OnPulsePair.
type PulsePair struct {
	High uint32
	Low  uint32
}

// Nominal transmitter timing, in ticks. Real remotes run a base period T of
// roughly 300-350µs; 320 sits in the middle of that band.
const (
	basePeriod   = 320
	preambleLows = 31
)

// Nominal pulse pairs for the three symbols a transmitter emits.
var (
	preamblePair = PulsePair{High: basePeriod, Low: preambleLows * basePeriod}
	onePair      = PulsePair{High: 3 * basePeriod, Low: basePeriod}
	zeroPair     = PulsePair{High: basePeriod, Low: 3 * basePeriod}
)

// Marshal renders the pulse train a transmitter sends for the given address
// and key: one preamble pair followed by 24 data-bit pairs, address bits
// first (most significant leading), key bits last. Useful for loopback
// tests and for driving a TX module.
func Marshal(addr uint32, key uint8) []PulsePair {
	out := make([]PulsePair, 0, FrameBits+1)
	out = append(out, preamblePair)

	word := (addr&addrMask)<<keyBits | uint32(key)&keyMask
	for i := FrameBits - 1; i >= 0; i-- {
		if word>>uint(i)&1 == 1 {
			out = append(out, onePair)
		} else {
			out = append(out, zeroPair)
		}
	}
	return out
}

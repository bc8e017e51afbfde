package gpio

// FakeWatcher is a test double that replays scripted pulses.
type FakeWatcher struct {
	pulses chan Pulse

	// Closed tracks if Close was called.
	Closed bool

	finished bool
}

// NewFakeWatcher creates a FakeWatcher whose channel is pre-loaded with the
// given pulses. The channel stays open so consumers block rather than spin
// once the script runs out; call Finish to close it.
func NewFakeWatcher(pulses []Pulse) *FakeWatcher {
	ch := make(chan Pulse, len(pulses)+16)
	for _, p := range pulses {
		ch <- p
	}
	return &FakeWatcher{pulses: ch}
}

// Pulses returns the scripted pulse channel.
func (f *FakeWatcher) Pulses() <-chan Pulse { return f.pulses }

// Send queues one more pulse. Panics if the buffer headroom is exhausted.
func (f *FakeWatcher) Send(p Pulse) {
	select {
	case f.pulses <- p:
	default:
		panic("gpio: FakeWatcher buffer full")
	}
}

// Finish closes the pulse channel, signalling end of script to consumers.
func (f *FakeWatcher) Finish() {
	if !f.finished {
		f.finished = true
		close(f.pulses)
	}
}

// Close marks the watcher as closed.
func (f *FakeWatcher) Close() error {
	f.Closed = true
	return nil
}

//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealWatcher captures both-edge events from a receiver module wired to a
// GPIO line and pairs them into Pulse values: a falling edge closes the
// HIGH half, the next rising edge closes the LOW half and completes the
// pair.
type RealWatcher struct {
	chip   *gpiocdev.Chip
	line   *gpiocdev.Line
	pulses chan Pulse
	invert bool

	// Pairing state, touched only by the gpiocdev event goroutine.
	lastEdge time.Duration
	haveEdge bool
	high     uint32
	haveHigh bool
}

// NewRealWatcher opens the named GPIO chip and requests the data pin with
// both-edge event detection. Set invert for receiver modules whose data
// output is active low.
func NewRealWatcher(chipName string, pin int, invert bool) (*RealWatcher, error) {
	w := &RealWatcher{
		pulses: make(chan Pulse, PulseBuffer),
		invert: invert,
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(w.handleEvent))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request data pin %d: %w", pin, err)
	}

	w.chip = chip
	w.line = line
	return w, nil
}

// handleEvent runs on the gpiocdev event goroutine. It must not block:
// completed pairs are handed off with a non-blocking send and dropped if
// the run loop is behind.
func (w *RealWatcher) handleEvent(evt gpiocdev.LineEvent) {
	rising := evt.Type == gpiocdev.LineEventRisingEdge
	if w.invert {
		rising = !rising
	}

	if !w.haveEdge {
		// First edge only establishes a time base.
		w.lastEdge = evt.Timestamp
		w.haveEdge = true
		return
	}

	ticks := uint32((evt.Timestamp - w.lastEdge) / time.Microsecond)
	w.lastEdge = evt.Timestamp

	if !rising {
		// Falling edge: the elapsed time was the HIGH half.
		w.high = ticks
		w.haveHigh = true
		return
	}

	// Rising edge: the elapsed time was the LOW half, completing the pair.
	if !w.haveHigh {
		return
	}
	w.haveHigh = false

	select {
	case w.pulses <- Pulse{High: w.high, Low: ticks}:
	default:
	}
}

// Pulses returns the channel of completed pulse pairs.
func (w *RealWatcher) Pulses() <-chan Pulse { return w.pulses }

// Close stops edge detection and releases the line and chip.
func (w *RealWatcher) Close() error {
	var errs []error
	if w.line != nil {
		if err := w.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close data pin: %w", err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

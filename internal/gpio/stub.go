//go:build !linux

package gpio

import "errors"

// RealWatcher is not available on non-Linux platforms.
type RealWatcher struct{}

// NewRealWatcher returns an error on non-Linux platforms.
func NewRealWatcher(chipName string, pin int, invert bool) (*RealWatcher, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Pulses is not implemented on non-Linux platforms.
func (w *RealWatcher) Pulses() <-chan Pulse { return nil }

// Close is not implemented on non-Linux platforms.
func (w *RealWatcher) Close() error { return nil }

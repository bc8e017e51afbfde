package main

import (
	"encoding/json"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/rf-remote/internal/ev1527"
	"github.com/sweeney/rf-remote/internal/gpio"
	"github.com/sweeney/rf-remote/internal/mqtt"
	"github.com/sweeney/rf-remote/internal/status"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env. If pi-helper changes its var names, this test fails
// and we update the constants — not the other way around.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfoAllSet(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo")
	}
	if info.Type != "wifi" {
		t.Errorf("Type: got %q, want %q", info.Type, "wifi")
	}
	if info.IP != "192.168.1.100" {
		t.Errorf("IP: got %q, want %q", info.IP, "192.168.1.100")
	}
	if info.SSID != "MyNetwork" {
		t.Errorf("SSID: got %q, want %q", info.SSID, "MyNetwork")
	}
}

func TestReadNetworkInfoNoneSet(t *testing.T) {
	info := readNetworkInfo()
	if info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}
}

// --- runLoop tests ---

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from runLoop's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// transmission converts a marshaled frame into watcher pulses.
func transmission(addr uint32, key uint8) []gpio.Pulse {
	pairs := ev1527.Marshal(addr, key)
	pulses := make([]gpio.Pulse, len(pairs))
	for i, p := range pairs {
		pulses[i] = gpio.Pulse{High: p.High, Low: p.Low}
	}
	return pulses
}

func newTestTracker(start time.Time) *status.Tracker {
	return status.NewTracker(start, status.Config{
		Chip:   "gpiochip0",
		Pin:    27,
		Broker: "tcp://broker:1883",
	})
}

func TestRunLoopDecodesAndPublishes(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	watcher := gpio.NewFakeWatcher(transmission(0x12345, 0xA))
	watcher.Finish()
	publisher := mqtt.NewFakePublisher()
	tracker := newTestTracker(start)

	if err := runLoop(watcher.Pulses(), publisher, publisher, tracker, fakeClock(start, time.Second), nil, nil); err != nil {
		t.Fatalf("runLoop: %v", err)
	}

	if len(publisher.Events) != 1 {
		t.Fatalf("expected 1 press event, got %d", len(publisher.Events))
	}
	e := publisher.Events[0]
	if e.Address != 0x12345 {
		t.Errorf("address: got %#x, want 0x12345", e.Address)
	}
	if e.Key != 0xA {
		t.Errorf("key: got %#x, want 0xA", e.Key)
	}
	if !e.Timestamp.Equal(start) {
		t.Errorf("timestamp: got %v, want %v", e.Timestamp, start)
	}

	snap := tracker.Snapshot()
	if snap.Last == nil || snap.Last.Address != 0x12345 {
		t.Errorf("tracker last press: got %+v", snap.Last)
	}
	if snap.Counts.Frames != 1 {
		t.Errorf("tracker frames: got %d, want 1", snap.Counts.Frames)
	}
}

func TestRunLoopNoiseAndAbortedFrame(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// A preamble, a few bits, then a noise burst that aborts the frame,
	// then a clean transmission.
	var pulses []gpio.Pulse
	pulses = append(pulses, gpio.Pulse{High: 320, Low: 9920}) // preamble
	pulses = append(pulses, gpio.Pulse{High: 960, Low: 320})  // bit
	pulses = append(pulses, gpio.Pulse{High: 960, Low: 320})  // bit
	pulses = append(pulses, gpio.Pulse{High: 50, Low: 80})    // noise, aborts
	pulses = append(pulses, transmission(0xBEEF0, 0x5)...)

	watcher := gpio.NewFakeWatcher(pulses)
	watcher.Finish()
	publisher := mqtt.NewFakePublisher()
	tracker := newTestTracker(start)

	if err := runLoop(watcher.Pulses(), publisher, publisher, tracker, fakeClock(start, time.Second), nil, nil); err != nil {
		t.Fatalf("runLoop: %v", err)
	}

	if len(publisher.Events) != 1 {
		t.Fatalf("expected 1 press event, got %d", len(publisher.Events))
	}
	if publisher.Events[0].Address != 0xBEEF0 {
		t.Errorf("address: got %#x, want 0xBEEF0", publisher.Events[0].Address)
	}

	snap := tracker.Snapshot()
	if snap.Counts.Aborted != 1 {
		t.Errorf("aborted count: got %d, want 1", snap.Counts.Aborted)
	}
	if snap.Counts.Noise != 1 {
		t.Errorf("noise count: got %d, want 1", snap.Counts.Noise)
	}
}

func TestRunLoopPublishErrorDoesNotStop(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var pulses []gpio.Pulse
	pulses = append(pulses, transmission(0x11111, 0x1)...)
	pulses = append(pulses, transmission(0x22222, 0x2)...)

	watcher := gpio.NewFakeWatcher(pulses)
	watcher.Finish()
	publisher := mqtt.NewFakePublisher()
	publisher.PublishError = syscall.EPIPE
	tracker := newTestTracker(start)

	if err := runLoop(watcher.Pulses(), publisher, publisher, tracker, fakeClock(start, time.Second), nil, nil); err != nil {
		t.Fatalf("runLoop should survive publish errors, got %v", err)
	}

	// Both frames were still decoded and tracked.
	if snap := tracker.Snapshot(); snap.Counts.Frames != 2 {
		t.Errorf("frames: got %d, want 2", snap.Counts.Frames)
	}
}

func TestRunLoopShutdownOnSignal(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	watcher := gpio.NewFakeWatcher(nil)
	publisher := mqtt.NewFakePublisher()
	publisher.Connected = true
	tracker := newTestTracker(start)

	sigCh := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() {
		done <- runLoop(watcher.Pulses(), publisher, publisher, tracker, fakeClock(start, time.Second), nil, sigCh)
	}()

	sigCh <- syscall.SIGTERM
	if err := <-done; err != nil {
		t.Fatalf("runLoop: %v", err)
	}

	if len(publisher.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(publisher.SystemEvents))
	}
	ev := publisher.SystemEvents[0]
	if ev.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", ev.Event)
	}
	if ev.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", ev.Reason)
	}
	if !ev.Retained {
		t.Error("shutdown event should be retained")
	}

	var snap status.StatusJSON
	if err := json.Unmarshal(ev.RawPayload, &snap); err != nil {
		t.Fatalf("unmarshal shutdown payload: %v", err)
	}
	if snap.Status.Event != "SHUTDOWN" {
		t.Errorf("payload event: got %q", snap.Status.Event)
	}
	if !snap.Status.MQTT.Connected {
		t.Error("payload should reflect the connected broker")
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	watcher := gpio.NewFakeWatcher(nil)
	publisher := mqtt.NewFakePublisher()
	tracker := newTestTracker(start)

	sigCh := make(chan os.Signal, 1)
	hbCh := make(chan time.Time, 1)
	done := make(chan error, 1)
	go func() {
		done <- runLoop(watcher.Pulses(), publisher, publisher, tracker, fakeClock(start, time.Second), hbCh, sigCh)
	}()

	hbCh <- start.Add(15 * time.Minute)
	// Give the loop a moment to take the heartbeat before the signal.
	time.Sleep(100 * time.Millisecond)
	sigCh <- syscall.SIGINT
	if err := <-done; err != nil {
		t.Fatalf("runLoop: %v", err)
	}

	if len(publisher.SystemEvents) != 2 {
		t.Fatalf("expected HEARTBEAT then SHUTDOWN, got %d events", len(publisher.SystemEvents))
	}
	if publisher.SystemEvents[0].Event != "HEARTBEAT" {
		t.Errorf("first event: got %q, want HEARTBEAT", publisher.SystemEvents[0].Event)
	}
	if !strings.Contains(string(publisher.SystemEvents[0].RawPayload), `"HEARTBEAT"`) {
		t.Error("heartbeat payload should carry the status snapshot")
	}
	if publisher.SystemEvents[1].Event != "SHUTDOWN" {
		t.Errorf("second event: got %q, want SHUTDOWN", publisher.SystemEvents[1].Event)
	}
}

func TestSniffLoopDrainsUntilClose(t *testing.T) {
	watcher := gpio.NewFakeWatcher([]gpio.Pulse{
		{High: 320, Low: 9920},
		{High: 960, Low: 320},
	})
	watcher.Finish()

	if err := sniffLoop(watcher.Pulses(), nil); err != nil {
		t.Fatalf("sniffLoop: %v", err)
	}
}

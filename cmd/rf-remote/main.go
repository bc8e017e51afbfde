// Command rf-remote decodes EV1527 remote-control transmissions from a
// GPIO-attached 433MHz receiver and publishes them to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/rf-remote/internal/config"
	"github.com/sweeney/rf-remote/internal/ev1527"
	"github.com/sweeney/rf-remote/internal/gpio"
	"github.com/sweeney/rf-remote/internal/mqtt"
	"github.com/sweeney/rf-remote/internal/status"
	"github.com/sweeney/rf-remote/internal/web"
)

func main() {
	def := config.Default()

	cfgPath := flag.String("config", "", "YAML config file (optional, flags override it)")
	chip := flag.String("chip", def.Receiver.Chip, "GPIO chip name")
	pin := flag.Int("pin", def.Receiver.Pin, "BCM pin number of the receiver data line")
	invert := flag.Bool("invert", def.Receiver.Invert, "Invert data line polarity (active-low receivers)")
	broker := flag.String("broker", def.MQTT.Broker, "MQTT broker address")
	clientID := flag.String("client-id", def.MQTT.ClientID, "MQTT client ID (empty for a random suffix)")
	heartbeat := flag.Duration("heartbeat", time.Duration(def.Heartbeat.IntervalMs)*time.Millisecond, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", def.HTTP.Addr, "HTTP status address (empty to disable)")
	sniff := flag.Bool("sniff", false, "Print raw pulse pairs instead of decoding (wiring check)")

	flag.Parse()

	cfg := def
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		cfg = loaded
	}

	// Explicitly set flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "chip":
			cfg.Receiver.Chip = *chip
		case "pin":
			cfg.Receiver.Pin = *pin
		case "invert":
			cfg.Receiver.Invert = *invert
		case "broker":
			cfg.MQTT.Broker = *broker
		case "client-id":
			cfg.MQTT.ClientID = *clientID
		case "heartbeat":
			cfg.Heartbeat.IntervalMs = heartbeat.Milliseconds()
		case "http":
			cfg.HTTP.Addr = *httpAddr
		}
	})

	if err := config.Validate(&cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *sniff); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, sniff bool) error {
	watcher, err := gpio.NewRealWatcher(cfg.Receiver.Chip, cfg.Receiver.Pin, cfg.Receiver.Invert)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer watcher.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Sniff mode: dump raw pulse timings for wiring/antenna checks.
	if sniff {
		return sniffLoop(watcher.Pulses(), sigCh)
	}

	publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:        cfg.Receiver.Chip,
		Pin:         cfg.Receiver.Pin,
		Invert:      cfg.Receiver.Invert,
		HeartbeatMs: cfg.Heartbeat.IntervalMs,
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	heartbeat := time.Duration(cfg.Heartbeat.IntervalMs) * time.Millisecond
	log.Printf("started: chip=%s pin=%d invert=%v broker=%s heartbeat=%v",
		cfg.Receiver.Chip, cfg.Receiver.Pin, cfg.Receiver.Invert, cfg.MQTT.Broker, heartbeat)

	var hbTick <-chan time.Time
	if heartbeat > 0 {
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		hbTick = ticker.C
	}

	return runLoop(watcher.Pulses(), publisher, publisher, tracker, time.Now, hbTick, sigCh)
}

func runLoop(pulses <-chan gpio.Pulse, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, heartbeatTick <-chan time.Time, sig <-chan os.Signal) error {
	decoder := ev1527.NewDecoder()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case p, ok := <-pulses:
			if !ok {
				// Pulse source closed; nothing left to decode.
				return nil
			}

			if decoder.OnPulsePair(p.High, p.Low) {
				t := now()
				frame := decoder.ReadFrame()
				decoder.ClearDetected()

				log.Printf("decoded: address=0x%05X key=%d", frame.Address(), frame.Key())
				if tracker != nil {
					tracker.RecordPress(frame.Address(), frame.Key(), t)
				}
				if err := publisher.Publish(mqtt.PressEvent{
					Timestamp: t,
					Address:   frame.Address(),
					Key:       frame.Key(),
				}); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			if tracker != nil {
				tracker.SetCounts(decoder.CountsSnapshot())
			}

		case <-heartbeatTick:
			hbEvent := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "HEARTBEAT",
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				// Refresh network info for heartbeat
				if net := readNetworkInfo(); net != nil {
					tracker.SetNetwork(net)
				}
				snap := tracker.Snapshot()
				log.Printf("heartbeat: uptime=%v frames=%d preambles=%d noise=%d aborted=%d",
					snap.Uptime().Truncate(time.Second), snap.Counts.Frames,
					snap.Counts.Preambles, snap.Counts.Noise, snap.Counts.Aborted)
				hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}
	}
}

// sniffLoop prints raw pulse pairs until interrupted or the source closes.
// Handy for verifying receiver wiring and antenna placement before trusting
// the decoder.
func sniffLoop(pulses <-chan gpio.Pulse, sig <-chan os.Signal) error {
	log.Printf("sniffing pulse pairs (interrupt to stop)")
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, stopping", s)
			return nil
		case p, ok := <-pulses:
			if !ok {
				return nil
			}
			fmt.Printf("high=%d low=%d total=%d\n", p.High, p.Low, p.High+p.Low)
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

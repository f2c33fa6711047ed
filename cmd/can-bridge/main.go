// Command can-bridge owns the CAN interface. It decodes incoming frames
// into typed events, publishes them on the event bus, and writes frames
// queued on the outbound topic back to the bus. It is the only process
// holding the bus handle; everything else attaches over MQTT.
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

	"github.com/rnse-control/canbridge/internal/canio"
	"github.com/rnse-control/canbridge/internal/config"
	"github.com/rnse-control/canbridge/internal/frame"
	"github.com/rnse-control/canbridge/internal/mqtt"
	"github.com/rnse-control/canbridge/internal/status"
	"github.com/rnse-control/canbridge/internal/web"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to configuration file")
	ifname := flag.String("if", "", "CAN interface (overrides config)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", ":8035", "HTTP status address (empty to disable)")
	flag.Parse()

	if err := run(*configPath, *ifname, *broker, *httpAddr); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(configPath, ifname, broker, httpAddr string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if ifname != "" {
		cfg.CANInterface = ifname
	}
	if broker != "" {
		cfg.MQTT.Broker = broker
	}

	bus, err := canio.Open(cfg.CANInterface)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.CANInterface, err)
	}

	client, err := mqtt.Connect(cfg.MQTT.Broker, cfg.MQTT.TopicPrefix, "can-bridge")
	if err != nil {
		return err
	}
	defer client.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Interface:   cfg.CANInterface,
		Broker:      cfg.MQTT.Broker,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		HTTPAddr:    httpAddr,
	})
	tracker.SetMQTTConnected(client.IsConnected())

	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	decoder := frame.NewDecoder(cfg.IDs())
	bus.Subscribe(func(f frame.Frame) {
		handleFrame(decoder, client, tracker, f)
	})

	txCh, err := client.SubscribeTX(64)
	if err != nil {
		return err
	}

	busErr := make(chan error, 1)
	go func() {
		busErr <- bus.ConnectAndPublish()
	}()

	log.Printf("started: if=%s broker=%s prefix=%s", cfg.CANInterface, cfg.MQTT.Broker, cfg.MQTT.TopicPrefix)

	statsTicker := time.NewTicker(time.Minute)
	defer statsTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(bus, client, tracker, txCh, busErr, statsTicker.C, sigCh)
}

// handleFrame decodes one received frame and publishes its envelope.
// Unknown and short frames are counted and dropped, never fatal.
func handleFrame(decoder *frame.Decoder, sink mqtt.EventSink, tracker *status.Tracker, f frame.Frame) {
	ev, ok := decoder.Decode(f)
	if !ok {
		tracker.RecordFrame("", false)
		return
	}
	env := frame.NewEnvelope(f.Time, f, ev)
	if err := sink.PublishEvent(env); err != nil {
		log.Printf("publish %s event: %v", ev.Kind(), err)
	}
	tracker.RecordFrame(ev.Kind(), true)
}

func runLoop(bus canio.Bus, conn mqtt.ConnectionStatus, tracker *status.Tracker, tx <-chan frame.Frame, busErr <-chan error, statsTick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			bus.Disconnect()
			return nil

		case err := <-busErr:
			if err != nil {
				return fmt.Errorf("bus receive loop: %w", err)
			}
			return nil

		case f := <-tx:
			if err := bus.Publish(f); err != nil {
				log.Printf("write %v: %v", f, err)
				continue
			}
			tracker.RecordTX()

		case <-statsTick:
			tracker.SetMQTTConnected(conn.IsConnected())
			snap := tracker.Snapshot()
			log.Printf("stats: received=%d published=%d skipped=%d tx=%d connected=%v",
				snap.Counts.Received, snap.Counts.Published, snap.Counts.DecodeSkips,
				snap.Counts.Transmitted, snap.MQTTConnected)
		}
	}
}

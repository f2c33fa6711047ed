// Command fis-writer pushes two lines of text to the instrument cluster
// display. Lines come from the configuration file (or flags) and are
// queued on the outbound topic for can-bridge to write to the bus,
// refreshed periodically so the cluster keeps showing them.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rnse-control/canbridge/internal/config"
	"github.com/rnse-control/canbridge/internal/fis"
	"github.com/rnse-control/canbridge/internal/frame"
	"github.com/rnse-control/canbridge/internal/mqtt"
)

// refreshInterval re-sends the lines so the cluster does not revert to
// its own display.
const refreshInterval = 2 * time.Second

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to configuration file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	line1 := flag.String("line1", "", "First display line (overrides config)")
	line2 := flag.String("line2", "", "Second display line (overrides config)")
	once := flag.Bool("once", false, "Write the lines once and exit")
	flag.Parse()

	if err := run(*configPath, *broker, *line1, *line2, *once); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(configPath, broker, line1, line2 string, once bool) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if broker != "" {
		cfg.MQTT.Broker = broker
	}
	if line1 != "" {
		cfg.Features.FISDisplay.Line1 = line1
	}
	if line2 != "" {
		cfg.Features.FISDisplay.Line2 = line2
	}
	// Explicit line flags count as enabling; the config flag gates only
	// the unattended case.
	if !cfg.Features.FISDisplay.Enabled && line1 == "" && line2 == "" {
		return fmt.Errorf("fis display disabled in config")
	}

	frames := fis.LineFrames(cfg.IDs(), cfg.Features.FISDisplay.Line1, cfg.Features.FISDisplay.Line2)

	client, err := mqtt.Connect(cfg.MQTT.Broker, cfg.MQTT.TopicPrefix, "fis-writer")
	if err != nil {
		return err
	}
	defer client.Close()

	if err := writeLines(client, frames); err != nil {
		return err
	}
	log.Printf("wrote display lines %q / %q", cfg.Features.FISDisplay.Line1, cfg.Features.FISDisplay.Line2)
	if once {
		return nil
	}

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(client, frames, ticker.C, sigCh)
}

func runLoop(sink mqtt.FrameSink, frames []frame.Frame, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			return nil
		case <-tick:
			if err := writeLines(sink, frames); err != nil {
				return err
			}
		}
	}
}

// writeLines queues both display frames. A failed write is fatal; a
// half-updated display means the transport is gone.
func writeLines(sink mqtt.FrameSink, frames []frame.Frame) error {
	for _, f := range frames {
		if err := sink.PublishFrame(f); err != nil {
			return fmt.Errorf("write display frame %03X: %w", f.ID, err)
		}
	}
	return nil
}

// Command key-control turns classified button presses into virtual
// keyboard input. It subscribes to the MMI, steering-wheel and source
// events published by can-bridge, runs the press classifier, and injects
// the bound key actions through a uinput device.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rnse-control/canbridge/internal/classify"
	"github.com/rnse-control/canbridge/internal/config"
	"github.com/rnse-control/canbridge/internal/feature"
	"github.com/rnse-control/canbridge/internal/frame"
	"github.com/rnse-control/canbridge/internal/keys"
	"github.com/rnse-control/canbridge/internal/mqtt"
)

// tickInterval drives cooldown-expiry checks for presses whose release
// frame never arrived.
const tickInterval = 50 * time.Millisecond

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to configuration file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	device := flag.String("device", keys.DefaultDevice, "uinput device path")
	flag.Parse()

	if err := run(*configPath, *broker, *device); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(configPath, broker, device string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if broker != "" {
		cfg.MQTT.Broker = broker
	}

	// No virtual keyboard means nothing this process does can work;
	// fixing it needs an operator (permissions, uinput module).
	emitter, err := keys.NewUinputEmitter(device, "canbridge-keys")
	if err != nil {
		return fmt.Errorf("create virtual keyboard: %w", err)
	}
	defer emitter.Close()

	client, err := mqtt.Connect(cfg.MQTT.Broker, cfg.MQTT.TopicPrefix, "key-control")
	if err != nil {
		return err
	}
	defer client.Close()

	kinds := []frame.Kind{frame.KindMMI, frame.KindMFSW}
	var source *feature.SourcePlay
	if cfg.Features.SourcePlayPause {
		kinds = append(kinds, frame.KindSource)
		source = feature.NewSourcePlay(emitter, cfg.VideoSignatures(),
			cfg.Source.PlayAction, cfg.Source.PauseAction)
	}
	events, err := client.SubscribeEvents(kinds, 64)
	if err != nil {
		return err
	}

	classifier := classify.New(cfg.Classifier())

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("started: broker=%s prefix=%s device=%s source_play_pause=%v",
		cfg.MQTT.Broker, cfg.MQTT.TopicPrefix, device, cfg.Features.SourcePlayPause)

	return runLoop(classifier, emitter, source, events, ticker.C, sigCh, time.Now)
}

func runLoop(classifier *classify.Classifier, emitter keys.Emitter, source *feature.SourcePlay, events <-chan frame.Envelope, tick <-chan time.Time, sig <-chan os.Signal, now func() time.Time) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			return nil

		case env := <-events:
			ev, err := env.Event()
			if err != nil {
				log.Printf("drop event: %v", err)
				continue
			}
			if sc, ok := ev.(frame.SourceChange); ok {
				if source == nil {
					continue
				}
				action, err := source.OnSource(sc)
				if err != nil {
					return err
				}
				if action != "" {
					log.Printf("source change, pressed %q", action)
				}
				continue
			}
			for _, press := range classifier.HandleEvent(ev, now()) {
				if err := inject(emitter, press); err != nil {
					return err
				}
			}

		case t := <-tick:
			for _, press := range classifier.Tick(t) {
				if err := inject(emitter, press); err != nil {
					return err
				}
			}
		}
	}
}

// inject presses the bound key for one classified event. Unbound presses
// are logged and dropped; a failed injection is fatal since the device
// state is unknown afterwards.
func inject(emitter keys.Emitter, press classify.Event) error {
	if press.Action == "" {
		log.Printf("%s %s: no binding", press.Control, press.Kind)
		return nil
	}
	if err := emitter.Press(press.Action); err != nil {
		return fmt.Errorf("inject %q for %s %s: %w", press.Action, press.Control, press.Kind, err)
	}
	log.Printf("%s %s -> %q", press.Control, press.Kind, press.Action)
	return nil
}

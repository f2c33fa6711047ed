// Command car-features runs the comfort controllers: day/night theme
// switching, clock synchronization, the auto-shutdown supervisor and the
// periodic TV-presence announcement. It consumes decoded events from the
// bus and acts on the host through external commands.
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
	"github.com/rnse-control/canbridge/internal/feature"
	"github.com/rnse-control/canbridge/internal/frame"
	"github.com/rnse-control/canbridge/internal/mqtt"
)

// tvAnnounceInterval keeps the TV input selectable in the head unit's
// source menu.
const tvAnnounceInterval = 500 * time.Millisecond

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to configuration file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	flag.Parse()

	if err := run(*configPath, *broker); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// controllers bundles the enabled feature state machines; nil fields are
// disabled features.
type controllers struct {
	dayNight *feature.DayNight
	timeSync *feature.TimeSync
	shutdown *feature.Shutdown
	tvFrame  frame.Frame
}

func run(configPath, broker string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if broker != "" {
		cfg.MQTT.Broker = broker
	}

	runner := feature.ExecRunner{}
	var ctl controllers
	var kinds []frame.Kind
	if cfg.Features.DayNightMode {
		ctl.dayNight = feature.NewDayNight(runner, cfg.Paths.DayNightScript, cfg.DayNightCooldown())
		kinds = append(kinds, frame.KindLight)
	}
	if cfg.Features.TimeSync.Enabled {
		ctl.timeSync = feature.NewTimeSync(runner, cfg.Paths.DateCommand,
			cfg.ClockFormat(), cfg.Location(), cfg.TimeSyncThreshold())
		kinds = append(kinds, frame.KindClock)
	}
	if cfg.Features.AutoShutdown.Enabled {
		ctl.shutdown = feature.NewShutdown(runner, cfg.Paths.ShutdownCommand,
			cfg.Features.AutoShutdown.Trigger, cfg.ShutdownDelay())
		kinds = append(kinds, frame.KindIgnition)
	}
	if len(kinds) == 0 && !cfg.Features.TVSimulation {
		return fmt.Errorf("no features enabled")
	}

	client, err := mqtt.Connect(cfg.MQTT.Broker, cfg.MQTT.TopicPrefix, "car-features")
	if err != nil {
		return err
	}
	defer client.Close()

	var events <-chan frame.Envelope
	if len(kinds) > 0 {
		events, err = client.SubscribeEvents(kinds, 64)
		if err != nil {
			return err
		}
	}

	houseTicker := time.NewTicker(time.Second)
	defer houseTicker.Stop()

	var tvTick <-chan time.Time
	if cfg.Features.TVSimulation {
		payload := frame.TVAnnouncePayload()
		ctl.tvFrame = frame.MustNew(cfg.IDs().TV, payload[:])
		tvTicker := time.NewTicker(tvAnnounceInterval)
		defer tvTicker.Stop()
		tvTick = tvTicker.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("started: daynight=%v timesync=%v shutdown=%v tv=%v",
		ctl.dayNight != nil, ctl.timeSync != nil, ctl.shutdown != nil, cfg.Features.TVSimulation)

	return runLoop(ctl, client, events, houseTicker.C, tvTick, sigCh, time.Now)
}

func runLoop(ctl controllers, sink mqtt.FrameSink, events <-chan frame.Envelope, houseTick, tvTick <-chan time.Time, sig <-chan os.Signal, now func() time.Time) error {
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
			handleEvent(ctl, ev, now())

		case t := <-houseTick:
			if ctl.shutdown == nil {
				continue
			}
			fired, err := ctl.shutdown.Tick(t)
			if err != nil {
				log.Printf("shutdown command failed: %v", err)
				continue
			}
			if fired {
				// The host is going down; nothing left to supervise.
				log.Printf("shutdown command issued")
				return nil
			}

		case <-tvTick:
			if err := sink.PublishFrame(ctl.tvFrame); err != nil {
				log.Printf("tv presence: %v", err)
			}
		}
	}
}

func handleEvent(ctl controllers, ev frame.Event, now time.Time) {
	switch e := ev.(type) {
	case frame.LightStatus:
		if ctl.dayNight == nil {
			return
		}
		switched, err := ctl.dayNight.OnLight(e, now)
		if err != nil {
			log.Printf("theme switch: %v", err)
			return
		}
		if switched {
			log.Printf("applied %s theme", ctl.dayNight.Applied())
		}
	case frame.ClockData:
		if ctl.timeSync == nil {
			return
		}
		applied, err := ctl.timeSync.OnClock(e, now)
		if err != nil {
			log.Printf("time sync: %v", err)
			return
		}
		if applied {
			log.Printf("system clock set from car time")
		}
	case frame.IgnitionStatus:
		if ctl.shutdown == nil {
			return
		}
		prev := ctl.shutdown.State()
		ctl.shutdown.OnIgnition(e, now)
		if st := ctl.shutdown.State(); st != prev {
			log.Printf("shutdown supervisor: %s", st)
		}
	}
}

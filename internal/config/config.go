// Package config loads the shared JSON configuration file. All four
// commands read the same file; each uses the sections it needs. Loading
// validates everything up front so a bad binding or threshold fails the
// process at startup, never per-event.
package config

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rnse-control/canbridge/internal/classify"
	"github.com/rnse-control/canbridge/internal/frame"
	"github.com/rnse-control/canbridge/internal/keys"
)

// DefaultPath is where the commands look for the file when -config is
// not given.
const DefaultPath = "/etc/canbridge/config.json"

// MQTTConfig names the event bus endpoint and topic namespace.
type MQTTConfig struct {
	Broker      string `json:"broker"`
	TopicPrefix string `json:"topic_prefix"`
}

// TimeSyncConfig controls the clock synchronization feature.
type TimeSyncConfig struct {
	Enabled bool `json:"enabled"`
	// DataFormat selects the clock payload packing: "bcd" or "hex"
	// (legacy aliases "old_logic"/"new_logic" are accepted).
	DataFormat string `json:"data_format"`
	// CarTimeZone is the IANA zone the cluster broadcasts its clock in.
	CarTimeZone string `json:"car_time_zone"`
}

// ShutdownConfig controls the auto-shutdown feature.
type ShutdownConfig struct {
	Enabled bool `json:"enabled"`
	// Trigger is "ignition_off" or "key_pulled".
	Trigger string `json:"trigger"`
}

// FISConfig holds the cluster display lines.
type FISConfig struct {
	Enabled bool   `json:"enabled"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
}

// Features holds the per-feature enable flags and sub-options.
type Features struct {
	DayNightMode    bool           `json:"day_night_mode"`
	TimeSync        TimeSyncConfig `json:"time_sync"`
	AutoShutdown    ShutdownConfig `json:"auto_shutdown"`
	TVSimulation    bool           `json:"tv_simulation"`
	FISDisplay      FISConfig      `json:"fis_display"`
	SourcePlayPause bool           `json:"source_play_pause"`
}

// Thresholds carries the classifier and controller timing knobs. The
// long/extended press thresholds may be given either as a repeat-message
// count or as milliseconds; the millisecond form wins when both are set,
// so a config can override the count-based defaults. Counts convert to
// durations through the repeat period, see classify.DurationForCount.
type Thresholds struct {
	CooldownMS               int `json:"cooldown_ms"`
	PressPeriodMS            int `json:"press_period_ms"`
	LongPressCount           int `json:"long_press_count"`
	LongPressMS              int `json:"long_press_ms"`
	ExtendedPressCount       int `json:"extended_press_count"`
	ExtendedPressMS          int `json:"extended_press_ms"`
	ShutdownDelaySeconds     int `json:"shutdown_delay_seconds"`
	TimeSyncThresholdMinutes int `json:"time_sync_threshold_minutes"`
	DayNightCooldownSeconds  int `json:"daynight_cooldown_seconds"`
}

// Bindings maps control discriminators to key action names. MMI controls
// are keyed "mask0,mask1" (decimal), wheel controls by the fixed names
// mfsw.up, mfsw.down, mfsw.mode. An empty action is valid and means
// "classify but inject nothing". ScrollExempt maps a control to its
// scroll direction ("up"/"down"); listed controls bypass debounce.
type Bindings struct {
	Short        map[string]string `json:"short"`
	Long         map[string]string `json:"long"`
	Extended     map[string]string `json:"extended"`
	ScrollExempt map[string]string `json:"scroll_exempt"`
}

// SourceConfig identifies the video input and the actions bound to
// entering and leaving it.
type SourceConfig struct {
	// VideoSignatures are hex byte sequences matched against the source
	// status payload. Full 8-byte signatures compare whole-frame;
	// shorter ones compare at the source byte offset.
	VideoSignatures []string `json:"video_signatures"`
	PlayAction      string   `json:"play_action"`
	PauseAction     string   `json:"pause_action"`
}

// Paths names the external commands the feature controllers invoke.
type Paths struct {
	DayNightScript  string   `json:"daynight_script"`
	ShutdownCommand []string `json:"shutdown_command"`
	DateCommand     string   `json:"date_command"`
}

// Config is the full configuration file. Loaded once at startup and
// never mutated afterwards; controllers receive it by value or through
// the derived accessor types.
type Config struct {
	CANInterface string            `json:"can_interface"`
	MQTT         MQTTConfig        `json:"mqtt"`
	Features     Features          `json:"features"`
	Thresholds   Thresholds        `json:"thresholds"`
	CANIDs       map[string]string `json:"can_ids"`
	Bindings     Bindings          `json:"bindings"`
	Source       SourceConfig      `json:"source"`
	Paths        Paths             `json:"paths"`

	// derived by finish, valid after Load/Parse
	ids         frame.IDMap
	clockFormat frame.ClockFormat
	location    *time.Location
	signatures  [][]byte
	long        time.Duration
	extended    time.Duration
}

// Default returns the built-in configuration for the RNS-E platform.
func Default() Config {
	return Config{
		CANInterface: "can0",
		MQTT: MQTTConfig{
			Broker:      "tcp://127.0.0.1:1883",
			TopicPrefix: "canbridge",
		},
		Features: Features{
			TimeSync: TimeSyncConfig{
				DataFormat:  "hex",
				CarTimeZone: "UTC",
			},
			AutoShutdown: ShutdownConfig{
				Trigger: "ignition_off",
			},
		},
		Thresholds: Thresholds{
			CooldownMS:               300,
			PressPeriodMS:            100,
			LongPressCount:           5,
			ExtendedPressCount:       30,
			ShutdownDelaySeconds:     300,
			TimeSyncThresholdMinutes: 2,
			DayNightCooldownSeconds:  10,
		},
		Bindings: Bindings{
			Short: map[string]string{
				"mfsw.up":   "up",
				"mfsw.down": "down",
				"mfsw.mode": "enter",
			},
			Long: map[string]string{
				"mfsw.mode": "esc",
			},
			ScrollExempt: map[string]string{
				"mfsw.up":   "up",
				"mfsw.down": "down",
			},
		},
		Source: SourceConfig{
			VideoSignatures: []string{"37"},
			PlayAction:      "playpause",
			PauseAction:     "playpause",
		},
		Paths: Paths{
			DayNightScript:  "/opt/canbridge/daynight.sh",
			ShutdownCommand: []string{"systemctl", "poweroff"},
			DateCommand:     "date",
		},
	}
}

// Load reads the file at path over the defaults and validates the
// result. A missing file is an error; use Default directly for the
// built-in configuration.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// LoadOrDefault loads path, falling back to the built-in defaults when
// the default path does not exist. A missing file at any other path is
// still an error, since the operator asked for it explicitly.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && path == DefaultPath && errors.Is(err, os.ErrNotExist) {
		def := Default()
		if err := def.finish(); err != nil {
			return nil, err
		}
		return &def, nil
	}
	return cfg, err
}

// Parse decodes raw JSON over the defaults and validates the result.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// finish validates the configuration and computes the derived values.
func (c *Config) finish() error {
	if c.CANInterface == "" {
		return fmt.Errorf("can_interface must be set")
	}
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker must be set")
	}
	if c.MQTT.TopicPrefix == "" {
		return fmt.Errorf("mqtt.topic_prefix must be set")
	}

	var err error
	c.ids, err = c.parseIDs()
	if err != nil {
		return err
	}

	c.clockFormat, err = frame.ParseClockFormat(c.Features.TimeSync.DataFormat)
	if err != nil {
		return fmt.Errorf("time_sync.data_format: %w", err)
	}
	c.location, err = time.LoadLocation(c.Features.TimeSync.CarTimeZone)
	if err != nil {
		return fmt.Errorf("time_sync.car_time_zone: %w", err)
	}

	switch c.Features.AutoShutdown.Trigger {
	case "ignition_off", "key_pulled":
	default:
		return fmt.Errorf("auto_shutdown.trigger %q: want ignition_off or key_pulled", c.Features.AutoShutdown.Trigger)
	}

	if c.Thresholds.PressPeriodMS <= 0 {
		return fmt.Errorf("press_period_ms must be positive")
	}
	if c.Thresholds.CooldownMS <= 0 {
		return fmt.Errorf("cooldown_ms must be positive")
	}
	c.long = c.Thresholds.press(c.Thresholds.LongPressCount, c.Thresholds.LongPressMS)
	c.extended = c.Thresholds.press(c.Thresholds.ExtendedPressCount, c.Thresholds.ExtendedPressMS)
	if c.long <= 0 {
		return fmt.Errorf("long press threshold must be positive")
	}
	if c.extended > 0 && c.extended <= c.long {
		return fmt.Errorf("extended press threshold %v must exceed long press threshold %v", c.extended, c.long)
	}

	for _, table := range []map[string]string{c.Bindings.Short, c.Bindings.Long, c.Bindings.Extended} {
		for control, action := range table {
			if action == "" {
				continue
			}
			if err := keys.Validate(action); err != nil {
				return fmt.Errorf("binding for %q: %w", control, err)
			}
		}
	}
	for control, dir := range c.Bindings.ScrollExempt {
		if dir != "up" && dir != "down" {
			return fmt.Errorf("scroll_exempt %q: direction %q, want up or down", control, dir)
		}
	}

	c.signatures = c.signatures[:0]
	for _, s := range c.Source.VideoSignatures {
		sig, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
		if err != nil {
			return fmt.Errorf("source.video_signatures %q: %w", s, err)
		}
		if len(sig) == 0 || len(sig) > 8 {
			return fmt.Errorf("source.video_signatures %q: want 1 to 8 bytes", s)
		}
		c.signatures = append(c.signatures, sig)
	}
	for _, action := range []string{c.Source.PlayAction, c.Source.PauseAction} {
		if action == "" {
			continue
		}
		if err := keys.Validate(action); err != nil {
			return fmt.Errorf("source action: %w", err)
		}
	}

	if len(c.Paths.ShutdownCommand) == 0 {
		return fmt.Errorf("paths.shutdown_command must not be empty")
	}
	return nil
}

// press resolves one threshold given either in counts or milliseconds.
func (t Thresholds) press(count, millis int) time.Duration {
	if millis > 0 {
		return time.Duration(millis) * time.Millisecond
	}
	return classify.DurationForCount(count, time.Duration(t.PressPeriodMS)*time.Millisecond)
}

func (c *Config) parseIDs() (frame.IDMap, error) {
	ids := frame.DefaultIDs()
	slots := map[string]*uint32{
		"light": &ids.Light, "clock": &ids.Clock, "ignition": &ids.Ignition,
		"tv": &ids.TV, "speed": &ids.Speed, "rpm": &ids.RPM,
		"media": &ids.Media, "nav": &ids.Nav, "mmi": &ids.MMI,
		"mfsw": &ids.MFSW, "source": &ids.Source,
		"fis_line1": &ids.FISLine1, "fis_line2": &ids.FISLine2,
	}
	for name, val := range c.CANIDs {
		slot, ok := slots[name]
		if !ok {
			return ids, fmt.Errorf("can_ids: unknown record %q", name)
		}
		id, err := strconv.ParseUint(strings.TrimPrefix(val, "0x"), 16, 32)
		if err != nil || id > 0x7FF {
			return ids, fmt.Errorf("can_ids.%s: %q is not a standard identifier", name, val)
		}
		*slot = uint32(id)
	}
	return ids, nil
}

// IDs returns the identifier assignment.
func (c *Config) IDs() frame.IDMap { return c.ids }

// ClockFormat returns the parsed clock payload format.
func (c *Config) ClockFormat() frame.ClockFormat { return c.clockFormat }

// Location returns the car's time zone.
func (c *Config) Location() *time.Location { return c.location }

// VideoSignatures returns the decoded source signatures.
func (c *Config) VideoSignatures() [][]byte { return c.signatures }

// Classifier builds the press classifier configuration.
func (c *Config) Classifier() classify.Config {
	scroll := make(map[string]classify.Direction, len(c.Bindings.ScrollExempt))
	for control, dir := range c.Bindings.ScrollExempt {
		d := classify.DirUp
		if dir == "down" {
			d = classify.DirDown
		}
		scroll[control] = d
	}
	return classify.Config{
		LongPress:     c.long,
		ExtendedPress: c.extended,
		Cooldown:      time.Duration(c.Thresholds.CooldownMS) * time.Millisecond,
		Scroll:        scroll,
		Bindings: classify.Bindings{
			Short:    c.Bindings.Short,
			Long:     c.Bindings.Long,
			Extended: c.Bindings.Extended,
		},
	}
}

// ShutdownDelay returns the armed-to-shutdown delay.
func (c *Config) ShutdownDelay() time.Duration {
	return time.Duration(c.Thresholds.ShutdownDelaySeconds) * time.Second
}

// TimeSyncThreshold returns the minimum clock drift that triggers a
// correction.
func (c *Config) TimeSyncThreshold() time.Duration {
	return time.Duration(c.Thresholds.TimeSyncThresholdMinutes) * time.Minute
}

// DayNightCooldown returns the minimum interval between theme switches.
func (c *Config) DayNightCooldown() time.Duration {
	return time.Duration(c.Thresholds.DayNightCooldownSeconds) * time.Second
}

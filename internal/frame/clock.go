package frame

import (
	"fmt"
	"time"
)

// ClockFormat selects the field packing of the broadcast wall-clock
// payload. Older clusters pack the fields as BCD digits, newer ones as
// plain binary values.
type ClockFormat string

const (
	ClockBCD ClockFormat = "bcd"
	ClockHex ClockFormat = "hex"
)

// ParseClockFormat accepts the canonical names plus the legacy aliases
// found in historical configurations.
func ParseClockFormat(s string) (ClockFormat, error) {
	switch s {
	case "bcd", "old_logic":
		return ClockBCD, nil
	case "hex", "new_logic", "":
		return ClockHex, nil
	}
	return "", fmt.Errorf("unknown clock format %q", s)
}

// ClockReading is the decoded wall-clock broadcast, in the car's local
// time zone.
type ClockReading struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// Time converts the reading into a time.Time in the given location.
func (r ClockReading) Time(loc *time.Location) time.Time {
	return time.Date(r.Year, time.Month(r.Month), r.Day, r.Hour, r.Minute, r.Second, 0, loc)
}

// ParseClock decodes the 8-byte clock payload in the selected format.
// Byte 0 carries flags and is ignored; bytes 1..7 are hour, minute,
// second, day, month, century, year.
func ParseClock(payload [8]byte, format ClockFormat) (ClockReading, error) {
	var r ClockReading
	var err error
	switch format {
	case ClockBCD:
		fields := [7]int{}
		for i, b := range payload[1:8] {
			fields[i], err = fromBCD(b)
			if err != nil {
				return r, fmt.Errorf("byte %d: %w", i+1, err)
			}
		}
		r = ClockReading{
			Hour: fields[0], Minute: fields[1], Second: fields[2],
			Day: fields[3], Month: fields[4],
			Year: fields[5]*100 + fields[6],
		}
	case ClockHex:
		r = ClockReading{
			Hour: int(payload[1]), Minute: int(payload[2]), Second: int(payload[3]),
			Day: int(payload[4]), Month: int(payload[5]),
			Year: int(payload[6])*100 + int(payload[7]),
		}
	default:
		return r, fmt.Errorf("unknown clock format %q", format)
	}
	if err := r.validate(); err != nil {
		return r, err
	}
	return r, nil
}

// EncodeClock packs a reading back into the 8-byte payload, the inverse
// of ParseClock.
func EncodeClock(r ClockReading, format ClockFormat) ([8]byte, error) {
	var p [8]byte
	if err := r.validate(); err != nil {
		return p, err
	}
	century, year := r.Year/100, r.Year%100
	fields := [7]int{r.Hour, r.Minute, r.Second, r.Day, r.Month, century, year}
	switch format {
	case ClockBCD:
		for i, v := range fields {
			p[i+1] = toBCD(v)
		}
	case ClockHex:
		for i, v := range fields {
			p[i+1] = byte(v)
		}
	default:
		return p, fmt.Errorf("unknown clock format %q", format)
	}
	return p, nil
}

func (r ClockReading) validate() error {
	switch {
	case r.Month < 1 || r.Month > 12:
		return fmt.Errorf("month %d out of range", r.Month)
	case r.Day < 1 || r.Day > 31:
		return fmt.Errorf("day %d out of range", r.Day)
	case r.Hour > 23:
		return fmt.Errorf("hour %d out of range", r.Hour)
	case r.Minute > 59:
		return fmt.Errorf("minute %d out of range", r.Minute)
	case r.Second > 59:
		return fmt.Errorf("second %d out of range", r.Second)
	case r.Year < 1970 || r.Year > 9999:
		return fmt.Errorf("year %d out of range", r.Year)
	}
	return nil
}

func fromBCD(b byte) (int, error) {
	hi, lo := int(b>>4), int(b&0x0F)
	if hi > 9 || lo > 9 {
		return 0, fmt.Errorf("invalid BCD byte 0x%02X", b)
	}
	return hi*10 + lo, nil
}

func toBCD(v int) byte {
	return byte(v/10<<4 | v%10)
}

// Package gtfstime implements the Time Model (spec.md §2): arithmetic over
// seconds elapsed since local service midnight, including GTFS's allowance
// for H >= 24 on trips that run past midnight.
//
// Grounded on the teacher's model.Stop.Time ArrivalTime()/DepartureTime()
// helpers and parse/stop_times.go's parseStopTimeTime, generalized into a
// standalone, round-trippable type instead of inline string slicing.
package gtfstime

import (
	"fmt"

	"github.com/pkg/errors"
)

// Seconds is an offset in seconds from local service midnight. It may
// exceed 86400 for trips whose schedule crosses into the next calendar
// day; canonicalisation to a 24h wall clock only happens at output, via
// Format.
type Seconds int

const SecondsPerDay Seconds = 86400

// ParseHMS parses a GTFS "H:MM:SS" or "HH:MM:SS" time-of-day string. Hour
// may be any non-negative value (GTFS permits >= 24 for next-day service).
func ParseHMS(s string) (Seconds, error) {
	var h, m, sec int
	n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec)
	if err != nil || n != 3 {
		return 0, errors.Errorf("invalid time %q", s)
	}
	if h < 0 {
		return 0, errors.Errorf("negative hour in %q", s)
	}
	if m < 0 || m > 59 {
		return 0, errors.Errorf("invalid minute in %q", s)
	}
	if sec < 0 || sec > 59 {
		return 0, errors.Errorf("invalid second in %q", s)
	}
	return Seconds(h*3600 + m*60 + sec), nil
}

// Format renders s as a canonical "HH:MM:SS" 24h wall-clock string,
// wrapping modulo 86400 as spec.md §6 requires of all output times.
func (s Seconds) Format() string {
	wrapped := int(s) % int(SecondsPerDay)
	if wrapped < 0 {
		wrapped += int(SecondsPerDay)
	}
	h := wrapped / 3600
	m := (wrapped % 3600) / 60
	sec := wrapped % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// FormatRaw renders s as "HH:MM:SS" without wrapping, preserving H >= 24.
// Useful for diagnostics where the service-day-relative value matters.
func (s Seconds) FormatRaw() string {
	h := int(s) / 3600
	m := (int(s) % 3600) / 60
	sec := int(s) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// DurationSeconds returns end-start as elapsed seconds, adding a day if
// end appears to precede start numerically (the midnight-wrap case
// spec.md §6 and §8 scenario 4 call out explicitly). Both end and start
// are assumed already canonicalised (i.e. in [0, 86400)); callers working
// with raw un-wrapped Seconds should just subtract directly.
func DurationSeconds(start, end Seconds) Seconds {
	d := end - start
	if d < 0 {
		d += SecondsPerDay
	}
	return d
}

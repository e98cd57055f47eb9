package hours

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay bounds every interval of a schedule.
const MinutesPerDay = 24 * 60

var ErrInvalidSchedule = errors.New("invalid schedule")

// Interval is an opening period in minutes since local midnight. End is exclusive.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether minute m falls in [Start, End).
func (iv Interval) Contains(m int) bool {
	return m >= iv.Start && m < iv.End
}

func (iv Interval) String() string {
	return formatMinutes(iv.Start) + "-" + formatMinutes(iv.End)
}

// WeeklySchedule is indexed by time.Weekday (0 = Sunday). A day with no
// intervals is closed.
type WeeklySchedule [7][]Interval

// DefaultSchedule is the shop's opening table:
// Monday to Friday 9:00-14:00 and 17:00-19:30, Saturday 10:30-13:30, Sunday closed.
func DefaultSchedule() WeeklySchedule {
	weekday := []Interval{{Start: 9 * 60, End: 14 * 60}, {Start: 17 * 60, End: 19*60 + 30}}

	var s WeeklySchedule
	for d := time.Monday; d <= time.Friday; d++ {
		s[d] = append([]Interval(nil), weekday...)
	}
	s[time.Saturday] = []Interval{{Start: 10*60 + 30, End: 13*60 + 30}}
	s[time.Sunday] = nil
	return s
}

// Validate checks that every interval is well formed, lies within the day
// and does not overlap the others of the same day.
func (s WeeklySchedule) Validate() error {
	for d, ivs := range s {
		for i, iv := range ivs {
			if iv.Start < 0 || iv.End >= MinutesPerDay || iv.Start >= iv.End {
				return fmt.Errorf("%w: %s interval %s out of range", ErrInvalidSchedule, time.Weekday(d), iv)
			}
			for _, other := range ivs[i+1:] {
				if iv.Start < other.End && other.Start < iv.End {
					return fmt.Errorf("%w: %s intervals %s and %s overlap", ErrInvalidSchedule, time.Weekday(d), iv, other)
				}
			}
		}
	}
	return nil
}

// Day returns a copy of the intervals for d.
func (s WeeklySchedule) Day(d time.Weekday) []Interval {
	return append([]Interval(nil), s[d]...)
}

// OpensOn reports whether the shop has any opening period on d.
func (s WeeklySchedule) OpensOn(d time.Weekday) bool {
	return len(s[d]) > 0
}

var dayKeys = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseSchedule reads a schedule such as
//
//	mon-fri=09:00-14:00,17:00-19:30;sat=10:30-13:30
//
// Days that are not mentioned are closed. An empty string yields the default schedule.
func ParseSchedule(raw string) (WeeklySchedule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSchedule(), nil
	}

	var s WeeklySchedule
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		daysPart, rangesPart, ok := strings.Cut(entry, "=")
		if !ok {
			return WeeklySchedule{}, fmt.Errorf("%w: entry %q has no '='", ErrInvalidSchedule, entry)
		}

		days, err := parseDays(daysPart)
		if err != nil {
			return WeeklySchedule{}, err
		}

		var ivs []Interval
		for _, r := range strings.Split(rangesPart, ",") {
			r = strings.TrimSpace(r)
			if r == "" {
				continue
			}
			iv, err := parseInterval(r)
			if err != nil {
				return WeeklySchedule{}, err
			}
			ivs = append(ivs, iv)
		}

		for _, d := range days {
			s[d] = append(s[d], ivs...)
		}
	}

	if err := s.Validate(); err != nil {
		return WeeklySchedule{}, err
	}
	return s, nil
}

func parseDays(raw string) ([]time.Weekday, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	from, to, isRange := strings.Cut(raw, "-")

	start, ok := dayKeys[strings.TrimSpace(from)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown day %q", ErrInvalidSchedule, from)
	}
	if !isRange {
		return []time.Weekday{start}, nil
	}
	end, ok := dayKeys[strings.TrimSpace(to)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown day %q", ErrInvalidSchedule, to)
	}

	var days []time.Weekday
	for d := start; ; d = (d + 1) % 7 {
		days = append(days, d)
		if d == end {
			break
		}
	}
	return days, nil
}

func parseInterval(raw string) (Interval, error) {
	from, to, ok := strings.Cut(raw, "-")
	if !ok {
		return Interval{}, fmt.Errorf("%w: interval %q", ErrInvalidSchedule, raw)
	}
	start, err := parseClock(from)
	if err != nil {
		return Interval{}, err
	}
	end, err := parseClock(to)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}

func parseClock(raw string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0, fmt.Errorf("%w: time %q", ErrInvalidSchedule, raw)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: hour %q", ErrInvalidSchedule, h)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: minute %q", ErrInvalidSchedule, m)
	}
	return hour*60 + minute, nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%d:%02d", m/60, m%60)
}

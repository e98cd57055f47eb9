package hours

import (
	"strings"
	"time"
)

// IsOpen reports whether the shop is open at now according to s.
// The weekday, hour and minute are read in now's own location; callers pick
// the location by converting the timestamp beforehand.
func IsOpen(now time.Time, s WeeklySchedule) bool {
	m := now.Hour()*60 + now.Minute()
	for _, iv := range s[now.Weekday()] {
		if iv.Contains(m) {
			return true
		}
	}
	return false
}

// OpenState is the derived open/closed status at a given instant.
type OpenState struct {
	IsOpen bool      `json:"isOpen"`
	AsOf   time.Time `json:"asOf"`
}

// Clock formats t as a 24-hour HH:MM:SS string.
func Clock(t time.Time) string {
	return t.Format("15:04:05")
}

// Evaluator binds a schedule to the shop's location.
type Evaluator struct {
	schedule WeeklySchedule
	loc      *time.Location
	now      func() time.Time
}

func NewEvaluator(schedule WeeklySchedule, loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.Local
	}
	return &Evaluator{schedule: schedule, loc: loc, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	cp := *e
	cp.now = now
	return &cp
}

func (e *Evaluator) Schedule() WeeklySchedule { return e.schedule }

func (e *Evaluator) Location() *time.Location { return e.loc }

// Now returns the current time in the shop's location.
func (e *Evaluator) Now() time.Time {
	return e.now().In(e.loc)
}

// Status evaluates the schedule at the current time.
func (e *Evaluator) Status() OpenState {
	return e.StatusAt(e.now())
}

// StatusAt evaluates the schedule at t, converted to the shop's location.
func (e *Evaluator) StatusAt(t time.Time) OpenState {
	t = t.In(e.loc)
	return OpenState{IsOpen: IsOpen(t, e.schedule), AsOf: t}
}

var dayNames = [7]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

// DayName returns the Spanish name of d.
func DayName(d time.Weekday) string {
	return dayNames[d]
}

// DayHours is one row of the opening table.
type DayHours struct {
	Day       int        `json:"day"`
	Name      string     `json:"name"`
	Closed    bool       `json:"closed"`
	Intervals []Interval `json:"intervals"`
	Display   string     `json:"display"`
}

// Week lists the schedule from Monday to Sunday, as the site shows it.
func (s WeeklySchedule) Week() []DayHours {
	out := make([]DayHours, 0, 7)
	for _, d := range weekOrder() {
		out = append(out, DayHours{
			Day:       int(d),
			Name:      DayName(d),
			Closed:    !s.OpensOn(d),
			Intervals: s.Day(d),
			Display:   describeIntervals(s[d]),
		})
	}
	return out
}

// Summary groups consecutive days that share the same hours, e.g.
// "Lunes a Viernes: 9:00-14:00 y 17:00-19:30".
func (s WeeklySchedule) Summary() []string {
	order := weekOrder()

	var lines []string
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && sameIntervals(s[order[i]], s[order[j+1]]) {
			j++
		}
		label := DayName(order[i])
		if j > i {
			label += " a " + DayName(order[j])
		}
		lines = append(lines, label+": "+describeIntervals(s[order[i]]))
		i = j + 1
	}
	return lines
}

func weekOrder() []time.Weekday {
	return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}
}

func describeIntervals(ivs []Interval) string {
	if len(ivs) == 0 {
		return "Cerrado"
	}
	parts := make([]string, len(ivs))
	for i, iv := range ivs {
		parts[i] = iv.String()
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " y " + parts[len(parts)-1]
}

func sameIntervals(a, b []Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

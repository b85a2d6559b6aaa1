package schedule

import (
	"fmt"
	"time"

	"github.com/sotsvc/service-estimate/internal/domain"
)

// DayHours is the operating window for one day of the week, as local
// wall-clock times in "HH:MM" form.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	IsOpen bool   `json:"is_open"`
}

// WeekSchedule holds business hours per day of week, indexed Sunday=0.
type WeekSchedule [7]DayHours

// DefaultWeekSchedule returns the published business hours:
// Sunday through Friday 07:00-22:00, closed Saturday.
func DefaultWeekSchedule() WeekSchedule {
	open := DayHours{Open: "07:00", Close: "22:00", IsOpen: true}
	return WeekSchedule{
		time.Sunday:    open,
		time.Monday:    open,
		time.Tuesday:   open,
		time.Wednesday: open,
		time.Thursday:  open,
		time.Friday:    open,
		time.Saturday:  {Open: "00:00", Close: "00:00", IsOpen: false},
	}
}

// Validate checks that every open day has parseable times with open before
// close. A violation is a configuration fault.
func (w WeekSchedule) Validate() error {
	for day, h := range w {
		if !h.IsOpen {
			continue
		}
		open, err := parseMinutes(h.Open)
		if err != nil {
			return domain.NewConfigurationError(fmt.Sprintf("business hours day %d: bad open time %q", day, h.Open))
		}
		close, err := parseMinutes(h.Close)
		if err != nil {
			return domain.NewConfigurationError(fmt.Sprintf("business hours day %d: bad close time %q", day, h.Close))
		}
		if open >= close {
			return domain.NewConfigurationError(fmt.Sprintf("business hours day %d: open %s is not before close %s", day, h.Open, h.Close))
		}
	}
	return nil
}

// IsOpen reports whether the business is open at the given instant's local
// time. A day marked closed is closed regardless of time of day. Both the
// open and close boundaries are inclusive: a request exactly at closing time
// counts as open. The inclusive close is long-standing published behavior,
// kept deliberately.
func (w WeekSchedule) IsOpen(t time.Time) bool {
	h := w[t.Weekday()]
	if !h.IsOpen {
		return false
	}
	open, err := parseMinutes(h.Open)
	if err != nil {
		return false
	}
	close, err := parseMinutes(h.Close)
	if err != nil {
		return false
	}
	now := t.Hour()*60 + t.Minute()
	return now >= open && now <= close
}

// IsOpenDay reports whether the instant falls on a day the business operates
// at all, ignoring time of day.
func (w WeekSchedule) IsOpenDay(t time.Time) bool {
	return w[t.Weekday()].IsOpen
}

// NextOpenSlot scans forward from the given instant, day by day, resetting
// the probe to each day's opening time, and returns the first open instant.
// If no open day exists within 7 days every day is closed, which is a corrupt
// schedule: a fatal configuration fault, not a recoverable condition.
func (w WeekSchedule) NextOpenSlot(from time.Time) (time.Time, error) {
	probe := from
	for days := 0; days < 7; days++ {
		if w.IsOpen(probe) {
			return probe, nil
		}
		next := probe.AddDate(0, 0, 1)
		h := w[next.Weekday()]
		openMin := 0
		if h.IsOpen {
			if m, err := parseMinutes(h.Open); err == nil {
				openMin = m
			}
		}
		probe = time.Date(next.Year(), next.Month(), next.Day(), openMin/60, openMin%60, 0, 0, next.Location())
	}
	return time.Time{}, domain.NewConfigurationError("no open business day within the next 7 days")
}

func parseMinutes(hhmm string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time %q: %w", hhmm, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", hhmm)
	}
	return h*60 + m, nil
}

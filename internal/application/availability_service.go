package application

import (
	"time"

	"github.com/sotsvc/service-estimate/internal/domain/schedule"
)

// AvailabilityDTO reports whether the business is open at an instant.
type AvailabilityDTO struct {
	At    time.Time `json:"at"`
	Open  bool      `json:"open"`
	Day   string    `json:"day"`
	Hours *HoursDTO `json:"hours,omitempty"`
}

// HoursDTO is the published operating window for a day.
type HoursDTO struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// NextSlotDTO is the first open instant at or after a starting point.
type NextSlotDTO struct {
	From time.Time `json:"from"`
	Next time.Time `json:"next"`
}

// AvailabilityService answers calendar availability questions against the
// published business hours.
type AvailabilityService struct {
	sched schedule.WeekSchedule
}

// NewAvailabilityService creates an AvailabilityService over a validated
// schedule.
func NewAvailabilityService(sched schedule.WeekSchedule) (*AvailabilityService, error) {
	if err := sched.Validate(); err != nil {
		return nil, err
	}
	return &AvailabilityService{sched: sched}, nil
}

// Availability reports the open/closed status at the given instant.
func (s *AvailabilityService) Availability(at time.Time) AvailabilityDTO {
	dto := AvailabilityDTO{
		At:   at,
		Open: s.sched.IsOpen(at),
		Day:  at.Weekday().String(),
	}
	h := s.sched[at.Weekday()]
	if h.IsOpen {
		dto.Hours = &HoursDTO{Open: h.Open, Close: h.Close}
	}
	return dto
}

// NextOpenSlot finds the first open instant at or after from.
func (s *AvailabilityService) NextOpenSlot(from time.Time) (*NextSlotDTO, error) {
	next, err := s.sched.NextOpenSlot(from)
	if err != nil {
		return nil, err
	}
	return &NextSlotDTO{From: from, Next: next}, nil
}

// Schedule exposes the week schedule for slot validation elsewhere.
func (s *AvailabilityService) Schedule() schedule.WeekSchedule {
	return s.sched
}

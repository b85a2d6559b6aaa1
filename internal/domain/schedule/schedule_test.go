package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sotsvc/service-estimate/internal/domain"
)

// localDate builds a local time on a known weekday.
// 2026-08-24 is a Monday.
func monday(hour, min int) time.Time {
	return time.Date(2026, 8, 24, hour, min, 0, 0, time.Local)
}

func saturday(hour, min int) time.Time {
	return time.Date(2026, 8, 29, hour, min, 0, 0, time.Local)
}

func TestIsOpenWithinHours(t *testing.T) {
	w := DefaultWeekSchedule()

	assert.True(t, w.IsOpen(monday(12, 0)))
	assert.True(t, w.IsOpen(monday(7, 0)))
	assert.False(t, w.IsOpen(monday(6, 59)))
	assert.False(t, w.IsOpen(monday(22, 1)))
}

func TestIsOpenClosingTimeIsInclusive(t *testing.T) {
	w := DefaultWeekSchedule()

	// Exactly at close counts as open. Documented behavior, do not "fix".
	assert.True(t, w.IsOpen(monday(22, 0)))
}

func TestIsOpenClosedDayRegardlessOfTime(t *testing.T) {
	w := DefaultWeekSchedule()

	for hour := 0; hour < 24; hour++ {
		assert.False(t, w.IsOpen(saturday(hour, 30)))
	}
}

func TestNextOpenSlotReturnsSameInstantWhenOpen(t *testing.T) {
	w := DefaultWeekSchedule()

	at := monday(10, 15)
	got, err := w.NextOpenSlot(at)
	require.NoError(t, err)
	assert.Equal(t, at, got)
}

func TestNextOpenSlotSkipsClosedDayToOpeningTime(t *testing.T) {
	w := DefaultWeekSchedule()

	got, err := w.NextOpenSlot(saturday(9, 0))
	require.NoError(t, err)

	// Sunday 07:00
	assert.Equal(t, time.Sunday, got.Weekday())
	assert.Equal(t, 7, got.Hour())
	assert.Equal(t, 0, got.Minute())
}

func TestNextOpenSlotAfterHoursMovesToNextDayOpening(t *testing.T) {
	w := DefaultWeekSchedule()

	got, err := w.NextOpenSlot(monday(23, 0))
	require.NoError(t, err)

	assert.Equal(t, time.Tuesday, got.Weekday())
	assert.Equal(t, 7, got.Hour())
}

func TestNextOpenSlotAllClosedIsConfigurationFault(t *testing.T) {
	var w WeekSchedule
	for i := range w {
		w[i] = DayHours{IsOpen: false}
	}

	_, err := w.NextOpenSlot(monday(9, 0))
	require.Error(t, err)
	assert.Equal(t, domain.CodeConfiguration, domain.CodeOf(err))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultWeekSchedule().Validate())

	bad := DefaultWeekSchedule()
	bad[time.Monday] = DayHours{Open: "22:00", Close: "07:00", IsOpen: true}
	assert.Error(t, bad.Validate())

	garbled := DefaultWeekSchedule()
	garbled[time.Monday] = DayHours{Open: "late", Close: "22:00", IsOpen: true}
	assert.Error(t, garbled.Validate())
}

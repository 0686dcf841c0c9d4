package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetDayUsesPinnedDay(t *testing.T) {
	job := &AttendanceAutocloseJob{}

	day, err := job.targetDay("2025-06-11")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), day)

	_, err = job.targetDay("not-a-date")
	assert.Error(t, err)
}

func TestTargetDayDefaultsToYesterday(t *testing.T) {
	job := &AttendanceAutocloseJob{clock: func() time.Time {
		// A Wednesday.
		return time.Date(2025, 6, 11, 1, 15, 0, 0, time.UTC)
	}}

	day, err := job.targetDay("")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", day.Format("2006-01-02"))
}

func TestTargetDaySkipsWeekends(t *testing.T) {
	job := &AttendanceAutocloseJob{clock: func() time.Time {
		// Monday morning: the previous working day is Friday.
		return time.Date(2025, 6, 9, 1, 15, 0, 0, time.UTC)
	}}

	day, err := job.targetDay("")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-06", day.Format("2006-01-02"))
}

func TestTargetDaySkipsHolidays(t *testing.T) {
	job := &AttendanceAutocloseJob{clock: func() time.Time {
		// Dec 26 2025: the 25th is a holiday, so close Wednesday the 24th.
		return time.Date(2025, 12, 26, 1, 15, 0, 0, time.UTC)
	}}

	day, err := job.targetDay("")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-24", day.Format("2006-01-02"))
}

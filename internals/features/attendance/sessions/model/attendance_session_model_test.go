package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleSession() AttendanceSessionModel {
	start := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	return AttendanceSessionModel{
		AttendanceSessionStartTime:   start,
		AttendanceSessionEndTime:     start.Add(15 * time.Minute),
		AttendanceSessionEndTeaching: start.Add(2 * time.Hour),
	}
}

func TestPhaseAt(t *testing.T) {
	s := sampleSession()

	tests := []struct {
		name string
		now  time.Time
		want SessionPhase
	}{
		{"before start", s.AttendanceSessionStartTime.Add(-time.Second), SessionPhaseScheduled},
		{"at start", s.AttendanceSessionStartTime, SessionPhaseOpen},
		{"after end time still teaching", s.AttendanceSessionEndTime.Add(time.Minute), SessionPhaseOpen},
		{"at end teaching", s.AttendanceSessionEndTeaching, SessionPhaseOpen},
		{"after end teaching", s.AttendanceSessionEndTeaching.Add(time.Nanosecond), SessionPhaseClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.PhaseAt(tt.now))
			assert.Equal(t, tt.want == SessionPhaseOpen, s.AcceptsCheckIn(tt.now))
		})
	}
}

func TestBlocksNewSession(t *testing.T) {
	s := sampleSession()

	assert.True(t, s.BlocksNewSession(s.AttendanceSessionStartTime.Add(-time.Hour)), "scheduled session still blocks")
	assert.True(t, s.BlocksNewSession(s.AttendanceSessionEndTeaching))
	assert.False(t, s.BlocksNewSession(s.AttendanceSessionEndTeaching.Add(time.Second)))
}

func TestResolveCheckInStatus(t *testing.T) {
	s := sampleSession()
	early := s.AttendanceSessionStartTime.Add(time.Minute)
	atEnd := s.AttendanceSessionEndTime
	afterEnd := s.AttendanceSessionEndTime.Add(time.Second)

	assert.Equal(t, RecordStatusPresent, ResolveCheckInStatus(RecordStatusPresent, early, s))
	assert.Equal(t, RecordStatusPresent, ResolveCheckInStatus(RecordStatusLate, early, s), "client cannot pick late")
	assert.Equal(t, RecordStatusPresent, ResolveCheckInStatus(RecordStatusPresent, atEnd, s))
	assert.Equal(t, RecordStatusLate, ResolveCheckInStatus(RecordStatusPresent, afterEnd, s))

	for _, now := range []time.Time{early, atEnd, afterEnd, s.AttendanceSessionEndTeaching} {
		assert.Equal(t, RecordStatusLeave, ResolveCheckInStatus(RecordStatusLeave, now, s))
	}
}

func TestRequestable(t *testing.T) {
	assert.True(t, RecordStatusPresent.Requestable())
	assert.True(t, RecordStatusLeave.Requestable())
	assert.False(t, RecordStatusAbsent.Requestable())
	assert.False(t, RecordStatus("sick").Requestable())
}

// file: internals/features/attendance/sessions/model/attendance_session_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionPhase string

const (
	SessionPhaseScheduled SessionPhase = "scheduled"
	SessionPhaseOpen      SessionPhase = "open"
	SessionPhaseClosed    SessionPhase = "closed"
)

type AttendanceSessionModel struct {
	AttendanceSessionID          uuid.UUID `gorm:"type:uuid;primaryKey;column:attendance_session_id" json:"attendance_session_id"`
	AttendanceSessionClassroomID uuid.UUID `gorm:"type:uuid;not null;index;column:attendance_session_classroom_id" json:"attendance_session_classroom_id"`
	AttendanceSessionTitle       string    `gorm:"type:varchar(200);not null;column:attendance_session_title" json:"attendance_session_title"`

	// start ≤ end ≤ end_teaching
	AttendanceSessionStartTime   time.Time `gorm:"not null;column:attendance_session_start_time" json:"attendance_session_start_time"`
	AttendanceSessionEndTime     time.Time `gorm:"not null;column:attendance_session_end_time" json:"attendance_session_end_time"`
	AttendanceSessionEndTeaching time.Time `gorm:"not null;column:attendance_session_end_teaching" json:"attendance_session_end_teaching"`

	AttendanceSessionCreatedBy   uuid.UUID `gorm:"type:uuid;not null;column:attendance_session_created_by" json:"attendance_session_created_by"`
	AttendanceSessionIsPublished bool      `gorm:"not null;default:false;column:attendance_session_is_published" json:"attendance_session_is_published"`

	AttendanceSessionCreatedAt time.Time `gorm:"not null;autoCreateTime;column:attendance_session_created_at" json:"attendance_session_created_at"`
}

func (AttendanceSessionModel) TableName() string { return "attendance_sessions" }

func (m *AttendanceSessionModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceSessionID == uuid.Nil {
		m.AttendanceSessionID = uuid.New()
	}
	m.AttendanceSessionStartTime = m.AttendanceSessionStartTime.UTC()
	m.AttendanceSessionEndTime = m.AttendanceSessionEndTime.UTC()
	m.AttendanceSessionEndTeaching = m.AttendanceSessionEndTeaching.UTC()
	return nil
}

// PhaseAt selalu dihitung dari jam, tidak pernah disimpan.
func (m AttendanceSessionModel) PhaseAt(now time.Time) SessionPhase {
	switch {
	case now.Before(m.AttendanceSessionStartTime):
		return SessionPhaseScheduled
	case now.After(m.AttendanceSessionEndTeaching):
		return SessionPhaseClosed
	default:
		return SessionPhaseOpen
	}
}

// BlocksNewSession: sesi dianggap masih aktif selama now ≤ end_teaching,
// termasuk sesi yang belum mulai.
func (m AttendanceSessionModel) BlocksNewSession(now time.Time) bool {
	return !now.After(m.AttendanceSessionEndTeaching)
}

func (m AttendanceSessionModel) AcceptsCheckIn(now time.Time) bool {
	return m.PhaseAt(now) == SessionPhaseOpen
}

type RecordStatus string

const (
	RecordStatusPresent RecordStatus = "present"
	RecordStatusLate    RecordStatus = "late"
	RecordStatusLeave   RecordStatus = "leave"
	RecordStatusAbsent  RecordStatus = "absent"
)

// Requestable: status yang boleh dikirim siswa saat check-in.
func (s RecordStatus) Requestable() bool {
	return s == RecordStatusPresent || s == RecordStatusLate || s == RecordStatusLeave
}

// ResolveCheckInStatus: leave tetap leave; selain itu server yang menentukan
// present (now ≤ end_time) atau late.
func ResolveCheckInStatus(requested RecordStatus, now time.Time, s AttendanceSessionModel) RecordStatus {
	if requested == RecordStatusLeave {
		return RecordStatusLeave
	}
	if !now.After(s.AttendanceSessionEndTime) {
		return RecordStatusPresent
	}
	return RecordStatusLate
}

type AttendanceRecordModel struct {
	AttendanceRecordID          uuid.UUID    `gorm:"type:uuid;primaryKey;column:attendance_record_id" json:"attendance_record_id"`
	AttendanceRecordSessionID   uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_record_session_user,priority:1;column:attendance_record_session_id" json:"attendance_record_session_id"`
	AttendanceRecordUserID      uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_record_session_user,priority:2;column:attendance_record_user_id" json:"attendance_record_user_id"`
	AttendanceRecordStatus      RecordStatus `gorm:"type:varchar(16);not null;column:attendance_record_status" json:"attendance_record_status"`
	AttendanceRecordDescription *string      `gorm:"type:text;column:attendance_record_description" json:"attendance_record_description,omitempty"`
	AttendanceRecordTimestamp   time.Time    `gorm:"not null;column:attendance_record_timestamp" json:"attendance_record_timestamp"`
}

func (AttendanceRecordModel) TableName() string { return "attendance_records" }

func (m *AttendanceRecordModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceRecordID == uuid.Nil {
		m.AttendanceRecordID = uuid.New()
	}
	m.AttendanceRecordTimestamp = m.AttendanceRecordTimestamp.UTC()
	return nil
}

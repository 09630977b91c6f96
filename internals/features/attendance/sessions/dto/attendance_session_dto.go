// file: internals/features/attendance/sessions/dto/attendance_session_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	model "kelasku_backend/internals/features/attendance/sessions/model"
	userModel "kelasku_backend/internals/features/users/user/model"
)

/* =========================================================
   REQUEST
========================================================= */

type CreateSessionRequest struct {
	AttendanceSessionClassroomID uuid.UUID `json:"attendance_session_classroom_id" validate:"required"`
	AttendanceSessionTitle       string    `json:"attendance_session_title" validate:"required,max=200"`
	AttendanceSessionStartTime   time.Time `json:"attendance_session_start_time" validate:"required"`
	AttendanceSessionEndTime     time.Time `json:"attendance_session_end_time" validate:"required"`
	AttendanceSessionEndTeaching time.Time `json:"attendance_session_end_teaching" validate:"required"`
}

func (r CreateSessionRequest) ToModel(createdBy uuid.UUID) model.AttendanceSessionModel {
	return model.AttendanceSessionModel{
		AttendanceSessionClassroomID: r.AttendanceSessionClassroomID,
		AttendanceSessionTitle:       strings.TrimSpace(r.AttendanceSessionTitle),
		AttendanceSessionStartTime:   r.AttendanceSessionStartTime.UTC(),
		AttendanceSessionEndTime:     r.AttendanceSessionEndTime.UTC(),
		AttendanceSessionEndTeaching: r.AttendanceSessionEndTeaching.UTC(),
		AttendanceSessionCreatedBy:   createdBy,
	}
}

// CheckInRequest: status present/late hanya "permintaan"; server yang menentukan.
type CheckInRequest struct {
	Status      model.RecordStatus `json:"status" validate:"required,oneof=present late leave"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
}

/* =========================================================
   RESPONSE
========================================================= */

type SessionResponse struct {
	AttendanceSessionID          uuid.UUID          `json:"attendance_session_id"`
	AttendanceSessionClassroomID uuid.UUID          `json:"attendance_session_classroom_id"`
	AttendanceSessionTitle       string             `json:"attendance_session_title"`
	AttendanceSessionStartTime   time.Time          `json:"attendance_session_start_time"`
	AttendanceSessionEndTime     time.Time          `json:"attendance_session_end_time"`
	AttendanceSessionEndTeaching time.Time          `json:"attendance_session_end_teaching"`
	AttendanceSessionCreatedBy   uuid.UUID          `json:"attendance_session_created_by"`
	AttendanceSessionIsPublished bool               `json:"attendance_session_is_published"`
	AttendanceSessionCreatedAt   time.Time          `json:"attendance_session_created_at"`
	Phase                        model.SessionPhase `json:"phase"`

	Creator     *UserBrief `json:"creator,omitempty"`
	IsCheckedIn *bool      `json:"is_checked_in,omitempty"`
}

type UserBrief struct {
	ID    uuid.UUID `json:"id"`
	FName string    `json:"fname"`
	LName string    `json:"lname"`
	Image *string   `json:"image,omitempty"`
}

func NewUserBrief(u userModel.UserModel) *UserBrief {
	return &UserBrief{ID: u.ID, FName: u.FName, LName: u.LName, Image: u.Image}
}

// FromModel: phase dihitung dari now, tidak disimpan.
func FromModel(m model.AttendanceSessionModel, now time.Time) SessionResponse {
	return SessionResponse{
		AttendanceSessionID:          m.AttendanceSessionID,
		AttendanceSessionClassroomID: m.AttendanceSessionClassroomID,
		AttendanceSessionTitle:       m.AttendanceSessionTitle,
		AttendanceSessionStartTime:   m.AttendanceSessionStartTime,
		AttendanceSessionEndTime:     m.AttendanceSessionEndTime,
		AttendanceSessionEndTeaching: m.AttendanceSessionEndTeaching,
		AttendanceSessionCreatedBy:   m.AttendanceSessionCreatedBy,
		AttendanceSessionIsPublished: m.AttendanceSessionIsPublished,
		AttendanceSessionCreatedAt:   m.AttendanceSessionCreatedAt,
		Phase:                        m.PhaseAt(now),
	}
}

type RecordResponse struct {
	AttendanceRecordID          uuid.UUID          `json:"attendance_record_id"`
	AttendanceRecordSessionID   uuid.UUID          `json:"attendance_record_session_id"`
	AttendanceRecordUserID      uuid.UUID          `json:"attendance_record_user_id"`
	AttendanceRecordStatus      model.RecordStatus `json:"attendance_record_status"`
	AttendanceRecordDescription *string            `json:"attendance_record_description,omitempty"`
	AttendanceRecordTimestamp   time.Time          `json:"attendance_record_timestamp"`
}

func RecordFromModel(m model.AttendanceRecordModel) RecordResponse {
	return RecordResponse{
		AttendanceRecordID:          m.AttendanceRecordID,
		AttendanceRecordSessionID:   m.AttendanceRecordSessionID,
		AttendanceRecordUserID:      m.AttendanceRecordUserID,
		AttendanceRecordStatus:      m.AttendanceRecordStatus,
		AttendanceRecordDescription: m.AttendanceRecordDescription,
		AttendanceRecordTimestamp:   m.AttendanceRecordTimestamp,
	}
}

/* =========================================================
   MATRIX
========================================================= */

type StudentInfo struct {
	UserID                    uuid.UUID `json:"user_id"`
	StudentFName              string    `json:"student_fname"`
	StudentLName              string    `json:"student_lname"`
	StudentEmail              string    `json:"student_email"`
	StudentIdentificationCode string    `json:"student_identification_code"`
}

func NewStudentInfo(u userModel.UserModel) StudentInfo {
	return StudentInfo{
		UserID:                    u.ID,
		StudentFName:              u.FName,
		StudentLName:              u.LName,
		StudentEmail:              u.Email,
		StudentIdentificationCode: u.IdentificationCode,
	}
}

type MatrixRecord struct {
	StudentInfo
	Status      model.RecordStatus `json:"status"`
	Timestamp   time.Time          `json:"timestamp"`
	Description *string            `json:"description,omitempty"`
}

type StatusCount struct {
	Present int `json:"present"`
	Late    int `json:"late"`
	Leave   int `json:"leave"`
	Absent  int `json:"absent"`
}

func (c *StatusCount) Add(s model.RecordStatus) {
	switch s {
	case model.RecordStatusPresent:
		c.Present++
	case model.RecordStatusLate:
		c.Late++
	case model.RecordStatusLeave:
		c.Leave++
	case model.RecordStatusAbsent:
		c.Absent++
	}
}

type StudentStatusCount struct {
	UserID uuid.UUID `json:"user_id"`
	StatusCount
}

type SessionAttendance struct {
	SessionID             uuid.UUID            `json:"session_id"`
	SessionTitle          string               `json:"session_title"`
	SessionStartTime      time.Time            `json:"session_start_time"`
	Phase                 model.SessionPhase   `json:"phase"`
	AttendanceRecords     []MatrixRecord       `json:"attendance_records"`
	CountStatus           StatusCount          `json:"count_status"`
	CountStatusPerStudent []StudentStatusCount `json:"count_status_per_student"`
}

type MatrixResponse struct {
	Students       []StudentInfo       `json:"students"`
	AttendanceData []SessionAttendance `json:"attendance_data"`
}

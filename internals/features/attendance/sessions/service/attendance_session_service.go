// file: internals/features/attendance/sessions/service/attendance_session_service.go
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "kelasku_backend/internals/features/attendance/sessions/dto"
	model "kelasku_backend/internals/features/attendance/sessions/model"
	classroomModel "kelasku_backend/internals/features/classrooms/classrooms/model"
	userModel "kelasku_backend/internals/features/users/user/model"
	"kelasku_backend/internals/helpers/apperr"
	"kelasku_backend/internals/helpers/authz"
)

type SessionService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{DB: db, Now: time.Now}
}

var (
	errSessionNotFound  = apperr.NotFound(apperr.CodeSessionNotFound, "attendance session not found")
	errSessionOpen      = apperr.Conflict(apperr.CodeSessionAlreadyOpen, "a check-in is already open in this classroom")
	errAlreadyCheckedIn = apperr.Conflict(apperr.CodeAlreadyCheckedIn, "you have already checked in")
	errOutsideWindow    = apperr.InvalidState(apperr.CodeOutsideCheckInWindow, "not within the allowed check-in window")
	errVersionConflict  = apperr.Conflict(apperr.CodeConcurrentUpdate, "attendance sessions were changed by another request, please retry")
)

func (s *SessionService) load(ctx context.Context, id uuid.UUID) (*model.AttendanceSessionModel, error) {
	var m model.AttendanceSessionModel
	if err := s.DB.WithContext(ctx).Where("attendance_session_id = ?", id).Take(&m).Error; err != nil {
		return nil, apperr.FromDB(err, errSessionNotFound, nil)
	}
	return &m, nil
}

func (s *SessionService) sessionsOf(ctx context.Context, db *gorm.DB, classroomID uuid.UUID, order string) ([]model.AttendanceSessionModel, error) {
	var rows []model.AttendanceSessionModel
	if err := db.WithContext(ctx).
		Where("attendance_session_classroom_id = ?", classroomID).
		Order(order).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

/* =========================================================
   CREATE
========================================================= */

// Create: gagal kalau masih ada sesi dengan now ≤ end_teaching di kelas yang sama.
// Scan + insert dijaga token classroom_attendance_version dalam satu transaksi.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if req.AttendanceSessionEndTime.Before(req.AttendanceSessionStartTime) ||
		req.AttendanceSessionEndTeaching.Before(req.AttendanceSessionEndTime) {
		return nil, apperr.Validation("start_time ≤ end_time ≤ end_teaching is required")
	}
	if _, err := authz.LoadClassroom(ctx, s.DB, req.AttendanceSessionClassroomID); err != nil {
		return nil, err
	}
	if _, err := authz.RequireTeacherMember(ctx, s.DB, req.AttendanceSessionClassroomID, userID); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	m := req.ToModel(userID)
	// dihitung sekali saat dibuat
	m.AttendanceSessionIsPublished = !m.AttendanceSessionStartTime.After(now)
	m.AttendanceSessionCreatedAt = now

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room classroomModel.ClassroomModel
		if err := tx.Select("classroom_id", "classroom_attendance_version").
			Where("classroom_id = ?", m.AttendanceSessionClassroomID).
			Take(&room).Error; err != nil {
			return err
		}

		existing, err := s.sessionsOf(ctx, tx, m.AttendanceSessionClassroomID, "attendance_session_start_time ASC")
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.BlocksNewSession(now) {
				return errSessionOpen
			}
		}

		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		res := tx.Model(&classroomModel.ClassroomModel{}).
			Where("classroom_id = ? AND classroom_attendance_version = ?", room.ClassroomID, room.ClassroomAttendanceVersion).
			Update("classroom_attendance_version", gorm.Expr("classroom_attendance_version + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return errVersionConflict
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err, apperr.NotFound(apperr.CodeClassroomNotFound, "classroom not found"), nil)
	}

	log.Printf("[ATTENDANCE] session created id=%s classroom=%s published=%v", m.AttendanceSessionID, m.AttendanceSessionClassroomID, m.AttendanceSessionIsPublished)
	resp := dto.FromModel(m, now)
	return &resp, nil
}

/* =========================================================
   CHECK-IN
========================================================= */

func (s *SessionService) CheckIn(ctx context.Context, userID, sessionID uuid.UUID, req dto.CheckInRequest) (*dto.RecordResponse, error) {
	if !req.Status.Requestable() {
		return nil, apperr.Validation("status must be one of present, late, leave")
	}
	var desc *string
	if req.Description != nil {
		if d := strings.TrimSpace(*req.Description); d != "" {
			desc = &d
		}
	}
	if req.Status == model.RecordStatusLeave && desc == nil {
		return nil, apperr.Validation("description is required when requesting leave")
	}

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := authz.RequireActiveMember(ctx, s.DB, sess.AttendanceSessionClassroomID, userID); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	if !sess.AcceptsCheckIn(now) {
		return nil, errOutsideWindow
	}

	// jalur cepat; penjaga sebenarnya unique index (session_id, user_id)
	var n int64
	if err := s.DB.WithContext(ctx).Model(&model.AttendanceRecordModel{}).
		Where("attendance_record_session_id = ? AND attendance_record_user_id = ?", sess.AttendanceSessionID, userID).
		Count(&n).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if n > 0 {
		return nil, errAlreadyCheckedIn
	}

	rec := model.AttendanceRecordModel{
		AttendanceRecordSessionID:   sess.AttendanceSessionID,
		AttendanceRecordUserID:      userID,
		AttendanceRecordStatus:      model.ResolveCheckInStatus(req.Status, now, *sess),
		AttendanceRecordDescription: desc,
		AttendanceRecordTimestamp:   now,
	}
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, apperr.FromDB(err, nil, errAlreadyCheckedIn)
	}

	resp := dto.RecordFromModel(rec)
	return &resp, nil
}

/* =========================================================
   DELETE
========================================================= */

// Delete: record lalu sesi, satu transaksi. Sesi yang sedang berjalan boleh dihapus.
func (s *SessionService) Delete(ctx context.Context, userID, sessionID uuid.UUID) error {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if _, err := authz.RequireTeacherMember(ctx, s.DB, sess.AttendanceSessionClassroomID, userID); err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteSessionTx(tx, sess.AttendanceSessionID)
	})
	if err != nil {
		return apperr.FromDB(err, errSessionNotFound, nil)
	}
	log.Printf("[ATTENDANCE] session deleted id=%s", sessionID)
	return nil
}

func deleteSessionTx(tx *gorm.DB, sessionID uuid.UUID) error {
	if err := tx.Where("attendance_record_session_id = ?", sessionID).
		Delete(&model.AttendanceRecordModel{}).Error; err != nil {
		return err
	}
	res := tx.Where("attendance_session_id = ?", sessionID).Delete(&model.AttendanceSessionModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByClassroomTx: dipakai cascade hapus kelas.
func DeleteByClassroomTx(tx *gorm.DB, classroomID uuid.UUID) error {
	var ids []uuid.UUID
	if err := tx.Model(&model.AttendanceSessionModel{}).
		Where("attendance_session_classroom_id = ?", classroomID).
		Pluck("attendance_session_id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := deleteSessionTx(tx, id); err != nil {
			return err
		}
	}
	return nil
}

/* =========================================================
   READ
========================================================= */

// Active: sesi dengan now ≤ end_teaching + pembuat + status check-in pemanggil.
func (s *SessionService) Active(ctx context.Context, userID, classroomID uuid.UUID) ([]dto.SessionResponse, error) {
	if _, err := authz.RequireMember(ctx, s.DB, classroomID, userID); err != nil {
		return nil, err
	}
	all, err := s.sessionsOf(ctx, s.DB, classroomID, "attendance_session_start_time DESC")
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.Now().UTC()
	out := []dto.SessionResponse{}
	for _, sess := range all {
		if !sess.BlocksNewSession(now) {
			continue
		}
		item := dto.FromModel(sess, now)

		var creator userModel.UserModel
		if err := s.DB.WithContext(ctx).Where("id = ?", sess.AttendanceSessionCreatedBy).Take(&creator).Error; err == nil {
			item.Creator = dto.NewUserBrief(creator)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal(err)
		}

		var n int64
		if err := s.DB.WithContext(ctx).Model(&model.AttendanceRecordModel{}).
			Where("attendance_record_session_id = ? AND attendance_record_user_id = ?", sess.AttendanceSessionID, userID).
			Count(&n).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		checked := n > 0
		item.IsCheckedIn = &checked
		out = append(out, item)
	}
	return out, nil
}

func (s *SessionService) List(ctx context.Context, userID, classroomID uuid.UUID) ([]dto.SessionResponse, error) {
	if _, err := authz.RequireMember(ctx, s.DB, classroomID, userID); err != nil {
		return nil, err
	}
	all, err := s.sessionsOf(ctx, s.DB, classroomID, "attendance_session_start_time DESC")
	if err != nil {
		return nil, apperr.Internal(err)
	}
	now := s.Now().UTC()
	out := make([]dto.SessionResponse, 0, len(all))
	for _, sess := range all {
		out = append(out, dto.FromModel(sess, now))
	}
	return out, nil
}

// Matrix: rekap per sesi. Siswa kelas tanpa record dihitung absent.
func (s *SessionService) Matrix(ctx context.Context, userID, classroomID uuid.UUID) (*dto.MatrixResponse, error) {
	if _, err := authz.RequireTeacherMember(ctx, s.DB, classroomID, userID); err != nil {
		return nil, err
	}

	var students []userModel.UserModel
	if err := s.DB.WithContext(ctx).
		Where("role = ?", userModel.RoleStudent).
		Where("id IN (?)", s.DB.Model(&classroomModel.ClassroomMemberModel{}).
			Select("classroom_member_user_id").
			Where("classroom_member_classroom_id = ?", classroomID)).
		Order("fname ASC, lname ASC").
		Find(&students).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	out := &dto.MatrixResponse{
		Students:       make([]dto.StudentInfo, 0, len(students)),
		AttendanceData: []dto.SessionAttendance{},
	}
	userBy := make(map[uuid.UUID]userModel.UserModel, len(students))
	for _, st := range students {
		out.Students = append(out.Students, dto.NewStudentInfo(st))
		userBy[st.ID] = st
	}

	sessions, err := s.sessionsOf(ctx, s.DB, classroomID, "attendance_session_start_time ASC")
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(sessions) == 0 {
		return out, nil
	}

	sessionIDs := make([]uuid.UUID, 0, len(sessions))
	for _, sess := range sessions {
		sessionIDs = append(sessionIDs, sess.AttendanceSessionID)
	}
	var records []model.AttendanceRecordModel
	if err := s.DB.WithContext(ctx).
		Where("attendance_record_session_id IN ?", sessionIDs).
		Order("attendance_record_timestamp ASC").
		Find(&records).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	// record dari user yang sudah bukan siswa kelas tetap ditampilkan
	var missing []uuid.UUID
	for _, r := range records {
		if _, ok := userBy[r.AttendanceRecordUserID]; !ok {
			missing = append(missing, r.AttendanceRecordUserID)
		}
	}
	if len(missing) > 0 {
		var extra []userModel.UserModel
		if err := s.DB.WithContext(ctx).Where("id IN ?", missing).Find(&extra).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		for _, u := range extra {
			userBy[u.ID] = u
		}
	}

	bySession := map[uuid.UUID][]model.AttendanceRecordModel{}
	for _, r := range records {
		bySession[r.AttendanceRecordSessionID] = append(bySession[r.AttendanceRecordSessionID], r)
	}

	now := s.Now().UTC()
	for _, sess := range sessions {
		recs := bySession[sess.AttendanceSessionID]
		item := dto.SessionAttendance{
			SessionID:             sess.AttendanceSessionID,
			SessionTitle:          sess.AttendanceSessionTitle,
			SessionStartTime:      sess.AttendanceSessionStartTime,
			Phase:                 sess.PhaseAt(now),
			AttendanceRecords:     make([]dto.MatrixRecord, 0, len(recs)),
			CountStatusPerStudent: make([]dto.StudentStatusCount, 0, len(students)),
		}

		statusOf := make(map[uuid.UUID]model.RecordStatus, len(recs))
		for _, r := range recs {
			statusOf[r.AttendanceRecordUserID] = r.AttendanceRecordStatus
			mr := dto.MatrixRecord{
				Status:      r.AttendanceRecordStatus,
				Timestamp:   r.AttendanceRecordTimestamp,
				Description: r.AttendanceRecordDescription,
			}
			if u, ok := userBy[r.AttendanceRecordUserID]; ok {
				mr.StudentInfo = dto.NewStudentInfo(u)
			} else {
				mr.StudentInfo = dto.StudentInfo{UserID: r.AttendanceRecordUserID}
			}
			item.AttendanceRecords = append(item.AttendanceRecords, mr)
			item.CountStatus.Add(r.AttendanceRecordStatus)
		}

		for _, st := range students {
			status, ok := statusOf[st.ID]
			if !ok {
				status = model.RecordStatusAbsent
				item.CountStatus.Add(status)
			}
			c := dto.StudentStatusCount{UserID: st.ID}
			c.Add(status)
			item.CountStatusPerStudent = append(item.CountStatusPerStudent, c)
		}
		out.AttendanceData = append(out.AttendanceData, item)
	}
	return out, nil
}

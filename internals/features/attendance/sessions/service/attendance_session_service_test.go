package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "kelasku_backend/internals/features/attendance/sessions/dto"
	model "kelasku_backend/internals/features/attendance/sessions/model"
	classroomModel "kelasku_backend/internals/features/classrooms/classrooms/model"
	userModel "kelasku_backend/internals/features/users/user/model"
	"kelasku_backend/internals/helpers/apperr"
	"kelasku_backend/internals/testkit"
)

var (
	t0          = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	endTime     = t0.Add(15 * time.Minute)
	endTeaching = t0.Add(90 * time.Minute)
)

type harness struct {
	testkit.Fixture
	svc   *SessionService
	clock *testkit.Clock
}

func newHarness(t *testing.T) harness {
	fx := testkit.NewFixture(t)
	clock := testkit.NewClock(t0)
	svc := NewSessionService(fx.DB)
	svc.Now = clock.Now
	return harness{Fixture: fx, svc: svc, clock: clock}
}

func (h harness) request(start time.Time) dto.CreateSessionRequest {
	return dto.CreateSessionRequest{
		AttendanceSessionClassroomID: h.Classroom.ClassroomID,
		AttendanceSessionTitle:       "Jam ke-1",
		AttendanceSessionStartTime:   start,
		AttendanceSessionEndTime:     start.Add(15 * time.Minute),
		AttendanceSessionEndTeaching: start.Add(90 * time.Minute),
	}
}

func (h harness) open(t *testing.T) *dto.SessionResponse {
	t.Helper()
	s, err := h.svc.Create(context.Background(), h.Teacher.ID, h.request(t0))
	require.NoError(t, err)
	return s
}

func ptr(s string) *string { return &s }

func TestCreate_PublishedFlagAndPhase(t *testing.T) {
	h := newHarness(t)

	s := h.open(t)
	assert.True(t, s.AttendanceSessionIsPublished)
	assert.Equal(t, model.SessionPhaseOpen, s.Phase)

	h2 := newHarness(t)
	future, err := h2.svc.Create(context.Background(), h2.Teacher.ID, h2.request(t0.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, future.AttendanceSessionIsPublished)
	assert.Equal(t, model.SessionPhaseScheduled, future.Phase)
}

func TestCreate_OneOpenSessionPerClassroom(t *testing.T) {
	h := newHarness(t)
	h.open(t)

	_, err := h.svc.Create(context.Background(), h.Teacher.ID, h.request(t0.Add(10*time.Minute)))
	assert.True(t, errors.Is(err, apperr.SessionAlreadyOpen))

	// tepat di end_teaching masih dianggap aktif
	h.clock.Set(endTeaching)
	_, err = h.svc.Create(context.Background(), h.Teacher.ID, h.request(endTeaching))
	assert.True(t, errors.Is(err, apperr.SessionAlreadyOpen))

	h.clock.Set(endTeaching.Add(time.Second))
	_, err = h.svc.Create(context.Background(), h.Teacher.ID, h.request(h.clock.Now()))
	require.NoError(t, err)

	var room classroomModel.ClassroomModel
	require.NoError(t, h.DB.Where("classroom_id = ?", h.Classroom.ClassroomID).Take(&room).Error)
	assert.Equal(t, int64(2), room.ClassroomAttendanceVersion)
}

func TestCreate_ScheduledSessionAlsoBlocks(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Create(context.Background(), h.Teacher.ID, h.request(t0.Add(3*time.Hour)))
	require.NoError(t, err)

	_, err = h.svc.Create(context.Background(), h.Teacher.ID, h.request(t0))
	assert.True(t, errors.Is(err, apperr.SessionAlreadyOpen))
}

func TestCreate_OtherClassroomNotBlocked(t *testing.T) {
	h := newHarness(t)
	h.open(t)

	other := testkit.CreateClassroom(t, h.DB, h.Teacher, "IPA 8B")
	req := h.request(t0)
	req.AttendanceSessionClassroomID = other.ClassroomID
	_, err := h.svc.Create(context.Background(), h.Teacher.ID, req)
	require.NoError(t, err)
}

func TestCreate_Guards(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Create(context.Background(), h.Alice.ID, h.request(t0))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	bad := h.request(t0)
	bad.AttendanceSessionEndTeaching = t0.Add(5 * time.Minute)
	_, err = h.svc.Create(context.Background(), h.Teacher.ID, bad)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCheckIn_StatusResolution(t *testing.T) {
	tests := []struct {
		name      string
		at        time.Time
		requested model.RecordStatus
		want      model.RecordStatus
	}{
		{"at start", t0, model.RecordStatusPresent, model.RecordStatusPresent},
		{"exactly end time", endTime, model.RecordStatusPresent, model.RecordStatusPresent},
		{"after end time", endTime.Add(time.Second), model.RecordStatusPresent, model.RecordStatusLate},
		{"requested late but on time", t0.Add(time.Minute), model.RecordStatusLate, model.RecordStatusPresent},
		{"requested present but late", endTeaching, model.RecordStatusPresent, model.RecordStatusLate},
		{"leave early", t0, model.RecordStatusLeave, model.RecordStatusLeave},
		{"leave late", endTeaching, model.RecordStatusLeave, model.RecordStatusLeave},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			s := h.open(t)
			h.clock.Set(tt.at)

			req := dto.CheckInRequest{Status: tt.requested}
			if tt.requested == model.RecordStatusLeave {
				req.Description = ptr("ป่วย")
			}
			rec, err := h.svc.CheckIn(context.Background(), h.Alice.ID, s.AttendanceSessionID, req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.AttendanceRecordStatus)
			assert.True(t, rec.AttendanceRecordTimestamp.Equal(tt.at))
		})
	}
}

func TestCheckIn_OutsideWindow(t *testing.T) {
	h := newHarness(t)
	s, err := h.svc.Create(context.Background(), h.Teacher.ID, h.request(t0.Add(time.Hour)))
	require.NoError(t, err)

	_, err = h.svc.CheckIn(context.Background(), h.Alice.ID, s.AttendanceSessionID, dto.CheckInRequest{Status: model.RecordStatusPresent})
	assert.True(t, errors.Is(err, apperr.OutsideCheckInWindow))

	h.clock.Set(s.AttendanceSessionEndTeaching.Add(time.Nanosecond))
	_, err = h.svc.CheckIn(context.Background(), h.Alice.ID, s.AttendanceSessionID, dto.CheckInRequest{Status: model.RecordStatusLeave, Description: ptr("ลา")})
	assert.True(t, errors.Is(err, apperr.OutsideCheckInWindow))
}

func TestCheckIn_OnlyOnce(t *testing.T) {
	h := newHarness(t)
	s := h.open(t)

	_, err := h.svc.CheckIn(context.Background(), h.Alice.ID, s.AttendanceSessionID, dto.CheckInRequest{Status: model.RecordStatusPresent})
	require.NoError(t, err)

	_, err = h.svc.CheckIn(context.Background(), h.Alice.ID, s.AttendanceSessionID, dto.CheckInRequest{Status: model.RecordStatusLeave, Description: ptr("x")})
	assert.True(t, errors.Is(err, apperr.AlreadyCheckedIn))

	dup := model.AttendanceRecordModel{
		AttendanceRecordSessionID: s.AttendanceSessionID,
		AttendanceRecordUserID:    h.Alice.ID,
		AttendanceRecordStatus:    model.RecordStatusPresent,
		AttendanceRecordTimestamp: t0,
	}
	assert.True(t, apperr.IsUniqueViolation(h.DB.Create(&dup).Error))
}

func TestCheckIn_Guards(t *testing.T) {
	h := newHarness(t)
	s := h.open(t)

	// owner bukan anggota active
	_, err := h.svc.CheckIn(context.Background(), h.Teacher.ID, s.AttendanceSessionID, dto.CheckInRequest{Status: model.RecordStatusPresent})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	outsider := testkit.CreateUser(t, h.DB, userModel.RoleStudent, "Luar")
	_, err = h.svc.CheckIn(context.Background(), outsider.ID, s.AttendanceSessionID, dto.CheckInRequest{Status: model.RecordStatusPresent})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// izin wajib disertai keterangan
	_, err = h.svc.CheckIn(context.Background(), h.Alice.ID, s.AttendanceSessionID, dto.CheckInRequest{Status: model.RecordStatusLeave})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = h.svc.CheckIn(context.Background(), h.Alice.ID, s.AttendanceSessionID, dto.CheckInRequest{Status: model.RecordStatusLeave, Description: ptr("  ")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	var n int64
	h.DB.Model(&model.AttendanceRecordModel{}).Count(&n)
	assert.Zero(t, n)

	_, err = h.svc.CheckIn(context.Background(), h.Alice.ID, s.AttendanceSessionID, dto.CheckInRequest{Status: model.RecordStatusAbsent})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDelete_RemovesRecordsAndUnblocks(t *testing.T) {
	h := newHarness(t)
	s := h.open(t)
	_, err := h.svc.CheckIn(context.Background(), h.Alice.ID, s.AttendanceSessionID, dto.CheckInRequest{Status: model.RecordStatusPresent})
	require.NoError(t, err)

	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(h.svc.Delete(context.Background(), h.Alice.ID, s.AttendanceSessionID)))
	require.NoError(t, h.svc.Delete(context.Background(), h.Teacher.ID, s.AttendanceSessionID))

	var n int64
	h.DB.Model(&model.AttendanceRecordModel{}).Count(&n)
	assert.Zero(t, n)

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(h.svc.Delete(context.Background(), h.Teacher.ID, s.AttendanceSessionID)))

	_, err = h.svc.Create(context.Background(), h.Teacher.ID, h.request(t0))
	require.NoError(t, err)
}

func TestActive(t *testing.T) {
	h := newHarness(t)
	s := h.open(t)
	_, err := h.svc.CheckIn(context.Background(), h.Alice.ID, s.AttendanceSessionID, dto.CheckInRequest{Status: model.RecordStatusPresent})
	require.NoError(t, err)

	active, err := h.svc.Active(context.Background(), h.Alice.ID, h.Classroom.ClassroomID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, *active[0].IsCheckedIn)
	require.NotNil(t, active[0].Creator)
	assert.Equal(t, h.Teacher.ID, active[0].Creator.ID)

	active, err = h.svc.Active(context.Background(), h.Bob.ID, h.Classroom.ClassroomID)
	require.NoError(t, err)
	assert.False(t, *active[0].IsCheckedIn)

	h.clock.Set(endTeaching.Add(time.Minute))
	active, err = h.svc.Active(context.Background(), h.Bob.ID, h.Classroom.ClassroomID)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := h.svc.List(context.Background(), h.Bob.ID, h.Classroom.ClassroomID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, model.SessionPhaseClosed, all[0].Phase)
}

func TestMatrix_AbsentWhenNoRecord(t *testing.T) {
	h := newHarness(t)
	s := h.open(t)
	h.clock.Set(endTime.Add(time.Minute))
	_, err := h.svc.CheckIn(context.Background(), h.Alice.ID, s.AttendanceSessionID, dto.CheckInRequest{Status: model.RecordStatusPresent})
	require.NoError(t, err)

	m, err := h.svc.Matrix(context.Background(), h.Teacher.ID, h.Classroom.ClassroomID)
	require.NoError(t, err)
	require.Len(t, m.Students, 2)
	require.Len(t, m.AttendanceData, 1)

	day := m.AttendanceData[0]
	assert.Equal(t, dto.StatusCount{Late: 1, Absent: 1}, day.CountStatus)
	require.Len(t, day.AttendanceRecords, 1)
	assert.Equal(t, "Alice", day.AttendanceRecords[0].StudentFName)

	require.Len(t, day.CountStatusPerStudent, 2)
	assert.Equal(t, h.Alice.ID, day.CountStatusPerStudent[0].UserID)
	assert.Equal(t, 1, day.CountStatusPerStudent[0].Late)
	assert.Equal(t, h.Bob.ID, day.CountStatusPerStudent[1].UserID)
	assert.Equal(t, 1, day.CountStatusPerStudent[1].Absent)

	_, err = h.svc.Matrix(context.Background(), h.Alice.ID, h.Classroom.ClassroomID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assignmentDTO "kelasku_backend/internals/features/assignments/assignments/dto"
	assignmentModel "kelasku_backend/internals/features/assignments/assignments/model"
	dto "kelasku_backend/internals/features/assignments/submissions/dto"
	model "kelasku_backend/internals/features/assignments/submissions/model"
	notificationModel "kelasku_backend/internals/features/notifications/notifications/model"
	notificationService "kelasku_backend/internals/features/notifications/notifications/service"
	uploadModel "kelasku_backend/internals/features/storage/uploads/model"
	uploadService "kelasku_backend/internals/features/storage/uploads/service"
	userModel "kelasku_backend/internals/features/users/user/model"
	"kelasku_backend/internals/helpers/apperr"
	helperOSS "kelasku_backend/internals/helpers/oss"
	"kelasku_backend/internals/testkit"
)

var due = time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)

type harness struct {
	testkit.Fixture
	svc        *SubmissionService
	blobs      *helperOSS.MemoryBlobStore
	pub        *notificationService.RecordingPublisher
	clock      *testkit.Clock
	assignment assignmentModel.AssignmentModel
}

func newHarness(t *testing.T) harness {
	fx := testkit.NewFixture(t)
	blobs := helperOSS.NewMemoryBlobStore()
	pub := &notificationService.RecordingPublisher{}
	clock := testkit.NewClock(due.Add(-time.Hour))

	a := assignmentModel.AssignmentModel{
		AssignmentClassroomID: fx.Classroom.ClassroomID,
		AssignmentCreatedBy:   fx.Teacher.ID,
		AssignmentName:        "Pecahan",
		AssignmentFullScore:   100,
		AssignmentDueDate:     due,
		AssignmentPublish:     true,
	}
	require.NoError(t, fx.DB.Create(&a).Error)

	svc := NewSubmissionService(fx.DB, blobs, notificationService.NewNotificationService(fx.DB, pub))
	svc.Now = clock.Now
	return harness{Fixture: fx, svc: svc, blobs: blobs, pub: pub, clock: clock, assignment: a}
}

// upload: key diterbitkan atas nama user, sama seperti lewat POST /uploads.
func (h harness) upload(t *testing.T, user userModel.UserModel, name string) assignmentDTO.FileInput {
	t.Helper()
	up, err := uploadService.NewUploadService(h.DB, h.blobs).Issue(context.Background(), user.ID, name, "image/png")
	require.NoError(t, err)
	return assignmentDTO.FileInput{Name: name, StorageKey: up.StorageKey}
}

func (h harness) submit(t *testing.T, user userModel.UserModel, files ...assignmentDTO.FileInput) *dto.SubmissionResponse {
	t.Helper()
	resp, err := h.svc.Create(context.Background(), user.ID, dto.CreateSubmissionRequest{
		SubmissionAssignmentID: h.assignment.AssignmentID,
		SubmissionClassroomID:  h.Classroom.ClassroomID,
		Files:                  files,
	})
	require.NoError(t, err)
	return resp
}

func TestCreate_StatusFixedAtCreation(t *testing.T) {
	h := newHarness(t)

	h.clock.Set(due.Add(-time.Millisecond))
	early := h.submit(t, h.Alice)
	assert.Equal(t, model.SubmissionStatusSubmitted, early.SubmissionStatus)

	h.clock.Set(due)
	late := h.submit(t, h.Bob)
	assert.Equal(t, model.SubmissionStatusLate, late.SubmissionStatus)

	// lewat deadline, status Alice tetap submitted
	h.clock.Set(due.Add(48 * time.Hour))
	mine, err := h.svc.MySubmission(context.Background(), h.Alice.ID, h.assignment.AssignmentID)
	require.NoError(t, err)
	require.True(t, mine.Submitted)
	assert.Equal(t, model.SubmissionStatusSubmitted, mine.Submission.SubmissionStatus)
	assert.False(t, mine.Submission.SubmissionIsChecked)
}

func TestCreate_SecondSubmissionRejected(t *testing.T) {
	h := newHarness(t)
	h.submit(t, h.Alice)

	_, err := h.svc.Create(context.Background(), h.Alice.ID, dto.CreateSubmissionRequest{
		SubmissionAssignmentID: h.assignment.AssignmentID,
		SubmissionClassroomID:  h.Classroom.ClassroomID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.AlreadySubmitted))
}

func TestCreate_UniqueIndexBacksTheCheck(t *testing.T) {
	h := newHarness(t)
	h.submit(t, h.Alice)

	dup := model.SubmissionModel{
		SubmissionAssignmentID: h.assignment.AssignmentID,
		SubmissionClassroomID:  h.Classroom.ClassroomID,
		SubmissionUserID:       h.Alice.ID,
		SubmissionStatus:       model.SubmissionStatusSubmitted,
	}
	err := h.DB.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, apperr.IsUniqueViolation(err))
}

func TestCreate_ConcurrentDuplicatesOnlyOneWins(t *testing.T) {
	h := newHarness(t)

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.svc.Create(context.Background(), h.Alice.ID, dto.CreateSubmissionRequest{
				SubmissionAssignmentID: h.assignment.AssignmentID,
				SubmissionClassroomID:  h.Classroom.ClassroomID,
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, apperr.AlreadySubmitted), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)

	var count int64
	h.DB.Model(&model.SubmissionModel{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreate_Guards(t *testing.T) {
	h := newHarness(t)
	outsider := testkit.CreateUser(t, h.DB, userModel.RoleStudent, "Luar")

	_, err := h.svc.Create(context.Background(), outsider.ID, dto.CreateSubmissionRequest{
		SubmissionAssignmentID: h.assignment.AssignmentID,
		SubmissionClassroomID:  h.Classroom.ClassroomID,
	})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = h.svc.Create(context.Background(), uuid.Nil, dto.CreateSubmissionRequest{
		SubmissionAssignmentID: h.assignment.AssignmentID,
		SubmissionClassroomID:  h.Classroom.ClassroomID,
	})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = h.svc.Create(context.Background(), h.Alice.ID, dto.CreateSubmissionRequest{
		SubmissionAssignmentID: uuid.New(),
		SubmissionClassroomID:  h.Classroom.ClassroomID,
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGrade(t *testing.T) {
	h := newHarness(t)
	sub := h.submit(t, h.Alice)

	_, err := h.svc.Grade(context.Background(), h.Alice.ID, sub.SubmissionID, dto.GradeSubmissionRequest{SubmissionScore: 100})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// skor di atas full score tetap disimpan apa adanya
	got, err := h.svc.Grade(context.Background(), h.Teacher.ID, sub.SubmissionID, dto.GradeSubmissionRequest{
		SubmissionScore:    120,
		SubmissionFeedback: "ดีมาก",
	})
	require.NoError(t, err)
	assert.True(t, got.SubmissionIsChecked)
	assert.Equal(t, 120.0, got.SubmissionScore)
	assert.Equal(t, "ดีมาก", got.SubmissionFeedback)

	sent := h.pub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notificationModel.NotificationTypeFeedback, sent[0].NotificationType)
	assert.Equal(t, h.Alice.ID, sent[0].NotificationUserID)

	// status canResubmit tetap bisa dinilai; status tidak berubah
	_, err = h.svc.AllowResubmission(context.Background(), h.Teacher.ID, sub.SubmissionID)
	require.NoError(t, err)
	got, err = h.svc.Grade(context.Background(), h.Teacher.ID, sub.SubmissionID, dto.GradeSubmissionRequest{SubmissionScore: 5})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusCanResubmit, got.SubmissionStatus)
	assert.True(t, got.SubmissionIsChecked)
	assert.Equal(t, 5.0, got.SubmissionScore)
}

func TestResubmitBeforeAllowFails(t *testing.T) {
	h := newHarness(t)
	sub := h.submit(t, h.Alice, h.upload(t, h.Alice, "a.png"))

	_, err := h.svc.Resubmit(context.Background(), h.Alice.ID, sub.SubmissionID, dto.ResubmitRequest{})
	assert.True(t, errors.Is(err, apperr.CannotResubmit))

	h.clock.Set(due.Add(time.Hour))
	late := h.submit(t, h.Bob)
	_, err = h.svc.Resubmit(context.Background(), h.Bob.ID, late.SubmissionID, dto.ResubmitRequest{})
	assert.True(t, errors.Is(err, apperr.CannotResubmit))
}

func TestAllowResubmission_ResetsGradingAndFiles(t *testing.T) {
	h := newHarness(t)
	f1, f2 := h.upload(t, h.Alice, "a.png"), h.upload(t, h.Alice, "b.png")
	sub := h.submit(t, h.Alice, f1, f2)

	_, err := h.svc.Grade(context.Background(), h.Teacher.ID, sub.SubmissionID, dto.GradeSubmissionRequest{SubmissionScore: 80, SubmissionFeedback: "ok"})
	require.NoError(t, err)

	got, err := h.svc.AllowResubmission(context.Background(), h.Teacher.ID, sub.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusCanResubmit, got.SubmissionStatus)
	assert.True(t, got.SubmissionCanResubmit)
	assert.False(t, got.SubmissionIsChecked)
	assert.Zero(t, got.SubmissionScore)
	assert.Equal(t, model.ResubmitFeedback, got.SubmissionFeedback)
	assert.Empty(t, got.Files)

	// handle lama tidak bisa diambil lagi
	for _, f := range []assignmentDTO.FileInput{f1, f2} {
		_, err := h.blobs.GetURL(context.Background(), f.StorageKey)
		assert.ErrorIs(t, err, helperOSS.ErrBlobNotFound)
	}

	var notif notificationModel.NotificationModel
	require.NoError(t, h.DB.Where("notification_type = ?", notificationModel.NotificationTypeResubmitAllowed).Take(&notif).Error)
	assert.Equal(t, h.Alice.ID, notif.NotificationUserID)
	assert.Equal(t, sub.SubmissionID.String(), notif.NotificationData["submitAssignmentId"])

	_, err = h.svc.AllowResubmission(context.Background(), h.Teacher.ID, sub.SubmissionID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestAllowResubmission_KeepsBlobSharedWithAssignment(t *testing.T) {
	h := newHarness(t)
	shared := h.upload(t, h.Teacher, "soal.png")
	require.NoError(t, h.DB.Create(&assignmentModel.AssignmentFileModel{
		AssignmentFileAssignmentID: h.assignment.AssignmentID,
		AssignmentFileName:         shared.Name,
		AssignmentFileStorageKey:   shared.StorageKey,
	}).Error)

	// lewat service, key milik guru ditolak
	_, err := h.svc.Create(context.Background(), h.Alice.ID, dto.CreateSubmissionRequest{
		SubmissionAssignmentID: h.assignment.AssignmentID,
		SubmissionClassroomID:  h.Classroom.ClassroomID,
		Files:                  []assignmentDTO.FileInput{shared},
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	var n int64
	h.DB.Model(&model.SubmissionModel{}).Count(&n)
	assert.Zero(t, n)

	// row lama yang terlanjur berbagi key: blob tetap hidup
	sub := h.submit(t, h.Alice)
	require.NoError(t, h.DB.Create(&model.SubmissionFileModel{
		SubmissionFileSubmissionID: sub.SubmissionID,
		SubmissionFileName:         shared.Name,
		SubmissionFileStorageKey:   shared.StorageKey,
	}).Error)

	_, err = h.svc.AllowResubmission(context.Background(), h.Teacher.ID, sub.SubmissionID)
	require.NoError(t, err)
	assert.True(t, h.blobs.Has(shared.StorageKey))
	url, err := h.blobs.GetURL(context.Background(), shared.StorageKey)
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	var pending int64
	h.DB.Model(&uploadModel.PendingBlobDeletionModel{}).Count(&pending)
	assert.Zero(t, pending)
}

func TestCreate_RejectsForeignOrReusedKeys(t *testing.T) {
	h := newHarness(t)
	create := func(user userModel.UserModel, files ...assignmentDTO.FileInput) error {
		_, err := h.svc.Create(context.Background(), user.ID, dto.CreateSubmissionRequest{
			SubmissionAssignmentID: h.assignment.AssignmentID,
			SubmissionClassroomID:  h.Classroom.ClassroomID,
			Files:                  files,
		})
		return err
	}

	err := create(h.Alice, assignmentDTO.FileInput{Name: "x.png", StorageKey: "uploads/x.png"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	bobs := h.upload(t, h.Bob, "bob.png")
	err = create(h.Alice, bobs)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	mine := h.upload(t, h.Alice, "a.png")
	err = create(h.Alice, mine, mine)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.NoError(t, create(h.Alice, mine))
	// key yang sudah terpakai tidak bisa dipakai submission lain
	require.NoError(t, h.DB.Model(&uploadModel.UploadModel{}).
		Where("upload_storage_key = ?", mine.StorageKey).
		Update("upload_user_id", h.Bob.ID).Error)
	err = create(h.Bob, mine)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestResubmit_KeepsReusedKey(t *testing.T) {
	h := newHarness(t)
	f := h.upload(t, h.Alice, "a.png")
	sub := h.submit(t, h.Alice, f)

	// allow → file lama dihapus, key tidak bisa diklaim lagi
	_, err := h.svc.AllowResubmission(context.Background(), h.Teacher.ID, sub.SubmissionID)
	require.NoError(t, err)
	_, err = h.svc.Resubmit(context.Background(), h.Alice.ID, sub.SubmissionID, dto.ResubmitRequest{
		Files: []assignmentDTO.FileInput{f},
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	g := h.upload(t, h.Alice, "b.png")
	got, err := h.svc.Resubmit(context.Background(), h.Alice.ID, sub.SubmissionID, dto.ResubmitRequest{
		Files: []assignmentDTO.FileInput{g},
	})
	require.NoError(t, err)
	require.Len(t, got.Files, 1)
	assert.Equal(t, g.StorageKey, got.Files[0].SubmissionFileStorageKey)
}

func TestResubmit_OnlyOwner(t *testing.T) {
	h := newHarness(t)
	sub := h.submit(t, h.Alice)
	_, err := h.svc.AllowResubmission(context.Background(), h.Teacher.ID, sub.SubmissionID)
	require.NoError(t, err)

	_, err = h.svc.Resubmit(context.Background(), h.Bob.ID, sub.SubmissionID, dto.ResubmitRequest{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestLifecycleEndToEnd(t *testing.T) {
	h := newHarness(t)

	h.clock.Set(due.Add(-time.Hour))
	a := h.submit(t, h.Alice, h.upload(t, h.Alice, "alice.png"))
	assert.Equal(t, model.SubmissionStatusSubmitted, a.SubmissionStatus)

	h.clock.Set(due.Add(time.Hour))
	old := h.upload(t, h.Bob, "bob-v1.png")
	b := h.submit(t, h.Bob, old)
	assert.Equal(t, model.SubmissionStatusLate, b.SubmissionStatus)

	allowed, err := h.svc.AllowResubmission(context.Background(), h.Teacher.ID, b.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusCanResubmit, allowed.SubmissionStatus)

	h.clock.Advance(24 * time.Hour)
	fresh := h.upload(t, h.Bob, "bob-v2.png")
	got, err := h.svc.Resubmit(context.Background(), h.Bob.ID, b.SubmissionID, dto.ResubmitRequest{
		Files: []assignmentDTO.FileInput{fresh},
	})
	require.NoError(t, err)
	// tetap submitted walau sudah lewat deadline
	assert.Equal(t, model.SubmissionStatusSubmitted, got.SubmissionStatus)
	assert.False(t, got.SubmissionCanResubmit)
	require.Len(t, got.Files, 1)
	assert.Equal(t, fresh.StorageKey, got.Files[0].SubmissionFileStorageKey)
	assert.NotNil(t, got.Files[0].SubmissionFileURL)
	assert.False(t, h.blobs.Has(old.StorageKey))
	assert.True(t, h.blobs.Has(fresh.StorageKey))
}

func TestListForAssignment_NewestFirstWithPaging(t *testing.T) {
	h := newHarness(t)
	h.submit(t, h.Alice)
	h.clock.Advance(time.Minute)
	h.submit(t, h.Bob)

	page, total, err := h.svc.ListForAssignment(context.Background(), h.Teacher.ID, h.assignment.AssignmentID, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page, 1)
	assert.Equal(t, h.Bob.ID, page[0].SubmissionUserID)
	require.NotNil(t, page[0].User)
	assert.Equal(t, "Bob", page[0].User.FName)

	_, _, err = h.svc.ListForAssignment(context.Background(), h.Alice.ID, h.assignment.AssignmentID, 0, 10)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestDetail_OwnerOrTeacher(t *testing.T) {
	h := newHarness(t)
	sub := h.submit(t, h.Alice)

	got, err := h.svc.Detail(context.Background(), h.Alice.ID, sub.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, "Pecahan", got.Assignment.AssignmentName)
	assert.Equal(t, h.Alice.ID, got.User.ID)

	_, err = h.svc.Detail(context.Background(), h.Teacher.ID, sub.SubmissionID)
	require.NoError(t, err)

	_, err = h.svc.Detail(context.Background(), h.Bob.ID, sub.SubmissionID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestHasSubmittedAndOverview(t *testing.T) {
	h := newHarness(t)
	other := assignmentModel.AssignmentModel{
		AssignmentClassroomID: h.Classroom.ClassroomID,
		AssignmentCreatedBy:   h.Teacher.ID,
		AssignmentName:        "Desimal",
		AssignmentFullScore:   50,
		AssignmentDueDate:     due.Add(72 * time.Hour),
		AssignmentPublish:     true,
	}
	require.NoError(t, h.DB.Create(&other).Error)

	ok, err := h.svc.HasSubmitted(context.Background(), h.Alice.ID, h.assignment.AssignmentID, h.Classroom.ClassroomID)
	require.NoError(t, err)
	assert.False(t, ok)

	h.submit(t, h.Alice)

	ok, err = h.svc.HasSubmitted(context.Background(), h.Alice.ID, h.assignment.AssignmentID, h.Classroom.ClassroomID)
	require.NoError(t, err)
	assert.True(t, ok)

	ov, err := h.svc.StudentOverview(context.Background(), h.Alice.ID, h.Classroom.ClassroomID)
	require.NoError(t, err)
	require.Len(t, ov.Submitted, 1)
	require.Len(t, ov.NotSubmitted, 1)
	assert.Equal(t, "Desimal", ov.NotSubmitted[0].AssignmentName)
	assert.Equal(t, model.SubmissionStatusNotSubmitted, ov.NotSubmitted[0].Status)
	assert.Nil(t, ov.NotSubmitted[0].Score)

	mine, err := h.svc.MySubmission(context.Background(), h.Alice.ID, other.AssignmentID)
	require.NoError(t, err)
	assert.False(t, mine.Submitted)
	assert.Nil(t, mine.Submission)
}

func TestScoreboard_OnlyClassroomStudents(t *testing.T) {
	h := newHarness(t)
	// siswa kelas lain tidak boleh muncul
	testkit.CreateUser(t, h.DB, userModel.RoleStudent, "Zed")

	sub := h.submit(t, h.Alice)
	_, err := h.svc.Grade(context.Background(), h.Teacher.ID, sub.SubmissionID, dto.GradeSubmissionRequest{SubmissionScore: 90})
	require.NoError(t, err)

	board, err := h.svc.Scoreboard(context.Background(), h.Teacher.ID, h.Classroom.ClassroomID)
	require.NoError(t, err)
	require.Len(t, board, 1)
	cells := board[0].Submissions
	require.Len(t, cells, 2)

	assert.Equal(t, h.Alice.ID, cells[0].UserID)
	assert.Equal(t, 90.0, cells[0].Score)
	assert.Equal(t, model.SubmissionStatusSubmitted, cells[0].Status)

	assert.Equal(t, h.Bob.ID, cells[1].UserID)
	assert.Zero(t, cells[1].Score)
	assert.Equal(t, model.SubmissionStatusNotSubmitted, cells[1].Status)

	_, err = h.svc.Scoreboard(context.Background(), h.Alice.ID, h.Classroom.ClassroomID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

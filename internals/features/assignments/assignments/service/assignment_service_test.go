package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "kelasku_backend/internals/features/assignments/assignments/dto"
	model "kelasku_backend/internals/features/assignments/assignments/model"
	submissionModel "kelasku_backend/internals/features/assignments/submissions/model"
	notificationModel "kelasku_backend/internals/features/notifications/notifications/model"
	notificationService "kelasku_backend/internals/features/notifications/notifications/service"
	uploadModel "kelasku_backend/internals/features/storage/uploads/model"
	uploadService "kelasku_backend/internals/features/storage/uploads/service"
	"kelasku_backend/internals/helpers/apperr"
	helperOSS "kelasku_backend/internals/helpers/oss"
	"kelasku_backend/internals/testkit"
)

type harness struct {
	testkit.Fixture
	svc   *AssignmentService
	blobs *helperOSS.MemoryBlobStore
	pub   *notificationService.RecordingPublisher
	clock *testkit.Clock
}

func newHarness(t *testing.T) harness {
	fx := testkit.NewFixture(t)
	blobs := helperOSS.NewMemoryBlobStore()
	pub := &notificationService.RecordingPublisher{}
	clock := testkit.NewClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	svc := NewAssignmentService(fx.DB, blobs, notificationService.NewNotificationService(fx.DB, pub))
	svc.Now = clock.Now
	return harness{Fixture: fx, svc: svc, blobs: blobs, pub: pub, clock: clock}
}

// upload: key diterbitkan atas nama guru, sama seperti lewat POST /uploads.
func (h harness) upload(t *testing.T, name string) dto.FileInput {
	return h.uploadAs(t, h.Teacher.ID, name)
}

func (h harness) uploadAs(t *testing.T, userID uuid.UUID, name string) dto.FileInput {
	t.Helper()
	up, err := uploadService.NewUploadService(h.DB, h.blobs).Issue(context.Background(), userID, name, "application/pdf")
	require.NoError(t, err)
	return dto.FileInput{Name: name, StorageKey: up.StorageKey}
}

func (h harness) create(t *testing.T, name string, publish bool, files ...dto.FileInput) *dto.AssignmentResponse {
	t.Helper()
	resp, err := h.svc.Create(context.Background(), h.Teacher.ID, dto.CreateAssignmentRequest{
		AssignmentClassroomID: h.Classroom.ClassroomID,
		AssignmentName:        name,
		AssignmentFullScore:   10,
		AssignmentDueDate:     h.clock.Now().Add(24 * time.Hour),
		AssignmentPublish:     publish,
		Files:                 files,
	})
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	return resp
}

func TestCreateAssignment_PublishedNotifiesActiveMembers(t *testing.T) {
	h := newHarness(t)
	f := h.upload(t, "soal.pdf")

	resp := h.create(t, "Latihan 1", true, f)
	require.Len(t, resp.Files, 1)
	assert.NotNil(t, resp.Files[0].AssignmentFileURL)

	var notifs []notificationModel.NotificationModel
	require.NoError(t, h.DB.Where("notification_type = ?", notificationModel.NotificationTypeNewAssignment).Find(&notifs).Error)
	assert.Len(t, notifs, 2)
	assert.Len(t, h.pub.Sent(), 2)
	for _, n := range notifs {
		assert.NotEqual(t, h.Teacher.ID, n.NotificationUserID)
	}
}

func TestCreateAssignment_DraftDoesNotNotify(t *testing.T) {
	h := newHarness(t)
	h.create(t, "Draft", false)
	assert.Empty(t, h.pub.Sent())
}

func TestCreateAssignment_StudentForbidden(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Create(context.Background(), h.Alice.ID, dto.CreateAssignmentRequest{
		AssignmentClassroomID: h.Classroom.ClassroomID,
		AssignmentName:        "x",
		AssignmentDueDate:     h.clock.Now(),
	})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestListAssignments(t *testing.T) {
	h := newHarness(t)
	first := h.create(t, "Pertama", true)
	second := h.create(t, "Kedua", true)
	h.create(t, "Draft", false)

	require.NoError(t, h.DB.Create(&submissionModel.SubmissionModel{
		SubmissionAssignmentID: first.AssignmentID,
		SubmissionClassroomID:  h.Classroom.ClassroomID,
		SubmissionUserID:       h.Alice.ID,
		SubmissionStatus:       submissionModel.SubmissionStatusSubmitted,
	}).Error)

	list, err := h.svc.List(context.Background(), h.Alice.ID, h.Classroom.ClassroomID, true)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// terbaru dulu
	assert.Equal(t, second.AssignmentID, list[0].AssignmentID)
	assert.Equal(t, int64(0), *list[0].SubmitCount)
	assert.Equal(t, int64(1), *list[1].SubmitCount)

	_, err = h.svc.List(context.Background(), h.Alice.ID, h.Classroom.ClassroomID, false)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	drafts, err := h.svc.List(context.Background(), h.Teacher.ID, h.Classroom.ClassroomID, false)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}

func TestGetByID_DraftHiddenFromStudent(t *testing.T) {
	h := newHarness(t)
	draft := h.create(t, "Draft", false)

	_, err := h.svc.GetByID(context.Background(), h.Alice.ID, draft.AssignmentID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	got, err := h.svc.GetByID(context.Background(), h.Teacher.ID, draft.AssignmentID)
	require.NoError(t, err)
	assert.Equal(t, "Draft", got.AssignmentName)
}

func TestUpdateText_PublishingNotifies(t *testing.T) {
	h := newHarness(t)
	draft := h.create(t, "Draft", false)

	name := "Tugas Bab 2"
	publish := true
	got, err := h.svc.UpdateText(context.Background(), h.Teacher.ID, draft.AssignmentID, dto.UpdateAssignmentRequest{
		AssignmentName:    &name,
		AssignmentPublish: &publish,
	})
	require.NoError(t, err)
	assert.Equal(t, name, got.AssignmentName)
	assert.True(t, got.AssignmentPublish)
	assert.Len(t, h.pub.Sent(), 2)

	_, err = h.svc.UpdateText(context.Background(), h.Teacher.ID, draft.AssignmentID, dto.UpdateAssignmentRequest{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAddAndRemoveFile(t *testing.T) {
	h := newHarness(t)
	a := h.create(t, "Latihan", true)

	added, err := h.svc.AddFiles(context.Background(), h.Teacher.ID, a.AssignmentID, []dto.FileInput{h.upload(t, "a.pdf")})
	require.NoError(t, err)
	require.Len(t, added, 1)
	key := added[0].AssignmentFileStorageKey
	require.True(t, h.blobs.Has(key))

	require.NoError(t, h.svc.RemoveFile(context.Background(), h.Teacher.ID, a.AssignmentID, added[0].AssignmentFileID))
	assert.False(t, h.blobs.Has(key))

	var pending int64
	h.DB.Model(&uploadModel.PendingBlobDeletionModel{}).Count(&pending)
	assert.Zero(t, pending)

	err = h.svc.RemoveFile(context.Background(), h.Teacher.ID, a.AssignmentID, added[0].AssignmentFileID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFiles_RequireOwnUnusedUpload(t *testing.T) {
	h := newHarness(t)
	base := dto.CreateAssignmentRequest{
		AssignmentClassroomID: h.Classroom.ClassroomID,
		AssignmentName:        "Latihan",
		AssignmentFullScore:   10,
		AssignmentDueDate:     h.clock.Now().Add(24 * time.Hour),
	}

	// key karangan sendiri
	req := base
	req.Files = []dto.FileInput{{Name: "x.pdf", StorageKey: "uploads/x.pdf"}}
	_, err := h.svc.Create(context.Background(), h.Teacher.ID, req)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// key milik siswa
	req.Files = []dto.FileInput{h.uploadAs(t, h.Alice.ID, "jawaban.pdf")}
	_, err = h.svc.Create(context.Background(), h.Teacher.ID, req)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	f := h.upload(t, "soal.pdf")
	a := h.create(t, "Latihan 1", true, f)

	// key yang sama dilampirkan dua kali
	_, err = h.svc.AddFiles(context.Background(), h.Teacher.ID, a.AssignmentID, []dto.FileInput{f})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	g := h.upload(t, "b.pdf")
	_, err = h.svc.AddFiles(context.Background(), h.Teacher.ID, a.AssignmentID, []dto.FileInput{g, g})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	var n int64
	h.DB.Model(&model.AssignmentModel{}).Count(&n)
	assert.Equal(t, int64(1), n)
	h.DB.Model(&model.AssignmentFileModel{}).Count(&n)
	assert.Equal(t, int64(1), n)
	assert.True(t, h.blobs.Has(f.StorageKey))
}

func TestRemoveAssignment_Cascades(t *testing.T) {
	h := newHarness(t)
	aFile := h.upload(t, "soal.pdf")
	a := h.create(t, "Latihan", true, aFile)

	sub := submissionModel.SubmissionModel{
		SubmissionAssignmentID: a.AssignmentID,
		SubmissionClassroomID:  h.Classroom.ClassroomID,
		SubmissionUserID:       h.Alice.ID,
		SubmissionStatus:       submissionModel.SubmissionStatusSubmitted,
	}
	require.NoError(t, h.DB.Create(&sub).Error)
	sFile := h.uploadAs(t, h.Alice.ID, "jawaban.pdf")
	require.NoError(t, h.DB.Create(&submissionModel.SubmissionFileModel{
		SubmissionFileSubmissionID: sub.SubmissionID,
		SubmissionFileName:         sFile.Name,
		SubmissionFileStorageKey:   sFile.StorageKey,
	}).Error)

	require.NoError(t, h.svc.Remove(context.Background(), h.Teacher.ID, a.AssignmentID, h.Classroom.ClassroomID))

	var n int64
	h.DB.Model(&model.AssignmentModel{}).Count(&n)
	assert.Zero(t, n)
	h.DB.Model(&model.AssignmentFileModel{}).Count(&n)
	assert.Zero(t, n)
	h.DB.Model(&submissionModel.SubmissionModel{}).Count(&n)
	assert.Zero(t, n)
	h.DB.Model(&submissionModel.SubmissionFileModel{}).Count(&n)
	assert.Zero(t, n)
	assert.Equal(t, 0, h.blobs.Len())
}

func TestRemoveAssignment_BlobFailureLeavesPendingRow(t *testing.T) {
	h := newHarness(t)
	f := h.upload(t, "x.pdf")
	a := h.create(t, "Latihan", true, f)

	h.svc.Sweeper.Store = &helperOSS.MockBlobStore{
		DeleteFn: func(context.Context, string) error { return errors.New("oss down") },
	}
	require.NoError(t, h.svc.Remove(context.Background(), h.Teacher.ID, a.AssignmentID, h.Classroom.ClassroomID))

	var rows []uploadModel.PendingBlobDeletionModel
	require.NoError(t, h.DB.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, f.StorageKey, rows[0].PendingBlobDeletionStorageKey)
	assert.Equal(t, 1, rows[0].PendingBlobDeletionAttempts)
}

func TestRemoveAssignment_WrongClassroom(t *testing.T) {
	h := newHarness(t)
	a := h.create(t, "Latihan", true)
	other := testkit.CreateClassroom(t, h.DB, h.Teacher, "Kelas lain")

	err := h.svc.Remove(context.Background(), h.Teacher.ID, a.AssignmentID, other.ClassroomID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = h.svc.Remove(context.Background(), h.Teacher.ID, uuid.New(), h.Classroom.ClassroomID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	assignmentModel "kelasku_backend/internals/features/assignments/assignments/model"
	model "kelasku_backend/internals/features/storage/uploads/model"
	"kelasku_backend/internals/helpers/apperr"
	helperOSS "kelasku_backend/internals/helpers/oss"
	"kelasku_backend/internals/testkit"
)

func TestIssueRecordsOwner(t *testing.T) {
	db := testkit.OpenDB(t)
	svc := NewUploadService(db, helperOSS.NewMemoryBlobStore())
	owner := uuid.New()

	target, err := svc.Issue(context.Background(), owner, "tugas.pdf", "application/pdf")
	require.NoError(t, err)
	require.NotEmpty(t, target.StorageKey)

	var row model.UploadModel
	require.NoError(t, db.Where("upload_storage_key = ?", target.StorageKey).Take(&row).Error)
	assert.Equal(t, owner, row.UploadUserID)
	assert.Equal(t, "application/pdf", row.UploadContentType)
}

func TestClaimKeys(t *testing.T) {
	db := testkit.OpenDB(t)
	svc := NewUploadService(db, helperOSS.NewMemoryBlobStore())
	alice, bob := uuid.New(), uuid.New()

	a, err := svc.Issue(context.Background(), alice, "a.pdf", "application/pdf")
	require.NoError(t, err)
	b, err := svc.Issue(context.Background(), bob, "b.pdf", "application/pdf")
	require.NoError(t, err)

	require.NoError(t, ClaimKeys(db, alice))
	require.NoError(t, ClaimKeys(db, alice, a.StorageKey))

	err = ClaimKeys(db, alice, "uploads/karangan.pdf")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindValidation, Code: apperr.CodeInvalidStorageKey})

	err = ClaimKeys(db, alice, a.StorageKey, b.StorageKey)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = ClaimKeys(db, alice, a.StorageKey, a.StorageKey)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.NoError(t, db.Create(&assignmentModel.AssignmentFileModel{
		AssignmentFileAssignmentID: uuid.New(),
		AssignmentFileName:         "a.pdf",
		AssignmentFileStorageKey:   a.StorageKey,
	}).Error)
	err = ClaimKeys(db, alice, a.StorageKey)
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindConflict, Code: apperr.CodeStorageKeyInUse})
}

func TestMarkForDeletionSkipsReferencedKeys(t *testing.T) {
	db := testkit.OpenDB(t)
	store := helperOSS.NewMemoryBlobStore()
	svc := NewUploadService(db, store)

	shared, err := svc.Issue(context.Background(), uuid.New(), "soal.pdf", "application/pdf")
	require.NoError(t, err)
	gone, err := svc.Issue(context.Background(), uuid.New(), "lama.pdf", "application/pdf")
	require.NoError(t, err)
	require.NoError(t, db.Create(&assignmentModel.AssignmentFileModel{
		AssignmentFileAssignmentID: uuid.New(),
		AssignmentFileName:         "soal.pdf",
		AssignmentFileStorageKey:   shared.StorageKey,
	}).Error)

	err = db.Transaction(func(tx *gorm.DB) error {
		return MarkForDeletion(tx, "test", shared.StorageKey, gone.StorageKey)
	})
	require.NoError(t, err)

	rows := pending(t, db)
	require.Len(t, rows, 1)
	assert.Equal(t, gone.StorageKey, rows[0].PendingBlobDeletionStorageKey)

	// upload yang di-mark tidak bisa diklaim lagi
	var n int64
	db.Model(&model.UploadModel{}).Where("upload_storage_key = ?", gone.StorageKey).Count(&n)
	assert.Zero(t, n)
	db.Model(&model.UploadModel{}).Where("upload_storage_key = ?", shared.StorageKey).Count(&n)
	assert.Equal(t, int64(1), n)

	s := NewBlobSweeper(db, store)
	assert.Equal(t, 1, s.Flush(context.Background(), []string{shared.StorageKey, gone.StorageKey}))
	assert.True(t, store.Has(shared.StorageKey))
	assert.False(t, store.Has(gone.StorageKey))
}

func TestSweepPendingDropsKeyReferencedAgain(t *testing.T) {
	db := testkit.OpenDB(t)
	store := helperOSS.NewMemoryBlobStore()
	store.Put("a.pdf", "application/pdf")
	require.NoError(t, MarkForDeletion(db, "test", "a.pdf"))
	require.NoError(t, db.Create(&assignmentModel.AssignmentFileModel{
		AssignmentFileAssignmentID: uuid.New(),
		AssignmentFileName:         "a.pdf",
		AssignmentFileStorageKey:   "a.pdf",
	}).Error)

	deleted, remaining, err := NewBlobSweeper(db, store).SweepPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Zero(t, remaining)
	assert.True(t, store.Has("a.pdf"))
}

// file: internals/features/storage/uploads/service/upload_service.go
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "kelasku_backend/internals/features/storage/uploads/model"
	"kelasku_backend/internals/helpers/apperr"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

type UploadService struct {
	DB    *gorm.DB
	Blobs helperOSS.BlobStore
}

func NewUploadService(db *gorm.DB, blobs helperOSS.BlobStore) *UploadService {
	return &UploadService{DB: db, Blobs: blobs}
}

// Issue menerbitkan URL upload dan mencatat key atas nama userID.
func (s *UploadService) Issue(ctx context.Context, userID uuid.UUID, filename, contentType string) (*helperOSS.UploadTarget, error) {
	target, err := s.Blobs.IssueUploadURL(ctx, filename, contentType)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	row := model.UploadModel{
		UploadStorageKey:  target.StorageKey,
		UploadUserID:      userID,
		UploadContentType: contentType,
		UploadExpiresAt:   target.ExpiresAt,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &target, nil
}

// ClaimKeys dipanggil di dalam transaksi sebelum insert row file.
// Key harus diterbitkan untuk userID dan belum dipakai row file mana pun.
func ClaimKeys(tx *gorm.DB, userID uuid.UUID, keys ...string) error {
	uniq := make([]string, 0, len(keys))
	seen := map[string]struct{}{}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if _, ok := seen[k]; ok {
			return apperr.Conflict(apperr.CodeStorageKeyInUse, "the same file is attached more than once")
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	if len(uniq) == 0 {
		return nil
	}

	var owned int64
	if err := tx.Model(&model.UploadModel{}).
		Where("upload_storage_key IN ? AND upload_user_id = ?", uniq, userID).
		Count(&owned).Error; err != nil {
		return err
	}
	if int(owned) != len(uniq) {
		return apperr.New(apperr.KindValidation, apperr.CodeInvalidStorageKey, "file was not uploaded by you")
	}

	used, err := referencedKeys(tx, uniq)
	if err != nil {
		return err
	}
	if len(used) > 0 {
		return apperr.Conflict(apperr.CodeStorageKeyInUse, "file is already attached elsewhere")
	}
	return nil
}

// referencedKeys: subset keys yang masih dipakai assignment_files / submission_files.
// Query lewat nama tabel supaya package ini tidak bergantung ke fitur assignments.
func referencedKeys(tx *gorm.DB, keys []string) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	if len(keys) == 0 {
		return out, nil
	}
	lookups := []struct{ table, column string }{
		{"assignment_files", "assignment_file_storage_key"},
		{"submission_files", "submission_file_storage_key"},
	}
	for _, l := range lookups {
		var found []string
		if err := tx.Table(l.table).
			Where(l.column+" IN ?", keys).
			Pluck(l.column, &found).Error; err != nil {
			return nil, err
		}
		for _, k := range found {
			out[k] = struct{}{}
		}
	}
	return out, nil
}

// file: internals/features/assignments/assignments/service/assignment_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dto "kelasku_backend/internals/features/assignments/assignments/dto"
	model "kelasku_backend/internals/features/assignments/assignments/model"
	submissionModel "kelasku_backend/internals/features/assignments/submissions/model"
	classroomModel "kelasku_backend/internals/features/classrooms/classrooms/model"
	notificationModel "kelasku_backend/internals/features/notifications/notifications/model"
	notificationService "kelasku_backend/internals/features/notifications/notifications/service"
	uploadService "kelasku_backend/internals/features/storage/uploads/service"
	"kelasku_backend/internals/helpers/apperr"
	"kelasku_backend/internals/helpers/authz"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

type AssignmentService struct {
	DB       *gorm.DB
	Blobs    helperOSS.BlobStore
	Sweeper  *uploadService.BlobSweeper
	Notifier *notificationService.NotificationService
	Now      func() time.Time
}

func NewAssignmentService(db *gorm.DB, blobs helperOSS.BlobStore, notifier *notificationService.NotificationService) *AssignmentService {
	return &AssignmentService{
		DB:       db,
		Blobs:    blobs,
		Sweeper:  uploadService.NewBlobSweeper(db, blobs),
		Notifier: notifier,
		Now:      time.Now,
	}
}

var errAssignmentNotFound = apperr.NotFound(apperr.CodeAssignmentNotFound, "assignment not found")

func (s *AssignmentService) load(ctx context.Context, id uuid.UUID) (*model.AssignmentModel, error) {
	var a model.AssignmentModel
	if err := s.DB.WithContext(ctx).Where("assignment_id = ?", id).Take(&a).Error; err != nil {
		return nil, apperr.FromDB(err, errAssignmentNotFound, nil)
	}
	return &a, nil
}

func (s *AssignmentService) files(ctx context.Context, assignmentID uuid.UUID) ([]model.AssignmentFileModel, error) {
	var files []model.AssignmentFileModel
	if err := s.DB.WithContext(ctx).
		Where("assignment_file_assignment_id = ?", assignmentID).
		Order("assignment_file_created_at ASC").
		Find(&files).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return files, nil
}

func fileRows(assignmentID uuid.UUID, in []dto.FileInput) []model.AssignmentFileModel {
	rows := make([]model.AssignmentFileModel, 0, len(in))
	for _, f := range in {
		f = f.Normalize()
		rows = append(rows, model.AssignmentFileModel{
			AssignmentFileAssignmentID: assignmentID,
			AssignmentFileName:         f.Name,
			AssignmentFileStorageKey:   f.StorageKey,
		})
	}
	return rows
}

// claimFilesTx: semua key harus hasil upload milik userID dan belum dipakai file lain.
func claimFilesTx(tx *gorm.DB, userID uuid.UUID, rows []model.AssignmentFileModel) error {
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, r.AssignmentFileStorageKey)
	}
	return uploadService.ClaimKeys(tx, userID, keys...)
}

/* =========================================================
   CREATE
========================================================= */

func (s *AssignmentService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	if _, err := authz.LoadClassroom(ctx, s.DB, req.AssignmentClassroomID); err != nil {
		return nil, err
	}
	if _, err := authz.RequireTeacherMember(ctx, s.DB, req.AssignmentClassroomID, userID); err != nil {
		return nil, err
	}

	a := req.ToModel(userID)
	now := s.Now().UTC()
	a.AssignmentCreatedAt = now
	a.AssignmentUpdatedAt = now

	var (
		files  []model.AssignmentFileModel
		notifs []notificationModel.NotificationModel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		files = fileRows(a.AssignmentID, req.Files)
		if len(files) > 0 {
			if err := claimFilesTx(tx, userID, files); err != nil {
				return err
			}
			if err := tx.Create(&files).Error; err != nil {
				return err
			}
		}
		if a.AssignmentPublish {
			var err error
			if notifs, err = s.notifyPublishedTx(tx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err, nil, nil)
	}
	s.publish(ctx, notifs)

	log.Printf("[ASSIGNMENT] created id=%s classroom=%s files=%d publish=%v", a.AssignmentID, a.AssignmentClassroomID, len(files), a.AssignmentPublish)
	resp := dto.FromModel(a)
	resp.Files = dto.FilesWithURL(ctx, s.Blobs, files)
	return &resp, nil
}

// notifyPublishedTx: notifikasi new-assignment untuk semua anggota aktif.
func (s *AssignmentService) notifyPublishedTx(tx *gorm.DB, a model.AssignmentModel) ([]notificationModel.NotificationModel, error) {
	if s.Notifier == nil {
		return nil, nil
	}
	var members []classroomModel.ClassroomMemberModel
	if err := tx.Where("classroom_member_classroom_id = ? AND classroom_member_status = ?",
		a.AssignmentClassroomID, classroomModel.MemberStatusActive).
		Find(&members).Error; err != nil {
		return nil, err
	}
	out := make([]notificationModel.NotificationModel, 0, len(members))
	classroomID := a.AssignmentClassroomID
	for _, m := range members {
		n := notificationModel.NotificationModel{
			NotificationUserID:      m.ClassroomMemberUserID,
			NotificationClassroomID: &classroomID,
			NotificationType:        notificationModel.NotificationTypeNewAssignment,
			NotificationTitle:       fmt.Sprintf("มีงานใหม่: %s", a.AssignmentName),
			NotificationDescription: "ครูได้มอบหมายงานใหม่ในห้องเรียน",
			NotificationData: datatypes.JSONMap{
				"assignmentId": a.AssignmentID.String(),
			},
			NotificationCreatedAt: s.Now().UTC(),
		}
		if err := s.Notifier.Insert(tx, &n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *AssignmentService) publish(ctx context.Context, ns []notificationModel.NotificationModel) {
	if s.Notifier != nil && len(ns) > 0 {
		s.Notifier.PublishAll(ctx, ns...)
	}
}

/* =========================================================
   READ
========================================================= */

func (s *AssignmentService) GetByID(ctx context.Context, userID, id uuid.UUID) (*dto.AssignmentResponse, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := authz.RequireMember(ctx, s.DB, a.AssignmentClassroomID, userID)
	if err != nil {
		return nil, err
	}
	// draft hanya terlihat oleh guru
	if !a.AssignmentPublish && !actor.CanTeach() {
		return nil, errAssignmentNotFound
	}
	files, err := s.files(ctx, a.AssignmentID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModel(*a)
	resp.Files = dto.FilesWithURL(ctx, s.Blobs, files)
	return &resp, nil
}

// List: published=true → daftar publik (anggota), false → draft (guru saja).
// Setiap item membawa submit_count + file ber-URL.
func (s *AssignmentService) List(ctx context.Context, userID, classroomID uuid.UUID, published bool) ([]dto.AssignmentResponse, error) {
	if published {
		if _, err := authz.RequireMember(ctx, s.DB, classroomID, userID); err != nil {
			return nil, err
		}
	} else {
		if _, err := authz.RequireTeacherMember(ctx, s.DB, classroomID, userID); err != nil {
			return nil, err
		}
	}

	var rows []model.AssignmentModel
	if err := s.DB.WithContext(ctx).
		Where("assignment_classroom_id = ? AND assignment_publish = ?", classroomID, published).
		Order("assignment_created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if len(rows) == 0 {
		return []dto.AssignmentResponse{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.AssignmentID)
	}

	counts, err := s.submitCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	var files []model.AssignmentFileModel
	if err := s.DB.WithContext(ctx).
		Where("assignment_file_assignment_id IN ?", ids).
		Order("assignment_file_created_at ASC").
		Find(&files).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	filesBy := map[uuid.UUID][]model.AssignmentFileModel{}
	for _, f := range files {
		filesBy[f.AssignmentFileAssignmentID] = append(filesBy[f.AssignmentFileAssignmentID], f)
	}

	out := make([]dto.AssignmentResponse, 0, len(rows))
	for _, r := range rows {
		item := dto.FromModel(r)
		n := counts[r.AssignmentID]
		item.SubmitCount = &n
		item.Files = dto.FilesWithURL(ctx, s.Blobs, filesBy[r.AssignmentID])
		out = append(out, item)
	}
	return out, nil
}

func (s *AssignmentService) submitCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	type row struct {
		AssignmentID uuid.UUID `gorm:"column:assignment_id"`
		Total        int64     `gorm:"column:total"`
	}
	var rows []row
	if err := s.DB.WithContext(ctx).
		Model(&submissionModel.SubmissionModel{}).
		Select("submission_assignment_id AS assignment_id, COUNT(*) AS total").
		Where("submission_assignment_id IN ?", ids).
		Group("submission_assignment_id").
		Scan(&rows).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		out[r.AssignmentID] = r.Total
	}
	return out, nil
}

/* =========================================================
   UPDATE
========================================================= */

// UpdateText: ubah atribut; status submission yang sudah ada tidak dihitung ulang walau due date berubah.
func (s *AssignmentService) UpdateText(ctx context.Context, userID, id uuid.UUID, req dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := authz.RequireTeacherMember(ctx, s.DB, a.AssignmentClassroomID, userID); err != nil {
		return nil, err
	}

	upd := req.ToUpdates()
	if len(upd) == 0 {
		return nil, apperr.Validation("tidak ada field yang diubah")
	}
	upd["assignment_updated_at"] = s.Now().UTC()
	becamePublished := !a.AssignmentPublish && req.AssignmentPublish != nil && *req.AssignmentPublish

	var notifs []notificationModel.NotificationModel
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.AssignmentModel{}).
			Where("assignment_id = ?", a.AssignmentID).
			Updates(upd).Error; err != nil {
			return err
		}
		if err := tx.Where("assignment_id = ?", a.AssignmentID).Take(a).Error; err != nil {
			return err
		}
		if becamePublished {
			var err error
			notifs, err = s.notifyPublishedTx(tx, *a)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err, errAssignmentNotFound, nil)
	}
	s.publish(ctx, notifs)

	files, err := s.files(ctx, a.AssignmentID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModel(*a)
	resp.Files = dto.FilesWithURL(ctx, s.Blobs, files)
	return &resp, nil
}

func (s *AssignmentService) AddFiles(ctx context.Context, userID, id uuid.UUID, in []dto.FileInput) ([]dto.AssignmentFileResponse, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := authz.RequireTeacherMember(ctx, s.DB, a.AssignmentClassroomID, userID); err != nil {
		return nil, err
	}
	rows := fileRows(a.AssignmentID, in)
	if len(rows) == 0 {
		return []dto.AssignmentFileResponse{}, nil
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := claimFilesTx(tx, userID, rows); err != nil {
			return err
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, nil, nil)
	}
	return dto.FilesWithURL(ctx, s.Blobs, rows), nil
}

// RemoveFile: hapus row file + blob (mark-then-sweep).
func (s *AssignmentService) RemoveFile(ctx context.Context, userID, assignmentID, fileID uuid.UUID) error {
	a, err := s.load(ctx, assignmentID)
	if err != nil {
		return err
	}
	if _, err := authz.RequireTeacherMember(ctx, s.DB, a.AssignmentClassroomID, userID); err != nil {
		return err
	}

	var key string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f model.AssignmentFileModel
		if err := tx.Where("assignment_file_id = ? AND assignment_file_assignment_id = ?", fileID, a.AssignmentID).
			Take(&f).Error; err != nil {
			return err
		}
		if err := tx.Delete(&f).Error; err != nil {
			return err
		}
		key = f.AssignmentFileStorageKey
		return uploadService.MarkForDeletion(tx, "assignment_file_removed", key)
	})
	if err != nil {
		return apperr.FromDB(err, apperr.NotFound(apperr.CodeAssignmentFileNotFound, "assignment file not found"), nil)
	}
	s.Sweeper.Flush(ctx, []string{key})
	return nil
}

/* =========================================================
   DELETE (cascade)
========================================================= */

// Remove menghapus assignment beserta file, semua submission + file-nya dalam satu transaksi.
// Blob dihapus setelah commit; yang gagal ditangani reaper.
func (s *AssignmentService) Remove(ctx context.Context, userID, assignmentID, classroomID uuid.UUID) error {
	if _, err := authz.LoadClassroom(ctx, s.DB, classroomID); err != nil {
		return err
	}
	if _, err := authz.RequireTeacherMember(ctx, s.DB, classroomID, userID); err != nil {
		return err
	}
	a, err := s.load(ctx, assignmentID)
	if err != nil {
		return err
	}
	if a.AssignmentClassroomID != classroomID {
		return errAssignmentNotFound
	}

	var keys []string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		keys, err = CascadeDeleteAssignmentTx(tx, *a)
		if err != nil {
			return err
		}
		return uploadService.MarkForDeletion(tx, "assignment_removed", keys...)
	})
	if err != nil {
		return apperr.FromDB(err, errAssignmentNotFound, nil)
	}
	deleted := s.Sweeper.Flush(ctx, keys)
	log.Printf("[ASSIGNMENT] removed id=%s blobs=%d/%d", assignmentID, deleted, len(keys))
	return nil
}

// CascadeDeleteAssignmentTx: urutan file assignment → per submission (file lalu submission) → assignment.
// Mengembalikan storage key yang harus dihapus dari blob store.
func CascadeDeleteAssignmentTx(tx *gorm.DB, a model.AssignmentModel) ([]string, error) {
	keys := []string{}

	var aFiles []model.AssignmentFileModel
	if err := tx.Where("assignment_file_assignment_id = ?", a.AssignmentID).Find(&aFiles).Error; err != nil {
		return nil, err
	}
	for _, f := range aFiles {
		keys = append(keys, f.AssignmentFileStorageKey)
	}
	if err := tx.Where("assignment_file_assignment_id = ?", a.AssignmentID).
		Delete(&model.AssignmentFileModel{}).Error; err != nil {
		return nil, err
	}

	var subs []submissionModel.SubmissionModel
	if err := tx.Where("submission_classroom_id = ? AND submission_assignment_id = ?", a.AssignmentClassroomID, a.AssignmentID).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	for _, sub := range subs {
		var sFiles []submissionModel.SubmissionFileModel
		if err := tx.Where("submission_file_submission_id = ?", sub.SubmissionID).Find(&sFiles).Error; err != nil {
			return nil, err
		}
		for _, f := range sFiles {
			keys = append(keys, f.SubmissionFileStorageKey)
		}
		if err := tx.Where("submission_file_submission_id = ?", sub.SubmissionID).
			Delete(&submissionModel.SubmissionFileModel{}).Error; err != nil {
			return nil, err
		}
		if err := tx.Where("submission_id = ?", sub.SubmissionID).
			Delete(&submissionModel.SubmissionModel{}).Error; err != nil {
			return nil, err
		}
	}

	if err := tx.Where("assignment_id = ?", a.AssignmentID).Delete(&model.AssignmentModel{}).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// CascadeDeleteClassroomAssignmentsTx: dipakai saat kelas dihapus.
func CascadeDeleteClassroomAssignmentsTx(tx *gorm.DB, classroomID uuid.UUID) ([]string, error) {
	var rows []model.AssignmentModel
	if err := tx.Where("assignment_classroom_id = ?", classroomID).Find(&rows).Error; err != nil {
		return nil, err
	}
	keys := []string{}
	for _, a := range rows {
		k, err := CascadeDeleteAssignmentTx(tx, a)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k...)
	}
	return keys, nil
}

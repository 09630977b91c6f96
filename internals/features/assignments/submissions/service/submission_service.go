// file: internals/features/assignments/submissions/service/submission_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	assignmentDTO "kelasku_backend/internals/features/assignments/assignments/dto"
	assignmentModel "kelasku_backend/internals/features/assignments/assignments/model"
	dto "kelasku_backend/internals/features/assignments/submissions/dto"
	model "kelasku_backend/internals/features/assignments/submissions/model"
	classroomModel "kelasku_backend/internals/features/classrooms/classrooms/model"
	notificationModel "kelasku_backend/internals/features/notifications/notifications/model"
	notificationService "kelasku_backend/internals/features/notifications/notifications/service"
	uploadService "kelasku_backend/internals/features/storage/uploads/service"
	userModel "kelasku_backend/internals/features/users/user/model"
	"kelasku_backend/internals/helpers/apperr"
	"kelasku_backend/internals/helpers/authz"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

type SubmissionService struct {
	DB       *gorm.DB
	Blobs    helperOSS.BlobStore
	Sweeper  *uploadService.BlobSweeper
	Notifier *notificationService.NotificationService
	Now      func() time.Time
}

func NewSubmissionService(db *gorm.DB, blobs helperOSS.BlobStore, notifier *notificationService.NotificationService) *SubmissionService {
	return &SubmissionService{
		DB:       db,
		Blobs:    blobs,
		Sweeper:  uploadService.NewBlobSweeper(db, blobs),
		Notifier: notifier,
		Now:      time.Now,
	}
}

var (
	errSubmissionNotFound = apperr.NotFound(apperr.CodeSubmissionNotFound, "submission not found")
	errAssignmentNotFound = apperr.NotFound(apperr.CodeAssignmentNotFound, "assignment not found")
	errAlreadySubmitted   = apperr.Conflict(apperr.CodeAlreadySubmitted, "you have already submitted this assignment")
	errConcurrentUpdate   = apperr.Conflict(apperr.CodeConcurrentUpdate, "submission was changed by another request, please retry")
)

/* =========================================================
   helpers
========================================================= */

func (s *SubmissionService) loadSubmission(ctx context.Context, id uuid.UUID) (*model.SubmissionModel, error) {
	var m model.SubmissionModel
	if err := s.DB.WithContext(ctx).Where("submission_id = ?", id).Take(&m).Error; err != nil {
		return nil, apperr.FromDB(err, errSubmissionNotFound, nil)
	}
	return &m, nil
}

func (s *SubmissionService) loadAssignment(ctx context.Context, id uuid.UUID) (*assignmentModel.AssignmentModel, error) {
	var a assignmentModel.AssignmentModel
	if err := s.DB.WithContext(ctx).Where("assignment_id = ?", id).Take(&a).Error; err != nil {
		return nil, apperr.FromDB(err, errAssignmentNotFound, nil)
	}
	return &a, nil
}

func (s *SubmissionService) files(ctx context.Context, submissionID uuid.UUID) ([]model.SubmissionFileModel, error) {
	var rows []model.SubmissionFileModel
	if err := s.DB.WithContext(ctx).
		Where("submission_file_submission_id = ?", submissionID).
		Order("submission_file_created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return rows, nil
}

func fileRows(submissionID uuid.UUID, in []assignmentDTO.FileInput) []model.SubmissionFileModel {
	rows := make([]model.SubmissionFileModel, 0, len(in))
	for _, f := range in {
		f = f.Normalize()
		rows = append(rows, model.SubmissionFileModel{
			SubmissionFileSubmissionID: submissionID,
			SubmissionFileName:         f.Name,
			SubmissionFileStorageKey:   f.StorageKey,
		})
	}
	return rows
}

// claimFilesTx: semua key harus hasil upload milik userID dan belum dipakai file lain.
func claimFilesTx(tx *gorm.DB, userID uuid.UUID, rows []model.SubmissionFileModel) error {
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, r.SubmissionFileStorageKey)
	}
	return uploadService.ClaimKeys(tx, userID, keys...)
}

// replaceFilesTx menghapus file lama (blob di-mark) lalu insert file baru milik ownerID.
// Key yang dipakai ulang oleh file baru tidak ikut di-mark.
func replaceFilesTx(tx *gorm.DB, submissionID, ownerID uuid.UUID, in []assignmentDTO.FileInput, reason string) ([]string, error) {
	var old []model.SubmissionFileModel
	if err := tx.Where("submission_file_submission_id = ?", submissionID).Find(&old).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("submission_file_submission_id = ?", submissionID).
		Delete(&model.SubmissionFileModel{}).Error; err != nil {
		return nil, err
	}

	rows := fileRows(submissionID, in)
	keep := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		keep[r.SubmissionFileStorageKey] = struct{}{}
	}
	keys := make([]string, 0, len(old))
	for _, f := range old {
		if _, ok := keep[f.SubmissionFileStorageKey]; !ok {
			keys = append(keys, f.SubmissionFileStorageKey)
		}
	}
	if err := uploadService.MarkForDeletion(tx, reason, keys...); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		if err := claimFilesTx(tx, ownerID, rows); err != nil {
			return nil, err
		}
		if err := tx.Create(&rows).Error; err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func (s *SubmissionService) toResponse(ctx context.Context, m model.SubmissionModel) (*dto.SubmissionResponse, error) {
	files, err := s.files(ctx, m.SubmissionID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModel(m)
	resp.Files = dto.FilesWithURL(ctx, s.Blobs, files)
	return &resp, nil
}

func (s *SubmissionService) publish(ctx context.Context, ns ...notificationModel.NotificationModel) {
	if s.Notifier != nil && len(ns) > 0 {
		s.Notifier.PublishAll(ctx, ns...)
	}
}

/* =========================================================
   CREATE
========================================================= */

// Create: status submitted/late dihitung SEKALI di sini dan tidak pernah dihitung ulang.
func (s *SubmissionService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateSubmissionRequest) (*dto.SubmissionResponse, error) {
	if _, err := authz.LoadClassroom(ctx, s.DB, req.SubmissionClassroomID); err != nil {
		return nil, err
	}
	actor, err := authz.RequireMember(ctx, s.DB, req.SubmissionClassroomID, userID)
	if err != nil {
		return nil, err
	}

	// jalur cepat; penjaga sebenarnya unique index (assignment_id, user_id)
	var exists int64
	if err := s.DB.WithContext(ctx).Model(&model.SubmissionModel{}).
		Where("submission_assignment_id = ? AND submission_user_id = ?", req.SubmissionAssignmentID, userID).
		Count(&exists).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if exists > 0 {
		return nil, errAlreadySubmitted
	}

	a, err := s.loadAssignment(ctx, req.SubmissionAssignmentID)
	if err != nil {
		return nil, err
	}
	if a.AssignmentClassroomID != req.SubmissionClassroomID || (!a.AssignmentPublish && !actor.CanTeach()) {
		return nil, errAssignmentNotFound
	}

	now := s.Now().UTC()
	sub := model.SubmissionModel{
		SubmissionAssignmentID: a.AssignmentID,
		SubmissionClassroomID:  a.AssignmentClassroomID,
		SubmissionUserID:       userID,
		SubmissionStatus:       model.ClassifySubmission(now, a.AssignmentDueDate),
		SubmissionIsChecked:    false,
		SubmissionCreatedAt:    now,
		SubmissionUpdatedAt:    now,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		rows := fileRows(sub.SubmissionID, req.Files)
		if len(rows) == 0 {
			return nil
		}
		if err := claimFilesTx(tx, userID, rows); err != nil {
			return err
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, nil, errAlreadySubmitted)
	}

	log.Printf("[SUBMISSION] created id=%s assignment=%s user=%s status=%s", sub.SubmissionID, a.AssignmentID, userID, sub.SubmissionStatus)
	return s.toResponse(ctx, sub)
}

/* =========================================================
   GRADE
========================================================= */

func (s *SubmissionService) Grade(ctx context.Context, userID, submissionID uuid.UUID, req dto.GradeSubmissionRequest) (*dto.SubmissionResponse, error) {
	sub, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if _, err := authz.RequireTeacherMember(ctx, s.DB, sub.SubmissionClassroomID, userID); err != nil {
		return nil, err
	}
	a, err := s.loadAssignment(ctx, sub.SubmissionAssignmentID)
	if err != nil {
		return nil, err
	}

	var notif notificationModel.NotificationModel
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.SubmissionModel{}).
			Where("submission_id = ? AND submission_status = ?", sub.SubmissionID, sub.SubmissionStatus).
			Updates(map[string]any{
				"submission_is_checked": true,
				"submission_score":      req.SubmissionScore,
				"submission_feedback":   req.SubmissionFeedback,
				"submission_updated_at": s.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return errConcurrentUpdate
		}
		if s.Notifier == nil {
			return nil
		}
		classroomID := sub.SubmissionClassroomID
		notif = notificationModel.NotificationModel{
			NotificationUserID:      sub.SubmissionUserID,
			NotificationClassroomID: &classroomID,
			NotificationType:        notificationModel.NotificationTypeFeedback,
			NotificationTitle:       fmt.Sprintf("ตรวจการบ้านแล้ว: %s", a.AssignmentName),
			NotificationDescription: req.SubmissionFeedback,
			NotificationData: datatypes.JSONMap{
				"assignmentId":       a.AssignmentID.String(),
				"submitAssignmentId": sub.SubmissionID.String(),
			},
			NotificationCreatedAt: s.Now().UTC(),
		}
		return s.Notifier.Insert(tx, &notif)
	})
	if err != nil {
		return nil, apperr.FromDB(err, errSubmissionNotFound, nil)
	}
	s.publish(ctx, notif)

	fresh, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, *fresh)
}

/* =========================================================
   RESUBMISSION WORKFLOW
========================================================= */

// AllowResubmission: file lama + blob dihapus, nilai direset (score 0, belum dicek),
// feedback diganti pesan bawaan, siswa dapat notifikasi resubmit-allowed.
func (s *SubmissionService) AllowResubmission(ctx context.Context, userID, submissionID uuid.UUID) (*dto.SubmissionResponse, error) {
	sub, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if _, err := authz.RequireTeacherMember(ctx, s.DB, sub.SubmissionClassroomID, userID); err != nil {
		return nil, err
	}
	next, err := sub.SubmissionStatus.Transition(model.EventAllowResubmission)
	if err != nil {
		return nil, err
	}
	a, err := s.loadAssignment(ctx, sub.SubmissionAssignmentID)
	if err != nil {
		return nil, err
	}

	var (
		keys  []string
		notif notificationModel.NotificationModel
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if keys, err = replaceFilesTx(tx, sub.SubmissionID, sub.SubmissionUserID, nil, "resubmission_allowed"); err != nil {
			return err
		}
		res := tx.Model(&model.SubmissionModel{}).
			Where("submission_id = ? AND submission_status = ?", sub.SubmissionID, sub.SubmissionStatus).
			Updates(map[string]any{
				"submission_status":       next,
				"submission_can_resubmit": true,
				"submission_is_checked":   false,
				"submission_score":        0,
				"submission_feedback":     model.ResubmitFeedback,
				"submission_updated_at":   s.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return errConcurrentUpdate
		}
		if s.Notifier == nil {
			return nil
		}
		classroomID := sub.SubmissionClassroomID
		notif = notificationModel.NotificationModel{
			NotificationUserID:      sub.SubmissionUserID,
			NotificationClassroomID: &classroomID,
			NotificationType:        notificationModel.NotificationTypeResubmitAllowed,
			NotificationTitle:       fmt.Sprintf("สามารถส่งการบ้านใหม่ได้: %s", a.AssignmentName),
			NotificationDescription: "คุณได้รับสิทธิ์ในการส่งการบ้านใหม่อีกครั้ง",
			NotificationData: datatypes.JSONMap{
				"assignmentId":       a.AssignmentID.String(),
				"submitAssignmentId": sub.SubmissionID.String(),
			},
			NotificationCreatedAt: s.Now().UTC(),
		}
		return s.Notifier.Insert(tx, &notif)
	})
	if err != nil {
		return nil, apperr.FromDB(err, errSubmissionNotFound, nil)
	}
	s.Sweeper.Flush(ctx, keys)
	s.publish(ctx, notif)
	log.Printf("[SUBMISSION] resubmission allowed id=%s removed_files=%d", sub.SubmissionID, len(keys))

	fresh, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, *fresh)
}

// Resubmit: hanya dari canResubmit; status selalu kembali ke submitted (keterlambatan tidak dihitung ulang).
func (s *SubmissionService) Resubmit(ctx context.Context, userID, submissionID uuid.UUID, req dto.ResubmitRequest) (*dto.SubmissionResponse, error) {
	sub, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if _, err := authz.RequireMember(ctx, s.DB, sub.SubmissionClassroomID, userID); err != nil {
		return nil, err
	}
	if sub.SubmissionUserID != userID {
		return nil, apperr.Forbidden(apperr.CodeNotOwner, "only the student who submitted can resubmit")
	}
	next, err := sub.SubmissionStatus.Transition(model.EventResubmit)
	if err != nil {
		return nil, err
	}

	var keys []string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if keys, err = replaceFilesTx(tx, sub.SubmissionID, userID, req.Files, "resubmitted"); err != nil {
			return err
		}
		res := tx.Model(&model.SubmissionModel{}).
			Where("submission_id = ? AND submission_status = ?", sub.SubmissionID, model.SubmissionStatusCanResubmit).
			Updates(map[string]any{
				"submission_status":       next,
				"submission_can_resubmit": false,
				"submission_updated_at":   s.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return apperr.InvalidState(apperr.CodeCannotResubmit, "cannot resubmit now")
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err, errSubmissionNotFound, nil)
	}
	s.Sweeper.Flush(ctx, keys)
	log.Printf("[SUBMISSION] resubmitted id=%s files=%d", sub.SubmissionID, len(req.Files))

	fresh, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, *fresh)
}

/* =========================================================
   READ
========================================================= */

func (s *SubmissionService) HasSubmitted(ctx context.Context, userID, assignmentID, classroomID uuid.UUID) (bool, error) {
	if _, err := authz.LoadClassroom(ctx, s.DB, classroomID); err != nil {
		return false, err
	}
	if _, err := authz.RequireMember(ctx, s.DB, classroomID, userID); err != nil {
		return false, err
	}
	var n int64
	if err := s.DB.WithContext(ctx).Model(&model.SubmissionModel{}).
		Where("submission_assignment_id = ? AND submission_user_id = ?", assignmentID, userID).
		Count(&n).Error; err != nil {
		return false, apperr.Internal(err)
	}
	return n > 0, nil
}

func (s *SubmissionService) MySubmission(ctx context.Context, userID, assignmentID uuid.UUID) (*dto.MySubmissionResponse, error) {
	a, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if _, err := authz.RequireMember(ctx, s.DB, a.AssignmentClassroomID, userID); err != nil {
		return nil, err
	}

	var sub model.SubmissionModel
	err = s.DB.WithContext(ctx).
		Where("submission_assignment_id = ? AND submission_user_id = ?", assignmentID, userID).
		Take(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &dto.MySubmissionResponse{Submitted: false, Message: "ยังไม่ได้ส่งงาน"}, nil
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	resp, err := s.toResponse(ctx, sub)
	if err != nil {
		return nil, err
	}
	return &dto.MySubmissionResponse{Submitted: true, Submission: resp}, nil
}

// Detail: pemilik submission atau guru di kelas tersebut.
func (s *SubmissionService) Detail(ctx context.Context, userID, submissionID uuid.UUID) (*dto.SubmissionDetailResponse, error) {
	sub, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	actor, err := authz.RequireMember(ctx, s.DB, sub.SubmissionClassroomID, userID)
	if err != nil {
		return nil, err
	}
	if sub.SubmissionUserID != userID && !actor.CanTeach() {
		return nil, apperr.Forbidden(apperr.CodeForbiddenRole, "Forbidden")
	}

	resp, err := s.toResponse(ctx, *sub)
	if err != nil {
		return nil, err
	}
	out := &dto.SubmissionDetailResponse{Submission: *resp}

	var u userModel.UserModel
	if err := s.DB.WithContext(ctx).Where("id = ?", sub.SubmissionUserID).Take(&u).Error; err == nil {
		out.User = dto.NewUserLite(u)
	}
	if a, err := s.loadAssignment(ctx, sub.SubmissionAssignmentID); err == nil {
		ar := assignmentDTO.FromModel(*a)
		out.Assignment = &ar
	}
	return out, nil
}

// ListForAssignment: semua submission sebuah assignment, terbaru dulu (guru saja).
func (s *SubmissionService) ListForAssignment(ctx context.Context, userID, assignmentID uuid.UUID, offset, limit int) ([]dto.SubmissionResponse, int64, error) {
	a, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, 0, err
	}
	if _, err := authz.RequireTeacherMember(ctx, s.DB, a.AssignmentClassroomID, userID); err != nil {
		return nil, 0, err
	}

	q := s.DB.WithContext(ctx).Model(&model.SubmissionModel{}).
		Where("submission_classroom_id = ? AND submission_assignment_id = ?", a.AssignmentClassroomID, a.AssignmentID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	var rows []model.SubmissionModel
	if err := q.Order("submission_created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	if len(rows) == 0 {
		return []dto.SubmissionResponse{}, total, nil
	}

	subIDs := make([]uuid.UUID, 0, len(rows))
	userIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		subIDs = append(subIDs, r.SubmissionID)
		userIDs = append(userIDs, r.SubmissionUserID)
	}

	var users []userModel.UserModel
	if err := s.DB.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	userBy := make(map[uuid.UUID]userModel.UserModel, len(users))
	for _, u := range users {
		userBy[u.ID] = u
	}

	var files []model.SubmissionFileModel
	if err := s.DB.WithContext(ctx).
		Where("submission_file_submission_id IN ?", subIDs).
		Order("submission_file_created_at ASC").
		Find(&files).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	filesBy := map[uuid.UUID][]model.SubmissionFileModel{}
	for _, f := range files {
		filesBy[f.SubmissionFileSubmissionID] = append(filesBy[f.SubmissionFileSubmissionID], f)
	}

	out := make([]dto.SubmissionResponse, 0, len(rows))
	for _, r := range rows {
		item := dto.FromModel(r)
		item.Files = dto.FilesWithURL(ctx, s.Blobs, filesBy[r.SubmissionID])
		if u, ok := userBy[r.SubmissionUserID]; ok {
			item.User = dto.NewUserLite(u)
		}
		out = append(out, item)
	}
	return out, total, nil
}

func (s *SubmissionService) publishedAssignments(ctx context.Context, classroomID uuid.UUID) ([]assignmentModel.AssignmentModel, error) {
	var rows []assignmentModel.AssignmentModel
	if err := s.DB.WithContext(ctx).
		Where("assignment_classroom_id = ? AND assignment_publish = ?", classroomID, true).
		Order("assignment_due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return rows, nil
}

// StudentOverview: tugas terbit milik kelas, dipisah sudah dikirim / belum.
func (s *SubmissionService) StudentOverview(ctx context.Context, userID, classroomID uuid.UUID) (*dto.StudentOverviewResponse, error) {
	if _, err := authz.RequireMember(ctx, s.DB, classroomID, userID); err != nil {
		return nil, err
	}
	assignments, err := s.publishedAssignments(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	var subs []model.SubmissionModel
	if err := s.DB.WithContext(ctx).
		Where("submission_classroom_id = ? AND submission_user_id = ?", classroomID, userID).
		Find(&subs).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	subBy := make(map[uuid.UUID]model.SubmissionModel, len(subs))
	for _, sub := range subs {
		subBy[sub.SubmissionAssignmentID] = sub
	}

	out := &dto.StudentOverviewResponse{
		Submitted:    []dto.StudentAssignmentItem{},
		NotSubmitted: []dto.StudentAssignmentItem{},
	}
	for _, a := range assignments {
		item := dto.StudentAssignmentItem{
			AssignmentID:          a.AssignmentID,
			AssignmentName:        a.AssignmentName,
			AssignmentDescription: a.AssignmentDescription,
			AssignmentDueDate:     a.AssignmentDueDate,
			AssignmentFullScore:   a.AssignmentFullScore,
		}
		if sub, ok := subBy[a.AssignmentID]; ok {
			score := sub.SubmissionScore
			item.Score = &score
			item.Status = sub.SubmissionStatus
			out.Submitted = append(out.Submitted, item)
			continue
		}
		item.Status = model.SubmissionStatusNotSubmitted
		out.NotSubmitted = append(out.NotSubmitted, item)
	}
	return out, nil
}

// Scoreboard: matriks tugas terbit × siswa kelas; belum kirim → skor 0 + label not submitted.
func (s *SubmissionService) Scoreboard(ctx context.Context, userID, classroomID uuid.UUID) ([]dto.ScoreboardRow, error) {
	if _, err := authz.RequireTeacherMember(ctx, s.DB, classroomID, userID); err != nil {
		return nil, err
	}
	assignments, err := s.publishedAssignments(ctx, classroomID)
	if err != nil {
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

	var subs []model.SubmissionModel
	if err := s.DB.WithContext(ctx).
		Where("submission_classroom_id = ?", classroomID).
		Find(&subs).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	type pair struct{ assignment, user uuid.UUID }
	subBy := make(map[pair]model.SubmissionModel, len(subs))
	for _, sub := range subs {
		subBy[pair{sub.SubmissionAssignmentID, sub.SubmissionUserID}] = sub
	}

	out := make([]dto.ScoreboardRow, 0, len(assignments))
	for _, a := range assignments {
		row := dto.ScoreboardRow{
			AssignmentID:        a.AssignmentID,
			AssignmentName:      a.AssignmentName,
			AssignmentDueDate:   a.AssignmentDueDate,
			AssignmentFullScore: a.AssignmentFullScore,
			Submissions:         make([]dto.ScoreboardCell, 0, len(students)),
		}
		for _, st := range students {
			cell := dto.ScoreboardCell{
				UserID:      st.ID,
				StudentName: st.FullName(),
				Status:      model.SubmissionStatusNotSubmitted,
			}
			if sub, ok := subBy[pair{a.AssignmentID, st.ID}]; ok {
				cell.Score = sub.SubmissionScore
				cell.Status = sub.SubmissionStatus
			}
			row.Submissions = append(row.Submissions, cell)
		}
		out = append(out, row)
	}
	return out, nil
}

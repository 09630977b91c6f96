// file: internals/features/assignments/submissions/dto/submission_dto.go
package dto

import (
	"context"
	"time"

	"github.com/google/uuid"

	assignmentDTO "kelasku_backend/internals/features/assignments/assignments/dto"
	model "kelasku_backend/internals/features/assignments/submissions/model"
	userModel "kelasku_backend/internals/features/users/user/model"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

/* =========================================================
   REQUEST
========================================================= */

type CreateSubmissionRequest struct {
	SubmissionAssignmentID uuid.UUID                 `json:"submission_assignment_id" validate:"required"`
	SubmissionClassroomID  uuid.UUID                 `json:"submission_classroom_id" validate:"required"`
	Files                  []assignmentDTO.FileInput `json:"files" validate:"omitempty,dive"`
}

// GradeSubmissionRequest: skor & feedback disimpan apa adanya.
type GradeSubmissionRequest struct {
	SubmissionScore    float64 `json:"submission_score"`
	SubmissionFeedback string  `json:"submission_feedback"`
}

type ResubmitRequest struct {
	Files []assignmentDTO.FileInput `json:"files" validate:"omitempty,dive"`
}

/* =========================================================
   RESPONSE
========================================================= */

type SubmissionFileResponse struct {
	SubmissionFileID         uuid.UUID `json:"submission_file_id"`
	SubmissionFileName       string    `json:"submission_file_name"`
	SubmissionFileStorageKey string    `json:"submission_file_storage_key"`
	SubmissionFileURL        *string   `json:"submission_file_url"`
}

type SubmissionResponse struct {
	SubmissionID           uuid.UUID              `json:"submission_id"`
	SubmissionAssignmentID uuid.UUID              `json:"submission_assignment_id"`
	SubmissionClassroomID  uuid.UUID              `json:"submission_classroom_id"`
	SubmissionUserID       uuid.UUID              `json:"submission_user_id"`
	SubmissionStatus       model.SubmissionStatus `json:"submission_status"`
	SubmissionIsChecked    bool                   `json:"submission_is_checked"`
	SubmissionCanResubmit  bool                   `json:"submission_can_resubmit"`
	SubmissionScore        float64                `json:"submission_score"`
	SubmissionFeedback     string                 `json:"submission_feedback"`
	SubmissionCreatedAt    time.Time              `json:"submission_created_at"`
	SubmissionUpdatedAt    time.Time              `json:"submission_updated_at"`

	Files []SubmissionFileResponse `json:"files"`
	User  *UserLite                `json:"user,omitempty"`
}

// UserLite: data tampilan pengirim.
type UserLite struct {
	ID                 uuid.UUID          `json:"id"`
	FName              string             `json:"fname"`
	LName              string             `json:"lname"`
	Email              string             `json:"email"`
	IdentificationCode string             `json:"identification_code"`
	Role               userModel.UserRole `json:"role"`
	Image              *string            `json:"image,omitempty"`
}

func NewUserLite(u userModel.UserModel) *UserLite {
	return &UserLite{
		ID:                 u.ID,
		FName:              u.FName,
		LName:              u.LName,
		Email:              u.Email,
		IdentificationCode: u.IdentificationCode,
		Role:               u.Role,
		Image:              u.Image,
	}
}

func FromModel(m model.SubmissionModel) SubmissionResponse {
	return SubmissionResponse{
		SubmissionID:           m.SubmissionID,
		SubmissionAssignmentID: m.SubmissionAssignmentID,
		SubmissionClassroomID:  m.SubmissionClassroomID,
		SubmissionUserID:       m.SubmissionUserID,
		SubmissionStatus:       m.SubmissionStatus,
		SubmissionIsChecked:    m.SubmissionIsChecked,
		SubmissionCanResubmit:  m.SubmissionCanResubmit,
		SubmissionScore:        m.SubmissionScore,
		SubmissionFeedback:     m.SubmissionFeedback,
		SubmissionCreatedAt:    m.SubmissionCreatedAt,
		SubmissionUpdatedAt:    m.SubmissionUpdatedAt,
		Files:                  []SubmissionFileResponse{},
	}
}

func FilesWithURL(ctx context.Context, store helperOSS.BlobStore, files []model.SubmissionFileModel) []SubmissionFileResponse {
	out := make([]SubmissionFileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, SubmissionFileResponse{
			SubmissionFileID:         f.SubmissionFileID,
			SubmissionFileName:       f.SubmissionFileName,
			SubmissionFileStorageKey: f.SubmissionFileStorageKey,
			SubmissionFileURL:        helperOSS.ResolveURL(ctx, store, f.SubmissionFileStorageKey),
		})
	}
	return out
}

// MySubmissionResponse: submitted=false → Submission nil.
type MySubmissionResponse struct {
	Submitted  bool                `json:"submitted"`
	Message    string              `json:"message,omitempty"`
	Submission *SubmissionResponse `json:"submission"`
}

// SubmissionDetailResponse: submission + file + pengirim + assignment.
type SubmissionDetailResponse struct {
	Submission SubmissionResponse                `json:"submission"`
	User       *UserLite                         `json:"user"`
	Assignment *assignmentDTO.AssignmentResponse `json:"assignment"`
}

/* =========================================================
   OVERVIEW & SCOREBOARD
========================================================= */

type StudentAssignmentItem struct {
	AssignmentID          uuid.UUID              `json:"assignment_id"`
	AssignmentName        string                 `json:"assignment_name"`
	AssignmentDescription string                 `json:"assignment_description"`
	AssignmentDueDate     time.Time              `json:"assignment_due_date"`
	AssignmentFullScore   float64                `json:"assignment_full_score"`
	Score                 *float64               `json:"score"`
	Status                model.SubmissionStatus `json:"status"`
}

type StudentOverviewResponse struct {
	Submitted    []StudentAssignmentItem `json:"submitted"`
	NotSubmitted []StudentAssignmentItem `json:"not_submitted"`
}

type ScoreboardCell struct {
	UserID      uuid.UUID              `json:"user_id"`
	StudentName string                 `json:"student_name"`
	Score       float64                `json:"score"`
	Status      model.SubmissionStatus `json:"status"`
}

type ScoreboardRow struct {
	AssignmentID        uuid.UUID        `json:"assignment_id"`
	AssignmentName      string           `json:"assignment_name"`
	AssignmentDueDate   time.Time        `json:"assignment_due_date"`
	AssignmentFullScore float64          `json:"assignment_full_score"`
	Submissions         []ScoreboardCell `json:"submissions"`
}

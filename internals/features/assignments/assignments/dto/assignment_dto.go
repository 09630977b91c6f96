// file: internals/features/assignments/assignments/dto/assignment_dto.go
package dto

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	model "kelasku_backend/internals/features/assignments/assignments/model"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

// FileInput: file yang sudah di-upload client lewat upload URL.
type FileInput struct {
	Name       string `json:"name" validate:"required,max=255"`
	StorageKey string `json:"storage_key" validate:"required,max=1024"`
}

func (f FileInput) Normalize() FileInput {
	return FileInput{Name: strings.TrimSpace(f.Name), StorageKey: strings.TrimSpace(f.StorageKey)}
}

/* =========================================================
   REQUEST
========================================================= */

type CreateAssignmentRequest struct {
	AssignmentClassroomID uuid.UUID   `json:"assignment_classroom_id" validate:"required"`
	AssignmentName        string      `json:"assignment_name" validate:"required,max=200"`
	AssignmentDescription string      `json:"assignment_description"`
	AssignmentFullScore   float64     `json:"assignment_full_score" validate:"gte=0"`
	AssignmentDueDate     time.Time   `json:"assignment_due_date" validate:"required"`
	AssignmentPublish     bool        `json:"assignment_publish"`
	Files                 []FileInput `json:"files" validate:"omitempty,dive"`
}

func (r CreateAssignmentRequest) ToModel(createdBy uuid.UUID) model.AssignmentModel {
	return model.AssignmentModel{
		AssignmentClassroomID: r.AssignmentClassroomID,
		AssignmentCreatedBy:   createdBy,
		AssignmentName:        strings.TrimSpace(r.AssignmentName),
		AssignmentDescription: r.AssignmentDescription,
		AssignmentFullScore:   r.AssignmentFullScore,
		AssignmentDueDate:     r.AssignmentDueDate.UTC(),
		AssignmentPublish:     r.AssignmentPublish,
	}
}

// UpdateAssignmentRequest: hanya field teks/atribut; file lewat endpoint files.
type UpdateAssignmentRequest struct {
	AssignmentName        *string    `json:"assignment_name" validate:"omitempty,min=1,max=200"`
	AssignmentDescription *string    `json:"assignment_description"`
	AssignmentFullScore   *float64   `json:"assignment_full_score" validate:"omitempty,gte=0"`
	AssignmentDueDate     *time.Time `json:"assignment_due_date"`
	AssignmentPublish     *bool      `json:"assignment_publish"`
}

func (r UpdateAssignmentRequest) ToUpdates() map[string]any {
	upd := map[string]any{}
	if r.AssignmentName != nil {
		upd["assignment_name"] = strings.TrimSpace(*r.AssignmentName)
	}
	if r.AssignmentDescription != nil {
		upd["assignment_description"] = *r.AssignmentDescription
	}
	if r.AssignmentFullScore != nil {
		upd["assignment_full_score"] = *r.AssignmentFullScore
	}
	if r.AssignmentDueDate != nil {
		upd["assignment_due_date"] = r.AssignmentDueDate.UTC()
	}
	if r.AssignmentPublish != nil {
		upd["assignment_publish"] = *r.AssignmentPublish
	}
	return upd
}

type AddFilesRequest struct {
	Files []FileInput `json:"files" validate:"required,min=1,dive"`
}

/* =========================================================
   RESPONSE
========================================================= */

type AssignmentFileResponse struct {
	AssignmentFileID         uuid.UUID `json:"assignment_file_id"`
	AssignmentFileName       string    `json:"assignment_file_name"`
	AssignmentFileStorageKey string    `json:"assignment_file_storage_key"`
	AssignmentFileURL        *string   `json:"assignment_file_url"`
}

type AssignmentResponse struct {
	AssignmentID          uuid.UUID `json:"assignment_id"`
	AssignmentClassroomID uuid.UUID `json:"assignment_classroom_id"`
	AssignmentCreatedBy   uuid.UUID `json:"assignment_created_by"`
	AssignmentName        string    `json:"assignment_name"`
	AssignmentDescription string    `json:"assignment_description"`
	AssignmentFullScore   float64   `json:"assignment_full_score"`
	AssignmentDueDate     time.Time `json:"assignment_due_date"`
	AssignmentPublish     bool      `json:"assignment_publish"`
	AssignmentCreatedAt   time.Time `json:"assignment_created_at"`
	AssignmentUpdatedAt   time.Time `json:"assignment_updated_at"`

	SubmitCount *int64                   `json:"submit_count,omitempty"`
	Files       []AssignmentFileResponse `json:"files"`
}

func FromModel(m model.AssignmentModel) AssignmentResponse {
	return AssignmentResponse{
		AssignmentID:          m.AssignmentID,
		AssignmentClassroomID: m.AssignmentClassroomID,
		AssignmentCreatedBy:   m.AssignmentCreatedBy,
		AssignmentName:        m.AssignmentName,
		AssignmentDescription: m.AssignmentDescription,
		AssignmentFullScore:   m.AssignmentFullScore,
		AssignmentDueDate:     m.AssignmentDueDate,
		AssignmentPublish:     m.AssignmentPublish,
		AssignmentCreatedAt:   m.AssignmentCreatedAt,
		AssignmentUpdatedAt:   m.AssignmentUpdatedAt,
		Files:                 []AssignmentFileResponse{},
	}
}

// FilesWithURL: url nil kalau blob sudah tidak ada.
func FilesWithURL(ctx context.Context, store helperOSS.BlobStore, files []model.AssignmentFileModel) []AssignmentFileResponse {
	out := make([]AssignmentFileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, AssignmentFileResponse{
			AssignmentFileID:         f.AssignmentFileID,
			AssignmentFileName:       f.AssignmentFileName,
			AssignmentFileStorageKey: f.AssignmentFileStorageKey,
			AssignmentFileURL:        helperOSS.ResolveURL(ctx, store, f.AssignmentFileStorageKey),
		})
	}
	return out
}

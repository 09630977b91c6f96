// file: internals/features/assignments/assignments/model/assignment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentModel struct {
	AssignmentID          uuid.UUID `gorm:"type:uuid;primaryKey;column:assignment_id" json:"assignment_id"`
	AssignmentClassroomID uuid.UUID `gorm:"type:uuid;not null;index:idx_assignments_classroom_publish,priority:1;column:assignment_classroom_id" json:"assignment_classroom_id"`
	AssignmentCreatedBy   uuid.UUID `gorm:"type:uuid;not null;column:assignment_created_by" json:"assignment_created_by"`

	AssignmentName        string    `gorm:"type:varchar(200);not null;column:assignment_name" json:"assignment_name"`
	AssignmentDescription string    `gorm:"type:text;column:assignment_description" json:"assignment_description"`
	AssignmentFullScore   float64   `gorm:"not null;default:0;column:assignment_full_score" json:"assignment_full_score"`
	AssignmentDueDate     time.Time `gorm:"not null;column:assignment_due_date" json:"assignment_due_date"`
	AssignmentPublish     bool      `gorm:"not null;default:false;index:idx_assignments_classroom_publish,priority:2;column:assignment_publish" json:"assignment_publish"`

	AssignmentCreatedAt time.Time `gorm:"not null;autoCreateTime;column:assignment_created_at" json:"assignment_created_at"`
	AssignmentUpdatedAt time.Time `gorm:"not null;autoUpdateTime;column:assignment_updated_at" json:"assignment_updated_at"`
}

func (AssignmentModel) TableName() string { return "assignments" }

func (m *AssignmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.AssignmentID == uuid.Nil {
		m.AssignmentID = uuid.New()
	}
	m.AssignmentDueDate = m.AssignmentDueDate.UTC()
	return nil
}

type AssignmentFileModel struct {
	AssignmentFileID           uuid.UUID `gorm:"type:uuid;primaryKey;column:assignment_file_id" json:"assignment_file_id"`
	AssignmentFileAssignmentID uuid.UUID `gorm:"type:uuid;not null;index;column:assignment_file_assignment_id" json:"assignment_file_assignment_id"`
	AssignmentFileName         string    `gorm:"type:varchar(255);not null;column:assignment_file_name" json:"assignment_file_name"`
	AssignmentFileStorageKey   string    `gorm:"type:text;not null;column:assignment_file_storage_key" json:"assignment_file_storage_key"`
	AssignmentFileCreatedAt    time.Time `gorm:"not null;autoCreateTime;column:assignment_file_created_at" json:"assignment_file_created_at"`
}

func (AssignmentFileModel) TableName() string { return "assignment_files" }

func (m *AssignmentFileModel) BeforeCreate(tx *gorm.DB) error {
	if m.AssignmentFileID == uuid.Nil {
		m.AssignmentFileID = uuid.New()
	}
	return nil
}

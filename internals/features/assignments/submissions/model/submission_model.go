// file: internals/features/assignments/submissions/model/submission_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmissionModel struct {
	SubmissionID           uuid.UUID `gorm:"type:uuid;primaryKey;column:submission_id" json:"submission_id"`
	SubmissionAssignmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_submission_assignment_user,priority:1;index:idx_submissions_classroom_assignment,priority:2;column:submission_assignment_id" json:"submission_assignment_id"`
	SubmissionClassroomID  uuid.UUID `gorm:"type:uuid;not null;index:idx_submissions_classroom_assignment,priority:1;column:submission_classroom_id" json:"submission_classroom_id"`
	SubmissionUserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_submission_assignment_user,priority:2;column:submission_user_id" json:"submission_user_id"`

	SubmissionStatus      SubmissionStatus `gorm:"type:varchar(24);not null;column:submission_status" json:"submission_status"`
	SubmissionIsChecked   bool             `gorm:"not null;default:false;column:submission_is_checked" json:"submission_is_checked"`
	SubmissionCanResubmit bool             `gorm:"not null;default:false;column:submission_can_resubmit" json:"submission_can_resubmit"`
	SubmissionScore       float64          `gorm:"not null;default:0;column:submission_score" json:"submission_score"`
	SubmissionFeedback    string           `gorm:"type:text;not null;default:'';column:submission_feedback" json:"submission_feedback"`

	SubmissionCreatedAt time.Time `gorm:"not null;autoCreateTime;column:submission_created_at" json:"submission_created_at"`
	SubmissionUpdatedAt time.Time `gorm:"not null;autoUpdateTime;column:submission_updated_at" json:"submission_updated_at"`
}

func (SubmissionModel) TableName() string { return "submissions" }

func (m *SubmissionModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubmissionID == uuid.Nil {
		m.SubmissionID = uuid.New()
	}
	return nil
}

type SubmissionFileModel struct {
	SubmissionFileID           uuid.UUID `gorm:"type:uuid;primaryKey;column:submission_file_id" json:"submission_file_id"`
	SubmissionFileSubmissionID uuid.UUID `gorm:"type:uuid;not null;index;column:submission_file_submission_id" json:"submission_file_submission_id"`
	SubmissionFileName         string    `gorm:"type:varchar(255);not null;column:submission_file_name" json:"submission_file_name"`
	SubmissionFileStorageKey   string    `gorm:"type:text;not null;column:submission_file_storage_key" json:"submission_file_storage_key"`
	SubmissionFileCreatedAt    time.Time `gorm:"not null;autoCreateTime;column:submission_file_created_at" json:"submission_file_created_at"`
}

func (SubmissionFileModel) TableName() string { return "submission_files" }

func (m *SubmissionFileModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubmissionFileID == uuid.Nil {
		m.SubmissionFileID = uuid.New()
	}
	return nil
}

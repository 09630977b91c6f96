// file: internals/features/storage/uploads/model/pending_blob_deletion_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingBlobDeletionModel: object key yang row-nya sudah dihapus di DB
// tapi blob-nya belum terkonfirmasi terhapus di storage.
type PendingBlobDeletionModel struct {
	PendingBlobDeletionID         uuid.UUID `gorm:"type:uuid;primaryKey;column:pending_blob_deletion_id" json:"pending_blob_deletion_id"`
	PendingBlobDeletionStorageKey string    `gorm:"type:text;not null;uniqueIndex:uq_pending_blob_deletion_key;column:pending_blob_deletion_storage_key" json:"pending_blob_deletion_storage_key"`
	PendingBlobDeletionReason     string    `gorm:"type:varchar(80);column:pending_blob_deletion_reason" json:"pending_blob_deletion_reason"`
	PendingBlobDeletionAttempts   int       `gorm:"not null;default:0;column:pending_blob_deletion_attempts" json:"pending_blob_deletion_attempts"`
	PendingBlobDeletionLastError  *string   `gorm:"type:text;column:pending_blob_deletion_last_error" json:"pending_blob_deletion_last_error,omitempty"`
	PendingBlobDeletionCreatedAt  time.Time `gorm:"not null;autoCreateTime;column:pending_blob_deletion_created_at" json:"pending_blob_deletion_created_at"`
	PendingBlobDeletionUpdatedAt  time.Time `gorm:"not null;autoUpdateTime;column:pending_blob_deletion_updated_at" json:"pending_blob_deletion_updated_at"`
}

func (PendingBlobDeletionModel) TableName() string { return "pending_blob_deletions" }

func (m *PendingBlobDeletionModel) BeforeCreate(tx *gorm.DB) error {
	if m.PendingBlobDeletionID == uuid.Nil {
		m.PendingBlobDeletionID = uuid.New()
	}
	return nil
}

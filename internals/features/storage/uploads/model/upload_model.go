// file: internals/features/storage/uploads/model/upload_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadModel: object key yang pernah diterbitkan lewat POST /uploads.
// Hanya key yang tercatat di sini (dan milik user yang sama) boleh dipakai sebagai file.
type UploadModel struct {
	UploadID          uuid.UUID `gorm:"type:uuid;primaryKey;column:upload_id" json:"upload_id"`
	UploadStorageKey  string    `gorm:"type:text;not null;uniqueIndex:uq_upload_storage_key;column:upload_storage_key" json:"upload_storage_key"`
	UploadUserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_upload_user;column:upload_user_id" json:"upload_user_id"`
	UploadContentType string    `gorm:"type:varchar(120);column:upload_content_type" json:"upload_content_type"`
	UploadExpiresAt   time.Time `gorm:"column:upload_expires_at" json:"upload_expires_at"`
	UploadCreatedAt   time.Time `gorm:"not null;autoCreateTime;column:upload_created_at" json:"upload_created_at"`
}

func (UploadModel) TableName() string { return "uploads" }

func (m *UploadModel) BeforeCreate(tx *gorm.DB) error {
	if m.UploadID == uuid.Nil {
		m.UploadID = uuid.New()
	}
	return nil
}

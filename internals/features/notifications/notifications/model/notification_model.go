// file: internals/features/notifications/notifications/model/notification_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	NotificationTypeResubmitAllowed = "resubmit-allowed"
	NotificationTypeNewAssignment   = "new-assignment"
	NotificationTypeFeedback        = "feedback"
)

type NotificationModel struct {
	NotificationID          uuid.UUID         `gorm:"type:uuid;primaryKey;column:notification_id" json:"notification_id"`
	NotificationUserID      uuid.UUID         `gorm:"type:uuid;not null;index;column:notification_user_id" json:"notification_user_id"`
	NotificationClassroomID *uuid.UUID        `gorm:"type:uuid;index;column:notification_classroom_id" json:"notification_classroom_id,omitempty"`
	NotificationType        string            `gorm:"type:varchar(40);not null;column:notification_type" json:"notification_type"`
	NotificationTitle       string            `gorm:"type:varchar(255);not null;column:notification_title" json:"notification_title"`
	NotificationDescription string            `gorm:"type:text;column:notification_description" json:"notification_description"`
	NotificationData        datatypes.JSONMap `gorm:"column:notification_data" json:"notification_data,omitempty"`
	NotificationRead        bool              `gorm:"not null;default:false;column:notification_read" json:"notification_read"`
	NotificationCreatedAt   time.Time         `gorm:"not null;autoCreateTime;column:notification_created_at" json:"notification_created_at"`
}

func (NotificationModel) TableName() string { return "notifications" }

func (m *NotificationModel) BeforeCreate(tx *gorm.DB) error {
	if m.NotificationID == uuid.Nil {
		m.NotificationID = uuid.New()
	}
	return nil
}

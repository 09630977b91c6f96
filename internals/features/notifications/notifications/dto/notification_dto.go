package dto

import (
	"time"

	"github.com/google/uuid"

	model "kelasku_backend/internals/features/notifications/notifications/model"
)

type NotificationResponse struct {
	NotificationID          uuid.UUID      `json:"notification_id"`
	NotificationUserID      uuid.UUID      `json:"notification_user_id"`
	NotificationClassroomID *uuid.UUID     `json:"notification_classroom_id,omitempty"`
	NotificationType        string         `json:"notification_type"`
	NotificationTitle       string         `json:"notification_title"`
	NotificationDescription string         `json:"notification_description"`
	NotificationData        map[string]any `json:"notification_data,omitempty"`
	NotificationRead        bool           `json:"notification_read"`
	NotificationCreatedAt   time.Time      `json:"notification_created_at"`
}

func FromModel(m model.NotificationModel) NotificationResponse {
	return NotificationResponse{
		NotificationID:          m.NotificationID,
		NotificationUserID:      m.NotificationUserID,
		NotificationClassroomID: m.NotificationClassroomID,
		NotificationType:        m.NotificationType,
		NotificationTitle:       m.NotificationTitle,
		NotificationDescription: m.NotificationDescription,
		NotificationData:        map[string]any(m.NotificationData),
		NotificationRead:        m.NotificationRead,
		NotificationCreatedAt:   m.NotificationCreatedAt,
	}
}

func FromModels(rows []model.NotificationModel) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

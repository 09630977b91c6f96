// file: internals/features/notifications/notifications/service/notification_service.go
package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "kelasku_backend/internals/features/notifications/notifications/model"
	"kelasku_backend/internals/helpers/apperr"
)

type NotificationService struct {
	DB        *gorm.DB
	Publisher Publisher
}

func NewNotificationService(db *gorm.DB, pub Publisher) *NotificationService {
	if pub == nil {
		pub = NoopPublisher{}
	}
	return &NotificationService{DB: db, Publisher: pub}
}

// Insert menulis notifikasi memakai tx milik caller (ikut commit/rollback caller).
func (s *NotificationService) Insert(tx *gorm.DB, n *model.NotificationModel) error {
	n.NotificationRead = false
	return tx.Create(n).Error
}

// PublishAll dipanggil SETELAH commit. Gagal publish hanya di-log; row di DB tetap sumber kebenaran.
func (s *NotificationService) PublishAll(ctx context.Context, ns ...model.NotificationModel) {
	for _, n := range ns {
		if err := s.Publisher.Publish(ctx, n); err != nil {
			log.Printf("[NOTIFICATION] publish %s ke user %s gagal: %v", n.NotificationID, n.NotificationUserID, err)
		}
	}
}

func (s *NotificationService) ListMine(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) ([]model.NotificationModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("notification_user_id = ?", userID)
	if unreadOnly {
		q = q.Where("notification_read = ?", false)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}

	var rows []model.NotificationModel
	if err := q.Order("notification_created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return rows, total, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("notification_id = ? AND notification_user_id = ?", notificationID, userID).
		Update("notification_read", true)
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		// tidak ada, atau milik user lain
		return apperr.NotFound(apperr.CodeNotificationNotFound, "notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("notification_user_id = ? AND notification_read = ?", userID, false).
		Update("notification_read", true)
	if res.Error != nil {
		return 0, apperr.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteByClassroom: dipakai cascade hapus kelas (tx milik caller).
func DeleteByClassroom(tx *gorm.DB, classroomID uuid.UUID) error {
	return tx.Where("notification_classroom_id = ?", classroomID).Delete(&model.NotificationModel{}).Error
}

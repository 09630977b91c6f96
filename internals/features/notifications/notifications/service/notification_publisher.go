// file: internals/features/notifications/notifications/service/notification_publisher.go
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	dto "kelasku_backend/internals/features/notifications/notifications/dto"
	model "kelasku_backend/internals/features/notifications/notifications/model"
)

// Publisher mendorong notifikasi yang sudah ter-commit ke channel realtime.
type Publisher interface {
	Publish(ctx context.Context, n model.NotificationModel) error
}

/* ===============================
   Redis pub/sub
=================================*/

type RedisPublisher struct {
	Client *redis.Client
	Prefix string
}

func NewRedisPublisher(addr, password string, db int, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "notifications:"
	}
	return &RedisPublisher{
		Client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		Prefix: prefix,
	}
}

func (p *RedisPublisher) Channel(n model.NotificationModel) string {
	return p.Prefix + n.NotificationUserID.String()
}

func (p *RedisPublisher) Publish(ctx context.Context, n model.NotificationModel) error {
	payload, err := sonic.Marshal(dto.FromModel(n))
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return p.Client.Publish(ctx, p.Channel(n), payload).Err()
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error { return p.Client.Close() }

/* ===============================
   Fallback & test double
=================================*/

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, model.NotificationModel) error { return nil }

// RecordingPublisher menyimpan semua notifikasi yang dipublish.
type RecordingPublisher struct {
	mu   sync.Mutex
	sent []model.NotificationModel
	Err  error
}

func (r *RecordingPublisher) Publish(_ context.Context, n model.NotificationModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *RecordingPublisher) Sent() []model.NotificationModel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.NotificationModel(nil), r.sent...)
}

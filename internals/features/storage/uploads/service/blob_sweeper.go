// file: internals/features/storage/uploads/service/blob_sweeper.go
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "kelasku_backend/internals/features/storage/uploads/model"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

// MarkForDeletion dipanggil DI DALAM transaksi yang menghapus row file,
// sehingga key blob tidak pernah hilang walau proses mati sebelum blob terhapus.
func MarkForDeletion(tx *gorm.DB, reason string, keys ...string) error {
	rows := make([]model.PendingBlobDeletionModel, 0, len(keys))
	seen := map[string]struct{}{}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, model.PendingBlobDeletionModel{
			PendingBlobDeletionStorageKey: k,
			PendingBlobDeletionReason:     reason,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	// key yang masih dipakai row file lain tidak boleh ikut terhapus
	candidates := make([]string, 0, len(rows))
	for _, r := range rows {
		candidates = append(candidates, r.PendingBlobDeletionStorageKey)
	}
	used, err := referencedKeys(tx, candidates)
	if err != nil {
		return err
	}
	marked := rows[:0]
	keys = make([]string, 0, len(rows))
	for _, r := range rows {
		if _, ok := used[r.PendingBlobDeletionStorageKey]; ok {
			log.Printf("[BLOB-SWEEPER] skip %q: masih direferensikan", r.PendingBlobDeletionStorageKey)
			continue
		}
		marked = append(marked, r)
		keys = append(keys, r.PendingBlobDeletionStorageKey)
	}
	if len(marked) == 0 {
		return nil
	}
	// key yang akan dihapus tidak bisa diklaim ulang
	if err := tx.Where("upload_storage_key IN ?", keys).Delete(&model.UploadModel{}).Error; err != nil {
		return err
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pending_blob_deletion_storage_key"}},
		DoNothing: true,
	}).Create(&marked).Error
}

type BlobSweeper struct {
	DB          *gorm.DB
	Store       helperOSS.BlobStore
	MaxAttempts int
}

func NewBlobSweeper(db *gorm.DB, store helperOSS.BlobStore) *BlobSweeper {
	return &BlobSweeper{DB: db, Store: store, MaxAttempts: 20}
}

// Flush: hapus blob untuk key yang baru saja di-mark (setelah commit).
// Gagal hapus tidak mengembalikan error ke caller; row pending tetap ada untuk reaper.
func (s *BlobSweeper) Flush(ctx context.Context, keys []string) (deleted int) {
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if s.deleteOne(ctx, k) {
			deleted++
		}
	}
	return deleted
}

func (s *BlobSweeper) deleteOne(ctx context.Context, key string) bool {
	used, err := referencedKeys(s.DB.WithContext(ctx), []string{key})
	if err != nil {
		log.Printf("[BLOB-SWEEPER] cek referensi %q gagal: %v", key, err)
		return false
	}
	if _, ok := used[key]; ok {
		log.Printf("[BLOB-SWEEPER] skip %q: masih direferensikan", key)
		s.dropPending(ctx, key)
		return false
	}
	if err := s.Store.Delete(ctx, key); err != nil {
		msg := err.Error()
		log.Printf("[BLOB-SWEEPER] delete %q gagal: %v", key, err)
		if e := s.DB.WithContext(ctx).
			Model(&model.PendingBlobDeletionModel{}).
			Where("pending_blob_deletion_storage_key = ?", key).
			Updates(map[string]any{
				"pending_blob_deletion_attempts":   gorm.Expr("pending_blob_deletion_attempts + 1"),
				"pending_blob_deletion_last_error": msg,
			}).Error; e != nil {
			log.Printf("[BLOB-SWEEPER] update attempts %q gagal: %v", key, e)
		}
		return false
	}
	s.dropPending(ctx, key)
	return true
}

func (s *BlobSweeper) dropPending(ctx context.Context, key string) {
	if err := s.DB.WithContext(ctx).
		Where("pending_blob_deletion_storage_key = ?", key).
		Delete(&model.PendingBlobDeletionModel{}).Error; err != nil {
		log.Printf("[BLOB-SWEEPER] hapus pending %q gagal: %v", key, err)
	}
}

// SweepPending: retry semua pending (dipakai cron).
func (s *BlobSweeper) SweepPending(ctx context.Context, limit int) (deleted, remaining int, err error) {
	if limit <= 0 {
		limit = 500
	}
	q := s.DB.WithContext(ctx).Model(&model.PendingBlobDeletionModel{})
	if s.MaxAttempts > 0 {
		q = q.Where("pending_blob_deletion_attempts < ?", s.MaxAttempts)
	}
	var rows []model.PendingBlobDeletionModel
	if err := q.Order("pending_blob_deletion_created_at ASC").Limit(limit).Find(&rows).Error; err != nil {
		return 0, 0, fmt.Errorf("load pending: %w", err)
	}
	for _, r := range rows {
		if ctx.Err() != nil {
			break
		}
		if s.deleteOne(ctx, r.PendingBlobDeletionStorageKey) {
			deleted++
		}
	}
	var left int64
	if err := s.DB.WithContext(ctx).Model(&model.PendingBlobDeletionModel{}).Count(&left).Error; err != nil {
		return deleted, 0, fmt.Errorf("count pending: %w", err)
	}
	return deleted, int(left), nil
}

// ── ENTRYPOINT: panggil dari main.go
func StartBlobReaperCron(s *BlobSweeper, schedule string) (*cron.Cron, error) {
	if schedule == "" {
		schedule = "*/10 * * * *"
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		deleted, remaining, err := s.SweepPending(ctx, 500)
		if err != nil {
			log.Printf("[BLOB-REAPER] error: %v", err)
			return
		}
		if deleted > 0 || remaining > 0 {
			log.Printf("[BLOB-REAPER] deleted=%d remaining=%d", deleted, remaining)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("add cron: %w", err)
	}
	log.Printf("[BLOB-REAPER] started schedule=%q", schedule)
	c.Start()
	return c, nil
}

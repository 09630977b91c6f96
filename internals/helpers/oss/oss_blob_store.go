// internals/helpers/oss/oss_blob_store.go
package helper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

/*
BlobStore adalah facade storage file untuk service:
- IssueUploadURL: client upload langsung ke storage, backend hanya simpan storage_key.
- GetURL: URL baca untuk sebuah key (ErrBlobNotFound kalau key tidak dikenal).
- Delete: idempoten; key yang sudah tidak ada dianggap sukses.
*/
type BlobStore interface {
	IssueUploadURL(ctx context.Context, filename, contentType string) (UploadTarget, error)
	GetURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type UploadTarget struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

var ErrBlobNotFound = errors.New("blob not found")

// --------------------------------------------------
// Implementasi berbasis Aliyun OSS
// --------------------------------------------------

type OSSBlobStore struct {
	svc    *OSSService
	urlTTL time.Duration
}

func NewOSSBlobStoreFromEnv(prefix string, urlTTL time.Duration) (*OSSBlobStore, error) {
	s, err := NewOSSServiceFromEnv(prefix)
	if err != nil {
		return nil, err
	}
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	return &OSSBlobStore{svc: s, urlTTL: urlTTL}, nil
}

func (b *OSSBlobStore) IssueUploadURL(ctx context.Context, filename, contentType string) (UploadTarget, error) {
	key := b.svc.buildObjectKey(filename)
	u, err := b.svc.SignPutURL(key, contentType, b.urlTTL)
	if err != nil {
		return UploadTarget{}, fmt.Errorf("sign put url: %w", err)
	}
	return UploadTarget{
		UploadURL:  u,
		StorageKey: key,
		ExpiresAt:  time.Now().Add(b.urlTTL).UTC(),
	}, nil
}

func (b *OSSBlobStore) GetURL(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrBlobNotFound
	}
	if pub := b.svc.PublicURL(key); pub != "" {
		return pub, nil
	}
	return b.svc.SignGetURL(key, b.urlTTL)
}

func (b *OSSBlobStore) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	return b.svc.DeleteObject(ctx, key)
}

// --------------------------------------------------
// In-memory (dev lokal tanpa ALI_OSS_* & unit test)
// --------------------------------------------------

type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string]string // key → content type
	BaseURL string
	Now     func() time.Time
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		objects: map[string]string{},
		BaseURL: "memory://blobs",
		Now:     time.Now,
	}
}

func (m *MemoryBlobStore) IssueUploadURL(ctx context.Context, filename, contentType string) (UploadTarget, error) {
	now := m.Now()
	key := BuildObjectKey("uploads", filename, now)
	// dianggap langsung ter-upload
	m.Put(key, contentType)
	return UploadTarget{
		UploadURL:  m.BaseURL + "/upload/" + key,
		StorageKey: key,
		ExpiresAt:  now.Add(15 * time.Minute).UTC(),
	}, nil
}

func (m *MemoryBlobStore) Put(key, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = contentType
}

func (m *MemoryBlobStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

func (m *MemoryBlobStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

func (m *MemoryBlobStore) GetURL(ctx context.Context, key string) (string, error) {
	if !m.Has(key) {
		return "", ErrBlobNotFound
	}
	return m.BaseURL + "/" + key, nil
}

func (m *MemoryBlobStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// --------------------------------------------------
// Mock untuk unit test (inject kegagalan)
// --------------------------------------------------

type MockBlobStore struct {
	IssueUploadURLFn func(ctx context.Context, filename, contentType string) (UploadTarget, error)
	GetURLFn         func(ctx context.Context, key string) (string, error)
	DeleteFn         func(ctx context.Context, key string) error
}

func (m *MockBlobStore) IssueUploadURL(ctx context.Context, filename, contentType string) (UploadTarget, error) {
	if m.IssueUploadURLFn == nil {
		return UploadTarget{}, errors.New("not implemented")
	}
	return m.IssueUploadURLFn(ctx, filename, contentType)
}

func (m *MockBlobStore) GetURL(ctx context.Context, key string) (string, error) {
	if m.GetURLFn == nil {
		return "", errors.New("not implemented")
	}
	return m.GetURLFn(ctx, key)
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFn == nil {
		return errors.New("not implemented")
	}
	return m.DeleteFn(ctx, key)
}

// ResolveURL: helper untuk DTO; error/kosong → nil (file tetap ditampilkan tanpa url).
func ResolveURL(ctx context.Context, store BlobStore, key string) *string {
	if store == nil || key == "" {
		return nil
	}
	u, err := store.GetURL(ctx, key)
	if err != nil || u == "" {
		return nil
	}
	return &u
}

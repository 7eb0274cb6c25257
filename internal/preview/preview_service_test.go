package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"sharefile/internal/domain"
	"sharefile/internal/service/s3"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	io.ReadCloser
	size int64
}

func (o *fakeObject) ContentLength() int64 { return o.size }
func (o *fakeObject) ContentType() string  { return "image/jpeg" }

// fakeStorage подменяет S3 в тестах превью
type fakeStorage struct {
	objects map[string][]byte
	uploads map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects: make(map[string][]byte),
		uploads: make(map[string][]byte),
	}
}

func (f *fakeStorage) Upload(ctx context.Context, key string, contentType string, data io.Reader) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.uploads[key] = b
	return nil
}

func (f *fakeStorage) GetObject(ctx context.Context, key string) (s3.S3Object, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return &fakeObject{ReadCloser: io.NopCloser(bytes.NewReader(data)), size: int64(len(data))}, nil
}

func (f *fakeStorage) DeleteObject(key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeStorage) ObjectURL(key string) string {
	return "https://storage.test/bucket/" + key
}

func TestGetOrGenerateReturnsCached(t *testing.T) {
	storage := newFakeStorage()
	svc := NewService(storage)

	item := &domain.Item{ID: uuid.New(), Type: domain.ItemTypeImage, S3Key: "shared_items/u/x"}
	cached := []byte("cached-jpeg-bytes")
	storage.objects[ObjectKey(item.ID)] = cached

	data, err := svc.GetOrGenerate(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, cached, data)
	// кэш-попадание не порождает повторной загрузки
	assert.Empty(t, storage.uploads)
}

func TestGetOrGenerateRejectsNonImages(t *testing.T) {
	svc := NewService(newFakeStorage())

	item := &domain.Item{ID: uuid.New(), Type: domain.ItemTypePDF}
	_, err := svc.GetOrGenerate(context.Background(), item)
	assert.Error(t, err)
}

func TestCleanupStale(t *testing.T) {
	storage := newFakeStorage()
	svc := NewService(storage)

	liveID := uuid.New()
	staleID := uuid.New()
	storage.objects[ObjectKey(liveID)] = []byte("live")
	storage.objects[ObjectKey(staleID)] = []byte("stale")
	// мусорный ключ без валидного UUID игнорируется
	storage.objects["previews/garbage"] = []byte("junk")

	err := svc.CleanupStale(context.Background(), func(ctx context.Context, id uuid.UUID) (bool, error) {
		return id == liveID, nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{ObjectKey(staleID)}, storage.deleted)
	assert.Contains(t, storage.objects, ObjectKey(liveID))
	assert.Contains(t, storage.objects, "previews/garbage")
}

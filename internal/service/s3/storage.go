package s3

import (
	"context"
	"io"
)

// S3Object определяет интерфейс для объектов S3
type S3Object interface {
	io.ReadCloser
	ContentLength() int64
	ContentType() string
}

type s3Object struct {
	io.ReadCloser
	contentLength int64
	contentType   string
}

func (o *s3Object) ContentLength() int64 {
	return o.contentLength
}

func (o *s3Object) ContentType() string {
	return o.contentType
}

// Storage определяет интерфейс для работы с S3-совместимым хранилищем
type Storage interface {
	Upload(ctx context.Context, key string, contentType string, data io.Reader) error
	GetObject(ctx context.Context, key string) (S3Object, error)
	DeleteObject(key string) error
	// ListKeys возвращает ключи всех объектов с заданным префиксом
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	// ObjectURL возвращает публичный URL загруженного объекта
	ObjectURL(key string) string
}

package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"sharefile/internal/domain"
	"sharefile/internal/service/s3"

	"github.com/google/uuid"
	"github.com/h2non/bimg"
)

const (
	maxImageSize  = 1024        // максимальный размер превью в пикселях
	jpegQuality   = 85          // качество JPEG
	previewPrefix = "previews/" // префикс для превью в S3
)

// ObjectKey возвращает ключ превью файла в S3
func ObjectKey(itemID uuid.UUID) string {
	return previewPrefix + itemID.String()
}

// Service генерирует и кэширует превью для изображений
type Service struct {
	storage s3.Storage
}

func NewService(storage s3.Storage) *Service {
	return &Service{storage: storage}
}

// GetOrGenerate возвращает превью изображения, создавая и сохраняя его
// в S3 при первом запросе
func (s *Service) GetOrGenerate(ctx context.Context, item *domain.Item) ([]byte, error) {
	if item.Type != domain.ItemTypeImage {
		return nil, fmt.Errorf("previews are only supported for images")
	}

	previewKey := ObjectKey(item.ID)

	// Пытаемся получить существующее превью
	cached, err := s.storage.GetObject(ctx, previewKey)
	if err == nil {
		defer cached.Close()
		return io.ReadAll(cached)
	}

	log.Printf("[Preview] No cached preview for item %s, generating", item.ID)

	original, err := s.storage.GetObject(ctx, item.S3Key)
	if err != nil {
		return nil, fmt.Errorf("failed to get original object: %w", err)
	}
	defer original.Close()

	data, err := io.ReadAll(original)
	if err != nil {
		return nil, fmt.Errorf("failed to read original object: %w", err)
	}

	previewData, err := s.generateImagePreview(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate preview: %w", err)
	}

	// Сбой кэширования не мешает отдать превью
	if err := s.storage.Upload(ctx, previewKey, "image/jpeg", bytes.NewReader(previewData)); err != nil {
		log.Printf("[Preview] Failed to cache preview for item %s: %v", item.ID, err)
	}

	return previewData, nil
}

// CleanupStale удаляет из S3 превью, чьи файлы уже не существуют.
// exists проверяет наличие файла по его ID.
func (s *Service) CleanupStale(ctx context.Context, exists func(context.Context, uuid.UUID) (bool, error)) error {
	keys, err := s.storage.ListKeys(ctx, previewPrefix)
	if err != nil {
		return fmt.Errorf("failed to list previews: %w", err)
	}

	removed := 0
	for _, key := range keys {
		itemID, err := uuid.Parse(strings.TrimPrefix(key, previewPrefix))
		if err != nil {
			continue
		}

		ok, err := exists(ctx, itemID)
		if err != nil {
			return fmt.Errorf("failed to check item %s: %w", itemID, err)
		}
		if ok {
			continue
		}

		if err := s.storage.DeleteObject(key); err != nil {
			log.Printf("[Preview] Failed to delete stale preview %s: %v", key, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("[Preview] Removed %d stale previews", removed)
	}

	return nil
}

func (s *Service) generateImagePreview(data []byte) ([]byte, error) {
	img := bimg.NewImage(data)

	size, err := img.Size()
	if err != nil {
		return nil, fmt.Errorf("failed to read image size: %w", err)
	}

	width := size.Width
	height := size.Height
	if width > maxImageSize || height > maxImageSize {
		if width > height {
			height = height * maxImageSize / width
			width = maxImageSize
		} else {
			width = width * maxImageSize / height
			height = maxImageSize
		}
	}

	return img.Process(bimg.Options{
		Width:   width,
		Height:  height,
		Quality: jpegQuality,
		Type:    bimg.JPEG,
	})
}

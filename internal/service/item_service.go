package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"

	"sharefile/internal/domain"
	"sharefile/internal/preview"
	"sharefile/internal/repository"
	"sharefile/internal/service/s3"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const maxFileSize = 100 * 1024 * 1024 // 100MB максимальный размер файла

var (
	ErrUploadLimitReached = errors.New("upload limit reached for current plan")
	ErrFileTooLarge       = errors.New("file size exceeds maximum allowed size")
	ErrEmptyName          = errors.New("name must not be empty")
	ErrInvalidPrice       = errors.New("price must be a positive integer")
)

// ItemService управляет жизненным циклом расшаренных файлов
type ItemService struct {
	itemRepo    *repository.ItemRepository
	accountRepo *repository.AccountRepository
	storage     s3.Storage
}

func NewItemService(
	itemRepo *repository.ItemRepository,
	accountRepo *repository.AccountRepository,
	storage s3.Storage,
) *ItemService {
	return &ItemService{
		itemRepo:    itemRepo,
		accountRepo: accountRepo,
		storage:     storage,
	}
}

// Upload загружает файл в S3 и создает запись о нем.
// Загрузка разрешена только пока количество файлов меньше лимита тарифа.
func (s *ItemService) Upload(ctx context.Context, header *multipart.FileHeader, file multipart.File, userID string) (*domain.Item, error) {
	if header == nil || file == nil || userID == "" {
		return nil, fmt.Errorf("missing required parameters")
	}

	if header.Size > maxFileSize {
		return nil, fmt.Errorf("%w: max size is %d bytes", ErrFileTooLarge, maxFileSize)
	}

	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	count, err := s.itemRepo.CountByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	ent := domain.ResolveEntitlement(account.Plan)
	if !ent.AllowsUpload(count) {
		return nil, fmt.Errorf("%w: plan %s allows %d items", ErrUploadLimitReached, ent.Tier, ent.MaxItems)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	itemID := uuid.New()
	s3Key := fmt.Sprintf("shared_items/%s/%s", userID, itemID)

	if err := s.storage.Upload(ctx, s3Key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload file to storage: %w", err)
	}

	item := &domain.Item{
		ID:      itemID,
		Name:    filepath.Clean(header.Filename),
		Type:    domain.ItemTypeFromMIME(contentType),
		FileURL: s.storage.ObjectURL(s3Key),
		S3Key:   s3Key,
		OwnerID: userID,
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		// При ошибке БД убираем уже загруженный объект
		if deleteErr := s.storage.DeleteObject(s3Key); deleteErr != nil {
			log.Printf("[Item] Failed to delete object from storage after db error: %v", deleteErr)
		}
		return nil, fmt.Errorf("failed to create item record: %w", err)
	}

	return item, nil
}

// Update меняет имя, пароль, срок действия и цену файла.
// Тарифы без соответствующей возможности получают принудительно
// очищенные пароль и цену независимо от запроса.
func (s *ItemService) Update(ctx context.Context, itemID uuid.UUID, userID string, upd domain.ItemUpdate) (*domain.Item, error) {
	item, err := s.itemRepo.GetOwned(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := applyItemUpdate(item, domain.ResolveEntitlement(account.Plan), upd); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return item, nil
}

// applyItemUpdate применяет изменения с учетом возможностей тарифа.
// Тариф без пароля или цены принудительно очищает эти поля,
// даже если запрос их не трогал.
func applyItemUpdate(item *domain.Item, ent domain.Entitlement, upd domain.ItemUpdate) error {
	if upd.Name != nil {
		if *upd.Name == "" {
			return ErrEmptyName
		}
		item.Name = *upd.Name
	}

	if ent.CanAddPassword {
		if upd.Password != nil {
			if *upd.Password == "" {
				item.PasswordHash = nil
			} else {
				hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
				if err != nil {
					return fmt.Errorf("failed to hash password: %w", err)
				}
				hashStr := string(hash)
				item.PasswordHash = &hashStr
			}
		}
	} else {
		item.PasswordHash = nil
	}

	if ent.CanAddPricing {
		if upd.Price != nil {
			switch {
			case *upd.Price < 0:
				return ErrInvalidPrice
			case *upd.Price == 0:
				item.Price = nil
			default:
				item.Price = upd.Price
			}
		}
	} else {
		item.Price = nil
	}

	if upd.ExpiresAt != nil {
		if upd.ExpiresAt.IsZero() {
			item.ExpiresAt = nil
		} else {
			item.ExpiresAt = upd.ExpiresAt
		}
	}

	return nil
}

// Delete удаляет запись о файле. Удаление объекта из S3 - best effort:
// сбой хранилища логируется, но не мешает удалению записи.
func (s *ItemService) Delete(ctx context.Context, itemID uuid.UUID, userID string) error {
	item, err := s.itemRepo.GetOwned(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get item: %w", err)
	}

	if err := s.storage.DeleteObject(item.S3Key); err != nil {
		log.Printf("[Item] Failed to delete object %s from storage: %v", item.S3Key, err)
	}
	if err := s.storage.DeleteObject(preview.ObjectKey(item.ID)); err != nil {
		log.Printf("[Item] Failed to delete preview for item %s: %v", item.ID, err)
	}

	if err := s.itemRepo.Delete(ctx, itemID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return nil
}

func (s *ItemService) List(ctx context.Context, userID string) ([]domain.Item, error) {
	return s.itemRepo.ListByOwner(ctx, userID)
}

func (s *ItemService) Get(ctx context.Context, itemID uuid.UUID, userID string) (*domain.Item, error) {
	item, err := s.itemRepo.GetOwned(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

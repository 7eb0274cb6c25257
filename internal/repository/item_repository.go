package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sharefile/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("not found")

type ItemRepository struct {
	db *sqlx.DB
}

func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
        INSERT INTO items (
            id, name, type, file_url, s3_key, owner_id,
            password_hash, expires_at, price, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
        ) RETURNING created_at, updated_at`

	return r.db.QueryRowContext(
		ctx,
		query,
		item.ID,
		item.Name,
		item.Type,
		item.FileURL,
		item.S3Key,
		item.OwnerID,
		item.PasswordHash,
		item.ExpiresAt,
		item.Price,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
}

// GetByID возвращает файл без проверки владельца (для публичной share-страницы)
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	var item domain.Item
	query := `SELECT * FROM items WHERE id = $1`

	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return &item, nil
}

// GetOwned возвращает файл только если он принадлежит пользователю
func (r *ItemRepository) GetOwned(ctx context.Context, id uuid.UUID, ownerID string) (*domain.Item, error) {
	var item domain.Item
	query := `SELECT * FROM items WHERE id = $1 AND owner_id = $2`

	if err := r.db.GetContext(ctx, &item, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return &item, nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	query := `
        SELECT * FROM items
        WHERE owner_id = $1
        ORDER BY created_at DESC`

	items := make([]domain.Item, 0)
	if err := r.db.SelectContext(ctx, &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	return items, nil
}

func (r *ItemRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM items WHERE owner_id = $1`

	if err := r.db.GetContext(ctx, &count, query, ownerID); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}

	return count, nil
}

// Update сохраняет изменяемые поля файла, мутация ограничена владельцем
func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `
        UPDATE items
        SET name = $1, password_hash = $2, expires_at = $3, price = $4,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $5 AND owner_id = $6`

	result, err := r.db.ExecContext(
		ctx,
		query,
		item.Name,
		item.PasswordHash,
		item.ExpiresAt,
		item.Price,
		item.ID,
		item.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	query := `DELETE FROM items WHERE id = $1 AND owner_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ItemType string

const (
	ItemTypeVideo    ItemType = "VIDEO"
	ItemTypeAudio    ItemType = "AUDIO"
	ItemTypePDF      ItemType = "PDF"
	ItemTypeDocument ItemType = "DOCUMENT"
	ItemTypeImage    ItemType = "IMAGE"
)

// Item представляет расшаренный файл пользователя
type Item struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Type         ItemType   `json:"type" db:"type"`
	FileURL      string     `json:"file_url" db:"file_url"`
	S3Key        string     `json:"-" db:"s3_key"`
	OwnerID      string     `json:"owner_id" db:"owner_id"`
	PasswordHash *string    `json:"-" db:"password_hash"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	Price        *int64     `json:"price,omitempty" db:"price"` // минорные единицы валюты
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

type ItemUpdate struct {
	Name      *string    `json:"name,omitempty"`
	Password  *string    `json:"password,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Price     *int64     `json:"price,omitempty"`
}

func (i *Item) IsPasswordProtected() bool {
	return i.PasswordHash != nil && *i.PasswordHash != ""
}

func (i *Item) IsPaid() bool {
	return i.Price != nil && *i.Price > 0
}

// IsExpired: срок строго раньше текущего момента
func (i *Item) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// DisplayPrice форматирует цену из минорных единиц, например 500 -> "5.00"
func (i *Item) DisplayPrice() string {
	if i.Price == nil {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(*i.Price)/100)
}

var mimeItemTypes = map[string]ItemType{
	"application/pdf": ItemTypePDF,
	"audio/":          ItemTypeAudio,
	"video/":          ItemTypeVideo,
	"image/":          ItemTypeImage,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ItemTypeDocument,
	"application/msword": ItemTypeDocument,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ItemTypeDocument,
	"application/vnd.ms-excel": ItemTypeDocument,
	"text/":                    ItemTypeDocument,
}

// ItemTypeFromMIME определяет категорию файла по MIME-типу,
// незнакомые типы считаются документами
func ItemTypeFromMIME(mimeType string) ItemType {
	for prefix, t := range mimeItemTypes {
		if strings.HasPrefix(mimeType, prefix) {
			return t
		}
	}
	return ItemTypeDocument
}

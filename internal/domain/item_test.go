package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestItemTypeFromMIME(t *testing.T) {
	tests := []struct {
		mime string
		want ItemType
	}{
		{"application/pdf", ItemTypePDF},
		{"audio/mpeg", ItemTypeAudio},
		{"video/mp4", ItemTypeVideo},
		{"image/png", ItemTypeImage},
		{"application/msword", ItemTypeDocument},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", ItemTypeDocument},
		{"text/plain", ItemTypeDocument},
		{"application/octet-stream", ItemTypeDocument},
		{"", ItemTypeDocument},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ItemTypeFromMIME(tt.mime), "mime %q", tt.mime)
	}
}

func TestItemIsExpired(t *testing.T) {
	now := time.Now()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Item{ExpiresAt: &past}).IsExpired(now))
	assert.False(t, (&Item{ExpiresAt: &future}).IsExpired(now))
	assert.False(t, (&Item{}).IsExpired(now))

	// граница: срок ровно сейчас еще не истек
	exact := now
	assert.False(t, (&Item{ExpiresAt: &exact}).IsExpired(now))
}

func TestItemDisplayPrice(t *testing.T) {
	price := int64(500)
	item := &Item{Price: &price}
	assert.Equal(t, "5.00", item.DisplayPrice())

	odd := int64(1234)
	assert.Equal(t, "12.34", (&Item{Price: &odd}).DisplayPrice())
	assert.Equal(t, "0.00", (&Item{}).DisplayPrice())
}

func TestItemFlags(t *testing.T) {
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	empty := ""
	zero := int64(0)
	price := int64(100)

	assert.True(t, (&Item{PasswordHash: &hash}).IsPasswordProtected())
	assert.False(t, (&Item{PasswordHash: &empty}).IsPasswordProtected())
	assert.False(t, (&Item{}).IsPasswordProtected())

	assert.True(t, (&Item{Price: &price}).IsPaid())
	assert.False(t, (&Item{Price: &zero}).IsPaid())
	assert.False(t, (&Item{}).IsPaid())
}

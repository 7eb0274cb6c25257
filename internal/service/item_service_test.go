package service

import (
	"testing"
	"time"

	"sharefile/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func baseItem() *domain.Item {
	return &domain.Item{
		ID:      uuid.New(),
		Name:    "report.pdf",
		Type:    domain.ItemTypePDF,
		OwnerID: "user-1",
	}
}

func TestApplyItemUpdate_Name(t *testing.T) {
	ent := domain.ResolveEntitlement(domain.PlanGold)

	item := baseItem()
	err := applyItemUpdate(item, ent, domain.ItemUpdate{Name: strPtr("new name")})
	require.NoError(t, err)
	assert.Equal(t, "new name", item.Name)

	item = baseItem()
	err = applyItemUpdate(item, ent, domain.ItemUpdate{Name: strPtr("")})
	assert.ErrorIs(t, err, ErrEmptyName)

	// Без поля в запросе имя не меняется
	item = baseItem()
	err = applyItemUpdate(item, ent, domain.ItemUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", item.Name)
}

func TestApplyItemUpdate_PasswordHashing(t *testing.T) {
	ent := domain.ResolveEntitlement(domain.PlanIron)

	item := baseItem()
	err := applyItemUpdate(item, ent, domain.ItemUpdate{Password: strPtr("secret")})
	require.NoError(t, err)
	require.NotNil(t, item.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*item.PasswordHash), []byte("secret")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(*item.PasswordHash), []byte("wrong")))
}

func TestApplyItemUpdate_PasswordClear(t *testing.T) {
	ent := domain.ResolveEntitlement(domain.PlanIron)

	item := baseItem()
	item.PasswordHash = strPtr("$2a$10$existing")

	err := applyItemUpdate(item, ent, domain.ItemUpdate{Password: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, item.PasswordHash)
}

func TestApplyItemUpdate_BronzeForcesProtectionsOff(t *testing.T) {
	ent := domain.ResolveEntitlement(domain.PlanBronze)

	// Даже если запрос вообще не трогает пароль и цену,
	// базовый тариф их очищает
	item := baseItem()
	item.PasswordHash = strPtr("$2a$10$existing")
	item.Price = int64Ptr(500)

	err := applyItemUpdate(item, ent, domain.ItemUpdate{Name: strPtr("renamed")})
	require.NoError(t, err)
	assert.Nil(t, item.PasswordHash)
	assert.Nil(t, item.Price)
	assert.Equal(t, "renamed", item.Name)

	// И попытка установить их игнорируется
	item = baseItem()
	err = applyItemUpdate(item, ent, domain.ItemUpdate{
		Password: strPtr("secret"),
		Price:    int64Ptr(1000),
	})
	require.NoError(t, err)
	assert.Nil(t, item.PasswordHash)
	assert.Nil(t, item.Price)
}

func TestApplyItemUpdate_Price(t *testing.T) {
	ent := domain.ResolveEntitlement(domain.PlanGold)

	item := baseItem()
	err := applyItemUpdate(item, ent, domain.ItemUpdate{Price: int64Ptr(990)})
	require.NoError(t, err)
	require.NotNil(t, item.Price)
	assert.Equal(t, int64(990), *item.Price)

	// Ноль снимает цену
	err = applyItemUpdate(item, ent, domain.ItemUpdate{Price: int64Ptr(0)})
	require.NoError(t, err)
	assert.Nil(t, item.Price)

	// Отрицательная цена отклоняется
	err = applyItemUpdate(item, ent, domain.ItemUpdate{Price: int64Ptr(-100)})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestApplyItemUpdate_ExpiresAt(t *testing.T) {
	ent := domain.ResolveEntitlement(domain.PlanIron)
	deadline := time.Now().Add(24 * time.Hour).UTC()

	item := baseItem()
	err := applyItemUpdate(item, ent, domain.ItemUpdate{ExpiresAt: timePtr(deadline)})
	require.NoError(t, err)
	require.NotNil(t, item.ExpiresAt)
	assert.True(t, item.ExpiresAt.Equal(deadline))

	// Нулевое время снимает срок действия
	err = applyItemUpdate(item, ent, domain.ItemUpdate{ExpiresAt: timePtr(time.Time{})})
	require.NoError(t, err)
	assert.Nil(t, item.ExpiresAt)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"sharefile/internal/domain"
	"sharefile/internal/repository"
	"sharefile/internal/service/payment"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Ошибки уровня сервисов
var (
	ErrNotFound           = errors.New("item not found")
	ErrItemNotPaid        = errors.New("item has no price")
	ErrNoConnectedAccount = errors.New("owner has no connected payment account")
)

// AccessService решает, что показать посетителю share-страницы:
// истекшую ссылку, запрос пароля, пейволл или сам файл
type AccessService struct {
	itemRepo    *repository.ItemRepository
	accountRepo *repository.AccountRepository
	payments    payment.Service
}

func NewAccessService(
	itemRepo *repository.ItemRepository,
	accountRepo *repository.AccountRepository,
	payments payment.Service,
) *AccessService {
	return &AccessService{
		itemRepo:    itemRepo,
		accountRepo: accountRepo,
		payments:    payments,
	}
}

// GetSharedItem возвращает файл по публичному ID share-ссылки
func (s *AccessService) GetSharedItem(ctx context.Context, itemID uuid.UUID) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	return item, nil
}

// EvaluateByID загружает файл и аккаунт владельца и вычисляет решение о доступе
func (s *AccessService) EvaluateByID(ctx context.Context, itemID uuid.UUID, credential string, sessionID string) (*domain.AccessDecision, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	owner, err := s.accountRepo.GetOrCreate(ctx, item.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner account: %w", err)
	}

	return s.Evaluate(ctx, item, owner, credential, sessionID), nil
}

// Evaluate применяет правила доступа в строгом порядке:
// истекший срок, затем пароль, затем оплата. Первое сработавшее правило
// определяет результат.
func (s *AccessService) Evaluate(ctx context.Context, item *domain.Item, owner *domain.Account, credential string, sessionID string) *domain.AccessDecision {
	decision := &domain.AccessDecision{
		Name:              item.Name,
		Type:              item.Type,
		PasswordProtected: item.IsPasswordProtected(),
		Paid:              item.IsPaid(),
	}

	// 1. Истекшая ссылка - терминальное состояние, дальше не проверяем
	if item.IsExpired(time.Now()) {
		decision.State = domain.AccessExpired
		return decision
	}

	// 2. Пароль сравнивается с текущим хэшем, смена пароля сразу
	// инвалидирует старые cookie
	if item.IsPasswordProtected() {
		if credential == "" || bcrypt.CompareHashAndPassword([]byte(*item.PasswordHash), []byte(credential)) != nil {
			decision.State = domain.AccessPasswordRequired
			return decision
		}
	}

	// 3. Пейволл: статус оплаты запрашивается у Stripe заново при каждом
	// запросе, любой сбой проверки означает "не оплачено"
	if item.IsPaid() && !s.isPurchased(ctx, item, owner, sessionID) {
		ent := domain.ResolveEntitlement(owner.Plan)
		decision.State = domain.AccessPaymentRequired
		decision.Price = *item.Price
		decision.PriceDisplay = item.DisplayPrice()
		decision.FeePercent = ent.FeePercent
		return decision
	}

	decision.State = domain.AccessGranted
	decision.FileURL = item.FileURL
	return decision
}

func (s *AccessService) isPurchased(ctx context.Context, item *domain.Item, owner *domain.Account, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	if owner.StripeAccountID == nil || *owner.StripeAccountID == "" {
		return false
	}

	status, err := s.payments.VerifyCheckoutSession(ctx, sessionID, *owner.StripeAccountID)
	if err != nil {
		log.Printf("[Access] Failed to verify checkout session %s for item %s: %v", sessionID, item.ID, err)
		return false
	}

	return status == payment.StatusCompleted
}

// StartPurchase создает платежную сессию для покупки платного файла
func (s *AccessService) StartPurchase(ctx context.Context, itemID uuid.UUID) (string, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load item: %w", err)
	}

	if !item.IsPaid() {
		return "", ErrItemNotPaid
	}

	owner, err := s.accountRepo.GetOrCreate(ctx, item.OwnerID)
	if err != nil {
		return "", fmt.Errorf("failed to load owner account: %w", err)
	}

	if owner.StripeAccountID == nil || *owner.StripeAccountID == "" {
		return "", ErrNoConnectedAccount
	}

	ent := domain.ResolveEntitlement(owner.Plan)
	fee := ent.ApplicationFee(*item.Price)

	url, err := s.payments.CreateItemCheckout(ctx, item, *owner.StripeAccountID, fee)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout: %w", err)
	}

	return url, nil
}

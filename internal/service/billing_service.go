package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"sharefile/internal/domain"
	"sharefile/internal/repository"
	"sharefile/internal/service/payment"

	"github.com/stripe/stripe-go/v81"
)

var (
	ErrUnknownPrice     = errors.New("unknown subscription price")
	ErrAlreadyConnected = errors.New("payment account already connected")
)

// BillingService обслуживает смену тарифов: checkout на подписку,
// подключение аккаунта продавца и обработку вебхуков Stripe
type BillingService struct {
	accountRepo *repository.AccountRepository
	payments    payment.Service
	cfg         *payment.Config
}

func NewBillingService(
	accountRepo *repository.AccountRepository,
	payments payment.Service,
	cfg *payment.Config,
) *BillingService {
	return &BillingService{
		accountRepo: accountRepo,
		payments:    payments,
		cfg:         cfg,
	}
}

// GetPlan возвращает аккаунт пользователя и лимиты его тарифа
func (s *BillingService) GetPlan(ctx context.Context, userID string) (*domain.Account, domain.Entitlement, error) {
	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, domain.Entitlement{}, fmt.Errorf("failed to get account: %w", err)
	}

	return account, domain.ResolveEntitlement(account.Plan), nil
}

// UpgradePlan создает подписочную checkout-сессию для выбранного тарифа.
// Сам тариф меняется только после подтверждения через вебхук.
func (s *BillingService) UpgradePlan(ctx context.Context, userID string, priceID string) (string, error) {
	tier, ok := s.cfg.PlanForPrice(priceID)
	if !ok {
		return "", ErrUnknownPrice
	}

	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get account: %w", err)
	}

	customerID := ""
	if account.StripeCustomerID != nil {
		customerID = *account.StripeCustomerID
	}

	if customerID == "" {
		customerID, err = s.payments.CreateCustomer(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("failed to create customer: %w", err)
		}
		if err := s.accountRepo.SetStripeCustomerID(ctx, userID, customerID); err != nil {
			return "", fmt.Errorf("failed to save customer id: %w", err)
		}
	}

	url, err := s.payments.CreatePlanCheckout(ctx, customerID, priceID, tier)
	if err != nil {
		return "", fmt.Errorf("failed to create plan checkout: %w", err)
	}

	return url, nil
}

// ConnectAccount создает connected-аккаунт продавца и возвращает
// ссылку на онбординг Stripe
func (s *BillingService) ConnectAccount(ctx context.Context, userID string) (string, error) {
	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get account: %w", err)
	}

	if account.StripeAccountID != nil && *account.StripeAccountID != "" {
		return "", ErrAlreadyConnected
	}

	accountID, onboardingURL, err := s.payments.CreateConnectedAccount(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to create connected account: %w", err)
	}

	if err := s.accountRepo.SetStripeAccountID(ctx, userID, accountID); err != nil {
		return "", fmt.Errorf("failed to save connected account id: %w", err)
	}

	return onboardingURL, nil
}

// HandleWebhookEvent применяет событие Stripe к тарифу аккаунта.
// Неизвестные события игнорируются.
func (s *BillingService) HandleWebhookEvent(ctx context.Context, event stripe.Event) error {
	customerID, plan, ok, err := s.planChangeFromEvent(event)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return s.updatePlanByCustomer(ctx, customerID, plan)
}

// planChangeFromEvent извлекает из события Stripe смену тарифа.
// ok = false означает, что событие не требует изменений.
func (s *BillingService) planChangeFromEvent(event stripe.Event) (customerID string, plan domain.PlanTier, ok bool, err error) {
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return "", "", false, fmt.Errorf("failed to parse checkout session: %w", err)
		}

		planMeta := session.Metadata["plan"]
		if planMeta == "" || session.Customer == nil {
			log.Printf("[Billing] Checkout session %s without plan metadata, skipping", session.ID)
			return "", "", false, nil
		}

		return session.Customer.ID, domain.PlanTier(planMeta), true, nil

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return "", "", false, fmt.Errorf("failed to parse subscription: %w", err)
		}
		if sub.Customer == nil {
			return "", "", false, fmt.Errorf("subscription %s has no customer", sub.ID)
		}

		// Неактивная подписка понижает тариф до базового
		if sub.Status != stripe.SubscriptionStatusActive {
			return sub.Customer.ID, domain.PlanBronze, true, nil
		}

		if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
			return "", "", false, fmt.Errorf("subscription %s has no price", sub.ID)
		}

		tier, found := s.cfg.PlanForPrice(sub.Items.Data[0].Price.ID)
		if !found {
			log.Printf("[Billing] Unknown price %s in subscription %s, skipping", sub.Items.Data[0].Price.ID, sub.ID)
			return "", "", false, nil
		}

		return sub.Customer.ID, tier, true, nil

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return "", "", false, fmt.Errorf("failed to parse subscription: %w", err)
		}
		if sub.Customer == nil {
			return "", "", false, fmt.Errorf("subscription %s has no customer", sub.ID)
		}

		return sub.Customer.ID, domain.PlanBronze, true, nil

	default:
		log.Printf("[Billing] Unhandled event type %s", event.Type)
		return "", "", false, nil
	}
}

func (s *BillingService) updatePlanByCustomer(ctx context.Context, customerID string, plan domain.PlanTier) error {
	if err := s.accountRepo.UpdatePlanByCustomerID(ctx, customerID, plan); err != nil {
		return fmt.Errorf("failed to update plan for customer %s: %w", customerID, err)
	}

	log.Printf("[Billing] Customer %s switched to plan %s", customerID, plan)
	return nil
}

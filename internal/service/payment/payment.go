package payment

import (
	"context"

	"sharefile/internal/domain"

	"github.com/stripe/stripe-go/v81"
)

// Status - результат проверки оплаты checkout-сессии.
// Любая ошибка проверки трактуется вызывающим кодом как "не оплачено".
type Status string

const (
	StatusCompleted    Status = "completed"
	StatusIncomplete   Status = "incomplete"
	StatusUnverifiable Status = "unverifiable"
)

// Service определяет интерфейс платежной платформы
type Service interface {
	// VerifyCheckoutSession проверяет статус оплаты на подключенном аккаунте владельца.
	// Статус запрашивается заново при каждом вызове и не кэшируется.
	VerifyCheckoutSession(ctx context.Context, sessionID string, stripeAccount string) (Status, error)

	// CreateItemCheckout создает платежную сессию для покупки файла,
	// комиссия платформы удерживается через application fee
	CreateItemCheckout(ctx context.Context, item *domain.Item, stripeAccount string, applicationFee int64) (string, error)

	// CreatePlanCheckout создает подписочную сессию для смены тарифа
	CreatePlanCheckout(ctx context.Context, customerID string, priceID string, tier domain.PlanTier) (string, error)

	// CreateCustomer регистрирует пользователя как покупателя подписки
	CreateCustomer(ctx context.Context, userID string) (string, error)

	// CreateConnectedAccount создает connected-аккаунт продавца и
	// возвращает его ID вместе со ссылкой на онбординг
	CreateConnectedAccount(ctx context.Context, userID string) (accountID string, onboardingURL string, err error)

	// ConstructEvent проверяет подпись вебхука
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

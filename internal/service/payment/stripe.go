package payment

import (
	"context"
	"fmt"
	"log"

	"sharefile/internal/domain"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

// Client реализует Service поверх Stripe API
type Client struct {
	api     *client.API
	cfg     *Config
	baseURL string
}

func NewClient(cfg *Config, baseURL string) *Client {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &Client{
		api:     api,
		cfg:     cfg,
		baseURL: baseURL,
	}
}

// VerifyCheckoutSession запрашивает статус checkout-сессии на подключенном
// аккаунте владельца. Ошибка запроса означает, что оплату подтвердить нельзя.
func (c *Client) VerifyCheckoutSession(ctx context.Context, sessionID string, stripeAccount string) (Status, error) {
	if sessionID == "" {
		return StatusUnverifiable, fmt.Errorf("session id is required")
	}
	if stripeAccount == "" {
		return StatusUnverifiable, fmt.Errorf("stripe account is required")
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.SetStripeAccount(stripeAccount)

	sess, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return StatusUnverifiable, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	if sess.Status == stripe.CheckoutSessionStatusComplete {
		return StatusCompleted, nil
	}

	return StatusIncomplete, nil
}

// CreateItemCheckout создает платежную сессию для покупки файла.
// Сессия создается на connected-аккаунте владельца, платформа удерживает
// application fee по тарифу владельца.
func (c *Client) CreateItemCheckout(ctx context.Context, item *domain.Item, stripeAccount string, applicationFee int64) (string, error) {
	if !item.IsPaid() {
		return "", fmt.Errorf("item has no price")
	}
	if stripeAccount == "" {
		return "", fmt.Errorf("owner has no connected stripe account")
	}

	shareURL := fmt.Sprintf("%s/v1/share/%s", c.baseURL, item.ID)

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(*item.Price),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(item.Name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(applicationFee),
		},
		SuccessURL: stripe.String(shareURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(shareURL),
	}
	params.Context = ctx
	params.SetStripeAccount(stripeAccount)

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	if sess.URL == "" {
		return "", fmt.Errorf("checkout session has no url")
	}

	return sess.URL, nil
}

// CreatePlanCheckout создает подписочную сессию для перехода на платный тариф
func (c *Client) CreatePlanCheckout(ctx context.Context, customerID string, priceID string, tier domain.PlanTier) (string, error) {
	if customerID == "" {
		return "", fmt.Errorf("customer id is required")
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.baseURL + "/v1/billing/plan"),
		CancelURL:  stripe.String(c.baseURL + "/v1/billing/plan"),
	}
	params.Context = ctx
	params.AddMetadata("plan", string(tier))

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create subscription checkout: %w", err)
	}

	if sess.URL == "" {
		return "", fmt.Errorf("checkout session has no url")
	}

	return sess.URL, nil
}

// CreateCustomer создает Stripe customer для пользователя
func (c *Client) CreateCustomer(ctx context.Context, userID string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	customer, err := c.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}

	return customer.ID, nil
}

// CreateConnectedAccount создает express-аккаунт продавца и ссылку на онбординг
func (c *Client) CreateConnectedAccount(ctx context.Context, userID string) (string, string, error) {
	accountParams := &stripe.AccountParams{
		Type: stripe.String(string(stripe.AccountTypeExpress)),
	}
	accountParams.Context = ctx
	accountParams.AddMetadata("user_id", userID)

	account, err := c.api.Accounts.New(accountParams)
	if err != nil {
		return "", "", fmt.Errorf("failed to create connected account: %w", err)
	}

	linkParams := &stripe.AccountLinkParams{
		Account:    stripe.String(account.ID),
		RefreshURL: stripe.String(c.baseURL + "/v1/billing/connect"),
		ReturnURL:  stripe.String(c.baseURL + "/v1/billing/plan"),
		Type:       stripe.String("account_onboarding"),
	}
	linkParams.Context = ctx

	link, err := c.api.AccountLinks.New(linkParams)
	if err != nil {
		return "", "", fmt.Errorf("failed to create account link: %w", err)
	}

	log.Printf("[Payment] Created connected account %s for user %s", account.ID, userID)
	return account.ID, link.URL, nil
}

// ConstructEvent проверяет подпись вебхука Stripe
func (c *Client) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, c.cfg.WebhookSecret)
}

package domain

import "time"

// Account связывает пользователя auth-сервиса с тарифом и Stripe
type Account struct {
	UserID           string    `json:"user_id" db:"user_id"`
	Plan             PlanTier  `json:"plan" db:"plan"`
	StripeCustomerID *string   `json:"-" db:"stripe_customer_id"`
	StripeAccountID  *string   `json:"-" db:"stripe_account_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

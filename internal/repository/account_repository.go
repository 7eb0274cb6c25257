package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sharefile/internal/domain"

	"github.com/jmoiron/sqlx"
)

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetOrCreate возвращает аккаунт пользователя, создавая запись с тарифом
// BRONZE при первом обращении
func (r *AccountRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Account, error) {
	query := `
        INSERT INTO accounts (user_id, plan, created_at, updated_at)
        VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
        ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
        RETURNING *`

	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, userID, domain.PlanBronze); err != nil {
		return nil, fmt.Errorf("failed to get or create account: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT * FROM accounts WHERE user_id = $1`

	if err := r.db.GetContext(ctx, &account, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) GetByCustomerID(ctx context.Context, customerID string) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT * FROM accounts WHERE stripe_customer_id = $1`

	if err := r.db.GetContext(ctx, &account, query, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by customer id: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) UpdatePlan(ctx context.Context, userID string, plan domain.PlanTier) error {
	query := `
        UPDATE accounts
        SET plan = $1, updated_at = CURRENT_TIMESTAMP
        WHERE user_id = $2`

	result, err := r.db.ExecContext(ctx, query, plan, userID)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
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

// UpdatePlanByCustomerID меняет тариф по Stripe customer (для вебхуков)
func (r *AccountRepository) UpdatePlanByCustomerID(ctx context.Context, customerID string, plan domain.PlanTier) error {
	query := `
        UPDATE accounts
        SET plan = $1, updated_at = CURRENT_TIMESTAMP
        WHERE stripe_customer_id = $2`

	result, err := r.db.ExecContext(ctx, query, plan, customerID)
	if err != nil {
		return fmt.Errorf("failed to update plan by customer id: %w", err)
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

func (r *AccountRepository) SetStripeCustomerID(ctx context.Context, userID string, customerID string) error {
	query := `
        UPDATE accounts
        SET stripe_customer_id = $1, updated_at = CURRENT_TIMESTAMP
        WHERE user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, customerID, userID); err != nil {
		return fmt.Errorf("failed to set stripe customer id: %w", err)
	}

	return nil
}

func (r *AccountRepository) SetStripeAccountID(ctx context.Context, userID string, accountID string) error {
	query := `
        UPDATE accounts
        SET stripe_account_id = $1, updated_at = CURRENT_TIMESTAMP
        WHERE user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, accountID, userID); err != nil {
		return fmt.Errorf("failed to set stripe account id: %w", err)
	}

	return nil
}

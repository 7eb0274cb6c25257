package payment

import (
	"fmt"

	"sharefile/internal/domain"

	"github.com/spf13/viper"
)

type Config struct {
	SecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	WebhookSecret string `mapstructure:"STRIPE_WEBHOOKS_SECRET"`

	IronPriceID       string `mapstructure:"IRON_PLAN_PRICE_ID"`
	IronYearlyPriceID string `mapstructure:"IRON_PLAN_YEARLY_PRICE_ID"`
	GoldPriceID       string `mapstructure:"GOLD_PLAN_PRICE_ID"`
	GoldYearlyPriceID string `mapstructure:"GOLD_PLAN_YEARLY_PRICE_ID"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.BindEnv("STRIPE_SECRET_KEY")
	v.BindEnv("STRIPE_WEBHOOKS_SECRET")
	v.BindEnv("IRON_PLAN_PRICE_ID")
	v.BindEnv("IRON_PLAN_YEARLY_PRICE_ID")
	v.BindEnv("GOLD_PLAN_PRICE_ID")
	v.BindEnv("GOLD_PLAN_YEARLY_PRICE_ID")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: using only environment variables: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = v.GetString("STRIPE_SECRET_KEY")
	}
	if cfg.WebhookSecret == "" {
		cfg.WebhookSecret = v.GetString("STRIPE_WEBHOOKS_SECRET")
	}

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOKS_SECRET is required")
	}

	return &cfg, nil
}

// PlanForPrice сопоставляет price ID подписки с тарифом
func (c *Config) PlanForPrice(priceID string) (domain.PlanTier, bool) {
	if priceID == "" {
		return "", false
	}

	switch priceID {
	case c.IronPriceID, c.IronYearlyPriceID:
		return domain.PlanIron, true
	case c.GoldPriceID, c.GoldYearlyPriceID:
		return domain.PlanGold, true
	}

	return "", false
}

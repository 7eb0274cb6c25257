package payment

import (
	"testing"

	"sharefile/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPlanForPrice(t *testing.T) {
	cfg := &Config{
		IronPriceID:       "price_iron_m",
		IronYearlyPriceID: "price_iron_y",
		GoldPriceID:       "price_gold_m",
		GoldYearlyPriceID: "price_gold_y",
	}

	tests := []struct {
		priceID  string
		wantTier domain.PlanTier
		wantOK   bool
	}{
		{"price_iron_m", domain.PlanIron, true},
		{"price_iron_y", domain.PlanIron, true},
		{"price_gold_m", domain.PlanGold, true},
		{"price_gold_y", domain.PlanGold, true},
		{"price_unknown", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		tier, ok := cfg.PlanForPrice(tt.priceID)
		assert.Equal(t, tt.wantOK, ok, "price %q", tt.priceID)
		assert.Equal(t, tt.wantTier, tier, "price %q", tt.priceID)
	}
}

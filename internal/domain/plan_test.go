package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEntitlement(t *testing.T) {
	tests := []struct {
		name string
		tier PlanTier
		want Entitlement
	}{
		{
			name: "bronze",
			tier: PlanBronze,
			want: Entitlement{Tier: PlanBronze, MaxItems: 1, CanAddPassword: false, CanAddPricing: false, FeePercent: 10},
		},
		{
			name: "iron",
			tier: PlanIron,
			want: Entitlement{Tier: PlanIron, MaxItems: 10, CanAddPassword: true, CanAddPricing: true, FeePercent: 5},
		},
		{
			name: "gold",
			tier: PlanGold,
			want: Entitlement{Tier: PlanGold, MaxItems: 500, CanAddPassword: true, CanAddPricing: true, FeePercent: 3},
		},
		{
			name: "unknown tier falls back to bronze",
			tier: PlanTier("PLATINUM"),
			want: Entitlement{Tier: PlanBronze, MaxItems: 1, CanAddPassword: false, CanAddPricing: false, FeePercent: 10},
		},
		{
			name: "empty tier falls back to bronze",
			tier: PlanTier(""),
			want: Entitlement{Tier: PlanBronze, MaxItems: 1, CanAddPassword: false, CanAddPricing: false, FeePercent: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveEntitlement(tt.tier))
		})
	}
}

func TestEntitlementAllowsUpload(t *testing.T) {
	ent := ResolveEntitlement(PlanIron)

	assert.True(t, ent.AllowsUpload(0))
	assert.True(t, ent.AllowsUpload(9))
	// ровно на лимите загрузка запрещена
	assert.False(t, ent.AllowsUpload(10))
	assert.False(t, ent.AllowsUpload(11))

	bronze := ResolveEntitlement(PlanBronze)
	assert.True(t, bronze.AllowsUpload(0))
	assert.False(t, bronze.AllowsUpload(1))
}

func TestEntitlementApplicationFee(t *testing.T) {
	tests := []struct {
		tier  PlanTier
		price int64
		want  int64
	}{
		{PlanBronze, 500, 50},  // 10%
		{PlanIron, 500, 25},    // 5%
		{PlanGold, 500, 15},    // 3%
		{PlanGold, 99, 3},      // 2.97 округляется до 3
		{PlanIron, 10, 1},      // 0.5 округляется вверх
	}

	for _, tt := range tests {
		ent := ResolveEntitlement(tt.tier)
		assert.Equal(t, tt.want, ent.ApplicationFee(tt.price), "tier %s price %d", tt.tier, tt.price)
	}
}

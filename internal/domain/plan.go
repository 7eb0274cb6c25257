package domain

type PlanTier string

const (
	PlanBronze PlanTier = "BRONZE"
	PlanIron   PlanTier = "IRON"
	PlanGold   PlanTier = "GOLD"
)

// Entitlement описывает лимиты и возможности тарифного плана
type Entitlement struct {
	Tier           PlanTier `json:"tier"`
	MaxItems       int      `json:"max_items"`
	CanAddPassword bool     `json:"can_add_password"`
	CanAddPricing  bool     `json:"can_add_pricing"`
	FeePercent     int64    `json:"fee_percent"`
}

// Таблица тарифов статическая, меняется только вместе с кодом
var planEntitlements = map[PlanTier]Entitlement{
	PlanBronze: {
		Tier:           PlanBronze,
		MaxItems:       1,
		CanAddPassword: false,
		CanAddPricing:  false,
		FeePercent:     10,
	},
	PlanIron: {
		Tier:           PlanIron,
		MaxItems:       10,
		CanAddPassword: true,
		CanAddPricing:  true,
		FeePercent:     5,
	},
	PlanGold: {
		Tier:           PlanGold,
		MaxItems:       500,
		CanAddPassword: true,
		CanAddPricing:  true,
		FeePercent:     3,
	},
}

// ResolveEntitlement возвращает лимиты для тарифа.
// Неизвестный или пустой тариф трактуется как BRONZE.
func ResolveEntitlement(tier PlanTier) Entitlement {
	if ent, ok := planEntitlements[tier]; ok {
		return ent
	}
	return planEntitlements[PlanBronze]
}

// AllowsUpload проверяет, можно ли загрузить еще один файл при текущем количестве
func (e Entitlement) AllowsUpload(currentCount int) bool {
	return currentCount < e.MaxItems
}

// ApplicationFee считает комиссию платформы в минорных единицах валюты
func (e Entitlement) ApplicationFee(price int64) int64 {
	return (price*e.FeePercent + 50) / 100
}

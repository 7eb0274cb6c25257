package service

import (
	"encoding/json"
	"testing"

	"sharefile/internal/domain"
	"sharefile/internal/service/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
)

func billingForTests() *BillingService {
	cfg := &payment.Config{
		IronPriceID: "price_iron_monthly",
		GoldPriceID: "price_gold_monthly",
	}
	return NewBillingService(nil, &fakePayments{}, cfg)
}

func stripeEvent(eventType string, payload string) stripe.Event {
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: json.RawMessage(payload)},
	}
}

func TestPlanChangeFromCheckoutCompleted(t *testing.T) {
	svc := billingForTests()

	event := stripeEvent("checkout.session.completed",
		`{"id":"cs_1","customer":{"id":"cus_1"},"metadata":{"plan":"GOLD"}}`)

	customerID, plan, ok, err := svc.planChangeFromEvent(event)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cus_1", customerID)
	assert.Equal(t, domain.PlanGold, plan)
}

func TestPlanChangeFromCheckoutWithoutMetadata(t *testing.T) {
	svc := billingForTests()

	// Checkout за покупку файла, а не за подписку: метаданных тарифа нет
	event := stripeEvent("checkout.session.completed",
		`{"id":"cs_2","customer":{"id":"cus_1"}}`)

	_, _, ok, err := svc.planChangeFromEvent(event)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlanChangeFromSubscriptionUpdated(t *testing.T) {
	svc := billingForTests()

	tests := []struct {
		name    string
		payload string
		want    domain.PlanTier
		ok      bool
	}{
		{
			"active subscription maps price to plan",
			`{"id":"sub_1","customer":{"id":"cus_1"},"status":"active","items":{"data":[{"price":{"id":"price_iron_monthly"}}]}}`,
			domain.PlanIron,
			true,
		},
		{
			"canceled subscription downgrades",
			`{"id":"sub_1","customer":{"id":"cus_1"},"status":"canceled","items":{"data":[{"price":{"id":"price_gold_monthly"}}]}}`,
			domain.PlanBronze,
			true,
		},
		{
			"past due downgrades",
			`{"id":"sub_1","customer":{"id":"cus_1"},"status":"past_due","items":{"data":[{"price":{"id":"price_gold_monthly"}}]}}`,
			domain.PlanBronze,
			true,
		},
		{
			"unknown price is ignored",
			`{"id":"sub_1","customer":{"id":"cus_1"},"status":"active","items":{"data":[{"price":{"id":"price_other"}}]}}`,
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := stripeEvent("customer.subscription.updated", tt.payload)

			customerID, plan, ok, err := svc.planChangeFromEvent(event)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, "cus_1", customerID)
				assert.Equal(t, tt.want, plan)
			}
		})
	}
}

func TestPlanChangeFromSubscriptionDeleted(t *testing.T) {
	svc := billingForTests()

	event := stripeEvent("customer.subscription.deleted",
		`{"id":"sub_1","customer":{"id":"cus_1"},"status":"canceled"}`)

	customerID, plan, ok, err := svc.planChangeFromEvent(event)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cus_1", customerID)
	assert.Equal(t, domain.PlanBronze, plan)
}

func TestPlanChangeFromUnknownEvent(t *testing.T) {
	svc := billingForTests()

	event := stripeEvent("invoice.paid", `{}`)

	_, _, ok, err := svc.planChangeFromEvent(event)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlanChangeFromMalformedPayload(t *testing.T) {
	svc := billingForTests()

	event := stripeEvent("customer.subscription.updated", `{not json`)

	_, _, _, err := svc.planChangeFromEvent(event)
	assert.Error(t, err)
}

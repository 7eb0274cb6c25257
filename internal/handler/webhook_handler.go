package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"sharefile/internal/service"
	"sharefile/internal/service/payment"
)

const maxWebhookBody = 64 * 1024

type WebhookHandler struct {
	billingService *service.BillingService
	payments       payment.Service
}

func NewWebhookHandler(billingService *service.BillingService, payments payment.Service) *WebhookHandler {
	return &WebhookHandler{
		billingService: billingService,
		payments:       payments,
	}
}

// HandleStripeWebhook принимает события Stripe о подписках.
// Ошибка обработки логируется, но событие подтверждается:
// повторную доставку решает сам Stripe.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		log.Printf("[Webhook] Failed to read body: %v", err)
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	event, err := h.payments.ConstructEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Printf("[Webhook] Invalid signature: %v", err)
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	if err := h.billingService.HandleWebhookEvent(r.Context(), event); err != nil {
		log.Printf("[Webhook] Failed to handle event %s: %v", event.Type, err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"received": true})
}

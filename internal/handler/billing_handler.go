package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"sharefile/internal/auth"
	"sharefile/internal/domain"
	"sharefile/internal/service"
)

type BillingHandler struct {
	billingService *service.BillingService
}

func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// GetPlan возвращает текущий тариф пользователя и его лимиты
func (h *BillingHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	account, ent, err := h.billingService.GetPlan(r.Context(), userID)
	if err != nil {
		log.Printf("[GetPlan] Failed to get plan: %v", err)
		http.Error(w, "Failed to get plan", http.StatusInternalServerError)
		return
	}

	response := struct {
		Plan        domain.PlanTier    `json:"plan"`
		Entitlement domain.Entitlement `json:"entitlement"`
		Connected   bool               `json:"payments_connected"`
	}{
		Plan:        account.Plan,
		Entitlement: ent,
		Connected:   account.StripeAccountID != nil && *account.StripeAccountID != "",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// UpgradePlan создает подписочную checkout-сессию для выбранного тарифа
func (h *BillingHandler) UpgradePlan(w http.ResponseWriter, r *http.Request) {
	log.Printf("[UpgradePlan] Processing upgrade request")

	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		PriceID string `json:"price_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	url, err := h.billingService.UpgradePlan(r.Context(), userID, req.PriceID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPrice) {
			http.Error(w, "Unknown price", http.StatusBadRequest)
			return
		}
		log.Printf("[UpgradePlan] Failed to create upgrade checkout: %v", err)
		http.Error(w, "Failed to create checkout", http.StatusInternalServerError)
		return
	}

	log.Printf("[UpgradePlan] Created upgrade checkout for user %s", userID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}

// ConnectAccount запускает онбординг продавца в Stripe
func (h *BillingHandler) ConnectAccount(w http.ResponseWriter, r *http.Request) {
	log.Printf("[ConnectAccount] Processing connect request")

	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	url, err := h.billingService.ConnectAccount(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyConnected) {
			http.Error(w, "Payment account already connected", http.StatusConflict)
			return
		}
		log.Printf("[ConnectAccount] Failed to connect account: %v", err)
		http.Error(w, "Failed to connect payment account", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}

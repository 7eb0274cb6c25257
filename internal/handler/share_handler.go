package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"sharefile/internal/domain"
	"sharefile/internal/preview"
	"sharefile/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ShareHandler struct {
	accessService  *service.AccessService
	previewService *preview.Service
}

func NewShareHandler(accessService *service.AccessService, previewService *preview.Service) *ShareHandler {
	return &ShareHandler{
		accessService:  accessService,
		previewService: previewService,
	}
}

func passwordCookieName(itemID uuid.UUID) string {
	return fmt.Sprintf("share_password_%s", itemID)
}

func credentialFromCookie(r *http.Request, itemID uuid.UUID) string {
	cookie, err := r.Cookie(passwordCookieName(itemID))
	if err != nil {
		return ""
	}
	return cookie.Value
}

// GetShare - публичная точка доступа к расшаренному файлу.
// Решение пересчитывается при каждом запросе.
func (h *ShareHandler) GetShare(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	credential := credentialFromCookie(r, itemID)
	sessionID := r.URL.Query().Get("session_id")

	decision, err := h.accessService.EvaluateByID(r.Context(), itemID, credential, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		log.Printf("[GetShare] Failed to evaluate access for item %s: %v", itemID, err)
		http.Error(w, "Failed to load shared item", http.StatusInternalServerError)
		return
	}

	log.Printf("[GetShare] Item %s evaluated to state %s", itemID, decision.State)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decision)
}

// SetPassword сохраняет введенный посетителем пароль в cookie.
// Сам пароль проверяется только при следующем запросе share-страницы.
func (h *ShareHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Проверяем только существование файла
	if _, err := h.accessService.EvaluateByID(r.Context(), itemID, "", ""); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		log.Printf("[SetPassword] Failed to load item %s: %v", itemID, err)
		http.Error(w, "Failed to load shared item", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     passwordCookieName(itemID),
		Value:    req.Password,
		Path:     "/",
		HttpOnly: true,
	})

	w.WriteHeader(http.StatusNoContent)
}

// StartCheckout создает платежную сессию для покупки платного файла
func (h *ShareHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	url, err := h.accessService.StartPurchase(r.Context(), itemID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "Not found", http.StatusNotFound)
		case errors.Is(err, service.ErrItemNotPaid):
			http.Error(w, "Item is not paid", http.StatusConflict)
		case errors.Is(err, service.ErrNoConnectedAccount):
			http.Error(w, "Owner cannot accept payments", http.StatusConflict)
		default:
			log.Printf("[StartCheckout] Failed to create checkout for item %s: %v", itemID, err)
			http.Error(w, "Failed to create checkout", http.StatusInternalServerError)
		}
		return
	}

	log.Printf("[StartCheckout] Created checkout session for item %s", itemID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}

// GetPreview отдает уменьшенную копию изображения.
// Превью доступно только когда сам файл доступен.
func (h *ShareHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	credential := credentialFromCookie(r, itemID)
	sessionID := r.URL.Query().Get("session_id")

	decision, err := h.accessService.EvaluateByID(r.Context(), itemID, credential, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		log.Printf("[GetPreview] Failed to evaluate access for item %s: %v", itemID, err)
		http.Error(w, "Failed to load shared item", http.StatusInternalServerError)
		return
	}

	if decision.State != domain.AccessGranted {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	if decision.Type != domain.ItemTypeImage {
		http.Error(w, "Previews are only available for images", http.StatusBadRequest)
		return
	}

	item, err := h.accessService.GetSharedItem(r.Context(), itemID)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	data, err := h.previewService.GetOrGenerate(r.Context(), item)
	if err != nil {
		log.Printf("[GetPreview] Failed to generate preview for item %s: %v", itemID, err)
		http.Error(w, "Failed to generate preview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(data)
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"sharefile/internal/auth"
	"sharefile/internal/domain"
	"sharefile/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxUploadMemory = 32 << 20 // 32MB в памяти при разборе multipart

type ItemHandler struct {
	itemService *service.ItemService
}

func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

func (h *ItemHandler) UploadItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("[UploadItem] Processing upload request")

	userID, err := auth.VerifyToken(r)
	if err != nil {
		log.Printf("[UploadItem] Authentication failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		log.Printf("[UploadItem] Failed to parse multipart form: %v", err)
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Printf("[UploadItem] Missing file in form: %v", err)
		http.Error(w, "File is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	item, err := h.itemService.Upload(r.Context(), header, file, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadLimitReached):
			log.Printf("[UploadItem] Upload limit reached for user %s", userID)
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, service.ErrFileTooLarge):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("[UploadItem] Failed to upload: %v", err)
			http.Error(w, fmt.Sprintf("Failed to upload file: %v", err), http.StatusInternalServerError)
		}
		return
	}

	log.Printf("[UploadItem] Successfully uploaded item %s for user %s", item.ID, userID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := h.itemService.List(r.Context(), userID)
	if err != nil {
		log.Printf("[ListItems] Failed to list items: %v", err)
		http.Error(w, "Failed to list items", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	item, err := h.itemService.Get(r.Context(), itemID, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		log.Printf("[GetItem] Failed to get item: %v", err)
		http.Error(w, "Failed to get item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("[UpdateItem] Processing update request")

	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	var upd domain.ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		log.Printf("[UpdateItem] Failed to decode request body: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	item, err := h.itemService.Update(r.Context(), itemID, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "Item not found", http.StatusNotFound)
		case errors.Is(err, service.ErrEmptyName), errors.Is(err, service.ErrInvalidPrice):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("[UpdateItem] Failed to update item: %v", err)
			http.Error(w, "Failed to update item", http.StatusInternalServerError)
		}
		return
	}

	log.Printf("[UpdateItem] Successfully updated item %s", item.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("[DeleteItem] Processing delete request")

	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	if err := h.itemService.Delete(r.Context(), itemID, userID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		log.Printf("[DeleteItem] Failed to delete item: %v", err)
		http.Error(w, "Failed to delete item", http.StatusInternalServerError)
		return
	}

	log.Printf("[DeleteItem] Successfully deleted item %s", itemID)
	w.WriteHeader(http.StatusNoContent)
}

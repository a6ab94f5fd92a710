package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"banking-online/internal/model"
	"banking-online/internal/service"
)

// TransferHandler обрабатывает запросы, связанные с переводами средств
type TransferHandler struct {
	transferService *service.TransferService
	logger          *logrus.Logger
}

func NewTransferHandler(transferService *service.TransferService, logger *logrus.Logger) *TransferHandler {
	return &TransferHandler{transferService: transferService, logger: logger}
}

// RegisterRoutes регистрирует маршруты для работы с переводами
func (h *TransferHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.PerformTransfer).Methods("POST")
	router.HandleFunc("", h.GetTransfers).Methods("GET")
	router.HandleFunc("/{id}", h.GetTransfer).Methods("GET")
	router.HandleFunc("/{id}", h.UpdateTransfer).Methods("PUT")
	router.HandleFunc("/{id}", h.DeleteTransfer).Methods("DELETE")
}

// PerformTransfer обрабатывает запрос на перевод средств между счетами
func (h *TransferHandler) PerformTransfer(w http.ResponseWriter, r *http.Request) {
	var req model.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на перевод")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	transfer, err := h.transferService.PerformTransfer(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось выполнить перевод средств")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, transfer)
}

// GetTransfers обрабатывает запрос на получение всех записей о переводах
func (h *TransferHandler) GetTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.transferService.GetTransfers(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить список переводов")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, transfers)
}

// GetTransfer обрабатывает запрос на получение записи о переводе
func (h *TransferHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор перевода", http.StatusBadRequest)
		return
	}

	transfer, err := h.transferService.GetTransferByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, transfer)
}

// UpdateTransfer обрабатывает запрос на обновление записи о переводе.
// Балансы счетов при этом не пересчитываются.
func (h *TransferHandler) UpdateTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор перевода", http.StatusBadRequest)
		return
	}

	var req model.UpdateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на обновление перевода")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	transfer, err := h.transferService.UpdateTransfer(r.Context(), id, req)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось обновить запись о переводе")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, transfer)
}

// DeleteTransfer обрабатывает запрос на удаление перевода с возвратом средств
func (h *TransferHandler) DeleteTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор перевода", http.StatusBadRequest)
		return
	}

	if err := h.transferService.DeleteTransfer(r.Context(), id); err != nil {
		h.logger.WithError(err).Error("Не удалось удалить перевод")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

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

// AccountHandler обрабатывает запросы, связанные со счетами
type AccountHandler struct {
	accountService *service.AccountService // CRUD по счетам
	ledgerService  *service.LedgerService  // Прямые операции с балансом
	logger         *logrus.Logger
}

func NewAccountHandler(
	accountService *service.AccountService,
	ledgerService *service.LedgerService,
	logger *logrus.Logger,
) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		ledgerService:  ledgerService,
		logger:         logger,
	}
}

// RegisterRoutes регистрирует маршруты для работы со счетами
func (h *AccountHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.CreateAccount).Methods("POST")
	router.HandleFunc("", h.GetAccounts).Methods("GET")
	router.HandleFunc("/deposit", h.Deposit).Methods("POST")   // Пополнение счета
	router.HandleFunc("/withdraw", h.Withdraw).Methods("POST") // Снятие средств
	router.HandleFunc("/{id}", h.GetAccount).Methods("GET")
	router.HandleFunc("/{id}", h.UpdateAccount).Methods("PUT")
	router.HandleFunc("/{id}", h.DeleteAccount).Methods("DELETE")
}

// CreateAccount обрабатывает запрос на создание нового счета
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на создание счета")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	account, err := h.accountService.CreateAccount(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось создать счет")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, account)
}

// GetAccounts обрабатывает запрос на получение списка счетов
func (h *AccountHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.GetAccounts(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить список счетов")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, accounts)
}

// GetAccount обрабатывает запрос на получение счета по идентификатору
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор счета", http.StatusBadRequest)
		return
	}

	account, err := h.accountService.GetAccountByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, account)
}

// UpdateAccount обрабатывает запрос на обновление счета
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор счета", http.StatusBadRequest)
		return
	}

	var req model.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на обновление счета")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	account, err := h.accountService.UpdateAccount(r.Context(), id, req)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось обновить счет")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, account)
}

// DeleteAccount обрабатывает запрос на удаление счета.
// Отсутствие счета — не ошибка: в ответе deleted=false.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор счета", http.StatusBadRequest)
		return
	}

	deleted, err := h.accountService.DeleteAccount(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось удалить счет")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// Deposit обрабатывает запрос на пополнение счета
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req model.ChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на пополнение")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	result, err := h.ledgerService.Deposit(r.Context(), req.AccountID, req.Amount)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось пополнить счет")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Withdraw обрабатывает запрос на снятие средств
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req model.ChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на снятие")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	result, err := h.ledgerService.Withdraw(r.Context(), req.AccountID, req.Amount)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось снять средства")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

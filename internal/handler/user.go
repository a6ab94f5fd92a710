package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"banking-online/internal/model"
	"banking-online/internal/service"
)

// UserHandler обрабатывает запросы, связанные с пользователями
type UserHandler struct {
	userService *service.UserService
	logger      *logrus.Logger
}

func NewUserHandler(userService *service.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// RegisterRoutes регистрирует маршруты для работы с пользователями
func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.GetUsers).Methods("GET")
	router.HandleFunc("/{id}", h.GetUser).Methods("GET")
	router.HandleFunc("/{id}", h.UpdateUser).Methods("PUT")
	router.HandleFunc("/{id}", h.DeleteUser).Methods("DELETE")
	router.HandleFunc("/{id}/accounts", h.GetUserAccounts).Methods("GET")
	router.HandleFunc("/{id}/accounts", h.AddAccount).Methods("POST")
}

// GetUsers обрабатывает запрос на получение списка пользователей
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetUsers(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить список пользователей")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}

// GetUser обрабатывает запрос на получение пользователя по идентификатору
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор пользователя", http.StatusBadRequest)
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateUser обрабатывает запрос на обновление пользователя
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор пользователя", http.StatusBadRequest)
		return
	}

	var req model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на обновление пользователя")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), id, req)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось обновить пользователя")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// DeleteUser обрабатывает запрос на удаление пользователя.
// Отсутствие пользователя — не ошибка: в ответе deleted=false.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор пользователя", http.StatusBadRequest)
		return
	}

	deleted, err := h.userService.DeleteUser(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось удалить пользователя")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// GetUserAccounts обрабатывает запрос на получение счетов пользователя
func (h *UserHandler) GetUserAccounts(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор пользователя", http.StatusBadRequest)
		return
	}

	accounts, err := h.userService.GetUserAccounts(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить счета пользователя")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, accounts)
}

// AddAccount обрабатывает запрос на создание счета для пользователя
func (h *UserHandler) AddAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор пользователя", http.StatusBadRequest)
		return
	}

	var req struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на добавление счета")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	account, err := h.userService.AddAccountToUser(r.Context(), id, req.Balance)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось добавить счет пользователю")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, account)
}

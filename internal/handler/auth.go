package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"banking-online/internal/model"
	"banking-online/internal/service"
)

// AuthHandler обрабатывает запросы аутентификации
type AuthHandler struct {
	authService *service.AuthService
	logger      *logrus.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// RegisterRoutes регистрирует маршруты для аутентификации
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/signup", h.SignUp).Methods("POST")
	router.HandleFunc("/signin", h.SignIn).Methods("POST")
}

// SignUp обрабатывает запрос на регистрацию нового пользователя
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input model.SignUpInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать входные данные для регистрации")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := input.Validate(); err != nil {
		h.logger.WithError(err).Error("Ошибка валидации входных данных для регистрации")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.authService.SignUp(r.Context(), input)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось зарегистрировать пользователя")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response := map[string]interface{}{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// SignIn обрабатывает запрос на вход пользователя
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input model.SignInInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать входные данные для входа")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	token, err := h.authService.SignIn(r.Context(), input)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось войти в систему")
		http.Error(w, "Неверные учетные данные", http.StatusUnauthorized)
		return
	}

	response := map[string]string{
		"token": token,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

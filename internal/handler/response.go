package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"banking-online/internal/model"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondDomainError отображает доменные ошибки на HTTP статусы.
// Все четыре вида терминальны — повторов на стороне сервера нет.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrAccountNotFound),
		errors.Is(err, model.ErrTransferNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, model.ErrInvalidTransfer):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

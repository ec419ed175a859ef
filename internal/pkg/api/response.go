package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/mmart/internal/service"
	"github.com/RoyceAzure/lab/mmart/internal/token"
)

// Response 統一回應格式
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func SuccessJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

func ErrorJSON(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	msg := "internal server error"
	if err != nil && status < http.StatusInternalServerError {
		msg = err.Error()
	}
	json.NewEncoder(w).Encode(Response{Success: false, Error: msg})
}

// HandleServiceError 把 service 層的 sentinel error 對應到 HTTP status
func HandleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, service.ErrLocationNotFound),
		errors.Is(err, service.ErrBankCardNotFound),
		errors.Is(err, service.ErrBonusNotFound),
		errors.Is(err, service.ErrReferralNotFound),
		errors.Is(err, service.ErrProfileNotFound):
		ErrorJSON(w, http.StatusNotFound, err)
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidPercent):
		ErrorJSON(w, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrOrderNotEditable),
		errors.Is(err, service.ErrBonusAlreadyApproved),
		errors.Is(err, db.ErrCartConflict),
		errors.Is(err, db.ErrOrderNumberExhausted):
		ErrorJSON(w, http.StatusConflict, err)
	case errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrStockExhausted):
		ErrorJSON(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, token.ErrInvalidToken),
		errors.Is(err, token.ErrExpiredToken):
		ErrorJSON(w, http.StatusUnauthorized, err)
	default:
		ErrorJSON(w, http.StatusInternalServerError, err)
	}
}

// internal/handler/respond.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	appErrors "github.com/Gabrieexl/proyecto-calidad/internal/errors"
	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	var (
		customerNF *appErrors.ErrCustomerNotFound
		reportNF   *appErrors.ErrReportNotFound
	)
	switch {
	case errors.Is(err, appErrors.ErrValidation), errors.Is(err, appErrors.ErrDeleteNotConfirmed):
		return http.StatusBadRequest
	case errors.As(err, &customerNF), errors.As(err, &reportNF):
		return http.StatusNotFound
	case errors.Is(err, appErrors.ErrFetchInProgress):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes {"error": msg} with the status for err. Server-side
// failures are logged and their details kept out of the body.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status >= 500 {
		logging.OrNop(log).Error("request failed", zap.Int("status", status), zap.Error(err))
		msg = http.StatusText(status)
	}
	WriteJSON(w, status, map[string]string{"error": msg})
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rudro/videotube-backend/internal/domain"
)

// Envelope is the success shape every endpoint returns.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorEnvelope is the failure shape. The single conversion point below is the
// only place errors become HTTP responses.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// writeError maps a raised error onto the failure envelope. Typed domain
// errors keep their message; anything else becomes an opaque 500 and is
// logged with its cause.
func writeError(w http.ResponseWriter, err error) {
	status := domain.StatusCode(err)
	message := "Internal Server Error"

	var domErr *domain.Error
	if errors.As(err, &domErr) {
		message = domErr.Message
	} else {
		slog.Error("unhandled error", "error", err)
	}

	writeJSON(w, status, ErrorEnvelope{
		Success: false,
		Code:    status,
		Message: message,
	})
}

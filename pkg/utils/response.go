package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// Error codes returned in JSON error bodies.
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeModelUnavailable = "MODEL_UNAVAILABLE"
	ErrCodePredictionFailed = "PREDICTION_FAILED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// APIError is the body of every error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, map[string]APIError{
		"error": {Code: code, Message: message},
	})
}

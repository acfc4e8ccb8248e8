package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"

	"street-bites/pkg/domain"
	"street-bites/storefront-svc/internal/ratelimit"
	"street-bites/storefront-svc/internal/service"
	"street-bites/storefront-svc/internal/validation"
)

const customerStoreMessage = "Something went wrong, please try again in a moment"

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps service errors to status codes. Store failures on the
// admin surface are reported as such; customers get a generic message.
func writeError(w http.ResponseWriter, err error, admin bool) {
	var invalid *validation.Error
	var limited *ratelimit.Error

	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: invalid.Error(), Field: invalid.Field})
	case errors.As(err, &limited):
		w.Header().Set("Retry-After", retryAfter(limited))
		writeMessage(w, http.StatusTooManyRequests, "Too many requests, please try again later")
	case errors.Is(err, service.ErrTooManyAttempts):
		writeMessage(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCode):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, service.ErrStatusConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRequestResolved),
		errors.Is(err, service.ErrRequestExpired),
		errors.Is(err, service.ErrApprovalDisabled):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Printf("[http] store unavailable: %v", err)
		if admin {
			writeMessage(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		writeMessage(w, http.StatusInternalServerError, customerStoreMessage)
	default:
		log.Printf("[http] unexpected error: %v", err)
		if admin {
			writeMessage(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeMessage(w, http.StatusInternalServerError, customerStoreMessage)
	}
}

func retryAfter(err *ratelimit.Error) string {
	secs := int(math.Ceil(err.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success           bool   `json:"success,omitempty"`
	Message           string `json:"message,omitempty"`
	Error             string `json:"error,omitempty"`
	RemainingAttempts *int   `json:"remaining_attempts,omitempty"`
}

// SignupEnvelope wraps a successful verification.
type SignupEnvelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	User    *safeUser `json:"user"`
}

// safeUser is the public view of an account.
type safeUser struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
}

func toSafeUser(u *domain.User) *safeUser {
	if u == nil {
		return nil
	}
	return &safeUser{ID: u.UserID, Email: u.Email, EmailConfirmed: u.EmailConfirmed}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decode reads a bounded JSON body into v. It writes the 400 itself and
// reports whether the handler should continue.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// clientErrors are reported with their own wording; anything else is internal.
var clientErrors = []struct {
	target error
	status int
}{
	{domain.ErrBadRequest, http.StatusBadRequest},
	{domain.ErrNotFound, http.StatusBadRequest},
	{domain.ErrExpired, http.StatusBadRequest},
	{domain.ErrInvalidCode, http.StatusBadRequest},
	{domain.ErrConflict, http.StatusBadRequest},
	{domain.ErrRateLimited, http.StatusTooManyRequests},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests},
	{domain.ErrUpstreamRateLimited, http.StatusTooManyRequests},
	{domain.ErrUpstreamAuth, http.StatusInternalServerError},
}

// httpError maps a service error to its status and JSON body.
func httpError(w http.ResponseWriter, log *zerolog.Logger, err error) {
	var ice *domain.InvalidCodeError
	if errors.As(err, &ice) {
		remaining := ice.Remaining
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: ice.Error(), RemainingAttempts: &remaining})
		return
	}
	for _, ce := range clientErrors {
		if errors.Is(err, ce.target) {
			writeError(w, ce.status, userMessage(err, ce.target))
			return
		}
	}
	log.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// userMessage drops the trailing sentinel that services append with %w.
func userMessage(err, sentinel error) string {
	if msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error()); msg != "" {
		return msg
	}
	return sentinel.Error()
}

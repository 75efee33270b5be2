package handler

import (
	"net/http"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/application/otp"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"github.com/rs/zerolog"
)

// PasswordResetHandler serves the recovery code endpoints. Request always
// answers with the same body so callers cannot probe for accounts.
type PasswordResetHandler struct {
	svc otp.Service
	log *zerolog.Logger
}

func NewPasswordResetHandler(svc otp.Service, log *zerolog.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{svc: svc, log: log}
}

func (h *PasswordResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RequestRecovery(r.Context(), req); err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{
		Success: true,
		Message: "If an account exists for this email, a reset code has been sent",
	})
}

func (h *PasswordResetHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetConfirmRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.ConfirmRecovery(r.Context(), req); err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Password updated"})
}

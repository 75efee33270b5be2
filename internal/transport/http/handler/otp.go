package handler

import (
	"net/http"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/application/otp"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"github.com/rs/zerolog"
)

// OTPHandler serves the signup code endpoints.
type OTPHandler struct {
	svc otp.Service
	log *zerolog.Logger
}

func NewOTPHandler(svc otp.Service, log *zerolog.Logger) *OTPHandler {
	return &OTPHandler{svc: svc, log: log}
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueOTPRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.Issue(r.Context(), req); err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Verification code sent to your email"})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.Verify(r.Context(), req)
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, SignupEnvelope{
		Success: true,
		Message: "Email verified and account created",
		User:    toSafeUser(u),
	})
}

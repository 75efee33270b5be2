package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/application/consult"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"github.com/rs/zerolog"
)

// ConsultHandler relays consultation and chat requests to the AI upstream.
type ConsultHandler struct {
	svc consult.Service
	log *zerolog.Logger
}

func NewConsultHandler(svc consult.Service, log *zerolog.Logger) *ConsultHandler {
	return &ConsultHandler{svc: svc, log: log}
}

func (h *ConsultHandler) Consult(w http.ResponseWriter, r *http.Request) {
	var req domain.ConsultRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.svc.Consult(r.Context(), req)
	h.relay(w, out, err)
}

func (h *ConsultHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.svc.Chat(r.Context(), req)
	h.relay(w, out, err)
}

func (h *ConsultHandler) relay(w http.ResponseWriter, out json.RawMessage, err error) {
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

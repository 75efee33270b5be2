package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestResetRequest_AlwaysSameBody(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("RequestRecovery", mock.Anything, mock.Anything).Return(nil)
	h := NewPasswordResetHandler(svc, nopLogger())

	var bodies []string
	for _, email := range []string{"known@x.com", "unknown@x.com"} {
		rr := httptest.NewRecorder()
		h.Request(rr, jsonReq(t, "/v1/password-reset/request", domain.PasswordResetRequest{Email: email}))
		assert.Equal(t, http.StatusOK, rr.Code)
		bodies = append(bodies, rr.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
}

func TestResetConfirm(t *testing.T) {
	svc := &mockOTPSvc{}
	good := domain.PasswordResetConfirmRequest{Email: "a@x.com", OTP: "123456", NewPassword: "n3wpass"}
	bad := domain.PasswordResetConfirmRequest{Email: "a@x.com", OTP: "000000", NewPassword: "n3wpass"}
	svc.On("ConfirmRecovery", mock.Anything, good).Return(nil)
	svc.On("ConfirmRecovery", mock.Anything, bad).Return(fmt.Errorf("code expired: %w", domain.ErrExpired))
	h := NewPasswordResetHandler(svc, nopLogger())

	rr := httptest.NewRecorder()
	h.Confirm(rr, jsonReq(t, "/v1/password-reset/confirm", good))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeEnvelope(t, rr).Success)

	rr = httptest.NewRecorder()
	h.Confirm(rr, jsonReq(t, "/v1/password-reset/confirm", bad))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "code expired", decodeEnvelope(t, rr).Error)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) Issue(ctx context.Context, req domain.IssueOTPRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockOTPSvc) Verify(ctx context.Context, req domain.VerifyOTPRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOTPSvc) RequestRecovery(ctx context.Context, req domain.PasswordResetRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockOTPSvc) ConfirmRecovery(ctx context.Context, req domain.PasswordResetConfirmRequest) error {
	return m.Called(ctx, req).Error(0)
}

type mockConsultSvc struct{ mock.Mock }

func (m *mockConsultSvc) Consult(ctx context.Context, req domain.ConsultRequest) (json.RawMessage, error) {
	args := m.Called(ctx, req)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *mockConsultSvc) Chat(ctx context.Context, req domain.ChatRequest) (json.RawMessage, error) {
	args := m.Called(ctx, req)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

// --- helpers ---

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func jsonReq(t *testing.T, target string, v interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) MessageEnvelope {
	t.Helper()
	var env MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

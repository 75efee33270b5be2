package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/config"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/infrastructure/ai"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVerifications has no pending rows and accepts every write.
type stubVerifications struct{ inserted []*domain.Verification }

func (s *stubVerifications) Insert(_ context.Context, v *domain.Verification) error {
	s.inserted = append(s.inserted, v)
	return nil
}
func (s *stubVerifications) CountSince(context.Context, string, domain.Purpose, time.Time) (int, error) {
	return 0, nil
}
func (s *stubVerifications) LatestActive(context.Context, string, domain.Purpose) (*domain.Verification, error) {
	return nil, domain.ErrNotFound
}
func (s *stubVerifications) RetireActive(context.Context, string, domain.Purpose, domain.RetireReason, time.Time) error {
	return nil
}
func (s *stubVerifications) IncrementAttempts(context.Context, string) (int, error) { return 0, nil }
func (s *stubVerifications) Retire(context.Context, string, domain.RetireReason, time.Time) error {
	return nil
}

type stubUsers struct{}

func (stubUsers) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }
func (stubUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (stubUsers) Create(context.Context, *domain.User) error           { return nil }
func (stubUsers) UpdatePassword(context.Context, string, string) error { return nil }

type stubMailer struct{ sent []string }

func (m *stubMailer) SendEmail(to, _, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}

type stubAI struct{}

func (stubAI) Complete(context.Context, []ai.Message) (json.RawMessage, error) {
	return json.RawMessage(`{"ok":true}`), nil
}

func newTestRouter(t *testing.T) (http.Handler, *stubVerifications, *stubMailer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := zerolog.Nop()
	cfg := &config.Config{OTP: config.DefaultOTPPolicy(), AllowedOrigins: []string{"*"}}
	vr := &stubVerifications{}
	m := &stubMailer{}
	return NewRouter(ctx, cfg, &Deps{
		VerificationRepo: vr,
		UserRepo:         stubUsers{},
		Mailer:           m,
		AI:               stubAI{},
		Logger:           &log,
	}), vr, m
}

func TestRouter_HealthCheck(t *testing.T) {
	h, _, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "pong")
}

func TestRouter_CORSPreflight(t *testing.T) {
	h, _, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/otp/send", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type, apikey")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, rr.Body.String())
}

func TestRouter_BarePreflight(t *testing.T) {
	h, _, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/v1/otp/verify", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
}

func TestRouter_SendOTP(t *testing.T) {
	h, vr, m := newTestRouter(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/otp/send", strings.NewReader(`{"email":" A@X.com "}`))
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, vr.inserted, 1)
	assert.Equal(t, "a@x.com", vr.inserted[0].Email)
	assert.Equal(t, []string{"a@x.com"}, m.sent)
	assert.NotContains(t, rr.Body.String(), vr.inserted[0].Code)
}

func TestRouter_VerifyWithoutPendingCode(t *testing.T) {
	h, _, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/otp/verify",
		strings.NewReader(`{"email":"a@x.com","otp":"123456","password":"hunter22"}`))
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "no pending verification")
}

func TestRouter_ChatRelay(t *testing.T) {
	h, _, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/ai/chat",
		strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
}

package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/config"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/pkg/id"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/pkg/otpcode"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/pkg/validate"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Service issues and verifies one-time codes for signup and password recovery.
type Service interface {
	// Issue creates a signup code for the email and mails it. Delivery
	// failures are logged, not returned.
	Issue(ctx context.Context, req domain.IssueOTPRequest) error
	// Verify checks a signup code and provisions a pre-confirmed account.
	Verify(ctx context.Context, req domain.VerifyOTPRequest) (*domain.User, error)
	// RequestRecovery mails a recovery code when the account exists. It
	// reports success either way.
	RequestRecovery(ctx context.Context, req domain.PasswordResetRequest) error
	// ConfirmRecovery checks a recovery code and replaces the account password.
	ConfirmRecovery(ctx context.Context, req domain.PasswordResetConfirmRequest) error
}

type verificationStore interface {
	Insert(ctx context.Context, v *domain.Verification) error
	CountSince(ctx context.Context, email string, purpose domain.Purpose, since time.Time) (int, error)
	LatestActive(ctx context.Context, email string, purpose domain.Purpose) (*domain.Verification, error)
	RetireActive(ctx context.Context, email string, purpose domain.Purpose, reason domain.RetireReason, at time.Time) error
	IncrementAttempts(ctx context.Context, verificationID string) (int, error)
	Retire(ctx context.Context, verificationID string, reason domain.RetireReason, at time.Time) error
}

type userStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

type service struct {
	verifications verificationStore
	users         userStore
	mailer        mailer
	policy        config.OTPPolicy
	log           *zerolog.Logger
	now           func() time.Time
}

type ServiceDeps struct {
	VerificationRepo verificationStore
	UserRepo         userStore
	Mailer           mailer
	Policy           config.OTPPolicy
	Logger           *zerolog.Logger
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		verifications: deps.VerificationRepo,
		users:         deps.UserRepo,
		mailer:        deps.Mailer,
		policy:        deps.Policy,
		log:           deps.Logger,
		now:           deps.Now,
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.log == nil {
		nop := zerolog.Nop()
		s.log = &nop
	}
	return s
}

func (s *service) Issue(ctx context.Context, req domain.IssueOTPRequest) error {
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return err
	}
	return s.issue(ctx, req.Email, domain.PurposeSignup)
}

func (s *service) Verify(ctx context.Context, req domain.VerifyOTPRequest) (*domain.User, error) {
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	email := req.Email
	if _, err := s.consume(ctx, email, req.OTP, domain.PurposeSignup); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check existing account: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("an account with this email already exists, please sign in instead: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u := &domain.User{
		UserID:         id.New(),
		Email:          email,
		PasswordHash:   string(hash),
		EmailConfirmed: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("an account with this email already exists, please sign in instead: %w", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	s.log.Info().Str("user_id", u.UserID).Msg("account created from verified signup code")
	return u, nil
}

func (s *service) RequestRecovery(ctx context.Context, req domain.PasswordResetRequest) error {
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return err
	}
	email := req.Email
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("look up account: %w", err)
	}
	if err := s.issue(ctx, email, domain.PurposeRecovery); err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			s.log.Warn().Str("email", email).Msg("recovery code request rate limited")
			return nil
		}
		return err
	}
	return nil
}

func (s *service) ConfirmRecovery(ctx context.Context, req domain.PasswordResetConfirmRequest) error {
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return err
	}
	email := req.Email
	if _, err := s.consume(ctx, email, req.OTP, domain.PurposeRecovery); err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("account no longer exists: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("look up account: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.UserID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// issue enforces the per-email rate limit, retires outstanding codes and
// stores a fresh one before attempting delivery.
func (s *service) issue(ctx context.Context, email string, purpose domain.Purpose) error {
	now := s.now()
	n, err := s.verifications.CountSince(ctx, email, purpose, now.Add(-s.policy.RateWindow))
	if err != nil {
		return fmt.Errorf("check rate limit: %w", err)
	}
	if n >= s.policy.RateLimit {
		return fmt.Errorf("too many code requests, please wait a few minutes before trying again: %w", domain.ErrRateLimited)
	}

	if err := s.verifications.RetireActive(ctx, email, purpose, domain.RetireSuperseded, now); err != nil {
		return fmt.Errorf("retire previous codes: %w", err)
	}

	code, err := otpcode.New()
	if err != nil {
		return err
	}
	v := &domain.Verification{
		VerificationID: id.New(),
		Email:          email,
		Purpose:        purpose,
		Code:           code,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.policy.TTL),
	}
	if err := s.verifications.Insert(ctx, v); err != nil {
		return fmt.Errorf("store verification: %w", err)
	}

	s.deliver(v)
	return nil
}

// deliver sends the code by email. The stored row is the source of truth, so
// a failed send leaves the code valid and is only logged.
func (s *service) deliver(v *domain.Verification) {
	subject, body, err := renderEmail(v, s.policy.TTL)
	if err == nil {
		err = s.mailer.SendEmail(v.Email, subject, body)
	}
	if err != nil {
		s.log.Warn().Err(err).
			Str("verification_id", v.VerificationID).
			Str("purpose", string(v.Purpose)).
			Msg("failed to deliver verification email")
	}
}

// consume runs the expiry, attempt-limit and code checks against the most
// recent active row and retires it on success. The attempt counter is
// persisted before the codes are compared.
func (s *service) consume(ctx context.Context, email, code string, purpose domain.Purpose) (*domain.Verification, error) {
	now := s.now()
	v, err := s.verifications.LatestActive(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNoPending
		}
		return nil, fmt.Errorf("load verification: %w", err)
	}

	if v.ExpiredAt(now) {
		if err := s.retire(ctx, v, domain.RetireExpired, now); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("verification code has expired, please request a new one: %w", domain.ErrExpired)
	}
	if v.Attempts >= s.policy.MaxAttempts {
		if err := s.retire(ctx, v, domain.RetireExhausted, now); err != nil {
			return nil, err
		}
		return nil, errTooManyAttempts
	}

	attempts, err := s.verifications.IncrementAttempts(ctx, v.VerificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The lookup index lagged behind a retirement.
			return nil, errNoPending
		}
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(v.Code), []byte(code)) != 1 {
		if attempts >= s.policy.MaxAttempts {
			if err := s.retire(ctx, v, domain.RetireExhausted, now); err != nil {
				return nil, err
			}
			return nil, errTooManyAttempts
		}
		return nil, &domain.InvalidCodeError{Remaining: s.policy.MaxAttempts - attempts}
	}

	if err := s.verifications.Retire(ctx, v.VerificationID, domain.RetireConsumed, now); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Another request consumed or retired the row first.
			return nil, errNoPending
		}
		return nil, fmt.Errorf("retire verification: %w", err)
	}
	return v, nil
}

// retire marks a failed row unusable. A row already retired by a concurrent
// request is not an error here.
func (s *service) retire(ctx context.Context, v *domain.Verification, reason domain.RetireReason, at time.Time) error {
	err := s.verifications.Retire(ctx, v.VerificationID, reason, at)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("retire verification: %w", err)
	}
	return nil
}

var (
	errNoPending       = fmt.Errorf("no pending verification found, please request a new code: %w", domain.ErrNotFound)
	errTooManyAttempts = fmt.Errorf("too many failed attempts, please request a new code: %w", domain.ErrTooManyAttempts)
)

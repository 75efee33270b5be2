package http

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/infrastructure/ai"
)

// VerificationRepository is the minimal interface the router requires from a
// one-time code store. Both the DynamoDB and MongoDB repos satisfy it.
type VerificationRepository interface {
	Insert(ctx context.Context, v *domain.Verification) error
	CountSince(ctx context.Context, email string, purpose domain.Purpose, since time.Time) (int, error)
	LatestActive(ctx context.Context, email string, purpose domain.Purpose) (*domain.Verification, error)
	RetireActive(ctx context.Context, email string, purpose domain.Purpose, reason domain.RetireReason, at time.Time) error
	IncrementAttempts(ctx context.Context, verificationID string) (int, error)
	Retire(ctx context.Context, verificationID string, reason domain.RetireReason, at time.Time) error
}

// UserRepository is the minimal interface the router requires from an identity store.
type UserRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Mailer delivers HTML email.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

// Completer forwards prompts to the inference upstream.
type Completer interface {
	Complete(ctx context.Context, messages []ai.Message) (json.RawMessage, error)
}

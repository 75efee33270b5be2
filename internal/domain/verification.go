package domain

import "time"

// Purpose scopes a verification row to the flow that issued it.
type Purpose string

const (
	PurposeSignup   Purpose = "signup"
	PurposeRecovery Purpose = "recovery"
)

// RetireReason records why a row stopped being usable. Empty while the row is active.
type RetireReason string

const (
	RetireNone       RetireReason = ""
	RetireConsumed   RetireReason = "consumed"
	RetireExpired    RetireReason = "expired"
	RetireExhausted  RetireReason = "exhausted"
	RetireSuperseded RetireReason = "superseded"
)

// Verification is one issued one-time code. Rows are append-only: retirement
// flips Verified to true and is never undone.
type Verification struct {
	VerificationID string       `json:"id" bson:"_id"`
	Email          string       `json:"email" bson:"email"`
	Purpose        Purpose      `json:"purpose" bson:"purpose"`
	Code           string       `json:"-" bson:"otp_code"`
	Attempts       int          `json:"attempts" bson:"attempts"`
	Verified       bool         `json:"verified" bson:"verified"`
	RetiredReason  RetireReason `json:"retired_reason,omitempty" bson:"retired_reason"`
	RetiredAt      *time.Time   `json:"retired_at,omitempty" bson:"retired_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at" bson:"created_at"`
	ExpiresAt      time.Time    `json:"expires_at" bson:"expires_at"`
}

// ExpiredAt reports whether the row's validity deadline has passed at now.
func (v *Verification) ExpiredAt(now time.Time) bool { return !now.Before(v.ExpiresAt) }

package domain

import (
	"strings"
	"time"
)

// User is an account in the identity store.
type User struct {
	UserID         string    `json:"id" dynamodbav:"user_id" bson:"_id"`
	Email          string    `json:"email" dynamodbav:"email" bson:"email"`
	PasswordHash   string    `json:"-" dynamodbav:"password_hash" bson:"password_hash"`
	EmailConfirmed bool      `json:"email_confirmed" dynamodbav:"email_confirmed" bson:"email_confirmed"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at" bson:"updated_at"`
}

type IssueOTPRequest struct {
	Email string `json:"email" validate:"required,contains=@,max=254"`
}

type VerifyOTPRequest struct {
	Email    string `json:"email" validate:"required"`
	OTP      string `json:"otp" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,contains=@,max=254"`
}

type PasswordResetConfirmRequest struct {
	Email       string `json:"email" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// normalizeEmail lowercases and trims an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize trims and lowercases the email. Call it before validation so a
// blank value fails the required check.
func (r *IssueOTPRequest) Normalize() { r.Email = normalizeEmail(r.Email) }

// Normalize trims the email and code. The password is taken as sent.
func (r *VerifyOTPRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
}

func (r *PasswordResetRequest) Normalize() { r.Email = normalizeEmail(r.Email) }

func (r *PasswordResetConfirmRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
}

package dynamo

// DynamoDB attribute and index names used in key conditions and update
// expressions across all repos. Constants keep key typos out of runtime.
const (
	fieldUserID         = "user_id"
	fieldEmail          = "email"
	fieldOwnerID        = "owner_id"
	fieldPasswordHash   = "password_hash"
	fieldUpdatedAt      = "updated_at"
	fieldVerificationID = "verification_id"
	fieldPurpose        = "purpose"
	fieldAttempts       = "attempts"
	fieldVerified       = "verified"
	fieldRetiredReason  = "retired_reason"
	fieldRetiredAt      = "retired_at"
	fieldCreatedAt      = "created_at"

	indexVerificationEmail = "email-created_at-index"
)

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const verificationCollection = "otp_verifications"

// VerificationRepo stores one-time codes in MongoDB.
type VerificationRepo struct {
	coll *mongo.Collection
}

// NewVerificationRepo ensures the lookup index exists and returns the repo.
func NewVerificationRepo(ctx context.Context, db *mongo.Database) (*VerificationRepo, error) {
	coll := db.Collection(verificationCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "email", Value: 1},
			{Key: "purpose", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create verification indexes: %w", err)
	}
	return &VerificationRepo{coll: coll}, nil
}

func (r *VerificationRepo) Insert(ctx context.Context, v *domain.Verification) error {
	_, err := r.coll.InsertOne(ctx, v)
	return err
}

func (r *VerificationRepo) CountSince(ctx context.Context, email string, purpose domain.Purpose, since time.Time) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"email":      email,
		"purpose":    purpose,
		"created_at": bson.M{"$gte": since},
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *VerificationRepo) LatestActive(ctx context.Context, email string, purpose domain.Purpose) (*domain.Verification, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var v domain.Verification
	err := r.coll.FindOne(ctx, activeFilter(email, purpose), opts).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("no active verification: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return &v, nil
}

func (r *VerificationRepo) RetireActive(ctx context.Context, email string, purpose domain.Purpose, reason domain.RetireReason, at time.Time) error {
	_, err := r.coll.UpdateMany(ctx, activeFilter(email, purpose), retireUpdate(reason, at))
	return err
}

// IncrementAttempts adds one to the attempt counter of an active row. A
// missing or retired row fails with domain.ErrNotFound.
func (r *VerificationRepo) IncrementAttempts(ctx context.Context, verificationID string) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var v domain.Verification
	err := r.coll.FindOneAndUpdate(ctx,
		activeByID(verificationID),
		bson.M{"$inc": bson.M{"attempts": 1}},
		opts,
	).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("verification %s not active: %w", verificationID, domain.ErrNotFound)
		}
		return 0, err
	}
	return v.Attempts, nil
}

func (r *VerificationRepo) Retire(ctx context.Context, verificationID string, reason domain.RetireReason, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		activeByID(verificationID),
		retireUpdate(reason, at),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("verification %s not active: %w", verificationID, domain.ErrNotFound)
	}
	return nil
}

func activeFilter(email string, purpose domain.Purpose) bson.M {
	return bson.M{"email": email, "purpose": purpose, "verified": false}
}

func activeByID(verificationID string) bson.M {
	return bson.M{"_id": verificationID, "verified": false}
}

func retireUpdate(reason domain.RetireReason, at time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"verified":       true,
		"retired_reason": reason,
		"retired_at":     at,
	}}
}

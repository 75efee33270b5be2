package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// VerificationRepo stores one-time codes.
// PK: verification_id. GSI email-created_at-index: email + created_at (Unix ms).
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

// verificationItem is the stored shape of domain.Verification. Timestamps are
// Unix milliseconds so the GSI range key sorts numerically.
type verificationItem struct {
	VerificationID string `dynamodbav:"verification_id"`
	Email          string `dynamodbav:"email"`
	Purpose        string `dynamodbav:"purpose"`
	Code           string `dynamodbav:"otp_code"`
	Attempts       int    `dynamodbav:"attempts"`
	Verified       bool   `dynamodbav:"verified"`
	RetiredReason  string `dynamodbav:"retired_reason,omitempty"`
	RetiredAt      int64  `dynamodbav:"retired_at,omitempty"`
	CreatedAt      int64  `dynamodbav:"created_at"`
	ExpiresAt      int64  `dynamodbav:"expires_at"`
}

func toVerificationItem(v *domain.Verification) verificationItem {
	it := verificationItem{
		VerificationID: v.VerificationID,
		Email:          v.Email,
		Purpose:        string(v.Purpose),
		Code:           v.Code,
		Attempts:       v.Attempts,
		Verified:       v.Verified,
		RetiredReason:  string(v.RetiredReason),
		CreatedAt:      v.CreatedAt.UnixMilli(),
		ExpiresAt:      v.ExpiresAt.UnixMilli(),
	}
	if v.RetiredAt != nil {
		it.RetiredAt = v.RetiredAt.UnixMilli()
	}
	return it
}

func (it verificationItem) toDomain() *domain.Verification {
	v := &domain.Verification{
		VerificationID: it.VerificationID,
		Email:          it.Email,
		Purpose:        domain.Purpose(it.Purpose),
		Code:           it.Code,
		Attempts:       it.Attempts,
		Verified:       it.Verified,
		RetiredReason:  domain.RetireReason(it.RetiredReason),
		CreatedAt:      time.UnixMilli(it.CreatedAt).UTC(),
		ExpiresAt:      time.UnixMilli(it.ExpiresAt).UTC(),
	}
	if it.RetiredAt != 0 {
		t := time.UnixMilli(it.RetiredAt).UTC()
		v.RetiredAt = &t
	}
	return v
}

func (r *VerificationRepo) Insert(ctx context.Context, v *domain.Verification) error {
	item, err := attributevalue.MarshalMap(toVerificationItem(v))
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(verification_id)"),
	})
	return err
}

// CountSince counts rows for email and purpose created at or after since,
// whatever their state.
func (r *VerificationRepo) CountSince(ctx context.Context, email string, purpose domain.Purpose, since time.Time) (int, error) {
	p := dynamodb.NewQueryPaginator(r.client, countSinceQuery(r.tableName, email, purpose, since))
	total := 0
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
	}
	return total, nil
}

// LatestActive returns the most recently created unverified row.
func (r *VerificationRepo) LatestActive(ctx context.Context, email string, purpose domain.Purpose) (*domain.Verification, error) {
	p := dynamodb.NewQueryPaginator(r.client, activeQuery(r.tableName, email, purpose, false))
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if len(out.Items) > 0 {
			var it verificationItem
			if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
				return nil, err
			}
			return it.toDomain(), nil
		}
	}
	return nil, fmt.Errorf("no active verification: %w", domain.ErrNotFound)
}

// RetireActive retires every unverified row for email and purpose.
func (r *VerificationRepo) RetireActive(ctx context.Context, email string, purpose domain.Purpose, reason domain.RetireReason, at time.Time) error {
	p := dynamodb.NewQueryPaginator(r.client, activeQuery(r.tableName, email, purpose, true))
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, raw := range out.Items {
			var it verificationItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return err
			}
			if err := r.Retire(ctx, it.VerificationID, reason, at); err != nil && !isNotFound(err) {
				return err
			}
		}
	}
	return nil
}

// IncrementAttempts atomically adds one to the attempt counter of an active
// row and returns the new value. A missing or retired row fails with
// domain.ErrNotFound.
func (r *VerificationRepo) IncrementAttempts(ctx context.Context, verificationID string) (int, error) {
	out, err := r.client.UpdateItem(ctx, incrementAttemptsInput(r.tableName, verificationID))
	if err != nil {
		if isConditionFailed(err) {
			return 0, fmt.Errorf("verification %s not active: %w", verificationID, domain.ErrNotFound)
		}
		return 0, err
	}
	var updated struct {
		Attempts int `dynamodbav:"attempts"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return 0, err
	}
	return updated.Attempts, nil
}

// Retire flips verified to true. It fails with domain.ErrNotFound when the
// row does not exist or was already retired.
func (r *VerificationRepo) Retire(ctx context.Context, verificationID string, reason domain.RetireReason, at time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldVerified:      true,
		fieldRetiredReason: string(reason),
		fieldRetiredAt:     at.UnixMilli(),
	})
	if err != nil {
		return err
	}
	ue.Names["#cv"] = fieldVerified
	ue.Values[":cf"] = &types.AttributeValueMemberBOOL{Value: false}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldVerificationID, verificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("#cv = :cf"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("verification %s not active: %w", verificationID, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func incrementAttemptsInput(table, verificationID string) *dynamodb.UpdateItemInput {
	return &dynamodb.UpdateItemInput{
		TableName:           aws.String(table),
		Key:                 strKey(fieldVerificationID, verificationID),
		UpdateExpression:    aws.String("ADD #a :one"),
		ConditionExpression: aws.String("attribute_exists(#id) AND #v = :f"),
		ExpressionAttributeNames: map[string]string{
			"#a":  fieldAttempts,
			"#id": fieldVerificationID,
			"#v":  fieldVerified,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}
}

func countSinceQuery(table, email string, purpose domain.Purpose, since time.Time) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(indexVerificationEmail),
		KeyConditionExpression: aws.String("#e = :e AND #c >= :since"),
		FilterExpression:       aws.String("#p = :p"),
		ExpressionAttributeNames: map[string]string{
			"#e": fieldEmail,
			"#c": fieldCreatedAt,
			"#p": fieldPurpose,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e":     &types.AttributeValueMemberS{Value: email},
			":since": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", since.UnixMilli())},
			":p":     &types.AttributeValueMemberS{Value: string(purpose)},
		},
		Select: types.SelectCount,
	}
}

// activeQuery selects unverified rows for email and purpose, newest first
// unless ascending is set.
func activeQuery(table, email string, purpose domain.Purpose, ascending bool) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(indexVerificationEmail),
		KeyConditionExpression: aws.String("#e = :e"),
		FilterExpression:       aws.String("#p = :p AND #v = :f"),
		ExpressionAttributeNames: map[string]string{
			"#e": fieldEmail,
			"#p": fieldPurpose,
			"#v": fieldVerified,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
			":p": &types.AttributeValueMemberS{Value: string(purpose)},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
		ScanIndexForward: aws.Bool(ascending),
	}
}

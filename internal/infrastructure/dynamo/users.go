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

// emailGuardPrefix marks the per-email uniqueness item stored next to each
// user. Email lookups read the guard, so the table needs no email index.
const emailGuardPrefix = "email#"

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func emailGuardKey(email string) map[string]types.AttributeValue {
	return strKey(fieldUserID, emailGuardPrefix+email)
}

// Create writes the user and its email guard in one transaction. A taken
// email fails with domain.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	guard := emailGuardKey(u.Email)
	guard[fieldOwnerID] = &types.AttributeValueMemberS{Value: u.UserID}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                guard,
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			}},
		},
	})
	if err != nil {
		if isTxConditionFailed(err) {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldUserID, userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ExistsByEmail reads the email guard with a strongly consistent read.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.ownerOf(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	userID, err := r.ownerOf(ctx, email)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldPasswordHash: passwordHash,
		fieldUpdatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldUserID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (r *UserRepo) ownerOf(ctx context.Context, email string) (string, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            emailGuardKey(email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	owner, ok := out.Item[fieldOwnerID].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return owner.Value, nil
}

package users

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopworks/go-commerce-backend/internal/aws"
)

// User is a profile record. Credentials and token issuance live in the auth
// gateway; this table only stores what the shop needs to render and ship.
type User struct {
	UserID    string    `dynamodbav:"user_id" json:"user_id"` // PK
	Name      string    `dynamodbav:"name" json:"name"`
	Email     string    `dynamodbav:"email" json:"email"`
	Role      string    `dynamodbav:"role" json:"role"` // user | admin
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// Store encapsulates operations on the users table.
type Store struct {
	client     aws.DynamoDBAPI
	usersTable string
	nowFunc    func() time.Time
}

// NewStore creates a new users Store.
func NewStore(client aws.DynamoDBAPI, usersTable string) *Store {
	return &Store{
		client:     client,
		usersTable: usersTable,
		nowFunc:    time.Now,
	}
}

// Get fetches a user profile. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, userID string) (*User, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.usersTable,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var u User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

// Put persists a user profile.
func (s *Store) Put(ctx context.Context, u User) (*User, error) {
	now := s.nowFunc()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = "user"
	}

	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.usersTable,
		Item:      item,
	}); err != nil {
		return nil, fmt.Errorf("put user: %w", err)
	}
	return &u, nil
}

// List scans all user profiles for the admin view.
func (s *Store) List(ctx context.Context) ([]User, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName: &s.usersTable,
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	result := make([]User, 0, len(out.Items))
	for _, item := range out.Items {
		var u User
		if err := attributevalue.UnmarshalMap(item, &u); err != nil {
			return nil, fmt.Errorf("unmarshal user: %w", err)
		}
		result = append(result, u)
	}
	return result, nil
}

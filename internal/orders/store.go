package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/shopworks/go-commerce-backend/internal/aws"
)

// userIndex is the GSI that keys orders by their owner.
const userIndex = "user_id-index"

// ErrStatusMismatch indicates a conditional status update lost to a
// concurrent transition.
var ErrStatusMismatch = errors.New("status mismatch/conditional failed")

// Store encapsulates operations on the orders table.
type Store struct {
	client      aws.DynamoDBAPI
	ordersTable string
	nowFunc     func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, ordersTable string) *Store {
	return &Store{
		client:      client,
		ordersTable: ordersTable,
		nowFunc:     time.Now,
	}
}

// Create persists a new order. The condition guards against order id reuse.
func (s *Store) Create(ctx context.Context, o Order) error {
	now := s.nowFunc()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.ordersTable,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.ordersTable,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// ListByUser returns every order owned by the user, via the user GSI.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.ordersTable,
		IndexName:              awsString(userIndex),
		KeyConditionExpression: awsString("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query orders by user: %w", err)
	}
	result := make([]Order, 0, len(out.Items))
	for _, item := range out.Items {
		var o Order
		if err := attributevalue.UnmarshalMap(item, &o); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		result = append(result, o)
	}
	return result, nil
}

// List scans a page of all orders for the admin view. startKey is the
// order_id the previous page ended at ("" for the first page).
func (s *Store) List(ctx context.Context, startKey string, limit int32) (*OrderPage, error) {
	input := &dyn.ScanInput{
		TableName: &s.ordersTable,
	}
	if limit > 0 {
		input.Limit = &limit
	}
	if startKey != "" {
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: startKey},
		}
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	page := &OrderPage{Orders: make([]Order, 0, len(out.Items))}
	for _, item := range out.Items {
		var o Order
		if err := attributevalue.UnmarshalMap(item, &o); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		page.Orders = append(page.Orders, o)
	}
	if lk, ok := out.LastEvaluatedKey["order_id"]; ok {
		if s, ok := lk.(*types.AttributeValueMemberS); ok {
			page.NextKey = s.Value
		}
	}
	return page, nil
}

// MarkPaid records the payment receipt and flips is_paid. Payment is
// orthogonal to the fulfillment status, so there is no status condition.
func (s *Store) MarkPaid(ctx context.Context, orderID string, receipt PaymentResult) error {
	now := s.nowFunc()
	receiptAV, err := attributevalue.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("marshal payment result: %w", err)
	}
	_, err = s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.ordersTable,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:    awsString("SET is_paid = :t, paid_at = :pa, payment_result = :pr, updated_at = :ua"),
		ConditionExpression: awsString("attribute_exists(order_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":  &types.AttributeValueMemberBOOL{Value: true},
			":pa": &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
			":pr": receiptAV,
			":ua": &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		if isConditionalFailure(err) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("mark paid: %w", err)
	}
	return nil
}

// SetStatus conditionally moves the order from expected -> next. A lost race
// surfaces as ErrStatusMismatch so the caller can reload and re-evaluate.
// trackingNumber is recorded when non-empty; deliveredAt flips the delivery
// flags when set.
func (s *Store) SetStatus(ctx context.Context, orderID string, expected, next Status, trackingNumber string, deliveredAt *time.Time) error {
	now := s.nowFunc()
	updateExpr := "SET #s = :next, updated_at = :ua"
	values := map[string]types.AttributeValue{
		":next":     &types.AttributeValueMemberS{Value: string(next)},
		":expected": &types.AttributeValueMemberS{Value: string(expected)},
		":ua":       &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
	}
	if trackingNumber != "" {
		updateExpr += ", tracking_number = :tn"
		values[":tn"] = &types.AttributeValueMemberS{Value: trackingNumber}
	}
	if deliveredAt != nil {
		updateExpr += ", is_delivered = :d, delivered_at = :da"
		values[":d"] = &types.AttributeValueMemberBOOL{Value: true}
		values[":da"] = &types.AttributeValueMemberS{Value: deliveredAt.UTC().Format(time.RFC3339)}
	}

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.ordersTable,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:          awsString(updateExpr),
		ExpressionAttributeNames:  map[string]string{"#s": "status"},
		ExpressionAttributeValues: values,
		ConditionExpression:       awsString("attribute_exists(order_id) AND #s = :expected"),
	})
	if err != nil {
		if isConditionalFailure(err) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

func isConditionalFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

func awsString(s string) *string { return &s }

package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/shopworks/go-commerce-backend/internal/aws"
)

// ErrInsufficientStock indicates the requested quantity exceeds the units
// currently available.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrProductNotFound indicates the product does not exist in the catalog.
var ErrProductNotFound = errors.New("product not found")

// Ledger owns the authoritative stock counter on the products table.
// Decrements are single conditional updates, never read-modify-write, so
// concurrent checkouts cannot drive stock negative.
type Ledger struct {
	client        aws.DynamoDBAPI
	productsTable string
	nowFunc       func() time.Time
}

// NewLedger creates a Ledger bound to the products table.
func NewLedger(client aws.DynamoDBAPI, productsTable string) *Ledger {
	return &Ledger{
		client:        client,
		productsTable: productsTable,
		nowFunc:       time.Now,
	}
}

// Reserve is an advisory check that the product has at least quantity units
// in stock. It holds nothing: stock may change between this check and a
// later CommitDecrement, which re-validates.
func (l *Ledger) Reserve(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	stock, err := l.Stock(ctx, productID)
	if err != nil {
		return err
	}
	if stock < quantity {
		return ErrInsufficientStock
	}
	return nil
}

// Stock reads the current stock counter for a product.
func (l *Ledger) Stock(ctx context.Context, productID string) (int, error) {
	out, err := l.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &l.productsTable,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		ProjectionExpression: awsString("stock"),
	})
	if err != nil {
		return 0, fmt.Errorf("get stock: %w", err)
	}
	if len(out.Item) == 0 {
		return 0, ErrProductNotFound
	}
	n, ok := out.Item["stock"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("product %s has no numeric stock attribute", productID)
	}
	var stock int
	if _, err := fmt.Sscanf(n.Value, "%d", &stock); err != nil {
		return 0, fmt.Errorf("parse stock %q: %w", n.Value, err)
	}
	return stock, nil
}

// CommitDecrement subtracts quantity from the product's stock as one
// conditional update: SET stock = stock - :q guarded by stock >= :q. The
// condition makes the decrement serializable; a conditional failure means
// stock moved under us and surfaces as ErrInsufficientStock.
func (l *Ledger) CommitDecrement(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	now := l.nowFunc()
	q := fmt.Sprintf("%d", quantity)
	_, err := l.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &l.productsTable,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		UpdateExpression:    awsString("SET stock = stock - :q, updated_at = :ua"),
		ConditionExpression: awsString("attribute_exists(product_id) AND stock >= :q"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q":  &types.AttributeValueMemberN{Value: q},
			":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		if isConditionalFailure(err) {
			return ErrInsufficientStock
		}
		return fmt.Errorf("decrement stock: %w", err)
	}
	return nil
}

// Release adds quantity back to the product's stock. Used to restore units
// on order cancellation and to compensate a partially applied checkout.
// The ADD action never fails on a live product.
func (l *Ledger) Release(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	now := l.nowFunc()
	q := fmt.Sprintf("%d", quantity)
	_, err := l.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &l.productsTable,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		UpdateExpression: awsString("ADD stock :q SET updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q":  &types.AttributeValueMemberN{Value: q},
			":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	return nil
}

// isConditionalFailure detects a DynamoDB conditional check failure in both
// its typed and generic API-error forms.
func isConditionalFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

func awsString(s string) *string { return &s }

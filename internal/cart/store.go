package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/shopworks/go-commerce-backend/internal/aws"
	"github.com/shopworks/go-commerce-backend/internal/catalog"
	"github.com/shopworks/go-commerce-backend/internal/inventory"
)

// ErrItemNotFound indicates the cart has no matching line item.
var ErrItemNotFound = errors.New("cart item not found")

// ErrInvalidQuantity indicates a non-positive quantity was requested.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// errVersionConflict signals a lost optimistic-concurrency race; mutations
// reload and retry.
var errVersionConflict = errors.New("cart version conflict")

// maxSaveAttempts bounds the reload-and-retry loop on version conflicts.
const maxSaveAttempts = 3

// ProductGetter is the catalog lookup the cart needs for price capture and
// advisory stock checks.
type ProductGetter interface {
	GetProduct(ctx context.Context, productID string) (*catalog.Product, error)
}

// Store encapsulates operations on the carts table. Stock checks here are
// advisory reads; the authoritative check happens at checkout.
type Store struct {
	client     aws.DynamoDBAPI
	cartsTable string
	products   ProductGetter
	nowFunc    func() time.Time
	newID      func() string
}

// NewStore creates a new cart Store.
func NewStore(client aws.DynamoDBAPI, cartsTable string, products ProductGetter) *Store {
	return &Store{
		client:     client,
		cartsTable: cartsTable,
		products:   products,
		nowFunc:    time.Now,
		newID:      uuid.NewString,
	}
}

// GetOrCreate returns the user's cart, or an empty unpersisted cart if the
// user has none yet. It never fails on absence.
func (s *Store) GetOrCreate(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		now := s.nowFunc()
		c = &Cart{UserID: userID, Items: []Item{}, CreatedAt: now, UpdatedAt: now}
	}
	return c, nil
}

// AddItem appends a line item, or merges quantity into an existing item with
// the same (product, size, color) key. The merged total is checked against
// the product's current stock.
func (s *Store) AddItem(ctx context.Context, userID, productID string, quantity int, size, color string) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, inventory.ErrProductNotFound
	}

	return s.mutate(ctx, userID, func(c *Cart) error {
		need := quantity
		for _, it := range c.Items {
			if it.sameKey(productID, size, color) {
				need += it.Quantity
				break
			}
		}
		if p.Stock < need {
			return inventory.ErrInsufficientStock
		}
		for i, it := range c.Items {
			if it.sameKey(productID, size, color) {
				c.Items[i].Quantity = need
				return nil
			}
		}
		c.Items = append(c.Items, Item{
			ItemID:    s.newID(),
			ProductID: productID,
			Name:      p.Name,
			Image:     p.Image,
			Quantity:  quantity,
			Size:      size,
			Color:     color,
			Price:     p.Price,
		})
		return nil
	})
}

// UpdateItem sets the quantity of an existing line item after re-checking
// the product's current stock.
func (s *Store) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	return s.mutate(ctx, userID, func(c *Cart) error {
		for i, it := range c.Items {
			if it.ItemID != itemID {
				continue
			}
			p, err := s.products.GetProduct(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return inventory.ErrProductNotFound
			}
			if p.Stock < quantity {
				return inventory.ErrInsufficientStock
			}
			c.Items[i].Quantity = quantity
			return nil
		}
		return ErrItemNotFound
	})
}

// RemoveItem deletes a line item, matching by item id first and falling back
// to product id.
func (s *Store) RemoveItem(ctx context.Context, userID, itemOrProductID string) (*Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) error {
		for i, it := range c.Items {
			if it.ItemID == itemOrProductID || it.ProductID == itemOrProductID {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				return nil
			}
		}
		return ErrItemNotFound
	})
}

// Clear empties the cart. Idempotent: clearing an absent or already empty
// cart succeeds.
func (s *Store) Clear(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		now := s.nowFunc()
		return &Cart{UserID: userID, Items: []Item{}, CreatedAt: now, UpdatedAt: now}, nil
	}
	return s.mutate(ctx, userID, func(c *Cart) error {
		c.Items = []Item{}
		return nil
	})
}

// mutate runs fn against a freshly loaded cart and saves it, retrying the
// whole cycle on a version conflict.
func (s *Store) mutate(ctx context.Context, userID string, fn func(*Cart) error) (*Cart, error) {
	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		c, err := s.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := fn(c); err != nil {
			return nil, err
		}
		if err := s.save(ctx, c); err != nil {
			if errors.Is(err, errVersionConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("save cart after %d attempts: %w", maxSaveAttempts, lastErr)
}

// load fetches the cart by user id. Returns (nil, nil) if not found.
func (s *Store) load(ctx context.Context, userID string) (*Cart, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.cartsTable,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var c Cart
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &c, nil
}

// save writes the cart conditionally on the version it was loaded at. A new
// cart (version 0) must not already exist; an existing cart must still carry
// the loaded version.
func (s *Store) save(ctx context.Context, c *Cart) error {
	loadedVersion := c.Version
	c.Version++
	c.UpdatedAt = s.nowFunc()

	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName: &s.cartsTable,
		Item:      item,
	}
	if loadedVersion == 0 {
		input.ConditionExpression = awsString("attribute_not_exists(user_id)")
	} else {
		input.ConditionExpression = awsString("version = :v")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", loadedVersion)},
		}
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		c.Version = loadedVersion
		if isConditionalFailure(err) {
			return errVersionConflict
		}
		return fmt.Errorf("put cart: %w", err)
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

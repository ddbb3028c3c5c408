package catalog

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

// Store encapsulates operations on the products and categories tables.
type Store struct {
	client          aws.DynamoDBAPI
	productsTable   string
	categoriesTable string
	nowFunc         func() time.Time
}

// NewStore creates a new catalog Store.
func NewStore(client aws.DynamoDBAPI, productsTable, categoriesTable string) *Store {
	return &Store{
		client:          client,
		productsTable:   productsTable,
		categoriesTable: categoriesTable,
		nowFunc:         time.Now,
	}
}

// GetProduct fetches a product by id. Returns (nil, nil) if not found.
func (s *Store) GetProduct(ctx context.Context, productID string) (*Product, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.productsTable,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &p, nil
}

// PutProduct persists a product. CreatedAt is set on first write, UpdatedAt
// on every write.
func (s *Store) PutProduct(ctx context.Context, p Product) (*Product, error) {
	now := s.nowFunc()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return nil, fmt.Errorf("marshal product: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.productsTable,
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("put product: %w", err)
	}
	return &p, nil
}

// UpdateProductDetails rewrites the descriptive attributes of a product
// without touching stock, which is owned by the inventory ledger and may be
// decremented concurrently. Returns (nil, nil) if the product does not exist.
func (s *Store) UpdateProductDetails(ctx context.Context, productID, name, description, categoryID, image string, price float64) (*Product, error) {
	now := s.nowFunc()
	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.productsTable,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		UpdateExpression:    awsString("SET #n = :n, description = :d, category_id = :c, image = :i, price = :p, updated_at = :ua"),
		ConditionExpression: awsString("attribute_exists(product_id)"),
		ExpressionAttributeNames: map[string]string{
			"#n": "name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":n":  &types.AttributeValueMemberS{Value: name},
			":d":  &types.AttributeValueMemberS{Value: description},
			":c":  &types.AttributeValueMemberS{Value: categoryID},
			":i":  &types.AttributeValueMemberS{Value: image},
			":p":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", price)},
			":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalFailure(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update product details: %w", err)
	}
	var p Product
	if err := attributevalue.UnmarshalMap(out.Attributes, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &p, nil
}

// SetProductImage records the media URL for a product's image.
func (s *Store) SetProductImage(ctx context.Context, productID, imageURL string) error {
	now := s.nowFunc()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.productsTable,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		UpdateExpression:    awsString("SET image = :img, updated_at = :ua"),
		ConditionExpression: awsString("attribute_exists(product_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":img": &types.AttributeValueMemberS{Value: imageURL},
			":ua":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("set product image: %w", err)
	}
	return nil
}

// DeleteProduct removes a product from the catalog. Orders keep their own
// snapshots, so history survives the delete.
func (s *Store) DeleteProduct(ctx context.Context, productID string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.productsTable,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// ListProducts scans a page of products, optionally filtered by category.
// startKey is the product_id the previous page ended at ("" for the first page).
func (s *Store) ListProducts(ctx context.Context, categoryID, startKey string, limit int32) (*ProductPage, error) {
	input := &dyn.ScanInput{
		TableName: &s.productsTable,
	}
	if limit > 0 {
		input.Limit = &limit
	}
	if startKey != "" {
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: startKey},
		}
	}
	if categoryID != "" {
		input.FilterExpression = awsString("category_id = :cat")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":cat": &types.AttributeValueMemberS{Value: categoryID},
		}
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}

	page := &ProductPage{Products: make([]Product, 0, len(out.Items))}
	for _, item := range out.Items {
		var p Product
		if err := attributevalue.UnmarshalMap(item, &p); err != nil {
			return nil, fmt.Errorf("unmarshal product: %w", err)
		}
		page.Products = append(page.Products, p)
	}
	if lk, ok := out.LastEvaluatedKey["product_id"]; ok {
		if s, ok := lk.(*types.AttributeValueMemberS); ok {
			page.NextKey = s.Value
		}
	}
	return page, nil
}

// GetCategory fetches a category by id. Returns (nil, nil) if not found.
func (s *Store) GetCategory(ctx context.Context, categoryID string) (*Category, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.categoriesTable,
		Key: map[string]types.AttributeValue{
			"category_id": &types.AttributeValueMemberS{Value: categoryID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var c Category
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, fmt.Errorf("unmarshal category: %w", err)
	}
	return &c, nil
}

// PutCategory persists a category.
func (s *Store) PutCategory(ctx context.Context, c Category) (*Category, error) {
	now := s.nowFunc()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return nil, fmt.Errorf("marshal category: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.categoriesTable,
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("put category: %w", err)
	}
	return &c, nil
}

// DeleteCategory removes a category. Products keep their category_id; stale
// references render as uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.categoriesTable,
		Key: map[string]types.AttributeValue{
			"category_id": &types.AttributeValueMemberS{Value: categoryID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// ListCategories returns every category. The table is small; an unbounded
// scan is acceptable here.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName: &s.categoriesTable,
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	cats := make([]Category, 0, len(out.Items))
	for _, item := range out.Items {
		var c Category
		if err := attributevalue.UnmarshalMap(item, &c); err != nil {
			return nil, fmt.Errorf("unmarshal category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, nil
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

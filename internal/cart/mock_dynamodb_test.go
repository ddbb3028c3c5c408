package cart

import (
	"context"
	"errors"
	"strconv"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopworks/go-commerce-backend/internal/catalog"
)

// mockCarts is a minimal in-memory carts table supporting the optimistic
// version conditions the store issues.
type mockCarts struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	putCalls int
}

func newMockCarts() *mockCarts {
	return &mockCarts{items: map[string]map[string]types.AttributeValue{}}
}

func (m *mockCarts) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := params.Key["user_id"].(*types.AttributeValueMemberS).Value
	item, ok := m.items[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockCarts) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	pk := params.Item["user_id"].(*types.AttributeValueMemberS).Value
	existing, exists := m.items[pk]

	if params.ConditionExpression != nil {
		switch *params.ConditionExpression {
		case "attribute_not_exists(user_id)":
			if exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case "version = :v":
			if !exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
			want := params.ExpressionAttributeValues[":v"].(*types.AttributeValueMemberN).Value
			got := existing["version"].(*types.AttributeValueMemberN).Value
			if want != got {
				return nil, &types.ConditionalCheckFailedException{}
			}
		default:
			return nil, errors.New("unsupported condition: " + *params.ConditionExpression)
		}
	}
	m.items[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

// version peeks at the stored version counter for assertions.
func (m *mockCarts) version(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[userID]
	if !ok {
		return 0
	}
	v, _ := strconv.Atoi(item["version"].(*types.AttributeValueMemberN).Value)
	return v
}

func (m *mockCarts) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCarts) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCarts) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCarts) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCarts) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("not implemented")
}

// fakeProducts is an in-memory ProductGetter.
type fakeProducts struct {
	mu       sync.Mutex
	products map[string]catalog.Product
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{products: map[string]catalog.Product{}}
}

func (f *fakeProducts) add(p catalog.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ProductID] = p
}

func (f *fakeProducts) setStock(productID string, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[productID]
	p.Stock = stock
	f.products[productID] = p
}

func (f *fakeProducts) GetProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

package inventory

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockProducts is a minimal in-memory products table for ledger tests. It
// implements the stock update expressions the ledger issues.
type mockProducts struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newMockProducts() *mockProducts {
	return &mockProducts{items: map[string]map[string]types.AttributeValue{}}
}

func (m *mockProducts) seed(productID string, stock int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[productID] = map[string]types.AttributeValue{
		"product_id": &types.AttributeValueMemberS{Value: productID},
		"stock":      &types.AttributeValueMemberN{Value: strconv.Itoa(stock)},
	}
}

func (m *mockProducts) stock(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[productID]
	if !ok {
		return -1
	}
	n := item["stock"].(*types.AttributeValueMemberN)
	v, _ := strconv.Atoi(n.Value)
	return v
}

func (m *mockProducts) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := params.Key["product_id"].(*types.AttributeValueMemberS).Value
	item, ok := m.items[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockProducts) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := params.Key["product_id"].(*types.AttributeValueMemberS).Value
	expr := ""
	if params.UpdateExpression != nil {
		expr = *params.UpdateExpression
	}

	qAttr, _ := params.ExpressionAttributeValues[":q"].(*types.AttributeValueMemberN)
	if qAttr == nil {
		return nil, errors.New("missing :q value")
	}
	q, err := strconv.Atoi(qAttr.Value)
	if err != nil {
		return nil, err
	}

	item, exists := m.items[pk]

	switch {
	case strings.Contains(expr, "stock = stock - :q"):
		if !exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
		cur, _ := strconv.Atoi(item["stock"].(*types.AttributeValueMemberN).Value)
		if cur < q {
			return nil, &types.ConditionalCheckFailedException{}
		}
		item["stock"] = &types.AttributeValueMemberN{Value: strconv.Itoa(cur - q)}
	case strings.Contains(expr, "ADD stock :q"):
		if !exists {
			item = map[string]types.AttributeValue{
				"product_id": &types.AttributeValueMemberS{Value: pk},
				"stock":      &types.AttributeValueMemberN{Value: "0"},
			}
			m.items[pk] = item
		}
		cur, _ := strconv.Atoi(item["stock"].(*types.AttributeValueMemberN).Value)
		item["stock"] = &types.AttributeValueMemberN{Value: strconv.Itoa(cur + q)}
	default:
		return nil, errors.New("unsupported update expression: " + expr)
	}
	return &dyn.UpdateItemOutput{}, nil
}

// unused parts of the DynamoDBAPI surface

func (m *mockProducts) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProducts) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProducts) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProducts) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProducts) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("not implemented")
}

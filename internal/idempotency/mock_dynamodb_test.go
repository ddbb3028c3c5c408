package idempotency

import (
	"context"
	"errors"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockIdempotency is an in-memory stand-in for the idempotency table. It
// honors the attribute_not_exists(idempotency_key) condition used by
// CreateIfNotExists and applies the two update expressions the store issues.
type mockIdempotency struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newMockIdempotency() *mockIdempotency {
	return &mockIdempotency{items: map[string]map[string]types.AttributeValue{}}
}

func (m *mockIdempotency) key(attrs map[string]types.AttributeValue) (string, error) {
	v, ok := attrs["idempotency_key"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing idempotency_key")
	}
	return v.Value, nil
}

func (m *mockIdempotency) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := m.key(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.items[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockIdempotency) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := m.key(params.Item)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil && strings.HasPrefix(*params.ConditionExpression, "attribute_not_exists") {
		if _, exists := m.items[k]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.items[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockIdempotency) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := m.key(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.items[k]
	if !ok {
		item = map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: k},
		}
		m.items[k] = item
	}
	vals := params.ExpressionAttributeValues
	switch {
	case strings.Contains(*params.UpdateExpression, ":done"):
		item["status"] = vals[":done"]
		item["response_body"] = vals[":rb"]
		item["response_status"] = vals[":rs"]
		item["updated_at"] = vals[":ua"]
	case strings.Contains(*params.UpdateExpression, ":failed"):
		item["status"] = vals[":failed"]
		item["note"] = vals[":n"]
		item["updated_at"] = vals[":ua"]
	default:
		return nil, errors.New("unsupported update expression: " + *params.UpdateExpression)
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockIdempotency) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockIdempotency) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockIdempotency) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockIdempotency) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("not implemented")
}

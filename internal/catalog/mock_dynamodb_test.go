package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockCatalog backs the products and categories tables in memory. Keyed by
// table name then primary key value.
type mockCatalog struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
	pkAttr map[string]string
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		tables: map[string]map[string]map[string]types.AttributeValue{},
		pkAttr: map[string]string{
			"products":   "product_id",
			"categories": "category_id",
		},
	}
}

func (m *mockCatalog) ensureTable(tbl string) map[string]map[string]types.AttributeValue {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
	return m.tables[tbl]
}

func (m *mockCatalog) pkOf(tbl string, attrs map[string]types.AttributeValue) (string, error) {
	name, ok := m.pkAttr[tbl]
	if !ok {
		return "", errors.New("unknown table: " + tbl)
	}
	v, ok := attrs[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing primary key: " + name)
	}
	return v.Value, nil
}

func (m *mockCatalog) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk, err := m.pkOf(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.ensureTable(*params.TableName)[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockCatalog) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk, err := m.pkOf(*params.TableName, params.Item)
	if err != nil {
		return nil, err
	}
	m.ensureTable(*params.TableName)[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockCatalog) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk, err := m.pkOf(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.ensureTable(*params.TableName)[pk]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	vals := params.ExpressionAttributeValues
	switch {
	case strings.Contains(*params.UpdateExpression, "#n = :n"):
		item["name"] = vals[":n"]
		item["description"] = vals[":d"]
		item["category_id"] = vals[":c"]
		item["image"] = vals[":i"]
		item["price"] = vals[":p"]
		item["updated_at"] = vals[":ua"]
	case strings.Contains(*params.UpdateExpression, "image = :img"):
		item["image"] = vals[":img"]
		item["updated_at"] = vals[":ua"]
	default:
		return nil, errors.New("unsupported update expression: " + *params.UpdateExpression)
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockCatalog) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk, err := m.pkOf(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	delete(m.ensureTable(*params.TableName), pk)
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockCatalog) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := *params.TableName
	pkName := m.pkAttr[tbl]

	keys := make([]string, 0)
	for k := range m.ensureTable(tbl) {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if params.ExclusiveStartKey != nil {
		prev := params.ExclusiveStartKey[pkName].(*types.AttributeValueMemberS).Value
		for i, k := range keys {
			if k == prev {
				start = i + 1
				break
			}
		}
	}

	var filterCat string
	if params.FilterExpression != nil {
		filterCat = params.ExpressionAttributeValues[":cat"].(*types.AttributeValueMemberS).Value
	}

	out := &dyn.ScanOutput{}
	for i := start; i < len(keys); i++ {
		if params.Limit != nil && len(out.Items) == int(*params.Limit) {
			out.LastEvaluatedKey = map[string]types.AttributeValue{
				pkName: &types.AttributeValueMemberS{Value: keys[i-1]},
			}
			break
		}
		item := m.tables[tbl][keys[i]]
		if filterCat != "" {
			cat, _ := item["category_id"].(*types.AttributeValueMemberS)
			if cat == nil || cat.Value != filterCat {
				continue
			}
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (m *mockCatalog) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCatalog) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("not implemented")
}

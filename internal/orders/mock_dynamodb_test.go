package orders

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is an in-memory multi-table mock covering the expressions the
// orders service exercises end to end: the products table (stock updates),
// the orders table (create, status transitions, payment) and the carts table
// (versioned puts). Items are stored per table: table -> pkValue -> item map.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
	pkAttr map[string]string
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{},
		pkAttr: map[string]string{
			"products": "product_id",
			"orders":   "order_id",
			"carts":    "user_id",
		},
	}
}

func (m *mockDynamo) ensureTable(tbl string) map[string]map[string]types.AttributeValue {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
	return m.tables[tbl]
}

func (m *mockDynamo) pkOf(tbl string, attrs map[string]types.AttributeValue) (string, error) {
	name, ok := m.pkAttr[tbl]
	if !ok {
		return "", errors.New("unknown table " + tbl)
	}
	v, ok := attrs[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing pk attribute " + name)
	}
	return v.Value, nil
}

// seedProduct inserts a product row with the given stock and price.
func (m *mockDynamo) seedProduct(productID, name string, price float64, stock int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureTable("products")[productID] = map[string]types.AttributeValue{
		"product_id": &types.AttributeValueMemberS{Value: productID},
		"name":       &types.AttributeValueMemberS{Value: name},
		"price":      &types.AttributeValueMemberN{Value: strconv.FormatFloat(price, 'f', -1, 64)},
		"stock":      &types.AttributeValueMemberN{Value: strconv.Itoa(stock)},
	}
}

// stock reads a product's stock counter for assertions.
func (m *mockDynamo) stock(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.ensureTable("products")[productID]
	if !ok {
		return -1
	}
	n, _ := strconv.Atoi(item["stock"].(*types.AttributeValueMemberN).Value)
	return n
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := *params.TableName
	pk, err := m.pkOf(tbl, params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.ensureTable(tbl)[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := *params.TableName
	pk, err := m.pkOf(tbl, params.Item)
	if err != nil {
		return nil, err
	}
	table := m.ensureTable(tbl)
	existing, exists := table[pk]

	if params.ConditionExpression != nil {
		cond := *params.ConditionExpression
		switch {
		case strings.HasPrefix(cond, "attribute_not_exists("):
			if exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case cond == "version = :v":
			if !exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
			want := params.ExpressionAttributeValues[":v"].(*types.AttributeValueMemberN).Value
			got := existing["version"].(*types.AttributeValueMemberN).Value
			if want != got {
				return nil, &types.ConditionalCheckFailedException{}
			}
		default:
			return nil, errors.New("unsupported put condition: " + cond)
		}
	}
	table[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := *params.TableName
	pk, err := m.pkOf(tbl, params.Key)
	if err != nil {
		return nil, err
	}
	table := m.ensureTable(tbl)
	item, exists := table[pk]
	expr := ""
	if params.UpdateExpression != nil {
		expr = *params.UpdateExpression
	}
	vals := params.ExpressionAttributeValues

	switch {
	case strings.Contains(expr, "stock = stock - :q"):
		if !exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
		q, _ := strconv.Atoi(vals[":q"].(*types.AttributeValueMemberN).Value)
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
			table[pk] = item
		}
		q, _ := strconv.Atoi(vals[":q"].(*types.AttributeValueMemberN).Value)
		cur, _ := strconv.Atoi(item["stock"].(*types.AttributeValueMemberN).Value)
		item["stock"] = &types.AttributeValueMemberN{Value: strconv.Itoa(cur + q)}

	case strings.Contains(expr, "#s = :next"):
		if !exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
		expected := vals[":expected"].(*types.AttributeValueMemberS).Value
		cur := item["status"].(*types.AttributeValueMemberS).Value
		if cur != expected {
			return nil, &types.ConditionalCheckFailedException{}
		}
		item["status"] = vals[":next"]
		if v, ok := vals[":tn"]; ok {
			item["tracking_number"] = v
		}
		if v, ok := vals[":d"]; ok {
			item["is_delivered"] = v
			item["delivered_at"] = vals[":da"]
		}
		if v, ok := vals[":ua"]; ok {
			item["updated_at"] = v
		}

	case strings.Contains(expr, "is_paid = :t"):
		if !exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
		item["is_paid"] = vals[":t"]
		item["paid_at"] = vals[":pa"]
		item["payment_result"] = vals[":pr"]
		item["updated_at"] = vals[":ua"]

	default:
		return nil, errors.New("unsupported update expression: " + expr)
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// only the user GSI query is issued
	uid := params.ExpressionAttributeValues[":uid"].(*types.AttributeValueMemberS).Value
	out := &dyn.QueryOutput{}
	for _, item := range m.ensureTable(*params.TableName) {
		if v, ok := item["user_id"].(*types.AttributeValueMemberS); ok && v.Value == uid {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
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

	out := &dyn.ScanOutput{}
	for i := start; i < len(keys); i++ {
		if params.Limit != nil && len(out.Items) == int(*params.Limit) {
			out.LastEvaluatedKey = map[string]types.AttributeValue{
				pkName: &types.AttributeValueMemberS{Value: keys[i-1]},
			}
			break
		}
		out.Items = append(out.Items, m.tables[tbl][keys[i]])
	}
	return out, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := *params.TableName
	pk, err := m.pkOf(tbl, params.Key)
	if err != nil {
		return nil, err
	}
	delete(m.ensureTable(tbl), pk)
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("not implemented")
}

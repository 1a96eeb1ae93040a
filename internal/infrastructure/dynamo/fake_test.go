package dynamo

import (
	"context"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

type item = map[string]types.AttributeValue

// fakeDynamo is an in-memory API that understands the expressions the store renders.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]item

	pageSize      int
	transactCalls int
	failTransact  int // 1-based TransactWriteItems call that fails; 0 never
	putCalls      int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: make(map[string]map[string]item), pageSize: 2}
}

func (f *fakeDynamo) table(name string) map[string]item {
	t, ok := f.tables[name]
	if !ok {
		t = make(map[string]item)
		f.tables[name] = t
	}
	return t
}

func keyOf(key item) string {
	return key[keyAttr].(*types.AttributeValueMemberS).Value
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.table(*in.TableName)[keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	f.table(*in.TableName)[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.table(*in.TableName)[keyOf(in.Key)]
	if !ok {
		return nil, conditionFailed()
	}
	for placeholder, name := range in.ExpressionAttributeNames {
		if !strings.HasPrefix(placeholder, "#f") {
			continue
		}
		current[name] = in.ExpressionAttributeValues[":v"+strings.TrimPrefix(placeholder, "#f")]
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.table(*in.TableName)
	k := keyOf(in.Key)
	if _, ok := t[k]; !ok {
		return nil, conditionFailed()
	}
	delete(t, k)
	return &dynamodb.DeleteItemOutput{}, nil
}

// Scan pages through items in key order, pageSize at a time.
func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.table(*in.TableName)
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	start := 0
	if in.ExclusiveStartKey != nil {
		start, _ = slices.BinarySearch(keys, keyOf(in.ExclusiveStartKey))
		start++
	}
	end := min(start+f.pageSize, len(keys))

	out := &dynamodb.ScanOutput{}
	for _, k := range keys[start:end] {
		if matchesFilter(t[k], in) {
			out.Items = append(out.Items, t[k])
		}
	}
	if end < len(keys) {
		out.LastEvaluatedKey = strKey(keyAttr, keys[end-1])
	}
	return out, nil
}

func matchesFilter(it item, in *dynamodb.ScanInput) bool {
	for placeholder, name := range in.ExpressionAttributeNames {
		want := in.ExpressionAttributeValues[":w"+strings.TrimPrefix(placeholder, "#w")]
		if !reflect.DeepEqual(it[name], want) {
			return false
		}
	}
	return true
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactCalls++
	if f.transactCalls == f.failTransact {
		return nil, &types.TransactionCanceledException{Message: aws.String("Transaction cancelled")}
	}
	if len(in.TransactItems) > maxTransactItems {
		return nil, &smithy.GenericAPIError{Code: "ValidationException", Message: "too many items"}
	}
	for _, ti := range in.TransactItems {
		switch {
		case ti.Put != nil:
			f.table(*ti.Put.TableName)[keyOf(ti.Put.Item)] = ti.Put.Item
		case ti.Delete != nil:
			delete(f.table(*ti.Delete.TableName), keyOf(ti.Delete.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

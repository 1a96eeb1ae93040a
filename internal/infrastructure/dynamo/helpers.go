package dynamo

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/learninghub-api/internal/domain"
)

// keyAttr is the partition key of every collection table.
const keyAttr = domain.FieldID

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// expression is a rendered expression with its placeholder maps.
type expression struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET expression.
// Fields are visited in sorted order so the rendered expression is deterministic.
func buildUpdateExpr(updates domain.Fields) (*expression, error) {
	if len(updates) == 0 {
		return nil, errors.New("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	ue := &expression{
		Names:  make(map[string]string, len(keys)),
		Values: make(map[string]types.AttributeValue, len(keys)),
	}
	parts := make([]string, 0, len(keys))
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		parts = append(parts, nameKey+" = "+valueKey)
	}
	ue.Expr = "SET " + strings.Join(parts, ", ")
	return ue, nil
}

// buildFilterExpr renders equality filters as "#w0 = :w0 AND #w1 = :w1".
// Attribute values keep their type, so a number never matches a string.
func buildFilterExpr(filters []domain.Filter) (*expression, error) {
	fe := &expression{
		Names:  make(map[string]string, len(filters)),
		Values: make(map[string]types.AttributeValue, len(filters)),
	}
	parts := make([]string, 0, len(filters))
	for i, f := range filters {
		nameKey := fmt.Sprintf("#w%d", i)
		valueKey := fmt.Sprintf(":w%d", i)
		av, err := attributevalue.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal filter %s: %w", f.Field, err)
		}
		fe.Names[nameKey] = f.Field
		fe.Values[valueKey] = av
		parts = append(parts, nameKey+" = "+valueKey)
	}
	fe.Expr = strings.Join(parts, " AND ")
	return fe, nil
}

// encodeItem marshals fields into an item keyed by docID.
func encodeItem(docID string, fields domain.Fields) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(fields.Without(keyAttr))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	item[keyAttr] = &types.AttributeValueMemberS{Value: docID}
	return item, nil
}

// decodeItem splits an item into its key and the remaining fields.
func decodeItem(item map[string]types.AttributeValue) (domain.Document, error) {
	var fields map[string]any
	err := attributevalue.UnmarshalMapWithOptions(item, &fields, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: unmarshal item: %w", domain.ErrStoreUnavailable, err)
	}
	docID, _ := fields[keyAttr].(string)
	delete(fields, keyAttr)
	for k, v := range fields {
		fields[k] = numbers(v)
	}
	return domain.Document{ID: docID, Fields: fields}, nil
}

// numbers turns attributevalue.Number into int64 when the value is integral
// and float64 otherwise, recursing into maps and lists.
func numbers(v any) any {
	switch t := v.(type) {
	case attributevalue.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = numbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = numbers(e)
		}
		return t
	}
	return v
}

// classify maps SDK errors onto the store sentinels.
func classify(err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ValidationException", "SerializationException":
			return fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}

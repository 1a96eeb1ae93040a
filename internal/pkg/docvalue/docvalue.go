// Package docvalue implements the value semantics shared by the store drivers
// that evaluate queries in process: typed equality, a total ordering,
// deep copies and the set of storable value types.
package docvalue

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/learninghub-api/internal/domain"
)

// Equal reports whether a and b are equal document values. Numbers compare
// by value across Go numeric types; values of different kinds are never equal.
func Equal(a, b any) bool {
	if fa, ok := Number(a); ok {
		fb, ok := Number(b)
		return ok && fa == fb
	}
	if _, ok := Number(b); ok {
		return false
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// Compare orders two document values. Values of different kinds are ordered
// by kind rank: null, bool, number, string, then everything else.
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	case rankNumber:
		fa, _ := Number(a)
		fb, _ := Number(b)
		return cmp.Compare(fa, fb)
	case rankString:
		return cmp.Compare(a.(string), b.(string))
	case rankOther:
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
	return 0
}

const (
	rankNull = iota
	rankBool
	rankNumber
	rankString
	rankOther
)

func rank(v any) int {
	switch v.(type) {
	case nil:
		return rankNull
	case bool:
		return rankBool
	case string:
		return rankString
	}
	if _, ok := Number(v); ok {
		return rankNumber
	}
	return rankOther
}

// Number converts any Go numeric value to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// normalize turns named map and slice types into their plain forms so that
// Fields{} and map[string]any{} compare equal.
func normalize(v any) any {
	switch t := v.(type) {
	case domain.Fields:
		return map[string]any(t)
	}
	return v
}

// Order sorts docs by o and drops documents that lack the ordered field.
// A nil order returns docs unchanged. The sort is stable.
func Order(docs []domain.Document, o *domain.Order) []domain.Document {
	if o == nil {
		return docs
	}
	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if _, ok := d.Fields[o.Field]; ok {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Document) int {
		c := Compare(a.Fields[o.Field], b.Fields[o.Field])
		if o.Direction == domain.Desc {
			return -c
		}
		return c
	})
	return out
}

// Matches reports whether every filter holds for fields.
func Matches(fields domain.Fields, filters []domain.Filter) bool {
	for _, f := range filters {
		v, ok := fields[f.Field]
		if !ok || !Equal(v, f.Value) {
			return false
		}
	}
	return true
}

// Clone deep-copies maps and slices inside a document value.
func Clone(v any) any {
	switch t := v.(type) {
	case domain.Fields:
		return CloneFields(t)
	case map[string]any:
		return map[string]any(CloneFields(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	}
	return v
}

// CloneFields deep-copies a field map.
func CloneFields(f map[string]any) domain.Fields {
	out := make(domain.Fields, len(f))
	for k, v := range f {
		out[k] = Clone(v)
	}
	return out
}

// Validate rejects values a document store cannot persist: functions,
// channels, complex numbers and maps keyed by anything but strings.
func Validate(fields map[string]any) error {
	for k, v := range fields {
		if err := validateValue(reflect.ValueOf(v)); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

func validateValue(v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nil
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return validateValue(v.Elem())
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if err := validateValue(v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("unsupported map key type %s", v.Type().Key())
		}
		iter := v.MapRange()
		for iter.Next() {
			if err := validateValue(iter.Value()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		if v.Type() == timeType {
			return nil
		}
	}
	return fmt.Errorf("unsupported value type %s", v.Type())
}

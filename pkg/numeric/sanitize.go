// Package numeric normalizes values scanned from aggregate queries before they
// are used in arithmetic or serialized to JSON.
package numeric

import (
	"math/big"
	"reflect"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Sanitize walks maps and slices and replaces integer and arbitrary-precision
// numeric values with float64, the number type encoding/json round-trips.
// NUMERIC columns delivered as raw text ([]byte) are parsed as decimals;
// []byte that is not numeric, strings, bools, times and nil pass through.
// Pointers are followed; a nil pointer becomes nil.
func Sanitize(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case *any:
		if v == nil {
			return nil
		}
		return Sanitize(*v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = Sanitize(inner)
		}
		return out
	case []map[string]any:
		return SanitizeRows(v)
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = Sanitize(inner)
		}
		return out
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case *big.Int:
		if v == nil {
			return nil
		}
		f, _ := new(big.Float).SetInt(v).Float64()
		return f
	case decimal.Decimal:
		f, _ := v.Float64()
		return f
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		f, _ := v.Float64()
		return f
	case decimal.NullDecimal:
		if !v.Valid {
			return nil
		}
		f, _ := v.Decimal.Float64()
		return f
	case pgtype.Numeric:
		if !v.Valid {
			return nil
		}
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case []byte:
		parsed, err := decimal.NewFromString(string(v))
		if err != nil {
			return v
		}
		f, _ := parsed.Float64()
		return f
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Pointer {
			return value
		}
		if rv.IsNil() {
			return nil
		}
		return Sanitize(rv.Elem().Interface())
	}
}

// SanitizeRows applies Sanitize to every row of a raw aggregate result.
func SanitizeRows(rows []map[string]any) []map[string]any {
	if rows == nil {
		return nil
	}
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		if row == nil {
			continue
		}
		out[i] = Sanitize(row).(map[string]any)
	}
	return out
}

// Float reads a sanitized value as float64. Numeric strings are accepted
// because some drivers report NUMERIC results as text.
func Float(value any) (float64, bool) {
	switch v := Sanitize(value).(type) {
	case float64:
		return v, true
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return 0, false
		}
		f, _ := parsed.Float64()
		return f, true
	default:
		return 0, false
	}
}

// Int64 reads a sanitized value as an integer, truncating any fraction.
func Int64(value any) (int64, bool) {
	f, ok := Float(value)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

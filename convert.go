package jdelta

import (
	"fmt"
	"reflect"
	"slices"
	"time"
)

// FromAny converts decoded Go data into a Value.
//
// Supported inputs:
//   - bool, string, []byte
//   - every signed, unsigned and floating point kind (as numbers)
//   - time.Time (RFC 3339 string) and time.Duration (seconds)
//   - []any and map[string]any, recursively; map keys are sorted so the
//     result does not depend on map iteration order
//   - Value and []Field
//
// Anything else, including nil, becomes an Unknown value naming the input
// type so the mismatch stays visible in comparisons.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Unknown("null")
	case Value:
		return normalize(x)
	case []Field:
		return Object(x...)
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case []byte:
		return Binary(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case time.Time:
		return String(x.Format(time.RFC3339Nano))
	case time.Duration:
		return Number(x.Seconds())
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = FromAny(e)
		}
		return Array(elems...)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		fields := make([]Field, len(keys))
		for i, k := range keys {
			fields[i] = Field{Key: k, Value: FromAny(x[k])}
		}
		return Object(fields...)
	}
	return fromReflect(reflect.ValueOf(v))
}

// fromReflect handles the remaining numeric kinds and named types whose
// underlying kind is supported.
func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.String:
		return String(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Unknown("null")
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return Unknown("null")
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Binary(rv.Bytes())
		}
		fallthrough
	case reflect.Array:
		elems := make([]Value, rv.Len())
		for i := range elems {
			elems[i] = FromAny(rv.Index(i).Interface())
		}
		return Array(elems...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		fields := make([]Field, len(keys))
		for i, k := range keys {
			fields[i] = Field{Key: k, Value: FromAny(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())}
		}
		return Object(fields...)
	case reflect.Invalid:
		return Unknown("null")
	}
	return Unknown(fmt.Sprintf("unsupported type %s", rv.Type()))
}

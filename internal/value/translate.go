package value

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Nativer is implemented by SDK model objects that render themselves
// as a native JSON-like map.
type Nativer interface {
	JSON() map[string]any
}

// TranslationError reports a native value that has no Value form.
type TranslationError struct {
	Path string
	Type string
}

func (e *TranslationError) Error() string {
	path := e.Path
	if path == "" {
		path = "$"
	}
	return fmt.Sprintf("value: cannot translate %s at %s", e.Type, path)
}

// FromNative converts a native Go tree into a Value. Object keys whose
// native value is nil are dropped rather than kept as Null.
func FromNative(x any) (Value, error) {
	var gaps []error
	v, ok := fromNative(x, "", &gaps, true)
	if !ok {
		return Value{}, gaps[0]
	}
	return v, nil
}

// FromNativeLenient converts like FromNative but degrades each failing
// sub-value to an absent field. An array with a failing element is
// absent as a whole. Every gap is returned so it can be logged.
func FromNativeLenient(x any) (Value, []error) {
	var gaps []error
	v, ok := fromNative(x, "", &gaps, false)
	if !ok {
		return Value{}, gaps
	}
	return v, gaps
}

// ObjectArray translates a slice of SDK objects element by element.
func ObjectArray[T Nativer](items []T) (Value, []error) {
	out := make([]Value, 0, len(items))
	var gaps []error
	for i, item := range items {
		elem, elemGaps := FromNativeLenient(item.JSON())
		gaps = append(gaps, elemGaps...)
		if elem.Kind() != ObjectKind {
			gaps = append(gaps, &TranslationError{Path: "[" + strconv.Itoa(i) + "]", Type: "non-object element"})
			return Value{}, gaps
		}
		out = append(out, elem)
	}
	return Array(out...), gaps
}

func fromNative(x any, path string, gaps *[]error, strict bool) (Value, bool) {
	fail := func(typ string) (Value, bool) {
		*gaps = append(*gaps, &TranslationError{Path: path, Type: typ})
		return Value{}, false
	}

	switch t := x.(type) {
	case nil:
		return Null(), true
	case Value:
		return t, true
	case bool:
		return Bool(t), true
	case string:
		return String(t), true
	case float64:
		return Number(t), true
	case float32:
		return Number(float64(t)), true
	case int:
		return Number(float64(t)), true
	case int8:
		return Number(float64(t)), true
	case int16:
		return Number(float64(t)), true
	case int32:
		return Number(float64(t)), true
	case int64:
		return Number(float64(t)), true
	case uint:
		return Number(float64(t)), true
	case uint8:
		return Number(float64(t)), true
	case uint16:
		return Number(float64(t)), true
	case uint32:
		return Number(float64(t)), true
	case uint64:
		return Number(float64(t)), true
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return fail("json.Number " + t.String())
		}
		return Number(n), true
	case json.RawMessage:
		var v Value
		if err := json.Unmarshal(t, &v); err != nil {
			return fail("json.RawMessage")
		}
		return v, true
	case Nativer:
		if isNilPointer(t) {
			return Null(), true
		}
		return fromNative(t.JSON(), path, gaps, strict)
	case map[string]any:
		return fromMap(t, path, gaps, strict)
	case []any:
		return fromSlice(len(t), func(i int) any { return t[i] }, path, gaps, strict)
	case []string:
		return fromSlice(len(t), func(i int) any { return t[i] }, path, gaps, strict)
	case []float64:
		return fromSlice(len(t), func(i int) any { return t[i] }, path, gaps, strict)
	case []map[string]any:
		return fromSlice(len(t), func(i int) any { return t[i] }, path, gaps, strict)
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), true
		}
		return fromNative(rv.Elem().Interface(), path, gaps, strict)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), true
		}
		return fromSlice(rv.Len(), func(i int) any { return rv.Index(i).Interface() }, path, gaps, strict)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fail(rv.Type().String())
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return fromMap(m, path, gaps, strict)
	case reflect.String:
		return String(rv.String()), true
	case reflect.Bool:
		return Bool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(rv.Uint())), true
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), true
	}

	return fail(fmt.Sprintf("%T", x))
}

func fromMap(m map[string]any, path string, gaps *[]error, strict bool) (Value, bool) {
	fields := make(map[string]Value, len(m))
	for k, raw := range m {
		if raw == nil {
			continue
		}
		v, ok := fromNative(raw, path+"."+k, gaps, strict)
		if !ok {
			if strict {
				return Value{}, false
			}
			continue
		}
		if v.IsNull() {
			continue
		}
		fields[k] = v
	}
	return Object(fields), true
}

func fromSlice(n int, at func(int) any, path string, gaps *[]error, strict bool) (Value, bool) {
	items := make([]Value, 0, n)
	for i := range n {
		v, ok := fromNative(at(i), path+"["+strconv.Itoa(i)+"]", gaps, strict)
		if !ok {
			return Value{}, false
		}
		items = append(items, v)
	}
	return Array(items...), true
}

func isNilPointer(x any) bool {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ToNative converts v into map[string]any, []any, float64, string,
// bool or nil. Null-valued object fields are skipped.
func ToNative(v Value) any {
	switch v.kind {
	case BoolKind:
		return v.b
	case NumberKind:
		return v.n
	case StringKind:
		return v.s
	case ArrayKind:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = ToNative(item)
		}
		return out
	case ObjectKind:
		return ToNativeObject(v)
	}
	return nil
}

// ToNativeObject returns nil unless v is an object.
func ToNativeObject(v Value) map[string]any {
	if v.kind != ObjectKind {
		return nil
	}
	out := make(map[string]any, len(v.obj))
	for k, field := range v.obj {
		if field.IsNull() {
			continue
		}
		out[k] = ToNative(field)
	}
	return out
}

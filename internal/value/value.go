package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

type Kind uint8

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case ArrayKind:
		return "array"
	case ObjectKind:
		return "object"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is the untyped tree exchanged with the application runtime.
// The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: BoolKind, b: b} }

func Number(n float64) Value { return Value{kind: NumberKind, n: n} }

func Int(n int) Value { return Number(float64(n)) }

func String(s string) Value { return Value{kind: StringKind, s: s} }

func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: ArrayKind, arr: items}
}

// Object wraps fields. Null-valued fields are kept as given; use
// Builder when absent fields should be skipped.
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: ObjectKind, obj: fields}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == NullKind }

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == BoolKind
}

func (v Value) AsNumber() (float64, bool) {
	return v.n, v.kind == NumberKind
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == StringKind
}

func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.kind == ArrayKind
}

func (v Value) AsObject() (map[string]Value, bool) {
	return v.obj, v.kind == ObjectKind
}

// Get returns the field stored under key when v is an object.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != ObjectKind {
		return Value{}, false
	}
	f, ok := v.obj[key]
	return f, ok
}

// Has reports whether key is present with a non-null value.
func (v Value) Has(key string) bool {
	f, ok := v.Get(key)
	return ok && !f.IsNull()
}

func (v Value) Keys() []string {
	if v.kind != ObjectKind {
		return nil
	}
	return slices.Sorted(maps.Keys(v.obj))
}

func (v Value) Len() int {
	switch v.kind {
	case ArrayKind:
		return len(v.arr)
	case ObjectKind:
		return len(v.obj)
	case StringKind:
		return len(v.s)
	}
	return 0
}

func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case NullKind:
		return true
	case BoolKind:
		return a.b == b.b
	case NumberKind:
		return a.n == b.n
	case StringKind:
		return a.s == b.s
	case ArrayKind:
		return slices.EqualFunc(a.arr, b.arr, Equal)
	case ObjectKind:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for k, av := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) String() string {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(out)
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case NullKind:
		return []byte("null"), nil
	case BoolKind:
		return json.Marshal(v.b)
	case NumberKind:
		return json.Marshal(v.n)
	case StringKind:
		return json.Marshal(v.s)
	case ArrayKind:
		return json.Marshal(v.arr)
	case ObjectKind:
		return json.Marshal(v.obj)
	}
	return nil, fmt.Errorf("value: unknown kind %d", v.kind)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	parsed, err := FromNative(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Builder assembles an object Value, skipping null fields.
type Builder struct {
	fields map[string]Value
}

func NewBuilder() *Builder {
	return &Builder{fields: map[string]Value{}}
}

func (b *Builder) Set(key string, v Value) *Builder {
	if !v.IsNull() {
		b.fields[key] = v
	}
	return b
}

func (b *Builder) Value() Value {
	return Object(b.fields)
}

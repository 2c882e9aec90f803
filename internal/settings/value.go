package settings

import (
	"math"
	"slices"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Value is one node of a settings document.
// The zero Value is null. Values are immutable once built: every mutation
// in this package returns a new Value and leaves its input untouched.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  *Object
}

// Null returns the JSON null value
func Null() Value { return Value{} }

// Bool wraps a boolean
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a finite float. Non-finite input collapses to null because
// JSON cannot carry it.
func Number(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, n: n}
}

// String wraps a string
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array builds an array from items. The slice is copied.
func Array(items ...Value) Value {
	return Value{kind: KindArray, arr: slices.Clone(items)}
}

// EmptyArray returns []
func EmptyArray() Value { return Value{kind: KindArray, arr: []Value{}} }

// EmptyObject returns {}
func EmptyObject() Value { return Value{kind: KindObject, obj: NewObject()} }

// FromObject wraps an Object. The object is copied so later changes made
// through the builder do not leak into the Value.
func FromObject(o *Object) Value {
	if o == nil {
		return EmptyObject()
	}
	return Value{kind: KindObject, obj: o.clone()}
}

// Kind returns the variant tag
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsComposite reports whether v is an object or an array
func (v Value) IsComposite() bool { return v.kind == KindObject || v.kind == KindArray }

// AsBool returns the boolean payload (false for other kinds)
func (v Value) AsBool() bool { return v.kind == KindBool && v.b }

// AsNumber returns the numeric payload (0 for other kinds)
func (v Value) AsNumber() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.n
}

// AsString returns the string payload ("" for other kinds)
func (v Value) AsString() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// Len returns the number of children of a composite, 0 otherwise
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	}
	return 0
}

// Index returns the i-th array element
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Items returns a copy of the array elements
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return slices.Clone(v.arr)
}

// Field returns the value stored under key in an object
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	return v.obj.Get(key)
}

// Keys returns the object keys in order
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return v.obj.Keys()
}

// Object returns a copy of the object payload, usable as a builder
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.obj.clone()
}

// Equal reports deep equality. Object key order is ignored.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, k := range a.obj.keys {
			bv, ok := b.obj.Get(k)
			if !ok || !Equal(a.obj.values[k], bv) {
				return false
			}
		}
		return true
	}
	return false
}

// SortKeys returns v with every object's keys in ascending order, recursively
func SortKeys(v Value) Value {
	switch v.kind {
	case KindArray:
		out := make([]Value, len(v.arr))
		for i, item := range v.arr {
			out[i] = SortKeys(item)
		}
		return Value{kind: KindArray, arr: out}
	case KindObject:
		keys := v.obj.Keys()
		slices.Sort(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, SortKeys(v.obj.values[k]))
		}
		return Value{kind: KindObject, obj: obj}
	}
	return v
}

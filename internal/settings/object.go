package settings

import "slices"

// Object is an insertion-ordered string map of Values.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty object builder
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Len returns the number of keys
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.keys)
}

// Get returns the value stored under key
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores v under key. An existing key keeps its position.
func (o *Object) Set(key string, v Value) *Object {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
	return o
}

// Remove drops key, preserving the order of the remaining keys
func (o *Object) Remove(key string) *Object {
	if _, ok := o.values[key]; !ok {
		return o
	}
	delete(o.values, key)
	if i := slices.Index(o.keys, key); i >= 0 {
		o.keys = slices.Delete(o.keys, i, i+1)
	}
	return o
}

// clone copies the key list and map. Child values are shared.
func (o *Object) clone() *Object {
	if o == nil {
		return NewObject()
	}
	values := make(map[string]Value, len(o.values))
	for k, v := range o.values {
		values[k] = v
	}
	return &Object{keys: slices.Clone(o.keys), values: values}
}

package settings

import "slices"

// Merge folds delta into base and returns the result.
//
// Objects merge key by key, recursing into nested objects. When mergeLists
// is set, an array in delta is appended to the array in base, skipping
// elements base already holds. Any other pair is replaced by delta's value.
// If either side is not an object, the result is delta.
func Merge(base, delta Value, mergeLists bool) Value {
	if base.kind != KindObject || delta.kind != KindObject {
		return delta
	}

	obj := base.obj.clone()
	for _, k := range delta.obj.keys {
		d := delta.obj.values[k]
		b, ok := obj.Get(k)
		switch {
		case ok && b.kind == KindObject && d.kind == KindObject:
			obj.Set(k, Merge(b, d, mergeLists))
		case ok && mergeLists && b.kind == KindArray && d.kind == KindArray:
			items := slices.Clone(b.arr)
			for _, item := range d.arr {
				if !containsValue(items, item) {
					items = append(items, item)
				}
			}
			obj.Set(k, Value{kind: KindArray, arr: items})
		default:
			obj.Set(k, d)
		}
	}
	return Value{kind: KindObject, obj: obj}
}

func containsValue(items []Value, v Value) bool {
	return slices.ContainsFunc(items, func(x Value) bool { return Equal(x, v) })
}

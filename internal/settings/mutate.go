package settings

import (
	"fmt"
	"slices"
)

// Read returns the value at path
func Read(doc Value, path Path) (Value, error) {
	cur := doc
	for i, seg := range path {
		next, ok := childAt(cur, seg)
		if !ok {
			return Value{}, fmt.Errorf("%w: %s", ErrNotFound, path[:i+1])
		}
		cur = next
	}
	return cur, nil
}

// Exists reports whether path resolves inside doc
func Exists(doc Value, path Path) bool {
	_, err := Read(doc, path)
	return err == nil
}

// Write returns a copy of doc with v stored at path.
//
// Every segment but the last must resolve to an existing object or array.
// The last segment sets an object key (existing keys keep their position)
// or an array index, where index == len appends. doc is never modified.
func Write(doc Value, path Path, v Value) (Value, error) {
	if len(path) == 0 {
		return v, nil
	}
	return writeAt(doc, path, 0, v)
}

func writeAt(node Value, path Path, depth int, v Value) (Value, error) {
	seg := path[depth]
	last := depth == len(path)-1

	switch node.kind {
	case KindObject:
		if seg.isIndex {
			return Value{}, fmt.Errorf("%w: %s: index into object", ErrInvalidPath, path[:depth+1])
		}
		if !last {
			child, ok := node.obj.Get(seg.key)
			if !ok {
				return Value{}, fmt.Errorf("%w: %s does not exist", ErrInvalidPath, path[:depth+1])
			}
			updated, err := writeAt(child, path, depth+1, v)
			if err != nil {
				return Value{}, err
			}
			v = updated
		}
		obj := node.obj.clone()
		obj.Set(seg.key, v)
		return Value{kind: KindObject, obj: obj}, nil

	case KindArray:
		if !seg.isIndex {
			return Value{}, fmt.Errorf("%w: %s: key into array", ErrInvalidPath, path[:depth+1])
		}
		idx := seg.index
		if last {
			switch {
			case idx == len(node.arr):
				items := make([]Value, len(node.arr), len(node.arr)+1)
				copy(items, node.arr)
				return Value{kind: KindArray, arr: append(items, v)}, nil
			case idx >= 0 && idx < len(node.arr):
				items := slices.Clone(node.arr)
				items[idx] = v
				return Value{kind: KindArray, arr: items}, nil
			}
			return Value{}, fmt.Errorf("%w: %s: index out of range (len %d)", ErrInvalidPath, path[:depth+1], len(node.arr))
		}
		if idx < 0 || idx >= len(node.arr) {
			return Value{}, fmt.Errorf("%w: %s does not exist", ErrInvalidPath, path[:depth+1])
		}
		updated, err := writeAt(node.arr[idx], path, depth+1, v)
		if err != nil {
			return Value{}, err
		}
		items := slices.Clone(node.arr)
		items[idx] = updated
		return Value{kind: KindArray, arr: items}, nil
	}

	return Value{}, fmt.Errorf("%w: %s is a %s, not a container", ErrInvalidPath, path[:depth], node.kind)
}

// Delete returns a copy of doc without the value at path.
//
// Array elements are removed and the tail shifts down; object keys are
// removed entirely. The root cannot be deleted.
func Delete(doc Value, path Path) (Value, error) {
	if len(path) == 0 {
		return Value{}, fmt.Errorf("%w: cannot delete the document root", ErrInvalidPath)
	}
	return deleteAt(doc, path, 0)
}

func deleteAt(node Value, path Path, depth int) (Value, error) {
	seg := path[depth]

	if depth == len(path)-1 {
		switch {
		case node.kind == KindObject && !seg.isIndex:
			if !node.obj.Has(seg.key) {
				return Value{}, fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			obj := node.obj.clone()
			obj.Remove(seg.key)
			return Value{kind: KindObject, obj: obj}, nil
		case node.kind == KindArray && seg.isIndex:
			if seg.index < 0 || seg.index >= len(node.arr) {
				return Value{}, fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			items := make([]Value, 0, len(node.arr)-1)
			items = append(items, node.arr[:seg.index]...)
			items = append(items, node.arr[seg.index+1:]...)
			return Value{kind: KindArray, arr: items}, nil
		}
		return Value{}, fmt.Errorf("%w: cannot remove %s from a %s", ErrInvalidTarget, seg.Label(), node.kind)
	}

	child, ok := childAt(node, seg)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s does not exist", ErrInvalidPath, path[:depth+1])
	}
	updated, err := deleteAt(child, path, depth+1)
	if err != nil {
		return Value{}, err
	}
	return replaceChild(node, seg, updated), nil
}

func childAt(v Value, seg Segment) (Value, bool) {
	if seg.isIndex {
		return v.Index(seg.index)
	}
	return v.Field(seg.key)
}

// replaceChild assumes seg already resolves inside node
func replaceChild(node Value, seg Segment, child Value) Value {
	if node.kind == KindArray {
		items := slices.Clone(node.arr)
		items[seg.index] = child
		return Value{kind: KindArray, arr: items}
	}
	obj := node.obj.clone()
	obj.Set(seg.key, child)
	return Value{kind: KindObject, obj: obj}
}

package settings

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key addresses an object field
func Key(k string) Segment { return Segment{key: k} }

// Index addresses an array element
func Index(i int) Segment { return Segment{index: i, isIndex: true} }

// IsIndex reports whether s addresses an array element
func (s Segment) IsIndex() bool { return s.isIndex }

// Key returns the object key ("" for index segments)
func (s Segment) Key() string { return s.key }

// Index returns the array index (-1 for key segments)
func (s Segment) Index() int {
	if !s.isIndex {
		return -1
	}
	return s.index
}

// Label renders the segment the way the editor shows it: the bare key for
// object fields, "[i]" for array elements.
func (s Segment) Label() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.key
}

// Path locates a node inside a settings document. The empty path is the root.
type Path []Segment

// ParsePath parses the dotted form produced by Path.String, e.g.
// "nested.items[0].name". A backslash escapes '.', '[', ']' and '\' in keys.
func ParsePath(s string) (Path, error) {
	var (
		path    Path
		key     strings.Builder
		inKey   bool
		escaped bool
	)

	flushKey := func(pos int) error {
		if !inKey {
			return nil
		}
		if key.Len() == 0 {
			return fmt.Errorf("%w: empty key at offset %d in %q", ErrInvalidPath, pos, s)
		}
		path = append(path, Key(key.String()))
		key.Reset()
		inKey = false
		return nil
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			key.WriteByte(c)
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if !inKey && i > 0 && s[i-1] == ']' {
				return nil, fmt.Errorf("%w: missing '.' after index at offset %d in %q", ErrInvalidPath, i, s)
			}
			inKey = true
			escaped = true
		case '.':
			if !inKey && (i == 0 || s[i-1] != ']') {
				return nil, fmt.Errorf("%w: empty key at offset %d in %q", ErrInvalidPath, i, s)
			}
			if err := flushKey(i); err != nil {
				return nil, err
			}
			if i == len(s)-1 {
				return nil, fmt.Errorf("%w: trailing '.' in %q", ErrInvalidPath, s)
			}
			inKey = true
		case '[':
			if inKey && key.Len() == 0 {
				return nil, fmt.Errorf("%w: empty key at offset %d in %q", ErrInvalidPath, i, s)
			}
			if err := flushKey(i); err != nil {
				return nil, err
			}
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated '[' in %q", ErrInvalidPath, s)
			}
			n, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: bad index %q in %q", ErrInvalidPath, s[i+1:i+end], s)
			}
			path = append(path, Index(n))
			i += end
		case ']':
			return nil, fmt.Errorf("%w: unexpected ']' at offset %d in %q", ErrInvalidPath, i, s)
		default:
			if !inKey && i > 0 && s[i-1] == ']' {
				return nil, fmt.Errorf("%w: missing '.' after index at offset %d in %q", ErrInvalidPath, i, s)
			}
			inKey = true
			key.WriteByte(c)
		}
	}
	if escaped {
		return nil, fmt.Errorf("%w: dangling escape in %q", ErrInvalidPath, s)
	}
	if err := flushKey(len(s)); err != nil {
		return nil, err
	}
	return path, nil
}

// MustParsePath is ParsePath for literals known to be valid
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders p in the dotted form accepted by ParsePath
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.isIndex {
			b.WriteString(seg.Label())
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		for j := 0; j < len(seg.key); j++ {
			switch c := seg.key[j]; c {
			case '.', '[', ']', '\\':
				b.WriteByte('\\')
				b.WriteByte(c)
			default:
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

// Child returns a new path with seg appended. p is not modified.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Parent returns the path without its last segment
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return slices.Clone(p[:len(p)-1])
}

// Last returns the final segment
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Equal reports whether both paths address the same node
func (p Path) Equal(q Path) bool {
	return slices.Equal(p, q)
}

package settings

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseLiteral converts user-entered text into a value of the given kind.
// Composite kinds always produce an empty container.
func ParseLiteral(kind Kind, raw string) (Value, error) {
	switch kind {
	case KindNumber:
		text := strings.TrimSpace(raw)
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
		}
		return Number(f), nil
	case KindBool:
		switch strings.TrimSpace(raw) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidBoolean, raw)
	case KindString:
		return String(raw), nil
	case KindObject:
		return EmptyObject(), nil
	case KindArray:
		return EmptyArray(), nil
	case KindNull:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("unknown kind %d", kind)
}

// Text renders a primitive the way an edit field shows it
func Text(v Value) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindString:
		return v.s
	}
	raw, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(raw)
}

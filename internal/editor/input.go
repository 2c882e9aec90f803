package editor

import (
	"strings"

	"github.com/egoavara/ovos-settings/internal/settings"
)

// Input selects the widget used to show or edit a value
type Input int

const (
	InputNull Input = iota
	InputBoolean
	InputNumber
	InputText
	InputMultiline
	InputArray
	InputObject
)

func (i Input) String() string {
	switch i {
	case InputNull:
		return "null"
	case InputBoolean:
		return "boolean"
	case InputNumber:
		return "number"
	case InputText:
		return "text"
	case InputMultiline:
		return "multiline"
	case InputArray:
		return "array"
	case InputObject:
		return "object"
	}
	return "unknown"
}

// InputFor infers the editor widget from the runtime kind of v.
// Strings containing a newline get the multi-line editor.
func InputFor(v settings.Value) Input {
	switch v.Kind() {
	case settings.KindBool:
		return InputBoolean
	case settings.KindNumber:
		return InputNumber
	case settings.KindString:
		if strings.Contains(v.AsString(), "\n") {
			return InputMultiline
		}
		return InputText
	case settings.KindArray:
		return InputArray
	case settings.KindObject:
		return InputObject
	}
	return InputNull
}

// Composite reports whether the input recurses into children
func (i Input) Composite() bool {
	return i == InputArray || i == InputObject
}

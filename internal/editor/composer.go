package editor

import (
	"fmt"
	"strings"

	"github.com/egoavara/ovos-settings/internal/settings"
)

// DraftTypes lists the types offered by the new-entry form, in display order
var DraftTypes = []settings.Kind{
	settings.KindString,
	settings.KindNumber,
	settings.KindBool,
	settings.KindObject,
	settings.KindArray,
}

// Draft is the state of an open new-entry form
type Draft struct {
	Key  string
	Type settings.Kind
	Raw  string
}

// NewDraft returns an empty string draft
func NewDraft() Draft {
	return Draft{Type: settings.KindString}
}

// SetType switches the draft type. Switching to boolean selects "true".
func (d *Draft) SetType(kind settings.Kind) {
	d.Type = kind
	if kind == settings.KindBool {
		d.Raw = "true"
	}
}

// NextType cycles through DraftTypes
func (d *Draft) NextType() {
	for i, k := range DraftTypes {
		if k == d.Type {
			d.SetType(DraftTypes[(i+1)%len(DraftTypes)])
			return
		}
	}
	d.SetType(DraftTypes[0])
}

// Compose turns a draft into the path and value of a new child of parent.
//
// Object parents need a non-blank key that is not already present.
// Array children are always appended at the current length.
func Compose(parentPath settings.Path, parent settings.Value, d Draft) (settings.Path, settings.Value, error) {
	var seg settings.Segment
	switch parent.Kind() {
	case settings.KindObject:
		key := strings.TrimSpace(d.Key)
		if key == "" {
			return nil, settings.Value{}, ErrEmptyKey
		}
		if _, ok := parent.Field(key); ok {
			return nil, settings.Value{}, fmt.Errorf("%w: %q", ErrDuplicateKey, key)
		}
		seg = settings.Key(key)
	case settings.KindArray:
		seg = settings.Index(parent.Len())
	default:
		return nil, settings.Value{}, fmt.Errorf("%w: %s is a %s", settings.ErrInvalidTarget, parentPath, parent.Kind())
	}

	v, err := settings.ParseLiteral(d.Type, d.Raw)
	if err != nil {
		return nil, settings.Value{}, err
	}
	return parentPath.Child(seg), v, nil
}

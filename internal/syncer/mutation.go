package syncer

import (
	"fmt"

	"github.com/egoavara/ovos-settings/internal/editor"
	"github.com/egoavara/ovos-settings/internal/settings"
)

// Mutation is a local change to one skill's settings document
type Mutation interface {
	apply(doc settings.Value) (settings.Value, error)
	String() string
}

// Save stores Value at Path, replacing what is there
type Save struct {
	Path  settings.Path
	Value settings.Value
}

func (m Save) apply(doc settings.Value) (settings.Value, error) {
	if len(m.Path) == 0 {
		return settings.Value{}, fmt.Errorf("%w: empty path", settings.ErrInvalidPath)
	}
	return settings.Write(doc, m.Path, m.Value)
}

func (m Save) String() string { return "save " + m.Path.String() }

// Delete removes the value at Path
type Delete struct {
	Path settings.Path
}

func (m Delete) apply(doc settings.Value) (settings.Value, error) {
	return settings.Delete(doc, m.Path)
}

func (m Delete) String() string { return "delete " + m.Path.String() }

// Add composes Draft into a new child of the container at Parent
type Add struct {
	Parent settings.Path
	Draft  editor.Draft
}

func (m Add) apply(doc settings.Value) (settings.Value, error) {
	parent, err := settings.Read(doc, m.Parent)
	if err != nil {
		return settings.Value{}, fmt.Errorf("%w: %s", settings.ErrInvalidPath, m.Parent)
	}
	path, v, err := editor.Compose(m.Parent, parent, m.Draft)
	if err != nil {
		return settings.Value{}, err
	}
	return settings.Write(doc, path, v)
}

func (m Add) String() string { return "add under " + m.Parent.String() }

// Undo restores the document from before the last mutation
type Undo struct{}

// apply is never reached; Synchronizer.Apply routes Undo to the store
func (Undo) apply(settings.Value) (settings.Value, error) {
	return settings.Value{}, fmt.Errorf("undo cannot be applied as a document change")
}

func (Undo) String() string { return "undo" }

// FromIntent converts an editor intent into a mutation
func FromIntent(intent any) (Mutation, error) {
	switch in := intent.(type) {
	case editor.SaveIntent:
		return Save{Path: in.Path, Value: in.Value}, nil
	case editor.DeleteIntent:
		return Delete{Path: in.Path}, nil
	}
	return nil, fmt.Errorf("unsupported intent %T", intent)
}

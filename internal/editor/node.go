package editor

import (
	"errors"

	"github.com/egoavara/ovos-settings/internal/settings"
)

// ParentKind tells how a node hangs off its parent
type ParentKind int

const (
	ParentNone ParentKind = iota
	ParentObject
	ParentArray
)

// State of a single node in the tree editor
type State int

const (
	Viewing State = iota
	Editing
	AddingChild
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case AddingChild:
		return "adding"
	}
	return "unknown"
}

// SaveIntent asks the owner of the document to store Value at Path
type SaveIntent struct {
	Path  settings.Path
	Value settings.Value
}

// DeleteIntent asks the owner of the document to remove Path
type DeleteIntent struct {
	Path settings.Path
}

// Node is the editing state of one value in the tree. It never changes the
// document itself; commits produce intents that the caller applies.
type Node struct {
	Path   settings.Path
	Value  settings.Value
	Parent ParentKind

	state     State
	buffer    string
	confirmed string
	draft     Draft
	err       error
}

// NewNode binds a node to a location in the document
func NewNode(path settings.Path, v settings.Value, parent ParentKind) *Node {
	return &Node{Path: path, Value: v, Parent: parent}
}

func (n *Node) State() State { return n.state }

// Err is the error of the last failed commit, cleared on the next transition
func (n *Node) Err() error { return n.err }

// Buffer is the text currently in the edit field
func (n *Node) Buffer() string { return n.buffer }

// SetBuffer replaces the edit field text
func (n *Node) SetBuffer(s string) { n.buffer = s }

// Draft returns the open new-entry form
func (n *Node) Draft() *Draft { return &n.draft }

// Label is the key for object members and [i] for array elements
func (n *Node) Label() string {
	last, ok := n.Path.Last()
	if !ok {
		return ""
	}
	return last.Label()
}

// Input returns the widget for the node value
func (n *Node) Input() Input { return InputFor(n.Value) }

// BeginEdit opens the edit field on a primitive
func (n *Node) BeginEdit() error {
	if n.state != Viewing {
		return ErrBadState
	}
	if n.Value.IsComposite() {
		return ErrNotEditable
	}
	n.confirmed = settings.Text(n.Value)
	n.buffer = n.confirmed
	n.err = nil
	n.state = Editing
	return nil
}

// ToggleBool flips a boolean edit field between "true" and "false"
func (n *Node) ToggleBool() {
	if n.state != Editing || n.Value.Kind() != settings.KindBool {
		return
	}
	if n.buffer == "true" {
		n.buffer = "false"
	} else {
		n.buffer = "true"
	}
}

// CommitEdit parses the buffer with the kind of the current value.
//
// On ErrInvalidNumber the attempted text is thrown away and the buffer shows
// the last confirmed value again; the node stays in Editing. Null leaves are
// edited as text.
func (n *Node) CommitEdit() (SaveIntent, error) {
	if n.state != Editing {
		return SaveIntent{}, ErrBadState
	}

	kind := n.Value.Kind()
	if kind == settings.KindNull {
		kind = settings.KindString
	}
	v, err := settings.ParseLiteral(kind, n.buffer)
	if err != nil {
		n.err = err
		if errors.Is(err, settings.ErrInvalidNumber) {
			n.buffer = n.confirmed
		}
		return SaveIntent{}, err
	}

	n.Value = v
	n.confirmed = settings.Text(v)
	n.buffer = ""
	n.err = nil
	n.state = Viewing
	return SaveIntent{Path: n.Path, Value: v}, nil
}

// CancelEdit closes the edit field without saving
func (n *Node) CancelEdit() {
	if n.state != Editing {
		return
	}
	n.buffer = ""
	n.err = nil
	n.state = Viewing
}

// BeginAdd opens the new-entry form on an object or array
func (n *Node) BeginAdd() error {
	if n.state != Viewing {
		return ErrBadState
	}
	if !n.Value.IsComposite() {
		return ErrNotComposite
	}
	n.draft = NewDraft()
	n.err = nil
	n.state = AddingChild
	return nil
}

// CommitAdd composes the draft into a new child. On failure the form stays
// open with the error recorded so the user can fix it and retry.
func (n *Node) CommitAdd() (SaveIntent, error) {
	if n.state != AddingChild {
		return SaveIntent{}, ErrBadState
	}
	path, v, err := Compose(n.Path, n.Value, n.draft)
	if err != nil {
		n.err = err
		return SaveIntent{}, err
	}
	n.draft = Draft{}
	n.err = nil
	n.state = Viewing
	return SaveIntent{Path: path, Value: v}, nil
}

// CancelAdd discards the draft
func (n *Node) CancelAdd() {
	if n.state != AddingChild {
		return
	}
	n.draft = Draft{}
	n.err = nil
	n.state = Viewing
}

// Delete asks confirm before producing a delete intent. A false answer
// returns ok=false and leaves everything as it was.
func (n *Node) Delete(confirm func(settings.Path) bool) (intent DeleteIntent, ok bool, err error) {
	if len(n.Path) == 0 {
		return DeleteIntent{}, false, ErrRootDelete
	}
	if n.state != Viewing {
		return DeleteIntent{}, false, ErrBadState
	}
	if confirm == nil || !confirm(n.Path) {
		return DeleteIntent{}, false, nil
	}
	return DeleteIntent{Path: n.Path}, true, nil
}

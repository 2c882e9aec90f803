package editor

import (
	"testing"

	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/stretchr/testify/require"
)

func TestInputFor(t *testing.T) {
	tests := []struct {
		name string
		val  settings.Value
		want Input
	}{
		{"bool", settings.Bool(false), InputBoolean},
		{"number", settings.Number(3), InputNumber},
		{"single line", settings.String("hello"), InputText},
		{"multi line", settings.String("a\nb"), InputMultiline},
		{"array", settings.EmptyArray(), InputArray},
		{"object", settings.EmptyObject(), InputObject},
		{"null", settings.Null(), InputNull},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, InputFor(tc.val))
		})
	}
}

func TestNodeEditLifecycle(t *testing.T) {
	n := NewNode(settings.MustParsePath("volume"), settings.Number(5), ParentObject)
	require.Equal(t, Viewing, n.State())
	require.Equal(t, "volume", n.Label())

	require.NoError(t, n.BeginEdit())
	require.Equal(t, Editing, n.State())
	require.Equal(t, "5", n.Buffer())

	n.SetBuffer("10")
	intent, err := n.CommitEdit()
	require.NoError(t, err)
	require.Equal(t, Viewing, n.State())
	require.Equal(t, "volume", intent.Path.String())
	require.True(t, settings.Equal(settings.Number(10), intent.Value))
}

func TestNodeInvalidNumberRevertsBuffer(t *testing.T) {
	n := NewNode(settings.MustParsePath("volume"), settings.Number(5), ParentObject)
	require.NoError(t, n.BeginEdit())

	n.SetBuffer("abc")
	_, err := n.CommitEdit()
	require.ErrorIs(t, err, settings.ErrInvalidNumber)
	require.Equal(t, Editing, n.State())
	require.Equal(t, "5", n.Buffer())
	require.ErrorIs(t, n.Err(), settings.ErrInvalidNumber)
	require.True(t, settings.Equal(settings.Number(5), n.Value))
}

func TestNodeBooleanToggle(t *testing.T) {
	n := NewNode(settings.MustParsePath("nested.enabled"), settings.Bool(true), ParentObject)
	require.NoError(t, n.BeginEdit())
	n.ToggleBool()
	require.Equal(t, "false", n.Buffer())

	intent, err := n.CommitEdit()
	require.NoError(t, err)
	require.True(t, settings.Equal(settings.Bool(false), intent.Value))
}

func TestNodeNullEditsAsText(t *testing.T) {
	n := NewNode(settings.MustParsePath("empty"), settings.Null(), ParentObject)
	require.NoError(t, n.BeginEdit())
	n.SetBuffer("filled")

	intent, err := n.CommitEdit()
	require.NoError(t, err)
	require.True(t, settings.Equal(settings.String("filled"), intent.Value))
}

func TestNodeCancelEdit(t *testing.T) {
	n := NewNode(settings.MustParsePath("name"), settings.String("kitchen"), ParentObject)
	require.NoError(t, n.BeginEdit())
	n.SetBuffer("other")
	n.CancelEdit()

	require.Equal(t, Viewing, n.State())
	require.True(t, settings.Equal(settings.String("kitchen"), n.Value))
}

func TestNodeCompositeRules(t *testing.T) {
	obj := NewNode(settings.MustParsePath("nested"), settings.MustParse(`{"a":1}`), ParentObject)
	require.ErrorIs(t, obj.BeginEdit(), ErrNotEditable)

	leaf := NewNode(settings.MustParsePath("volume"), settings.Number(1), ParentObject)
	require.ErrorIs(t, leaf.BeginAdd(), ErrNotComposite)

	require.NoError(t, obj.BeginAdd())
	require.ErrorIs(t, obj.BeginEdit(), ErrBadState)
	obj.CancelAdd()
	require.Equal(t, Viewing, obj.State())
}

func TestNodeAddKeepsDraftOnError(t *testing.T) {
	n := NewNode(settings.MustParsePath("nested"), settings.MustParse(`{"a":1}`), ParentObject)
	require.NoError(t, n.BeginAdd())

	n.Draft().Key = "   "
	_, err := n.CommitAdd()
	require.ErrorIs(t, err, ErrEmptyKey)
	require.Equal(t, AddingChild, n.State())

	n.Draft().Key = "b"
	n.Draft().SetType(settings.KindNumber)
	n.Draft().Raw = "x"
	_, err = n.CommitAdd()
	require.ErrorIs(t, err, settings.ErrInvalidNumber)
	require.Equal(t, AddingChild, n.State())
	require.Equal(t, "b", n.Draft().Key)

	n.Draft().Raw = "2"
	intent, err := n.CommitAdd()
	require.NoError(t, err)
	require.Equal(t, Viewing, n.State())
	require.Equal(t, "nested.b", intent.Path.String())
	require.True(t, settings.Equal(settings.Number(2), intent.Value))
}

func TestNodeDeleteNeedsConfirmation(t *testing.T) {
	n := NewNode(settings.MustParsePath("items[0]"), settings.String("x"), ParentArray)

	var asked settings.Path
	_, ok, err := n.Delete(func(p settings.Path) bool {
		asked = p
		return false
	})
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "items[0]", asked.String())

	intent, ok, err := n.Delete(func(settings.Path) bool { return true })
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "items[0]", intent.Path.String())

	root := NewNode(nil, settings.EmptyObject(), ParentNone)
	_, _, err = root.Delete(func(settings.Path) bool { return true })
	require.ErrorIs(t, err, ErrRootDelete)
}

func TestCompose(t *testing.T) {
	obj := settings.MustParse(`{"volume": 5}`)
	arr := settings.MustParse(`["x", "y"]`)

	tests := []struct {
		name     string
		parent   settings.Value
		draft    Draft
		wantPath string
		want     settings.Value
		wantErr  error
	}{
		{"string key", obj, Draft{Key: " name ", Type: settings.KindString, Raw: "kitchen"}, "cfg.name", settings.String("kitchen"), nil},
		{"number", obj, Draft{Key: "n", Type: settings.KindNumber, Raw: "2.5"}, "cfg.n", settings.Number(2.5), nil},
		{"object", obj, Draft{Key: "o", Type: settings.KindObject, Raw: "ignored"}, "cfg.o", settings.EmptyObject(), nil},
		{"array", obj, Draft{Key: "a", Type: settings.KindArray}, "cfg.a", settings.EmptyArray(), nil},
		{"empty key", obj, Draft{Key: "  ", Type: settings.KindString}, "", settings.Value{}, ErrEmptyKey},
		{"duplicate key", obj, Draft{Key: "volume", Type: settings.KindNumber, Raw: "1"}, "", settings.Value{}, ErrDuplicateKey},
		{"bad number", obj, Draft{Key: "n", Type: settings.KindNumber, Raw: "abc"}, "", settings.Value{}, settings.ErrInvalidNumber},
		{"array appends", arr, Draft{Key: "ignored", Type: settings.KindString, Raw: "z"}, "cfg[2]", settings.String("z"), nil},
		{"primitive parent", settings.Number(1), Draft{Type: settings.KindString}, "", settings.Value{}, settings.ErrInvalidTarget},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path, v, err := Compose(settings.MustParsePath("cfg"), tc.parent, tc.draft)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantPath, path.String())
			require.True(t, settings.Equal(tc.want, v))
		})
	}
}

func TestComposeArrayAppendOnly(t *testing.T) {
	doc := settings.MustParse(`{"items": []}`)
	items := settings.MustParsePath("items")

	for i, raw := range []string{"x", "y", "z"} {
		parent, err := settings.Read(doc, items)
		require.NoError(t, err)
		before := parent.Len()

		path, v, err := Compose(items, parent, Draft{Type: settings.KindString, Raw: raw})
		require.NoError(t, err)
		last, _ := path.Last()
		require.Equal(t, before, last.Index())

		doc, err = settings.Write(doc, path, v)
		require.NoError(t, err)
		parent, _ = settings.Read(doc, items)
		require.Equal(t, i+1, parent.Len())
	}
}

func TestDraftSetType(t *testing.T) {
	d := NewDraft()
	require.Equal(t, settings.KindString, d.Type)

	d.Raw = "something"
	d.SetType(settings.KindBool)
	require.Equal(t, "true", d.Raw)

	d.NextType()
	require.Equal(t, settings.KindObject, d.Type)
	d.NextType()
	d.NextType()
	require.Equal(t, settings.KindString, d.Type)
}

func TestRows(t *testing.T) {
	doc := settings.MustParse(`{"volume": 5, "nested": {"enabled": true, "list": [1, 2]}, "tags": ["a"]}`)

	rows := Rows(doc, nil)
	var got []string
	for _, r := range rows {
		got = append(got, r.Path.String())
	}
	require.Equal(t, []string{
		"volume",
		"nested",
		"nested.enabled",
		"nested.list",
		"nested.list[0]",
		"nested.list[1]",
		"tags",
		"tags[0]",
	}, got)

	require.Equal(t, "[1]", rows[5].Label)
	require.Equal(t, ParentArray, rows[5].Parent)
	require.Equal(t, 2, rows[5].Depth)
	require.Equal(t, ParentObject, rows[2].Parent)

	collapsed := Rows(doc, map[string]bool{"nested": true})
	require.Len(t, collapsed, 4)
	require.True(t, collapsed[1].Collapsed)
}

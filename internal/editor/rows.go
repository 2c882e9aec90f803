package editor

import (
	"github.com/egoavara/ovos-settings/internal/settings"
)

// Row is one visible line of the flattened tree
type Row struct {
	Path      settings.Path
	Depth     int
	Label     string
	Parent    ParentKind
	Value     settings.Value
	Input     Input
	Collapsed bool
}

// Rows flattens doc depth-first in document order. The root itself is not
// a row. Composite rows whose path string is in collapsed hide their children.
func Rows(doc settings.Value, collapsed map[string]bool) []Row {
	var rows []Row
	var walk func(v settings.Value, at settings.Path, depth int)
	walk = func(v settings.Value, at settings.Path, depth int) {
		visit := func(seg settings.Segment, child settings.Value, parent ParentKind) {
			p := at.Child(seg)
			in := InputFor(child)
			row := Row{
				Path:   p,
				Depth:  depth,
				Label:  seg.Label(),
				Parent: parent,
				Value:  child,
				Input:  in,
			}
			if in.Composite() && collapsed[p.String()] {
				row.Collapsed = true
			}
			rows = append(rows, row)
			if in.Composite() && !row.Collapsed {
				walk(child, p, depth+1)
			}
		}

		switch v.Kind() {
		case settings.KindObject:
			v.Pairs(func(key string, child settings.Value) {
				visit(settings.Key(key), child, ParentObject)
			})
		case settings.KindArray:
			for i, child := range v.Items() {
				visit(settings.Index(i), child, ParentArray)
			}
		}
	}
	walk(doc, nil, 0)
	return rows
}

// NodeAt builds an editing node for the row
func (r Row) NodeAt() *Node {
	return NewNode(r.Path, r.Value, r.Parent)
}

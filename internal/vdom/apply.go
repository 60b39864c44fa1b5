package vdom

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// handlers holds event-handler props keyed by live node, since *html.Node
// has no place to stash arbitrary Go values. The host JS shim looks up a
// handler here when relaying a DOM event (§4.7: "event-handler props
// stored on the element for later removal").
var (
	handlersMu sync.Mutex
	handlers   = map[*html.Node]map[string]any{}
)

// Handler returns the function registered for event name on live, if any.
func Handler(live *html.Node, name string) (any, bool) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	m, ok := handlers[live]
	if !ok {
		return nil, false
	}
	h, ok := m[name]
	return h, ok
}

func setHandler(live *html.Node, name string, fn any) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	m, ok := handlers[live]
	if !ok {
		m = make(map[string]any)
		handlers[live] = m
	}
	m[name] = fn
}

func removeHandler(live *html.Node, name string) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	if m, ok := handlers[live]; ok {
		delete(m, name)
	}
}

func forgetNode(live *html.Node) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	delete(handlers, live)
	for c := live.FirstChild; c != nil; c = c.NextSibling {
		forgetNodeLocked(c)
	}
}

func forgetNodeLocked(live *html.Node) {
	delete(handlers, live)
	for c := live.FirstChild; c != nil; c = c.NextSibling {
		forgetNodeLocked(c)
	}
}

// CreateElement materializes a virtual Node into a brand new live
// *html.Node subtree (§4.7 CREATE).
func CreateElement(n Node) *html.Node {
	n = expand(n)
	switch n.Kind {
	case KindText:
		return &html.Node{Type: html.TextNode, Data: n.Text}
	case KindElement:
		live := &html.Node{Type: html.ElementNode, Data: n.Tag}
		applyProps(live, nil, n.Props)
		for _, c := range n.Children {
			live.AppendChild(CreateElement(c))
		}
		return live
	default:
		return &html.Node{Type: html.TextNode, Data: ""}
	}
}

// ApplyPatches mutates live (or replaces it within parent, if non-nil) per
// patches, which must be the result of Diff(old, new) where old described
// live's current shape. It returns the resulting live node — unchanged
// unless a CREATE, REPLACE, or REMOVE patch replaced/removed it.
func ApplyPatches(live *html.Node, parent *html.Node, patches []Patch) *html.Node {
	for _, p := range patches {
		live = applyOne(live, parent, p)
	}
	return live
}

func applyOne(live *html.Node, parent *html.Node, p Patch) *html.Node {
	switch p.Op {
	case OpCreate:
		nl := CreateElement(p.Node)
		if parent != nil {
			parent.AppendChild(nl)
		}
		return nl
	case OpRemove:
		if parent != nil && live != nil {
			parent.RemoveChild(live)
			forgetNode(live)
		}
		return nil
	case OpReplace:
		nl := CreateElement(p.Node)
		if parent != nil && live != nil {
			parent.InsertBefore(nl, live)
			parent.RemoveChild(live)
			forgetNode(live)
		}
		return nl
	case OpUpdate:
		if live == nil {
			return live
		}
		applyPropChanges(live, p.Props)
		applyChildren(live, p.Children, p.FromIdx)
		return live
	default:
		return live
	}
}

func applyPropChanges(live *html.Node, changes []PropChange) {
	for _, c := range changes {
		if c.New == nil {
			removeProp(live, c.Key)
		} else {
			setProp(live, c.Key, c.New)
		}
	}
}

// applyChildren reconciles live's children against childPatches. When
// fromIdx is nil no reorder is needed: each patch applies in place against
// the original child at its Index. Otherwise the full child list is
// rebuilt from fromIdx, reusing live nodes where matched and materializing
// CREATE patches for new slots (§4.7 rule 6).
func applyChildren(live *html.Node, childPatches []Patch, fromIdx []int) {
	var original []*html.Node
	for c := live.FirstChild; c != nil; c = c.NextSibling {
		original = append(original, c)
	}

	if fromIdx == nil {
		for _, p := range childPatches {
			if p.Index < 0 || p.Index >= len(original) {
				continue
			}
			applyOne(original[p.Index], live, p)
		}
		return
	}

	// REMOVE patches here are indexed against the OLD child list, while
	// CREATE/UPDATE/REPLACE are indexed against the NEW one; the full
	// rebuild below drops unmatched originals implicitly, so only the
	// new-indexed ops are needed here.
	byIndex := make(map[int]Patch, len(childPatches))
	for _, p := range childPatches {
		if p.Op == OpRemove {
			continue
		}
		byIndex[p.Index] = p
	}

	final := make([]*html.Node, len(fromIdx))
	usedOldIdx := make(map[int]bool, len(fromIdx))
	var discarded []*html.Node
	for i, oldIdx := range fromIdx {
		if oldIdx == -1 {
			p, ok := byIndex[i]
			if !ok || p.Op != OpCreate {
				final[i] = &html.Node{Type: html.TextNode, Data: ""}
				continue
			}
			final[i] = CreateElement(p.Node)
			continue
		}
		usedOldIdx[oldIdx] = true
		node := original[oldIdx]
		if p, ok := byIndex[i]; ok {
			switch p.Op {
			case OpReplace:
				discarded = append(discarded, node)
				node = CreateElement(p.Node)
			case OpUpdate:
				applyPropChanges(node, p.Props)
				applyChildren(node, p.Children, p.FromIdx)
			}
		}
		final[i] = node
	}
	for idx, n := range original {
		if !usedOldIdx[idx] {
			discarded = append(discarded, n)
		}
	}
	for _, n := range discarded {
		forgetNode(n)
	}

	for _, n := range original {
		live.RemoveChild(n)
	}
	for _, n := range final {
		live.AppendChild(n)
	}
}

// setProp applies one property to a live element, per §4.7: className,
// style (string or map), contentEditable, data-*, event handlers (on*
// keys, stashed rather than attached), and setAttribute as the fallback.
func setProp(live *html.Node, key string, value any) {
	switch {
	case key == "className":
		setAttr(live, "class", fmt.Sprint(value))
	case key == "style":
		setAttr(live, "style", styleString(value))
	case key == "contentEditable":
		setAttr(live, "contenteditable", fmt.Sprint(value))
	case strings.HasPrefix(key, "data-"):
		setAttr(live, key, fmt.Sprint(value))
	case strings.HasPrefix(key, "on") && len(key) > 2:
		setHandler(live, key, value)
	default:
		setAttr(live, key, fmt.Sprint(value))
	}
}

func removeProp(live *html.Node, key string) {
	switch {
	case key == "className":
		removeAttr(live, "class")
	case key == "style":
		removeAttr(live, "style")
	case key == "contentEditable":
		removeAttr(live, "contenteditable")
	case strings.HasPrefix(key, "on") && len(key) > 2:
		removeHandler(live, key)
	default:
		removeAttr(live, key)
	}
}

func applyProps(live *html.Node, old, nw map[string]any) {
	for _, c := range diffProps(old, nw) {
		if c.New == nil {
			removeProp(live, c.Key)
		} else {
			setProp(live, c.Key, c.New)
		}
	}
}

func styleString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case map[string]any:
		var b strings.Builder
		for k, val := range s {
			b.WriteString(k)
			b.WriteByte(':')
			b.WriteString(fmt.Sprint(val))
			b.WriteByte(';')
		}
		return b.String()
	default:
		return fmt.Sprint(v)
	}
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i:i], n.Attr[i+1:]...)
			return
		}
	}
}

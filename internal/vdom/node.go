// Package vdom implements the virtual DOM core of spec §4.7: virtual
// nodes, a keyed-matching diff that produces a patch list, and a separate
// apply step that mutates a live *html.Node tree. Node, diffProps and
// sameType are modeled on Node, diffAttributes and isSameNodeType of the
// from-scratch Go vdom library other_examples/...vected.go, reshaped from its single-pass
// diff-and-mutate into Diff (pure) + ApplyPatches (effectful).
package vdom

// Kind tags which variant a Node holds.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindElement
	KindComponent
)

// ComponentFn renders a component node into its element/text/null
// expansion given its current props.
type ComponentFn func(props map[string]any) Node

// Node is a virtual DOM node (§4.7). Only the fields relevant to Kind are
// meaningful.
type Node struct {
	Kind Kind

	// text
	Text string

	// element
	Tag      string
	Props    map[string]any
	Children []Node

	// component
	Fn    ComponentFn
	CProps map[string]any

	// element / component
	Key string
}

// Null is the empty node.
func Null() Node { return Node{Kind: KindNull} }

// Text returns a text node.
func Text(content string) Node { return Node{Kind: KindText, Text: content} }

// Element returns an element node.
func Element(tag string, props map[string]any, children ...Node) Node {
	return Node{Kind: KindElement, Tag: tag, Props: props, Children: children}
}

// ElementKeyed is Element with an explicit reconciliation key.
func ElementKeyed(tag string, key string, props map[string]any, children ...Node) Node {
	n := Element(tag, props, children...)
	n.Key = key
	return n
}

// Component returns a component node: fn is invoked during diff to expand
// it into its rendered form.
func Component(fn ComponentFn, props map[string]any, key string) Node {
	return Node{Kind: KindComponent, Fn: fn, CProps: props, Key: key}
}

// sameType reports whether old and new would produce the same live DOM
// node type and, for elements, the same tag (§4.7 rule 4).
func sameType(old, nw Node) bool {
	if old.Kind != nw.Kind {
		return false
	}
	switch old.Kind {
	case KindElement:
		return old.Tag == nw.Tag
	case KindComponent:
		return true
	default:
		return true
	}
}

// expand resolves a component node to its rendered node, recursively, so
// the differ only ever compares text/element/null shapes.
func expand(n Node) Node {
	for n.Kind == KindComponent {
		if n.Fn == nil {
			return Null()
		}
		n = n.Fn(n.CProps)
	}
	return n
}

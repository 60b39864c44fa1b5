// Package domsel implements the bidirectional bridge between abstract
// selections (internal/selection) and a live *html.Node tree, per spec
// §4.6. It walks text and <br> nodes to convert between character offsets
// and DOM positions, the same FirstChild/NextSibling traversal style as
// blueprints/lingo/pkg/seed/duome/parser.go.
package domsel

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/cosmic-gao/nexo-sub000/internal/selection"
)

// BlockIDAttr is the attribute written on each block's root element,
// mirroring the data-block-id convention the spec requires.
const BlockIDAttr = "data-block-id"

// Point is a resolved DOM position: either a text node plus an offset
// within it, or an element plus a child offset (used when the position
// falls between/around a <br>).
type Point struct {
	Node   *html.Node
	Offset int
}

// Bridge mediates between the editor's abstract selection and a live
// *html.Node subtree. Root is the editor's top-level container element.
type Bridge struct {
	root       *html.Node
	suppressed bool
}

// New creates a Bridge rooted at root.
func New(root *html.Node) *Bridge {
	return &Bridge{root: root}
}

// findBlockRoot walks up from n to the nearest ancestor (inclusive)
// carrying data-block-id, returning that element and the id.
func findBlockRoot(n *html.Node) (*html.Node, string, bool) {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode {
			if id, ok := attr(cur, BlockIDAttr); ok {
				return cur, id, true
			}
		}
	}
	return nil, "", false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// isTrailingPlaceholderBr reports whether n is a <br> with no following
// sibling within its parent — the browser's placeholder trailing <br>,
// which counts as offset zero rather than one newline (§4.6).
func isTrailingPlaceholderBr(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Data != "br" {
		return false
	}
	return n.NextSibling == nil
}

// offsetOfNode computes the character offset of the start of target within
// container by an in-order walk of text and <br> nodes. ok is false if
// target is not found under container.
func offsetOfNode(container *html.Node, target *html.Node, targetOffset int) (offset int, ok bool) {
	var total int
	var found bool
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n == target {
			if n.Type == html.TextNode {
				total += targetOffset
			}
			found = true
			return
		}
		switch n.Type {
		case html.TextNode:
			total += len([]rune(n.Data))
		case html.ElementNode:
			if n.Data == "br" {
				if !isTrailingPlaceholderBr(n) {
					total++
				}
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
				if found {
					return
				}
			}
		}
	}
	walk(container)
	return total, found
}

// pointAtOffset walks container's text/<br> nodes to find the DOM position
// corresponding to character offset. ok is false if offset exceeds the
// container's total text length.
func pointAtOffset(container *html.Node, offset int) (Point, bool) {
	remaining := offset
	var result Point
	var found bool
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		switch n.Type {
		case html.TextNode:
			length := len([]rune(n.Data))
			if remaining <= length {
				result = Point{Node: n, Offset: remaining}
				found = true
				return
			}
			remaining -= length
		case html.ElementNode:
			if n.Data == "br" {
				if isTrailingPlaceholderBr(n) {
					return
				}
				if remaining == 0 {
					result = Point{Node: n, Offset: 0}
					found = true
					return
				}
				remaining--
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
				if found {
					return
				}
			}
		}
	}
	walk(container)
	if found {
		return result, true
	}
	if remaining == 0 {
		return Point{Node: container, Offset: 0}, true
	}
	return Point{}, false
}

// editableRoot returns the editable descendant of a block root element —
// the element itself unless it has a child tagged data-editable, matching
// the per-type templates of §4.9 where container types wrap their text
// region.
func editableRoot(blockRoot *html.Node) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			if _, ok := attr(n, "data-editable"); ok {
				found = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			if found != nil {
				return
			}
		}
	}
	walk(blockRoot)
	if found != nil {
		return found
	}
	return blockRoot
}

// NativeRange is the platform range the bridge reads from / writes to: a
// (node, offset) pair for anchor and focus, mirroring window.getSelection.
type NativeRange struct {
	AnchorNode   *html.Node
	AnchorOffset int
	FocusNode    *html.Node
	FocusOffset  int
}

// ReadFromPlatform converts a native range into an abstract selection
// (§4.6 "Read-from-platform"). It returns selection.None if either
// endpoint cannot be resolved to a block.
func (br *Bridge) ReadFromPlatform(r NativeRange) selection.Selection {
	aBlock, aID, ok1 := findBlockRoot(r.AnchorNode)
	fBlock, fID, ok2 := findBlockRoot(r.FocusNode)
	if !ok1 || !ok2 {
		return selection.NewNone()
	}

	aOff, ok := offsetOfNode(editableRoot(aBlock), r.AnchorNode, r.AnchorOffset)
	if !ok {
		return selection.NewNone()
	}
	fOff, ok := offsetOfNode(editableRoot(fBlock), r.FocusNode, r.FocusOffset)
	if !ok {
		return selection.NewNone()
	}

	if aID == fID {
		if aOff == fOff {
			return selection.NewCaret(aID, aOff)
		}
		return selection.NewTextRange(aID, aOff, fOff)
	}
	return selection.NewCrossBlock(aID, aOff, fID, fOff, true, nil)
}

// WriteToPlatform resolves sel back to a NativeRange against the live
// tree rooted at br.root (§4.6 "Write-to-platform"). ok is false if a
// referenced block id has no corresponding element.
func (br *Bridge) WriteToPlatform(sel selection.Selection) (NativeRange, bool) {
	br.suppressed = true
	defer func() { br.suppressed = false }()

	switch sel.Kind {
	case selection.Caret:
		el, ok := br.findBlockElement(sel.BlockID)
		if !ok {
			return NativeRange{}, false
		}
		p, ok := pointAtOffset(editableRoot(el), sel.Offset)
		if !ok {
			return NativeRange{}, false
		}
		return NativeRange{AnchorNode: p.Node, AnchorOffset: p.Offset, FocusNode: p.Node, FocusOffset: p.Offset}, true
	case selection.TextRange, selection.CrossBlock:
		aEl, ok := br.findBlockElement(sel.AnchorBlockID)
		if !ok {
			return NativeRange{}, false
		}
		fEl, ok := br.findBlockElement(sel.FocusBlockID)
		if !ok {
			return NativeRange{}, false
		}
		aP, ok := pointAtOffset(editableRoot(aEl), sel.AnchorOffset)
		if !ok {
			return NativeRange{}, false
		}
		fP, ok := pointAtOffset(editableRoot(fEl), sel.FocusOffset)
		if !ok {
			return NativeRange{}, false
		}
		return NativeRange{AnchorNode: aP.Node, AnchorOffset: aP.Offset, FocusNode: fP.Node, FocusOffset: fP.Offset}, true
	default:
		return NativeRange{}, false
	}
}

// findBlockElement locates the element tagged data-block-id=id anywhere
// under br.root.
func (br *Bridge) findBlockElement(id string) (*html.Node, bool) {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			if v, ok := attr(n, BlockIDAttr); ok && v == id {
				found = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			if found != nil {
				return
			}
		}
	}
	walk(br.root)
	if found == nil {
		return nil, false
	}
	return found, true
}

// FocusBlock returns the editable descendant element of block id, for the
// host to call .focus() on (§4.6 focusBlock).
func (br *Bridge) FocusBlock(id string) (*html.Node, bool) {
	el, ok := br.findBlockElement(id)
	if !ok {
		return nil, false
	}
	return editableRoot(el), true
}

// SetCursor resolves a caret at id:offset, a convenience over
// WriteToPlatform (§4.6 setCursor).
func (br *Bridge) SetCursor(id string, offset int) (NativeRange, bool) {
	return br.WriteToPlatform(selection.NewCaret(id, offset))
}

// SetCursorToEnd places the cursor at the end of block id's text (§4.6
// setCursorToEnd).
func (br *Bridge) SetCursorToEnd(id string, text string) (NativeRange, bool) {
	return br.SetCursor(id, len([]rune(text)))
}

// Suppressed reports whether the bridge is mid-write, so the input layer
// can skip re-entering the pipeline on the resulting native selection
// change event (§4.6 re-entrancy rule).
func (br *Bridge) Suppressed() bool { return br.suppressed }

// ReadText returns n's plain-text content via the same in-order text/<br>
// walk ReadFromPlatform uses internally, so the input handler's view of a
// block's text always agrees with how the bridge computes offsets into it
// (§4.10: code blocks preserve <br> as "\n", other types read the same way
// since they never contain one in practice).
func ReadText(n *html.Node) string { return textOf(n) }

// textOf returns the plain-text content of n via in-order text/<br> walk,
// used by tests to build expected offsets without duplicating the walker.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "br" {
				if !isTrailingPlaceholderBr(n) {
					b.WriteByte('\n')
				}
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

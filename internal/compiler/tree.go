package compiler

import (
	"fmt"

	"github.com/cosmic-gao/nexo-sub000/internal/blocktype"
	"github.com/cosmic-gao/nexo-sub000/internal/document"
	"github.com/cosmic-gao/nexo-sub000/internal/vdom"
)

// buildTree constructs the full virtual tree for doc: a root wrapper
// element containing one node per visible top-level block (§4.9 step 2).
// When windowing is enabled and doc has enough blocks, only the visible
// range (plus buffer) is rendered, flanked by height-preserving
// placeholders for the omitted blocks above and below.
func (c *Compiler) buildTree(doc document.Document) vdom.Node {
	rootIDs := doc.RootIDs
	start, end, aboveHeight, belowHeight := c.window.visibleRange(rootIDs, c.window.heights)

	var children []vdom.Node
	if aboveHeight > 0 {
		children = append(children, placeholderNode("nexo-window-above", aboveHeight))
	}

	prevNumbered := false
	counter := 0
	for i := 0; i < start; i++ {
		advanceNumbering(doc, rootIDs[i], &prevNumbered, &counter)
	}
	for i := start; i < end; i++ {
		id := rootIDs[i]
		b, ok := document.GetBlock(doc, id)
		if !ok {
			continue
		}
		idx := 0
		if b.Type == document.NumberedList {
			if prevNumbered {
				counter++
			} else {
				counter = 1
			}
			idx = counter
		}
		prevNumbered = b.Type == document.NumberedList
		children = append(children, c.renderBlockTree(doc, id, idx))
	}

	if belowHeight > 0 {
		children = append(children, placeholderNode("nexo-window-below", belowHeight))
	}

	return vdom.Element(rootWrapperTag, map[string]any{"data-nexo-root": ""}, children...)
}

func advanceNumbering(doc document.Document, id string, prevNumbered *bool, counter *int) {
	b, ok := document.GetBlock(doc, id)
	if !ok {
		*prevNumbered = false
		return
	}
	if b.Type == document.NumberedList {
		if *prevNumbered {
			*counter++
		} else {
			*counter = 1
		}
		*prevNumbered = true
	} else {
		*prevNumbered = false
	}
}

func placeholderNode(key string, height float64) vdom.Node {
	return vdom.ElementKeyed("div", key, map[string]any{
		"data-nexo-window-placeholder": "",
		"style":                        fmt.Sprintf("height:%vpx", height),
		"contentEditable":              false,
	})
}

// renderBlockTree synthesizes block id's node, consulting the cache, and
// wraps it with its rendered children (if any) under a children container
// (§4.9 step 2: "traversing rootIds and each block's childrenIds for
// nested types").
func (c *Compiler) renderBlockTree(doc document.Document, id string, numberIndex int) vdom.Node {
	b, ok := document.GetBlock(doc, id)
	if !ok {
		return vdom.Null()
	}

	var childNodes []vdom.Node
	for _, cid := range b.ChildrenIDs {
		childNodes = append(childNodes, c.renderBlockTree(doc, cid, 0))
	}

	own := c.renderOwn(b, blocktype.RenderContext{NumberIndex: numberIndex, Children: childNodes})
	if len(childNodes) == 0 {
		return own
	}
	wrapped := append([]vdom.Node{own}, childNodes...)
	return vdom.ElementKeyed("div", id, map[string]any{
		"data-block-id":        id,
		"data-block-container": "",
	}, wrapped...)
}

// renderOwn returns b's own virtual node, reusing the cache when b's
// version hasn't changed and it isn't marked dirty (§4.8 get).
func (c *Compiler) renderOwn(b document.Block, ctx blocktype.RenderContext) vdom.Node {
	if !c.tracker.IsDirty(b.ID) {
		if n, ok := c.cache.Get(b.ID, b.Meta.Version); ok {
			return n
		}
	}
	n := c.registry.Render(b, ctx)
	n.Key = b.ID
	c.cache.Put(b.ID, b.Meta.Version, n)
	return n
}

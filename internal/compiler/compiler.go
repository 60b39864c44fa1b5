// Package compiler implements the incremental renderer of spec §4.9: it
// owns the DOM container, the selection bridge, the render cache, the
// dirty tracker, the current virtual tree, and the per-type template
// registry, and drives the render → diff → patch pipeline. Render
// sequencing (synthesize from cache/templates, diff against the previous
// tree, apply patches, rebuild the id→element map, clear the dirty
// tracker) is grounded on the ordering view/live/live_test.go exercises
// for the teacher's own render pipeline (build page state, diff against
// previous render, push the patch).
package compiler

import (
	"sync"

	"golang.org/x/net/html"

	"github.com/cosmic-gao/nexo-sub000/internal/blocktype"
	"github.com/cosmic-gao/nexo-sub000/internal/document"
	"github.com/cosmic-gao/nexo-sub000/internal/domsel"
	"github.com/cosmic-gao/nexo-sub000/internal/eventbus"
	"github.com/cosmic-gao/nexo-sub000/internal/rendercache"
	"github.com/cosmic-gao/nexo-sub000/internal/vdom"
)

const rootWrapperTag = "div"

// Compiler is the incremental renderer. The zero value is not usable; use
// New.
type Compiler struct {
	mu       sync.Mutex
	registry *blocktype.Registry
	cache    *rendercache.Cache
	tracker  *rendercache.Tracker
	bridge   *domsel.Bridge

	container *html.Node
	live      *html.Node
	tree      vdom.Node
	elements  map[string]*html.Node
	focusedID string

	bus    *eventbus.Bus
	unsubs []func()

	pending     bool
	pendingDoc  document.Document
	hasPending  bool

	window windowState
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithRegistry overrides the default block-type registry.
func WithRegistry(r *blocktype.Registry) Option {
	return func(c *Compiler) { c.registry = r }
}

// WithCache overrides the default render cache.
func WithCache(cache *rendercache.Cache) Option {
	return func(c *Compiler) { c.cache = cache }
}

// WithWindowing enables windowed rendering once the flattened block count
// reaches threshold, rendering only buffer extra blocks above/below the
// visible range (§4.9).
func WithWindowing(threshold, buffer int) Option {
	return func(c *Compiler) {
		c.window.enabled = true
		c.window.threshold = threshold
		c.window.buffer = buffer
	}
}

// New creates a Compiler with its own registry, cache, and tracker.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		registry: blocktype.NewDefault(),
		cache:    rendercache.New(),
		tracker:  rendercache.NewTracker(),
		elements: make(map[string]*html.Node),
		window:   defaultWindowState(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Init attaches the Compiler to container and, if bus is non-nil,
// subscribes to the events that mark blocks dirty and schedule a render
// (§4.9 init).
func (c *Compiler) Init(container *html.Node, bus *eventbus.Bus) {
	c.mu.Lock()
	c.container = container
	c.bridge = domsel.New(container)
	c.bus = bus
	c.mu.Unlock()

	if bus == nil {
		return
	}
	mark := func(reason rendercache.Reason) eventbus.Handler {
		return func(ev eventbus.Event) {
			if id, ok := ev.Payload.(string); ok {
				c.tracker.Mark(id, reason)
			}
		}
	}
	c.unsubs = append(c.unsubs,
		bus.On(eventbus.BlockCreated, mark(rendercache.ReasonCreated)),
		bus.On(eventbus.BlockUpdated, mark(rendercache.ReasonUpdated)),
		bus.On(eventbus.BlockDeleted, mark(rendercache.ReasonDeleted)),
		bus.On(eventbus.BlockMoved, mark(rendercache.ReasonMoved)),
	)
}

// Tracker exposes the dirty tracker so callers can mark finer-grained
// reasons.
func (c *Compiler) Tracker() *rendercache.Tracker { return c.tracker }

// Bridge exposes the DOM selection bridge.
func (c *Compiler) Bridge() *domsel.Bridge { return c.bridge }

// GetContainer returns the attached container element.
func (c *Compiler) GetContainer() *html.Node { return c.container }

// RenderBlock synthesizes a single block's virtual node via the registry,
// bypassing the cache — used for previews and one-off rendering (§4.9
// renderBlock).
func (c *Compiler) RenderBlock(b document.Block, ctx blocktype.RenderContext) vdom.Node {
	return c.registry.Render(b, ctx)
}

// Render (re)builds the virtual tree for doc and reconciles it with the
// live DOM (§4.9 steps 2–5). Selection capture/restore across the render
// is the caller's responsibility via Bridge(), since this package has no
// animation-frame loop to hook into on its own.
func (c *Compiler) Render(doc document.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	newTree := c.buildTree(doc)

	if c.live == nil {
		c.live = vdom.CreateElement(newTree)
		if c.container != nil {
			c.container.AppendChild(c.live)
		}
	} else {
		patches := vdom.Diff(c.tree, newTree)
		c.live = vdom.ApplyPatches(c.live, c.container, patches)
	}
	c.tree = newTree
	c.rebuildElementMap()
	c.tracker.Clear()
	c.pending = false
	c.hasPending = false
}

// ScheduleRender coalesces repeated mutation events into a single
// pending render, flushed by Flush (§4.9 scheduleRender — this package
// substitutes an explicit Flush call for the browser's animation tick).
func (c *Compiler) ScheduleRender(doc document.Document) {
	c.mu.Lock()
	c.pendingDoc = doc
	c.pending = true
	c.hasPending = true
	c.mu.Unlock()
}

// Flush performs the pending render, if any, and reports whether it did.
func (c *Compiler) Flush() bool {
	c.mu.Lock()
	if !c.pending {
		c.mu.Unlock()
		return false
	}
	doc := c.pendingDoc
	c.mu.Unlock()
	c.Render(doc)
	return true
}

// UpdateBlock re-renders id's subtree within doc. Because vdom.Diff always
// computes the minimal patch set, this is implemented as a full Render —
// the incrementality comes from the diff, not from manual tree addressing
// (§4.9 updateBlock).
func (c *Compiler) UpdateBlock(doc document.Document, id string) {
	c.tracker.Mark(id, rendercache.ReasonUpdated)
	c.Render(doc)
}

// RemoveBlock re-renders doc after id has been deleted from it (§4.9
// removeBlock).
func (c *Compiler) RemoveBlock(doc document.Document, id string) {
	c.tracker.Mark(id, rendercache.ReasonDeleted)
	c.cache.Invalidate(id)
	c.Render(doc)
}

// Focus focuses block id's editable element via the bridge (§4.9 focus).
func (c *Compiler) Focus(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bridge == nil {
		return false
	}
	if _, ok := c.bridge.FocusBlock(id); !ok {
		return false
	}
	c.focusedID = id
	return true
}

// FocusedBlock returns the id most recently passed to Focus.
func (c *Compiler) FocusedBlock() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focusedID, c.focusedID != ""
}

// GetBlockElement returns the live element for block id, if rendered.
func (c *Compiler) GetBlockElement(id string) (*html.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.elements[id]
	return el, ok
}

// Destroy unsubscribes from the event bus and releases the Compiler's
// references to the live tree.
func (c *Compiler) Destroy() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsubs = nil
	c.live = nil
	c.tree = vdom.Node{}
	c.elements = make(map[string]*html.Node)
}

func (c *Compiler) rebuildElementMap() {
	c.elements = make(map[string]*html.Node)
	if c.live == nil {
		return
	}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == domsel.BlockIDAttr {
					if _, exists := c.elements[a.Val]; !exists {
						c.elements[a.Val] = n
					}
					break
				}
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(c.live)
}

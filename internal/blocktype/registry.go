// Package blocktype is the block-type extension point: a registry mapping
// document.Type to the template function that synthesizes its virtual
// node, so hosts can add new block types without touching the compiler.
// Shaped like the teacher's own component-by-name registration
// (Vected.components in other_examples/...vected.go, a name -> constructor
// map consulted during rendering) but keyed on the closed block-type set
// instead of arbitrary component names.
package blocktype

import (
	"fmt"
	"sync"

	"github.com/cosmic-gao/nexo-sub000/internal/document"
	"github.com/cosmic-gao/nexo-sub000/internal/vdom"
)

// RenderContext carries the per-render information a template needs
// beyond the block itself.
type RenderContext struct {
	// NumberIndex is the 1-based position to display for numberedList
	// blocks (§4.9: reset to 1 whenever the previous top-level block is
	// not numberedList). Unused by other types.
	NumberIndex int
	// Children are the already-rendered virtual nodes of this block's
	// children, in order, for container-shaped types.
	Children []vdom.Node
}

// TemplateFunc synthesizes a block's virtual node.
type TemplateFunc func(b document.Block, ctx RenderContext) vdom.Node

// Registry holds one TemplateFunc per document.Type.
type Registry struct {
	mu        sync.RWMutex
	templates map[document.Type]TemplateFunc
}

// NewDefault returns a Registry pre-populated with the built-in templates
// for every type in the closed set of §3.1.
func NewDefault() *Registry {
	r := &Registry{templates: make(map[document.Type]TemplateFunc)}
	r.Register(document.Paragraph, paragraphTemplate)
	r.Register(document.Heading1, headingTemplate("h1"))
	r.Register(document.Heading2, headingTemplate("h2"))
	r.Register(document.Heading3, headingTemplate("h3"))
	r.Register(document.Quote, quoteTemplate)
	r.Register(document.BulletList, bulletListTemplate)
	r.Register(document.NumberedList, numberedListTemplate)
	r.Register(document.TodoList, todoListTemplate)
	r.Register(document.Code, codeTemplate)
	r.Register(document.Divider, dividerTemplate)
	r.Register(document.Image, imageTemplate)
	return r
}

// Register installs or replaces the template for typ.
func (r *Registry) Register(typ document.Type, fn TemplateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[typ] = fn
}

// Render synthesizes b's virtual node using the registered template for
// its type, falling back to a generic paragraph-like rendering for an
// unregistered (host-extended) type rather than panicking.
func (r *Registry) Render(b document.Block, ctx RenderContext) vdom.Node {
	r.mu.RLock()
	fn, ok := r.templates[b.Type]
	r.mu.RUnlock()
	if !ok {
		return paragraphTemplate(b, ctx)
	}
	return fn(b, ctx)
}

func editableProps(b document.Block, placeholder string) map[string]any {
	return map[string]any{
		"data-block-id":    b.ID,
		"data-editable":    "",
		"contentEditable":  true,
		"data-placeholder": placeholder,
	}
}

// editableTextProps is editableProps without data-block-id, for the inner
// text region of container-shaped templates (bulletList, numberedList,
// todoList) whose outer wrapper already carries the block id — a node is
// the block's canonical element only once, at its outermost tag.
func editableTextProps(placeholder string) map[string]any {
	return map[string]any{
		"data-editable":    "",
		"contentEditable":  true,
		"data-placeholder": placeholder,
	}
}

func paragraphTemplate(b document.Block, _ RenderContext) vdom.Node {
	return vdom.Element("p", editableProps(b, "Type '/' for commands"), vdom.Text(b.Data.Text()))
}

func headingTemplate(tag string) TemplateFunc {
	return func(b document.Block, _ RenderContext) vdom.Node {
		return vdom.Element(tag, editableProps(b, fmt.Sprintf("Heading %s", tag[1:])), vdom.Text(b.Data.Text()))
	}
}

func quoteTemplate(b document.Block, _ RenderContext) vdom.Node {
	return vdom.Element("blockquote", editableProps(b, "Quote"), vdom.Text(b.Data.Text()))
}

func bulletListTemplate(b document.Block, _ RenderContext) vdom.Node {
	marker := vdom.Element("span", map[string]any{"className": "block-marker", "contentEditable": false}, vdom.Text("•"))
	text := vdom.Element("span", editableTextProps("List item"), vdom.Text(b.Data.Text()))
	return vdom.Element("div", map[string]any{"data-block-id": b.ID, "className": "block-bullet"}, marker, text)
}

func numberedListTemplate(b document.Block, ctx RenderContext) vdom.Node {
	n := ctx.NumberIndex
	if n < 1 {
		n = 1
	}
	marker := vdom.Element("span", map[string]any{"className": "block-marker", "contentEditable": false}, vdom.Text(fmt.Sprintf("%d.", n)))
	text := vdom.Element("span", editableTextProps("List item"), vdom.Text(b.Data.Text()))
	return vdom.Element("div", map[string]any{"data-block-id": b.ID, "className": "block-numbered"}, marker, text)
}

func todoListTemplate(b document.Block, _ RenderContext) vdom.Node {
	checked := b.Data.Checked()
	checkbox := vdom.Element("input", map[string]any{"type": "checkbox", "checked": checked, "contentEditable": false})
	className := "block-todo-text"
	if checked {
		className = "block-todo-text block-todo-checked"
	}
	text := vdom.Element("span", mergeProps(editableTextProps("To-do"), map[string]any{"className": className}), vdom.Text(b.Data.Text()))
	return vdom.Element("div", map[string]any{"data-block-id": b.ID, "className": "block-todo"}, checkbox, text)
}

func codeTemplate(b document.Block, _ RenderContext) vdom.Node {
	lang := ""
	if v, ok := b.Data["language"].(string); ok {
		lang = v
	}
	label := vdom.Element("span", map[string]any{"className": "block-code-lang", "contentEditable": false}, vdom.Text(lang))
	code := vdom.Element("code", map[string]any{"data-editable": "", "contentEditable": true, "spellcheck": false}, vdom.Text(b.Data.Text()))
	pre := vdom.Element("pre", map[string]any{"data-block-id": b.ID}, label, code)
	return pre
}

func dividerTemplate(b document.Block, _ RenderContext) vdom.Node {
	return vdom.Element("hr", map[string]any{"data-block-id": b.ID, "tabindex": "0", "contentEditable": false})
}

func imageTemplate(b document.Block, _ RenderContext) vdom.Node {
	url, _ := b.Data["url"].(string)
	if url == "" {
		return vdom.Element("div", map[string]any{"data-block-id": b.ID, "className": "block-image-placeholder", "contentEditable": false}, vdom.Text("Add an image"))
	}
	alt, _ := b.Data["alt"].(string)
	return vdom.Element("img", map[string]any{"data-block-id": b.ID, "src": url, "alt": alt, "contentEditable": false})
}

func mergeProps(base map[string]any, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

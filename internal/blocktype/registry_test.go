package blocktype

import (
	"testing"

	"github.com/cosmic-gao/nexo-sub000/internal/document"
	"github.com/cosmic-gao/nexo-sub000/internal/vdom"
)

func TestParagraphTemplateCarriesText(t *testing.T) {
	r := NewDefault()
	b := document.Block{ID: "blk_1", Type: document.Paragraph, Data: document.Data{"text": "hello"}}
	n := r.Render(b, RenderContext{})
	if n.Tag != "p" || n.Children[0].Text != "hello" {
		t.Fatalf("expected <p>hello</p>, got %+v", n)
	}
	if n.Props["data-block-id"] != "blk_1" {
		t.Fatalf("expected data-block-id prop, got %v", n.Props)
	}
}

func TestHeadingTemplatesUseDistinctTags(t *testing.T) {
	r := NewDefault()
	for tag, typ := range map[string]document.Type{"h1": document.Heading1, "h2": document.Heading2, "h3": document.Heading3} {
		b := document.Block{ID: "blk_1", Type: typ, Data: document.Data{"text": "x"}}
		n := r.Render(b, RenderContext{})
		if n.Tag != tag {
			t.Fatalf("expected tag %s for %s, got %s", tag, typ, n.Tag)
		}
	}
}

func TestNumberedListUsesProvidedIndex(t *testing.T) {
	r := NewDefault()
	b := document.Block{ID: "blk_1", Type: document.NumberedList, Data: document.Data{"text": "item"}}
	n := r.Render(b, RenderContext{NumberIndex: 3})
	marker := n.Children[0]
	if marker.Children[0].Text != "3." {
		t.Fatalf("expected marker '3.', got %q", marker.Children[0].Text)
	}
}

func TestTodoListReflectsChecked(t *testing.T) {
	r := NewDefault()
	b := document.Block{ID: "blk_1", Type: document.TodoList, Data: document.Data{"text": "buy milk", "checked": true}}
	n := r.Render(b, RenderContext{})
	checkbox := n.Children[0]
	if checkbox.Props["checked"] != true {
		t.Fatal("expected checkbox checked prop to be true")
	}
	textSpan := n.Children[1]
	if textSpan.Props["className"] != "block-todo-text block-todo-checked" {
		t.Fatalf("expected checked className variant, got %v", textSpan.Props["className"])
	}
}

func TestDividerIsAtomicAndFocusable(t *testing.T) {
	r := NewDefault()
	b := document.Block{ID: "blk_1", Type: document.Divider, Data: document.Data{}}
	n := r.Render(b, RenderContext{})
	if n.Tag != "hr" || n.Props["tabindex"] != "0" {
		t.Fatalf("expected focusable hr, got %+v", n)
	}
}

func TestImageShowsPlaceholderWithoutURL(t *testing.T) {
	r := NewDefault()
	b := document.Block{ID: "blk_1", Type: document.Image, Data: document.Data{}}
	n := r.Render(b, RenderContext{})
	if n.Tag != "div" {
		t.Fatalf("expected placeholder div, got %+v", n)
	}

	b2 := document.Block{ID: "blk_2", Type: document.Image, Data: document.Data{"url": "http://x/y.png", "alt": "y"}}
	n2 := r.Render(b2, RenderContext{})
	if n2.Tag != "img" || n2.Props["src"] != "http://x/y.png" {
		t.Fatalf("expected <img src=...>, got %+v", n2)
	}
}

func TestRegisterOverridesTemplate(t *testing.T) {
	r := NewDefault()
	r.Register(document.Paragraph, func(b document.Block, ctx RenderContext) vdom.Node {
		return vdom.Element("custom-p", nil, vdom.Text("overridden"))
	})
	b := document.Block{ID: "blk_1", Type: document.Paragraph, Data: document.Data{"text": "ignored"}}
	n := r.Render(b, RenderContext{})
	if n.Tag != "custom-p" || n.Children[0].Text != "overridden" {
		t.Fatalf("expected overridden template to apply, got %+v", n)
	}
}

func TestUnregisteredTypeFallsBackToParagraph(t *testing.T) {
	r := &Registry{templates: map[document.Type]TemplateFunc{}}
	b := document.Block{ID: "blk_1", Type: document.Type("custom"), Data: document.Data{"text": "x"}}
	n := r.Render(b, RenderContext{})
	if n.Tag != "p" {
		t.Fatalf("expected fallback to <p>, got %+v", n)
	}
}

package input

import (
	"testing"

	"golang.org/x/net/html"

	"github.com/cosmic-gao/nexo-sub000/editor"
	"github.com/cosmic-gao/nexo-sub000/internal/document"
	"github.com/cosmic-gao/nexo-sub000/internal/eventbus"
)

func newRenderedController(t *testing.T) (*editor.Controller, string) {
	t.Helper()
	c := newTestController()
	id := c.GetDocument().RootIDs[0]
	c.Init(&html.Node{Type: html.ElementNode, Data: "div"})
	c.Compiler().Render(c.GetDocument())
	return c, id
}

// typeText rewrites block id's rendered text node in place, the way a
// real contenteditable edit would leave it for the next input event.
func typeText(t *testing.T, c *editor.Controller, id, text string) {
	t.Helper()
	el, ok := c.Compiler().GetBlockElement(id)
	if !ok {
		t.Fatalf("expected a rendered element for block %s", id)
	}
	if el.FirstChild == nil || el.FirstChild.Type != html.TextNode {
		el.FirstChild = &html.Node{Type: html.TextNode, Data: text}
		return
	}
	el.FirstChild.Data = text
}

func TestPlainTypingSyncsTextWithoutHistory(t *testing.T) {
	c, id := newRenderedController(t)
	ih := New(c)
	typeText(t, c, id, "hello")

	ih.Handle(Event{Name: "input", Target: id})

	if got := c.GetDocument().Blocks[id].Data.Text(); got != "hello" {
		t.Fatalf("expected synced text %q, got %q", "hello", got)
	}
	if c.CanUndo() {
		t.Fatal("expected a direct typing sync to not be undoable")
	}
}

func TestHeadingShortcutTransformsBlock(t *testing.T) {
	c, id := newRenderedController(t)
	ih := New(c)
	typeText(t, c, id, "## ")

	ih.Handle(Event{Name: "input", Target: id})

	b := c.GetDocument().Blocks[id]
	if b.Type != document.Heading2 {
		t.Fatalf("expected block converted to Heading2, got %v", b.Type)
	}
	if b.Data.Text() != "" {
		t.Fatalf("expected text cleared after shortcut, got %q", b.Data.Text())
	}
}

func TestBulletListShortcutTransformsBlock(t *testing.T) {
	c, id := newRenderedController(t)
	ih := New(c)
	typeText(t, c, id, "- ")

	ih.Handle(Event{Name: "input", Target: id})

	if c.GetDocument().Blocks[id].Type != document.BulletList {
		t.Fatalf("expected block converted to BulletList, got %v", c.GetDocument().Blocks[id].Type)
	}
}

func TestCodeFenceShortcutCapturesLanguage(t *testing.T) {
	c, id := newRenderedController(t)
	ih := New(c)
	typeText(t, c, id, "```go")

	ih.Handle(Event{Name: "input", Target: id})

	b := c.GetDocument().Blocks[id]
	if b.Type != document.Code {
		t.Fatalf("expected block converted to Code, got %v", b.Type)
	}
	if lang, _ := b.Data["language"].(string); lang != "go" {
		t.Fatalf("expected captured language 'go', got %q", lang)
	}
}

func TestCompositionSuppressesHandleUntilEnd(t *testing.T) {
	c, id := newRenderedController(t)
	ih := New(c)

	ih.HandleCompositionStart(id)
	typeText(t, c, id, "partial")
	ih.Handle(Event{Name: "input", Target: id})

	if got := c.GetDocument().Blocks[id].Data.Text(); got != "" {
		t.Fatalf("expected no sync mid-composition, got %q", got)
	}

	ih.HandleCompositionEnd(Event{Name: "compositionend", Target: id})
	if got := c.GetDocument().Blocks[id].Data.Text(); got != "partial" {
		t.Fatalf("expected composition end to flush the sync, got %q", got)
	}
}

func TestSlashTriggersFocusChangedEvent(t *testing.T) {
	c, id := newRenderedController(t)
	ih := New(c)
	typeText(t, c, id, "/")

	var payload FocusChangedPayload
	got := false
	unsub := c.On(eventbus.FocusChanged, func(ev eventbus.Event) {
		payload, got = ev.Payload.(FocusChangedPayload), true
	})
	defer unsub()

	ih.Handle(Event{Name: "input", Target: id})

	if !got || !payload.ShowSlashMenu || payload.BlockID != id {
		t.Fatalf("expected a slash-menu focus:changed event, got %+v ok=%v", payload, got)
	}
}

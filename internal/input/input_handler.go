package input

import (
	"regexp"

	"github.com/cosmic-gao/nexo-sub000/editor"
	"github.com/cosmic-gao/nexo-sub000/internal/document"
	"github.com/cosmic-gao/nexo-sub000/internal/domsel"
	"github.com/cosmic-gao/nexo-sub000/internal/eventbus"
)

// Rect is a bounding rectangle in viewport coordinates. The core never
// measures layout itself (§4.10's slash-menu trigger delegates real
// geometry to the host JS shim); Rect exists so focus:changed carries a well-typed placeholder the
// shim is expected to fill in.
type Rect struct {
	X, Y, Width, Height float64
}

// FocusChangedPayload is the payload of a focus:changed event emitted by
// the input handler to ask the host to show or hide the slash menu.
type FocusChangedPayload struct {
	BlockID       string
	ShowSlashMenu bool
	Rect          Rect
}

// markdownRule pairs a start-of-block pattern with the transform it
// triggers, per spec §4.10's rule table.
type markdownRule struct {
	re    *regexp.Regexp
	apply func(h *InputHandler, id string, m []string)
}

var markdownRules = []markdownRule{
	{regexp.MustCompile(`^(#{1,3}) $`), applyHeading},
	{regexp.MustCompile(`^[-*] $`), applyBulletList},
	{regexp.MustCompile(`^\d+\. $`), applyNumberedList},
	{regexp.MustCompile(`^(?:- )?\[ \] $`), applyTodo(false)},
	{regexp.MustCompile(`^(?:- )?\[x\] $`), applyTodo(true)},
	{regexp.MustCompile(`^[>"] $`), applyQuote},
	{regexp.MustCompile("^```(\\w*)$"), applyCode},
	{regexp.MustCompile(`^(?:---|\*\*\*|___)$`), applyDivider},
}

// InputHandler synchronizes a block's text from its editable DOM element,
// detects the "/" slash-menu trigger and markdown shortcuts, and otherwise
// forwards plain typing as a direct (non-history) update (§4.10 Input
// handler).
type InputHandler struct {
	ctrl      *editor.Controller
	composing map[string]bool
}

// New creates an InputHandler bound to ctrl.
func New(ctrl *editor.Controller) *InputHandler {
	return &InputHandler{ctrl: ctrl, composing: make(map[string]bool)}
}

// HandleCompositionStart marks blockID as under IME composition: Handle
// calls for it are ignored until HandleCompositionEnd (§4.10, §5).
func (h *InputHandler) HandleCompositionStart(blockID string) {
	h.composing[blockID] = true
}

// HandleCompositionEnd clears the composition flag and performs the single
// deferred sync (§4.10: "composition end event performs a single sync").
func (h *InputHandler) HandleCompositionEnd(ev Event) {
	delete(h.composing, ev.Target)
	h.Handle(ev)
}

// Handle processes one input event on ev.Target. It is a no-op while that
// block is mid-composition.
func (h *InputHandler) Handle(ev Event) {
	id := ev.Target
	if h.composing[id] {
		return
	}
	b, ok := h.ctrl.GetBlock(id)
	if !ok {
		return
	}

	el, ok := h.ctrl.Compiler().Bridge().FocusBlock(id)
	if !ok {
		return
	}
	text := domsel.ReadText(el)

	if b.Type != document.Code && text == "/" {
		h.ctrl.Emit(eventbus.FocusChanged, FocusChangedPayload{BlockID: id, ShowSlashMenu: true}, eventbus.SourceUser)
		return
	}

	if b.Type != document.Code {
		for _, rule := range markdownRules {
			if m := rule.re.FindStringSubmatch(text); m != nil {
				rule.apply(h, id, m)
				return
			}
		}
	}

	h.ctrl.UpdateBlockDirect(id, document.Data{"text": text})
}

func applyHeading(h *InputHandler, id string, m []string) {
	var typ document.Type
	switch len(m[1]) {
	case 1:
		typ = document.Heading1
	case 2:
		typ = document.Heading2
	default:
		typ = document.Heading3
	}
	h.transform(id, typ, document.Data{"text": ""})
}

func applyBulletList(h *InputHandler, id string, _ []string) {
	h.transform(id, document.BulletList, document.Data{"text": ""})
}

func applyNumberedList(h *InputHandler, id string, _ []string) {
	h.transform(id, document.NumberedList, document.Data{"text": ""})
}

func applyTodo(checked bool) func(h *InputHandler, id string, m []string) {
	return func(h *InputHandler, id string, _ []string) {
		h.transform(id, document.TodoList, document.Data{"text": "", "checked": checked})
	}
}

func applyQuote(h *InputHandler, id string, _ []string) {
	h.transform(id, document.Quote, document.Data{"text": ""})
}

func applyCode(h *InputHandler, id string, m []string) {
	h.transform(id, document.Code, document.Data{"text": "", "language": m[1]})
}

func applyDivider(h *InputHandler, id string, _ []string) {
	if _, ok := h.ctrl.GetBlock(id); !ok {
		return
	}
	h.ctrl.ChangeBlockType(id, document.Divider)
	h.ctrl.UpdateBlock(id, document.Data{"text": ""})
	next, ok := h.ctrl.CreateBlock(document.Paragraph, document.Data{"text": ""}, id)
	if ok {
		h.ctrl.SetCursorToStart(next.ID)
	}
}

// transform applies a markdown-shortcut type change plus cleared/derived
// data, then restores the caret to offset 0 (§4.10).
func (h *InputHandler) transform(id string, typ document.Type, data document.Data) {
	h.ctrl.ChangeBlockType(id, typ)
	h.ctrl.UpdateBlock(id, data)
	h.ctrl.SetCursor(id, 0)
}

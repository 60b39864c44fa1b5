package input

import (
	"html"
	"strings"

	"github.com/cosmic-gao/nexo-sub000/editor"
	"github.com/cosmic-gao/nexo-sub000/internal/document"
	"github.com/cosmic-gao/nexo-sub000/internal/selection"
)

// SelectionHandler implements the mouse-driven multi-block selection
// gesture and the clipboard operations it enables (§4.10 "Selection
// (multi-block) handler").
type SelectionHandler struct {
	ctrl     *editor.Controller
	anchorID string
	dragging bool
}

// NewSelectionHandler creates a SelectionHandler bound to ctrl.
func NewSelectionHandler(ctrl *editor.Controller) *SelectionHandler {
	return &SelectionHandler{ctrl: ctrl}
}

// HandleMouseDown processes a mousedown on ev.Target. Plain click clears
// any active block-set (the resulting caret placement is the platform's
// own doing, read back through the bridge); Shift-click extends a range
// from the remembered anchor; Ctrl/Cmd-click toggles a single block.
func (s *SelectionHandler) HandleMouseDown(ev Event) {
	id := ev.Target
	if id == "" {
		return
	}
	switch {
	case ev.Meta.CommandHeld():
		s.toggleBlock(id)
	case ev.Meta.ShiftKey && s.anchorID != "":
		s.selectRange(s.anchorID, id)
	default:
		if cur := s.ctrl.GetSelection(); cur.Kind == selection.BlockSet {
			s.ctrl.SetSelection(selection.NewNone())
		}
		s.anchorID = id
	}
	s.dragging = true
}

// HandleMouseMove extends the range from the remembered anchor to
// ev.Target while a gesture is in progress.
func (s *SelectionHandler) HandleMouseMove(ev Event) {
	if !s.dragging || s.anchorID == "" || ev.Target == "" {
		return
	}
	s.selectRange(s.anchorID, ev.Target)
}

// HandleMouseUp terminates the drag gesture (§4.10).
func (s *SelectionHandler) HandleMouseUp() {
	s.dragging = false
}

// SelectAll selects every block in flattened order (§4.10 Ctrl/Cmd-A).
func (s *SelectionHandler) SelectAll() {
	flat := document.GetFlattenedBlocks(s.ctrl.GetDocument())
	ids := make([]string, len(flat))
	for i, b := range flat {
		ids[i] = b.ID
	}
	s.ctrl.SetSelection(selection.NewBlockSet(ids))
}

func (s *SelectionHandler) selectRange(fromID, toID string) {
	flat := document.GetFlattenedBlocks(s.ctrl.GetDocument())
	fi, ti := indexOfBlock(flat, fromID), indexOfBlock(flat, toID)
	if fi < 0 || ti < 0 {
		return
	}
	if fi > ti {
		fi, ti = ti, fi
	}
	ids := make([]string, 0, ti-fi+1)
	for i := fi; i <= ti; i++ {
		ids = append(ids, flat[i].ID)
	}
	s.ctrl.SetSelection(selection.NewBlockSet(ids))
}

func (s *SelectionHandler) toggleBlock(id string) {
	cur := s.ctrl.GetSelection()
	var ids []string
	if cur.Kind == selection.BlockSet {
		ids = append(ids, cur.BlockIDs...)
	}
	if idx := indexOfString(ids, id); idx >= 0 {
		ids = append(ids[:idx], ids[idx+1:]...)
	} else {
		ids = append(ids, id)
	}
	s.ctrl.SetSelection(selection.NewBlockSet(ids))
	s.anchorID = id
}

// Copy renders the current block-set selection as plain text (one block's
// text per line) and a minimal HTML representation tagging each block's
// type (§4.10).
func (s *SelectionHandler) Copy() (plain string, htmlOut string, ok bool) {
	sel := s.ctrl.GetSelection()
	if sel.Kind != selection.BlockSet || len(sel.BlockIDs) == 0 {
		return "", "", false
	}
	doc := s.ctrl.GetDocument()
	var lines []string
	var parts []string
	for _, id := range sel.BlockIDs {
		b, ok := document.GetBlock(doc, id)
		if !ok {
			continue
		}
		lines = append(lines, b.Data.Text())
		parts = append(parts, `<div data-block-type="`+string(b.Type)+`">`+html.EscapeString(b.Data.Text())+`</div>`)
	}
	if len(lines) == 0 {
		return "", "", false
	}
	return strings.Join(lines, "\n"), strings.Join(parts, ""), true
}

// Cut is Copy followed by deleting every copied block (§4.10: "cut = copy
// + delete").
func (s *SelectionHandler) Cut() (plain string, htmlOut string, ok bool) {
	plain, htmlOut, ok = s.Copy()
	if !ok {
		return "", "", false
	}
	sel := s.ctrl.GetSelection()
	for _, id := range sel.BlockIDs {
		s.ctrl.DeleteBlock(id)
	}
	s.ctrl.SetSelection(selection.NewNone())
	return plain, htmlOut, true
}

func indexOfBlock(blocks []document.Block, id string) int {
	for i, b := range blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func indexOfString(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

package input

import (
	"strings"

	"github.com/cosmic-gao/nexo-sub000/editor"
	"github.com/cosmic-gao/nexo-sub000/internal/document"
	"github.com/cosmic-gao/nexo-sub000/internal/selection"
)

// ClipboardPayload is the result of a copy/cut gesture, handed back to the
// host to place on the platform clipboard (§4.10).
type ClipboardPayload struct {
	Plain string
	HTML  string
}

// KeyboardHandler implements the block-editing, navigation, and history
// shortcuts of spec §4.10 ("Keyboard handler"). It owns a SelectionHandler
// to carry out the multi-block-selection-active branch of its own table.
type KeyboardHandler struct {
	ctrl *editor.Controller
	sel  *SelectionHandler
}

// NewKeyboardHandler creates a KeyboardHandler bound to ctrl, sharing sel
// for multi-block copy/cut/select-all.
func NewKeyboardHandler(ctrl *editor.Controller, sel *SelectionHandler) *KeyboardHandler {
	return &KeyboardHandler{ctrl: ctrl, sel: sel}
}

// Handle processes one keydown. handled reports whether the host should
// suppress its own default behavior; clip is non-nil only for a
// successful copy/cut.
func (kh *KeyboardHandler) Handle(ev Event) (handled bool, clip *ClipboardPayload) {
	sel := kh.ctrl.GetSelection()
	multiBlock := sel.Kind == selection.BlockSet && len(sel.BlockIDs) > 0

	if multiBlock {
		switch ev.Key {
		case "Backspace", "Delete":
			kh.deleteSelectedBlocks(sel)
			return true, nil
		case "Escape":
			kh.ctrl.SetSelection(selection.NewNone())
			return true, nil
		}
		if ev.Meta.CommandHeld() {
			switch strings.ToLower(ev.Key) {
			case "c":
				if plain, htmlOut, ok := kh.sel.Copy(); ok {
					return true, &ClipboardPayload{Plain: plain, HTML: htmlOut}
				}
				return false, nil
			case "x":
				if plain, htmlOut, ok := kh.sel.Cut(); ok {
					return true, &ClipboardPayload{Plain: plain, HTML: htmlOut}
				}
				return false, nil
			case "a":
				kh.sel.SelectAll()
				return true, nil
			}
		}
	}

	if ev.Meta.CommandHeld() {
		switch strings.ToLower(ev.Key) {
		case "z":
			if ev.Meta.ShiftKey {
				kh.ctrl.Redo()
			} else {
				kh.ctrl.Undo()
			}
			return true, nil
		case "y":
			kh.ctrl.Redo()
			return true, nil
		case "a":
			if !multiBlock {
				kh.sel.SelectAll()
				return true, nil
			}
		}
	}

	id := ev.Target
	b, ok := kh.ctrl.GetBlock(id)
	if !ok {
		return false, nil
	}

	if ev.Meta.CommandHeld() && b.Type != document.Code {
		switch strings.ToLower(ev.Key) {
		case "b":
			kh.toggleFormat(id, "bold")
			return true, nil
		case "i":
			kh.toggleFormat(id, "italic")
			return true, nil
		case "u":
			kh.toggleFormat(id, "underline")
			return true, nil
		case "s":
			if ev.Meta.ShiftKey {
				kh.toggleFormat(id, "strikethrough")
				return true, nil
			}
		}
	}

	switch ev.Key {
	case "Enter":
		return kh.handleEnter(id), nil
	case "Backspace":
		return kh.handleBackspace(id), nil
	case "Tab":
		if b.Type == document.Code {
			return false, nil
		}
		if ev.Meta.ShiftKey {
			kh.ctrl.OutdentBlock(id)
		} else {
			kh.ctrl.IndentBlock(id)
		}
		return true, nil
	case "ArrowUp":
		return kh.handleArrow(id, false), nil
	case "ArrowDown":
		return kh.handleArrow(id, true), nil
	}
	return false, nil
}

// handleEnter implements §4.10's Enter table. Code blocks are never
// intercepted (the platform's own newline insertion stands).
func (kh *KeyboardHandler) handleEnter(id string) bool {
	sel := kh.ctrl.GetSelection()
	if sel.Kind != selection.Caret || sel.BlockID != id {
		return false
	}
	b, ok := kh.ctrl.GetBlock(id)
	if !ok || b.Type == document.Code {
		return false
	}

	if b.Data.Text() == "" && b.Type != document.Paragraph {
		kh.ctrl.ChangeBlockType(id, document.Paragraph)
		return true
	}
	if kh.ctrl.IsAtBlockEnd(id) {
		next, ok := kh.ctrl.CreateBlock(document.Paragraph, document.Data{"text": ""}, id)
		if ok {
			kh.ctrl.SetCursorToStart(next.ID)
		}
		return true
	}
	tail, ok := kh.ctrl.SplitBlock(id, sel.Offset)
	if ok {
		kh.ctrl.SetCursorToStart(tail.ID)
	}
	return true
}

// handleBackspace implements §4.10's Backspace table: only intercepted
// when the selection is collapsed at offset 0 of id.
func (kh *KeyboardHandler) handleBackspace(id string) bool {
	sel := kh.ctrl.GetSelection()
	var offset int
	switch sel.Kind {
	case selection.Caret:
		if sel.BlockID != id {
			return false
		}
		offset = sel.Offset
	case selection.TextRange:
		if !sel.IsCollapsed() || sel.AnchorBlockID != id {
			return false
		}
		offset = sel.AnchorOffset
	default:
		return false
	}
	if offset != 0 {
		return false
	}

	b, ok := kh.ctrl.GetBlock(id)
	if !ok {
		return false
	}
	if b.Type != document.Paragraph {
		kh.ctrl.ChangeBlockType(id, document.Paragraph)
		return true
	}

	prev, ok := kh.previousEditableBlock(id)
	if !ok {
		return false
	}
	prevLen := len([]rune(prev.Data.Text()))
	if kh.ctrl.MergeBlocks(id, prev.ID) {
		kh.ctrl.SetCursor(prev.ID, prevLen)
	}
	return true
}

// handleArrow implements §4.10's Arrow Up/Down table. The real
// implementation intercepts only near the caret's rendered top/bottom
// edge; since this package has no layout engine, proximity is
// approximated by the caret sitting at the block's text start (Up) or end
// (Down).
func (kh *KeyboardHandler) handleArrow(id string, down bool) bool {
	sel := kh.ctrl.GetSelection()
	if sel.Kind != selection.Caret || sel.BlockID != id {
		return false
	}
	b, ok := kh.ctrl.GetBlock(id)
	if !ok {
		return false
	}
	textLen := len([]rune(b.Data.Text()))

	if down {
		if sel.Offset != textLen {
			return false
		}
		next, ok := kh.nextEditableBlock(id)
		if !ok {
			return false
		}
		kh.ctrl.SetCursorToStart(next.ID)
		return true
	}
	if sel.Offset != 0 {
		return false
	}
	prev, ok := kh.previousEditableBlock(id)
	if !ok {
		return false
	}
	kh.ctrl.SetCursorToEnd(prev.ID)
	return true
}

func (kh *KeyboardHandler) previousEditableBlock(id string) (document.Block, bool) {
	flat := document.GetFlattenedBlocks(kh.ctrl.GetDocument())
	idx := indexOfBlock(flat, id)
	if idx <= 0 {
		return document.Block{}, false
	}
	for i := idx - 1; i >= 0; i-- {
		if !flat[i].Type.Atomic() {
			return flat[i], true
		}
	}
	return document.Block{}, false
}

func (kh *KeyboardHandler) nextEditableBlock(id string) (document.Block, bool) {
	flat := document.GetFlattenedBlocks(kh.ctrl.GetDocument())
	idx := indexOfBlock(flat, id)
	if idx < 0 || idx >= len(flat)-1 {
		return document.Block{}, false
	}
	for i := idx + 1; i < len(flat); i++ {
		if !flat[i].Type.Atomic() {
			return flat[i], true
		}
	}
	return document.Block{}, false
}

func (kh *KeyboardHandler) deleteSelectedBlocks(sel selection.Selection) {
	flat := document.GetFlattenedBlocks(kh.ctrl.GetDocument())
	startIdx := -1
	for i, b := range flat {
		if sel.IsBlockSelected(b.ID) {
			startIdx = i
			break
		}
	}
	for _, id := range sel.BlockIDs {
		kh.ctrl.DeleteBlock(id)
	}
	kh.ctrl.SetSelection(selection.NewNone())

	remaining := document.GetFlattenedBlocks(kh.ctrl.GetDocument())
	if len(remaining) == 0 {
		return
	}
	idx := startIdx
	if idx >= len(remaining) {
		idx = len(remaining) - 1
	}
	if idx < 0 {
		idx = 0
	}
	kh.ctrl.SetCursorToStart(remaining[idx].ID)
}

// markRange is one toggled inline annotation over [Start, End) of a
// block's text (§4.10 format shortcuts: "maintain their own annotation
// map"). Stored in the block's Data under "marks" as plain maps so it
// round-trips through the open document.Data type without a custom codec.
type markRange struct {
	Mark  string
	Start int
	End   int
}

// toggleFormat flips mark on over the current same-block text selection.
// No-op without an active, non-collapsed same-block TextRange.
func (kh *KeyboardHandler) toggleFormat(id, mark string) {
	sel := kh.ctrl.GetSelection()
	if sel.Kind != selection.TextRange || sel.AnchorBlockID != id || sel.FocusBlockID != id || sel.IsCollapsed() {
		return
	}
	start, end := sel.AnchorOffset, sel.FocusOffset
	if start > end {
		start, end = end, start
	}
	b, ok := kh.ctrl.GetBlock(id)
	if !ok {
		return
	}
	marks := parseMarks(b.Data["marks"])
	if idx := findMark(marks, mark, start, end); idx >= 0 {
		marks = append(marks[:idx], marks[idx+1:]...)
	} else {
		marks = append(marks, markRange{Mark: mark, Start: start, End: end})
	}
	kh.ctrl.UpdateBlock(id, document.Data{"marks": marshalMarks(marks)})
}

func parseMarks(v any) []markRange {
	raw, ok := v.([]map[string]any)
	if !ok {
		return nil
	}
	out := make([]markRange, 0, len(raw))
	for _, m := range raw {
		name, _ := m["mark"].(string)
		start, _ := toInt(m["start"])
		end, _ := toInt(m["end"])
		out = append(out, markRange{Mark: name, Start: start, End: end})
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func marshalMarks(marks []markRange) []map[string]any {
	out := make([]map[string]any, 0, len(marks))
	for _, m := range marks {
		out = append(out, map[string]any{"mark": m.Mark, "start": m.Start, "end": m.End})
	}
	return out
}

func findMark(marks []markRange, name string, start, end int) int {
	for i, m := range marks {
		if m.Mark == name && m.Start == start && m.End == end {
			return i
		}
	}
	return -1
}

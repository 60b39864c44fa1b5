package input

import (
	"strings"
	"testing"

	"github.com/cosmic-gao/nexo-sub000/internal/document"
	"github.com/cosmic-gao/nexo-sub000/internal/selection"
)

func threeBlocks(t *testing.T) (*SelectionHandler, string, string, string) {
	t.Helper()
	c := newTestController()
	first := c.GetDocument().RootIDs[0]
	c.UpdateBlock(first, document.Data{"text": "a"})
	second, _ := c.CreateBlock(document.Paragraph, document.Data{"text": "b"}, first)
	third, _ := c.CreateBlock(document.Paragraph, document.Data{"text": "c"}, second.ID)
	return NewSelectionHandler(c), first, second.ID, third.ID
}

func TestShiftClickSelectsRange(t *testing.T) {
	sh, first, _, third := threeBlocks(t)

	sh.HandleMouseDown(Event{Target: first})
	sh.HandleMouseUp()
	sh.HandleMouseDown(Event{Target: third, Meta: Meta{ShiftKey: true}})

	sel := sh.ctrl.GetSelection()
	if sel.Kind != selection.BlockSet || len(sel.BlockIDs) != 3 {
		t.Fatalf("expected all three blocks selected, got %+v", sel)
	}
}

func TestCommandClickTogglesBlock(t *testing.T) {
	sh, first, second, _ := threeBlocks(t)

	sh.HandleMouseDown(Event{Target: first, Meta: Meta{CtrlKey: true}})
	sh.HandleMouseDown(Event{Target: second, Meta: Meta{CtrlKey: true}})

	sel := sh.ctrl.GetSelection()
	if len(sel.BlockIDs) != 2 {
		t.Fatalf("expected two blocks toggled on, got %+v", sel.BlockIDs)
	}

	sh.HandleMouseDown(Event{Target: first, Meta: Meta{CtrlKey: true}})
	sel = sh.ctrl.GetSelection()
	if len(sel.BlockIDs) != 1 || sel.BlockIDs[0] != second {
		t.Fatalf("expected toggling first off to leave only second, got %+v", sel.BlockIDs)
	}
}

func TestSelectAllSelectsEveryBlock(t *testing.T) {
	sh, _, _, _ := threeBlocks(t)
	sh.SelectAll()

	sel := sh.ctrl.GetSelection()
	if len(sel.BlockIDs) != 3 {
		t.Fatalf("expected three blocks selected, got %+v", sel.BlockIDs)
	}
}

func TestCopyJoinsBlockTextWithNewlines(t *testing.T) {
	sh, first, second, third := threeBlocks(t)
	sh.ctrl.SetSelection(selection.NewBlockSet([]string{first, second, third}))

	plain, htmlOut, ok := sh.Copy()
	if !ok {
		t.Fatal("expected Copy to succeed with a block-set selection")
	}
	if plain != "a\nb\nc" {
		t.Fatalf("expected joined plain text 'a\\nb\\nc', got %q", plain)
	}
	if !strings.Contains(htmlOut, `data-block-type="paragraph"`) {
		t.Fatalf("expected html output to tag block type, got %q", htmlOut)
	}
}

func TestCopyFailsWithoutBlockSetSelection(t *testing.T) {
	sh, first, _, _ := threeBlocks(t)
	sh.ctrl.SetCursor(first, 0)

	if _, _, ok := sh.Copy(); ok {
		t.Fatal("expected Copy to fail without a block-set selection")
	}
}

func TestCutDeletesCopiedBlocksAndClearsSelection(t *testing.T) {
	sh, first, second, _ := threeBlocks(t)
	sh.ctrl.SetSelection(selection.NewBlockSet([]string{second}))

	plain, _, ok := sh.Cut()
	if !ok {
		t.Fatal("expected Cut to succeed")
	}
	if plain != "b" {
		t.Fatalf("expected cut text 'b', got %q", plain)
	}
	doc := sh.ctrl.GetDocument()
	if _, exists := doc.Blocks[second]; exists {
		t.Fatal("expected the cut block to be deleted")
	}
	if len(doc.RootIDs) != 2 || doc.RootIDs[0] != first {
		t.Fatalf("expected remaining blocks to stay, got %v", doc.RootIDs)
	}
	if sh.ctrl.GetSelection().Kind != selection.None {
		t.Fatal("expected selection cleared after Cut")
	}
}

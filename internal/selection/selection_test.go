package selection

import (
	"testing"

	"github.com/cosmic-gao/nexo-sub000/internal/document"
)

func newTestDoc() (document.Document, string, string) {
	d := document.New("doc", 1)
	first := d.RootIDs[0]
	d = document.UpdateBlock(d, first, document.Data{"text": "hello"})
	var b document.Block
	d, b = document.CreateBlock(d, document.Paragraph, document.Data{"text": "world"}, "", -1)
	return d, first, b.ID
}

func TestCaretIsCollapsed(t *testing.T) {
	s := NewCaret("blk_1", 3)
	if !s.IsCollapsed() {
		t.Fatal("expected caret to be collapsed")
	}
}

func TestTextRangeCollapsedWhenEndpointsMatch(t *testing.T) {
	s := NewTextRange("blk_1", 4, 4)
	if !s.IsCollapsed() {
		t.Fatal("expected same-offset text range to be collapsed")
	}
	s2 := NewTextRange("blk_1", 4, 7)
	if s2.IsCollapsed() {
		t.Fatal("expected differing-offset text range to not be collapsed")
	}
	if !s2.IsForward {
		t.Fatal("expected forward range when focus > anchor")
	}
}

func TestCrossBlockNeverCollapsed(t *testing.T) {
	s := NewCrossBlock("a", 0, "b", 2, true, nil)
	if s.IsCollapsed() {
		t.Fatal("cross-block selections span at least two blocks and are never collapsed")
	}
}

func TestBlockSetMembership(t *testing.T) {
	s := NewBlockSet([]string{"a", "b", "c"})
	if !s.IsBlockSelected("b") {
		t.Fatal("expected b to be selected")
	}
	if s.IsBlockSelected("z") {
		t.Fatal("expected z to not be selected")
	}
}

func TestEqualDistinguishesKindAndEndpoints(t *testing.T) {
	a := NewCaret("blk_1", 3)
	b := NewCaret("blk_1", 3)
	c := NewCaret("blk_1", 4)
	if !a.Equal(b) {
		t.Fatal("expected identical carets to be equal")
	}
	if a.Equal(c) {
		t.Fatal("expected carets with differing offsets to be unequal")
	}
	if a.Equal(NewNone()) {
		t.Fatal("expected different kinds to be unequal")
	}
}

func TestEqualComparesBlockSetOrderAndMembership(t *testing.T) {
	a := NewBlockSet([]string{"x", "y"})
	b := NewBlockSet([]string{"x", "y"})
	c := NewBlockSet([]string{"y", "x"})
	if !a.Equal(b) {
		t.Fatal("expected same-order block sets to be equal")
	}
	if a.Equal(c) {
		t.Fatal("expected differently-ordered block sets to be unequal")
	}
}

func TestValidRejectsUnknownBlockAndOutOfRangeOffset(t *testing.T) {
	d, first, _ := newTestDoc()

	if !Valid(NewCaret(first, 0), d) {
		t.Fatal("expected offset 0 to be valid")
	}
	if !Valid(NewCaret(first, 5), d) {
		t.Fatal("expected offset == len(text) to be valid")
	}
	if Valid(NewCaret(first, 6), d) {
		t.Fatal("expected offset beyond text length to be invalid")
	}
	if Valid(NewCaret("blk_missing", 0), d) {
		t.Fatal("expected unresolved block id to be invalid")
	}
}

func TestValidCrossBlockChecksAllContainedBlocks(t *testing.T) {
	d, first, second := newTestDoc()
	s := NewCrossBlock(first, 0, second, 2, true, []string{"blk_missing"})
	if Valid(s, d) {
		t.Fatal("expected cross-block selection referencing a missing contained block to be invalid")
	}

	s2 := NewCrossBlock(first, 0, second, 2, true, nil)
	if !Valid(s2, d) {
		t.Fatal("expected cross-block selection between two real blocks to be valid")
	}
}

func TestValidBlockSetChecksMembership(t *testing.T) {
	d, first, second := newTestDoc()
	if !Valid(NewBlockSet([]string{first, second}), d) {
		t.Fatal("expected block set of real ids to be valid")
	}
	if Valid(NewBlockSet([]string{first, "blk_missing"}), d) {
		t.Fatal("expected block set containing a missing id to be invalid")
	}
}

func TestNoneIsAlwaysValid(t *testing.T) {
	d, _, _ := newTestDoc()
	if !Valid(NewNone(), d) {
		t.Fatal("expected None selection to always be valid")
	}
}

package command

import (
	"testing"

	"github.com/cosmic-gao/nexo-sub000/internal/document"
	"github.com/cosmic-gao/nexo-sub000/internal/oplog"
)

// TestUndoStructuralMove is end-to-end scenario 3 from spec §8: move "c"
// before "a", undo, and expect the original order restored with
// CanUndo()==false, CanRedo()==true.
func TestUndoStructuralMove(t *testing.T) {
	d := document.New("doc", 1)
	d = document.DeleteBlock(d, d.RootIDs[0])
	var a, b, c document.Block
	d, a = document.CreateBlock(d, document.Paragraph, document.Data{"text": "a"}, "", -1)
	d, b = document.CreateBlock(d, document.Paragraph, document.Data{"text": "b"}, "", -1)
	d, c = document.CreateBlock(d, document.Paragraph, document.Data{"text": "c"}, "", -1)

	e := New(d)
	e.Execute(oplog.NewTransaction("move c before a", oplog.Operation{
		Tag: oplog.MoveBlock, BlockID: c.ID, NewParentID: "", NewIndex: 0,
	}))
	if e.Document().RootIDs[0] != c.ID {
		t.Fatalf("expected c first after move, got %v", e.Document().RootIDs)
	}

	nd, _, ok := e.Undo()
	if !ok {
		t.Fatal("expected undo to succeed")
	}
	if nd.RootIDs[0] != a.ID || nd.RootIDs[1] != b.ID || nd.RootIDs[2] != c.ID {
		t.Fatalf("expected a,b,c restored, got %v", nd.RootIDs)
	}
	if e.CanUndo() {
		t.Fatal("expected CanUndo()==false after undoing the only transaction")
	}
	if !e.CanRedo() {
		t.Fatal("expected CanRedo()==true after an undo")
	}
}

func TestExecuteClearsFuture(t *testing.T) {
	d := document.New("doc", 1)
	id := d.RootIDs[0]
	e := New(d)

	e.Execute(oplog.NewTransaction("a", oplog.Operation{Tag: oplog.SetBlockData, BlockID: id, Path: "text", Value: "a"}))
	e.Undo()
	if !e.CanRedo() {
		t.Fatal("expected redo available after undo")
	}
	e.Execute(oplog.NewTransaction("b", oplog.Operation{Tag: oplog.SetBlockData, BlockID: id, Path: "text", Value: "b"}))
	if e.CanRedo() {
		t.Fatal("expected a new Execute to clear the future stack")
	}
}

func TestMaxHistoryBound(t *testing.T) {
	d := document.New("doc", 1)
	id := d.RootIDs[0]
	e := New(d, WithMaxHistory(3))

	for i := 0; i < 5; i++ {
		e.Execute(oplog.NewTransaction("set", oplog.Operation{Tag: oplog.SetBlockData, BlockID: id, Path: "n", Value: i}))
	}
	undoCount := 0
	for e.CanUndo() {
		e.Undo()
		undoCount++
	}
	if undoCount != 3 {
		t.Fatalf("expected history bounded to 3 entries, undid %d", undoCount)
	}
}

func TestRedoSymmetricWithUndo(t *testing.T) {
	d := document.New("doc", 1)
	id := d.RootIDs[0]
	e := New(d)

	e.Execute(oplog.NewTransaction("set", oplog.Operation{Tag: oplog.SetBlockData, BlockID: id, Path: "text", Value: "hi"}))
	e.Undo()
	nd, _, ok := e.Redo()
	if !ok {
		t.Fatal("expected redo to succeed")
	}
	if nd.Blocks[id].Data.Text() != "hi" {
		t.Fatalf("expected redo to restore 'hi', got %q", nd.Blocks[id].Data.Text())
	}
}

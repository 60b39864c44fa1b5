package oplog

import (
	"testing"

	"github.com/cosmic-gao/nexo-sub000/internal/document"
)

func sameShape(t *testing.T, a, b document.Document) {
	t.Helper()
	flatA := document.GetFlattenedBlocks(a)
	flatB := document.GetFlattenedBlocks(b)
	if len(flatA) != len(flatB) {
		t.Fatalf("block count differs: %d vs %d", len(flatA), len(flatB))
	}
	for i := range flatA {
		if flatA[i].ID != flatB[i].ID {
			t.Fatalf("order differs at %d: %s vs %s", i, flatA[i].ID, flatB[i].ID)
		}
		if flatA[i].Type != flatB[i].Type {
			t.Fatalf("type differs for %s: %s vs %s", flatA[i].ID, flatA[i].Type, flatB[i].Type)
		}
		if flatA[i].Data.Text() != flatB[i].Data.Text() {
			t.Fatalf("text differs for %s: %q vs %q", flatA[i].ID, flatA[i].Data.Text(), flatB[i].Data.Text())
		}
	}
}

func TestApplyInvert_SetBlockData(t *testing.T) {
	d := document.New("doc", 1)
	id := d.RootIDs[0]
	before := d

	txn := NewTransaction("type", Operation{Tag: SetBlockData, BlockID: id, Path: "text", Value: "hello"})
	after, applied := ApplyTransaction(d, txn)
	if after.Blocks[id].Data.Text() != "hello" {
		t.Fatalf("expected hello, got %q", after.Blocks[id].Data.Text())
	}

	inv := InvertTransaction(applied)
	restored, _ := ApplyTransaction(after, inv)
	sameShape(t, before, restored)
	if restored.Blocks[id].Data.Text() != "" {
		t.Fatalf("expected restored text empty, got %q", restored.Blocks[id].Data.Text())
	}
}

func TestApplyInvert_DeleteInsertRoundTrip(t *testing.T) {
	d := document.New("doc", 1)
	root := d.RootIDs[0]
	d, child := document.CreateBlock(d, document.Paragraph, document.Data{"text": "child"}, root, -1)
	d, _ = document.CreateBlock(d, document.Paragraph, document.Data{"text": "grandchild"}, child.ID, -1)
	before := d

	txn := NewTransaction("delete", Operation{Tag: DeleteBlock, BlockID: child.ID})
	after, applied := ApplyTransaction(d, txn)
	if _, ok := document.GetBlock(after, child.ID); ok {
		t.Fatal("expected child deleted")
	}

	inv := InvertTransaction(applied)
	restored, _ := ApplyTransaction(after, inv)
	sameShape(t, before, restored)
}

func TestApplyInvert_MoveBlock(t *testing.T) {
	d := document.New("doc", 1)
	d = document.DeleteBlock(d, d.RootIDs[0])
	var a, b, c document.Block
	d, a = document.CreateBlock(d, document.Paragraph, document.Data{"text": "a"}, "", -1)
	d, b = document.CreateBlock(d, document.Paragraph, document.Data{"text": "b"}, "", -1)
	d, c = document.CreateBlock(d, document.Paragraph, document.Data{"text": "c"}, "", -1)
	before := d
	_ = a

	txn := NewTransaction("move", Operation{Tag: MoveBlock, BlockID: c.ID, NewParentID: "", NewIndex: 0})
	after, applied := ApplyTransaction(d, txn)
	if after.RootIDs[0] != c.ID {
		t.Fatalf("expected c moved first, got %v", after.RootIDs)
	}

	inv := InvertTransaction(applied)
	restored, _ := ApplyTransaction(after, inv)
	sameShape(t, before, restored)
	if restored.RootIDs[0] != a.ID || restored.RootIDs[2] != c.ID {
		t.Fatalf("expected a,b,c restored, got %v", restored.RootIDs)
	}
}

func TestInvertTransaction_ReversesOrder(t *testing.T) {
	d := document.New("doc", 1)
	id := d.RootIDs[0]

	txn := NewTransaction("two ops",
		Operation{Tag: SetBlockData, BlockID: id, Path: "text", Value: "first"},
		Operation{Tag: SetBlockData, BlockID: id, Path: "text", Value: "second"},
	)
	after, applied := ApplyTransaction(d, txn)
	if after.Blocks[id].Data.Text() != "second" {
		t.Fatalf("expected second, got %q", after.Blocks[id].Data.Text())
	}

	inv := InvertTransaction(applied)
	// First inverse undoes the *second* set (back to "first"), second
	// inverse undoes the first set (back to "").
	if inv.Operations[0].Value != "first" {
		t.Fatalf("expected first inverse to restore 'first', got %v", inv.Operations[0].Value)
	}
	if inv.Operations[1].Value != "" {
		t.Fatalf("expected second inverse to restore '', got %v", inv.Operations[1].Value)
	}
}

package document

import "testing"

func newTestDoc() Document {
	d := New("doc1", 1000)
	return d
}

func checkInvariants(t *testing.T, d Document) {
	t.Helper()
	seen := map[string]bool{}
	var walk func(ids []string, parent string)
	walk = func(ids []string, parent string) {
		for _, id := range ids {
			b, ok := d.Blocks[id]
			if !ok {
				t.Fatalf("id %q in sibling list resolves to nothing", id)
			}
			if b.ParentID != parent {
				t.Fatalf("block %q parentId=%q but found under parent %q", id, b.ParentID, parent)
			}
			if seen[id] {
				t.Fatalf("block %q reachable twice (cycle or duplicate)", id)
			}
			seen[id] = true
			walk(b.ChildrenIDs, id)
		}
	}
	walk(d.RootIDs, "")
	if len(seen) != len(d.Blocks) {
		t.Fatalf("reachable %d blocks, but %d stored (orphans present)", len(seen), len(d.Blocks))
	}
	if len(d.Blocks) == 0 {
		t.Fatal("invariant 3.3.4 violated: blocks is empty")
	}
}

func TestCreateBlock(t *testing.T) {
	d := newTestDoc()
	nd, b := CreateBlock(d, Paragraph, Data{"text": "hi"}, "", -1)
	checkInvariants(t, nd)
	if b.Data.Text() != "hi" {
		t.Fatalf("expected text hi, got %q", b.Data.Text())
	}
	if len(nd.RootIDs) != 2 {
		t.Fatalf("expected 2 root blocks, got %d", len(nd.RootIDs))
	}
	if nd.Meta.Version <= d.Meta.Version {
		t.Fatal("expected document version to advance")
	}
}

func TestCreateBlock_UnresolvedParent(t *testing.T) {
	d := newTestDoc()
	nd, b := CreateBlock(d, Paragraph, Data{"text": "x"}, "nope", -1)
	if nd.Meta.Version != d.Meta.Version || b.ID != "" {
		t.Fatal("expected no-op on unresolved parent")
	}
}

func TestUpdateBlockVersion(t *testing.T) {
	d := newTestDoc()
	id := d.RootIDs[0]
	prevVersion := d.Blocks[id].Meta.Version
	nd := UpdateBlock(d, id, Data{"text": "changed"})
	checkInvariants(t, nd)
	if nd.Blocks[id].Meta.Version != prevVersion+1 {
		t.Fatalf("expected version %d, got %d", prevVersion+1, nd.Blocks[id].Meta.Version)
	}
	if nd.Blocks[id].Data.Text() != "changed" {
		t.Fatalf("expected text changed, got %q", nd.Blocks[id].Data.Text())
	}
}

func TestDeleteLastBlockSynthesizesParagraph(t *testing.T) {
	d := newTestDoc()
	id := d.RootIDs[0]
	nd := DeleteBlock(d, id)
	checkInvariants(t, nd)
	if len(nd.Blocks) != 1 || len(nd.RootIDs) != 1 {
		t.Fatalf("expected exactly one synthesized paragraph, got %d blocks", len(nd.Blocks))
	}
	only := nd.Blocks[nd.RootIDs[0]]
	if only.Type != Paragraph || only.Data.Text() != "" {
		t.Fatalf("expected empty paragraph, got %+v", only)
	}
}

func TestDeleteBlock_CascadesToDescendants(t *testing.T) {
	d := newTestDoc()
	root := d.RootIDs[0]
	d, child := CreateBlock(d, Paragraph, Data{"text": "c"}, root, -1)
	d, grandchild := CreateBlock(d, Paragraph, Data{"text": "g"}, child.ID, -1)
	nd := DeleteBlock(d, child.ID)
	checkInvariants(t, nd)
	if _, ok := nd.Blocks[child.ID]; ok {
		t.Fatal("expected child deleted")
	}
	if _, ok := nd.Blocks[grandchild.ID]; ok {
		t.Fatal("expected grandchild cascaded deleted")
	}
}

func TestMoveBlock_RefusesIntoOwnDescendant(t *testing.T) {
	d := newTestDoc()
	root := d.RootIDs[0]
	d, child := CreateBlock(d, Paragraph, Data{"text": "c"}, root, -1)
	nd := MoveBlock(d, root, child.ID, 0)
	if nd.Meta.Version != d.Meta.Version {
		t.Fatal("expected no-op moving block into its own descendant")
	}
}

func TestMoveBlock_SelfIsNoop(t *testing.T) {
	d := newTestDoc()
	id := d.RootIDs[0]
	nd := MoveBlock(d, id, id, 0)
	if nd.Meta.Version != d.Meta.Version {
		t.Fatal("expected no-op moving block onto itself")
	}
}

func TestIndentOutdent_RoundTrip(t *testing.T) {
	d := newTestDoc()
	d = DeleteBlock(d, d.RootIDs[0])
	var a, b, c Block
	d, a = CreateBlock(d, BulletList, Data{"text": "a"}, "", -1)
	d, b = CreateBlock(d, BulletList, Data{"text": "b"}, "", -1)
	d, c = CreateBlock(d, BulletList, Data{"text": "c"}, "", -1)

	indented := IndentBlock(d, b.ID)
	checkInvariants(t, indented)
	if indented.Blocks[b.ID].ParentID != a.ID {
		t.Fatalf("expected b indented under a, got parent %q", indented.Blocks[b.ID].ParentID)
	}
	if indented.Blocks[c.ID].ParentID != "" {
		t.Fatal("expected c to remain at root")
	}

	restored := OutdentBlock(indented, b.ID)
	checkInvariants(t, restored)
	if restored.RootIDs[0] != a.ID || restored.RootIDs[1] != b.ID || restored.RootIDs[2] != c.ID {
		t.Fatalf("expected original shape a,b,c restored, got %v", restored.RootIDs)
	}
}

func TestMergeBlocks(t *testing.T) {
	d := newTestDoc()
	d = DeleteBlock(d, d.RootIDs[0])
	var foo, bar Block
	d, foo = CreateBlock(d, Paragraph, Data{"text": "foo"}, "", -1)
	d, bar = CreateBlock(d, Paragraph, Data{"text": "bar"}, "", -1)

	nd := MergeBlocks(d, bar.ID, foo.ID)
	checkInvariants(t, nd)
	if len(nd.RootIDs) != 1 {
		t.Fatalf("expected 1 root block after merge, got %d", len(nd.RootIDs))
	}
	if nd.Blocks[foo.ID].Data.Text() != "foobar" {
		t.Fatalf("expected foobar, got %q", nd.Blocks[foo.ID].Data.Text())
	}
}

func TestMergeBlocks_AtomicDisallowed(t *testing.T) {
	d := newTestDoc()
	d = DeleteBlock(d, d.RootIDs[0])
	var div, p Block
	d, div = CreateBlock(d, Divider, nil, "", -1)
	d, p = CreateBlock(d, Paragraph, Data{"text": "x"}, "", -1)
	nd := MergeBlocks(d, div.ID, p.ID)
	if nd.Meta.Version != d.Meta.Version {
		t.Fatal("expected no-op merging an atomic block")
	}
}

func TestSplitBlock(t *testing.T) {
	d := newTestDoc()
	id := d.RootIDs[0]
	d = UpdateBlock(d, id, Data{"text": "Hello world"})

	nd, newBlock := SplitBlock(d, id, 5)
	checkInvariants(t, nd)
	if nd.Blocks[id].Data.Text() != "Hello" {
		t.Fatalf("expected original truncated to Hello, got %q", nd.Blocks[id].Data.Text())
	}
	if newBlock.Data.Text() != " world" {
		t.Fatalf("expected remainder ' world', got %q", newBlock.Data.Text())
	}
	if nd.RootIDs[0] != id || nd.RootIDs[1] != newBlock.ID {
		t.Fatal("expected new block placed immediately after original")
	}
}

func TestSplitBlock_OffsetClamped(t *testing.T) {
	d := newTestDoc()
	id := d.RootIDs[0]
	d = UpdateBlock(d, id, Data{"text": "abc"})

	nd, nb := SplitBlock(d, id, 99)
	if nd.Blocks[id].Data.Text() != "abc" || nb.Data.Text() != "" {
		t.Fatal("expected offset beyond length clamped to end")
	}

	nd2, nb2 := SplitBlock(d, id, -5)
	if nd2.Blocks[id].Data.Text() != "" || nb2.Data.Text() != "abc" {
		t.Fatal("expected negative offset clamped to 0")
	}
}

func TestGetFlattenedBlocks(t *testing.T) {
	d := newTestDoc()
	root := d.RootIDs[0]
	d, child := CreateBlock(d, Paragraph, Data{"text": "c"}, root, -1)
	_, _ = CreateBlock(d, Paragraph, Data{"text": "g"}, child.ID, -1)
	d, _ = CreateBlock(d, Paragraph, Data{"text": "g"}, child.ID, -1)

	flat := GetFlattenedBlocks(d)
	if len(flat) != len(d.Blocks) {
		t.Fatalf("expected %d flattened blocks, got %d", len(d.Blocks), len(flat))
	}
	seen := map[string]bool{}
	for _, b := range flat {
		if seen[b.ID] {
			t.Fatalf("duplicate id %q in flattened order", b.ID)
		}
		seen[b.ID] = true
	}
}

func TestCallerCannotMutateStoredBlock(t *testing.T) {
	d := newTestDoc()
	id := d.RootIDs[0]
	b, _ := GetBlock(d, id)
	b.Data["text"] = "mutated from outside"
	again, _ := GetBlock(d, id)
	if again.Data.Text() == "mutated from outside" {
		t.Fatal("mutating a retrieved block leaked into the store")
	}
}

package document

// Document is the authoritative, immutable snapshot of the editor state:
// a map of blocks plus the ordered root id list that anchors the forest
// (§3.2). Every Store operation takes a Document and returns a new one;
// nothing in this package mutates a Document in place.
type Document struct {
	ID      string            `json:"id"`
	Blocks  map[string]Block  `json:"blocks"`
	RootIDs []string          `json:"rootIds"`
	Meta    Meta              `json:"meta"`
}

// New returns a fresh document containing a single empty paragraph, the
// minimal state that satisfies invariant §3.3.4 (blocks is never empty).
func New(id string, now int64) Document {
	p := Block{
		ID:   newBlockID(),
		Type: Paragraph,
		Data: Data{"text": ""},
		Meta: Meta{CreatedAt: now, UpdatedAt: now, Version: 1},
	}
	return Document{
		ID:      id,
		Blocks:  map[string]Block{p.ID: p},
		RootIDs: []string{p.ID},
		Meta:    Meta{CreatedAt: now, UpdatedAt: now, Version: 1},
	}
}

// clone returns a new Document sharing no mutable state with the receiver.
func (d Document) clone() Document {
	nd := d
	nd.Blocks = make(map[string]Block, len(d.Blocks))
	for id, b := range d.Blocks {
		nd.Blocks[id] = b.clone()
	}
	nd.RootIDs = append([]string(nil), d.RootIDs...)
	return nd
}

// touch bumps the document's version and updatedAt; every mutating
// operation in store.go calls this exactly once on the returned snapshot.
func (d Document) touch(now int64) Document {
	d.Meta.UpdatedAt = now
	d.Meta.Version++
	return d
}

// siblingList returns a pointer-like accessor to the ordered id slice a
// block with the given parent lives in: RootIDs for parent == "", else the
// parent block's ChildrenIDs. ok is false if parentID is non-empty and
// unresolved.
func (d *Document) siblingList(parentID string) (ids []string, ok bool) {
	if parentID == "" {
		return d.RootIDs, true
	}
	p, found := d.Blocks[parentID]
	if !found {
		return nil, false
	}
	return p.ChildrenIDs, true
}

func (d *Document) setSiblingList(parentID string, ids []string) {
	if parentID == "" {
		d.RootIDs = ids
		return
	}
	p := d.Blocks[parentID]
	p.ChildrenIDs = ids
	d.Blocks[parentID] = p
}

func indexOf(ids []string, id string) int {
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}

func removeAt(ids []string, i int) []string {
	out := append([]string(nil), ids[:i]...)
	return append(out, ids[i+1:]...)
}

func insertAt(ids []string, i int, id string) []string {
	if i < 0 || i > len(ids) {
		i = len(ids)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:i]...)
	out = append(out, id)
	out = append(out, ids[i:]...)
	return out
}

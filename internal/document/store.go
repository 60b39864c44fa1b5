package document

import "time"

// Clock returns the current time as a Unix-nanosecond timestamp. It is a
// var so tests can pin it; production callers use the default.
var Clock = func() int64 { return time.Now().UnixNano() }

// CreateBlock allocates a fresh block of the given type under parentID (or
// root when parentID == "") at index (appended when index < 0 or beyond the
// end). It returns the new snapshot and the created block. An unresolved
// parentID is a no-op: the returned block is the zero value.
func CreateBlock(d Document, typ Type, data Data, parentID string, index int) (Document, Block) {
	if _, ok := d.siblingList(parentID); !ok {
		return d, Block{}
	}
	nd := d.clone()
	now := Clock()
	b := Block{
		ID:       newBlockID(),
		Type:     typ,
		Data:     data.Clone(),
		ParentID: parentID,
		Meta:     Meta{CreatedAt: now, UpdatedAt: now, Version: 1},
	}
	nd.Blocks[b.ID] = b
	ids, _ := nd.siblingList(parentID)
	nd.setSiblingList(parentID, insertAt(ids, index, b.ID))
	nd = nd.touch(now)
	out, _ := GetBlock(nd, b.ID)
	return nd, out
}

// InsertBlockAfter inserts an already-built block into the sibling sequence
// immediately after afterId, inheriting afterId's parent. No-op if afterId
// is unresolved.
func InsertBlockAfter(d Document, block Block, afterID string) Document {
	after, ok := d.Blocks[afterID]
	if !ok {
		return d
	}
	return insertRelative(d, block, after, 1)
}

// InsertBlockBefore is the mirror of InsertBlockAfter.
func InsertBlockBefore(d Document, block Block, beforeID string) Document {
	before, ok := d.Blocks[beforeID]
	if !ok {
		return d
	}
	return insertRelative(d, block, before, 0)
}

// InsertBlockAt inserts block, preserving its id, data and metadata,
// directly under parentID (root when "") at index. Unlike CreateBlock this
// never allocates a new id: it exists for the Operation Log to replay a
// captured block (e.g. undoing a delete) at its original position. No-op
// if parentID is non-empty and unresolved.
func InsertBlockAt(d Document, block Block, parentID string, index int) Document {
	if _, ok := d.siblingList(parentID); !ok {
		return d
	}
	nd := d.clone()
	now := Clock()
	nb := block.clone()
	nb.ParentID = parentID
	nd.Blocks[nb.ID] = nb
	ids, _ := nd.siblingList(parentID)
	nd.setSiblingList(parentID, insertAt(ids, index, nb.ID))
	return nd.touch(now)
}

func insertRelative(d Document, block Block, anchor Block, offset int) Document {
	nd := d.clone()
	now := Clock()
	block = block.clone()
	block.ParentID = anchor.ParentID
	if block.Meta.CreatedAt == 0 {
		block.Meta = Meta{CreatedAt: now, UpdatedAt: now, Version: 1}
	}
	nd.Blocks[block.ID] = block
	ids, _ := nd.siblingList(anchor.ParentID)
	i := indexOf(ids, anchor.ID)
	nd.setSiblingList(anchor.ParentID, insertAt(ids, i+offset, block.ID))
	return nd.touch(now)
}

// UpdateBlock merges partial into the block's data, bumping its version and
// the document's version (§4.1). No-op on an unresolved id.
func UpdateBlock(d Document, id string, partial Data) Document {
	b, ok := d.Blocks[id]
	if !ok {
		return d
	}
	nd := d.clone()
	now := Clock()
	nb := b.clone()
	if nb.Data == nil {
		nb.Data = Data{}
	}
	for k, v := range partial {
		nb.Data[k] = v
	}
	nb.Meta.UpdatedAt = now
	nb.Meta.Version++
	nd.Blocks[id] = nb
	return nd.touch(now)
}

// ChangeBlockType changes id's tag in place, preserving data and children.
// No-op on an unresolved id.
func ChangeBlockType(d Document, id string, newType Type) Document {
	b, ok := d.Blocks[id]
	if !ok {
		return d
	}
	nd := d.clone()
	now := Clock()
	nb := b.clone()
	nb.Type = newType
	nb.Meta.UpdatedAt = now
	nb.Meta.Version++
	nd.Blocks[id] = nb
	return nd.touch(now)
}

// DeleteBlock removes id and every descendant, detaching it from its
// parent/root list. If this would leave the document empty, a fresh empty
// paragraph is synthesized as the sole root block (§3.3.4). No-op on an
// unresolved id.
func DeleteBlock(d Document, id string) Document {
	b, ok := d.Blocks[id]
	if !ok {
		return d
	}
	nd := d.clone()
	now := Clock()

	var collect func(id string)
	toDelete := map[string]bool{}
	collect = func(id string) {
		toDelete[id] = true
		if blk, ok := nd.Blocks[id]; ok {
			for _, cid := range blk.ChildrenIDs {
				collect(cid)
			}
		}
	}
	collect(id)

	ids, _ := nd.siblingList(b.ParentID)
	if i := indexOf(ids, id); i >= 0 {
		nd.setSiblingList(b.ParentID, removeAt(ids, i))
	}
	for did := range toDelete {
		delete(nd.Blocks, did)
	}

	if len(nd.Blocks) == 0 {
		p := Block{
			ID:   newBlockID(),
			Type: Paragraph,
			Data: Data{"text": ""},
			Meta: Meta{CreatedAt: now, UpdatedAt: now, Version: 1},
		}
		nd.Blocks[p.ID] = p
		nd.RootIDs = []string{p.ID}
	}
	return nd.touch(now)
}

// MoveBlock relocates id (and its subtree) to become child index of
// newParentID (root when ""). No-op if newParentID is id itself or one of
// id's descendants, if newParentID is unresolved (and non-root), or if the
// move is to an identical position.
func MoveBlock(d Document, id, newParentID string, newIndex int) Document {
	b, ok := d.Blocks[id]
	if !ok {
		return d
	}
	if isSelfOrDescendant(d, id, newParentID) {
		return d
	}
	if _, ok := d.siblingList(newParentID); !ok {
		return d
	}

	oldIDs, _ := d.siblingList(b.ParentID)
	oldIndex := indexOf(oldIDs, id)
	if b.ParentID == newParentID {
		target := newIndex
		if target < 0 || target >= len(oldIDs) {
			target = len(oldIDs) - 1
		}
		if target == oldIndex {
			return d
		}
	}

	nd := d.clone()
	now := Clock()
	ids, _ := nd.siblingList(b.ParentID)
	if i := indexOf(ids, id); i >= 0 {
		nd.setSiblingList(b.ParentID, removeAt(ids, i))
	}
	nb := nd.Blocks[id]
	nb.ParentID = newParentID
	nd.Blocks[id] = nb

	destIDs, _ := nd.siblingList(newParentID)
	nd.setSiblingList(newParentID, insertAt(destIDs, newIndex, id))
	return nd.touch(now)
}

// IndentBlock moves id to become the last child of its previous sibling.
// No-op if id has no previous sibling.
func IndentBlock(d Document, id string) Document {
	prev, ok := GetPreviousSibling(d, id)
	if !ok {
		return d
	}
	return MoveBlock(d, id, prev.ID, len(prev.ChildrenIDs))
}

// OutdentBlock moves id to become the next sibling of its parent. No-op at
// root.
func OutdentBlock(d Document, id string) Document {
	b, ok := d.Blocks[id]
	if !ok || b.ParentID == "" {
		return d
	}
	parent, ok := d.Blocks[b.ParentID]
	if !ok {
		return d
	}
	grandParentIDs, _ := d.siblingList(parent.ParentID)
	parentIndex := indexOf(grandParentIDs, parent.ID)
	return MoveBlock(d, id, parent.ParentID, parentIndex+1)
}

// MergeBlocks appends source's text onto target's text, moves source's
// children to the end of target's children, and deletes source. Target's
// type is retained. No-op if either id is unresolved or either is atomic
// (§4.1: "merging atomic blocks is disallowed").
func MergeBlocks(d Document, sourceID, targetID string) Document {
	src, ok1 := d.Blocks[sourceID]
	tgt, ok2 := d.Blocks[targetID]
	if !ok1 || !ok2 || src.Type.Atomic() || tgt.Type.Atomic() {
		return d
	}
	nd := d.clone()
	now := Clock()
	ntgt := nd.Blocks[targetID].clone()
	if ntgt.Data == nil {
		ntgt.Data = Data{}
	}
	ntgt.Data["text"] = ntgt.Data.Text() + src.Data.Text()
	ntgt.ChildrenIDs = append(ntgt.ChildrenIDs, src.ChildrenIDs...)
	for _, cid := range src.ChildrenIDs {
		c := nd.Blocks[cid]
		c.ParentID = targetID
		nd.Blocks[cid] = c
	}
	ntgt.Meta.UpdatedAt = now
	ntgt.Meta.Version++
	nd.Blocks[targetID] = ntgt

	srcIDs, _ := nd.siblingList(src.ParentID)
	if i := indexOf(srcIDs, sourceID); i >= 0 {
		nd.setSiblingList(src.ParentID, removeAt(srcIDs, i))
	}
	delete(nd.Blocks, sourceID)
	return nd.touch(now)
}

// SplitBlock truncates id's text at offset (clamped to [0, len(text)] in
// runes, i.e. Unicode code points) and creates a new paragraph holding the remainder as
// the immediate next sibling. Children stay with the original block.
// No-op on an unresolved or atomic id.
func SplitBlock(d Document, id string, offset int) (Document, Block) {
	b, ok := d.Blocks[id]
	if !ok || b.Type.Atomic() {
		return d, Block{}
	}
	text := b.Data.Text()
	units := []rune(text)
	if offset < 0 {
		offset = 0
	}
	if offset > len(units) {
		offset = len(units)
	}
	head := string(units[:offset])
	tail := string(units[offset:])

	nd := d.clone()
	now := Clock()
	nb := nd.Blocks[id].clone()
	if nb.Data == nil {
		nb.Data = Data{}
	}
	nb.Data["text"] = head
	nb.Meta.UpdatedAt = now
	nb.Meta.Version++
	nd.Blocks[id] = nb

	newBlock := Block{
		ID:       newBlockID(),
		Type:     Paragraph,
		Data:     Data{"text": tail},
		ParentID: b.ParentID,
		Meta:     Meta{CreatedAt: now, UpdatedAt: now, Version: 1},
	}
	nd.Blocks[newBlock.ID] = newBlock
	ids, _ := nd.siblingList(b.ParentID)
	i := indexOf(ids, id)
	nd.setSiblingList(b.ParentID, insertAt(ids, i+1, newBlock.ID))
	nd = nd.touch(now)
	out, _ := GetBlock(nd, newBlock.ID)
	return nd, out
}

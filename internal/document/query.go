package document

// GetBlock returns a defensive copy of the block with id and whether it
// exists. Callers may not mutate a Document through the returned value
// (§3.2): Data and ChildrenIDs are cloned so they share no backing storage
// with the document.
func GetBlock(d Document, id string) (Block, bool) {
	b, ok := d.Blocks[id]
	if !ok {
		return Block{}, false
	}
	return b.clone(), true
}

// GetRootBlocks returns the top-level blocks in document order.
func GetRootBlocks(d Document) []Block {
	out := make([]Block, 0, len(d.RootIDs))
	for _, id := range d.RootIDs {
		if b, ok := GetBlock(d, id); ok {
			out = append(out, b)
		}
	}
	return out
}

// GetChildren returns id's children in order, or nil if id is unresolved.
func GetChildren(d Document, id string) []Block {
	b, ok := d.Blocks[id]
	if !ok {
		return nil
	}
	out := make([]Block, 0, len(b.ChildrenIDs))
	for _, cid := range b.ChildrenIDs {
		if c, ok := GetBlock(d, cid); ok {
			out = append(out, c)
		}
	}
	return out
}

// GetParent returns id's parent block, or (Block{}, false) at the root or
// for an unresolved id.
func GetParent(d Document, id string) (Block, bool) {
	b, ok := d.Blocks[id]
	if !ok || b.ParentID == "" {
		return Block{}, false
	}
	return GetBlock(d, b.ParentID)
}

// GetAncestors returns id's ancestors, nearest first, root-ward.
func GetAncestors(d Document, id string) []Block {
	var out []Block
	cur, ok := d.Blocks[id]
	if !ok {
		return nil
	}
	for cur.ParentID != "" {
		p, found := GetBlock(d, cur.ParentID)
		if !found {
			break
		}
		out = append(out, p)
		cur = p
	}
	return out
}

// GetDescendants returns all descendants of id in depth-first pre-order.
func GetDescendants(d Document, id string) []Block {
	b, ok := d.Blocks[id]
	if !ok {
		return nil
	}
	var out []Block
	var walk func(ids []string)
	walk = func(ids []string) {
		for _, cid := range ids {
			c, ok := GetBlock(d, cid)
			if !ok {
				continue
			}
			out = append(out, c)
			walk(d.Blocks[cid].ChildrenIDs)
		}
	}
	walk(b.ChildrenIDs)
	return out
}

// GetSiblings returns every block sharing id's parent, including id itself,
// in order.
func GetSiblings(d Document, id string) []Block {
	b, ok := d.Blocks[id]
	if !ok {
		return nil
	}
	ids, _ := d.siblingList(b.ParentID)
	out := make([]Block, 0, len(ids))
	for _, sid := range ids {
		if s, ok := GetBlock(d, sid); ok {
			out = append(out, s)
		}
	}
	return out
}

// GetBlockIndex returns id's position within its sibling list, or -1.
func GetBlockIndex(d Document, id string) int {
	b, ok := d.Blocks[id]
	if !ok {
		return -1
	}
	ids, _ := d.siblingList(b.ParentID)
	return indexOf(ids, id)
}

// GetPreviousSibling returns the block immediately before id in its
// sibling list, or (Block{}, false) if id is first or unresolved.
func GetPreviousSibling(d Document, id string) (Block, bool) {
	b, ok := d.Blocks[id]
	if !ok {
		return Block{}, false
	}
	ids, _ := d.siblingList(b.ParentID)
	i := indexOf(ids, id)
	if i <= 0 {
		return Block{}, false
	}
	return GetBlock(d, ids[i-1])
}

// GetNextSibling returns the block immediately after id in its sibling
// list, or (Block{}, false) if id is last or unresolved.
func GetNextSibling(d Document, id string) (Block, bool) {
	b, ok := d.Blocks[id]
	if !ok {
		return Block{}, false
	}
	ids, _ := d.siblingList(b.ParentID)
	i := indexOf(ids, id)
	if i < 0 || i >= len(ids)-1 {
		return Block{}, false
	}
	return GetBlock(d, ids[i+1])
}

// GetFlattenedBlocks returns every block in depth-first pre-order: the
// order blocks appear on screen. Every id in Blocks appears exactly once.
func GetFlattenedBlocks(d Document) []Block {
	out := make([]Block, 0, len(d.Blocks))
	var walk func(ids []string)
	walk = func(ids []string) {
		for _, id := range ids {
			b, ok := GetBlock(d, id)
			if !ok {
				continue
			}
			out = append(out, b)
			walk(d.Blocks[id].ChildrenIDs)
		}
	}
	walk(d.RootIDs)
	return out
}

// isSelfOrDescendant reports whether id equals ancestorID or is one of its
// descendants.
func isSelfOrDescendant(d Document, ancestorID, id string) bool {
	if ancestorID == id {
		return true
	}
	b, ok := d.Blocks[ancestorID]
	if !ok {
		return false
	}
	for _, cid := range b.ChildrenIDs {
		if isSelfOrDescendant(d, cid, id) {
			return true
		}
	}
	return false
}

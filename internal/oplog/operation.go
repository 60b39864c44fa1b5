// Package oplog implements typed, invertible operations over a
// document.Document and the transactions that group them (§4.2).
package oplog

import (
	"github.com/cosmic-gao/nexo-sub000/internal/document"
)

// Tag identifies an operation's shape, matching the table in spec §4.2.
type Tag string

const (
	InsertBlock  Tag = "insert_block"
	DeleteBlock  Tag = "delete_block"
	MoveBlock    Tag = "move_block"
	SetBlockType Tag = "set_block_type"
	SetBlockData Tag = "set_block_data"
)

// Operation is a tagged value carrying enough payload to apply forward and,
// once applied, to build its own inverse. Capture fields (OldParentID,
// OldIndex, OldType, OldValue, Subtree) are populated by Apply, not by the
// operation's author — callers construct an Operation with only the
// "what to do" fields set.
type Operation struct {
	Tag Tag

	// insert_block / delete_block
	Block    document.Block // insert_block: block to insert. delete_block (post-apply): captured subtree root.
	ParentID string
	Index    int
	BlockID  string // delete_block / move_block / set_block_type / set_block_data target

	// delete_block capture: every descendant removed, in the order needed to
	// reinsert depth-first under their re-created parents.
	Subtree []CapturedBlock

	// move_block
	NewParentID string
	NewIndex    int
	OldParentID string
	OldIndex    int

	// set_block_type
	NewType document.Type
	OldType document.Type

	// set_block_data
	Path     string
	Value    any
	OldValue any
}

// CapturedBlock pairs a deleted block with the index it held in its parent,
// so delete_block can be inverted by reinserting in original order.
type CapturedBlock struct {
	Block document.Block
	Index int
}

// Apply runs op against d, returning the resulting document and an
// operation carrying whatever "old" fields are needed to invert it. Unknown
// tags and no-op targets (per document's own no-op rules, §7) pass through
// unchanged: Apply never errors, mirroring the Document Store's no-op
// philosophy.
func Apply(d document.Document, op Operation) (document.Document, Operation) {
	switch op.Tag {
	case InsertBlock:
		root := op.Block
		root.ChildrenIDs = nil
		nd := document.InsertBlockAt(d, root, op.ParentID, op.Index)
		for _, cb := range op.Subtree {
			b := cb.Block
			b.ChildrenIDs = nil
			nd = document.InsertBlockAt(nd, b, b.ParentID, cb.Index)
		}
		return nd, op

	case DeleteBlock:
		subtree := captureSubtree(d, op.BlockID)
		nd := document.DeleteBlock(d, op.BlockID)
		op.Subtree = subtree
		if b, ok := document.GetBlock(d, op.BlockID); ok {
			op.Block = b
			op.ParentID = b.ParentID
			op.Index = document.GetBlockIndex(d, op.BlockID)
		}
		return nd, op

	case MoveBlock:
		if b, ok := document.GetBlock(d, op.BlockID); ok {
			op.OldParentID = b.ParentID
			op.OldIndex = document.GetBlockIndex(d, op.BlockID)
		}
		nd := document.MoveBlock(d, op.BlockID, op.NewParentID, op.NewIndex)
		return nd, op

	case SetBlockType:
		if b, ok := document.GetBlock(d, op.BlockID); ok {
			op.OldType = b.Type
		}
		nd := document.ChangeBlockType(d, op.BlockID, op.NewType)
		return nd, op

	case SetBlockData:
		if b, ok := document.GetBlock(d, op.BlockID); ok {
			op.OldValue = b.Data[op.Path]
		}
		nd := document.UpdateBlock(d, op.BlockID, document.Data{op.Path: op.Value})
		return nd, op

	default:
		return d, op
	}
}

// Invert returns the operation that undoes op, given op already carries its
// captured "old" fields (i.e. it is the value Apply returned).
func Invert(op Operation) Operation {
	switch op.Tag {
	case InsertBlock:
		return Operation{Tag: DeleteBlock, BlockID: op.Block.ID}

	case DeleteBlock:
		return Operation{Tag: InsertBlock, Block: op.Block, ParentID: op.ParentID, Index: op.Index, Subtree: op.Subtree}

	case MoveBlock:
		return Operation{Tag: MoveBlock, BlockID: op.BlockID, NewParentID: op.OldParentID, NewIndex: op.OldIndex}

	case SetBlockType:
		return Operation{Tag: SetBlockType, BlockID: op.BlockID, NewType: op.OldType}

	case SetBlockData:
		return Operation{Tag: SetBlockData, BlockID: op.BlockID, Path: op.Path, Value: op.OldValue}

	default:
		return op
	}
}

// captureSubtree records every descendant of id (not id itself) along with
// its index in its parent, depth-first, so a later delete_block inverse can
// restore the whole subtree in one InsertBlock replay plus children re-attach.
func captureSubtree(d document.Document, id string) []CapturedBlock {
	var out []CapturedBlock
	for _, b := range document.GetDescendants(d, id) {
		out = append(out, CapturedBlock{Block: b, Index: document.GetBlockIndex(d, b.ID)})
	}
	return out
}

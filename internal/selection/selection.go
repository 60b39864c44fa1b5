// Package selection implements the abstract, DOM-independent selection
// value and algebra of spec §4.5: caret / text-range / cross-block /
// block-set / none, plus the IsCollapsed, IsBlockSelected, Equal and Valid
// queries (Valid checks against a document.Document). It provides no
// collapse or extend transforms.
package selection

import "github.com/cosmic-gao/nexo-sub000/internal/document"

// Kind tags which variant a Selection holds.
type Kind string

const (
	None       Kind = "none"
	Caret      Kind = "caret"
	TextRange  Kind = "text_range"
	CrossBlock Kind = "cross_block"
	BlockSet   Kind = "block_set"
)

// Selection is a single abstract selection value. Only the fields relevant
// to Kind are meaningful; the others are zero. Two selections compare equal
// only when Kind and every endpoint match (§4.5) — use Equal, not struct
// comparison with maps/slices inline since BlockIDs/Blocks are slices.
type Selection struct {
	Kind Kind

	// caret
	BlockID string
	Offset  int

	// text_range / cross_block
	AnchorBlockID string
	AnchorOffset  int
	FocusBlockID  string
	FocusOffset   int
	IsForward     bool
	Blocks        []string // cross_block: ids fully contained between anchor and focus, in order

	// block_set
	BlockIDs []string
}

// NewCaret returns a Caret selection at blockID:offset.
func NewCaret(blockID string, offset int) Selection {
	return Selection{Kind: Caret, BlockID: blockID, Offset: offset}
}

// NewNone returns the empty selection.
func NewNone() Selection { return Selection{Kind: None} }

// NewTextRange returns a same-block range selection.
func NewTextRange(blockID string, anchorOffset, focusOffset int) Selection {
	forward := focusOffset >= anchorOffset
	return Selection{
		Kind: TextRange, AnchorBlockID: blockID, AnchorOffset: anchorOffset,
		FocusBlockID: blockID, FocusOffset: focusOffset, IsForward: forward,
	}
}

// NewCrossBlock returns a selection spanning multiple blocks. contained is
// the ordered list of block ids fully enclosed between anchor and focus,
// excluding the anchor/focus blocks themselves.
func NewCrossBlock(anchorBlockID string, anchorOffset int, focusBlockID string, focusOffset int, forward bool, contained []string) Selection {
	return Selection{
		Kind: CrossBlock, AnchorBlockID: anchorBlockID, AnchorOffset: anchorOffset,
		FocusBlockID: focusBlockID, FocusOffset: focusOffset, IsForward: forward,
		Blocks: append([]string(nil), contained...),
	}
}

// NewBlockSet returns a multi-block structural selection.
func NewBlockSet(ids []string) Selection {
	return Selection{Kind: BlockSet, BlockIDs: append([]string(nil), ids...)}
}

// IsCollapsed reports whether the selection is a zero-width insertion
// point: true for Caret, and for a TextRange/CrossBlock whose anchor and
// focus coincide.
func (s Selection) IsCollapsed() bool {
	switch s.Kind {
	case Caret:
		return true
	case TextRange:
		return s.AnchorBlockID == s.FocusBlockID && s.AnchorOffset == s.FocusOffset
	case CrossBlock:
		return false // spans at least two distinct blocks by construction
	default:
		return false
	}
}

// IsBlockSelected reports whether id is a member of a BlockSet selection.
func (s Selection) IsBlockSelected(id string) bool {
	if s.Kind != BlockSet {
		return false
	}
	for _, b := range s.BlockIDs {
		if b == id {
			return true
		}
	}
	return false
}

// Equal reports field-for-field equality, including Kind and all slice
// endpoints. Setting a selection to an Equal value is a no-op for the
// purpose of suppressing selection:changed (§4.5).
func (s Selection) Equal(o Selection) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case None:
		return true
	case Caret:
		return s.BlockID == o.BlockID && s.Offset == o.Offset
	case TextRange:
		return s.AnchorBlockID == o.AnchorBlockID && s.AnchorOffset == o.AnchorOffset &&
			s.FocusBlockID == o.FocusBlockID && s.FocusOffset == o.FocusOffset && s.IsForward == o.IsForward
	case CrossBlock:
		if s.AnchorBlockID != o.AnchorBlockID || s.AnchorOffset != o.AnchorOffset ||
			s.FocusBlockID != o.FocusBlockID || s.FocusOffset != o.FocusOffset || s.IsForward != o.IsForward {
			return false
		}
		return stringsEqual(s.Blocks, o.Blocks)
	case BlockSet:
		return stringsEqual(s.BlockIDs, o.BlockIDs)
	default:
		return false
	}
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Valid reports whether every blockId referenced by s resolves in doc and
// every offset lies in [0, len(text)] of its block (§3.5).
func Valid(s Selection, doc document.Document) bool {
	checkCaret := func(blockID string, offset int) bool {
		b, ok := document.GetBlock(doc, blockID)
		if !ok {
			return false
		}
		n := len([]rune(b.Data.Text()))
		return offset >= 0 && offset <= n
	}
	switch s.Kind {
	case None:
		return true
	case Caret:
		return checkCaret(s.BlockID, s.Offset)
	case TextRange:
		return checkCaret(s.AnchorBlockID, s.AnchorOffset) && checkCaret(s.FocusBlockID, s.FocusOffset)
	case CrossBlock:
		if !checkCaret(s.AnchorBlockID, s.AnchorOffset) || !checkCaret(s.FocusBlockID, s.FocusOffset) {
			return false
		}
		for _, id := range s.Blocks {
			if _, ok := document.GetBlock(doc, id); !ok {
				return false
			}
		}
		return true
	case BlockSet:
		for _, id := range s.BlockIDs {
			if _, ok := document.GetBlock(doc, id); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

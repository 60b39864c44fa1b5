// Package document implements the block-tree data model: an immutable,
// value-oriented forest of typed blocks plus the pure structural operations
// that keep its parent/child invariants intact.
package document

import "github.com/google/uuid"

// Type is the closed set of block tags. Implementations may extend it
// through blocktype.Registry; the store itself only special-cases the
// behaviors called out below (atomic vs. container vs. checkable).
type Type string

const (
	Paragraph    Type = "paragraph"
	Heading1     Type = "heading1"
	Heading2     Type = "heading2"
	Heading3     Type = "heading3"
	BulletList   Type = "bulletList"
	NumberedList Type = "numberedList"
	TodoList     Type = "todoList"
	Quote        Type = "quote"
	Code         Type = "code"
	Divider      Type = "divider"
	Image        Type = "image"
)

// Atomic block types hold no editable text and cannot be merged into.
func (t Type) Atomic() bool {
	switch t {
	case Divider, Image:
		return true
	default:
		return false
	}
}

// Data is the open, type-specific payload of a block. Recognized keys:
// "text" (string), "checked" (bool, todoList), "language" (string, code),
// "url"/"alt" (string, image). Unrecognized keys are preserved verbatim so
// extended block types (blocktype.Registry) can carry their own fields.
type Data map[string]any

// Clone returns a shallow copy safe to hand to a new Block. Values in Data
// are themselves treated as immutable once stored.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Text returns the "text" field, or "" if absent.
func (d Data) Text() string {
	if s, ok := d["text"].(string); ok {
		return s
	}
	return ""
}

// Checked returns the "checked" field, or false if absent.
func (d Data) Checked() bool {
	b, _ := d["checked"].(bool)
	return b
}

// Meta carries block/document lifecycle bookkeeping. Version is advisory on
// the wire (§6) but authoritative in-process: it is the cache/undo
// invalidation key.
type Meta struct {
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
	Version   int64 `json:"version"`
}

// Block is one node of the document forest. Block values are frozen
// snapshots: callers must never mutate a Block obtained from a Document,
// only derive a new one through the Store operations in this package.
type Block struct {
	ID         string   `json:"id"`
	Type       Type     `json:"type"`
	Data       Data     `json:"data"`
	ParentID   string   `json:"parentId,omitempty"`
	ChildrenIDs []string `json:"childrenIds"`
	Meta       Meta     `json:"meta"`
}

// clone returns a deep-enough copy for safe storage in a new Document
// snapshot: Data is copied, ChildrenIDs is copied, nothing is shared with
// the original beyond immutable leaf values.
func (b Block) clone() Block {
	nb := b
	nb.Data = b.Data.Clone()
	if b.ChildrenIDs != nil {
		nb.ChildrenIDs = append([]string(nil), b.ChildrenIDs...)
	}
	return nb
}

// newBlockID allocates a fresh, collision-free block id (§3.3.5).
func newBlockID() string {
	return "blk_" + uuid.NewString()
}

// Package editor implements the Embedding API of spec §6: Controller is the
// single facade hosts hold, wiring the Command Engine, the Event Bus, the
// Compiler, and the abstract Selection together. Shaped after the
// teacher's own App — an embedding root combining several owned
// subsystems behind functional options — in app.go.
package editor

import (
	"encoding/json"
	"log/slog"
	"sync"

	"golang.org/x/net/html"

	"github.com/cosmic-gao/nexo-sub000/internal/command"
	"github.com/cosmic-gao/nexo-sub000/internal/compiler"
	"github.com/cosmic-gao/nexo-sub000/internal/document"
	"github.com/cosmic-gao/nexo-sub000/internal/eventbus"
	"github.com/cosmic-gao/nexo-sub000/internal/oplog"
	"github.com/cosmic-gao/nexo-sub000/internal/selection"
)

const defaultMaxHistory = 100

// Controller is the embedding root described in spec §6. The zero value is
// not usable; use New.
type Controller struct {
	mu         sync.Mutex
	eng        *command.Engine
	bus        *eventbus.Bus
	cmp        *compiler.Compiler
	sel        selection.Selection
	log        *slog.Logger
	maxHistory int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger. Defaults to slog.Default(),
// following the teacher's app.go convention.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMaxHistory bounds the undo/redo stacks (§4.3, default 100).
func WithMaxHistory(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxHistory = n
		}
	}
}

// WithCompiler installs a pre-configured Compiler (e.g. with windowing
// enabled) instead of the default one.
func WithCompiler(cmp *compiler.Compiler) Option {
	return func(c *Controller) { c.cmp = cmp }
}

// New creates a Controller. initialDocument seeds the document store; a
// fresh single-paragraph document is used if it is the zero value (§6:
// "EditorController.create({initialDocument?, maxHistory?})").
func New(initialDocument document.Document, opts ...Option) *Controller {
	c := &Controller{
		bus:        eventbus.New(),
		cmp:        compiler.New(),
		sel:        selection.NewNone(),
		log:        slog.Default(),
		maxHistory: defaultMaxHistory,
	}
	for _, o := range opts {
		o(c)
	}
	if initialDocument.Blocks == nil {
		initialDocument = document.New("doc", document.Clock())
	}
	c.eng = command.New(initialDocument, command.WithMaxHistory(c.maxHistory))
	return c
}

// Init attaches the controller's compiler to a live container, wiring it to
// the event bus so document mutations schedule renders (§4.9 init).
func (c *Controller) Init(container *html.Node) {
	c.cmp.Init(container, c.bus)
}

// Compiler exposes the owned Compiler for plugins and the input handlers
// (§6 Plugin interface: "compiler.getContainer, compiler.getBlockElement").
func (c *Controller) Compiler() *compiler.Compiler { return c.cmp }

// --- Document ops ---

// GetDocument returns the current document snapshot.
func (c *Controller) GetDocument() document.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.Document()
}

// GetBlock returns a single block by id.
func (c *Controller) GetBlock(id string) (document.Block, bool) {
	return document.GetBlock(c.GetDocument(), id)
}

// GetBlocks returns every block in the document, depth-first pre-order.
func (c *Controller) GetBlocks() []document.Block {
	return document.GetFlattenedBlocks(c.GetDocument())
}

// CreateBlock inserts a new block of typ after afterID (appended to root
// when afterID == ""), recorded as an undoable transaction.
func (c *Controller) CreateBlock(typ document.Type, data document.Data, afterID string) (document.Block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc := c.eng.Document()
	parentID, index := "", -1
	if afterID != "" {
		after, ok := document.GetBlock(doc, afterID)
		if !ok {
			return document.Block{}, false
		}
		parentID = after.ParentID
		index = document.GetBlockIndex(doc, afterID) + 1
	}

	// document.CreateBlock is used once, off to the side, purely to
	// allocate a fresh block id/metadata; the operation log is what
	// actually mutates c.eng's document.
	_, created := document.CreateBlock(doc, typ, data, parentID, index)
	if created.ID == "" {
		return document.Block{}, false
	}

	nd, _ := c.eng.Execute(oplog.NewTransaction("create block", oplog.Operation{
		Tag: oplog.InsertBlock, Block: created, ParentID: parentID, Index: index,
	}))
	c.afterMutation(nd, eventbus.BlockCreated, created.ID)
	return created, true
}

// UpdateBlock merges partial into id's data as an undoable transaction
// (§6 updateBlock).
func (c *Controller) UpdateBlock(id string, partial document.Data) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := c.eng.Document()
	if _, ok := document.GetBlock(doc, id); !ok {
		return
	}
	var ops []oplog.Operation
	for k, v := range partial {
		ops = append(ops, oplog.Operation{
			Tag: oplog.SetBlockData, BlockID: id, Path: k, Value: v,
		})
	}
	if len(ops) > 0 {
		doc, _ = c.eng.Execute(oplog.NewTransaction("update block", ops...))
	}
	c.afterMutation(doc, eventbus.BlockUpdated, id)
}

// UpdateBlockDirect merges partial into id's data without recording
// history (§6 updateBlockDirect) — used by the input handler's per-
// keystroke sync so every character typed isn't its own undo step.
func (c *Controller) UpdateBlockDirect(id string, partial document.Data) {
	c.mu.Lock()
	defer c.mu.Unlock()
	nd := document.UpdateBlock(c.eng.Document(), id, partial)
	c.eng.SetDocument(nd)
	c.afterMutation(nd, eventbus.BlockUpdated, id)
}

// DeleteBlock removes id as an undoable transaction.
func (c *Controller) DeleteBlock(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := document.GetBlock(c.eng.Document(), id); !ok {
		return
	}
	nd, _ := c.eng.Execute(oplog.NewTransaction("delete block", oplog.Operation{
		Tag: oplog.DeleteBlock, BlockID: id,
	}))
	c.afterMutation(nd, eventbus.BlockDeleted, id)
}

// ChangeBlockType retags id as an undoable transaction.
func (c *Controller) ChangeBlockType(id string, newType document.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := document.GetBlock(c.eng.Document(), id); !ok {
		return
	}
	nd, _ := c.eng.Execute(oplog.NewTransaction("change block type", oplog.Operation{
		Tag: oplog.SetBlockType, BlockID: id, NewType: newType,
	}))
	c.afterMutation(nd, eventbus.BlockUpdated, id)
}

// MoveBlock relocates id as an undoable transaction.
func (c *Controller) MoveBlock(id, newParentID string, newIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := document.GetBlock(c.eng.Document(), id); !ok {
		return
	}
	nd, _ := c.eng.Execute(oplog.NewTransaction("move block", oplog.Operation{
		Tag: oplog.MoveBlock, BlockID: id, NewParentID: newParentID, NewIndex: newIndex,
	}))
	c.afterMutation(nd, eventbus.BlockMoved, id)
}

// MoveBlockRelative moves id immediately before or after targetID, within
// targetID's own parent (§6 moveBlockRelative).
func (c *Controller) MoveBlockRelative(id, targetID string, where Relation) {
	doc := c.GetDocument()
	target, ok := document.GetBlock(doc, targetID)
	if !ok {
		return
	}
	index := document.GetBlockIndex(doc, targetID)
	if where == After {
		index++
	}
	// document.MoveBlock inserts after removing id, so a block that sits
	// before the target in the same parent lands one slot earlier.
	if b, ok := document.GetBlock(doc, id); ok && b.ParentID == target.ParentID &&
		document.GetBlockIndex(doc, id) < document.GetBlockIndex(doc, targetID) {
		index--
	}
	c.MoveBlock(id, target.ParentID, index)
}

// Relation names the relative position for MoveBlockRelative.
type Relation string

const (
	Before Relation = "before"
	After  Relation = "after"
)

// SplitBlock splits id's text at offset into id (head) and a new sibling
// paragraph (tail), as a single undoable transaction.
func (c *Controller) SplitBlock(id string, offset int) (document.Block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := c.eng.Document()
	b, ok := document.GetBlock(doc, id)
	if !ok || b.Type.Atomic() {
		return document.Block{}, false
	}
	text := []rune(b.Data.Text())
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	head := string(text[:offset])

	_, newBlock := document.SplitBlock(doc, id, offset)

	t := oplog.NewTransaction("split block",
		oplog.Operation{Tag: oplog.SetBlockData, BlockID: id, Path: "text", Value: head},
		oplog.Operation{Tag: oplog.InsertBlock, Block: newBlock, ParentID: b.ParentID, Index: document.GetBlockIndex(doc, id) + 1},
	)
	nd, _ := c.eng.Execute(t)
	c.afterMutation(nd, eventbus.BlockUpdated, id)
	return newBlock, true
}

// IndentBlock moves id to become the last child of its previous sibling,
// as an undoable transaction (§4.10 Tab). No-op if id has no previous
// sibling.
func (c *Controller) IndentBlock(id string) {
	doc := c.GetDocument()
	prev, ok := document.GetPreviousSibling(doc, id)
	if !ok {
		return
	}
	c.MoveBlock(id, prev.ID, len(prev.ChildrenIDs))
}

// OutdentBlock moves id to become the next sibling of its parent, as an
// undoable transaction (§4.10 Shift-Tab). No-op at root.
func (c *Controller) OutdentBlock(id string) {
	doc := c.GetDocument()
	b, ok := document.GetBlock(doc, id)
	if !ok || b.ParentID == "" {
		return
	}
	parent, ok := document.GetBlock(doc, b.ParentID)
	if !ok {
		return
	}
	parentIndex := document.GetBlockIndex(doc, parent.ID)
	c.MoveBlock(id, parent.ParentID, parentIndex+1)
}

// MergeBlocks appends srcID's text and children onto dstID and deletes
// srcID, as a single undoable transaction (§6 mergeBlocks).
func (c *Controller) MergeBlocks(srcID, dstID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := c.eng.Document()
	src, ok1 := document.GetBlock(doc, srcID)
	dst, ok2 := document.GetBlock(doc, dstID)
	if !ok1 || !ok2 || src.Type.Atomic() || dst.Type.Atomic() {
		return false
	}
	merged := dst.Data.Text() + src.Data.Text()
	ops := []oplog.Operation{{Tag: oplog.SetBlockData, BlockID: dstID, Path: "text", Value: merged}}
	for _, cid := range src.ChildrenIDs {
		ops = append(ops, oplog.Operation{Tag: oplog.MoveBlock, BlockID: cid, NewParentID: dstID, NewIndex: -1})
	}
	ops = append(ops, oplog.Operation{Tag: oplog.DeleteBlock, BlockID: srcID})
	nd, _ := c.eng.Execute(oplog.NewTransaction("merge blocks", ops...))
	c.afterMutation(nd, eventbus.BlockDeleted, srcID)
	return true
}

// afterMutation bumps render scheduling for the resulting document and
// emits both the specific block event and document:changed (§4.4 data
// flow). Caller must hold c.mu.
func (c *Controller) afterMutation(doc document.Document, t eventbus.Type, blockID string) {
	c.bus.Emit(t, blockID, eventbus.SourceAPI)
	c.bus.Emit(eventbus.DocumentChanged, doc, eventbus.SourceAPI)
	c.cmp.ScheduleRender(doc)
}

// --- Selection ops ---

// GetSelection returns the controller's current abstract selection.
func (c *Controller) GetSelection() selection.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// SetSelection installs sel, emitting selection:changed unless it is
// Equal to the current value (§4.5).
func (c *Controller) SetSelection(sel selection.Selection) {
	c.mu.Lock()
	changed := !c.sel.Equal(sel)
	c.sel = sel
	doc := c.eng.Document()
	c.mu.Unlock()
	if !changed {
		return
	}
	if !selection.Valid(sel, doc) {
		return
	}
	c.bus.Emit(eventbus.SelectionChanged, sel, eventbus.SourceUser)
}

// SetCursor places a collapsed caret at blockID:offset.
func (c *Controller) SetCursor(blockID string, offset int) {
	c.SetSelection(selection.NewCaret(blockID, offset))
}

// SetCursorToStart places the caret at blockID's text start.
func (c *Controller) SetCursorToStart(blockID string) {
	c.SetCursor(blockID, 0)
}

// SetCursorToEnd places the caret at blockID's text end.
func (c *Controller) SetCursorToEnd(blockID string) {
	b, ok := c.GetBlock(blockID)
	if !ok {
		return
	}
	c.SetCursor(blockID, len([]rune(b.Data.Text())))
}

// IsAtBlockStart reports whether the current selection is a caret at
// offset 0 of blockID.
func (c *Controller) IsAtBlockStart(blockID string) bool {
	s := c.GetSelection()
	return s.Kind == selection.Caret && s.BlockID == blockID && s.Offset == 0
}

// IsAtBlockEnd reports whether the current selection is a caret at
// blockID's text end.
func (c *Controller) IsAtBlockEnd(blockID string) bool {
	s := c.GetSelection()
	if s.Kind != selection.Caret || s.BlockID != blockID {
		return false
	}
	b, ok := c.GetBlock(blockID)
	return ok && s.Offset == len([]rune(b.Data.Text()))
}

// GetCurrentBlockId returns the block id the current selection targets, if
// any (caret's BlockID, or a range/cross-block's FocusBlockID).
func (c *Controller) GetCurrentBlockId() (string, bool) {
	s := c.GetSelection()
	switch s.Kind {
	case selection.Caret:
		return s.BlockID, true
	case selection.TextRange, selection.CrossBlock:
		return s.FocusBlockID, true
	default:
		return "", false
	}
}

// --- History ops ---

// Undo reverts the most recent transaction (§6 undo).
func (c *Controller) Undo() bool {
	c.mu.Lock()
	nd, _, ok := c.eng.Undo()
	c.mu.Unlock()
	if !ok {
		return false
	}
	c.cmp.InvalidateHeights()
	c.bus.Emit(eventbus.CommandUndone, nd, eventbus.SourceHistory)
	c.bus.Emit(eventbus.DocumentChanged, nd, eventbus.SourceHistory)
	c.cmp.ScheduleRender(nd)
	return true
}

// Redo reapplies the most recently undone transaction (§6 redo).
func (c *Controller) Redo() bool {
	c.mu.Lock()
	nd, _, ok := c.eng.Redo()
	c.mu.Unlock()
	if !ok {
		return false
	}
	c.cmp.InvalidateHeights()
	c.bus.Emit(eventbus.CommandRedone, nd, eventbus.SourceHistory)
	c.bus.Emit(eventbus.DocumentChanged, nd, eventbus.SourceHistory)
	c.cmp.ScheduleRender(nd)
	return true
}

// CanUndo reports whether Undo would do anything.
func (c *Controller) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.CanUndo()
}

// CanRedo reports whether Redo would do anything.
func (c *Controller) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.CanRedo()
}

// --- Events ---

// On subscribes fn to events of type t, returning an unsubscribe func
// (§6 on/off).
func (c *Controller) On(t eventbus.Type, fn eventbus.Handler) func() {
	return c.bus.On(t, fn)
}

// Emit publishes an event from the given source.
func (c *Controller) Emit(t eventbus.Type, payload any, source eventbus.Source) {
	c.bus.Emit(t, payload, source)
}

// Bus exposes the owned event bus for components needing direct access
// (the compiler's Init, the live transport).
func (c *Controller) Bus() *eventbus.Bus { return c.bus }

// --- Serialization ---

// ToJSON serializes the current document (§6 toJSON).
func (c *Controller) ToJSON() ([]byte, error) {
	return json.Marshal(c.GetDocument())
}

// FromJSON replaces the current document with doc and clears history
// (§6 fromJSON: "clears history").
func (c *Controller) FromJSON(data []byte) error {
	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	c.mu.Lock()
	c.eng.Reset(doc)
	c.sel = selection.NewNone()
	c.mu.Unlock()
	c.cmp.InvalidateHeights()
	c.bus.Emit(eventbus.DocumentChanged, doc, eventbus.SourceAPI)
	c.cmp.ScheduleRender(doc)
	return nil
}

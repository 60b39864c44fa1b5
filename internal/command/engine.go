// Package command implements the bounded undo/redo history described in
// spec §4.3: two stacks of transactions driven by the operation log.
package command

import (
	"github.com/cosmic-gao/nexo-sub000/internal/document"
	"github.com/cosmic-gao/nexo-sub000/internal/oplog"
)

const defaultMaxHistory = 100

// Engine owns the current document and its past/future transaction stacks.
// Nothing here talks to the DOM or the event bus directly; editor.Controller
// emits command:undone/:redone on eventbus.Bus after Undo/Redo. No
// command:executed event is emitted after Execute.
type Engine struct {
	doc        document.Document
	past       []oplog.Transaction
	future     []oplog.Transaction
	maxHistory int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxHistory overrides the default bound of 100 entries per stack.
func WithMaxHistory(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxHistory = n
		}
	}
}

// New creates an Engine seeded with doc.
func New(doc document.Document, opts ...Option) *Engine {
	e := &Engine{doc: doc, maxHistory: defaultMaxHistory}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Document returns the current document snapshot.
func (e *Engine) Document() document.Document { return e.doc }

// SetDocument replaces the current document without touching history. Used
// by the direct-typing path (updateBlockDirect), which bypasses the log
// entirely; fromJSON uses Reset instead.
func (e *Engine) SetDocument(d document.Document) { e.doc = d }

// Reset replaces the document and clears both stacks, matching the
// fromJSON contract (§6).
func (e *Engine) Reset(d document.Document) {
	e.doc = d
	e.past = nil
	e.future = nil
}

// Execute applies t's operations to the current document, pushes the
// applied transaction onto past, and clears future (§4.3). It returns the
// new document and the applied transaction (with captured inverse data).
func (e *Engine) Execute(t oplog.Transaction) (document.Document, oplog.Transaction) {
	nd, applied := oplog.ApplyTransaction(e.doc, t)
	e.doc = nd
	e.future = nil
	e.past = append(e.past, applied)
	if len(e.past) > e.maxHistory {
		e.past = e.past[len(e.past)-e.maxHistory:]
	}
	return nd, applied
}

// Undo pops the most recent transaction from past, applies its inverse,
// and pushes the original onto future. ok is false if past is empty.
func (e *Engine) Undo() (doc document.Document, undone oplog.Transaction, ok bool) {
	if len(e.past) == 0 {
		return e.doc, oplog.Transaction{}, false
	}
	last := e.past[len(e.past)-1]
	e.past = e.past[:len(e.past)-1]

	inv := oplog.InvertTransaction(last)
	nd, _ := oplog.ApplyTransaction(e.doc, inv)
	e.doc = nd
	e.future = append(e.future, last)
	if len(e.future) > e.maxHistory {
		e.future = e.future[len(e.future)-e.maxHistory:]
	}
	return nd, last, true
}

// Redo pops the most recently undone transaction from future, reapplies
// it, and pushes it back onto past. ok is false if future is empty.
func (e *Engine) Redo() (doc document.Document, redone oplog.Transaction, ok bool) {
	if len(e.future) == 0 {
		return e.doc, oplog.Transaction{}, false
	}
	next := e.future[len(e.future)-1]
	e.future = e.future[:len(e.future)-1]

	nd, applied := oplog.ApplyTransaction(e.doc, next)
	e.doc = nd
	e.past = append(e.past, applied)
	if len(e.past) > e.maxHistory {
		e.past = e.past[len(e.past)-e.maxHistory:]
	}
	return nd, applied, true
}

// CanUndo reports whether Undo would do anything.
func (e *Engine) CanUndo() bool { return len(e.past) > 0 }

// CanRedo reports whether Redo would do anything.
func (e *Engine) CanRedo() bool { return len(e.future) > 0 }

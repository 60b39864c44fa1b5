// Package rendercache implements the Dirty Tracker and Render Cache of
// spec §4.8: per-block dirty reasons derived from document mutations, and
// a bounded LRU memoizing the virtual node synthesized for each block
// version. The Set/Get/Delete/Count shape is generalized from the
// teacher's view/live/store_test.go MemoryStore, trading session ids for
// block ids and adding version-keyed invalidation and LRU eviction.
package rendercache

import "sync"

// Reason names why a block was marked dirty (§4.8).
type Reason string

const (
	ReasonCreated        Reason = "created"
	ReasonUpdated        Reason = "updated"
	ReasonDeleted        Reason = "deleted"
	ReasonMoved          Reason = "moved"
	ReasonTypeChanged    Reason = "type_changed"
	ReasonChildrenChanged Reason = "children_changed"
	ReasonParentChanged  Reason = "parent_changed"
)

// Tracker records which blocks need re-synthesis and why.
type Tracker struct {
	mu      sync.Mutex
	reasons map[string]map[Reason]bool
	deleted map[string]bool
	subs    []func(id string, reason Reason)
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		reasons: make(map[string]map[Reason]bool),
		deleted: make(map[string]bool),
	}
}

// Mark records reason against id and notifies subscribers.
func (t *Tracker) Mark(id string, reason Reason) {
	t.mu.Lock()
	if _, ok := t.reasons[id]; !ok {
		t.reasons[id] = make(map[Reason]bool)
	}
	t.reasons[id][reason] = true
	if reason == ReasonDeleted {
		t.deleted[id] = true
	}
	subs := append([]func(string, Reason)(nil), t.subs...)
	t.mu.Unlock()

	for _, fn := range subs {
		fn(id, reason)
	}
}

// IsDirty reports whether id has any recorded reason since the last Clear.
func (t *Tracker) IsDirty(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.reasons[id]) > 0
}

// Reasons returns the set of reasons recorded against id.
func (t *Tracker) Reasons(id string) []Reason {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := t.reasons[id]
	out := make([]Reason, 0, len(m))
	for r := range m {
		out = append(out, r)
	}
	return out
}

// Deleted reports whether id was marked deleted since the last Clear.
func (t *Tracker) Deleted(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deleted[id]
}

// DirtyIDs returns every block id with at least one recorded reason.
func (t *Tracker) DirtyIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.reasons))
	for id := range t.reasons {
		ids = append(ids, id)
	}
	return ids
}

// Clear resets all recorded dirty state (§4.9 step 5: cleared after render).
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reasons = make(map[string]map[Reason]bool)
	t.deleted = make(map[string]bool)
}

// Subscribe registers fn to be called on every Mark. It returns no
// unsubscribe handle: the Compiler owns a Tracker for its own lifetime.
func (t *Tracker) Subscribe(fn func(id string, reason Reason)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, fn)
}

package vdom

// PatchOp names the kind of mutation a Patch describes (§4.7).
type PatchOp int

const (
	OpCreate PatchOp = iota
	OpRemove
	OpReplace
	OpUpdate
	OpReorder
)

// PropChange describes one property transition carried by an OpUpdate
// patch (add: Old absent, remove: New absent, update: both present).
type PropChange struct {
	Key string
	Old any
	New any
}

// Patch is one instruction in the list Diff produces. Index addresses
// where in the parent's children this patch applies (used by ApplyPatches
// to locate the corresponding live child without re-walking by identity).
type Patch struct {
	Op       PatchOp
	Index    int
	Node     Node         // CREATE / REPLACE: the new node to materialize
	Props    []PropChange // UPDATE: prop diff
	Children []Patch      // UPDATE: patches for this element's children, already index-resolved
	FromIdx  []int        // REORDER: new order expressed as old indices, len == len(new children)
}

// Diff produces the minimal patch list transforming old into nw, per the
// six rules of §4.7.
func Diff(old, nw Node) []Patch {
	old, nw = expand(old), expand(nw)

	if old.Kind == KindNull && nw.Kind == KindNull {
		return nil // rule 1
	}
	if old.Kind == KindNull {
		return []Patch{{Op: OpCreate, Node: nw}} // rule 2
	}
	if nw.Kind == KindNull {
		return []Patch{{Op: OpRemove}} // rule 3
	}
	if !sameType(old, nw) {
		return []Patch{{Op: OpReplace, Node: nw}} // rule 4
	}

	switch old.Kind {
	case KindText:
		if old.Text != nw.Text {
			return []Patch{{Op: OpReplace, Node: nw}}
		}
		return nil
	case KindElement:
		props := diffProps(old.Props, nw.Props)
		children, reorder := diffChildren(old.Children, nw.Children)
		if len(props) == 0 && len(children) == 0 && reorder == nil {
			return nil
		}
		p := Patch{Op: OpUpdate, Props: props, Children: children}
		if reorder != nil {
			p.FromIdx = reorder
		}
		return []Patch{p}
	default:
		return nil
	}
}

// diffProps computes additions/removals/updates, ignoring "children" and
// "key" (§4.7 rule 5).
func diffProps(old, nw map[string]any) []PropChange {
	var changes []PropChange
	for k, ov := range old {
		if k == "children" || k == "key" {
			continue
		}
		if nv, ok := nw[k]; ok {
			if !equalProp(ov, nv) {
				changes = append(changes, PropChange{Key: k, Old: ov, New: nv})
			}
		} else {
			changes = append(changes, PropChange{Key: k, Old: ov, New: nil})
		}
	}
	for k, nv := range nw {
		if k == "children" || k == "key" {
			continue
		}
		if _, ok := old[k]; !ok {
			changes = append(changes, PropChange{Key: k, Old: nil, New: nv})
		}
	}
	return changes
}

func equalProp(a, b any) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	ab, aok := a.(bool)
	bb, bok := b.(bool)
	if aok && bok {
		return ab == bb
	}
	return a == b
}

// diffChildren implements rule 6: keyed matching first, then positional
// pairing for unkeyed children, recursive diff per pair, then REMOVE for
// unmatched old children. Returns patches indexed by new-child position
// (REMOVE patches by old-child position) plus an optional reorder map.
func diffChildren(oldChildren, newChildren []Node) ([]Patch, []int) {
	keyOf := func(n Node) (string, bool) {
		if n.Key != "" {
			return n.Key, true
		}
		return "", false
	}

	type keyedOld struct {
		node Node
		idx  int
	}
	keyed := make(map[string]keyedOld)
	var unkeyedOld []int
	for i, c := range oldChildren {
		if k, ok := keyOf(c); ok {
			keyed[k] = keyedOld{node: c, idx: i}
		} else {
			unkeyedOld = append(unkeyedOld, i)
		}
	}

	var patches []Patch
	matchedOld := make(map[int]bool)
	fromIdx := make([]int, len(newChildren))
	needsReorder := false
	unkeyedCursor := 0

	for i, nc := range newChildren {
		var pairedIdx int = -1
		if k, ok := keyOf(nc); ok {
			if ko, found := keyed[k]; found {
				pairedIdx = ko.idx
				delete(keyed, k)
			}
		} else if unkeyedCursor < len(unkeyedOld) {
			pairedIdx = unkeyedOld[unkeyedCursor]
			unkeyedCursor++
		}

		if pairedIdx == -1 {
			patches = append(patches, indexed(i, Patch{Op: OpCreate, Node: nc})...)
			fromIdx[i] = -1
			needsReorder = true
			continue
		}
		matchedOld[pairedIdx] = true
		fromIdx[i] = pairedIdx
		if pairedIdx != i {
			needsReorder = true
		}
		sub := Diff(oldChildren[pairedIdx], nc)
		for _, p := range sub {
			p.Index = i
			patches = append(patches, p)
		}
	}

	for idx := range oldChildren {
		if !matchedOld[idx] {
			patches = append(patches, Patch{Op: OpRemove, Index: idx})
		}
	}

	if !needsReorder {
		return patches, nil
	}
	return patches, fromIdx
}

func indexed(i int, p Patch) []Patch {
	p.Index = i
	return []Patch{p}
}

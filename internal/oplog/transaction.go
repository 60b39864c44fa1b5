package oplog

import (
	"github.com/google/uuid"

	"github.com/cosmic-gao/nexo-sub000/internal/document"
)

// Transaction groups operations applied atomically as one history entry
// (§4.2/§4.3). Operations are stored pre-apply; ApplyTransaction fills in
// each one's capture fields as it goes, so the returned Transaction is
// ready to be inverted later.
type Transaction struct {
	ID          string
	Timestamp   int64
	Description string
	Operations  []Operation
}

// NewTransaction allocates a transaction id and timestamp, following the
// same opaque-id convention as document blocks (§4.2: "a transaction groups
// operations with an id, timestamp, and description").
func NewTransaction(description string, ops ...Operation) Transaction {
	return Transaction{
		ID:          "txn_" + uuid.NewString(),
		Timestamp:   document.Clock(),
		Description: description,
		Operations:  ops,
	}
}

// ApplyTransaction applies t's operations in order against d, returning the
// resulting document and a copy of t whose operations now carry their
// captured inverse data.
func ApplyTransaction(d document.Document, t Transaction) (document.Document, Transaction) {
	applied := make([]Operation, len(t.Operations))
	for i, op := range t.Operations {
		var nd document.Document
		nd, applied[i] = Apply(d, op)
		d = nd
	}
	out := t
	out.Operations = applied
	return d, out
}

// InvertTransaction builds the reverse-ordered list of per-operation
// inverses for an already-applied transaction t. Per §4.2, each inverse is
// constructed against the intermediate document state, not the final one:
// callers must not call this against a document other than the one
// ApplyTransaction returned for t.
func InvertTransaction(t Transaction) Transaction {
	inv := make([]Operation, len(t.Operations))
	for i, op := range t.Operations {
		inv[len(t.Operations)-1-i] = Invert(op)
	}
	return Transaction{
		ID:          "txn_" + uuid.NewString(),
		Timestamp:   document.Clock(),
		Description: "undo: " + t.Description,
		Operations:  inv,
	}
}

package model

import (
	"github.com/google/uuid"
	"github.com/soupdb/soupdb/internal/errs"
)

// DocumentValue is a node in a schemaless document tree: either a concrete
// scalar, an array of further values, or a nested subdocument.
type DocumentValue interface{ documentValueNode() }

// ConcreteValue wraps a scalar leaf (string, number, bool, or nil).
type ConcreteValue struct{ Value any }

// Array is an ordered sequence of document values.
type Array struct{ Items []DocumentValue }

// SubDocument is a nested mapping of keys to document values.
type SubDocument struct{ Fields map[string]DocumentValue }

func (ConcreteValue) documentValueNode() {}
func (Array) documentValueNode()         {}
func (SubDocument) documentValueNode()   {}

// DocumentRecord is one stored document: a UUID identity plus its root
// value tree. Documents have no declared schema — any shape is legal, and
// the shape may change freely between inserts.
type DocumentRecord struct {
	ID   uuid.UUID
	Root DocumentValue
}

// NewDocumentRecord allocates a fresh document identity for root.
func NewDocumentRecord(root DocumentValue) DocumentRecord {
	return DocumentRecord{ID: uuid.New(), Root: root}
}

// Query evaluates a JSONPath-style expression against the document, e.g.
// "$.name" or "$.children[0].name". Query language support belongs to the
// executor, not the model layer, so the projection itself is not yet
// implemented here — only the storage shape it would operate on.
func (d DocumentRecord) Query(path string) (DocumentValue, error) {
	return nil, errs.NotImplemented("document JSONPath query: " + path)
}

// AsTuple coerces a SubDocument into a flat field map by discarding any
// non-scalar (Array, nested SubDocument) entries, per the "documents can be
// automatically coerced into tuples" contract. AsTuple on a single
// key/value SubDocument can be further unwrapped by the caller into a bare
// value.
func (d DocumentRecord) AsTuple() (map[string]any, bool) {
	sub, ok := d.Root.(SubDocument)
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(sub.Fields))
	for k, v := range sub.Fields {
		if cv, ok := v.(ConcreteValue); ok {
			out[k] = cv.Value
		}
	}
	return out, true
}

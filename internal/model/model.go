// Package model implements SoupDB's five model kinds (table, document,
// geohash, graph, time series) as a single tagged Model type.
//
// What: a name plus a kind-tagged schema payload, DDL rendering/parsing, and
// the per-kind hidden rowid schema used by the buffer/storage layers to key
// rows.
// How: a plain struct with an explicit Kind field and a type switch over it,
// rather than an interface with five implementations — none of the five
// kinds carry behavior beyond a pure projection from Kind to a rowid schema
// and a DDL string, so dynamic dispatch would buy nothing here.
// Why: none of the five kinds have behavior beyond "what's my rowid schema"
// and "how do I render/parse," so a closed tagged union is simpler and more
// exhaustively checkable than an open interface hierarchy.
package model

import (
	"fmt"
	"io"

	"github.com/soupdb/soupdb/internal/errs"
	"github.com/soupdb/soupdb/internal/lang"
	"github.com/soupdb/soupdb/internal/types"
)

// Model is a named, kind-tagged schema.
type Model struct {
	Name string
	lang.ModelSchema
}

// New builds a Model directly from a name and an already-parsed schema.
func New(name string, schema lang.ModelSchema) *Model {
	return &Model{Name: name, ModelSchema: schema}
}

// FromDDL parses a single CREATE ... statement into a Model.
func FromDDL(ddl string) (*Model, error) {
	cmd, err := lang.ParseCommand(ddl)
	if err != nil {
		return nil, err
	}
	create, ok := cmd.(lang.CreateModel)
	if !ok {
		return nil, errs.New(errs.ParseError, "invalid DDL: expected CREATE MODEL, got %T", cmd)
	}
	return New(create.Name, create.Schema), nil
}

// RowIDSchema returns the hidden key schema automatically maintained for
// this model's rows, if it has one. Document and Graph models have none:
// Documents are schemaless and keyed by UUID rather than a tuple field,
// Graphs key nodes and edges separately rather than through a single rowid.
func (m *Model) RowIDSchema() (types.Tuple, bool) {
	switch m.Kind {
	case lang.KindTable:
		return types.NewTuple(types.Field{Name: "rowid", Type: types.NewUint()}), true
	case lang.KindTimeSeries:
		return types.NewTuple(types.Field{Name: "timestamp", Type: types.NewFloat()}), true
	case lang.KindGeoHash:
		return types.NewTuple(types.Field{Name: "point", Type: types.NewVector(2, types.NewFloat())}), true
	default:
		return types.Tuple{}, false
	}
}

// ToDDL renders the CREATE statement that reproduces this model.
func (m *Model) ToDDL() string {
	switch m.Kind {
	case lang.KindTable:
		return fmt.Sprintf("create table %s %s;", m.Name, m.Schema.ToDDL())
	case lang.KindDocument:
		return fmt.Sprintf("create document %s;", m.Name)
	case lang.KindGeoHash:
		return fmt.Sprintf("create geohash %s %s;", m.Name, m.Schema.ToDDL())
	case lang.KindGraph:
		return fmt.Sprintf("create graph %s %s %s;", m.Name, m.NodeSchema.ToDDL(), m.EdgeSchema.ToDDL())
	case lang.KindTimeSeries:
		return fmt.Sprintf("create timeseries %s %s;", m.Name, m.Schema.ToDDL())
	default:
		return ""
	}
}

// WriteSchema writes this model's DDL to w.
func (m *Model) WriteSchema(w io.Writer) error {
	_, err := io.WriteString(w, m.ToDDL())
	if err != nil {
		return errs.Wrap(errs.IoError, err, "write schema for %q", m.Name)
	}
	return nil
}

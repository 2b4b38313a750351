package model

import (
	"testing"

	"github.com/soupdb/soupdb/internal/lang"
	"github.com/soupdb/soupdb/internal/types"
)

func roundTrip(t *testing.T, ddl string) {
	t.Helper()
	m, err := FromDDL(ddl)
	if err != nil {
		t.Fatalf("FromDDL(%q) returned error: %v", ddl, err)
	}
	if got := m.ToDDL(); got != ddl {
		t.Errorf("ToDDL() = %q, want %q", got, ddl)
	}
}

func TestTableDDLRoundTrip(t *testing.T) {
	ddl := "create table test_table (col_1 int, col_2 nullable vector(3) float);"
	roundTrip(t, ddl)

	m, err := FromDDL(ddl)
	if err != nil {
		t.Fatal(err)
	}
	rowid, ok := m.RowIDSchema()
	if !ok {
		t.Fatal("table model should have a rowid schema")
	}
	want := types.NewTuple(types.Field{Name: "rowid", Type: types.NewUint()})
	if !rowid.Equal(want) {
		t.Errorf("RowIDSchema() = %+v, want %+v", rowid, want)
	}
}

func TestGeoHashDDLRoundTrip(t *testing.T) {
	ddl := "create geohash test_geohash (col_1 int, col_2 nullable vector(3) float);"
	roundTrip(t, ddl)

	m, err := FromDDL(ddl)
	if err != nil {
		t.Fatal(err)
	}
	rowid, ok := m.RowIDSchema()
	if !ok {
		t.Fatal("geohash model should have a rowid schema")
	}
	want := types.NewTuple(types.Field{Name: "point", Type: types.NewVector(2, types.NewFloat())})
	if !rowid.Equal(want) {
		t.Errorf("RowIDSchema() = %+v, want %+v", rowid, want)
	}
}

func TestGraphDDLRoundTrip(t *testing.T) {
	ddl := "create graph test_graph (col_1 int, col_2 nullable vector(3) float) (edge_length float);"
	roundTrip(t, ddl)

	m, err := FromDDL(ddl)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.RowIDSchema(); ok {
		t.Error("graph model should have no rowid schema")
	}
}

func TestDocumentDDLRoundTrip(t *testing.T) {
	ddl := "create document test_doc;"
	roundTrip(t, ddl)

	m, err := FromDDL(ddl)
	if err != nil {
		t.Fatal(err)
	}
	if m.Kind != lang.KindDocument {
		t.Errorf("Kind = %v, want KindDocument", m.Kind)
	}
	if _, ok := m.RowIDSchema(); ok {
		t.Error("document model should have no rowid schema")
	}
}

func TestTimeSeriesDDLRoundTrip(t *testing.T) {
	ddl := "create timeseries test_ts (col_1 int, col_2 nullable vector(3) float);"
	roundTrip(t, ddl)

	m, err := FromDDL(ddl)
	if err != nil {
		t.Fatal(err)
	}
	rowid, ok := m.RowIDSchema()
	if !ok {
		t.Fatal("timeseries model should have a rowid schema")
	}
	want := types.NewTuple(types.Field{Name: "timestamp", Type: types.NewFloat()})
	if !rowid.Equal(want) {
		t.Errorf("RowIDSchema() = %+v, want %+v", rowid, want)
	}
}

func TestFromDDLRejectsNonCreateModel(t *testing.T) {
	if _, err := FromDDL("use database foo;"); err == nil {
		t.Error("expected an error parsing a non-CREATE-MODEL statement as a model")
	}
}

package lang

import "github.com/soupdb/soupdb/internal/types"

// ModelKind tags which of the five model kinds a CreateModel command names.
type ModelKind int

const (
	KindTable ModelKind = iota
	KindDocument
	KindGeoHash
	KindGraph
	KindTimeSeries
)

func (k ModelKind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindDocument:
		return "document"
	case KindGeoHash:
		return "geohash"
	case KindGraph:
		return "graph"
	case KindTimeSeries:
		return "timeseries"
	default:
		return "unknown"
	}
}

// ModelSchema is the parsed payload of a CREATE ... command: enough to build
// a model.Model without internal/lang depending on internal/model (model
// depends on lang for parsing, not the reverse).
type ModelSchema struct {
	Kind ModelKind
	// Schema is populated for Table, TimeSeries, GeoHash, and is the
	// (ignored) declared payload for Document.
	Schema types.Tuple
	// NodeSchema/EdgeSchema are populated for Graph only.
	NodeSchema types.Tuple
	EdgeSchema types.Tuple
}

// Command is the root interface for all parsed commands.
type Command interface{ commandNode() }

type CreateDatabase struct {
	Name      string
	LocalFile *string
}

type DropDatabase struct{ Name string }
type UseDatabase struct{ Name string }
type CleanDatabase struct{ Name string }

type ImportDatabase struct {
	Name string
	Path string
}

type CreateModel struct {
	Name   string
	Schema ModelSchema
}

type DropModel struct{ Name string }

// SelectColumns is either "all" (All==true) or a named projection list.
type SelectColumns struct {
	All   bool
	Named []NamedExpr
}

// NamedExpr is a projection or set-clause expression with an optional alias.
type NamedExpr struct {
	Expr  Expr
	Alias string // empty if none
}

// FromItem names a model in a FROM clause, with an optional alias.
type FromItem struct {
	Name  string
	Alias string
}

type Select struct {
	Cols    SelectColumns
	From    []FromItem
	Where   Expr // nil if absent
	GroupBy []Expr
	Having  Expr // nil if absent
	OrderBy []Expr
	Limit   *uint64
}

type Update struct {
	Model   string
	Where   Expr // nil if absent
	Set     []NamedExpr
	OrderBy []Expr
	Limit   *uint64
}

type Insert struct {
	Model  string
	Cols   []string // nil if absent
	Values [][]Expr
}

type Delete struct {
	Model   string
	Where   Expr // nil if absent
	OrderBy []Expr
	Limit   *uint64
}

func (CreateDatabase) commandNode() {}
func (DropDatabase) commandNode()   {}
func (UseDatabase) commandNode()    {}
func (CleanDatabase) commandNode()  {}
func (ImportDatabase) commandNode() {}
func (CreateModel) commandNode()    {}
func (DropModel) commandNode()      {}
func (Select) commandNode()         {}
func (Update) commandNode()         {}
func (Insert) commandNode()         {}
func (Delete) commandNode()         {}

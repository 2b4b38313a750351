package lang

import (
	"testing"

	"github.com/soupdb/soupdb/internal/types"
)

func lit(text string, vt types.ValueType) Expr { return Literal{Type: vt, Text: text} }

func TestParseExprPrecedence(t *testing.T) {
	got, err := ParseExpr("1 + 2 * 3")
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	want := BinaryExpr{
		Op:   "+",
		Left: lit("1", types.NewInt()),
		Right: BinaryExpr{
			Op:    "*",
			Left:  lit("2", types.NewInt()),
			Right: lit("3", types.NewInt()),
		},
	}
	if !exprEqual(got, want) {
		t.Errorf("ParseExpr(%q) = %#v, want %#v", "1 + 2 * 3", got, want)
	}
}

func TestParseExprLongChain(t *testing.T) {
	// 1 + 2 * 3 - (4 + 5) / 6 - 7.1
	// left-associative at the additive level: ((1 + (2*3)) - ((4+5)/6)) - 7.1
	got, err := ParseExpr("1 + 2 * 3 - (4 + 5) / 6 - 7.1")
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	want := BinaryExpr{
		Op: "-",
		Left: BinaryExpr{
			Op: "-",
			Left: BinaryExpr{
				Op:   "+",
				Left: lit("1", types.NewInt()),
				Right: BinaryExpr{
					Op:    "*",
					Left:  lit("2", types.NewInt()),
					Right: lit("3", types.NewInt()),
				},
			},
			Right: BinaryExpr{
				Op: "/",
				Left: BinaryExpr{
					Op:    "+",
					Left:  lit("4", types.NewInt()),
					Right: lit("5", types.NewInt()),
				},
				Right: lit("6", types.NewInt()),
			},
		},
		Right: lit("7.1", types.NewFloat()),
	}
	if !exprEqual(got, want) {
		t.Errorf("ParseExpr(long chain) = %#v, want %#v", got, want)
	}
}

func TestParseExprQualifiedIdent(t *testing.T) {
	got, err := ParseExpr("abc.def")
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	want := Ident{Qualifier: "abc", Name: "def"}
	if !exprEqual(got, want) {
		t.Errorf("ParseExpr(%q) = %#v, want %#v", "abc.def", got, want)
	}
}

func TestParseExprNotAndPlacement(t *testing.T) {
	got, err := ParseExpr("NOT 1 AND 2")
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	want := BinaryExpr{
		Op:    "AND",
		Left:  UnaryExpr{Op: "NOT", Expr: lit("1", types.NewInt())},
		Right: lit("2", types.NewInt()),
	}
	if !exprEqual(got, want) {
		t.Errorf("ParseExpr(%q) = %#v, want %#v", "NOT 1 AND 2", got, want)
	}

	got2, err := ParseExpr("1 AND NOT 2")
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	want2 := BinaryExpr{
		Op:    "AND",
		Left:  lit("1", types.NewInt()),
		Right: UnaryExpr{Op: "NOT", Expr: lit("2", types.NewInt())},
	}
	if !exprEqual(got2, want2) {
		t.Errorf("ParseExpr(%q) = %#v, want %#v", "1 AND NOT 2", got2, want2)
	}
}

func TestParseCreateDocument(t *testing.T) {
	cmd, err := ParseCommand("CREATE DOCUMENT doc ;")
	if err != nil {
		t.Fatalf("ParseCommand returned error: %v", err)
	}
	create, ok := cmd.(CreateModel)
	if !ok {
		t.Fatalf("ParseCommand returned %T, want CreateModel", cmd)
	}
	if create.Name != "doc" || create.Schema.Kind != KindDocument {
		t.Errorf("got CreateModel{Name:%q, Kind:%v}, want {doc, document}", create.Name, create.Schema.Kind)
	}
}

func TestParseCreateTable(t *testing.T) {
	cmd, err := ParseCommand("create TABLE my_table (col_1 int, col2 str, col3 nullable bool, d nullable str(10), column_5 vector(3) unsigned int);")
	if err != nil {
		t.Fatalf("ParseCommand returned error: %v", err)
	}
	create, ok := cmd.(CreateModel)
	if !ok {
		t.Fatalf("ParseCommand returned %T, want CreateModel", cmd)
	}
	if create.Name != "my_table" || create.Schema.Kind != KindTable {
		t.Fatalf("got CreateModel{Name:%q, Kind:%v}", create.Name, create.Schema.Kind)
	}
	fields := create.Schema.Schema.Fields
	if len(fields) != 5 {
		t.Fatalf("got %d fields, want 5", len(fields))
	}
	wantNames := []string{"col_1", "col2", "col3", "d", "column_5"}
	for i, n := range wantNames {
		if fields[i].Name != n {
			t.Errorf("field %d name = %q, want %q", i, fields[i].Name, n)
		}
	}
	if !types.Equal(fields[0].Type, types.NewInt()) {
		t.Errorf("col_1 type = %v, want int", fields[0].Type)
	}
	if !types.Equal(fields[2].Type, types.NewNullable(types.NewBool())) {
		t.Errorf("col3 type = %v, want nullable bool", fields[2].Type)
	}
	if !types.Equal(fields[4].Type, types.NewVector(3, types.NewUint())) {
		t.Errorf("column_5 type = %v, want vector(3) unsigned int", fields[4].Type)
	}
}

// exprEqual is a structural equality check good enough for the AST shapes
// produced by this parser (no pointers shared between trees).
func exprEqual(a, b Expr) bool {
	switch av := a.(type) {
	case Ident:
		bv, ok := b.(Ident)
		return ok && av == bv
	case Literal:
		bv, ok := b.(Literal)
		return ok && av.Text == bv.Text && types.Equal(av.Type, bv.Type)
	case UnaryExpr:
		bv, ok := b.(UnaryExpr)
		return ok && av.Op == bv.Op && exprEqual(av.Expr, bv.Expr)
	case BinaryExpr:
		bv, ok := b.(BinaryExpr)
		return ok && av.Op == bv.Op && exprEqual(av.Left, bv.Left) && exprEqual(av.Right, bv.Right)
	case FuncCall:
		bv, ok := b.(FuncCall)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !exprEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

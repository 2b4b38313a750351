package lang

import "github.com/soupdb/soupdb/internal/types"

// Expr is the root interface for all expression AST nodes.
type Expr interface{ exprNode() }

// Ident is an identifier reference, optionally qualified ("q.name").
type Ident struct {
	Qualifier string // empty if unqualified
	Name      string
}

// Literal is a typed constant: a value type tag plus its textual form, as
// produced by the lexer. Literals stay untyped-but-tagged at parse time;
// semantic type-checking against a model's schema happens later, not here.
type Literal struct {
	Type types.ValueType
	Text string
}

// FuncCall is a function-call expression.
type FuncCall struct {
	Name string
	Args []Expr
}

// UnaryExpr is a prefix unary operator applied to an expression. Only NOT is
// currently supported.
type UnaryExpr struct {
	Op   string
	Expr Expr
}

// BinaryExpr is an infix binary operator applied to two expressions.
type BinaryExpr struct {
	Op          string
	Left, Right Expr
}

func (Ident) exprNode()      {}
func (Literal) exprNode()    {}
func (FuncCall) exprNode()   {}
func (UnaryExpr) exprNode()  {}
func (BinaryExpr) exprNode() {}

// binaryPrecedence implements the precedence table from the grammar:
// multiplicative(5) > additive(4) > comparison/is/like/in(3) > and/or(2).
func binaryPrecedence(op string) int {
	switch op {
	case "*", "/":
		return 5
	case "+", "-":
		return 4
	case "=", "!=", "<", ">", "<=", ">=", "IS", "LIKE", "IN":
		return 3
	case "AND", "OR":
		return 2
	default:
		return 0
	}
}

func isBinaryOp(op string) bool { return binaryPrecedence(op) > 0 }

package lang

import (
	"fmt"
	"strings"

	"github.com/soupdb/soupdb/internal/errs"
	"github.com/soupdb/soupdb/internal/types"
)

// Parser holds the lexer and current/peek tokens for recursive-descent
// parsing of the surrounding grammar (value types, tuples, CREATE/SELECT/
// UPDATE/INSERT/DELETE statements). Expressions themselves are flattened to
// a token stream and re-treed by shuntingYard, per the grammar's explicit
// shunting-yard requirement.
type Parser struct {
	lx   *lexer
	cur  token
	peek token
}

// NewParser creates a parser over the given input text.
func NewParser(s string) *Parser {
	p := &Parser{lx: newLexer(s)}
	p.cur = p.lx.nextToken()
	p.peek = p.lx.nextToken()
	return p
}

func (p *Parser) advance() { p.cur, p.peek = p.peek, p.lx.nextToken() }

func (p *Parser) errf(format string, a ...any) *errs.Error {
	snippet := p.cur.Val
	if p.cur.Typ == tEOF {
		snippet = "<eof>"
	}
	return errs.New(errs.ParseError, "near %q: %s", snippet, fmt.Sprintf(format, a...))
}

// ParseExpr parses text as a single expression and fails on trailing input.
func ParseExpr(text string) (Expr, error) {
	p := NewParser(text)
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ != tEOF {
		return nil, p.errf("unexpected trailing input")
	}
	return e, nil
}

// ParseCommand parses text as a single command (DDL or DML), requiring a
// terminating ';'.
func ParseCommand(text string) (Command, error) {
	p := NewParser(text)
	cmd, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	if p.cur.Typ != tEOF {
		return nil, p.errf("unexpected trailing input after ';'")
	}
	return cmd, nil
}

// ParseDDL is an alias for ParseCommand: the grammar is shared.
func ParseDDL(text string) (Command, error) { return ParseCommand(text) }

func (p *Parser) expectSymbol(sym string) error {
	if p.cur.Typ == tSymbol && p.cur.Val == sym {
		p.advance()
		return nil
	}
	return p.errf("expected symbol %q", sym)
}

func (p *Parser) expectKeyword(kw string) error {
	if p.cur.Typ == tKeyword && p.cur.Val == kw {
		p.advance()
		return nil
	}
	return p.errf("expected keyword %q", kw)
}

func (p *Parser) atKeyword(kw string) bool { return p.cur.Typ == tKeyword && p.cur.Val == kw }
func (p *Parser) atSymbol(sym string) bool { return p.cur.Typ == tSymbol && p.cur.Val == sym }

// ------------------------------------------------------------------
// Identifiers
// ------------------------------------------------------------------

func (p *Parser) parseIdentText() (string, error) {
	if p.cur.Typ != tIdent {
		return "", p.errf("expected identifier")
	}
	name := p.cur.Val
	p.advance()
	return name, nil
}

// parseQualifiedIdent parses `name` or `q.name`.
func (p *Parser) parseQualifiedIdent() (Ident, error) {
	first, err := p.parseIdentText()
	if err != nil {
		return Ident{}, err
	}
	if p.atSymbol(".") {
		p.advance()
		second, err := p.parseIdentText()
		if err != nil {
			return Ident{}, err
		}
		return Ident{Qualifier: first, Name: second}, nil
	}
	return Ident{Name: first}, nil
}

// ------------------------------------------------------------------
// Expressions: flatten to ExprToken stream, then shunting-yard
// ------------------------------------------------------------------

type exprTokKind int

const (
	etOpenParen exprTokKind = iota
	etCloseParen
	etTerm
	etUnOp
	etBinOp
)

type exprTok struct {
	kind exprTokKind
	op   string
	term Expr
}

// parseExpr flattens one expression (stopping at a token that cannot
// continue the expression grammar) into a flat stream, then applies
// shunting-yard to produce the final tree.
func (p *Parser) parseExpr() (Expr, error) {
	toks, err := p.flattenExprTokens()
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, p.errf("expected expression")
	}
	return shuntingYard(toks)
}

func (p *Parser) flattenExprTokens() ([]exprTok, error) {
	var toks []exprTok
	expectTerm := true
	for {
		if expectTerm {
			if p.atSymbol("(") {
				p.advance()
				toks = append(toks, exprTok{kind: etOpenParen})
				continue
			}
			if p.atKeyword("NOT") {
				p.advance()
				toks = append(toks, exprTok{kind: etUnOp, op: "NOT"})
				continue
			}
			term, err := p.parseTermToken()
			if err != nil {
				return nil, err
			}
			toks = append(toks, exprTok{kind: etTerm, term: term})
			expectTerm = false
			continue
		}
		// expecting an operator or a close-paren or end of expression
		if p.atSymbol(")") {
			// only consume if it matches an open paren we pushed
			if !hasUnmatchedOpen(toks) {
				break
			}
			p.advance()
			toks = append(toks, exprTok{kind: etCloseParen})
			continue
		}
		if op, ok := p.peekBinOp(); ok {
			p.advance()
			toks = append(toks, exprTok{kind: etBinOp, op: op})
			expectTerm = true
			continue
		}
		break
	}
	if expectTerm {
		return nil, p.errf("expected term")
	}
	return toks, nil
}

func hasUnmatchedOpen(toks []exprTok) bool {
	depth := 0
	for _, t := range toks {
		switch t.kind {
		case etOpenParen:
			depth++
		case etCloseParen:
			depth--
		}
	}
	return depth > 0
}

// peekBinOp recognizes the current token as a binary operator without
// consuming it; returns the canonical operator text.
func (p *Parser) peekBinOp() (string, bool) {
	switch p.cur.Typ {
	case tSymbol:
		switch p.cur.Val {
		case "+", "-", "*", "/", "=", "!=", "<", ">", "<=", ">=":
			return p.cur.Val, true
		}
	case tKeyword:
		switch p.cur.Val {
		case "AND", "OR", "IS", "LIKE", "IN":
			return p.cur.Val, true
		}
	}
	return "", false
}

// parseTermToken parses one atomic term: literal, qualified identifier, or
// a function call.
func (p *Parser) parseTermToken() (Expr, error) {
	switch p.cur.Typ {
	case tNumber:
		text := p.cur.Val
		p.advance()
		if strings.Contains(text, ".") {
			return Literal{Type: types.NewFloat(), Text: text}, nil
		}
		return Literal{Type: types.NewInt(), Text: text}, nil
	case tString:
		text := p.cur.Val
		p.advance()
		return Literal{Type: types.NewStr(0), Text: text}, nil
	case tSymbol:
		if p.cur.Val == "-" {
			// unary minus on a numeric literal, folded into the literal text
			p.advance()
			if p.cur.Typ != tNumber {
				return nil, p.errf("expected number after unary '-'")
			}
			text := "-" + p.cur.Val
			typ := types.NewInt()
			if strings.Contains(p.cur.Val, ".") {
				typ = types.NewFloat()
			}
			p.advance()
			return Literal{Type: typ, Text: text}, nil
		}
	case tKeyword:
		switch p.cur.Val {
		case "NULL":
			p.advance()
			return Literal{Type: types.ValueType{Kind: types.Unknown}, Text: "NULL"}, nil
		case "TRUE", "FALSE":
			text := p.cur.Val
			p.advance()
			return Literal{Type: types.NewBool(), Text: text}, nil
		}
	case tIdent:
		id, err := p.parseQualifiedIdent()
		if err != nil {
			return nil, err
		}
		if p.atSymbol("(") && id.Qualifier == "" {
			return p.parseFuncCallArgs(id.Name)
		}
		return id, nil
	}
	return nil, p.errf("unexpected token in expression")
}

func (p *Parser) parseFuncCallArgs(name string) (Expr, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var args []Expr
	if !p.atSymbol(")") {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.atSymbol(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return FuncCall{Name: name, Args: args}, nil
}

// shuntingYard implements the explicit shunting-yard algorithm from the
// grammar: an expression stack and an operator stack, unary operators always
// treated as higher precedence than any binary at the top of the stack,
// equal-precedence binaries popped before the new one is pushed
// (left-associative).
func shuntingYard(toks []exprTok) (Expr, error) {
	var exprStack []Expr
	var opStack []exprTok

	pop := func() (Expr, bool) {
		if len(exprStack) == 0 {
			return nil, false
		}
		e := exprStack[len(exprStack)-1]
		exprStack = exprStack[:len(exprStack)-1]
		return e, true
	}
	complete := func(op exprTok) error {
		switch op.kind {
		case etBinOp:
			rhs, ok1 := pop()
			lhs, ok2 := pop()
			if !ok1 || !ok2 {
				return errs.New(errs.ParseError, "malformed expression: missing operand for %q", op.op)
			}
			exprStack = append(exprStack, BinaryExpr{Op: op.op, Left: lhs, Right: rhs})
		case etUnOp:
			e, ok := pop()
			if !ok {
				return errs.New(errs.ParseError, "malformed expression: missing operand for unary %q", op.op)
			}
			exprStack = append(exprStack, UnaryExpr{Op: op.op, Expr: e})
		default:
			return errs.New(errs.ParseError, "invalid operator on stack")
		}
		return nil
	}

	for _, t := range toks {
		switch t.kind {
		case etOpenParen:
			opStack = append(opStack, t)
		case etCloseParen:
			for len(opStack) > 0 && opStack[len(opStack)-1].kind != etOpenParen {
				top := opStack[len(opStack)-1]
				opStack = opStack[:len(opStack)-1]
				if err := complete(top); err != nil {
					return nil, err
				}
			}
			if len(opStack) == 0 {
				return nil, errs.New(errs.ParseError, "unmatched ')'")
			}
			opStack = opStack[:len(opStack)-1] // pop the OpenParen
		case etTerm:
			exprStack = append(exprStack, t.term)
		case etUnOp:
			opStack = append(opStack, t)
		case etBinOp:
			p := binaryPrecedence(t.op)
			for len(opStack) > 0 {
				top := opStack[len(opStack)-1]
				stop := true
				switch top.kind {
				case etBinOp:
					stop = binaryPrecedence(top.op) < p
				case etUnOp:
					stop = false
				default:
					stop = true
				}
				if stop {
					break
				}
				opStack = opStack[:len(opStack)-1]
				if err := complete(top); err != nil {
					return nil, err
				}
			}
			opStack = append(opStack, t)
		}
	}
	for len(opStack) > 0 {
		top := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		if top.kind == etOpenParen {
			return nil, errs.New(errs.ParseError, "unmatched '('")
		}
		if err := complete(top); err != nil {
			return nil, err
		}
	}
	result, ok := pop()
	if !ok || len(exprStack) != 0 {
		return nil, errs.New(errs.ParseError, "malformed expression")
	}
	return result, nil
}

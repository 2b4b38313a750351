package lang

import (
	"strconv"

	"github.com/soupdb/soupdb/internal/errs"
	"github.com/soupdb/soupdb/internal/types"
)

// ParseValueType parses one value-type spec: BOOL, UNSIGNED INT, INT, FLOAT,
// STR[(n)], NULLABLE <type>, VECTOR(n) <type>. Keywords are case-insensitive
// (the lexer folds them); identifiers are not involved here.
func ParseValueType(text string) (types.ValueType, error) {
	p := NewParser(text)
	t, err := p.parseValueType()
	if err != nil {
		return types.ValueType{}, err
	}
	if p.cur.Typ != tEOF {
		return types.ValueType{}, p.errf("unexpected trailing input in value type")
	}
	return t, nil
}

func (p *Parser) parseValueType() (types.ValueType, error) {
	switch {
	case p.atKeyword("BOOL"):
		p.advance()
		return types.NewBool(), nil
	case p.atKeyword("UNSIGNED"):
		p.advance()
		if err := p.expectKeyword("INT"); err != nil {
			return types.ValueType{}, err
		}
		return types.NewUint(), nil
	case p.atKeyword("INT"):
		p.advance()
		return types.NewInt(), nil
	case p.atKeyword("FLOAT"):
		p.advance()
		return types.NewFloat(), nil
	case p.atKeyword("STR"):
		p.advance()
		if p.atSymbol("(") {
			n, err := p.parseParenSize()
			if err != nil {
				return types.ValueType{}, err
			}
			return types.NewStr(n), nil
		}
		return types.NewStr(0), nil
	case p.atKeyword("NULLABLE"):
		p.advance()
		inner, err := p.parseValueType()
		if err != nil {
			return types.ValueType{}, err
		}
		return types.NewNullable(inner), nil
	case p.atKeyword("VECTOR"):
		p.advance()
		n, err := p.parseParenSize()
		if err != nil {
			return types.ValueType{}, err
		}
		inner, err := p.parseValueType()
		if err != nil {
			return types.ValueType{}, err
		}
		return types.NewVector(n, inner), nil
	default:
		return types.ValueType{}, p.errf("expected value type")
	}
}

// parseParenSize parses "(n)" and returns n.
func (p *Parser) parseParenSize() (int, error) {
	if err := p.expectSymbol("("); err != nil {
		return 0, err
	}
	if p.cur.Typ != tNumber {
		return 0, p.errf("expected integer size")
	}
	n, err := strconv.Atoi(p.cur.Val)
	if err != nil {
		return 0, errs.Wrap(errs.ParseError, err, "invalid integer size %q", p.cur.Val)
	}
	p.advance()
	if err := p.expectSymbol(")"); err != nil {
		return 0, err
	}
	return n, nil
}

// ParseTuple parses "( name type, name type, ... )".
func ParseTuple(text string) (types.Tuple, error) {
	p := NewParser(text)
	t, err := p.parseTuple()
	if err != nil {
		return types.Tuple{}, err
	}
	if p.cur.Typ != tEOF {
		return types.Tuple{}, p.errf("unexpected trailing input in tuple")
	}
	return t, nil
}

func (p *Parser) parseTuple() (types.Tuple, error) {
	if err := p.expectSymbol("("); err != nil {
		return types.Tuple{}, err
	}
	var fields []types.Field
	if !p.atSymbol(")") {
		for {
			name, err := p.parseIdentText()
			if err != nil {
				return types.Tuple{}, err
			}
			vt, err := p.parseValueType()
			if err != nil {
				return types.Tuple{}, err
			}
			fields = append(fields, types.Field{Name: name, Type: vt})
			if p.atSymbol(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return types.Tuple{}, err
	}
	return types.NewTuple(fields...), nil
}

// ------------------------------------------------------------------
// Commands
// ------------------------------------------------------------------

func (p *Parser) parseCommand() (Command, error) {
	if p.cur.Typ != tKeyword {
		return nil, p.errf("expected a command keyword")
	}
	switch p.cur.Val {
	case "CREATE":
		return p.parseCreate()
	case "DROP":
		return p.parseDrop()
	case "USE":
		p.advance()
		if err := p.expectKeyword("DATABASE"); err != nil {
			return nil, err
		}
		name, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		return UseDatabase{Name: name}, nil
	case "CLEAN":
		p.advance()
		if err := p.expectKeyword("DATABASE"); err != nil {
			return nil, err
		}
		name, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		return CleanDatabase{Name: name}, nil
	case "IMPORT":
		p.advance()
		if err := p.expectKeyword("DATABASE"); err != nil {
			return nil, err
		}
		name, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("FROM"); err != nil {
			return nil, err
		}
		if p.cur.Typ != tString {
			return nil, p.errf("expected path string")
		}
		path := p.cur.Val
		p.advance()
		return ImportDatabase{Name: name, Path: path}, nil
	case "SELECT":
		return p.parseSelect()
	case "UPDATE":
		return p.parseUpdate()
	case "INSERT":
		return p.parseInsert()
	case "DELETE":
		return p.parseDelete()
	default:
		return nil, p.errf("unrecognized command keyword %q", p.cur.Val)
	}
}

func (p *Parser) parseCreate() (Command, error) {
	p.advance() // CREATE
	if p.atKeyword("DATABASE") {
		p.advance()
		name, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		var localFile *string
		if p.cur.Typ == tString {
			f := p.cur.Val
			localFile = &f
			p.advance()
		}
		return CreateDatabase{Name: name, LocalFile: localFile}, nil
	}

	var kind ModelKind
	switch {
	case p.atKeyword("TABLE"):
		kind = KindTable
	case p.atKeyword("DOCUMENT"):
		kind = KindDocument
	case p.atKeyword("GEOHASH"):
		kind = KindGeoHash
	case p.atKeyword("GRAPH"):
		kind = KindGraph
	case p.atKeyword("TIMESERIES"):
		kind = KindTimeSeries
	default:
		return nil, p.errf("expected DATABASE, TABLE, DOCUMENT, GEOHASH, GRAPH, or TIMESERIES")
	}
	p.advance()
	name, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}

	schema := ModelSchema{Kind: kind}
	switch kind {
	case KindDocument:
		// no schema payload
	case KindGraph:
		nodes, err := p.parseTuple()
		if err != nil {
			return nil, err
		}
		edges, err := p.parseTuple()
		if err != nil {
			return nil, err
		}
		schema.NodeSchema = nodes
		schema.EdgeSchema = edges
	default: // Table, GeoHash, TimeSeries
		tup, err := p.parseTuple()
		if err != nil {
			return nil, err
		}
		schema.Schema = tup
	}
	return CreateModel{Name: name, Schema: schema}, nil
}

func (p *Parser) parseDrop() (Command, error) {
	p.advance() // DROP
	if p.atKeyword("DATABASE") {
		p.advance()
		name, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		return DropDatabase{Name: name}, nil
	}
	// any model kind keyword, or bare MODEL-less form: DROP <name>
	switch {
	case p.atKeyword("TABLE"), p.atKeyword("DOCUMENT"), p.atKeyword("GEOHASH"),
		p.atKeyword("GRAPH"), p.atKeyword("TIMESERIES"):
		p.advance()
	}
	name, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	return DropModel{Name: name}, nil
}

func (p *Parser) parseOptionalLimit() (*uint64, error) {
	if !p.atKeyword("LIMIT") {
		return nil, nil
	}
	p.advance()
	if p.cur.Typ != tNumber {
		return nil, p.errf("expected integer after LIMIT")
	}
	n, err := strconv.ParseUint(p.cur.Val, 10, 64)
	if err != nil {
		return nil, errs.Wrap(errs.ParseError, err, "invalid LIMIT value %q", p.cur.Val)
	}
	p.advance()
	return &n, nil
}

func (p *Parser) parseOptionalOrderBy() ([]Expr, error) {
	if !p.atKeyword("ORDER") {
		return nil, nil
	}
	p.advance()
	if err := p.expectKeyword("BY"); err != nil {
		return nil, err
	}
	return p.parseExprList()
}

func (p *Parser) parseExprList() ([]Expr, error) {
	var exprs []Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if p.atSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	return exprs, nil
}

func (p *Parser) parseSelect() (Command, error) {
	p.advance() // SELECT
	cols, err := p.parseSelectColumns()
	if err != nil {
		return nil, err
	}
	sel := Select{Cols: cols}
	if p.atKeyword("FROM") {
		p.advance()
		for {
			name, err := p.parseIdentText()
			if err != nil {
				return nil, err
			}
			alias := ""
			if p.atKeyword("AS") {
				p.advance()
				alias, err = p.parseIdentText()
				if err != nil {
					return nil, err
				}
			} else if p.cur.Typ == tIdent {
				alias, err = p.parseIdentText()
				if err != nil {
					return nil, err
				}
			}
			sel.From = append(sel.From, FromItem{Name: name, Alias: alias})
			if p.atSymbol(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if p.atKeyword("WHERE") {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sel.Where = e
	}
	if p.atKeyword("GROUP") {
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		sel.GroupBy = exprs
	}
	if p.atKeyword("HAVING") {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sel.Having = e
	}
	orderBy, err := p.parseOptionalOrderBy()
	if err != nil {
		return nil, err
	}
	sel.OrderBy = orderBy
	limit, err := p.parseOptionalLimit()
	if err != nil {
		return nil, err
	}
	sel.Limit = limit
	return sel, nil
}

func (p *Parser) parseSelectColumns() (SelectColumns, error) {
	if p.atSymbol("*") {
		p.advance()
		return SelectColumns{All: true}, nil
	}
	var named []NamedExpr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return SelectColumns{}, err
		}
		alias := ""
		if p.atKeyword("AS") {
			p.advance()
			alias, err = p.parseIdentText()
			if err != nil {
				return SelectColumns{}, err
			}
		}
		named = append(named, NamedExpr{Expr: e, Alias: alias})
		if p.atSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	return SelectColumns{Named: named}, nil
}

func (p *Parser) parseUpdate() (Command, error) {
	p.advance() // UPDATE
	model, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	var sets []NamedExpr
	for {
		name, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("="); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sets = append(sets, NamedExpr{Expr: val, Alias: name})
		if p.atSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	upd := Update{Model: model, Set: sets}
	if p.atKeyword("WHERE") {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		upd.Where = e
	}
	orderBy, err := p.parseOptionalOrderBy()
	if err != nil {
		return nil, err
	}
	upd.OrderBy = orderBy
	limit, err := p.parseOptionalLimit()
	if err != nil {
		return nil, err
	}
	upd.Limit = limit
	return upd, nil
}

func (p *Parser) parseInsert() (Command, error) {
	p.advance() // INSERT
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	model, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	var cols []string
	if p.atSymbol("(") {
		p.advance()
		for {
			name, err := p.parseIdentText()
			if err != nil {
				return nil, err
			}
			cols = append(cols, name)
			if p.atSymbol(",") {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
	}
	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	var rows [][]Expr
	for {
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		row, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if p.atSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	return Insert{Model: model, Cols: cols, Values: rows}, nil
}

func (p *Parser) parseDelete() (Command, error) {
	p.advance() // DELETE
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	model, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	del := Delete{Model: model}
	if p.atKeyword("WHERE") {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		del.Where = e
	}
	orderBy, err := p.parseOptionalOrderBy()
	if err != nil {
		return nil, err
	}
	del.OrderBy = orderBy
	limit, err := p.parseOptionalLimit()
	if err != nil {
		return nil, err
	}
	del.Limit = limit
	return del, nil
}

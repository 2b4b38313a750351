package executor

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/soupdb/soupdb/internal/errs"
	"github.com/soupdb/soupdb/internal/lang"
	"github.com/soupdb/soupdb/internal/model"
	"github.com/soupdb/soupdb/internal/types"
)

// ImportSQLite opens the SQLite file at path (read-only, via the pure-Go
// driver) and converts each of its user tables into a SoupDB Table model,
// mapping SQLite's dynamic column affinities onto SoupDB's fixed value
// types on a best-effort basis.
func ImportSQLite(path string) ([]*model.Model, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, errs.Wrap(errs.IoError, err, "open sqlite file %q", path)
	}
	defer db.Close()

	tableRows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, errs.Wrap(errs.IoError, err, "list tables in %q", path)
	}
	defer tableRows.Close()

	var tableNames []string
	for tableRows.Next() {
		var name string
		if err := tableRows.Scan(&name); err != nil {
			return nil, errs.Wrap(errs.IoError, err, "scan table name from %q", path)
		}
		tableNames = append(tableNames, name)
	}
	if err := tableRows.Err(); err != nil {
		return nil, errs.Wrap(errs.IoError, err, "list tables in %q", path)
	}

	models := make([]*model.Model, 0, len(tableNames))
	for _, name := range tableNames {
		fields, err := sqliteTableFields(db, name)
		if err != nil {
			return nil, err
		}
		m := model.New(name, lang.ModelSchema{
			Kind:   lang.KindTable,
			Schema: types.NewTuple(fields...),
		})
		models = append(models, m)
	}
	return models, nil
}

func sqliteTableFields(db *sql.DB, tableName string) ([]types.Field, error) {
	rows, err := db.Query(`PRAGMA table_info(` + quoteSQLiteIdent(tableName) + `)`)
	if err != nil {
		return nil, errs.Wrap(errs.IoError, err, "read schema of table %q", tableName)
	}
	defer rows.Close()

	var fields []types.Field
	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal any
			pk         int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, errs.Wrap(errs.IoError, err, "scan column info for table %q", tableName)
		}
		vt := sqliteTypeToValueType(colType)
		if notNull == 0 {
			vt = types.NewNullable(vt)
		}
		fields = append(fields, types.Field{Name: name, Type: vt})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.IoError, err, "read schema of table %q", tableName)
	}
	return fields, nil
}

// sqliteTypeToValueType maps a SQLite column's declared type affinity onto
// the nearest SoupDB value type, per SQLite's own type-affinity rules
// (https://www.sqlite.org/datatype3.html §3.1): a substring match against
// INT/CHAR/CLOB/TEXT/REAL/FLOA/DOUB/BOOL/BLOB, defaulting to NUMERIC otherwise.
func sqliteTypeToValueType(declared string) types.ValueType {
	upper := strings.ToUpper(declared)
	switch {
	case strings.Contains(upper, "INT"):
		return types.NewInt()
	case strings.Contains(upper, "CHAR"), strings.Contains(upper, "CLOB"), strings.Contains(upper, "TEXT"):
		return types.NewStr(256)
	case strings.Contains(upper, "REAL"), strings.Contains(upper, "FLOA"), strings.Contains(upper, "DOUB"):
		return types.NewFloat()
	case strings.Contains(upper, "BOOL"):
		return types.NewBool()
	case strings.Contains(upper, "BLOB"):
		return types.NewStr(256)
	default:
		return types.NewFloat() // SQLite's NUMERIC affinity: closest fit is a float
	}
}

func quoteSQLiteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Package soupdb is the root facade: Open a database by name under a
// Config's data directory, then Exec SoupDB commands against it.
//
// What: the single public entry point tying the parser (internal/lang), the
// model layer (internal/model), and the command executor (internal/executor)
// together behind one exported type.
// How: Open resolves a per-database directory, loads any already-persisted
// model schemas, and hands back a thin Database wrapper whose Exec method
// parses command text and dispatches it through the executor. There is no
// database/sql driver registration here — SoupDB has its own command
// grammar rather than a SQL dialect, so a method-call API on an open handle
// is the whole entry point.
package soupdb

import (
	"path/filepath"

	"github.com/soupdb/soupdb/internal/executor"
	"github.com/soupdb/soupdb/internal/lang"
)

// Result is re-exported from internal/executor so callers never need to
// import that package directly.
type Result = executor.Result

// Database is an open SoupDB database handle.
type Database struct {
	*executor.Database
}

// Open opens (creating if necessary) the database named name under cfg's
// data directory.
func Open(cfg Config, name string) (*Database, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}
	dataDir := filepath.Join(cfg.DataDir, name)
	ex, err := executor.Open(name, dataDir)
	if err != nil {
		return nil, err
	}
	return &Database{Database: ex}, nil
}

// Exec parses a single SoupDB command and executes it against db.
func (db *Database) Exec(command string) (Result, error) {
	cmd, err := lang.ParseCommand(command)
	if err != nil {
		return Result{}, err
	}
	return executor.Execute(db.Database, cmd)
}

// Package executor dispatches parsed commands (internal/lang.Command)
// against an open Database.
//
// What: one entry point, Execute, that type-switches over every command
// kind the parser can produce. Most kinds are intentionally stubbed — they
// return a NotYetImplemented error — except for four with a concrete,
// implemented home: CreateModel/DropModel (schema persistence),
// CleanDatabase (page compaction, which Janitor also runs on a cron
// schedule), and ImportDatabase
// (reading an existing SQLite file's tables into SoupDB models).
// How: a flat type switch with one case per command kind, rather than a
// dispatch table or a visitor — the set of commands is small and closed, so
// a switch stays the most direct way to read and extend it.
// Why: building a full relational/graph/document query engine behind
// SELECT/UPDATE/INSERT/DELETE is out of scope for this package; the stub
// dispatch still gives every command a typed, recognized path rather than
// silently ignoring unhandled kinds.
package executor

import (
	"log"

	"github.com/soupdb/soupdb/internal/errs"
	"github.com/soupdb/soupdb/internal/lang"
	"github.com/soupdb/soupdb/internal/model"
)

// Result is the outcome of a successfully executed command. Commands that
// don't produce rows (DDL, imports, cleanup) leave Rows nil.
type Result struct {
	Rows []map[string]any
}

// Execute runs cmd against db.
func Execute(db *Database, cmd lang.Command) (Result, error) {
	switch c := cmd.(type) {
	case lang.CreateModel:
		return Result{}, executeCreateModel(db, c)
	case lang.DropModel:
		return Result{}, executeDropModel(db, c)
	case lang.CleanDatabase:
		return Result{}, executeCleanDatabase(db, c)
	case lang.ImportDatabase:
		return Result{}, executeImportDatabase(db, c)
	case lang.CreateDatabase, lang.DropDatabase, lang.UseDatabase,
		lang.Select, lang.Update, lang.Insert, lang.Delete:
		return Result{}, errs.NotImplemented(commandName(cmd))
	default:
		return Result{}, errs.NotImplemented(commandName(cmd))
	}
}

func commandName(cmd lang.Command) string {
	switch cmd.(type) {
	case lang.CreateDatabase:
		return "CREATE DATABASE"
	case lang.DropDatabase:
		return "DROP DATABASE"
	case lang.UseDatabase:
		return "USE DATABASE"
	case lang.Select:
		return "SELECT"
	case lang.Update:
		return "UPDATE"
	case lang.Insert:
		return "INSERT"
	case lang.Delete:
		return "DELETE"
	default:
		return "command"
	}
}

func executeCreateModel(db *Database, c lang.CreateModel) error {
	m := model.New(c.Name, c.Schema)
	if err := db.addModel(m); err != nil {
		return err
	}
	if err := PersistSchema(db.DataDir, m); err != nil {
		return err
	}
	log.Printf("executor: created model %q (%s) in database %q", c.Name, c.Schema.Kind, db.Name)
	return nil
}

func executeDropModel(db *Database, c lang.DropModel) error {
	if err := db.removeModel(c.Name); err != nil {
		return err
	}
	if err := RemoveSchema(db.DataDir, c.Name); err != nil {
		return err
	}
	log.Printf("executor: dropped model %q from database %q", c.Name, db.Name)
	return nil
}

func executeCleanDatabase(db *Database, c lang.CleanDatabase) error {
	for _, name := range db.ModelNames() {
		path := db.PageFilePath(name)
		result, err := CompactPageFile(path)
		if err != nil {
			log.Printf("executor: compaction of %q skipped: %v", path, err)
			continue
		}
		log.Printf("executor: compacted %q: %d free pages seen, %d reclaimed", path, result.FreePages, result.ReclaimedPages)
	}
	return nil
}

func executeImportDatabase(db *Database, c lang.ImportDatabase) error {
	imported, err := ImportSQLite(c.Path)
	if err != nil {
		return err
	}
	for _, m := range imported {
		if err := db.addModel(m); err != nil {
			return err
		}
		if err := PersistSchema(db.DataDir, m); err != nil {
			return err
		}
	}
	log.Printf("executor: imported %d table(s) from %q into database %q", len(imported), c.Path, db.Name)
	return nil
}

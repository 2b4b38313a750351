package executor

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/soupdb/soupdb/internal/errs"
	"github.com/soupdb/soupdb/internal/model"
)

// Database is one open SoupDB database: its name, the directory its page
// files and schema files live under, and the set of models currently
// registered against it. The caller resolves the config's data_dir down to
// this database's own subdirectory before constructing one.
type Database struct {
	Name    string
	DataDir string

	mu      sync.RWMutex
	Schemas map[string]*model.Model
}

// Open constructs a Database rooted at dataDir (creating it if necessary)
// and loads any schema files already persisted there.
func Open(name string, dataDir string) (*Database, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errs.Wrap(errs.IoError, err, "create data dir %q", dataDir)
	}
	schemas, err := LoadSchemas(dataDir)
	if err != nil {
		return nil, err
	}
	return &Database{Name: name, DataDir: dataDir, Schemas: schemas}, nil
}

// PageFilePath returns the on-disk path for the named model's page file.
func (db *Database) PageFilePath(modelName string) string {
	return filepath.Join(db.DataDir, modelName+".soupdb")
}

func (db *Database) model(name string) (*model.Model, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	m, ok := db.Schemas[name]
	return m, ok
}

func (db *Database) addModel(m *model.Model) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, exists := db.Schemas[m.Name]; exists {
		return errs.New(errs.Custom, "model %q already exists in database %q", m.Name, db.Name)
	}
	db.Schemas[m.Name] = m
	return nil
}

func (db *Database) removeModel(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, exists := db.Schemas[name]; !exists {
		return errs.New(errs.Custom, "model %q does not exist in database %q", name, db.Name)
	}
	delete(db.Schemas, name)
	return nil
}

// ModelNames returns every registered model's name, for callers (the
// CLEAN DATABASE compaction pass) that need to enumerate page files.
func (db *Database) ModelNames() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	names := make([]string, 0, len(db.Schemas))
	for name := range db.Schemas {
		names = append(names, name)
	}
	return names
}

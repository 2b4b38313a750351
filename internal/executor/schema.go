package executor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/soupdb/soupdb/internal/errs"
	"github.com/soupdb/soupdb/internal/model"
)

// schemaExt is the on-disk extension for a persisted model schema file.
const schemaExt = ".schema"

// PersistSchema writes m's DDL to <dataDir>/<name>.schema.
func PersistSchema(dataDir string, m *model.Model) error {
	path := filepath.Join(dataDir, m.Name+schemaExt)
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.IoError, err, "create schema file %q", path)
	}
	defer f.Close()
	return m.WriteSchema(f)
}

// RemoveSchema deletes a model's persisted schema file, if present.
func RemoveSchema(dataDir string, name string) error {
	path := filepath.Join(dataDir, name+schemaExt)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.IoError, err, "remove schema file %q", path)
	}
	return nil
}

// LoadSchemas scans dataDir for *.schema files and parses each into a
// Model, keyed by model name.
func LoadSchemas(dataDir string) (map[string]*model.Model, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*model.Model{}, nil
		}
		return nil, errs.Wrap(errs.IoError, err, "read data dir %q", dataDir)
	}

	schemas := make(map[string]*model.Model)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), schemaExt) {
			continue
		}
		path := filepath.Join(dataDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.IoError, err, "read schema file %q", path)
		}
		m, err := model.FromDDL(string(data))
		if err != nil {
			return nil, errs.Wrap(errs.ParseError, err, "parse schema file %q", path)
		}
		schemas[m.Name] = m
	}
	return schemas, nil
}

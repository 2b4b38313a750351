package executor

import (
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/soupdb/soupdb/internal/lang"
)

// Janitor runs CLEAN DATABASE on a cron schedule against a fixed set of
// databases: a *cron.Cron drives timed callbacks, and the callback body is
// just another command executed through the same Execute entry point
// everything else goes through.
type Janitor struct {
	mu   sync.Mutex
	cron *cron.Cron
	dbs  map[string]*Database
}

// NewJanitor constructs a Janitor with second-granularity cron parsing
// (matching scheduler.go's cron.WithSeconds()).
func NewJanitor() *Janitor {
	return &Janitor{
		cron: cron.New(cron.WithSeconds()),
		dbs:  make(map[string]*Database),
	}
}

// Register adds db to the set cleaned on every scheduled tick.
func (j *Janitor) Register(db *Database) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.dbs[db.Name] = db
}

// Unregister removes a database from the cleaning set.
func (j *Janitor) Unregister(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.dbs, name)
}

// Schedule adds a cron-spec-triggered CLEAN DATABASE pass over every
// registered database. spec follows robfig/cron's standard 6-field syntax
// (seconds first).
func (j *Janitor) Schedule(spec string) (cron.EntryID, error) {
	return j.cron.AddFunc(spec, j.runOnce)
}

// Start begins the cron scheduler loop.
func (j *Janitor) Start() { j.cron.Start() }

// Stop halts the scheduler and waits for any in-flight run to finish.
func (j *Janitor) Stop() { <-j.cron.Stop().Done() }

func (j *Janitor) runOnce() {
	j.mu.Lock()
	dbs := make([]*Database, 0, len(j.dbs))
	for _, db := range j.dbs {
		dbs = append(dbs, db)
	}
	j.mu.Unlock()

	for _, db := range dbs {
		if _, err := Execute(db, lang.CleanDatabase{Name: db.Name}); err != nil {
			log.Printf("janitor: clean pass on %q failed: %v", db.Name, err)
		}
	}
}

package readbuffer

import (
	"sort"
	"sync"
	"time"

	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/metrics"
)

// Store is the top-level, multi-tenant registry mapping database name to
// database. It is the only type callers outside this package interact with
// directly: every read operation looks up the named database and delegates,
// returning an explicit not-found error when the database is absent so
// callers can tell "database absent" from "database present but nothing
// matched".
type Store struct {
	mu        sync.RWMutex
	databases map[string]*Database
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{databases: make(map[string]*Database)}
}

// AddDatabase registers a database under the given name. Duplicate names are
// rejected; replacing a live database would silently discard its chunks.
func (s *Store) AddDatabase(name string, db *Database) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.databases[name]; dup {
		return errors.Newf(errors.ErrorTypeConflict, "database %q already exists", name)
	}
	s.databases[name] = db
	metrics.Databases.Inc()
	return nil
}

// RemoveDatabase removes the named database and everything it holds.
func (s *Store) RemoveDatabase(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.databases[name]; !ok {
		return errors.Newf(errors.ErrorTypeNotFound, "database %q not found", name)
	}
	delete(s.databases, name)
	metrics.Databases.Dec()
	return nil
}

// AddChunk builds a chunk from the given batches and adds it to the named
// database, creating the database on first use. This is the ingestion entry
// point the write path calls.
func (s *Store) AddChunk(database, chunkKey string, batches map[string]*Batch) error {
	chunk, err := NewChunk(chunkKey, batches)
	if err != nil {
		return err
	}

	s.mu.Lock()
	db, ok := s.databases[database]
	if !ok {
		db = NewDatabase()
		s.databases[database] = db
		metrics.Databases.Inc()
	}
	s.mu.Unlock()

	if err := db.AddChunk(chunk); err != nil {
		return err
	}
	metrics.ResidentBytes.Set(float64(s.Size()))
	return nil
}

// RemoveChunk removes a chunk from the named database.
func (s *Store) RemoveChunk(database, chunkKey string) error {
	db, err := s.database(database)
	if err != nil {
		return err
	}
	if err := db.RemoveChunk(chunkKey); err != nil {
		return err
	}
	metrics.ResidentBytes.Set(float64(s.Size()))
	return nil
}

// Size returns the total resident size across all databases in bytes. It is
// computed from the per-database totals so it holds after any sequence of
// chunk or database operations.
func (s *Store) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, db := range s.databases {
		total += db.Size()
	}
	return total
}

// DatabaseNames returns the registered database names in sorted order.
func (s *Store) DatabaseNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) database(name string) (*Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, ok := s.databases[name]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeNotFound, "database %q not found", name)
	}
	return db, nil
}

// Select executes a selection against the named database. See
// Database.Select.
func (s *Store) Select(database, table string, tr TimeRange, preds []Predicate, columns []string) (*Result, error) {
	return s.run(database, "select", func(db *Database) (*Result, error) {
		return db.Select(table, tr, preds, columns)
	})
}

// Aggregate executes a grouped aggregation against the named database. See
// Database.Aggregate.
func (s *Store) Aggregate(database, table string, tr TimeRange, preds []Predicate, groupCols []string, aggs []AggregateSpec) (*Result, error) {
	return s.run(database, "aggregate", func(db *Database) (*Result, error) {
		return db.Aggregate(table, tr, preds, groupCols, aggs)
	})
}

// AggregateWindow executes a windowed grouped aggregation against the named
// database. See Database.AggregateWindow.
func (s *Store) AggregateWindow(database, table string, tr TimeRange, preds []Predicate, groupCols []string, aggs []AggregateSpec, window int64) (*Result, error) {
	return s.run(database, "aggregate_window", func(db *Database) (*Result, error) {
		return db.AggregateWindow(table, tr, preds, groupCols, aggs, window)
	})
}

// TableNames lists the tables with matching rows in the named database. See
// Database.TableNames.
func (s *Store) TableNames(database string, tr TimeRange, preds []Predicate) (*Result, error) {
	return s.run(database, "table_names", func(db *Database) (*Result, error) {
		return db.TableNames(tr, preds)
	})
}

// TagKeys lists the tag keys with matching rows in the named database. See
// Database.TagKeys.
func (s *Store) TagKeys(database, table string, tr TimeRange, preds []Predicate) (*Result, error) {
	return s.run(database, "tag_keys", func(db *Database) (*Result, error) {
		return db.TagKeys(table, tr, preds)
	})
}

// TagValues lists distinct tag values per key in the named database. See
// Database.TagValues.
func (s *Store) TagValues(database, table string, tr TimeRange, preds []Predicate, tagKeys []string) (*Result, error) {
	return s.run(database, "tag_values", func(db *Database) (*Result, error) {
		return db.TagValues(table, tr, preds, tagKeys)
	})
}

func (s *Store) run(database, op string, fn func(*Database) (*Result, error)) (*Result, error) {
	db, err := s.database(database)
	if err != nil {
		metrics.Queries.WithLabelValues(op, "not_found").Inc()
		return nil, err
	}
	start := time.Now()
	res, err := fn(db)
	status := "ok"
	if err != nil {
		status = string(errors.TypeOf(err))
	}
	metrics.Queries.WithLabelValues(op, status).Inc()
	metrics.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return res, err
}

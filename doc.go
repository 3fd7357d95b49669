// Package strata provides an in-memory, columnar read buffer for time-series
// data. It ingests immutable chunks of row-aligned column vectors and answers
// selection, aggregation, windowed-aggregation and schema-discovery queries
// over them, across any number of isolated databases.
//
// # Architecture
//
// Data is organized as a strict hierarchy:
//
//	Store -> Database -> Chunk -> Table -> RowGroup -> Column
//
// A Store maps database names to databases; a Database maps chunk keys to
// chunks. Chunks are immutable once ingested: updates and backfills arrive as
// new chunks, never by mutating resident data. Each chunk holds one table per
// measurement, each table holds row groups, and each row group holds typed
// column vectors carrying min/max statistics.
//
// Queries prune at every level before touching data. Chunks and row groups
// whose time range cannot overlap the query's half-open [from, to) interval
// are skipped; within a row group each column consults its statistics before
// scanning rows. Aggregations run in two phases: every chunk computes partial
// states per group key, then the partials are merged so a group appearing in
// several chunks yields exactly one output row.
//
// # Quick Start
//
// Build a chunk from columnar batches and query it:
//
//	store := readbuffer.NewStore()
//	batch := readbuffer.NewBatch().
//	    AddTimeColumn([]int64{1e9, 2e9}).
//	    AddStringColumn("host", []string{"hostA", "hostB"}).
//	    AddFloatColumn("value", []float64{0.5, 0.7})
//	_ = store.AddChunk("mydb", "2024-01-01T00", map[string]*readbuffer.Batch{"cpu": batch})
//
//	res, _ := store.Aggregate("mydb", "cpu",
//	    readbuffer.TimeRange{From: 0, To: 3e9},
//	    nil,
//	    []string{"host"},
//	    []readbuffer.AggregateSpec{{Column: "value", Kind: aggregate.Sum}})
//
// # Key Packages
//
//	pkg/readbuffer  - Store, Database, Chunk, Table and the query operations
//	pkg/column      - Typed columnar vectors with statistics-based pruning
//	pkg/aggregate   - Partial aggregate states and merge semantics
//	pkg/value       - Typed scalar values and comparison operators
//	pkg/compression - Request/response body compression
//	pkg/arrowconv   - Arrow record to ingestion batch conversion
//	internal/server - HTTP API over the store
//
// # Server
//
// The strata binary serves the store over HTTP:
//
//	strata serve --config strata.yaml
//
// Configuration is YAML with ${VAR_NAME} environment substitution.
package strata

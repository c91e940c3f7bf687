// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - DocumentStore: merged documents (zstd-compressed BioC JSON) and their annotations
//   - PostingsStore: identifier and mention roaring bitmaps
//   - RunStore: batch run reports
//   - SchedulerStore: scheduled task state and history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.pubminer/data/pubminer.db
//
// # Thread Safety
//
// All operations are thread-safe. Transactions take the write lock up front
// and wait on a busy timeout, so concurrent batch workers queue for writes
// while readers proceed under WAL.
package sqlite

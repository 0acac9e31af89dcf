// Package sqlite provides the persistent local store of the client.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation,
// so the binary cross-compiles without CGO. Cached snapshots, freshness
// stamps and the replay queue all live in a single key-value table.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.questsync/data/questsync.db
//
// # Thread Safety
//
// Each call is a single statement and is atomic for its key. The database
// runs in WAL mode with a busy timeout so a CLI command and a running
// watcher can share the file.
package sqlite

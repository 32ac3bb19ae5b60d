// Package queue persists title processing state in SQLite.
//
// The Store manages database connections, schema initialization, and the
// status transitions of the title lifecycle. Items capture the source
// container path, the allocated title id, error messages, and artifact counts
// so the daemon worker, the CLI, and the HTTP API coordinate without shared
// in-memory state.
//
// The database is transient storage for in-flight work rather than a
// long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
package queue

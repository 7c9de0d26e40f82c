// Package store persists run history in SQLite: one row per
// transpilation run with its generated source, plus the per-function
// reports and the diagnostic union. The history backs the report command
// and lets two runs over the same (module hash, config hash) pair be
// compared byte for byte.
//
// The database uses WAL mode for concurrent reads and a single writer
// connection. All multi-row writes happen inside one transaction, so a
// run is either fully recorded or absent.
package store

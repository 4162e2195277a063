// Package sqlite provides a SQLite-backed implementation of driven.MetadataStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Each text record is one row in the text_records table;
// filename carries a UNIQUE constraint so at most one record exists per blob.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are tracked in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.docgate/data/docgate.db
package sqlite

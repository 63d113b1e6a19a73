// Package store provides durable backends for the cylinder ledger.
//
// Two tabular formats are supported, selected by file extension:
//   - SQLite (.db, .sqlite, .sqlite3, or ":memory:"): the default backend
//   - CSV (.csv): compatible with the plain cylinders.csv ledger format
//
// Every backend implements ledger.Store: Load returns the full record set in
// append order and Save replaces it wholesale. A missing store loads as an
// empty set; malformed content is an error.
//
// Timestamps are stored as RFC 3339 strings in UTC. A NULL (SQLite) or empty
// (CSV) UnloadTime is the in-oven marker and round-trips to a nil pointer.
package store

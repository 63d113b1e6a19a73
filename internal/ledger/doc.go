// Package ledger owns the set of cylinder records tracked through oven cycles.
//
// The Ledger is the single source of truth. It is loaded once from a Store,
// mutated only by AddCylinder and UnloadCylinder, and written back in full
// after every mutation. A record moves from in-oven to unloaded exactly once:
//
//	[create] --AddCylinder--> InOven --UnloadCylinder--> Unloaded (terminal)
//
// Records are identified by a generated UUIDv7, never by their position, so a
// stale reference can only ever resolve to the record it was taken from.
//
// Every unload regenerates the export projection (all unloaded records)
// through the configured Exporter. Storage or export failures after a
// mutation are reported as *StorageWriteError; the in-memory mutation is kept.
package ledger

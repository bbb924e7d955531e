// Package store provides SQLite-backed storage for compiled reconciliation
// queries.
//
// A run groups the queries compiled from one configuration directory. Each
// query is keyed by a content-addressed ID over its run, table, kind,
// layer, dialect and SQL text, so recording the same query twice is a
// no-op.
//
// # Ordering
//
// Queries carry a per-run seq assigned on insert. Reads order by
// seq ASC, id COLLATE BINARY ASC and never by timestamps.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

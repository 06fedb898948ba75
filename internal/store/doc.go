// Package store provides durable key-value storage for catalog preferences.
//
// The SQLite-backed Store keeps one table:
//   - preferences(key, value, seq): last write wins per key
//
// seq is a logical write counter, never a timestamp, so the latest write is
// identifiable without relying on wall time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Memory is a non-durable implementation with the same semantics, used by
// tests and ephemeral runs.
package store

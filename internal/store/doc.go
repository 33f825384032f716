// Package store provides SQLite-backed durable storage for matching runs.
//
// The store is an append-only log with:
//   - Instances: content-addressed instance bodies (keyed by ir.InstanceHash)
//   - Runs: one row per Execute call, with its matching hash and schedule
//   - Pairs: the matching of each run, in proposer declaration order
//   - Proposals: the proposal trace of each run, in seq order
//
// # Patterns
//
// Content-addressed instances
//   - instances.hash is ir.InstanceHash; writes are ON CONFLICT DO NOTHING
//   - the first body written for a hash wins
//
// Logical time
//   - runs.seq and proposals.seq are logical clocks, NEVER timestamps
//   - every list query orders by seq, then id COLLATE BINARY
//
// Atomic runs
//   - WriteRun stores run, pairs and proposals in one transaction
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

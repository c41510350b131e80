// Package runs keeps an in-memory registry of recent solves.
//
// The runs package implements:
//   - Thread-safe run storage and retrieval
//   - UUID run identifiers
//   - A size limit that evicts the oldest runs first
//   - Expiration of runs older than a maximum age
//
// Runs live only as long as the process. Nothing is written to disk.
//
// Usage:
//
//	manager := runs.NewManager(100)
//
//	run, err := manager.Create(result)
//	run, err = manager.Get(run.ID)
//	recent := manager.List()
//
//	removed := manager.CleanupExpired(time.Hour)
package runs

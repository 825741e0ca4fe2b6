// Package cache persists completed scan snapshots so a re-opened profile
// is served instantly while an incremental refresh revalidates it in the
// background.
//
// Snapshots live as one JSON document per profile key under the cache
// root, named by the FNV-1a hash of the key. A manifest tracks sizes and
// access times; writes go through a temp file and rename so readers never
// observe a torn snapshot. Pruning is least-recently-used with byte,
// entry-count and age budgets.
package cache

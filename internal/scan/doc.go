// Package scan orchestrates asset discovery for a launcher instance:
// collecting containers, fingerprinting them, running the scanner on a
// worker pool, assigning catalog keys, and building the tree and search
// indexes. Completed scans are persisted as cache snapshots; cache hits
// are served immediately and refreshed in the background by rescanning
// only the containers whose fingerprints changed.
package scan

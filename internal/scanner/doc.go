// Package scanner discovers asset containers inside a launcher instance
// and enumerates the asset candidates each one holds.
//
// Containers come in three shapes: mod jars and resource pack zips are
// read through archive/zip, resource pack folders are walked on disk, and
// the vanilla asset index is a JSON manifest referencing hashed files in
// the launcher's objects store.
package scanner

// Package fingerprint computes cheap change-detection signatures for asset
// containers. A signature captures enough metadata to decide whether a
// container needs re-scanning without reading its contents.
package fingerprint

import (
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"

	"asset-explorer/internal/catalog"
)

// Signature fingerprints one container. Archive-like containers (jars,
// zips, asset indexes) are covered by path, size and mtime. Directories
// additionally aggregate their file population: count, total bytes,
// newest mtime and an order-independent hash over every file's relative
// path, size and mtime, so renames that keep the totals stable are still
// detected.
type Signature struct {
	Kind          catalog.ContainerKind `json:"kind"`
	Path          string                `json:"path"`
	MtimeMs       int64                 `json:"mtimeMs"`
	Size          int64                 `json:"size"`
	FileCount     int64                 `json:"fileCount"`
	NewestMtimeMs int64                 `json:"newestMtimeMs"`
	ContentHash   uint64                `json:"contentHash,omitempty"`
}

// Compute builds the signature for a container path.
func Compute(path string, kind catalog.ContainerKind) (Signature, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Signature{}, fmt.Errorf("failed to read metadata for %s: %w", path, err)
	}

	sig := Signature{
		Kind:    kind,
		Path:    path,
		MtimeMs: info.ModTime().UnixMilli(),
	}

	if kind != catalog.ContainerDirectory {
		sig.Size = info.Size()
		sig.NewestMtimeMs = sig.MtimeMs
		return sig, nil
	}

	walkErr := filepath.WalkDir(path, func(entry string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		meta, err := d.Info()
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(path, entry)
		if err != nil {
			return nil
		}

		mtime := meta.ModTime().UnixMilli()
		sig.FileCount++
		sig.Size += meta.Size()
		if mtime > sig.NewestMtimeMs {
			sig.NewestMtimeMs = mtime
		}
		// XOR keeps the accumulator independent of walk order.
		sig.ContentHash ^= fileDigest(filepath.ToSlash(rel), meta.Size(), mtime)
		return nil
	})
	if walkErr != nil {
		return Signature{}, fmt.Errorf("failed to walk %s: %w", path, walkErr)
	}

	return sig, nil
}

func fileDigest(relPath string, size, mtimeMs int64) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%d\x00%d", relPath, size, mtimeMs)
	return h.Sum64()
}

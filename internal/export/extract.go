package export

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"asset-explorer/internal/catalog"
)

// ArchiveCache keeps zip readers open across jobs on the same worker so
// exporting many entries from one jar opens it once.
type ArchiveCache struct {
	readers map[string]*zip.ReadCloser
}

// NewArchiveCache returns an empty cache.
func NewArchiveCache() *ArchiveCache {
	return &ArchiveCache{readers: make(map[string]*zip.ReadCloser)}
}

// Close releases all cached readers.
func (c *ArchiveCache) Close() {
	for path, reader := range c.readers {
		_ = reader.Close()
		delete(c.readers, path)
	}
}

func (c *ArchiveCache) open(path string) (*zip.ReadCloser, error) {
	if reader, ok := c.readers[path]; ok {
		return reader, nil
	}
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	c.readers[path] = reader
	return reader, nil
}

// ExtractBytes reads an asset's raw contents from its container.
func ExtractBytes(asset *catalog.Record, cache *ArchiveCache) ([]byte, error) {
	switch asset.ContainerKind {
	case catalog.ContainerDirectory:
		path := filepath.Join(asset.ContainerPath, filepath.FromSlash(asset.EntryPath))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
		return data, nil

	case catalog.ContainerAssetIndex:
		return nil, errors.New("asset index containers are metadata-only and cannot be extracted")

	case catalog.ContainerZip, catalog.ContainerJar:
		reader, err := cache.open(asset.ContainerPath)
		if err != nil {
			return nil, err
		}
		file, err := reader.Open(asset.EntryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %s: %w", asset.EntryPath, err)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", asset.EntryPath, err)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("unknown container kind %q", asset.ContainerKind)
	}
}

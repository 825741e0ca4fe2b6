package scanner

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"asset-explorer/internal/assetkinds"
	"asset-explorer/internal/catalog"
)

// ErrCancelled is returned when a cancellation probe fires mid-scan.
var ErrCancelled = errors.New("scan cancelled")

// cancelCheckInterval bounds how many entries are processed between
// cancellation probes.
const cancelCheckInterval = 256

// CancelFunc reports whether the surrounding scan has been cancelled.
type CancelFunc func() bool

// ScanContainer enumerates the asset candidates of one container.
func ScanContainer(c *Container, cancelled CancelFunc) ([]catalog.Candidate, error) {
	switch c.Kind {
	case catalog.ContainerDirectory:
		return scanDirectory(c, cancelled)
	case catalog.ContainerZip, catalog.ContainerJar:
		return scanArchive(c, cancelled)
	case catalog.ContainerAssetIndex:
		return scanAssetIndex(c, cancelled)
	default:
		return nil, fmt.Errorf("unknown container kind %q", c.Kind)
	}
}

func scanDirectory(c *Container, cancelled CancelFunc) ([]catalog.Candidate, error) {
	var candidates []catalog.Candidate
	processed := 0

	err := filepath.WalkDir(c.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		processed++
		if processed%cancelCheckInterval == 0 && cancelled() {
			return ErrCancelled
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(c.Path, path)
		if err != nil {
			return nil
		}
		relNormalized := filepath.ToSlash(rel)

		namespace, relPath, ok := ParseAssetPath(relNormalized)
		if !ok {
			return nil
		}
		candidates = append(candidates, newCandidate(c, namespace, relPath, relNormalized))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func scanArchive(c *Container, cancelled CancelFunc) ([]catalog.Candidate, error) {
	reader, err := zip.OpenReader(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", c.Path, err)
	}
	defer reader.Close()

	var candidates []catalog.Candidate
	for i, entry := range reader.File {
		if i%cancelCheckInterval == 0 && cancelled() {
			return nil, ErrCancelled
		}
		if entry.FileInfo().IsDir() {
			continue
		}

		entryPath := strings.ReplaceAll(entry.Name, "\\", "/")
		namespace, relPath, ok := ParseAssetPath(entryPath)
		if !ok {
			continue
		}
		candidates = append(candidates, newCandidate(c, namespace, relPath, entryPath))
	}
	return candidates, nil
}

type assetIndexFile struct {
	Objects map[string]assetIndexObject `json:"objects"`
}

type assetIndexObject struct {
	Hash string `json:"hash"`
}

// scanAssetIndex reads a vanilla asset index manifest. Only sound entries
// are surfaced: everything else in the objects store duplicates the
// client jar. The produced candidates point at the hashed object files so
// they extract like any directory container.
func scanAssetIndex(c *Container, cancelled CancelFunc) ([]catalog.Candidate, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset index %s: %w", c.Path, err)
	}

	var index assetIndexFile
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse asset index %s: %w", c.Path, err)
	}

	// <root>/indexes/<id>.json -> <root>/objects
	assetsRoot := filepath.Dir(filepath.Dir(c.Path))
	objectsRoot := filepath.Join(assetsRoot, "objects")

	// Walk the objects in sorted logical-path order so colliding keys
	// get the same .dupN suffixes on every rescan.
	logicalPaths := make([]string, 0, len(index.Objects))
	for logicalPath := range index.Objects {
		logicalPaths = append(logicalPaths, logicalPath)
	}
	sort.Strings(logicalPaths)

	var candidates []catalog.Candidate
	for processed, logicalPath := range logicalPaths {
		object := index.Objects[logicalPath]
		if processed%cancelCheckInterval == 0 && cancelled() {
			return nil, ErrCancelled
		}

		namespace, relPath, ok := strings.Cut(logicalPath, "/")
		if !ok || !strings.HasPrefix(relPath, "sounds/") {
			continue
		}

		extension := assetkinds.Extension(relPath)
		if !assetkinds.IsAudio(extension) || len(object.Hash) < 2 {
			continue
		}

		entryPath := object.Hash[:2] + "/" + object.Hash
		if !fileExists(filepath.Join(objectsRoot, object.Hash[:2], object.Hash)) {
			continue
		}

		candidates = append(candidates, catalog.Candidate{
			SourceKind:    c.SourceKind,
			SourceName:    c.SourceName,
			Namespace:     namespace,
			RelPath:       relPath,
			ContainerPath: objectsRoot,
			ContainerKind: catalog.ContainerDirectory,
			EntryPath:     entryPath,
			Extension:     extension,
			IsAudio:       true,
		})
	}
	return candidates, nil
}

// ParseAssetPath splits an entry path at its "assets" segment into the
// namespace and the namespace-relative asset path. Entries outside an
// assets tree, or directly below a namespace, are not assets.
func ParseAssetPath(entryPath string) (namespace, relPath string, ok bool) {
	segments := make([]string, 0, 8)
	for _, segment := range strings.Split(entryPath, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	assetsIndex := -1
	for i, segment := range segments {
		if segment == "assets" {
			assetsIndex = i
			break
		}
	}
	if assetsIndex < 0 || len(segments) <= assetsIndex+2 {
		return "", "", false
	}

	namespace = segments[assetsIndex+1]
	relPath = strings.Join(segments[assetsIndex+2:], "/")
	return namespace, relPath, true
}

func newCandidate(c *Container, namespace, relPath, entryPath string) catalog.Candidate {
	extension := assetkinds.Extension(relPath)
	return catalog.Candidate{
		SourceKind:    c.SourceKind,
		SourceName:    c.SourceName,
		Namespace:     namespace,
		RelPath:       relPath,
		ContainerPath: c.Path,
		ContainerKind: c.Kind,
		EntryPath:     entryPath,
		Extension:     extension,
		IsImage:       assetkinds.IsImage(extension),
		IsAudio:       assetkinds.IsAudio(extension),
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

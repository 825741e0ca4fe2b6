package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"asset-explorer/internal/catalog"
	"asset-explorer/internal/launcher"
)

// Container is one scannable unit of work.
type Container struct {
	SourceKind catalog.SourceKind
	SourceName string
	Kind       catalog.ContainerKind
	Path       string
}

// Key returns the container's stable identity used for signatures and
// incremental re-scan bookkeeping.
func (c *Container) Key() string {
	return c.SourceKind.KeyPrefix() + "::" + c.SourceName + "::" +
		c.Kind.StorageKey() + "::" + c.Path
}

// Selection controls which source families a scan covers.
type Selection struct {
	IncludeVanilla       bool
	IncludeMods          bool
	IncludeResourcePacks bool
}

// CollectContainers enumerates the containers for an instance, sorted by
// container key so scans are deterministic.
func CollectContainers(prismRoot, instanceDir, mcVersion string, sel Selection) ([]Container, error) {
	var containers []Container
	minecraftDir := filepath.Join(instanceDir, "minecraft")

	if sel.IncludeMods {
		mods, err := collectModJars(filepath.Join(minecraftDir, "mods"))
		if err != nil {
			return nil, err
		}
		containers = append(containers, mods...)
	}

	if sel.IncludeResourcePacks {
		packs, err := collectResourcePacks(filepath.Join(minecraftDir, "resourcepacks"))
		if err != nil {
			return nil, err
		}
		containers = append(containers, packs...)
	}

	if sel.IncludeVanilla {
		sourceName := "minecraft-" + mcVersion
		if jar := launcher.ClientJarPath(prismRoot, mcVersion); jar != "" {
			containers = append(containers, Container{
				SourceKind: catalog.SourceVanilla,
				SourceName: sourceName,
				Kind:       catalog.ContainerJar,
				Path:       jar,
			})
		}
		if index := launcher.AssetIndexPath(prismRoot, mcVersion); index != "" {
			containers = append(containers, Container{
				SourceKind: catalog.SourceVanilla,
				SourceName: sourceName,
				Kind:       catalog.ContainerAssetIndex,
				Path:       index,
			})
		}
	}

	sort.Slice(containers, func(i, j int) bool {
		return containers[i].Key() < containers[j].Key()
	})
	return containers, nil
}

func collectModJars(modsDir string) ([]Container, error) {
	entries, err := os.ReadDir(modsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read mods directory: %w", err)
	}

	var containers []Container
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".jar") {
			continue
		}
		containers = append(containers, Container{
			SourceKind: catalog.SourceMod,
			SourceName: strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Kind:       catalog.ContainerJar,
			Path:       filepath.Join(modsDir, entry.Name()),
		})
	}
	return containers, nil
}

func collectResourcePacks(packsDir string) ([]Container, error) {
	entries, err := os.ReadDir(packsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read resourcepacks directory: %w", err)
	}

	var containers []Container
	for _, entry := range entries {
		path := filepath.Join(packsDir, entry.Name())
		switch {
		case entry.IsDir():
			containers = append(containers, Container{
				SourceKind: catalog.SourceResourcePack,
				SourceName: entry.Name(),
				Kind:       catalog.ContainerDirectory,
				Path:       path,
			})
		case strings.EqualFold(filepath.Ext(entry.Name()), ".zip"):
			containers = append(containers, Container{
				SourceKind: catalog.SourceResourcePack,
				SourceName: strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
				Kind:       catalog.ContainerZip,
				Path:       path,
			})
		}
	}
	return containers, nil
}

package launcher

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Instance describes one launcher instance directory.
type Instance struct {
	FolderName       string `json:"folderName"`
	DisplayName      string `json:"displayName"`
	Path             string `json:"path"`
	MinecraftVersion string `json:"minecraftVersion,omitempty"`
}

type mmcPack struct {
	Components []mmcComponent `json:"components"`
}

type mmcComponent struct {
	UID     string `json:"uid"`
	Version string `json:"version"`
}

// ListInstances enumerates the instances below a Prism root. Folders
// without an mmc-pack.json or a minecraft directory are skipped; hidden
// folders are ignored. Results are sorted by display name.
func ListInstances(prismRoot string) ([]Instance, error) {
	prismRoot = ExpandHome(prismRoot)
	if err := ValidateRoot(prismRoot); err != nil {
		return nil, err
	}

	instancesDir := filepath.Join(prismRoot, "instances")
	entries, err := os.ReadDir(instancesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Instance{}, nil
		}
		return nil, fmt.Errorf("failed to read instances directory: %w", err)
	}

	instances := make([]Instance, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		instancePath := filepath.Join(instancesDir, entry.Name())
		packPath := filepath.Join(instancePath, "mmc-pack.json")
		if !isFile(packPath) || !isDir(filepath.Join(instancePath, "minecraft")) {
			continue
		}

		displayName := instanceDisplayName(instancePath)
		if displayName == "" {
			displayName = entry.Name()
		}
		version, _ := ParseMinecraftVersion(packPath)

		instances = append(instances, Instance{
			FolderName:       entry.Name(),
			DisplayName:      displayName,
			Path:             instancePath,
			MinecraftVersion: version,
		})
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].DisplayName < instances[j].DisplayName
	})
	return instances, nil
}

// ResolveInstanceDir accepts either an instance folder name below the
// root or an absolute path to an instance directory.
func ResolveInstanceDir(prismRoot, instanceFolder string) (string, error) {
	requested := ExpandHome(instanceFolder)
	if isDir(requested) && filepath.Base(filepath.Dir(requested)) == "instances" {
		return requested, nil
	}

	path := filepath.Join(prismRoot, "instances", filepath.Base(instanceFolder))
	if !isDir(path) {
		return "", fmt.Errorf("instance directory not found: %s", path)
	}
	return path, nil
}

// ParseMinecraftVersion reads the net.minecraft component version from an
// mmc-pack.json file.
func ParseMinecraftVersion(packPath string) (string, error) {
	data, err := os.ReadFile(packPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", packPath, err)
	}

	var pack mmcPack
	if err := json.Unmarshal(data, &pack); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", packPath, err)
	}

	for _, component := range pack.Components {
		if component.UID == "net.minecraft" && component.Version != "" {
			return component.Version, nil
		}
	}
	return "", fmt.Errorf("no net.minecraft component in %s", packPath)
}

// instanceDisplayName extracts the name= entry from the [General] section
// of instance.cfg. Prism writes an INI file; a full INI parser is not
// needed for one key.
func instanceDisplayName(instanceDir string) string {
	file, err := os.Open(filepath.Join(instanceDir, "instance.cfg"))
	if err != nil {
		return ""
	}
	defer file.Close()

	inGeneral := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inGeneral = strings.EqualFold(line, "[General]")
			continue
		}
		if inGeneral {
			if name, ok := strings.CutPrefix(line, "name="); ok {
				if name = strings.TrimSpace(name); name != "" {
					return name
				}
			}
		}
	}
	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

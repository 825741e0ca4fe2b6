package launcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type metaVersion struct {
	AssetIndex *metaAssetIndex `json:"assetIndex"`
	Assets     string          `json:"assets"`
}

type metaAssetIndex struct {
	ID string `json:"id"`
}

// ClientJarPath returns the vanilla client jar shipped by the launcher
// for a Minecraft version, or an empty string when it is not present.
func ClientJarPath(prismRoot, mcVersion string) string {
	path := filepath.Join(prismRoot, "libraries", "com", "mojang", "minecraft", mcVersion,
		fmt.Sprintf("minecraft-%s-client.jar", mcVersion))
	if isFile(path) {
		return path
	}
	return ""
}

// AssetIndexPath resolves the vanilla asset index JSON for a Minecraft
// version by following the launcher's meta manifest. Vanilla sounds live
// in the hashed objects store referenced by this index, not in the client
// jar.
func AssetIndexPath(prismRoot, mcVersion string) string {
	metaPath := filepath.Join(prismRoot, "meta", "net.minecraft", mcVersion+".json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return ""
	}

	var meta metaVersion
	if err := json.Unmarshal(data, &meta); err != nil {
		return ""
	}

	indexID := meta.Assets
	if meta.AssetIndex != nil && meta.AssetIndex.ID != "" {
		indexID = meta.AssetIndex.ID
	}
	if indexID == "" {
		return ""
	}

	indexPath := filepath.Join(prismRoot, "assets", "indexes", indexID+".json")
	if isFile(indexPath) {
		return indexPath
	}
	return ""
}

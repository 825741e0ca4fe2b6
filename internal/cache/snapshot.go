package cache

import (
	"asset-explorer/internal/catalog"
	"asset-explorer/internal/fingerprint"
	"asset-explorer/internal/search"
	"asset-explorer/internal/tree"
)

// SchemaVersion invalidates persisted snapshots whenever their layout
// changes.
const SchemaVersion = 1

// Snapshot is the cached result of one completed scan.
type Snapshot struct {
	SchemaVersion        int                              `json:"schemaVersion"`
	ProfileKey           string                           `json:"profileKey"`
	PrismRoot            string                           `json:"prismRoot"`
	InstanceFolder       string                           `json:"instanceFolder"`
	IncludeVanilla       bool                             `json:"includeVanilla"`
	IncludeMods          bool                             `json:"includeMods"`
	IncludeResourcePacks bool                             `json:"includeResourcePacks"`
	CreatedAtMs          int64                            `json:"createdAtMs"`
	LastUsedAtMs         int64                            `json:"lastUsedAtMs"`
	AppVersion           string                           `json:"appVersion"`
	Assets               []catalog.Record                 `json:"assets"`
	SearchRecords        []search.Record                  `json:"searchRecords"`
	TreeChildren         tree.Index                       `json:"treeChildren"`
	ContainerAssets      map[string][]catalog.Record      `json:"containerAssets"`
	ContainerSignatures  map[string]fingerprint.Signature `json:"containerSignatures"`
}

// ProfileKey derives the cache identity of a scan request: root path,
// instance folder and the selected source families.
func ProfileKey(prismRoot, instanceFolder string, includeVanilla, includeMods, includeResourcePacks bool) string {
	flag := func(on bool, ch byte) byte {
		if on {
			return ch
		}
		return '-'
	}
	return prismRoot + "::" + instanceFolder + "::" +
		string([]byte{flag(includeVanilla, 'v'), flag(includeMods, 'm'), flag(includeResourcePacks, 'r')})
}

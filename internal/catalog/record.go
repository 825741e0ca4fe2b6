package catalog

// SourceKind identifies where a container came from.
type SourceKind string

const (
	SourceVanilla      SourceKind = "vanilla"
	SourceMod          SourceKind = "mod"
	SourceResourcePack SourceKind = "resourcepack"
)

// KeyPrefix returns the leading segment used in asset keys.
func (k SourceKind) KeyPrefix() string {
	return string(k)
}

// TreeRootName returns the top-level folder the source appears under in
// the materialized tree.
func (k SourceKind) TreeRootName() string {
	switch k {
	case SourceVanilla:
		return "vanilla"
	case SourceMod:
		return "mods"
	case SourceResourcePack:
		return "resourcepacks"
	default:
		return string(k)
	}
}

// ContainerKind identifies how a container's contents are read.
type ContainerKind string

const (
	ContainerDirectory  ContainerKind = "directory"
	ContainerZip        ContainerKind = "zip"
	ContainerJar        ContainerKind = "jar"
	ContainerAssetIndex ContainerKind = "assetIndex"
)

// StorageKey returns the stable identifier used for container signatures
// and cache bookkeeping.
func (k ContainerKind) StorageKey() string {
	if k == ContainerAssetIndex {
		return "asset_index"
	}
	return string(k)
}

// Record is a fully identified asset discovered during a scan.
type Record struct {
	AssetID       string        `json:"assetId"`
	Key           string        `json:"key"`
	SourceKind    SourceKind    `json:"sourceKind"`
	SourceName    string        `json:"sourceName"`
	Namespace     string        `json:"namespace"`
	RelPath       string        `json:"relPath"`
	Extension     string        `json:"extension"`
	IsImage       bool          `json:"isImage"`
	IsAudio       bool          `json:"isAudio"`
	ContainerPath string        `json:"containerPath"`
	ContainerKind ContainerKind `json:"containerKind"`
	EntryPath     string        `json:"entryPath"`
}

// FileName returns the final segment of the asset's relative path.
func (r *Record) FileName() string {
	path := r.RelPath
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// Candidate is a raw discovery emitted by container scanners before key
// assignment.
type Candidate struct {
	SourceKind    SourceKind
	SourceName    string
	Namespace     string
	RelPath       string
	ContainerPath string
	ContainerKind ContainerKind
	EntryPath     string
	Extension     string
	IsImage       bool
	IsAudio       bool
}

// Package tree materializes scanned assets into a lazily browsable folder
// hierarchy: source family, source name, namespace, then the folders of
// the asset path.
package tree

import (
	"sort"
	"strings"

	"asset-explorer/internal/catalog"
)

// RootID is the identifier of the implicit root node.
const RootID = "root"

// NodeKind distinguishes folders from files.
type NodeKind string

const (
	NodeFolder NodeKind = "folder"
	NodeFile   NodeKind = "file"
)

// Node is one entry in the materialized tree.
type Node struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Kind        NodeKind `json:"kind"`
	HasChildren bool     `json:"hasChildren"`
	AssetID     string   `json:"assetId,omitempty"`
}

// Index maps node ids to their children. Inserts are idempotent so the
// same asset can be re-added during incremental refreshes.
type Index map[string][]Node

// NewIndex returns an index holding only the empty root.
func NewIndex() Index {
	return Index{RootID: nil}
}

// Insert adds the folder chain and file node for one asset.
func (idx Index) Insert(asset *catalog.Record) {
	parentID := RootID
	for _, segment := range FolderSegments(asset) {
		name := segment
		if name == "" {
			name = "(root)"
		}
		nodeID := childNodeID(parentID, name)
		idx.upsert(parentID, Node{
			ID:          nodeID,
			Name:        name,
			Kind:        NodeFolder,
			HasChildren: true,
		})
		if _, ok := idx[nodeID]; !ok {
			idx[nodeID] = nil
		}
		parentID = nodeID
	}

	idx.upsert(parentID, Node{
		ID:      parentID + "/file:" + asset.AssetID,
		Name:    asset.FileName(),
		Kind:    NodeFile,
		AssetID: asset.AssetID,
	})
}

// Children returns the sorted children of a node: folders before files,
// both case-insensitively by name. An empty nodeID means the root.
func (idx Index) Children(nodeID string) []Node {
	if nodeID == "" {
		nodeID = RootID
	}

	children := append([]Node(nil), idx[nodeID]...)
	sort.SliceStable(children, func(i, j int) bool {
		if children[i].Kind != children[j].Kind {
			return children[i].Kind == NodeFolder
		}
		return strings.ToLower(children[i].Name) < strings.ToLower(children[j].Name)
	})
	return children
}

func (idx Index) upsert(parentID string, node Node) {
	children := idx[parentID]
	for i := range children {
		if children[i].ID == node.ID {
			return
		}
	}
	idx[parentID] = append(children, node)
}

// FolderSegments lists the folder chain an asset lives under, starting at
// the source family.
func FolderSegments(asset *catalog.Record) []string {
	segments := []string{
		asset.SourceKind.TreeRootName(),
		asset.SourceName,
		asset.Namespace,
	}
	if idx := strings.LastIndexByte(asset.RelPath, '/'); idx > 0 {
		segments = append(segments, strings.Split(asset.RelPath[:idx], "/")...)
	}
	return segments
}

// FolderNodeID returns the id of the folder node that directly contains
// an asset.
func FolderNodeID(asset *catalog.Record) string {
	nodeID := RootID
	for _, segment := range FolderSegments(asset) {
		if segment == "" {
			segment = "(root)"
		}
		nodeID = childNodeID(nodeID, segment)
	}
	return nodeID
}

// InSubtree reports whether folderNodeID lies at or below scopeID.
func InSubtree(folderNodeID, scopeID string) bool {
	return folderNodeID == scopeID || strings.HasPrefix(folderNodeID, scopeID+"/")
}

// childNodeID derives a child id from its parent. Slashes inside a
// segment are stripped so they cannot fake deeper nesting.
func childNodeID(parentID, segment string) string {
	return parentID + "/" + strings.ReplaceAll(segment, "/", "")
}

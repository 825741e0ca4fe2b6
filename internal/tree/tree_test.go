package tree

import (
	"testing"

	"asset-explorer/internal/catalog"
)

func modAsset(id, relPath string) catalog.Record {
	return catalog.Record{
		AssetID:    id,
		Key:        id,
		SourceKind: catalog.SourceMod,
		SourceName: "sample",
		Namespace:  "sample",
		RelPath:    relPath,
	}
}

func TestInsertBuildsFolderChain(t *testing.T) {
	idx := NewIndex()
	asset := modAsset("mod.sample.sample.textures.item.star.png", "textures/item/star.png")
	idx.Insert(&asset)

	roots := idx.Children("")
	if len(roots) != 1 || roots[0].Name != "mods" || roots[0].Kind != NodeFolder {
		t.Fatalf("root children = %+v", roots)
	}

	folderID := FolderNodeID(&asset)
	if folderID != "root/mods/sample/sample/textures/item" {
		t.Errorf("folder node id = %q", folderID)
	}

	files := idx.Children(folderID)
	if len(files) != 1 || files[0].Kind != NodeFile || files[0].AssetID != asset.AssetID {
		t.Fatalf("leaf children = %+v", files)
	}
	if files[0].Name != "star.png" {
		t.Errorf("file name = %q", files[0].Name)
	}
}

func TestInsertIsIdempotent(t *testing.T) {
	idx := NewIndex()
	asset := modAsset("mod.sample.sample.textures.item.star.png", "textures/item/star.png")
	idx.Insert(&asset)
	idx.Insert(&asset)

	if got := idx.Children(""); len(got) != 1 {
		t.Errorf("root children after double insert = %+v", got)
	}
	if got := idx.Children(FolderNodeID(&asset)); len(got) != 1 {
		t.Errorf("leaf children after double insert = %+v", got)
	}
}

func TestChildrenSortsFoldersBeforeFiles(t *testing.T) {
	idx := NewIndex()
	nested := modAsset("a", "textures/zebra/deep.png")
	flat := modAsset("b", "textures/Apple.png")
	other := modAsset("c", "textures/banana.png")
	for _, asset := range []catalog.Record{nested, flat, other} {
		idx.Insert(&asset)
	}

	children := idx.Children("root/mods/sample/sample/textures")
	if len(children) != 3 {
		t.Fatalf("children = %+v", children)
	}
	if children[0].Kind != NodeFolder || children[0].Name != "zebra" {
		t.Errorf("folders should sort first: %+v", children)
	}
	// Case-insensitive file ordering.
	if children[1].Name != "Apple.png" || children[2].Name != "banana.png" {
		t.Errorf("file order wrong: %q, %q", children[1].Name, children[2].Name)
	}
}

func TestInSubtree(t *testing.T) {
	tests := []struct {
		folder string
		scope  string
		want   bool
	}{
		{"root/mods/sample", "root/mods/sample", true},
		{"root/mods/sample/sample/textures", "root/mods/sample", true},
		{"root/mods/sample2", "root/mods/sample", false},
		{"root/mods", "root/mods/sample", false},
	}
	for _, tt := range tests {
		if got := InSubtree(tt.folder, tt.scope); got != tt.want {
			t.Errorf("InSubtree(%q, %q) = %v, want %v", tt.folder, tt.scope, got, tt.want)
		}
	}
}

func TestSegmentsWithSlashlessEscaping(t *testing.T) {
	asset := modAsset("x", "pack.png")
	asset.SourceName = "weird/name"
	idx := NewIndex()
	idx.Insert(&asset)

	folderID := FolderNodeID(&asset)
	if folderID != "root/mods/weirdname/sample" {
		t.Errorf("folder id = %q", folderID)
	}
}

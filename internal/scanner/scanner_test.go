package scanner

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"asset-explorer/internal/catalog"
)

func never() bool { return false }

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	writer := zip.NewWriter(file)
	for name, content := range entries {
		entry, err := writer.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestParseAssetPath(t *testing.T) {
	tests := []struct {
		name          string
		entryPath     string
		wantNamespace string
		wantRelPath   string
		wantOK        bool
	}{
		{"plain", "assets/minecraft/textures/item/apple.png", "minecraft", "textures/item/apple.png", true},
		{"nested prefix", "META-INF/jarjar/inner/assets/sample/sounds/hit.ogg", "sample", "sounds/hit.ogg", true},
		{"no assets segment", "data/minecraft/recipes/apple.json", "", "", false},
		{"namespace only", "assets/minecraft", "", "", false},
		{"file directly in namespace counts", "assets/minecraft/pack.png", "minecraft", "pack.png", true},
		{"empty segments collapse", "assets//minecraft//textures//a.png", "minecraft", "textures/a.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			namespace, relPath, ok := ParseAssetPath(tt.entryPath)
			if namespace != tt.wantNamespace || relPath != tt.wantRelPath || ok != tt.wantOK {
				t.Errorf("ParseAssetPath(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.entryPath, namespace, relPath, ok, tt.wantNamespace, tt.wantRelPath, tt.wantOK)
			}
		})
	}
}

func TestScanArchiveContainer(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "sample.jar")
	writeZip(t, jar, map[string]string{
		"assets/sample/textures/item/star.png": "png",
		"assets/sample/sounds/step.ogg":        "ogg",
		"assets/sample/lang/en_us.json":        "{}",
		"META-INF/MANIFEST.MF":                 "Manifest-Version: 1.0",
		"sample/Code.class":                    "class",
	})

	container := Container{
		SourceKind: catalog.SourceMod,
		SourceName: "sample",
		Kind:       catalog.ContainerJar,
		Path:       jar,
	}

	candidates, err := ScanContainer(&container, never)
	if err != nil {
		t.Fatalf("ScanContainer: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates, want 3: %+v", len(candidates), candidates)
	}

	byPath := make(map[string]catalog.Candidate)
	for _, candidate := range candidates {
		byPath[candidate.RelPath] = candidate
	}

	star := byPath["textures/item/star.png"]
	if !star.IsImage || star.IsAudio || star.Extension != "png" {
		t.Errorf("star candidate misclassified: %+v", star)
	}
	if star.Namespace != "sample" || star.ContainerKind != catalog.ContainerJar {
		t.Errorf("star candidate wrong provenance: %+v", star)
	}

	step := byPath["sounds/step.ogg"]
	if !step.IsAudio || step.EntryPath != "assets/sample/sounds/step.ogg" {
		t.Errorf("step candidate wrong: %+v", step)
	}
}

func TestScanDirectoryContainer(t *testing.T) {
	packDir := filepath.Join(t.TempDir(), "MyPack")
	texture := filepath.Join(packDir, "assets", "minecraft", "textures", "block", "stone.png")
	if err := os.MkdirAll(filepath.Dir(texture), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(texture, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	// pack.mcmeta sits outside the assets tree and is skipped.
	if err := os.WriteFile(filepath.Join(packDir, "pack.mcmeta"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	container := Container{
		SourceKind: catalog.SourceResourcePack,
		SourceName: "MyPack",
		Kind:       catalog.ContainerDirectory,
		Path:       packDir,
	}

	candidates, err := ScanContainer(&container, never)
	if err != nil {
		t.Fatalf("ScanContainer: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1: %+v", len(candidates), candidates)
	}
	if candidates[0].RelPath != "textures/block/stone.png" || candidates[0].Namespace != "minecraft" {
		t.Errorf("unexpected candidate %+v", candidates[0])
	}
	if candidates[0].EntryPath != "assets/minecraft/textures/block/stone.png" {
		t.Errorf("entry path = %q", candidates[0].EntryPath)
	}
}

func TestScanAssetIndexContainer(t *testing.T) {
	root := t.TempDir()
	objects := filepath.Join(root, "assets", "objects")
	hash := "1f4a3b567890abcdef1234567890abcdef123456"
	if err := os.MkdirAll(filepath.Join(objects, hash[:2]), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(objects, hash[:2], hash), []byte("ogg"), 0o644); err != nil {
		t.Fatal(err)
	}

	indexDir := filepath.Join(root, "assets", "indexes")
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		t.Fatal(err)
	}
	indexPath := filepath.Join(indexDir, "5.json")
	index := `{"objects":{
		"minecraft/sounds/block/grass/step1.ogg":{"hash":"` + hash + `"},
		"minecraft/textures/block/stone.png":{"hash":"` + hash + `"},
		"minecraft/sounds/missing.ogg":{"hash":"00000000000000000000000000000000deadbeef"}
	}}`
	if err := os.WriteFile(indexPath, []byte(index), 0o644); err != nil {
		t.Fatal(err)
	}

	container := Container{
		SourceKind: catalog.SourceVanilla,
		SourceName: "minecraft-1.20.1",
		Kind:       catalog.ContainerAssetIndex,
		Path:       indexPath,
	}

	candidates, err := ScanContainer(&container, never)
	if err != nil {
		t.Fatalf("ScanContainer: %v", err)
	}
	// Textures and missing object files are filtered out.
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1: %+v", len(candidates), candidates)
	}

	got := candidates[0]
	if got.RelPath != "sounds/block/grass/step1.ogg" || !got.IsAudio {
		t.Errorf("unexpected candidate %+v", got)
	}
	if got.EntryPath != hash[:2]+"/"+hash {
		t.Errorf("entry path = %q", got.EntryPath)
	}
	if got.ContainerKind != catalog.ContainerDirectory || got.ContainerPath != objects {
		t.Errorf("candidate should extract from objects store: %+v", got)
	}
}

func TestScanAssetIndexOrderIsStable(t *testing.T) {
	root := t.TempDir()
	objects := filepath.Join(root, "assets", "objects")
	hash := "1f4a3b567890abcdef1234567890abcdef123456"
	if err := os.MkdirAll(filepath.Join(objects, hash[:2]), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(objects, hash[:2], hash), []byte("ogg"), 0o644); err != nil {
		t.Fatal(err)
	}

	indexDir := filepath.Join(root, "assets", "indexes")
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		t.Fatal(err)
	}
	indexPath := filepath.Join(indexDir, "5.json")
	// Both entries normalize to the same dotted key, so a stable walk
	// order is what keeps base/.dup1 assignment identical across scans.
	index := `{"objects":{
		"minecraft/sounds/step.one.ogg":{"hash":"` + hash + `"},
		"minecraft/sounds/step_one.ogg":{"hash":"` + hash + `"}
	}}`
	if err := os.WriteFile(indexPath, []byte(index), 0o644); err != nil {
		t.Fatal(err)
	}

	container := Container{
		SourceKind: catalog.SourceVanilla,
		SourceName: "minecraft-1.20.1",
		Kind:       catalog.ContainerAssetIndex,
		Path:       indexPath,
	}

	var firstOrder []string
	for run := 0; run < 5; run++ {
		candidates, err := ScanContainer(&container, never)
		if err != nil {
			t.Fatalf("ScanContainer: %v", err)
		}
		order := make([]string, len(candidates))
		for i, candidate := range candidates {
			order[i] = candidate.RelPath
		}
		if run == 0 {
			firstOrder = order
			continue
		}
		for i := range order {
			if order[i] != firstOrder[i] {
				t.Fatalf("run %d order %v differs from %v", run, order, firstOrder)
			}
		}
	}
	if len(firstOrder) != 2 || firstOrder[0] > firstOrder[1] {
		t.Fatalf("candidates not in sorted logical order: %v", firstOrder)
	}
}

func TestCollectContainers(t *testing.T) {
	root := t.TempDir()
	instanceDir := filepath.Join(root, "instances", "fabric")
	minecraftDir := filepath.Join(instanceDir, "minecraft")
	modsDir := filepath.Join(minecraftDir, "mods")
	packsDir := filepath.Join(minecraftDir, "resourcepacks")
	for _, dir := range []string{modsDir, packsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	writeZip(t, filepath.Join(modsDir, "sample-mod.jar"), map[string]string{"a": "a"})
	if err := os.WriteFile(filepath.Join(modsDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeZip(t, filepath.Join(packsDir, "Pretty.zip"), map[string]string{"a": "a"})
	if err := os.MkdirAll(filepath.Join(packsDir, "FolderPack"), 0o755); err != nil {
		t.Fatal(err)
	}

	jarPath := filepath.Join(root, "libraries", "com", "mojang", "minecraft", "1.20.1", "minecraft-1.20.1-client.jar")
	if err := os.MkdirAll(filepath.Dir(jarPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jarPath, []byte("jar"), 0o644); err != nil {
		t.Fatal(err)
	}

	containers, err := CollectContainers(root, instanceDir, "1.20.1", Selection{
		IncludeVanilla:       true,
		IncludeMods:          true,
		IncludeResourcePacks: true,
	})
	if err != nil {
		t.Fatalf("CollectContainers: %v", err)
	}

	var summary []string
	for _, container := range containers {
		summary = append(summary, string(container.SourceKind)+"/"+container.SourceName+"/"+string(container.Kind))
	}
	sort.Strings(summary)

	want := []string{
		"mod/sample-mod/jar",
		"resourcepack/FolderPack/directory",
		"resourcepack/Pretty/zip",
		"vanilla/minecraft-1.20.1/jar",
	}
	if len(summary) != len(want) {
		t.Fatalf("containers = %v, want %v", summary, want)
	}
	for i := range want {
		if summary[i] != want[i] {
			t.Errorf("containers = %v, want %v", summary, want)
			break
		}
	}

	// Deterministic ordering by container key.
	for i := 1; i < len(containers); i++ {
		if containers[i-1].Key() >= containers[i].Key() {
			t.Errorf("containers not sorted by key at %d", i)
		}
	}
}

func TestScanCancellation(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "big.jar")
	entries := make(map[string]string, 600)
	for i := 0; i < 600; i++ {
		entries[filepath.Join("assets", "sample", "textures", "t"+string(rune('a'+i%26))+string(rune('a'+i/26%26))+string(rune('a'+i/676)))+".png"] = "x"
	}
	writeZip(t, jar, entries)

	container := Container{SourceKind: catalog.SourceMod, SourceName: "big", Kind: catalog.ContainerJar, Path: jar}
	_, err := ScanContainer(&container, func() bool { return true })
	if err != ErrCancelled {
		t.Errorf("err = %v, want ErrCancelled", err)
	}
}

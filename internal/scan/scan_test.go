package scan

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"asset-explorer/internal/cache"
	"asset-explorer/internal/catalog"
	"asset-explorer/internal/fingerprint"
	"asset-explorer/internal/scanner"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer file.Close()
	writer := zip.NewWriter(file)
	for name, body := range entries {
		entry, err := writer.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(body)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

// makeInstance builds a minimal Prism root with one instance and returns
// the root and the instance's minecraft directory.
func makeInstance(t *testing.T) (prismRoot, minecraftDir string) {
	t.Helper()
	prismRoot = t.TempDir()
	for _, dir := range []string{"instances", "libraries"} {
		if err := os.MkdirAll(filepath.Join(prismRoot, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	instanceDir := filepath.Join(prismRoot, "instances", "Fabric Test")
	minecraftDir = filepath.Join(instanceDir, "minecraft")
	if err := os.MkdirAll(minecraftDir, 0o755); err != nil {
		t.Fatal(err)
	}
	pack := `{"components":[{"uid":"net.minecraft","version":"1.21.1"}]}`
	if err := os.WriteFile(filepath.Join(instanceDir, "mmc-pack.json"), []byte(pack), 0o644); err != nil {
		t.Fatal(err)
	}
	return prismRoot, minecraftDir
}

func addModJar(t *testing.T, minecraftDir, name string, entries map[string]string) string {
	t.Helper()
	modsDir := filepath.Join(minecraftDir, "mods")
	if err := os.MkdirAll(modsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(modsDir, name)
	writeZip(t, path, entries)
	return path
}

func waitReady(t *testing.T, m *Manager, scanID string) *Status {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := m.Status(scanID)
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		switch status.Phase {
		case PhaseReady:
			return status
		case PhaseFailed, PhaseCancelled:
			t.Fatalf("scan ended in phase %s: %s", status.Phase, status.Error)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("scan did not finish in time")
	return nil
}

func waitTerminal(t *testing.T, m *Manager, scanID string) *Status {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := m.Status(scanID)
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		switch status.Phase {
		case PhaseReady, PhaseFailed, PhaseCancelled:
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("scan did not finish in time")
	return nil
}

func TestFullScanIndexesModAssets(t *testing.T) {
	prismRoot, minecraftDir := makeInstance(t)
	addModJar(t, minecraftDir, "sample.jar", map[string]string{
		"assets/sample/textures/item/gear.png": "png",
		"assets/sample/sounds/step.ogg":        "ogg",
		"fabric.mod.json":                      "{}",
	})

	m := NewManager(nil, nil, "test")
	status, err := m.StartScan(Request{
		PrismRoot:      prismRoot,
		InstanceFolder: "Fabric Test",
		IncludeMods:    true,
	})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	if status.FromCache {
		t.Error("fresh scan reported a cache hit")
	}

	final := waitReady(t, m, status.ScanID)
	if final.AssetsIndexed != 2 {
		t.Fatalf("indexed %d assets, want 2", final.AssetsIndexed)
	}

	snapshot, err := m.Snapshot(status.ScanID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	keys := make(map[string]bool, len(snapshot.Assets))
	for _, asset := range snapshot.Assets {
		keys[asset.Key] = true
	}
	if !keys["mod.sample.sample.textures.item.gear_png"] {
		t.Errorf("missing texture key, got %v", keys)
	}
	if !keys["mod.sample.sample.sounds.step_ogg"] {
		t.Errorf("missing sound key, got %v", keys)
	}
	if len(snapshot.SearchRecords) != 2 {
		t.Errorf("search records = %d, want 2", len(snapshot.SearchRecords))
	}
	if len(snapshot.TreeChildren["root"]) == 0 {
		t.Error("tree has no root children")
	}
}

func TestCorruptArchiveFailsScan(t *testing.T) {
	prismRoot, minecraftDir := makeInstance(t)
	addModJar(t, minecraftDir, "sample.jar", map[string]string{
		"assets/sample/textures/item/gear.png": "png",
	})
	modsDir := filepath.Join(minecraftDir, "mods")
	if err := os.WriteFile(filepath.Join(modsDir, "broken.jar"), []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(nil, nil, "test")
	status, err := m.StartScan(Request{
		PrismRoot:      prismRoot,
		InstanceFolder: "Fabric Test",
		IncludeMods:    true,
	})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}

	final := waitTerminal(t, m, status.ScanID)
	if final.Phase != PhaseFailed {
		t.Fatalf("phase = %s, want %s", final.Phase, PhaseFailed)
	}
	if final.Error == "" {
		t.Error("failed scan carries no error message")
	}
}

func TestScanUsesCacheAndRefreshes(t *testing.T) {
	prismRoot, minecraftDir := makeInstance(t)
	addModJar(t, minecraftDir, "sample.jar", map[string]string{
		"assets/sample/textures/item/gear.png": "png",
	})

	store, err := cache.NewStore(t.TempDir(), cache.Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	m := NewManager(store, nil, "test")
	request := Request{PrismRoot: prismRoot, InstanceFolder: "Fabric Test", IncludeMods: true}

	first, err := m.StartScan(request)
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	waitReady(t, m, first.ScanID)

	second, err := m.StartScan(request)
	if err != nil {
		t.Fatalf("second StartScan: %v", err)
	}
	if !second.FromCache {
		t.Fatal("second scan did not hit the cache")
	}
	// Cached results are available immediately, before the background
	// refresh settles.
	if _, err := m.Snapshot(second.ScanID); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	final := waitReady(t, m, second.ScanID)
	if final.AssetsIndexed != 1 {
		t.Errorf("indexed %d assets, want 1", final.AssetsIndexed)
	}
}

func TestRefreshPlanPartitionsContainers(t *testing.T) {
	dir := t.TempDir()
	unchangedPath := filepath.Join(dir, "steady.jar")
	changedPath := filepath.Join(dir, "moving.jar")
	writeZip(t, unchangedPath, map[string]string{"assets/a/textures/x.png": "x"})
	writeZip(t, changedPath, map[string]string{"assets/b/textures/y.png": "y"})

	containers := []scanner.Container{
		{SourceKind: catalog.SourceMod, SourceName: "steady", Kind: catalog.ContainerJar, Path: unchangedPath},
		{SourceKind: catalog.SourceMod, SourceName: "moving", Kind: catalog.ContainerJar, Path: changedPath},
	}

	previous := &cache.Snapshot{
		ContainerSignatures: make(map[string]fingerprint.Signature),
		ContainerAssets:     make(map[string][]catalog.Record),
	}
	for _, container := range containers {
		signature, err := fingerprint.Compute(container.Path, container.Kind)
		if err != nil {
			t.Fatal(err)
		}
		previous.ContainerSignatures[container.Key()] = signature
		previous.ContainerAssets[container.Key()] = []catalog.Record{}
	}
	removed := scanner.Container{SourceKind: catalog.SourceMod, SourceName: "gone", Kind: catalog.ContainerJar, Path: filepath.Join(dir, "gone.jar")}
	previous.ContainerSignatures[removed.Key()] = fingerprint.Signature{}

	// Grow the changed container so its size-based signature moves.
	writeZip(t, changedPath, map[string]string{
		"assets/b/textures/y.png":     "y",
		"assets/b/textures/extra.png": "extra-bytes",
	})

	plan, err := BuildRefreshPlan(previous, containers)
	if err != nil {
		t.Fatalf("BuildRefreshPlan: %v", err)
	}
	if len(plan.Unchanged) != 1 || plan.Unchanged[0].SourceName != "steady" {
		t.Errorf("unchanged = %+v", plan.Unchanged)
	}
	if len(plan.Changed) != 1 || plan.Changed[0].SourceName != "moving" {
		t.Errorf("changed = %+v", plan.Changed)
	}
	if len(plan.RemovedKeys) != 1 || plan.RemovedKeys[0] != removed.Key() {
		t.Errorf("removed = %v", plan.RemovedKeys)
	}
	if len(plan.Signatures) != 2 {
		t.Errorf("signatures = %d, want 2", len(plan.Signatures))
	}
}

func TestRefreshPlanRescansWhenAssetsMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "steady.jar")
	writeZip(t, path, map[string]string{"assets/a/textures/x.png": "x"})

	container := scanner.Container{SourceKind: catalog.SourceMod, SourceName: "steady", Kind: catalog.ContainerJar, Path: path}
	signature, err := fingerprint.Compute(path, catalog.ContainerJar)
	if err != nil {
		t.Fatal(err)
	}
	previous := &cache.Snapshot{
		ContainerSignatures: map[string]fingerprint.Signature{container.Key(): signature},
		ContainerAssets:     map[string][]catalog.Record{},
	}

	plan, err := BuildRefreshPlan(previous, []scanner.Container{container})
	if err != nil {
		t.Fatalf("BuildRefreshPlan: %v", err)
	}
	if len(plan.Changed) != 1 {
		t.Fatalf("expected container without cached assets to be rescanned, changed = %+v", plan.Changed)
	}
}

func TestCancelAndUnknownScan(t *testing.T) {
	m := NewManager(nil, nil, "test")
	if err := m.Cancel("missing"); err != ErrScanNotFound {
		t.Errorf("Cancel(missing) = %v, want ErrScanNotFound", err)
	}
	if _, err := m.Status("missing"); err != ErrScanNotFound {
		t.Errorf("Status(missing) = %v, want ErrScanNotFound", err)
	}
}

func TestReconcileMapsSurvivorsToThemselves(t *testing.T) {
	prismRoot, minecraftDir := makeInstance(t)
	addModJar(t, minecraftDir, "sample.jar", map[string]string{
		"assets/sample/textures/item/gear.png": "png",
	})

	m := NewManager(nil, nil, "test")
	status, err := m.StartScan(Request{PrismRoot: prismRoot, InstanceFolder: "Fabric Test", IncludeMods: true})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	waitReady(t, m, status.ScanID)

	id := "mod.sample.sample.textures.item.gear_png"
	mapped, err := m.Reconcile(status.ScanID, []string{id, "mod.gone.gone.thing_png"})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if mapped[id] != id {
		t.Errorf("surviving id mapped to %q", mapped[id])
	}
	if _, ok := mapped["mod.gone.gone.thing_png"]; ok {
		t.Error("vanished id should be omitted")
	}
}

type recordingNotifier struct {
	mu        sync.Mutex
	chunks    int
	assets    int
	completed bool
}

func (n *recordingNotifier) ScanProgress(ProgressEvent) {}

func (n *recordingNotifier) ScanChunk(_ string, assets []catalog.Record) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chunks++
	n.assets += len(assets)
}

func (n *recordingNotifier) ScanCompleted(string, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = true
}

func (n *recordingNotifier) ScanFailed(string, error) {}

func TestScanEmitsChunksAndCompletion(t *testing.T) {
	prismRoot, minecraftDir := makeInstance(t)
	addModJar(t, minecraftDir, "sample.jar", map[string]string{
		"assets/sample/textures/item/gear.png": "png",
		"assets/sample/sounds/step.ogg":        "ogg",
	})

	notifier := &recordingNotifier{}
	m := NewManager(nil, notifier, "test")
	status, err := m.StartScan(Request{PrismRoot: prismRoot, InstanceFolder: "Fabric Test", IncludeMods: true})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	waitReady(t, m, status.ScanID)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if notifier.chunks != 1 {
		t.Errorf("chunks = %d, want 1", notifier.chunks)
	}
	if notifier.assets != 2 {
		t.Errorf("chunk assets = %d, want 2", notifier.assets)
	}
	if !notifier.completed {
		t.Error("completion event missing")
	}
}

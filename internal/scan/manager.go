package scan

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"asset-explorer/internal/cache"
	"asset-explorer/internal/catalog"
	"asset-explorer/internal/fingerprint"
	"asset-explorer/internal/launcher"
	"asset-explorer/internal/logging"
	"asset-explorer/internal/metrics"
	"asset-explorer/internal/scanner"
	"asset-explorer/internal/search"
	"asset-explorer/internal/tree"
	"asset-explorer/internal/workers"
)

const progressInterval = 125 * time.Millisecond

// ErrScanNotFound is returned for unknown scan ids.
var ErrScanNotFound = errors.New("scan not found")

// ErrAssetNotFound is returned for asset ids absent from a snapshot.
var ErrAssetNotFound = errors.New("asset not found")

// ErrNotReady is returned when results are requested before a scan has
// finished.
var ErrNotReady = errors.New("scan is not ready yet")

// Request describes one scan to run.
type Request struct {
	PrismRoot            string `json:"prismRoot"`
	InstanceFolder       string `json:"instanceFolder"`
	IncludeVanilla       bool   `json:"includeVanilla"`
	IncludeMods          bool   `json:"includeMods"`
	IncludeResourcePacks bool   `json:"includeResourcePacks"`
	Force                bool   `json:"force"`
}

type session struct {
	id        string
	request   Request
	cancelled atomic.Bool // user-requested via Cancel
	aborted   atomic.Bool // a worker hit a fatal error; stop siblings

	mu              sync.RWMutex
	phase           Phase
	fromCache       bool
	containersDone  int
	containersTotal int
	assetsIndexed   int
	errMessage      string
	snapshot        *cache.Snapshot
	idAliases       map[string]string
}

func (s *session) status() *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Status{
		ScanID:          s.id,
		Phase:           s.phase,
		FromCache:       s.fromCache,
		ContainersDone:  s.containersDone,
		ContainersTotal: s.containersTotal,
		AssetsIndexed:   s.assetsIndexed,
		Error:           s.errMessage,
	}
}

// Manager runs scan sessions and serves their results.
type Manager struct {
	store      *cache.Store
	notifier   Notifier
	appVersion string

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewManager returns a Manager persisting snapshots through store. The
// store may be nil to disable persistence.
func NewManager(store *cache.Store, notifier Notifier, appVersion string) *Manager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Manager{
		store:      store,
		notifier:   notifier,
		appVersion: appVersion,
		sessions:   make(map[string]*session),
	}
}

// StartScan validates the request, creates a session, and returns its
// initial status. On a cache hit the session is immediately ready and a
// background refresh reconciles it against the current container state;
// otherwise a full scan runs in the background.
func (m *Manager) StartScan(request Request) (*Status, error) {
	instanceDir, err := launcher.ResolveInstanceDir(request.PrismRoot, request.InstanceFolder)
	if err != nil {
		return nil, err
	}

	s := &session{
		id:      uuid.NewString(),
		request: request,
		phase:   PhaseScanning,
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	profileKey := cache.ProfileKey(request.PrismRoot, request.InstanceFolder,
		request.IncludeVanilla, request.IncludeMods, request.IncludeResourcePacks)

	if !request.Force && m.store != nil {
		if snapshot, err := m.store.Load(profileKey); err == nil && snapshot != nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			metrics.ScansStarted.WithLabelValues("cached").Inc()
			s.mu.Lock()
			s.phase = PhaseRefreshing
			s.fromCache = true
			s.snapshot = snapshot
			s.assetsIndexed = len(snapshot.Assets)
			s.mu.Unlock()
			go m.refresh(s, snapshot, instanceDir)
			return s.status(), nil
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	metrics.ScansStarted.WithLabelValues("full").Inc()
	go m.fullScan(s, instanceDir)
	return s.status(), nil
}

// Status reports a session's current state.
func (m *Manager) Status(scanID string) (*Status, error) {
	s, err := m.session(scanID)
	if err != nil {
		return nil, err
	}
	return s.status(), nil
}

// Cancel flags a session as cancelled. Workers notice at the next
// checkpoint.
func (m *Manager) Cancel(scanID string) error {
	s, err := m.session(scanID)
	if err != nil {
		return err
	}
	s.cancelled.Store(true)
	return nil
}

// Snapshot returns a ready session's result set.
func (m *Manager) Snapshot(scanID string) (*cache.Snapshot, error) {
	s, err := m.session(scanID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	// A session that failed while refreshing keeps serving its cached
	// snapshot.
	if s.snapshot == nil {
		return nil, ErrNotReady
	}
	return s.snapshot, nil
}

// Asset looks up one record by asset id in a ready session.
func (m *Manager) Asset(scanID, assetID string) (*catalog.Record, error) {
	snapshot, err := m.Snapshot(scanID)
	if err != nil {
		return nil, err
	}
	for i := range snapshot.Assets {
		if snapshot.Assets[i].AssetID == assetID {
			return &snapshot.Assets[i], nil
		}
	}
	return nil, fmt.Errorf("asset %s: %w", assetID, ErrAssetNotFound)
}

// Reconcile maps asset ids issued before a background refresh onto their
// current ids. Ids without a surviving counterpart are omitted.
func (m *Manager) Reconcile(scanID string, assetIDs []string) (map[string]string, error) {
	s, err := m.session(scanID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	mapped := make(map[string]string, len(assetIDs))
	for _, id := range assetIDs {
		if alias, ok := s.idAliases[id]; ok {
			mapped[id] = alias
			continue
		}
		if s.snapshot != nil {
			for i := range s.snapshot.Assets {
				if s.snapshot.Assets[i].AssetID == id {
					mapped[id] = id
					break
				}
			}
		}
	}
	return mapped, nil
}

func (m *Manager) session(scanID string) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[scanID]
	if !ok {
		return nil, ErrScanNotFound
	}
	return s, nil
}

func (m *Manager) fullScan(s *session, instanceDir string) {
	started := time.Now()

	containers, err := m.collectContainers(s, instanceDir)
	if err != nil {
		m.fail(s, err)
		return
	}
	s.mu.Lock()
	s.containersTotal = len(containers)
	s.mu.Unlock()

	scanned, signatures, err := m.scanContainers(s, containers)
	if err != nil {
		m.fail(s, err)
		return
	}

	snapshot := m.buildSnapshot(s, containers, nil, scanned, signatures)
	m.finish(s, snapshot, started)
}

func (m *Manager) refresh(s *session, previous *cache.Snapshot, instanceDir string) {
	started := time.Now()

	containers, err := m.collectContainers(s, instanceDir)
	if err != nil {
		m.fail(s, err)
		return
	}

	plan, err := BuildRefreshPlan(previous, containers)
	if err != nil {
		m.fail(s, err)
		return
	}
	if len(plan.Changed) == 0 && len(plan.RemovedKeys) == 0 {
		logging.Debug("scan %s: cache is current, no refresh needed", s.id)
		s.mu.Lock()
		s.phase = PhaseReady
		s.containersDone = len(containers)
		s.containersTotal = len(containers)
		s.mu.Unlock()
		metrics.ScansCompleted.WithLabelValues("cached").Inc()
		m.notifier.ScanCompleted(s.id, len(previous.Assets))
		return
	}

	logging.Info("scan %s: refreshing %d changed containers, %d removed",
		s.id, len(plan.Changed), len(plan.RemovedKeys))
	s.mu.Lock()
	s.containersTotal = len(plan.Changed)
	s.containersDone = 0
	s.mu.Unlock()

	scanned, _, err := m.scanContainers(s, plan.Changed)
	if err != nil {
		m.fail(s, err)
		return
	}

	snapshot := m.buildSnapshot(s, containers, previous, scanned, plan.Signatures)
	snapshot.CreatedAtMs = previous.CreatedAtMs

	aliases := catalog.BuildReconciliationMap(previous.Assets, snapshot.Assets)
	s.mu.Lock()
	s.idAliases = aliases
	s.mu.Unlock()

	m.finish(s, snapshot, started)
}

func (m *Manager) collectContainers(s *session, instanceDir string) ([]scanner.Container, error) {
	mcVersion := ""
	if s.request.IncludeVanilla {
		version, err := launcher.ParseMinecraftVersion(filepath.Join(instanceDir, "mmc-pack.json"))
		if err != nil {
			return nil, err
		}
		mcVersion = version
	}
	return scanner.CollectContainers(s.request.PrismRoot, instanceDir, mcVersion, scanner.Selection{
		IncludeVanilla:       s.request.IncludeVanilla,
		IncludeMods:          s.request.IncludeMods,
		IncludeResourcePacks: s.request.IncludeResourcePacks,
	})
}

// scanContainers fans containers out to a worker pool and returns the
// candidates and fingerprint of each container, keyed by container key.
func (m *Manager) scanContainers(s *session, containers []scanner.Container) (map[string][]catalog.Candidate, map[string]fingerprint.Signature, error) {
	scanned := make(map[string][]catalog.Candidate, len(containers))
	signatures := make(map[string]fingerprint.Signature, len(containers))
	if len(containers) == 0 {
		return scanned, signatures, nil
	}

	type containerResult struct {
		key        string
		kind       catalog.ContainerKind
		candidates []catalog.Candidate
		signature  fingerprint.Signature
		err        error
	}

	workerCount := workers.ForScan(len(containers))
	logging.Debug("scan %s: %d containers on %d workers", s.id, len(containers), workerCount)

	var cursor atomic.Int64
	results := make(chan containerResult, workerCount)
	var wg sync.WaitGroup
	cancelFn := func() bool { return s.cancelled.Load() || s.aborted.Load() }

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if cancelFn() {
					return
				}
				index := int(cursor.Add(1)) - 1
				if index >= len(containers) {
					return
				}
				container := containers[index]
				signature, err := fingerprint.Compute(container.Path, container.Kind)
				var candidates []catalog.Candidate
				if err == nil {
					candidates, err = scanner.ScanContainer(&container, cancelFn)
				}
				results <- containerResult{
					key:        container.Key(),
					kind:       container.Kind,
					candidates: candidates,
					signature:  signature,
					err:        err,
				}
				if err != nil {
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	lastProgress := time.Time{}
	for result := range results {
		if result.err != nil {
			if firstErr == nil && !errors.Is(result.err, scanner.ErrCancelled) {
				firstErr = result.err
			}
			s.aborted.Store(true)
			continue
		}
		scanned[result.key] = result.candidates
		signatures[result.key] = result.signature
		metrics.ContainersScanned.WithLabelValues(result.kind.StorageKey()).Inc()

		s.mu.Lock()
		s.containersDone++
		s.assetsIndexed += len(result.candidates)
		s.mu.Unlock()

		if now := time.Now(); now.Sub(lastProgress) >= progressInterval {
			lastProgress = now
			m.notifier.ScanProgress(m.progressEvent(s))
		}
	}
	m.notifier.ScanProgress(m.progressEvent(s))

	if firstErr != nil {
		return nil, nil, firstErr
	}
	if s.cancelled.Load() {
		return nil, nil, scanner.ErrCancelled
	}
	return scanned, signatures, nil
}

func (m *Manager) progressEvent(s *session) ProgressEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ProgressEvent{
		ScanID:          s.id,
		Phase:           s.phase,
		ContainersDone:  s.containersDone,
		ContainersTotal: s.containersTotal,
		AssetsIndexed:   s.assetsIndexed,
	}
}

// buildSnapshot merges per-container results in sorted container-key
// order so key assignment is deterministic, then derives the tree and
// search indexes. During a refresh, previous supplies the records of
// unchanged containers; their keys are preserved and seed the duplicate
// counters before new candidates are finalized.
func (m *Manager) buildSnapshot(s *session, containers []scanner.Container, previous *cache.Snapshot, scanned map[string][]catalog.Candidate, signatures map[string]fingerprint.Signature) *cache.Snapshot {
	keys := make([]string, 0, len(containers))
	for _, container := range containers {
		keys = append(keys, container.Key())
	}
	sort.Strings(keys)

	counts := make(catalog.KeyCounts)
	if previous != nil {
		var unchanged []catalog.Record
		for _, key := range keys {
			if _, rescanned := scanned[key]; rescanned {
				continue
			}
			unchanged = append(unchanged, previous.ContainerAssets[key]...)
		}
		counts = catalog.RebuildKeyCounts(unchanged)
	}

	var assets []catalog.Record
	containerAssets := make(map[string][]catalog.Record, len(keys))
	containerSignatures := make(map[string]fingerprint.Signature, len(keys))

	for _, key := range keys {
		var records []catalog.Record
		if candidates, rescanned := scanned[key]; rescanned {
			records = catalog.Finalize(candidates, counts)
			if len(records) > 0 {
				m.notifier.ScanChunk(s.id, records)
			}
		} else if previous != nil {
			records = previous.ContainerAssets[key]
		}
		containerAssets[key] = records
		containerSignatures[key] = signatures[key]
		assets = append(assets, records...)
	}

	treeIndex := tree.NewIndex()
	searchRecords := make([]search.Record, 0, len(assets))
	for i := range assets {
		treeIndex.Insert(&assets[i])
		searchRecords = append(searchRecords, search.BuildRecord(&assets[i]))
	}

	request := s.request
	now := time.Now().UnixMilli()
	return &cache.Snapshot{
		SchemaVersion:        cache.SchemaVersion,
		ProfileKey:           cache.ProfileKey(request.PrismRoot, request.InstanceFolder, request.IncludeVanilla, request.IncludeMods, request.IncludeResourcePacks),
		PrismRoot:            request.PrismRoot,
		InstanceFolder:       request.InstanceFolder,
		IncludeVanilla:       request.IncludeVanilla,
		IncludeMods:          request.IncludeMods,
		IncludeResourcePacks: request.IncludeResourcePacks,
		CreatedAtMs:          now,
		LastUsedAtMs:         now,
		AppVersion:           m.appVersion,
		Assets:               assets,
		SearchRecords:        searchRecords,
		TreeChildren:         treeIndex,
		ContainerAssets:      containerAssets,
		ContainerSignatures:  containerSignatures,
	}
}

func (m *Manager) finish(s *session, snapshot *cache.Snapshot, started time.Time) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.phase = PhaseReady
	s.assetsIndexed = len(snapshot.Assets)
	s.mu.Unlock()

	metrics.ScanDuration.Observe(time.Since(started).Seconds())
	metrics.ScansCompleted.WithLabelValues("ok").Inc()
	metrics.AssetsIndexed.Set(float64(len(snapshot.Assets)))
	logging.Info("scan %s: indexed %d assets in %s", s.id, len(snapshot.Assets), time.Since(started).Round(time.Millisecond))
	m.notifier.ScanCompleted(s.id, len(snapshot.Assets))

	if m.store != nil {
		if err := m.store.Save(snapshot); err != nil {
			logging.Warn("scan %s: failed to persist snapshot: %v", s.id, err)
		}
	}
}

func (m *Manager) fail(s *session, err error) {
	phase := PhaseFailed
	outcome := "failed"
	if errors.Is(err, scanner.ErrCancelled) || s.cancelled.Load() {
		phase = PhaseCancelled
		outcome = "cancelled"
	}
	s.mu.Lock()
	s.phase = phase
	s.errMessage = err.Error()
	s.mu.Unlock()

	metrics.ScansCompleted.WithLabelValues(outcome).Inc()
	if phase == PhaseFailed {
		logging.Error("scan %s: %v", s.id, err)
		m.notifier.ScanFailed(s.id, err)
	} else {
		logging.Info("scan %s: cancelled", s.id)
	}
}

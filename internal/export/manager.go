package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"asset-explorer/internal/catalog"
	"asset-explorer/internal/logging"
	"asset-explorer/internal/metrics"
	"asset-explorer/internal/transcoder"
	"asset-explorer/internal/workers"
)

const progressInterval = 125 * time.Millisecond

// ErrOperationNotFound is returned for status lookups on unknown
// operation ids.
var ErrOperationNotFound = errors.New("export operation not found")

// Failure records one job that could not be exported.
type Failure struct {
	AssetID string `json:"assetId"`
	Path    string `json:"path"`
	Error   string `json:"error"`
}

// Result is the outcome of a whole export operation.
type Result struct {
	OperationID string    `json:"operationId"`
	Cancelled   bool      `json:"cancelled"`
	OutputFiles []string  `json:"outputFiles"`
	Failures    []Failure `json:"failures"`
}

// Status is a point-in-time view of an operation, polled while it runs.
// Result is populated once Done.
type Status struct {
	OperationID string  `json:"operationId"`
	Done        bool    `json:"done"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	Total       int     `json:"total"`
	Result      *Result `json:"result,omitempty"`
}

// ProgressEvent reports export completion counts while an operation runs.
type ProgressEvent struct {
	OperationID string `json:"operationId"`
	Completed   int    `json:"completed"`
	Failed      int    `json:"failed"`
	Total       int    `json:"total"`
}

// Notifier receives export progress events. Implementations must be safe
// for concurrent use.
type Notifier interface {
	ExportProgress(event ProgressEvent)
}

// NopNotifier discards all events.
type NopNotifier struct{}

// ExportProgress implements Notifier.
func (NopNotifier) ExportProgress(ProgressEvent) {}

type operation struct {
	id        string
	cancelled atomic.Bool

	mu        sync.RWMutex
	done      bool
	completed int
	failed    int
	total     int
	result    *Result
}

func (op *operation) status() *Status {
	op.mu.RLock()
	defer op.mu.RUnlock()
	return &Status{
		OperationID: op.id,
		Done:        op.done,
		Completed:   op.completed,
		Failed:      op.failed,
		Total:       op.total,
		Result:      op.result,
	}
}

// Manager runs export operations in the background and tracks them for
// polling and cancellation. It also owns the temp directory used for copy
// staging and audio conversion.
type Manager struct {
	transcoder *transcoder.Transcoder
	notifier   Notifier
	tempRoot   string

	mu         sync.Mutex
	operations map[string]*operation
}

// NewManager returns a Manager staging temporary files under tempRoot.
// The transcoder may be nil when ffmpeg is unavailable; audio format
// conversion then fails per job while plain exports keep working.
func NewManager(tc *transcoder.Transcoder, notifier Notifier, tempRoot string) *Manager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Manager{
		transcoder: tc,
		notifier:   notifier,
		tempRoot:   tempRoot,
		operations: make(map[string]*operation),
	}
}

// Cancel flags a running operation. It reports whether the operation was
// found.
func (m *Manager) Cancel(operationID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	op, ok := m.operations[operationID]
	if ok {
		op.cancelled.Store(true)
	}
	return ok
}

// Status reports the progress of an operation, including its result once
// finished.
func (m *Manager) Status(operationID string) (*Status, error) {
	m.mu.Lock()
	op, ok := m.operations[operationID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrOperationNotFound
	}
	return op.status(), nil
}

func (m *Manager) register() *operation {
	op := &operation{id: uuid.NewString()}
	m.mu.Lock()
	m.operations[op.id] = op
	m.mu.Unlock()
	return op
}

// Save exports assets into destinationDir in the background, converting
// audio to the requested format. The returned operation id is live before
// any job runs, so callers can cancel or poll immediately.
func (m *Manager) Save(assets []catalog.Record, destinationDir string, format transcoder.Format) (string, error) {
	if err := os.MkdirAll(destinationDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}
	op := m.register()
	go m.run(op, assets, destinationDir, format)
	return op.id, nil
}

// Stage exports assets into a fresh directory under the manager's temp
// root, for callers that hand files to an external destination such as
// the system clipboard. The staged paths land in the operation's result.
func (m *Manager) Stage(assets []catalog.Record, format transcoder.Format) (string, error) {
	stageDir := filepath.Join(m.tempRoot, "export-"+uuid.NewString())
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	op := m.register()
	go m.run(op, assets, stageDir, format)
	return op.id, nil
}

func (m *Manager) run(op *operation, assets []catalog.Record, destinationDir string, format transcoder.Format) {
	ctx := context.Background()
	operationID := op.id
	cancelled := &op.cancelled

	jobs := PlanJobs(assets, destinationDir, format)
	outputs := make([]string, len(jobs))

	op.mu.Lock()
	op.total = len(jobs)
	op.mu.Unlock()

	type jobResult struct {
		index int
		path  string
		err   error
	}

	workerCount := workers.ForExport(len(jobs))
	logging.Debug("export %s: %d jobs on %d workers", operationID, len(jobs), workerCount)

	var cursor atomic.Int64
	results := make(chan jobResult, workerCount)
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache := NewArchiveCache()
			defer cache.Close()

			for {
				if cancelled.Load() {
					return
				}
				index := int(cursor.Add(1)) - 1
				if index >= len(jobs) {
					return
				}
				job := jobs[index]
				err := m.exportJob(ctx, &job, format, cache)
				results <- jobResult{index: job.Index, path: job.OutputPath, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var failures []Failure
	completed := 0
	lastProgress := time.Time{}

	emit := func(force bool) {
		now := time.Now()
		if !force && now.Sub(lastProgress) < progressInterval {
			return
		}
		lastProgress = now
		m.notifier.ExportProgress(ProgressEvent{
			OperationID: operationID,
			Completed:   completed,
			Failed:      len(failures),
			Total:       len(jobs),
		})
	}

	for result := range results {
		if result.err != nil {
			failures = append(failures, Failure{
				AssetID: jobs[result.index].Asset.AssetID,
				Path:    result.path,
				Error:   result.err.Error(),
			})
			metrics.ExportJobs.WithLabelValues("failed").Inc()
		} else {
			outputs[result.index] = result.path
			completed++
			metrics.ExportJobs.WithLabelValues("exported").Inc()
		}
		op.mu.Lock()
		op.completed = completed
		op.failed = len(failures)
		op.mu.Unlock()
		emit(false)
	}
	emit(true)

	wasCancelled := cancelled.Load()

	outputFiles := make([]string, 0, completed)
	for _, path := range outputs {
		if path != "" {
			outputFiles = append(outputFiles, path)
		}
	}
	if failures == nil {
		failures = []Failure{}
	}

	op.mu.Lock()
	op.done = true
	op.result = &Result{
		OperationID: operationID,
		Cancelled:   wasCancelled,
		OutputFiles: outputFiles,
		Failures:    failures,
	}
	op.mu.Unlock()
}

func (m *Manager) exportJob(ctx context.Context, job *Job, format transcoder.Format, cache *ArchiveCache) error {
	data, err := ExtractBytes(&job.Asset, cache)
	if err != nil {
		return err
	}

	if job.Asset.IsAudio && format != transcoder.FormatOriginal {
		return m.transcoder.Convert(ctx, data, job.OutputPath, format)
	}
	if err := os.WriteFile(job.OutputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", job.OutputPath, err)
	}
	return nil
}

// ConvertToTemp extracts a single audio asset and converts it into the
// manager's temp root, returning the output path.
func (m *Manager) ConvertToTemp(ctx context.Context, asset *catalog.Record, format transcoder.Format) (string, error) {
	cache := NewArchiveCache()
	defer cache.Close()

	data, err := ExtractBytes(asset, cache)
	if err != nil {
		return "", err
	}

	stem, extension := SplitFileName(asset.FileName())
	if converted := format.Extension(); converted != "" {
		extension = converted
	}
	name := stem
	if extension != "" {
		name += "." + extension
	}

	outputDir := filepath.Join(m.tempRoot, "convert-"+uuid.NewString())
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	outputPath := filepath.Join(outputDir, name)

	if format == transcoder.FormatOriginal {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", outputPath, err)
		}
		return outputPath, nil
	}
	if err := m.transcoder.Convert(ctx, data, outputPath, format); err != nil {
		return "", err
	}
	return outputPath, nil
}

// CleanupTemp removes staged export and conversion directories. Call on
// shutdown.
func (m *Manager) CleanupTemp() {
	entries, err := os.ReadDir(m.tempRoot)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if len(name) > 7 && (name[:7] == "export-" || name[:8] == "convert-") {
			_ = os.RemoveAll(filepath.Join(m.tempRoot, name))
		}
	}
}

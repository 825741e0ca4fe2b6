package scan

import "asset-explorer/internal/catalog"

// Phase identifies where a scan session is in its lifecycle.
type Phase string

const (
	PhaseScanning   Phase = "scanning"
	PhaseRefreshing Phase = "refreshing"
	PhaseReady      Phase = "ready"
	PhaseFailed     Phase = "failed"
	PhaseCancelled  Phase = "cancelled"
)

// Status is the externally visible state of a scan session.
type Status struct {
	ScanID          string `json:"scanId"`
	Phase           Phase  `json:"phase"`
	FromCache       bool   `json:"fromCache"`
	ContainersDone  int    `json:"containersDone"`
	ContainersTotal int    `json:"containersTotal"`
	AssetsIndexed   int    `json:"assetsIndexed"`
	Error           string `json:"error,omitempty"`
}

// ProgressEvent mirrors Status for push-style consumers.
type ProgressEvent struct {
	ScanID          string `json:"scanId"`
	Phase           Phase  `json:"phase"`
	ContainersDone  int    `json:"containersDone"`
	ContainersTotal int    `json:"containersTotal"`
	AssetsIndexed   int    `json:"assetsIndexed"`
}

// Notifier receives scan lifecycle events. Implementations must be safe
// for concurrent use.
type Notifier interface {
	ScanProgress(event ProgressEvent)
	// ScanChunk delivers a batch of newly catalogued assets so consumers
	// can render incrementally.
	ScanChunk(scanID string, assets []catalog.Record)
	ScanCompleted(scanID string, assetCount int)
	ScanFailed(scanID string, err error)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) ScanProgress(ProgressEvent)         {}
func (NopNotifier) ScanChunk(string, []catalog.Record) {}
func (NopNotifier) ScanCompleted(string, int)          {}
func (NopNotifier) ScanFailed(string, error)           {}

package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"asset-explorer/internal/export"
	"asset-explorer/internal/scan"
	"asset-explorer/internal/startup"
)

type Handlers struct {
	scans     *scan.Manager
	exports   *export.Manager
	config    *startup.Config
	startedAt time.Time
}

func New(scans *scan.Manager, exports *export.Manager, config *startup.Config) *Handlers {
	return &Handlers{
		scans:     scans,
		exports:   exports,
		config:    config,
		startedAt: time.Now(),
	}
}

// Register wires all API routes onto router.
func (h *Handlers) Register(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/roots", h.GetRoots).Methods(http.MethodGet)
	api.HandleFunc("/instances", h.GetInstances).Methods(http.MethodGet)

	api.HandleFunc("/scans", h.StartScan).Methods(http.MethodPost)
	api.HandleFunc("/scans/{scanId}", h.GetScanStatus).Methods(http.MethodGet)
	api.HandleFunc("/scans/{scanId}/cancel", h.CancelScan).Methods(http.MethodPost)
	api.HandleFunc("/scans/{scanId}/tree", h.GetTreeChildren).Methods(http.MethodGet)
	api.HandleFunc("/scans/{scanId}/search", h.Search).Methods(http.MethodGet)
	api.HandleFunc("/scans/{scanId}/reconcile", h.ReconcileAssetIDs).Methods(http.MethodPost)
	api.HandleFunc("/scans/{scanId}/assets/{assetId}", h.GetAssetRecord).Methods(http.MethodGet)
	api.HandleFunc("/scans/{scanId}/assets/{assetId}/preview", h.GetPreview).Methods(http.MethodGet)
	api.HandleFunc("/scans/{scanId}/assets/{assetId}/convert", h.ConvertAudio).Methods(http.MethodPost)
	api.HandleFunc("/scans/{scanId}/export", h.SaveAssets).Methods(http.MethodPost)
	api.HandleFunc("/scans/{scanId}/copy", h.CopyAssets).Methods(http.MethodPost)
	api.HandleFunc("/exports/{operationId}", h.GetExportStatus).Methods(http.MethodGet)
	api.HandleFunc("/exports/{operationId}/cancel", h.CancelExport).Methods(http.MethodPost)

	router.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet)
	router.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	router.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
}

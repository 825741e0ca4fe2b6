package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"asset-explorer/internal/metrics"
	"asset-explorer/internal/scan"
	"asset-explorer/internal/search"
	"asset-explorer/internal/tree"
)

// StartScan launches a scan for the requested instance and source
// families. The response carries the scan id; on a cache hit the scan is
// already ready.
func (h *Handlers) StartScan(w http.ResponseWriter, r *http.Request) {
	var request scan.Request
	if err := decodeJSONBody(r, &request); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.PrismRoot == "" || request.InstanceFolder == "" {
		writeJSONError(w, "prismRoot and instanceFolder are required", http.StatusBadRequest)
		return
	}
	if !request.IncludeVanilla && !request.IncludeMods && !request.IncludeResourcePacks {
		writeJSONError(w, "at least one source family must be selected", http.StatusBadRequest)
		return
	}

	status, err := h.scans.StartScan(request)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, status)
}

// GetScanStatus reports a scan's phase and progress counters.
func (h *Handlers) GetScanStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.scans.Status(mux.Vars(r)["scanId"])
	if err != nil {
		writeScanError(w, err)
		return
	}
	writeJSON(w, status)
}

// CancelScan flags a running scan for cancellation.
func (h *Handlers) CancelScan(w http.ResponseWriter, r *http.Request) {
	if err := h.scans.Cancel(mux.Vars(r)["scanId"]); err != nil {
		writeScanError(w, err)
		return
	}
	writeJSONStatus(w, "cancelling")
}

// GetTreeChildren lists the children of one folder tree node, given by
// ?nodeId= (default: the root).
func (h *Handlers) GetTreeChildren(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.scans.Snapshot(mux.Vars(r)["scanId"])
	if err != nil {
		writeScanError(w, err)
		return
	}

	nodeID := r.URL.Query().Get("nodeId")
	if nodeID == "" {
		nodeID = tree.RootID
	}
	children := snapshot.TreeChildren.Children(nodeID)
	if children == nil {
		children = []tree.Node{}
	}
	writeJSON(w, map[string]any{"nodeId": nodeID, "children": children})
}

// Search evaluates a ranked search over a scan's assets. Query
// parameters: q, offset, limit, folderNodeId, images, audio, other.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.scans.Snapshot(mux.Vars(r)["scanId"])
	if err != nil {
		writeScanError(w, err)
		return
	}

	params := r.URL.Query()
	query := search.Query{
		Text:          params.Get("q"),
		FolderNodeID:  params.Get("folderNodeId"),
		IncludeImages: queryBool(params.Get("images"), true),
		IncludeAudio:  queryBool(params.Get("audio"), true),
		IncludeOther:  queryBool(params.Get("other"), true),
	}
	if offset, err := strconv.Atoi(params.Get("offset")); err == nil && offset > 0 {
		query.Offset = offset
	}
	if limit, err := strconv.Atoi(params.Get("limit")); err == nil && limit > 0 {
		query.Limit = limit
	}

	started := time.Now()
	result := search.Run(snapshot.Assets, snapshot.SearchRecords, query)
	metrics.SearchDuration.Observe(time.Since(started).Seconds())

	writeJSON(w, result)
}

// ReconcileAssetIDs maps asset ids from before a background refresh onto
// their current ids.
func (h *Handlers) ReconcileAssetIDs(w http.ResponseWriter, r *http.Request) {
	var request struct {
		AssetIDs []string `json:"assetIds"`
	}
	if err := decodeJSONBody(r, &request); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	mapped, err := h.scans.Reconcile(mux.Vars(r)["scanId"], request.AssetIDs)
	if err != nil {
		writeScanError(w, err)
		return
	}
	writeJSON(w, map[string]any{"mapped": mapped})
}

func queryBool(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

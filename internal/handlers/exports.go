package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"asset-explorer/internal/catalog"
	"asset-explorer/internal/transcoder"
)

type exportRequest struct {
	AssetIDs       []string `json:"assetIds"`
	DestinationDir string   `json:"destinationDir,omitempty"`
	AudioFormat    string   `json:"audioFormat,omitempty"`
}

// resolveExportRequest validates the body and resolves asset ids against
// the scan snapshot.
func (h *Handlers) resolveExportRequest(w http.ResponseWriter, r *http.Request) (*exportRequest, []catalog.Record, transcoder.Format, bool) {
	var request exportRequest
	if err := decodeJSONBody(r, &request); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return nil, nil, transcoder.FormatOriginal, false
	}
	if len(request.AssetIDs) == 0 {
		writeJSONError(w, "assetIds must not be empty", http.StatusBadRequest)
		return nil, nil, transcoder.FormatOriginal, false
	}

	format, err := transcoder.ParseFormat(request.AudioFormat)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, nil, transcoder.FormatOriginal, false
	}

	scanID := mux.Vars(r)["scanId"]
	assets := make([]catalog.Record, 0, len(request.AssetIDs))
	for _, id := range request.AssetIDs {
		asset, err := h.scans.Asset(scanID, id)
		if err != nil {
			writeScanError(w, err)
			return nil, nil, transcoder.FormatOriginal, false
		}
		assets = append(assets, *asset)
	}
	return &request, assets, format, true
}

// SaveAssets starts a background export of the selected assets into a
// destination directory and returns the operation id for polling and
// cancellation.
func (h *Handlers) SaveAssets(w http.ResponseWriter, r *http.Request) {
	request, assets, format, ok := h.resolveExportRequest(w, r)
	if !ok {
		return
	}
	if request.DestinationDir == "" {
		writeJSONError(w, "destinationDir is required", http.StatusBadRequest)
		return
	}

	operationID, err := h.exports.Save(assets, request.DestinationDir, format)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"operationId": operationID})
}

// CopyAssets stages the selected assets in a temp directory; the staged
// paths land in the operation result and the caller owns handing them to
// the clipboard.
func (h *Handlers) CopyAssets(w http.ResponseWriter, r *http.Request) {
	_, assets, format, ok := h.resolveExportRequest(w, r)
	if !ok {
		return
	}

	operationID, err := h.exports.Stage(assets, format)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"operationId": operationID})
}

// GetExportStatus reports an operation's progress, including the result
// once finished.
func (h *Handlers) GetExportStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.exports.Status(mux.Vars(r)["operationId"])
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, status)
}

// CancelExport flags a running export operation for cancellation.
func (h *Handlers) CancelExport(w http.ResponseWriter, r *http.Request) {
	operationID := mux.Vars(r)["operationId"]
	if !h.exports.Cancel(operationID) {
		writeJSONError(w, "export operation not found", http.StatusNotFound)
		return
	}
	writeJSONStatus(w, "cancelling")
}

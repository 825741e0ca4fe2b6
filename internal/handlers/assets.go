package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"asset-explorer/internal/export"
	"asset-explorer/internal/preview"
	"asset-explorer/internal/transcoder"
)

// GetAssetRecord returns the full catalog record of one asset.
func (h *Handlers) GetAssetRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	asset, err := h.scans.Asset(vars["scanId"], vars["assetId"])
	if err != nil {
		writeScanError(w, err)
		return
	}
	writeJSON(w, asset)
}

// GetPreview returns an inline preview of an image, audio or JSON asset.
func (h *Handlers) GetPreview(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	asset, err := h.scans.Asset(vars["scanId"], vars["assetId"])
	if err != nil {
		writeScanError(w, err)
		return
	}

	cache := export.NewArchiveCache()
	defer cache.Close()
	data, err := export.ExtractBytes(asset, cache)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result, err := preview.Build(asset, data, h.config.PreviewMaxDim)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, result)
}

// ConvertAudio converts one audio asset into the requested format and
// returns the path of the converted temp file.
func (h *Handlers) ConvertAudio(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	asset, err := h.scans.Asset(vars["scanId"], vars["assetId"])
	if err != nil {
		writeScanError(w, err)
		return
	}
	if !asset.IsAudio {
		writeJSONError(w, "asset is not audio", http.StatusUnprocessableEntity)
		return
	}

	var request struct {
		Format string `json:"format"`
	}
	if err := decodeJSONBody(r, &request); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	format, err := transcoder.ParseFormat(request.Format)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	outputPath, err := h.exports.ConvertToTemp(r.Context(), asset, format)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"outputPath": outputPath})
}

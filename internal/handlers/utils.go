package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"asset-explorer/internal/logging"
	"asset-explorer/internal/scan"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are logged since they cannot be recovered from in a
// handler.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Error("failed to encode JSON error response: %v", err)
	}
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	writeJSON(w, map[string]string{"status": status})
}

// writeScanError maps scan manager errors onto HTTP status codes.
func writeScanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scan.ErrScanNotFound), errors.Is(err, scan.ErrAssetNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, scan.ErrNotReady):
		writeJSONError(w, err.Error(), http.StatusConflict)
	default:
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes a request body into dst, rejecting unknown fields.
func decodeJSONBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

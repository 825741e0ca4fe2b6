package handlers

import (
	"errors"
	"net/http"

	"asset-explorer/internal/launcher"
)

// GetRoots lists candidate Prism launcher roots with their validity.
func (h *Handlers) GetRoots(w http.ResponseWriter, _ *http.Request) {
	roots, err := launcher.DetectRoots()
	if err != nil && !errors.Is(err, launcher.ErrNoRoots) {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if roots == nil {
		roots = []launcher.RootCandidate{}
	}
	writeJSON(w, map[string]any{"roots": roots})
}

// GetInstances lists the instances of the launcher root given by ?root=.
func (h *Handlers) GetInstances(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("root")
	if root == "" {
		writeJSONError(w, "missing root parameter", http.StatusBadRequest)
		return
	}

	instances, err := launcher.ListInstances(root)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if instances == nil {
		instances = []launcher.Instance{}
	}
	writeJSON(w, map[string]any{"instances": instances})
}

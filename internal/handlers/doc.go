// Package handlers implements the HTTP API of the asset explorer service:
// launcher discovery, scan lifecycle, tree browsing, search, previews,
// and the export surface.
package handlers

package launcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// RootCandidate is a possible Prism Launcher data directory.
type RootCandidate struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Valid  bool   `json:"valid"`
	Source string `json:"source"`
}

// ErrNoRoots is returned when no candidate locations exist on the host.
var ErrNoRoots = errors.New("no Prism Launcher candidates were found on this machine")

// DetectRoots probes the well-known Prism Launcher locations for the
// current platform plus the PRISM_ROOT environment override, deduplicated
// in probe order.
func DetectRoots() ([]RootCandidate, error) {
	var candidates []RootCandidate

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			buildCandidate(filepath.Join(home, "Library", "Application Support", "PrismLauncher"), "macos-default"),
			buildCandidate(filepath.Join(xdg.DataHome, "PrismLauncher"), "linux-default"),
			buildCandidate(filepath.Join(home, "PrismLauncher"), "portable-home"),
		)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		candidates = append(candidates, buildCandidate(filepath.Join(appData, "PrismLauncher"), "windows-default"))
	}

	if custom := os.Getenv("PRISM_ROOT"); custom != "" {
		candidates = append(candidates, buildCandidate(ExpandHome(custom), "env-prism-root"))
	}

	seen := make(map[string]struct{}, len(candidates))
	deduped := candidates[:0]
	for _, candidate := range candidates {
		if _, ok := seen[candidate.Path]; ok {
			continue
		}
		seen[candidate.Path] = struct{}{}
		deduped = append(deduped, candidate)
	}

	if len(deduped) == 0 {
		return nil, ErrNoRoots
	}
	return deduped, nil
}

func buildCandidate(path, source string) RootCandidate {
	_, statErr := os.Stat(path)
	return RootCandidate{
		Path:   path,
		Exists: statErr == nil,
		Valid:  IsValidRoot(path),
		Source: source,
	}
}

// IsValidRoot reports whether path looks like a Prism data directory: it
// must contain both an instances and a libraries folder.
func IsValidRoot(path string) bool {
	return isDir(path) && isDir(filepath.Join(path, "instances")) && isDir(filepath.Join(path, "libraries"))
}

// ValidateRoot returns a descriptive error when path is not a usable
// Prism root.
func ValidateRoot(path string) error {
	if !IsValidRoot(path) {
		return errors.New("invalid Prism root: " + path + " (expected folders: instances and libraries)")
	}
	return nil
}

// ExpandHome resolves a leading "~/" or bare "~" against the user's home
// directory. Other paths pass through unchanged.
func ExpandHome(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

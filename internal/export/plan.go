package export

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"asset-explorer/internal/catalog"
	"asset-explorer/internal/transcoder"
)

// Job is one planned output file.
type Job struct {
	Index      int
	Asset      catalog.Record
	OutputPath string
}

// PlanJobs assigns every asset a collision-free output path inside
// destinationDir. Audio assets get the target format's extension; name
// collisions are resolved with _1, _2, ... suffixes checked against both
// the plan and files already on disk.
func PlanJobs(assets []catalog.Record, destinationDir string, format transcoder.Format) []Job {
	usedNames := make(map[string]struct{})
	jobs := make([]Job, 0, len(assets))

	for index, asset := range assets {
		name := asset.FileName()
		if name == "" {
			name = asset.AssetID
		}
		stem, extension := SplitFileName(name)
		if asset.IsAudio {
			if converted := format.Extension(); converted != "" {
				extension = converted
			}
		}

		target := DedupeFileName(stem, extension, destinationDir, usedNames)
		jobs = append(jobs, Job{
			Index:      index,
			Asset:      asset,
			OutputPath: filepath.Join(destinationDir, target),
		})
	}
	return jobs
}

// SplitFileName separates a file name into stem and lowercased extension.
func SplitFileName(name string) (stem, extension string) {
	base := filepath.Base(name)
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		return base[:idx], strings.ToLower(base[idx+1:])
	}
	if base == "" {
		return "asset", ""
	}
	return base, ""
}

// DedupeFileName picks the first stem[_N][.extension] candidate that is
// neither claimed in usedNames nor present in destinationDir, and claims
// it.
func DedupeFileName(stem, extension, destinationDir string, usedNames map[string]struct{}) string {
	for index := 0; ; index++ {
		candidate := stem
		if index > 0 {
			candidate += "_" + strconv.Itoa(index)
		}
		if extension != "" {
			candidate += "." + extension
		}

		if _, taken := usedNames[candidate]; taken {
			continue
		}
		if _, err := os.Stat(filepath.Join(destinationDir, candidate)); err == nil {
			continue
		}

		usedNames[candidate] = struct{}{}
		return candidate
	}
}

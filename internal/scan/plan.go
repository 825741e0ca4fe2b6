package scan

import (
	"sort"

	"asset-explorer/internal/cache"
	"asset-explorer/internal/fingerprint"
	"asset-explorer/internal/logging"
	"asset-explorer/internal/scanner"
)

// RefreshPlan partitions the current container set against a previous
// snapshot: containers whose fingerprints still match, containers that
// changed or appeared, and container keys that vanished.
type RefreshPlan struct {
	Unchanged   []scanner.Container
	Changed     []scanner.Container
	RemovedKeys []string
	Signatures  map[string]fingerprint.Signature
}

// BuildRefreshPlan fingerprints containers and compares them with the
// signatures recorded in previous. A container whose signature matches
// but whose assets are missing from the snapshot is treated as changed
// so it gets rescanned.
func BuildRefreshPlan(previous *cache.Snapshot, containers []scanner.Container) (*RefreshPlan, error) {
	plan := &RefreshPlan{
		Signatures: make(map[string]fingerprint.Signature, len(containers)),
	}

	seen := make(map[string]struct{}, len(containers))
	for _, container := range containers {
		key := container.Key()
		seen[key] = struct{}{}

		signature, err := fingerprint.Compute(container.Path, container.Kind)
		if err != nil {
			return nil, err
		}
		plan.Signatures[key] = signature

		previousSignature, known := previous.ContainerSignatures[key]
		_, hasAssets := previous.ContainerAssets[key]
		if known && hasAssets && signature == previousSignature {
			plan.Unchanged = append(plan.Unchanged, container)
			continue
		}
		if known && !hasAssets {
			logging.Debug("container %s has a signature but no cached assets, rescanning", key)
		}
		plan.Changed = append(plan.Changed, container)
	}

	for key := range previous.ContainerSignatures {
		if _, ok := seen[key]; !ok {
			plan.RemovedKeys = append(plan.RemovedKeys, key)
		}
	}
	sort.Strings(plan.RemovedKeys)

	return plan, nil
}

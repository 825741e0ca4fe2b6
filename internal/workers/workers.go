package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns a worker count derived from the CPUs available to the
// process. reserve CPUs are kept free for other goroutines, and the result
// is clamped to [1, limit] and never exceeds units (the number of pending
// work items). units <= 0 means the unit count is unknown and only the CPU
// clamp applies.
//
// envVar, when set to a positive integer, overrides the CPU-derived count
// but still respects limit and units.
func Count(envVar string, reserve, limit, units int) int {
	count := 0
	if override := os.Getenv(envVar); override != "" {
		if parsed, err := strconv.Atoi(override); err == nil && parsed > 0 {
			count = parsed
		}
	}

	if count == 0 {
		// GOMAXPROCS tracks container CPU limits in Go 1.19+.
		count = runtime.GOMAXPROCS(0) - reserve
	}

	if limit > 0 && count > limit {
		count = limit
	}
	if units > 0 && count > units {
		count = units
	}
	if count < 1 {
		count = 1
	}

	return count
}

// ForScan sizes the container scanning pool: available CPUs minus two,
// capped at four workers. Override with SCAN_WORKERS.
func ForScan(units int) int {
	return Count("SCAN_WORKERS", 2, 4, units)
}

// ForExport sizes the asset export pool: one worker per available CPU,
// capped at sixteen. Override with EXPORT_WORKERS.
func ForExport(units int) int {
	return Count("EXPORT_WORKERS", 0, 16, units)
}

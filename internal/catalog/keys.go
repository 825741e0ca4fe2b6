package catalog

import (
	"strconv"
	"strings"
)

// NormalizeSegment lowercases a key segment and collapses every run of
// non-alphanumeric characters into a single underscore. Leading and
// trailing underscores are trimmed.
func NormalizeSegment(value string) string {
	var out strings.Builder
	previousWasSeparator := false

	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			out.WriteRune(r)
			previousWasSeparator = false
		case r >= 'A' && r <= 'Z':
			out.WriteRune(r + ('a' - 'A'))
			previousWasSeparator = false
		default:
			if !previousWasSeparator {
				out.WriteByte('_')
				previousWasSeparator = true
			}
		}
	}

	return strings.Trim(out.String(), "_")
}

// BaseKey builds the dotted key for a candidate before duplicate
// resolution.
func BaseKey(c *Candidate) string {
	segments := strings.Split(c.RelPath, "/")
	normalized := make([]string, 0, len(segments))
	for _, segment := range segments {
		normalized = append(normalized, NormalizeSegment(segment))
	}

	return c.SourceKind.KeyPrefix() + "." +
		NormalizeSegment(c.SourceName) + "." +
		NormalizeSegment(c.Namespace) + "." +
		strings.Join(normalized, ".")
}

// KeyCounts tracks how many assets have claimed each base key within a
// scan so duplicates receive monotonically increasing suffixes.
type KeyCounts map[string]int

// Unique claims baseKey and returns either the base key itself (first
// claim) or baseKey plus a ".dupN" suffix.
func (kc KeyCounts) Unique(baseKey string) string {
	counter := kc[baseKey]
	if counter == 0 {
		kc[baseKey] = 1
		return baseKey
	}

	key := baseKey + ".dup" + strconv.Itoa(counter)
	kc[baseKey] = counter + 1
	return key
}

// ParseDupSuffix splits a key into its base key and optional duplicate
// index. Keys without a well-formed ".dupN" suffix return ok=false.
func ParseDupSuffix(key string) (base string, index int, ok bool) {
	pos := strings.LastIndex(key, ".dup")
	if pos <= 0 {
		return key, 0, false
	}

	suffix := key[pos+len(".dup"):]
	if suffix == "" {
		return key, 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return key, 0, false
		}
	}

	parsed, err := strconv.Atoi(suffix)
	if err != nil {
		return key, 0, false
	}
	return key[:pos], parsed, true
}

// RebuildKeyCounts reconstructs the duplicate counters from already
// finalized records so that incremental re-scans continue the suffix
// progression instead of restarting it.
func RebuildKeyCounts(records []Record) KeyCounts {
	counts := make(KeyCounts)
	for i := range records {
		base, index, ok := ParseDupSuffix(records[i].Key)
		required := 1
		if ok {
			required = index + 1
		}
		if counts[base] < required {
			counts[base] = required
		}
	}
	return counts
}

// Finalize assigns keys to candidates in order and converts them to
// records. The asset id equals the key.
func Finalize(candidates []Candidate, counts KeyCounts) []Record {
	records := make([]Record, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		key := counts.Unique(BaseKey(c))
		records = append(records, Record{
			AssetID:       key,
			Key:           key,
			SourceKind:    c.SourceKind,
			SourceName:    c.SourceName,
			Namespace:     c.Namespace,
			RelPath:       c.RelPath,
			Extension:     c.Extension,
			IsImage:       c.IsImage,
			IsAudio:       c.IsAudio,
			ContainerPath: c.ContainerPath,
			ContainerKind: c.ContainerKind,
			EntryPath:     c.EntryPath,
		})
	}
	return records
}

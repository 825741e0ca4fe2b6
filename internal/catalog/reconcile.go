package catalog

// Identity returns the container-level identity of a record, independent
// of its assigned key. Two records from different scans describe the same
// physical asset when their identities match.
func Identity(r *Record) string {
	return string(r.SourceKind) + "::" + r.SourceName + "::" + r.Namespace +
		"::" + r.RelPath + "::" + r.ContainerPath + "::" + r.EntryPath
}

// BuildReconciliationMap maps asset ids from a previous scan generation to
// ids in the next generation. Ids that survived map to themselves. Ids
// that disappeared are matched against next-generation records with the
// same identity, consumed in order so that N duplicates map to N distinct
// successors.
func BuildReconciliationMap(previous, next []Record) map[string]string {
	nextIDs := make(map[string]struct{}, len(next))
	nextByIdentity := make(map[string][]string)
	for i := range next {
		nextIDs[next[i].AssetID] = struct{}{}
		identity := Identity(&next[i])
		nextByIdentity[identity] = append(nextByIdentity[identity], next[i].AssetID)
	}

	cursor := make(map[string]int)
	idMap := make(map[string]string)
	for i := range previous {
		id := previous[i].AssetID
		if _, ok := nextIDs[id]; ok {
			idMap[id] = id
			continue
		}

		identity := Identity(&previous[i])
		candidates := nextByIdentity[identity]
		pos := cursor[identity]
		// Once every successor is consumed the remaining old ids have
		// no distinct counterpart and drop out of the map.
		if pos >= len(candidates) {
			continue
		}
		idMap[id] = candidates[pos]
		cursor[identity]++
	}

	return idMap
}

package search

import (
	"sort"
	"strings"

	"asset-explorer/internal/catalog"
	"asset-explorer/internal/tree"
)

const (
	// DefaultLimit applies when a query does not specify a page size.
	DefaultLimit = 200
	// MaxLimit caps the page size.
	MaxLimit = 1000
)

// Query describes one search request.
type Query struct {
	Text          string
	Offset        int
	Limit         int
	FolderNodeID  string
	IncludeImages bool
	IncludeAudio  bool
	IncludeOther  bool
}

// Result is one page of matches plus the total match count.
type Result struct {
	Total  int              `json:"total"`
	Assets []catalog.Record `json:"assets"`
}

// Run evaluates a query over a scan's assets. records must be
// index-aligned with assets.
func Run(assets []catalog.Record, records []Record, q Query) Result {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	if !q.IncludeImages && !q.IncludeAudio && !q.IncludeOther {
		return Result{Assets: []catalog.Record{}}
	}

	folderScope := strings.TrimSpace(q.FolderNodeID)
	if folderScope == tree.RootID {
		folderScope = ""
	}

	queryTokens := Tokenize(q.Text)
	if len(queryTokens) == 0 {
		return browse(assets, records, q, folderScope, offset, limit)
	}

	queryCompact := Compact(q.Text)
	normalizedQuery := strings.Join(queryTokens, " ")

	type ranked struct {
		score int
		index int
	}
	var matches []ranked
	for i := range assets {
		if !matchesMedia(&assets[i], q) {
			continue
		}
		if folderScope != "" && !tree.InSubtree(records[i].FolderNodeID, folderScope) {
			continue
		}
		if score, ok := Score(&records[i], queryTokens, queryCompact, normalizedQuery); ok {
			matches = append(matches, ranked{score: score, index: i})
		}
	}

	total := len(matches)
	rankedLess := func(a, b ranked) bool {
		if a.score != b.score {
			return a.score > b.score
		}
		return assets[a.index].Key < assets[b.index].Key
	}
	// Only candidates at or before the page boundary need ordering;
	// partition first so the sort stays bounded by the page, not the
	// match count.
	if boundary := offset + limit; boundary < total {
		selectTop(matches, boundary, rankedLess)
		matches = matches[:boundary]
	}
	sort.Slice(matches, func(a, b int) bool {
		return rankedLess(matches[a], matches[b])
	})

	pageOut := make([]catalog.Record, 0, limit)
	for _, match := range sliceWindow(matches, offset, limit) {
		pageOut = append(pageOut, assets[match.index])
	}
	return Result{Total: total, Assets: pageOut}
}

func browse(assets []catalog.Record, records []Record, q Query, folderScope string, offset, limit int) Result {
	var matched []int
	for i := range assets {
		if !matchesMedia(&assets[i], q) {
			continue
		}
		if folderScope != "" && !tree.InSubtree(records[i].FolderNodeID, folderScope) {
			continue
		}
		matched = append(matched, i)
	}

	sort.Slice(matched, func(a, b int) bool {
		return browseLess(&assets[matched[a]], &assets[matched[b]])
	})

	total := len(matched)
	pageOut := make([]catalog.Record, 0, limit)
	for _, index := range sliceWindow(matched, offset, limit) {
		pageOut = append(pageOut, assets[index])
	}
	return Result{Total: total, Assets: pageOut}
}

func matchesMedia(asset *catalog.Record, q Query) bool {
	if asset.IsImage {
		return q.IncludeImages
	}
	if asset.IsAudio {
		return q.IncludeAudio
	}
	return q.IncludeOther
}

// selectTop partially orders items so the first n elements are the n
// smallest under less, in unspecified relative order. Hoare-partition
// quickselect, expected linear time.
func selectTop[T any](items []T, n int, less func(a, b T) bool) {
	lo, hi := 0, len(items)-1
	for lo < hi {
		pivot := items[(lo+hi)/2]
		i, j := lo, hi
		for i <= j {
			for less(items[i], pivot) {
				i++
			}
			for less(pivot, items[j]) {
				j--
			}
			if i <= j {
				items[i], items[j] = items[j], items[i]
				i++
				j--
			}
		}
		switch {
		case n <= j:
			hi = j
		case n >= i:
			lo = i
		default:
			return
		}
	}
}

func sliceWindow[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

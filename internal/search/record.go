package search

import (
	"sort"
	"strings"

	"asset-explorer/internal/catalog"
	"asset-explorer/internal/tree"
)

// Record is the precomputed search view of one asset. It is persisted in
// scan snapshots alongside the asset list, index-aligned.
type Record struct {
	AllTokens           []string `json:"allTokens"`
	FilenameTokens      []string `json:"filenameTokens"`
	PathTokens          []string `json:"pathTokens"`
	NamespaceTokens     []string `json:"namespaceTokens"`
	SourceTokens        []string `json:"sourceTokens"`
	CompactAll          string   `json:"compactAll"`
	CompactFilename     string   `json:"compactFilename"`
	CompactFilenameStem string   `json:"compactFilenameStem"`
	Key                 string   `json:"key"`
	FolderNodeID        string   `json:"folderNodeId"`
}

// BuildRecord derives the search record for an asset.
func BuildRecord(asset *catalog.Record) Record {
	filename := asset.FileName()
	stem := filename
	if idx := strings.LastIndexByte(stem, '.'); idx > 0 {
		stem = stem[:idx]
	}

	filenameTokens := Tokenize(filename)
	pathTokens := Tokenize(asset.RelPath)
	namespaceTokens := Tokenize(asset.Namespace)
	sourceTokens := Tokenize(asset.SourceName)

	tokenSet := make(map[string]struct{})
	for _, group := range [][]string{Tokenize(asset.Key), pathTokens, namespaceTokens, sourceTokens} {
		for _, token := range group {
			tokenSet[token] = struct{}{}
		}
	}
	allTokens := make([]string, 0, len(tokenSet))
	for token := range tokenSet {
		allTokens = append(allTokens, token)
	}
	sort.Strings(allTokens)

	return Record{
		AllTokens:           allTokens,
		FilenameTokens:      filenameTokens,
		PathTokens:          pathTokens,
		NamespaceTokens:     namespaceTokens,
		SourceTokens:        sourceTokens,
		CompactAll:          Compact(asset.Key + " " + asset.SourceName + " " + asset.Namespace + " " + asset.RelPath),
		CompactFilename:     Compact(filename),
		CompactFilenameStem: Compact(stem),
		Key:                 strings.ToLower(asset.Key),
		FolderNodeID:        tree.FolderNodeID(asset),
	}
}

// Tokenize splits a string into lowercase alphanumeric runs.
func Tokenize(value string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			current.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			current.WriteRune(r + ('a' - 'A'))
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// Compact strips a string down to its lowercase alphanumerics.
func Compact(value string) string {
	var out strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			out.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			out.WriteRune(r + ('a' - 'A'))
		}
	}
	return out.String()
}

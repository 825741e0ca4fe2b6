package search

import "strings"

// Per-group match weights, ordered exact / prefix / substring. Filename
// hits dominate, provenance groups trail, and the pooled token set is the
// weakest signal.
const (
	filenameExact, filenamePrefix, filenameContains    = 320, 250, 180
	pathExact, pathPrefix, pathContains                = 170, 130, 95
	namespaceExact, namespacePrefix, namespaceContains = 140, 110, 80
	sourceExact, sourcePrefix, sourceContains          = 130, 100, 76
	allExact, allPrefix, allContains                   = 100, 80, 60

	fuzzyFilenameCap = 72
	fuzzyPathCap     = 48

	unmatchedTokenPenalty   = 100
	missingTokenPenalty     = 70
	fullCoverageBonus       = 90
	matchedTokenBonus       = 48
	stemExactBonus          = 450
	stemPrefixBonus         = 240
	filenameContainsBonus   = 190
	compactAllContainsBonus = 120
	keyContainsBonus        = 80
	extraFilenamePenalty    = 8
)

// Score rates a record against a tokenized query. The ok result is false
// when the record matches too few tokens to qualify: up to two query
// tokens must all match, longer queries need ceil(3n/5) matches.
func Score(record *Record, queryTokens []string, queryCompact, normalizedQuery string) (score int, ok bool) {
	if len(queryTokens) == 0 {
		return 0, true
	}

	matched := 0
	for _, queryToken := range queryTokens {
		tokenScore := scoreGroup(record.FilenameTokens, queryToken, filenameExact, filenamePrefix, filenameContains)
		tokenScore = max(tokenScore, scoreGroup(record.PathTokens, queryToken, pathExact, pathPrefix, pathContains))
		tokenScore = max(tokenScore, scoreGroup(record.NamespaceTokens, queryToken, namespaceExact, namespacePrefix, namespaceContains))
		tokenScore = max(tokenScore, scoreGroup(record.SourceTokens, queryToken, sourceExact, sourcePrefix, sourceContains))
		tokenScore = max(tokenScore, scoreGroup(record.AllTokens, queryToken, allExact, allPrefix, allContains))

		if tokenScore == 0 {
			tokenScore = scoreFuzzyGroup(record.FilenameTokens, queryToken, fuzzyFilenameCap)
			tokenScore = max(tokenScore, scoreFuzzyGroup(record.PathTokens, queryToken, fuzzyPathCap))
		}

		if tokenScore == 0 {
			score -= unmatchedTokenPenalty
			continue
		}
		matched++
		score += tokenScore
	}

	required := len(queryTokens)
	if required > 2 {
		required = (required*3 + 4) / 5
	}
	if matched < required {
		return 0, false
	}

	if missing := len(queryTokens) - matched; missing > 0 {
		score -= missing * missingTokenPenalty
	} else {
		score += fullCoverageBonus
	}
	score += matched * matchedTokenBonus

	if queryCompact != "" {
		switch {
		case record.CompactFilenameStem == queryCompact:
			score += stemExactBonus
		case strings.HasPrefix(record.CompactFilenameStem, queryCompact):
			score += stemPrefixBonus
		case strings.Contains(record.CompactFilename, queryCompact):
			score += filenameContainsBonus
		}
		if strings.Contains(record.CompactAll, queryCompact) {
			score += compactAllContainsBonus
		}
	}

	if normalizedQuery != "" && strings.Contains(record.Key, normalizedQuery) {
		score += keyContainsBonus
	}

	if extra := len(record.FilenameTokens) - matched; extra > 0 {
		score -= extra * extraFilenamePenalty
	}

	return score, true
}

func scoreGroup(tokens []string, queryToken string, exact, prefix, contains int) int {
	best := 0
	for _, token := range tokens {
		switch {
		case token == queryToken:
			return exact
		case strings.HasPrefix(token, queryToken) || strings.HasPrefix(queryToken, token):
			best = max(best, prefix)
		case strings.Contains(token, queryToken) || strings.Contains(queryToken, token):
			best = max(best, contains)
		}
	}
	return best
}

// scoreFuzzyGroup admits small typos but only for query tokens of at
// least four characters, capped at the group weight.
func scoreFuzzyGroup(tokens []string, queryToken string, capWeight int) int {
	if len(queryToken) < 4 {
		return 0
	}
	best := 0
	for _, token := range tokens {
		if score := scoreFuzzyToken(token, queryToken); score > 0 {
			best = max(best, min(capWeight, score))
		}
	}
	return best
}

// scoreFuzzyToken gates the edit-distance fallback: both tokens must be
// at least three characters, differ in length by at most two, and share
// their first character (or have it transposed). Distance one scores 72,
// two scores 54 for tokens of four-plus characters, three scores 40 for
// tokens of nine-plus characters.
func scoreFuzzyToken(token, queryToken string) int {
	tokenLen, queryLen := len(token), len(queryToken)
	if tokenLen < 3 || queryLen < 3 {
		return 0
	}
	delta := tokenLen - queryLen
	if delta < 0 {
		delta = -delta
	}
	if delta > 2 {
		return 0
	}

	sameStart := token[0] == queryToken[0]
	swapStart := tokenLen > 1 && queryLen > 1 && token[0] == queryToken[1] && token[1] == queryToken[0]
	if !sameStart && !swapStart {
		return 0
	}

	switch editDistance(token, queryToken) {
	case 1:
		return 72
	case 2:
		if tokenLen >= 4 && queryLen >= 4 {
			return 54
		}
	case 3:
		if tokenLen >= 9 && queryLen >= 9 {
			return 40
		}
	}
	return 0
}

// editDistance computes the Damerau-Levenshtein distance with adjacent
// transpositions, over the bytes of the already lowercased tokens.
func editDistance(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	previous2 := make([]int, lb+1)
	previous := make([]int, lb+1)
	current := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		previous[j] = j
	}

	for i := 1; i <= la; i++ {
		current[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[j] = min(previous[j]+1, min(current[j-1]+1, previous[j-1]+cost))
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				current[j] = min(current[j], previous2[j-2]+1)
			}
		}
		previous2, previous, current = previous, current, previous2
	}

	return previous[lb]
}

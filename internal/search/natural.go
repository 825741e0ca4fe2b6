package search

import (
	"math"
	"strconv"
	"strings"

	"asset-explorer/internal/catalog"
)

// NaturalCompare orders strings with embedded numbers numerically, so
// "step2" sorts before "step10". Digit runs compare as numbers, text runs
// compare case-insensitively, and at a number/text boundary the number
// wins.
func NaturalCompare(left, right string) int {
	leftChunks := naturalChunks(left)
	rightChunks := naturalChunks(right)

	for i := 0; i < len(leftChunks) || i < len(rightChunks); i++ {
		if i >= len(leftChunks) {
			return -1
		}
		if i >= len(rightChunks) {
			return 1
		}

		lc, rc := leftChunks[i], rightChunks[i]
		switch {
		case lc.isNumber && rc.isNumber:
			if lc.number != rc.number {
				if lc.number < rc.number {
					return -1
				}
				return 1
			}
		case lc.isNumber:
			return -1
		case rc.isNumber:
			return 1
		default:
			if cmp := strings.Compare(lc.text, rc.text); cmp != 0 {
				return cmp
			}
		}
	}
	return 0
}

type naturalChunk struct {
	isNumber bool
	number   uint64
	text     string
}

func naturalChunks(value string) []naturalChunk {
	var chunks []naturalChunk
	var current strings.Builder
	isNumber := false

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if isNumber {
			number, err := strconv.ParseUint(current.String(), 10, 64)
			if err != nil {
				number = math.MaxUint64
			}
			chunks = append(chunks, naturalChunk{isNumber: true, number: number})
		} else {
			chunks = append(chunks, naturalChunk{text: strings.ToLower(current.String())})
		}
		current.Reset()
	}

	for _, r := range value {
		digit := r >= '0' && r <= '9'
		if digit != isNumber {
			flush()
			isNumber = digit
		}
		current.WriteRune(r)
	}
	flush()
	return chunks
}

// browseLess is the empty-query ordering: by the last token of the
// filename stem naturally, then the whole lowercased filename naturally,
// then the key.
func browseLess(left, right *catalog.Record) bool {
	leftName, rightName := left.FileName(), right.FileName()
	if cmp := NaturalCompare(lastStemToken(leftName), lastStemToken(rightName)); cmp != 0 {
		return cmp < 0
	}
	if cmp := NaturalCompare(strings.ToLower(leftName), strings.ToLower(rightName)); cmp != 0 {
		return cmp < 0
	}
	return left.Key < right.Key
}

func lastStemToken(fileName string) string {
	stem := fileName
	if idx := strings.LastIndexByte(stem, '.'); idx > 0 {
		stem = stem[:idx]
	}
	tokens := Tokenize(stem)
	if len(tokens) == 0 {
		return strings.ToLower(stem)
	}
	return tokens[len(tokens)-1]
}

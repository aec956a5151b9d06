// Package index provides the vector store behind the catalogue
// retrieval engine: an interface plus an in-memory driver. A
// pgvector-backed driver lives in the repository layer.
package index

import (
	"context"
	"unicode/utf8"
)

// MaxSegmentLen bounds stored segment size in bytes.
const MaxSegmentLen = 2000

// ClampSegment cuts text to MaxSegmentLen without splitting a rune.
func ClampSegment(text string) string {
	if len(text) <= MaxSegmentLen {
		return text
	}
	cut := MaxSegmentLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// Match is one scored hit from a similarity search, highest first.
type Match struct {
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// Index is an append-only store of embedded text segments.
type Index interface {
	// Add stores one segment with its embedding vector.
	Add(ctx context.Context, text string, vector []float32) error

	// Search returns up to maxResults segments with similarity >= minScore,
	// ordered by descending score.
	Search(ctx context.Context, vector []float32, maxResults int, minScore float64) ([]Match, error)

	// Len reports how many segments are stored.
	Len(ctx context.Context) (int, error)

	// Clear removes every stored segment. Reindexing runs this first.
	Clear(ctx context.Context) error
}

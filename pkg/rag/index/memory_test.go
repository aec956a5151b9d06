package index

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestMemoryIndexAddAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	segments := []struct {
		text   string
		vector []float32
	}{
		{"[source:book-service#1] Dune by Frank Herbert.", []float32{1, 0, 0}},
		{"[source:book-service#2] Mistborn by Brandon Sanderson.", []float32{0, 1, 0}},
		{"[source:book-service#3] The Martian by Andy Weir.", []float32{0.9, 0.1, 0}},
	}
	for _, s := range segments {
		if err := idx.Add(ctx, s.text, s.vector); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	got, err := idx.Search(ctx, []float32{1, 0, 0}, 2, 0.5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if !strings.Contains(got[0].Text, "Dune") {
		t.Errorf("best match = %q, want Dune segment", got[0].Text)
	}
	if !strings.Contains(got[1].Text, "Martian") {
		t.Errorf("second match = %q, want Martian segment", got[1].Text)
	}
	if got[0].Score < got[1].Score {
		t.Errorf("scores not descending: %v then %v", got[0].Score, got[1].Score)
	}
}

func TestMemoryIndexMinScoreFiltersAll(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	if err := idx.Add(ctx, "orthogonal", []float32{0, 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := idx.Search(ctx, []float32{1, 0}, 5, 0.5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d matches, want 0", len(got))
	}
}

func TestMemoryIndexRejectsDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	if err := idx.Add(ctx, "a", []float32{1, 0, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Add(ctx, "b", []float32{1, 0}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestMemoryIndexRejectsEmptyVector(t *testing.T) {
	idx := NewMemoryIndex()
	if err := idx.Add(context.Background(), "a", nil); err == nil {
		t.Fatal("expected error for empty vector")
	}
}

func TestMemoryIndexTruncatesLongSegments(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	long := strings.Repeat("x", MaxSegmentLen+500)
	if err := idx.Add(ctx, long, []float32{1}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := idx.Search(ctx, []float32{1}, 1, 0.9)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	if len(got[0].Text) != MaxSegmentLen {
		t.Errorf("stored segment length = %d, want %d", len(got[0].Text), MaxSegmentLen)
	}
}

func TestClampSegmentKeepsRunesWhole(t *testing.T) {
	// 2-byte runes, repeated past the limit so the cut lands mid-rune.
	long := strings.Repeat("é", MaxSegmentLen)

	got := ClampSegment(long)
	if len(got) > MaxSegmentLen {
		t.Errorf("clamped length = %d, want <= %d", len(got), MaxSegmentLen)
	}
	if !utf8.ValidString(got) {
		t.Error("clamped segment is not valid UTF-8")
	}
	if got != long[:len(got)] {
		t.Error("clamped segment is not a prefix of the input")
	}

	if short := ClampSegment("abc"); short != "abc" {
		t.Errorf("short segment changed: %q", short)
	}
}

func TestMemoryIndexClearAndLen(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	if err := idx.Add(ctx, "a", []float32{1, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	n, err := idx.Len(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Len = %d, %v; want 1, nil", n, err)
	}

	if err := idx.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	n, _ = idx.Len(ctx)
	if n != 0 {
		t.Errorf("Len after Clear = %d, want 0", n)
	}

	// Dims reset: a different width is accepted again.
	if err := idx.Add(ctx, "b", []float32{1, 0, 0}); err != nil {
		t.Errorf("Add after Clear: %v", err)
	}
}

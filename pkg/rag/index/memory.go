package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

type memorySegment struct {
	text   string
	vector []float32
}

// MemoryIndex is a process-local cosine-similarity index. Good enough
// for a single-node deployment where the catalogue is reindexed on
// startup; use the pgvector driver when the index must survive restarts.
type MemoryIndex struct {
	mu       sync.RWMutex
	segments []memorySegment
	dims     int
}

var _ Index = &MemoryIndex{}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Add(ctx context.Context, text string, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty embedding vector")
	}
	text = ClampSegment(text)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dims == 0 {
		m.dims = len(vector)
	} else if m.dims != len(vector) {
		return fmt.Errorf("embedding dimension mismatch: index has %d, got %d", m.dims, len(vector))
	}
	m.segments = append(m.segments, memorySegment{text: text, vector: vector})
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, vector []float32, maxResults int, minScore float64) ([]Match, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Match
	for _, seg := range m.segments {
		score := cosineSimilarity(vector, seg.vector)
		if score >= minScore {
			out = append(out, Match{Score: score, Text: seg.text})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

func (m *MemoryIndex) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments = nil
	m.dims = 0
	return nil
}

func (m *MemoryIndex) Len(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.segments), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

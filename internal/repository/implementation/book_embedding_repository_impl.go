package implementation

import (
	"context"
	"encoding/json"
	"fmt"

	"intellicart-assistant-be/internal/model"
	"intellicart-assistant-be/pkg/rag/index"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// BookEmbeddingRepositoryImpl is the Postgres-backed catalogue index.
// It stores catalogue segments with their vectors and answers
// similarity searches with pgvector's cosine distance operator, so it
// plugs in wherever the in-memory index does.
type BookEmbeddingRepositoryImpl struct {
	db *gorm.DB
}

func NewBookEmbeddingRepository(db *gorm.DB) *BookEmbeddingRepositoryImpl {
	return &BookEmbeddingRepositoryImpl{db: db}
}

var _ index.Index = (*BookEmbeddingRepositoryImpl)(nil)

func (r *BookEmbeddingRepositoryImpl) Add(ctx context.Context, text string, vector []float32) error {
	if text == "" {
		return fmt.Errorf("refusing to index empty text")
	}
	if len(vector) == 0 {
		return fmt.Errorf("refusing to index empty vector")
	}
	text = index.ClampSegment(text)

	meta, _ := json.Marshal(map[string]interface{}{"length": len(text)})

	m := &model.BookEmbedding{
		Document:       text,
		EmbeddingValue: pgvector.NewVector(vector),
		Metadata:       meta,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("insert book embedding: %w", err)
	}
	return nil
}

func (r *BookEmbeddingRepositoryImpl) Search(ctx context.Context, vector []float32, maxResults int, minScore float64) ([]index.Match, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so the
	// similarity is recovered as 1 - (embedding_value <=> query).
	type row struct {
		Document   string
		Similarity float64
	}
	var rows []row

	queryVector := pgvector.NewVector(vector)

	err := r.db.WithContext(ctx).
		Table("book_embeddings").
		Select("document, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, minScore).
		Order("similarity DESC").
		Limit(maxResults).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search book embeddings: %w", err)
	}

	matches := make([]index.Match, len(rows))
	for i, res := range rows {
		matches[i] = index.Match{Score: res.Similarity, Text: res.Document}
	}
	return matches, nil
}

func (r *BookEmbeddingRepositoryImpl) Len(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.BookEmbedding{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count book embeddings: %w", err)
	}
	return int(count), nil
}

// Clear drops every indexed segment. A reindex runs this first so the
// catalogue never holds stale copies of a book.
func (r *BookEmbeddingRepositoryImpl) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec("DELETE FROM book_embeddings").Error; err != nil {
		return fmt.Errorf("clear book embeddings: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"intellicart-assistant-be/internal/client"
	"intellicart-assistant-be/internal/dto"
	"intellicart-assistant-be/internal/pkg/logger"
	"intellicart-assistant-be/pkg/rag"
)

const searchTopMinScore = 0.25

// ICatalogueService owns the retrieval index over the book catalogue:
// reindexing from book-service, raw similarity search, and grounded QA.
type ICatalogueService interface {
	Reindex(ctx context.Context) (*dto.ReindexResponse, error)
	SearchTop(ctx context.Context, query string, limit int) (*dto.CatalogueSearchResponse, error)
	Answer(ctx context.Context, question string) *dto.CatalogueQAResponse
}

type catalogueService struct {
	books  client.IBookClient
	engine *rag.Engine
	logger logger.ILogger
}

func NewCatalogueService(books client.IBookClient, engine *rag.Engine, log logger.ILogger) ICatalogueService {
	return &catalogueService{books: books, engine: engine, logger: log}
}

// Reindex rebuilds the vector index from the live catalogue. One
// segment per book; books that fail to embed are skipped, not fatal.
func (s *catalogueService) Reindex(ctx context.Context) (*dto.ReindexResponse, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalogue: %w", err)
	}
	if len(books) == 0 {
		s.logger.Warn("catalogue", "book-service returned an empty catalogue", nil)
		return &dto.ReindexResponse{Status: "Indexed 0 books (book-service returned nothing)"}, nil
	}

	if err := s.engine.Index().Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear index: %w", err)
	}

	segments := 0
	for _, b := range books {
		text := bookSegment(b)
		vector, err := s.engine.Embed(text)
		if err != nil {
			s.logger.Warn("catalogue", "embed failed, skipping book", map[string]interface{}{
				"bookId": b.ID, "error": err.Error(),
			})
			continue
		}
		if err := s.engine.Index().Add(ctx, text, vector); err != nil {
			s.logger.Warn("catalogue", "index add failed, skipping book", map[string]interface{}{
				"bookId": b.ID, "error": err.Error(),
			})
			continue
		}
		segments++
	}

	s.logger.Info("catalogue", "reindex complete", map[string]interface{}{
		"books": len(books), "segments": segments,
	})
	return &dto.ReindexResponse{
		Status:   fmt.Sprintf("Indexed %d books (%d segments)", len(books), segments),
		Books:    len(books),
		Segments: segments,
	}, nil
}

func (s *catalogueService) SearchTop(ctx context.Context, query string, limit int) (*dto.CatalogueSearchResponse, error) {
	if limit <= 0 {
		limit = 5
	}
	matches, err := s.engine.Search(ctx, query, limit, searchTopMinScore)
	if err != nil {
		return nil, err
	}
	results := make([]dto.CatalogueSearchResult, len(matches))
	for i, m := range matches {
		results[i] = dto.CatalogueSearchResult{Score: m.Score, Text: m.Text}
	}
	return &dto.CatalogueSearchResponse{Query: query, Results: results}, nil
}

func (s *catalogueService) Answer(ctx context.Context, question string) *dto.CatalogueQAResponse {
	return &dto.CatalogueQAResponse{
		Question: question,
		Answer:   s.engine.Answer(ctx, question),
	}
}

// bookSegment is the indexed text for one book. The source tag keys
// the engine's grouping and footer rendering.
func bookSegment(b client.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[source:book-service#%d] %s by %s.", b.ID, b.Title, b.Author)
	if b.Genre != "" {
		fmt.Fprintf(&sb, " Genre: %s.", b.Genre)
	}
	if b.Summary != "" {
		sb.WriteString(" " + strings.TrimSpace(b.Summary))
	}
	if b.Notes != "" {
		sb.WriteString(" " + strings.TrimSpace(b.Notes))
	}
	return sb.String()
}

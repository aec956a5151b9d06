package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"intellicart-assistant-be/internal/client"
	"intellicart-assistant-be/pkg/embedding"
	"intellicart-assistant-be/pkg/rag"
	"intellicart-assistant-be/pkg/rag/index"

	"github.com/stretchr/testify/assert"
)

// keyedEmbedder returns a fixed vector per keyword so similarity is
// deterministic without a live embedding service.
type keyedEmbedder struct {
	vectors map[string][]float32
	def     []float32
	err     error
}

func (k *keyedEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	if k.err != nil {
		return nil, k.err
	}
	out := k.def
	for word, vec := range k.vectors {
		if strings.Contains(strings.ToLower(text), word) {
			out = vec
			break
		}
	}
	resp := &embedding.EmbeddingResponse{}
	resp.Embedding.Values = out
	return resp, nil
}

type fakeBookClient struct {
	books []client.Book
	err   error
}

func (f *fakeBookClient) List(ctx context.Context) ([]client.Book, error) {
	return f.books, f.err
}

func (f *fakeBookClient) ListByGenre(ctx context.Context, genre string) ([]client.Book, error) {
	return f.books, f.err
}

func (f *fakeBookClient) Search(ctx context.Context, query string) ([]client.Book, error) {
	return f.books, f.err
}

func catalogueFixture(books *fakeBookClient, emb *keyedEmbedder) ICatalogueService {
	engine := rag.NewEngine(emb, index.NewMemoryIndex(), &routingProvider{}, nil)
	return NewCatalogueService(books, engine, nopLogger{})
}

func TestReindexBuildsSegments(t *testing.T) {
	books := &fakeBookClient{books: []client.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Summary: "Desert politics."},
		{ID: 2, Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy"},
	}}
	emb := &keyedEmbedder{def: []float32{1, 0}}
	svc := catalogueFixture(books, emb)

	res, err := svc.Reindex(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "Indexed 2 books (2 segments)", res.Status)
	assert.Equal(t, 2, res.Books)
	assert.Equal(t, 2, res.Segments)
}

func TestReindexEmptyCatalogue(t *testing.T) {
	svc := catalogueFixture(&fakeBookClient{}, &keyedEmbedder{def: []float32{1, 0}})

	res, err := svc.Reindex(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "Indexed 0 books (book-service returned nothing)", res.Status)
}

func TestReindexBookServiceDown(t *testing.T) {
	svc := catalogueFixture(&fakeBookClient{err: errors.New("connection refused")}, &keyedEmbedder{def: []float32{1, 0}})

	_, err := svc.Reindex(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch catalogue")
}

func TestReindexSkipsBooksThatFailToEmbed(t *testing.T) {
	books := &fakeBookClient{books: []client.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert"},
	}}
	svc := catalogueFixture(books, &keyedEmbedder{err: errors.New("embedder down")})

	res, err := svc.Reindex(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, res.Segments)
	assert.Contains(t, res.Status, "(0 segments)")
}

func TestSearchTopRanksByQueryVector(t *testing.T) {
	books := &fakeBookClient{books: []client.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi"},
		{ID: 2, Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy"},
	}}
	emb := &keyedEmbedder{
		vectors: map[string][]float32{
			"dune":   {1, 0},
			"hobbit": {0, 1},
		},
		def: []float32{1, 0},
	}
	svc := catalogueFixture(books, emb)
	_, err := svc.Reindex(context.Background())
	assert.NoError(t, err)

	res, err := svc.SearchTop(context.Background(), "dune", 5)
	assert.NoError(t, err)
	if assert.NotEmpty(t, res.Results) {
		assert.Contains(t, res.Results[0].Text, "Dune")
		assert.InDelta(t, 1.0, res.Results[0].Score, 0.001)
	}
	for _, r := range res.Results {
		assert.NotContains(t, r.Text, "Hobbit")
	}
}

func TestSearchTopDefaultsLimit(t *testing.T) {
	svc := catalogueFixture(&fakeBookClient{}, &keyedEmbedder{def: []float32{1, 0}})

	res, err := svc.SearchTop(context.Background(), "anything", 0)
	assert.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Equal(t, "anything", res.Query)
}

func TestBookSegmentShape(t *testing.T) {
	seg := bookSegment(client.Book{
		ID: 7, Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi",
		Summary: "Desert politics.", Notes: "A classic.",
	})
	assert.Equal(t, "[source:book-service#7] Dune by Frank Herbert. Genre: Sci-Fi. Desert politics. A classic.", seg)

	bare := bookSegment(client.Book{ID: 8, Title: "Untitled", Author: "Anon"})
	assert.Equal(t, "[source:book-service#8] Untitled by Anon.", bare)
}

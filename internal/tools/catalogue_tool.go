package tools

import (
	"context"
	"fmt"
	"strings"

	"intellicart-assistant-be/internal/client"
	"intellicart-assistant-be/pkg/agent"
	"intellicart-assistant-be/pkg/rag"
)

// The two short-circuit tools. Their results are already user-facing
// text: the bridge returns them verbatim instead of composing a reply.

const recommendBooksSchema = `{"name":"recommend_books","description":"Recommend up to 3 books for a preference from the indexed catalogue. Output is user-ready text.","parameters":{"type":"object","properties":{"preference":{"type":"string"}},"required":["preference"]}}`

const searchCatalogueSchema = `{"name":"search_catalogue","description":"Search the catalogue (title/authors). Returns up to 5 'Title — Author' lines of user-ready text.","parameters":{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}}`

const searchResultLimit = 5

// RecommendBooksTool answers with a numbered, user-ready block from the
// retrieval engine.
type RecommendBooksTool struct {
	engine *rag.Engine
}

var _ agent.Tool = &RecommendBooksTool{}

func NewRecommendBooksTool(engine *rag.Engine) *RecommendBooksTool {
	return &RecommendBooksTool{engine: engine}
}

func (t *RecommendBooksTool) Schema() string { return recommendBooksSchema }

func (t *RecommendBooksTool) Handle(ctx context.Context, action string, args map[string]interface{}, session *agent.ToolSession) agent.Result {
	pref, _ := args["preference"].(string)
	text := t.engine.RecommendFromCatalogue(ctx, pref, 3)
	return agent.OK(map[string]interface{}{"text": text})
}

// SearchCatalogueTool returns "Title — Author" lines from the book
// service, falling back to a local substring filter over the full
// catalogue when the search endpoint fails.
type SearchCatalogueTool struct {
	books client.IBookClient
}

var _ agent.Tool = &SearchCatalogueTool{}

func NewSearchCatalogueTool(books client.IBookClient) *SearchCatalogueTool {
	return &SearchCatalogueTool{books: books}
}

func (t *SearchCatalogueTool) Schema() string { return searchCatalogueSchema }

func (t *SearchCatalogueTool) Handle(ctx context.Context, action string, args map[string]interface{}, session *agent.ToolSession) agent.Result {
	q, _ := args["query"].(string)
	q = strings.TrimSpace(q)
	if q == "" {
		return agent.OK(map[string]interface{}{"lines": []string{"Please provide a non-empty search query."}})
	}

	if books, err := t.books.Search(ctx, q); err == nil && len(books) > 0 {
		if lines := titleAuthorLines(books, searchResultLimit); len(lines) > 0 {
			return agent.OK(map[string]interface{}{"lines": lines})
		}
	}

	all, err := t.books.List(ctx)
	if err != nil || len(all) == 0 {
		return agent.OK(map[string]interface{}{"lines": []string{"No catalogue data available."}})
	}

	needle := strings.ToLower(q)
	var filtered []client.Book
	for _, b := range all {
		if strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.Author), needle) ||
			strings.Contains(strings.ToLower(b.Genre), needle) {
			filtered = append(filtered, b)
		}
	}
	if len(filtered) == 0 {
		return agent.OK(map[string]interface{}{"lines": []string{fmt.Sprintf("No matches for %q in the catalogue.", q)}})
	}
	return agent.OK(map[string]interface{}{"lines": titleAuthorLines(filtered, searchResultLimit)})
}

func titleAuthorLines(books []client.Book, limit int) []string {
	var lines []string
	for _, b := range books {
		if strings.TrimSpace(b.Title) == "" {
			continue
		}
		line := b.Title
		if strings.TrimSpace(b.Author) != "" {
			line += " — " + b.Author
		}
		lines = append(lines, line)
		if len(lines) == limit {
			break
		}
	}
	return lines
}

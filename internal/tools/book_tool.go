package tools

import (
	"context"
	"fmt"
	"strings"

	"intellicart-assistant-be/internal/client"
	"intellicart-assistant-be/pkg/agent"
)

const bookToolSchema = `{"name":"bookTool","description":"Catalogue & recommendations","parameters":{"type":"object","properties":{"action":{"type":"string","enum":["recommend","search"]},"preference":{"type":"string"},"query":{"type":"string"}},"required":["action"]}}`

const catalogueLimit = 3

type BookTool struct {
	books client.IBookClient
}

var _ agent.Tool = &BookTool{}

func NewBookTool(books client.IBookClient) *BookTool {
	return &BookTool{books: books}
}

func (t *BookTool) Schema() string { return bookToolSchema }

func (t *BookTool) Handle(ctx context.Context, action string, args map[string]interface{}, session *agent.ToolSession) agent.Result {
	switch action {
	case "search":
		q, _ := args["query"].(string)
		if strings.TrimSpace(q) == "" {
			return agent.Err("query is required")
		}
		books, err := t.books.Search(ctx, q)
		if err != nil {
			return agent.Err("book-service unreachable: " + err.Error())
		}
		return agent.OK(map[string]interface{}{"items": books})

	case "recommend":
		pref, _ := args["preference"].(string)
		books, err := t.recommendCatalogue(ctx, pref)
		if err != nil {
			return agent.Err("book-service unreachable: " + err.Error())
		}
		return agent.OK(map[string]interface{}{"items": books})

	default:
		return agent.Err(fmt.Sprintf("unsupported book action: %s", action))
	}
}

// recommendCatalogue picks candidates by genre when the preference
// names one, else by search, else falls back to the first page of the
// catalogue.
func (t *BookTool) recommendCatalogue(ctx context.Context, pref string) ([]client.Book, error) {
	p := strings.TrimSpace(strings.ToLower(pref))
	if p == "" {
		return t.books.List(ctx)
	}

	for keyword, genre := range map[string]string{"sci": "sci-fi", "science": "sci-fi", "fantasy": "fantasy", "romance": "romance"} {
		if strings.Contains(p, keyword) {
			if byGenre, err := t.books.ListByGenre(ctx, genre); err == nil && len(byGenre) > 0 {
				return limitBooks(byGenre, catalogueLimit), nil
			}
		}
	}

	if bySearch, err := t.books.Search(ctx, pref); err == nil && len(bySearch) > 0 {
		return limitBooks(bySearch, catalogueLimit), nil
	}
	return t.books.List(ctx)
}

func limitBooks(books []client.Book, n int) []client.Book {
	if len(books) > n {
		return books[:n]
	}
	return books
}

package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Book is a catalogue record from the book service.
type Book struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Author  string  `json:"author"`
	Genre   string  `json:"genre"`
	Price   float64 `json:"price"`
	Summary string  `json:"summary"`
	Notes   string  `json:"notes"`
}

// IBookClient is the catalogue surface the assistant needs.
type IBookClient interface {
	List(ctx context.Context) ([]Book, error)
	ListByGenre(ctx context.Context, genre string) ([]Book, error)
	Search(ctx context.Context, query string) ([]Book, error)
}

type bookClient struct {
	baseURL string
	client  *http.Client
}

func NewBookClient(baseURL string) IBookClient {
	return &bookClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
	}
}

func (c *bookClient) List(ctx context.Context) ([]Book, error) {
	var books []Book
	if err := getJSON(ctx, c.client, c.baseURL+"/api/books", &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *bookClient) ListByGenre(ctx context.Context, genre string) ([]Book, error) {
	var books []Book
	u := c.baseURL + "/api/books?genre=" + url.QueryEscape(genre)
	if err := getJSON(ctx, c.client, u, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *bookClient) Search(ctx context.Context, query string) ([]Book, error) {
	var books []Book
	u := c.baseURL + "/api/books/search?q=" + url.QueryEscape(query)
	if err := getJSON(ctx, c.client, u, &books); err != nil {
		return nil, err
	}
	return books, nil
}

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newUserDirectory(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"username":"alice"},{"id":2,"username":"malcolm"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveByNameExactMatch(t *testing.T) {
	srv := newUserDirectory(t)
	c := NewUserClient(srv.URL)

	user, err := c.ResolveByName(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("ResolveByName: %v", err)
	}
	if user == nil || user.ID != 1 {
		t.Errorf("user = %+v, want alice (id 1)", user)
	}
}

// Partial names must not log anyone in: "al" is a prefix of alice and a
// substring of malcolm, and neither counts.
func TestResolveByNameRejectsPartialMatches(t *testing.T) {
	srv := newUserDirectory(t)
	c := NewUserClient(srv.URL)

	for _, name := range []string{"al", "colm", "lic"} {
		user, err := c.ResolveByName(context.Background(), name)
		if err != nil {
			t.Fatalf("ResolveByName(%q): %v", name, err)
		}
		if user != nil {
			t.Errorf("ResolveByName(%q) = %+v, want nil", name, user)
		}
	}
}

func TestResolveByNameEmptyInput(t *testing.T) {
	srv := newUserDirectory(t)
	c := NewUserClient(srv.URL)

	user, err := c.ResolveByName(context.Background(), "   ")
	if err != nil || user != nil {
		t.Errorf("got %+v, %v; want nil, nil", user, err)
	}
}

func TestResolveByNameDirectoryDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := NewUserClient(srv.URL)

	if _, err := c.ResolveByName(context.Background(), "alice"); err == nil {
		t.Error("expected error when the directory is down")
	}
}

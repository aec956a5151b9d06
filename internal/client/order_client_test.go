package client

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"intellicart-assistant-be/pkg/store"
)

func TestPlaceOrderPostsCartAndReportsLedgerReply(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders" || r.Method != "POST" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":77,"totalAmount":35.98}`))
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL)
	cart := []*store.Recommendation{
		store.NewRecommendation(7101, "Dune", "classic", 19.99),
		store.NewRecommendation(7102, "Foundation", "math", 15.99),
	}

	placed := c.PlaceOrder(context.Background(), 1, cart)
	if placed.ID != "77" {
		t.Errorf("id = %q, want 77", placed.ID)
	}
	if placed.TotalAmount != 35.98 {
		t.Errorf("amount = %v, want 35.98", placed.TotalAmount)
	}

	if got["userId"] != float64(1) {
		t.Errorf("payload userId = %v", got["userId"])
	}
	items, ok := got["items"].([]interface{})
	if !ok || len(items) != 2 {
		t.Fatalf("payload items = %v", got["items"])
	}
	first := items[0].(map[string]interface{})
	if first["bookId"] != float64(7101) || first["quantity"] != float64(1) {
		t.Errorf("first line = %v", first)
	}
	if math.Abs(got["totalAmount"].(float64)-35.98) > 1e-9 {
		t.Errorf("payload total = %v, want 35.98", got["totalAmount"])
	}
}

// An unreachable ledger is not a failed checkout: the reply carries the
// locally computed total and an "unknown" order id.
func TestPlaceOrderItemsLedgerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL)
	items := []OrderItem{
		{BookID: 7101, Quantity: 1, Price: 19.99},
		{BookID: 7102, Quantity: 1, Price: 15.99},
	}

	placed := c.PlaceOrderItems(context.Background(), 1, items)
	if placed.ID != "unknown" {
		t.Errorf("id = %q, want unknown", placed.ID)
	}
	if math.Abs(placed.TotalAmount-35.98) > 1e-9 {
		t.Errorf("amount = %v, want 35.98", placed.TotalAmount)
	}
}

func TestPlaceOrderItemsClampsQuantity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL)
	placed := c.PlaceOrderItems(context.Background(), 1, []OrderItem{{BookID: 7101, Quantity: 0, Price: 10.00}})
	if placed.TotalAmount != 10.00 {
		t.Errorf("amount = %v, want 10.00 (quantity clamped to 1)", placed.TotalAmount)
	}
}

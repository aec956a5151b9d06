package client

import (
	"context"
	"net/http"
	"strings"

	"intellicart-assistant-be/pkg/store"
)

// OrderItem is one line of an order payload.
type OrderItem struct {
	BookID   int64   `json:"bookId"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// PlacedOrder is what checkout reports back to the user. When the order
// service is unreachable the ID is "unknown" and the amount is the
// locally computed total; the conversation continues either way.
type PlacedOrder struct {
	ID          string
	TotalAmount float64
}

// IOrderClient is the order ledger surface the assistant needs.
type IOrderClient interface {
	ListRaw(ctx context.Context) (interface{}, error)
	ListForUserRaw(ctx context.Context, userID int64) (interface{}, error)
	PlaceOrder(ctx context.Context, userID int64, cart []*store.Recommendation) PlacedOrder
	PlaceOrderItems(ctx context.Context, userID int64, items []OrderItem) PlacedOrder
}

type orderClient struct {
	baseURL string
	client  *http.Client
}

func NewOrderClient(baseURL string) IOrderClient {
	return &orderClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
	}
}

func (c *orderClient) ListRaw(ctx context.Context) (interface{}, error) {
	var raw interface{}
	if err := getJSON(ctx, c.client, c.baseURL+"/api/orders", &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *orderClient) ListForUserRaw(ctx context.Context, userID int64) (interface{}, error) {
	var raw interface{}
	if err := getJSON(ctx, c.client, fmt64(c.baseURL+"/api/orders/user/", userID), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// PlaceOrder submits the cart as an order of quantity-1 lines.
func (c *orderClient) PlaceOrder(ctx context.Context, userID int64, cart []*store.Recommendation) PlacedOrder {
	items := make([]OrderItem, 0, len(cart))
	for _, r := range cart {
		items = append(items, OrderItem{BookID: r.BookID, Quantity: 1, Price: r.Price})
	}
	return c.PlaceOrderItems(ctx, userID, items)
}

// PlaceOrderItems posts the order and optimistically reports success.
// The total is computed locally so the user sees a consistent amount
// even when the ledger never acknowledged the order.
func (c *orderClient) PlaceOrderItems(ctx context.Context, userID int64, items []OrderItem) PlacedOrder {
	total := 0.0
	for _, it := range items {
		q := it.Quantity
		if q < 1 {
			q = 1
		}
		total += it.Price * float64(q)
	}

	payload := map[string]interface{}{
		"userId":      userID,
		"items":       items,
		"totalAmount": total,
	}

	var resp map[string]interface{}
	if err := postJSON(ctx, c.client, c.baseURL+"/api/orders", payload, &resp); err != nil {
		return PlacedOrder{ID: "unknown", TotalAmount: total}
	}

	id := "unknown"
	if v, ok := resp["id"]; ok && v != nil {
		id = stringify(v)
	}
	amount := total
	if v, ok := resp["totalAmount"].(float64); ok {
		amount = v
	}
	return PlacedOrder{ID: id, TotalAmount: amount}
}

package tools

import (
	"context"
	"fmt"

	"intellicart-assistant-be/internal/client"
	"intellicart-assistant-be/pkg/agent"
)

const orderToolSchema = `{"name":"orderTool","description":"Orders and checkout","parameters":{"type":"object","properties":{"action":{"type":"string","enum":["listOrdersForUser","checkout"]},"userId":{"type":"integer"}},"required":["action"]}}`

type OrderTool struct {
	orders client.IOrderClient
}

var _ agent.Tool = &OrderTool{}

func NewOrderTool(orders client.IOrderClient) *OrderTool {
	return &OrderTool{orders: orders}
}

func (t *OrderTool) Schema() string { return orderToolSchema }

func (t *OrderTool) Handle(ctx context.Context, action string, args map[string]interface{}, session *agent.ToolSession) agent.Result {
	switch action {
	case "listOrdersForUser":
		uid, ok := userID(args, session)
		if !ok {
			return agent.Err("userId is required")
		}
		orders, err := t.orders.ListForUserRaw(ctx, uid)
		if err != nil {
			return agent.Err("order-service unreachable: " + err.Error())
		}
		return agent.OK(map[string]interface{}{"orders": orders})

	case "checkout":
		uid, ok := userID(args, session)
		if !ok {
			return agent.Err("userId is required")
		}
		items := make([]client.OrderItem, 0, len(session.Cart))
		for _, c := range session.Cart {
			items = append(items, client.OrderItem{BookID: c.BookID, Quantity: c.Quantity, Price: c.Price})
		}
		order := t.orders.PlaceOrderItems(ctx, uid, items)
		session.ClearCart()
		return agent.OK(map[string]interface{}{"order": map[string]interface{}{
			"id":          order.ID,
			"totalAmount": order.TotalAmount,
		}})

	default:
		return agent.Err(fmt.Sprintf("unsupported order action: %s", action))
	}
}

// userID resolves from the call args first, then from the session the
// user tool populated earlier in the conversation.
func userID(args map[string]interface{}, session *agent.ToolSession) (int64, bool) {
	if uid, ok := argInt64(args, "userId"); ok {
		return uid, true
	}
	if session.UserID != 0 {
		return session.UserID, true
	}
	return 0, false
}

// Package agent implements the text-protocol tool-calling bridge: a
// two-pass conversation loop where the model may request exactly one
// structured action per turn via a TOOL_CALL directive line.
package agent

import "context"

// Call is a parsed tool request from the model.
type Call struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// Result is the outcome of one tool execution. A result either carries
// data or a human-readable error, never both.
type Result struct {
	OK    bool                   `json:"ok"`
	Data  map[string]interface{} `json:"data"`
	Error string                 `json:"error,omitempty"`
}

func OK(data map[string]interface{}) Result {
	return Result{OK: true, Data: data}
}

func Err(msg string) Result {
	return Result{OK: false, Error: msg}
}

// Tool handles one named action family (user directory, orders,
// catalogue). The action string comes from the call args.
type Tool interface {
	// Handle executes one action. Implementations convert downstream
	// failures into Err results; they do not panic or return Go errors.
	Handle(ctx context.Context, action string, args map[string]interface{}, session *ToolSession) Result

	// Schema returns the JSON signature advertised to the model.
	Schema() string
}

// ToolSession is the slice of conversational state tools may read or
// mutate: the resolved user and the cart being assembled.
type ToolSession struct {
	UserID int64
	Cart   []CartItem
}

// CartItem is the order line a tool-driven checkout sends downstream.
type CartItem struct {
	BookID   int64   `json:"bookId"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func (s *ToolSession) ClearCart() {
	s.Cart = s.Cart[:0]
}

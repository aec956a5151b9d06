package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ORDER_PLACED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a plain Event implementation; constructors below fill it
// with the payload shape consumers expect.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const OrderPlacedType = "ORDER_PLACED"

// NewOrderPlaced builds the event emitted after a successful checkout.
// Consumers forward it to the bus and send the confirmation email.
func NewOrderPlaced(sessionID string, userID int64, orderID string, totalAmount float64, items []map[string]interface{}) Event {
	return BaseEvent{
		Type: OrderPlacedType,
		Data: map[string]interface{}{
			"sessionId":   sessionID,
			"userId":      userID,
			"orderId":     orderID,
			"totalAmount": totalAmount,
			"items":       items,
		},
		OccurredAt: time.Now(),
	}
}

package amqp

import (
	"encoding/json"
	"time"
)

// OrderCreatedMessage is the lightweight queue payload for a new order.
// It carries identifiers only; the worker fetches the full order from
// the database so the queue never holds customer data.
type OrderCreatedMessage struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewOrderCreatedMessage(id, orderNumber string) *OrderCreatedMessage {
	return &OrderCreatedMessage{
		ID:          id,
		OrderNumber: orderNumber,
		Timestamp:   time.Now(),
	}
}

func (m *OrderCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func OrderCreatedMessageFromJSON(data []byte) (*OrderCreatedMessage, error) {
	var msg OrderCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

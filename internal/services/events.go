package services

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Routing keys of order events.
const (
	EventOrderCreated          = "order.created"
	EventOrderPaymentRequested = "order.payment_requested"
)

// EventPublisher delivers order events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderEvent is the payload of every order event.
type OrderEvent struct {
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	Status     string    `json:"status"`
	Total      int64     `json:"total"`
	RequestID  string    `json:"requestId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// publishEvent is best effort: the order store is authoritative and a lost
// event is logged, never returned.
func publishEvent(publisher EventPublisher, log *zap.SugaredLogger, routingKey string, event OrderEvent) {
	if publisher == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Errorw("failed to marshal order event", "routingKey", routingKey, "orderId", event.OrderID, "error", err)
		return
	}
	if err := publisher.Publish(routingKey, body); err != nil {
		log.Warnw("failed to publish order event", "routingKey", routingKey, "orderId", event.OrderID, "error", err)
		return
	}
	log.Debugw("published order event", "routingKey", routingKey, "orderId", event.OrderID)
}

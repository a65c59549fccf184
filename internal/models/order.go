package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "Pending"
	OrderStatusAwaitingPayment OrderStatus = "AwaitingPayment"
	OrderStatusPaid            OrderStatus = "Paid"
	OrderStatusFailed          OrderStatus = "Failed"
)

// IsTerminal reports whether no transition may leave the status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed
}

var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:         {OrderStatusAwaitingPayment: true},
	OrderStatusAwaitingPayment: {OrderStatusPaid: true, OrderStatusFailed: true},
	OrderStatusPaid:            {},
	OrderStatusFailed:          {},
}

// CanTransition reports whether from -> to is an edge of the order state machine.
func CanTransition(from, to OrderStatus) bool {
	return orderTransitions[from][to]
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"` // Price at the time of order
}

// Order represents a customer order. Amounts are whole VND.
type Order struct {
	ID         string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string      `json:"userId" gorm:"index;type:varchar(100);not null"`
	Items      []OrderItem `json:"items" gorm:"serializer:json"`
	Total      int64       `json:"total" gorm:"not null"`
	Status     OrderStatus `json:"status" gorm:"type:varchar(32);not null"`
	PaymentURL string      `json:"paymentUrl,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// ItemsTotal returns the sum of quantity * unit price over all items.
func (o *Order) ItemsTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += int64(item.Quantity) * item.UnitPrice
	}
	return total
}

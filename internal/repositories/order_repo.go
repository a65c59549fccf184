package repositories

import (
	"vitamart/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// The repository owns the authoritative copy of every order; callers receive
// copies. Status changes go through CompareAndSwapStatus only, which applies
// the new status in a single conditional write.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	Create(order *models.Order) error
	// CompareAndSwapStatus sets the status to next only if it currently equals
	// expected. It reports whether the write happened. A pair refused by
	// models.CanTransition fails with ErrIllegalTransition.
	CompareAndSwapStatus(id string, expected, next models.OrderStatus) (bool, error)
	// SetPaymentURL records the pay URL only while the order is
	// AwaitingPayment. It reports whether the write happened.
	SetPaymentURL(id string, url string) (bool, error)
}

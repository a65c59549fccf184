package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"vitamart/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns all orders, oldest first.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, cloneOrder(order))
	}
	sortByCreatedAt(orderList)
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s %w", id, ErrNotFound)
	}
	order = cloneOrder(order)
	return &order, nil
}

// GetByUserID returns the orders placed by userID, oldest first.
func (r *MockOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0)
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, cloneOrder(order))
		}
	}
	sortByCreatedAt(orderList)
	return orderList, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order with ID %s already exists", order.ID)
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// CompareAndSwapStatus updates the status of an order if it still holds expected.
func (r *MockOrderRepository) CompareAndSwapStatus(id string, expected, next models.OrderStatus) (bool, error) {
	if !models.CanTransition(expected, next) {
		return false, fmt.Errorf("order %s: %s -> %s: %w", id, expected, next, ErrIllegalTransition)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return false, fmt.Errorf("order with ID %s %w", id, ErrNotFound)
	}
	if order.Status != expected {
		return false, nil
	}
	order.Status = next
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return true, nil
}

// SetPaymentURL records the gateway redirect URL for an order that is
// still AwaitingPayment.
func (r *MockOrderRepository) SetPaymentURL(id string, url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return false, fmt.Errorf("order with ID %s %w", id, ErrNotFound)
	}
	if order.Status != models.OrderStatusAwaitingPayment {
		return false, nil
	}
	order.PaymentURL = url
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return true, nil
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

func sortByCreatedAt(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}

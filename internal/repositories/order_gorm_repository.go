package repositories

import (
	"errors"
	"fmt"
	"time"

	"vitamart/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders from the database.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Order("created_at asc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID from the database.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByUserID retrieves the orders of a user from the database.
func (r *GORMOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("user_id = ?", userID).Order("created_at asc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// Create creates a new order in the database.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// CompareAndSwapStatus issues UPDATE ... WHERE id = ? AND status = ?, so the
// check and the write are one statement.
func (r *GORMOrderRepository) CompareAndSwapStatus(id string, expected, next models.OrderStatus) (bool, error) {
	if !models.CanTransition(expected, next) {
		return false, fmt.Errorf("order %s: %s -> %s: %w", id, expected, next, ErrIllegalTransition)
	}
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]interface{}{"status": next, "updated_at": time.Now()})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	return false, r.ensureExists(id)
}

// SetPaymentURL records the gateway redirect URL for an order that is
// still AwaitingPayment.
func (r *GORMOrderRepository) SetPaymentURL(id string, url string) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusAwaitingPayment).
		Updates(map[string]interface{}{"payment_url": url, "updated_at": time.Now()})
	if res.Error != nil {
		return false, fmt.Errorf("failed to set payment URL for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	return false, r.ensureExists(id)
}

// ensureExists tells a missing order apart from a conditional write that
// matched no row.
func (r *GORMOrderRepository) ensureExists(id string) error {
	var count int64
	if err := r.db.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check order %s: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("order with ID %s %w", id, ErrNotFound)
	}
	return nil
}
